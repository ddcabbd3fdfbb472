// Package cache implements the process-wide permission cache.
//
// Three levels cooperate: a token-keyed cache of resolved user contexts
// that expires after a fixed TTL, a user-keyed cache of the same contexts
// that lives until explicitly invalidated, and a (group, store)-keyed
// cache of store feature grants. Correctness depends on every mutation
// path calling the bulk invalidators; the cache itself never goes stale
// in a way that can corrupt data, only in a way that delays permission
// changes until invalidation.
//
// The service is passed by reference to the resolver and the
// administration services, never used as a package singleton, and every
// method is safe for concurrent use.
package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	// DefaultTokenTTL is how long a token-keyed context entry stays valid.
	DefaultTokenTTL = 5 * time.Minute

	// tokenCacheSize bounds the token-keyed LRU. Plenty for the handful of
	// concurrent sessions this system sees; eviction only costs a re-resolve.
	tokenCacheSize = 4096
)

// Service is the in-process permission cache.
type Service struct {
	tokens *expirable.LRU[string, any]

	mu         sync.RWMutex
	users      map[uint64]any
	storePerms map[string]any
	storeLists map[string]any
}

// New creates a cache service. A ttl of 0 selects DefaultTokenTTL.
func New(ttl time.Duration) *Service {
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}

	return &Service{
		tokens:     expirable.NewLRU[string, any](tokenCacheSize, nil, ttl),
		users:      make(map[uint64]any),
		storePerms: make(map[string]any),
		storeLists: make(map[string]any),
	}
}

// AuthKey builds the user-keyed cache key for a user id.
func AuthKey(userID uint64) string {
	return fmt.Sprintf("auth:user:%d", userID)
}

func storeKey(groupID, storeID uint) string {
	return fmt.Sprintf("perm:group:%d:store:%d", groupID, storeID)
}

// Get returns the token-keyed entry for a bearer token, if present and unexpired.
func (s *Service) Get(token string) (any, bool) {
	return s.tokens.Get(token)
}

// Set stores a token-keyed entry with a fresh TTL.
func (s *Service) Set(token string, v any) {
	s.tokens.Add(token, v)
}

// Invalidate drops a single token-keyed entry.
func (s *Service) Invalidate(token string) {
	s.tokens.Remove(token)
}

// GetUserPermissions returns the cached resolved context for a user id.
func (s *Service) GetUserPermissions(userID uint64) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.users[userID]

	return v, ok
}

// SetUserPermissions caches the resolved context for a user id.
func (s *Service) SetUserPermissions(userID uint64, data any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[userID] = data
}

// GetStorePermissions returns the cached feature grants for a (group, store) pair.
func (s *Service) GetStorePermissions(groupID, storeID uint) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.storePerms[storeKey(groupID, storeID)]

	return v, ok
}

// SetStorePermissions caches the feature grants for a (group, store) pair.
func (s *Service) SetStorePermissions(groupID, storeID uint, data any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.storePerms[storeKey(groupID, storeID)] = data
}

// GetStoreList returns the cached store list for a scope.
func (s *Service) GetStoreList(scope string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.storeLists[scope]

	return v, ok
}

// SetStoreList caches a store list for a scope.
func (s *Service) SetStoreList(list any, scope string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.storeLists[scope] = list
}

// ClearUserPermissions drops the cached context for one user id.
func (s *Service) ClearUserPermissions(userID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.users, userID)
}

// ClearStoreListCache drops every cached store list. Callers mutating
// stores must call this.
func (s *Service) ClearStoreListCache() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.storeLists = make(map[string]any)
}

// ClearAllPermissionsCache drops every cached user context, store grant
// and token entry. Callers mutating groups or permissions must call
// this; a group change can affect any user in the group, so the whole
// cache goes.
func (s *Service) ClearAllPermissionsCache() {
	s.mu.Lock()
	s.users = make(map[uint64]any)
	s.storePerms = make(map[string]any)
	s.mu.Unlock()

	s.tokens.Purge()
}
