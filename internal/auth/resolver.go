package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/storehub/storehub/internal/cache"
	"github.com/storehub/storehub/internal/db/models"
)

// Resolver turns bearer tokens into user contexts.
type Resolver struct {
	db     *gorm.DB
	cache  *cache.Service
	secret []byte
	method string
}

// NewResolver creates a resolver verifying tokens with the given secret.
// The signing method is pinned: tokens signed with any other algorithm are
// rejected regardless of their signature.
func NewResolver(db *gorm.DB, c *cache.Service, secret, method string) *Resolver {
	return &Resolver{db: db, cache: c, secret: []byte(secret), method: method}
}

// Resolve verifies a bearer token and returns the user's resolved context.
//
// The token-keyed cache is consulted first and short-circuits everything,
// including signature verification: entries live at most the cache TTL, so
// a token revoked by a permission change is honored within one TTL window
// (and immediately after ClearAllPermissionsCache, which purges tokens too).
func (r *Resolver) Resolve(token string) (*UserContext, error) {
	if token == "" {
		return nil, ErrNoToken
	}

	if v, ok := r.cache.Get(token); ok {
		if uc, ok := v.(*UserContext); ok {
			return uc, nil
		}
	}

	userID, err := r.verify(token)
	if err != nil {
		return nil, err
	}

	uc, err := r.ContextFor(userID)
	if err != nil {
		return nil, err
	}

	r.cache.Set(token, uc)

	return uc, nil
}

// verify checks the token signature and expiry and extracts the user id claim.
func (r *Resolver) verify(token string) (uint64, error) {
	parsed, err := jwt.Parse(token,
		func(_ *jwt.Token) (any, error) { return r.secret, nil },
		jwt.WithValidMethods([]string{r.method}),
	)

	switch {
	case err == nil && parsed.Valid:
		// verified
	case errors.Is(err, jwt.ErrTokenExpired):
		return 0, ErrTokenExpired
	default:
		log.Debug().Err(err).Msg("token verification failed")
		return 0, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}

	// encoding/json decodes numbers as float64; an id claim that is not a
	// whole number is rejected rather than truncated.
	raw, ok := claims["id"].(float64)
	if !ok || raw != float64(uint64(raw)) || raw < 1 {
		return 0, ErrInvalidUserID
	}

	return uint64(raw), nil
}

// ContextFor resolves the full permission context for a user id, consulting
// the user-keyed cache before the database.
func (r *Resolver) ContextFor(userID uint64) (*UserContext, error) {
	if v, ok := r.cache.GetUserPermissions(userID); ok {
		if uc, ok := v.(*UserContext); ok {
			return uc, nil
		}
	}

	uc, err := r.loadContext(userID)
	if err != nil {
		return nil, err
	}

	r.cache.SetUserPermissions(userID, uc)

	if uc.GroupID != nil {
		for storeID, features := range uc.StorePermissions {
			r.cache.SetStorePermissions(*uc.GroupID, storeID, features)
		}
	}

	return uc, nil
}

// loadContext reads user, group, main permissions and store grants in one
// aggregate pass. System groups get every grant synthesized and no
// permission rows are read for them.
func (r *Resolver) loadContext(userID uint64) (*UserContext, error) {
	var user models.User

	err := r.db.Preload("Group").Where("id = ? AND active = ?", userID, true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load user %d: %w", userID, err)
	}

	uc := &UserContext{
		UserID:           user.ID,
		Username:         user.Username,
		GroupID:          user.GroupID,
		MainPermissions:  make(map[string]bool, len(models.MainPermissionTypes)),
		PermittedStores:  []uint{},
		StorePermissions: make(map[uint]models.Features),
	}

	for _, key := range models.MainPermissionTypes {
		uc.MainPermissions[key] = false
	}

	if user.Group == nil {
		return uc, nil
	}

	uc.GroupName = user.Group.Name
	uc.IsSystem = user.Group.IsSystem

	if uc.IsSystem {
		for _, key := range models.MainPermissionTypes {
			uc.MainPermissions[key] = true
		}

		var storeIDs []uint
		if err := r.db.Model(&models.Store{}).Order("id").Pluck("id", &storeIDs).Error; err != nil {
			return nil, fmt.Errorf("failed to load stores for system group: %w", err)
		}

		uc.PermittedStores = storeIDs
		for _, id := range storeIDs {
			uc.StorePermissions[id] = models.FullGrant()
		}

		return uc, nil
	}

	var mains []models.GroupPermission
	if err := r.db.Where("group_id = ?", *user.GroupID).Find(&mains).Error; err != nil {
		return nil, fmt.Errorf("failed to load main permissions: %w", err)
	}

	for _, p := range mains {
		uc.MainPermissions[p.PermissionType] = p.PermissionValue
	}

	var grants []models.GroupStorePermission
	if err := r.db.Where("group_id = ?", *user.GroupID).Order("store_id").Find(&grants).Error; err != nil {
		return nil, fmt.Errorf("failed to load store permissions: %w", err)
	}

	for _, g := range grants {
		uc.PermittedStores = append(uc.PermittedStores, g.StoreID)
		uc.StorePermissions[g.StoreID] = g.Features
	}

	return uc, nil
}

// storeFeatures returns the feature grants of a (group, store) pair,
// reading through the cache with a database fallback.
func (r *Resolver) storeFeatures(groupID, storeID uint) (models.Features, bool, error) {
	if v, ok := r.cache.GetStorePermissions(groupID, storeID); ok {
		if f, ok := v.(models.Features); ok {
			return f, true, nil
		}
	}

	var grant models.GroupStorePermission

	err := r.db.Where("group_id = ? AND store_id = ?", groupID, storeID).First(&grant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Features{}, false, nil
	}

	if err != nil {
		return models.Features{}, false, fmt.Errorf("failed to load store permission: %w", err)
	}

	r.cache.SetStorePermissions(groupID, storeID, grant.Features)

	return grant.Features, true, nil
}
