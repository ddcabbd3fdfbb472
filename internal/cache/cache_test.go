package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCacheTTL(t *testing.T) {
	c := New(50 * time.Millisecond)

	c.Set("token-a", "context-a")

	v, ok := c.Get("token-a")
	require.True(t, ok)
	assert.Equal(t, "context-a", v)

	time.Sleep(80 * time.Millisecond)

	_, ok = c.Get("token-a")
	assert.False(t, ok, "token entry should expire after the TTL")
}

func TestTokenInvalidate(t *testing.T) {
	c := New(time.Minute)

	c.Set("token-a", "context-a")
	c.Invalidate("token-a")

	_, ok := c.Get("token-a")
	assert.False(t, ok)
}

func TestUserPermissions(t *testing.T) {
	c := New(0)

	_, ok := c.GetUserPermissions(7)
	assert.False(t, ok)

	c.SetUserPermissions(7, "perms-7")

	v, ok := c.GetUserPermissions(7)
	require.True(t, ok)
	assert.Equal(t, "perms-7", v)

	c.ClearUserPermissions(7)

	_, ok = c.GetUserPermissions(7)
	assert.False(t, ok)
}

func TestStorePermissionsKeyedByGroupAndStore(t *testing.T) {
	c := New(0)

	c.SetStorePermissions(1, 10, "grant-1-10")
	c.SetStorePermissions(1, 11, "grant-1-11")
	c.SetStorePermissions(2, 10, "grant-2-10")

	v, ok := c.GetStorePermissions(1, 10)
	require.True(t, ok)
	assert.Equal(t, "grant-1-10", v)

	v, ok = c.GetStorePermissions(2, 10)
	require.True(t, ok)
	assert.Equal(t, "grant-2-10", v)

	_, ok = c.GetStorePermissions(2, 11)
	assert.False(t, ok)
}

func TestStoreLists(t *testing.T) {
	c := New(0)

	c.SetStoreList([]uint{1, 2, 3}, "all")
	c.SetStoreList([]uint{2}, "group:5")

	v, ok := c.GetStoreList("all")
	require.True(t, ok)
	assert.Equal(t, []uint{1, 2, 3}, v)

	c.ClearStoreListCache()

	_, ok = c.GetStoreList("all")
	assert.False(t, ok)
	_, ok = c.GetStoreList("group:5")
	assert.False(t, ok)
}

func TestClearAllPermissionsCache(t *testing.T) {
	c := New(time.Minute)

	c.Set("token-a", "context-a")
	c.SetUserPermissions(7, "perms-7")
	c.SetStorePermissions(1, 10, "grant")
	c.SetStoreList([]uint{1}, "all")

	c.ClearAllPermissionsCache()

	_, ok := c.Get("token-a")
	assert.False(t, ok, "tokens must be purged so stale contexts die immediately")

	_, ok = c.GetUserPermissions(7)
	assert.False(t, ok)

	_, ok = c.GetStorePermissions(1, 10)
	assert.False(t, ok)

	// store lists are a separate concern with their own invalidation
	_, ok = c.GetStoreList("all")
	assert.True(t, ok)
}

func TestAuthKey(t *testing.T) {
	assert.Equal(t, "auth:user:42", AuthKey(42))
}
