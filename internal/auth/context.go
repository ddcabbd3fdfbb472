package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/storehub/storehub/internal/db/models"
)

// localsKey is the fiber locals key the middleware stores the context under.
const localsKey = "userContext"

// UserContext is the resolved identity and permission set of a request.
type UserContext struct {
	UserID   uint64 `json:"id"`
	Username string `json:"username"`

	// GroupID is nil when the user has no group (no access).
	GroupID   *uint  `json:"group_id"`
	GroupName string `json:"group_name"`

	// IsSystem marks members of a protected built-in group; such contexts
	// pass every guard without reading permission rows.
	IsSystem bool `json:"is_system"`

	// MainPermissions maps each of the six main permission keys to its grant.
	MainPermissions map[string]bool `json:"main_permissions"`

	// PermittedStores lists every store the group may touch.
	PermittedStores []uint `json:"permitted_stores"`

	// StorePermissions maps store id to the group's feature grants there.
	StorePermissions map[uint]models.Features `json:"store_permissions"`
}

// HasMain reports whether the context grants a main permission key.
func (u *UserContext) HasMain(key string) bool {
	if u.IsSystem {
		return true
	}

	return u.MainPermissions[key]
}

// PermitsStore reports whether the store id is in the permitted list.
func (u *UserContext) PermitsStore(storeID uint) bool {
	if u.IsSystem {
		return true
	}

	for _, id := range u.PermittedStores {
		if id == storeID {
			return true
		}
	}

	return false
}

// FromContext returns the user context attached by Middleware, or nil.
func FromContext(c *fiber.Ctx) *UserContext {
	uc, _ := c.Locals(localsKey).(*UserContext)
	return uc
}
