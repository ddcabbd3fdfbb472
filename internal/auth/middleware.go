package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Middleware resolves the bearer token and attaches the user context to the
// request. Every guard below expects this middleware to have run first.
func (r *Resolver) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)

		uc, err := r.Resolve(token)
		if err != nil {
			log.Warn().Err(err).Str("path", c.Path()).Msg("authentication failed")

			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		}

		c.Locals(localsKey, uc)

		return c.Next()
	}
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}

	return strings.TrimPrefix(header, "Bearer ")
}

// RequireGroup allows only members of the named groups. System groups
// always pass. With requireStore set, non-system members additionally need
// a non-empty permitted-store list.
func (r *Resolver) RequireGroup(allowed []string, requireStore bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uc := FromContext(c)
		if uc == nil || uc.GroupID == nil {
			return deny(c, ErrNoGroup)
		}

		if uc.IsSystem {
			return c.Next()
		}

		permitted := false

		for _, name := range allowed {
			if uc.GroupName == name {
				permitted = true
				break
			}
		}

		if !permitted {
			log.Warn().Uint64("user_id", uc.UserID).Str("group", uc.GroupName).
				Strs("allowed", allowed).Msg("group denied")

			return deny(c, ErrGroupDenied)
		}

		if requireStore && len(uc.PermittedStores) == 0 {
			return deny(c, ErrNoStores)
		}

		return c.Next()
	}
}

// RequireFeature allows only contexts granting the main permission key.
func (r *Resolver) RequireFeature(feature string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uc := FromContext(c)
		if uc == nil || uc.GroupID == nil {
			return deny(c, ErrNoGroup)
		}

		if !uc.HasMain(feature) {
			log.Warn().Uint64("user_id", uc.UserID).Str("feature", feature).
				Msg("main permission denied")

			return denyMsg(c, fmt.Sprintf("Access denied: No permission for %s", feature))
		}

		return c.Next()
	}
}

// RequireStoreFeature allows only contexts granting the feature for the
// store the request targets. The store id is read from the path, query or
// body; a missing id is a 400. Membership in the store is required before
// the feature flag is consulted; view/basic keys are granted to any member.
func (r *Resolver) RequireStoreFeature(feature string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uc := FromContext(c)
		if uc == nil || uc.GroupID == nil {
			return deny(c, ErrNoGroup)
		}

		storeID, ok := requestStoreID(c)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   ErrStoreIDRequired.Error(),
			})
		}

		if uc.IsSystem {
			return c.Next()
		}

		if !uc.PermitsStore(storeID) {
			log.Warn().Uint64("user_id", uc.UserID).Uint("store_id", storeID).
				Msg("store not permitted")

			return deny(c, ErrStoreDenied)
		}

		features, found, err := r.storeFeatures(*uc.GroupID, storeID)
		if err != nil {
			log.Error().Err(err).Uint("store_id", storeID).Msg("store permission lookup failed")

			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Internal server error while checking permissions",
			})
		}

		if !found {
			return deny(c, ErrStoreDenied)
		}

		if !features.Has(feature) {
			return denyMsg(c, fmt.Sprintf("Access denied: No permission for %s in this store", feature))
		}

		return c.Next()
	}
}

// requestStoreID pulls the store id from path, query or JSON body, in that order.
func requestStoreID(c *fiber.Ctx) (uint, bool) {
	candidates := []string{c.Params("storeId"), c.Query("storeId")}

	var body struct {
		StoreID uint `json:"store_id"`
	}

	if err := c.BodyParser(&body); err == nil && body.StoreID > 0 {
		candidates = append(candidates, strconv.FormatUint(uint64(body.StoreID), 10))
	}

	for _, raw := range candidates {
		if raw == "" {
			continue
		}

		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			continue
		}

		return uint(id), true
	}

	return 0, false
}

func deny(c *fiber.Ctx, err error) error {
	return denyMsg(c, err.Error())
}

func denyMsg(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"success": false,
		"error":   msg,
	})
}

// IsAuthError reports whether an error belongs to the authentication taxonomy.
func IsAuthError(err error) bool {
	for _, sentinel := range []error{ErrNoToken, ErrTokenExpired, ErrInvalidToken, ErrInvalidUserID, ErrUserNotFound} {
		if errors.Is(err, sentinel) {
			return true
		}
	}

	return false
}
