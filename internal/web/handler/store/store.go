// Package store provides the store listing endpoint. The list is scoped
// to the caller's permitted stores and served through the store-list
// cache.
package store

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/storehub/storehub/internal/auth"
	"github.com/storehub/storehub/internal/cache"
	"github.com/storehub/storehub/internal/config"
	"github.com/storehub/storehub/internal/db/models"
	"github.com/storehub/storehub/internal/web/respond"
)

// Path is the store listing path.
const Path = "/stores"

// Service is the store listing handler service.
type Service struct {
	cfg   *config.Config
	db    *gorm.DB
	cache *cache.Service
}

// Handler is the store listing handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init initializes the store handler on the authenticated router.
func (s *Service) Init(api fiber.Router, cfg *config.Config, db *gorm.DB, c *cache.Service) error {
	if api == nil || cfg == nil || db == nil || c == nil {
		return errors.New("api, cfg, db or cache is nil")
	}

	s.cfg = cfg
	s.db = db
	s.cache = c

	api.Get(Path, s.List)

	return nil
}

// List returns the active stores the caller may touch. System contexts
// see every store; everyone else sees their group's permitted stores.
func (s *Service) List(c *fiber.Ctx) error {
	uc := auth.FromContext(c)
	if uc == nil || uc.GroupID == nil {
		return respond.Error(c, fiber.StatusForbidden, auth.ErrNoGroup.Error())
	}

	scope := "all"
	if !uc.IsSystem {
		scope = fmt.Sprintf("group:%d", *uc.GroupID)
	}

	if cached, ok := s.cache.GetStoreList(scope); ok {
		if stores, ok := cached.([]models.Store); ok {
			return respond.OK(c, fiber.Map{"stores": stores})
		}
	}

	query := s.db.Where("active = ?", true).Order("id")
	if !uc.IsSystem {
		if len(uc.PermittedStores) == 0 {
			return respond.OK(c, fiber.Map{"stores": []models.Store{}})
		}

		query = query.Where("id IN ?", uc.PermittedStores)
	}

	var stores []models.Store
	if err := query.Find(&stores).Error; err != nil {
		return respond.FromError(c, err)
	}

	s.cache.SetStoreList(stores, scope)

	return respond.OK(c, fiber.Map{"stores": stores})
}
