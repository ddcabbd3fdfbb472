// Package rma provides the RMA endpoints: the store-scoped intake and
// hand-off routes, guarded by the per-store rma feature, and the
// inventory-side processing routes, guarded by the main inventory
// permission.
package rma

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/storehub/storehub/internal/auth"
	"github.com/storehub/storehub/internal/config"
	"github.com/storehub/storehub/internal/db/models"
	"github.com/storehub/storehub/internal/rma"
	"github.com/storehub/storehub/internal/web/respond"
)

const (
	// StorePath is the base path of the store-scoped RMA routes.
	StorePath = "/rma/:storeId"

	// InventoryPath is the base path of the inventory-side RMA routes.
	InventoryPath = "/inventory/rma"

	// ErrInvalidID is returned when an id parameter is not a positive integer.
	ErrInvalidID = "Invalid id"
)

// Service is the RMA handler service.
type Service struct {
	cfg    *config.Config
	db     *gorm.DB
	engine *rma.Engine
}

// Handler is the RMA handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init initializes the RMA routes on the authenticated router.
func (s *Service) Init(api fiber.Router, cfg *config.Config, db *gorm.DB, resolver *auth.Resolver, engine *rma.Engine) error {
	if api == nil || cfg == nil || db == nil || resolver == nil || engine == nil {
		return errors.New("api, cfg, db, resolver or engine is nil")
	}

	s.cfg = cfg
	s.db = db
	s.engine = engine

	storeRMA := resolver.RequireStoreFeature(models.FeatureRMA)

	sr := api.Group(StorePath, storeRMA)
	sr.Get("/", s.ListStore)
	sr.Get("/:rmaId", s.GetStore)
	sr.Post("/", s.CreateStore)
	sr.Put("/:rmaId/send-to-inventory", s.SendToInventory)
	sr.Put("/:rmaId/send-to-store", s.SendToStore)

	inventoryPerm := resolver.RequireFeature(models.PermInventory)

	ir := api.Group(InventoryPath, inventoryPerm)
	ir.Get("/", s.ListInventory)
	ir.Get("/:id", s.GetInventory)
	ir.Get("/:id/history", s.History)
	ir.Put("/:id/process", s.Process)
	ir.Put("/:id/complete", s.Complete)
	ir.Put("/:id/fail", s.Fail)
	ir.Put("/:id", s.Update)
	ir.Delete("/:id", s.Delete)

	return nil
}

// createRequest is the store-side intake payload.
type createRequest struct {
	RecordID uint   `json:"record_id"`
	Reason   string `json:"reason"`
	Notes    string `json:"notes"`
}

// ListStore returns every RMA of the store, newest first.
func (s *Service) ListStore(c *fiber.Ctx) error {
	storeID, ok := param(c, "storeId")
	if !ok {
		return respond.Error(c, fiber.StatusBadRequest, ErrInvalidID)
	}

	items, err := s.engine.ListStoreItems(storeID)
	if err != nil {
		return respond.FromError(c, err)
	}

	return respond.OK(c, fiber.Map{"rma_items": items})
}

// GetStore returns one RMA of the store.
func (s *Service) GetStore(c *fiber.Ctx) error {
	storeID, okS := param(c, "storeId")
	rmaID, okR := param(c, "rmaId")

	if !okS || !okR {
		return respond.Error(c, fiber.StatusBadRequest, ErrInvalidID)
	}

	item, err := s.engine.GetStoreItem(storeID, rmaID)
	if err != nil {
		return respond.FromError(c, err)
	}

	return respond.OK(c, fiber.Map{"rma_item": item})
}

// CreateStore opens a store-side RMA for a device in the store's stock.
func (s *Service) CreateStore(c *fiber.Ctx) error {
	storeID, ok := param(c, "storeId")
	if !ok {
		return respond.Error(c, fiber.StatusBadRequest, ErrInvalidID)
	}

	var req createRequest

	if err := c.BodyParser(&req); err != nil {
		return respond.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if req.RecordID == 0 {
		return respond.Error(c, fiber.StatusBadRequest, "Record id is required")
	}

	if req.Reason == "" {
		return respond.Error(c, fiber.StatusBadRequest, "Reason is required")
	}

	item, err := s.engine.CreateItem(storeID, req.RecordID, req.Reason, req.Notes)
	if err != nil {
		return respond.FromError(c, err)
	}

	return respond.Created(c, fiber.Map{"rma_item": item})
}

// SendToInventory hands a pending RMA over to inventory.
func (s *Service) SendToInventory(c *fiber.Ctx) error {
	storeID, okS := param(c, "storeId")
	rmaID, okR := param(c, "rmaId")

	if !okS || !okR {
		return respond.Error(c, fiber.StatusBadRequest, ErrInvalidID)
	}

	item, err := s.engine.SendToInventory(storeID, rmaID, actor(c))
	if err != nil {
		return respond.FromError(c, err)
	}

	return respond.OK(c, fiber.Map{"rma_item": item})
}

// SendToStore returns a completed RMA item to the store's stock.
func (s *Service) SendToStore(c *fiber.Ctx) error {
	storeID, okS := param(c, "storeId")
	rmaID, okR := param(c, "rmaId")

	if !okS || !okR {
		return respond.Error(c, fiber.StatusBadRequest, ErrInvalidID)
	}

	item, err := s.engine.SendToStore(storeID, rmaID, actor(c))
	if err != nil {
		return respond.FromError(c, err)
	}

	return respond.OK(c, fiber.Map{"rma_item": item})
}

// param parses a positive integer path parameter.
func param(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}

	return uint(id), true
}

// actor builds the engine actor from the request's user context.
func actor(c *fiber.Ctx) rma.Actor {
	uc := auth.FromContext(c)
	if uc == nil {
		return rma.Actor{}
	}

	return rma.Actor{ID: uc.UserID, System: uc.IsSystem}
}
