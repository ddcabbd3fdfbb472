// Package group provides the group administration endpoints (CRUD plus a
// permissions-only update). Every route is restricted to the admin group.
package group

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/storehub/storehub/internal/auth"
	"github.com/storehub/storehub/internal/config"
	"github.com/storehub/storehub/internal/db/models"
	"github.com/storehub/storehub/internal/group"
	"github.com/storehub/storehub/internal/web/respond"
)

const (
	// Path is the base path for group administration.
	Path = "/groups"

	// ErrInvalidID is returned when the id parameter is not a positive integer.
	ErrInvalidID = "Invalid group id"
)

// Service is the group administration handler service.
type Service struct {
	cfg    *config.Config
	db     *gorm.DB
	groups *group.Service
}

// Handler is the group administration handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init initializes the group handler on the authenticated router.
func (s *Service) Init(api fiber.Router, cfg *config.Config, db *gorm.DB, resolver *auth.Resolver, groups *group.Service) error {
	if api == nil || cfg == nil || db == nil || resolver == nil || groups == nil {
		return errors.New("api, cfg, db, resolver or groups is nil")
	}

	s.cfg = cfg
	s.db = db
	s.groups = groups

	adminOnly := resolver.RequireGroup([]string{models.SystemGroupName}, false)

	r := api.Group(Path, adminOnly)
	r.Get("/", s.List)
	r.Get("/:id", s.Get)
	r.Post("/", s.Create)
	r.Put("/:id", s.Update)
	r.Put("/:id/permissions", s.UpdatePermissions)
	r.Delete("/:id", s.Delete)

	return nil
}

// List returns every group with its derived permission maps.
func (s *Service) List(c *fiber.Ctx) error {
	views, err := s.groups.ListGroups()
	if err != nil {
		return respond.FromError(c, err)
	}

	return respond.OK(c, fiber.Map{"groups": views})
}

// Get returns one group with its derived permission maps.
func (s *Service) Get(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return respond.Error(c, fiber.StatusBadRequest, ErrInvalidID)
	}

	view, err := s.groups.GetGroupWithPermissions(id)
	if err != nil {
		return respond.FromError(c, err)
	}

	return respond.OK(c, fiber.Map{"group": view})
}

// Create adds a new group with its permission rows.
func (s *Service) Create(c *fiber.Ctx) error {
	var in group.Input

	if err := c.BodyParser(&in); err != nil {
		return respond.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}

	view, err := s.groups.CreateGroup(&in)
	if err != nil {
		return respond.FromError(c, err)
	}

	return respond.Created(c, fiber.Map{"group": view})
}

// Update replaces a group's fields and permission rows.
func (s *Service) Update(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return respond.Error(c, fiber.StatusBadRequest, ErrInvalidID)
	}

	var in group.Input

	if err := c.BodyParser(&in); err != nil {
		return respond.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}

	view, err := s.groups.UpdateGroup(id, &in)
	if err != nil {
		return respond.FromError(c, err)
	}

	return respond.OK(c, fiber.Map{"group": view})
}

// permissionsRequest is the payload of the permissions-only update.
type permissionsRequest struct {
	MainPermissions  map[string]group.Flag        `json:"main_permissions"`
	PermittedStores  []uint                       `json:"permitted_stores"`
	StorePermissions []group.StorePermissionInput `json:"store_permissions"`
}

// UpdatePermissions replaces only the permission rows of a group.
func (s *Service) UpdatePermissions(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return respond.Error(c, fiber.StatusBadRequest, ErrInvalidID)
	}

	var req permissionsRequest

	if err := c.BodyParser(&req); err != nil {
		return respond.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}

	view, err := s.groups.UpdateGroupPermissions(id, req.MainPermissions, req.PermittedStores, req.StorePermissions)
	if err != nil {
		return respond.FromError(c, err)
	}

	return respond.OK(c, fiber.Map{"group": view})
}

// Delete removes a group and all its permission rows.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return respond.Error(c, fiber.StatusBadRequest, ErrInvalidID)
	}

	if err := s.groups.DeleteGroup(id); err != nil {
		return respond.FromError(c, err)
	}

	return respond.OK(c, fiber.Map{"message": "Group deleted"})
}

// paramID parses the :id path parameter.
func paramID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}

	return uint(id), true
}
