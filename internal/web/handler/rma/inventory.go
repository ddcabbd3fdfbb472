package rma

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/storehub/storehub/internal/rma"
	"github.com/storehub/storehub/internal/web/respond"
)

// stageRequest carries the single free-text field each lifecycle
// transition records.
type stageRequest struct {
	Diagnosis string `json:"diagnosis"`
	Solution  string `json:"solution"`
	Reason    string `json:"reason"`
}

// ListInventory returns inventory-side RMAs, optionally filtered by
// status, with offset pagination.
func (s *Service) ListInventory(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	items, total, err := s.engine.ListInventoryItems(c.Query("status"), page, limit)
	if err != nil {
		return respond.FromError(c, err)
	}

	return respond.OK(c, fiber.Map{
		"rma_items": items,
		"total":     total,
		"page":      page,
	})
}

// GetInventory returns one inventory-side RMA.
func (s *Service) GetInventory(c *fiber.Ctx) error {
	id, ok := param(c, "id")
	if !ok {
		return respond.Error(c, fiber.StatusBadRequest, ErrInvalidID)
	}

	item, err := s.engine.GetInventoryItem(id)
	if err != nil {
		return respond.FromError(c, err)
	}

	return respond.OK(c, fiber.Map{"rma_item": item})
}

// History returns the audit trail of one inventory RMA, oldest first.
func (s *Service) History(c *fiber.Ctx) error {
	id, ok := param(c, "id")
	if !ok {
		return respond.Error(c, fiber.StatusBadRequest, ErrInvalidID)
	}

	if _, err := s.engine.GetInventoryItem(id); err != nil {
		return respond.FromError(c, err)
	}

	entries, err := s.engine.GetHistory(id)
	if err != nil {
		return respond.FromError(c, err)
	}

	return respond.OK(c, fiber.Map{"history": entries})
}

// Process moves an RMA from receive to process with a diagnosis.
func (s *Service) Process(c *fiber.Ctx) error {
	return s.stage(c, func(id uint, req *stageRequest) (any, error) {
		return s.engine.ProcessItem(id, actor(c), req.Diagnosis)
	})
}

// Complete moves an RMA from process to complete with a solution.
func (s *Service) Complete(c *fiber.Ctx) error {
	return s.stage(c, func(id uint, req *stageRequest) (any, error) {
		return s.engine.CompleteItem(id, actor(c), req.Solution)
	})
}

// Fail marks an RMA as failed with a reason.
func (s *Service) Fail(c *fiber.Ctx) error {
	return s.stage(c, func(id uint, req *stageRequest) (any, error) {
		return s.engine.FailItem(id, actor(c), req.Reason)
	})
}

// Update patches diagnosis, solution or notes of an RMA.
func (s *Service) Update(c *fiber.Ctx) error {
	id, ok := param(c, "id")
	if !ok {
		return respond.Error(c, fiber.StatusBadRequest, ErrInvalidID)
	}

	var input rma.UpdateInput

	if err := c.BodyParser(&input); err != nil {
		return respond.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}

	item, err := s.engine.UpdateItem(id, actor(c), input)
	if err != nil {
		return respond.FromError(c, err)
	}

	return respond.OK(c, fiber.Map{"rma_item": item})
}

// Delete removes an inventory RMA. The engine restricts this to admins.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, ok := param(c, "id")
	if !ok {
		return respond.Error(c, fiber.StatusBadRequest, ErrInvalidID)
	}

	if err := s.engine.DeleteItem(id, actor(c)); err != nil {
		return respond.FromError(c, err)
	}

	return respond.OK(c, fiber.Map{"message": "RMA record deleted"})
}

// stage runs one transition endpoint: parse, dispatch, respond.
func (s *Service) stage(c *fiber.Ctx, run func(uint, *stageRequest) (any, error)) error {
	id, ok := param(c, "id")
	if !ok {
		return respond.Error(c, fiber.StatusBadRequest, ErrInvalidID)
	}

	var req stageRequest

	if err := c.BodyParser(&req); err != nil {
		return respond.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}

	item, err := run(id, &req)
	if err != nil {
		return respond.FromError(c, err)
	}

	return respond.OK(c, fiber.Map{"rma_item": item})
}
