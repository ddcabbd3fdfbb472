// Package respond writes the JSON envelope every API endpoint uses:
// {"success": bool, ...} on success, {"success": false, "error": msg}
// with an optional details object on failure.
package respond

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/storehub/storehub/internal/auth"
	"github.com/storehub/storehub/internal/group"
	"github.com/storehub/storehub/internal/rma"
)

// OK writes a 200 envelope, merging data into it.
func OK(c *fiber.Ctx, data fiber.Map) error {
	return envelope(c, fiber.StatusOK, data)
}

// Created writes a 201 envelope, merging data into it.
func Created(c *fiber.Ctx, data fiber.Map) error {
	return envelope(c, fiber.StatusCreated, data)
}

func envelope(c *fiber.Ctx, status int, data fiber.Map) error {
	body := fiber.Map{"success": true}
	for k, v := range data {
		body[k] = v
	}

	return c.Status(status).JSON(body)
}

// Error writes an error envelope with the given status and message.
func Error(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "error": msg})
}

// ErrorDetails writes an error envelope with a machine-checkable details object.
func ErrorDetails(c *fiber.Ctx, status int, msg string, details any) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "error": msg, "details": details})
}

// FromError maps a service error onto the status taxonomy: 401 for
// authentication failures, 403 for authorization, 400 for validation and
// illegal transitions, 404 for unknown ids and 500 otherwise. Unexpected
// errors are logged and never leak their message to the client.
func FromError(c *fiber.Ctx, err error) error {
	var (
		ite *rma.InvalidTransitionError
		ve  *group.ValidationError
	)

	switch {
	case auth.IsAuthError(err):
		return Error(c, fiber.StatusUnauthorized, err.Error())

	case errors.Is(err, group.ErrSystemGroup), errors.Is(err, rma.ErrAdminOnly):
		return Error(c, fiber.StatusForbidden, err.Error())

	case errors.Is(err, group.ErrNotFound),
		errors.Is(err, rma.ErrNotFound),
		errors.Is(err, rma.ErrRecordNotFound):
		return Error(c, fiber.StatusNotFound, err.Error())

	case errors.As(err, &ite):
		return ErrorDetails(c, fiber.StatusBadRequest, ite.Message, fiber.Map{
			"event": ite.Event,
			"from":  ite.From,
		})

	case errors.As(err, &ve),
		errors.Is(err, group.ErrDuplicateName),
		errors.Is(err, rma.ErrDiagnosisRequired),
		errors.Is(err, rma.ErrSolutionRequired),
		errors.Is(err, rma.ErrReasonRequired),
		errors.Is(err, rma.ErrUpdateRestricted),
		errors.Is(err, rma.ErrAlreadyInStock),
		errors.Is(err, rma.ErrOpenRMAExists):
		return Error(c, fiber.StatusBadRequest, err.Error())

	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")

		return Error(c, fiber.StatusInternalServerError, "Internal server error")
	}
}
