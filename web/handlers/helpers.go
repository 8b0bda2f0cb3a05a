package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/nastradacha/inventory-app/database"
	"github.com/nastradacha/inventory-app/ledger"
	"gorm.io/gorm"
)

// ldgr builds a Ledger on the shared database handle.
func ldgr() *ledger.Ledger {
	return ledger.New(database.GetDB())
}

// renderError maps core errors to HTTP responses: bad input is 400, state
// conflicts are 409, privilege refusals 403, unknown records 404.
func renderError(c *fiber.Ctx, err error) error {
	var (
		ve   *ledger.ValidationError
		ise  *ledger.InsufficientStockError
		bce  *ledger.BelowCostError
		hhe  *ledger.HasHistoryError
		saoe *ledger.ShiftAlreadyOpenError
		nose *ledger.NoOpenShiftError
	)
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ve.Error()})
	case errors.As(err, &ise):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": ise.Error()})
	case errors.As(err, &bce):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": bce.Error()})
	case errors.As(err, &hhe):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": hhe.Error()})
	case errors.As(err, &saoe):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": saoe.Error()})
	case errors.As(err, &nose):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": nose.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
