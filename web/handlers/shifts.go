package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nastradacha/inventory-app/web/middleware"
)

// ShiftOpen starts a shift for the calling cashier.
func ShiftOpen(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)
	shift, err := ldgr().OpenShift(actor.UserID, actor)
	if err != nil {
		return renderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(shift)
}

// ShiftClose closes the calling cashier's open shift, stamping totals.
func ShiftClose(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)
	shift, err := ldgr().CloseShift(actor.UserID, actor)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(shift)
}

// ShiftCurrent returns the calling cashier's open shift, if any.
func ShiftCurrent(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)
	shift, err := ldgr().OpenShiftFor(actor.UserID)
	if err != nil {
		return renderError(c, err)
	}
	if shift == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no open shift"})
	}
	return c.JSON(shift)
}
