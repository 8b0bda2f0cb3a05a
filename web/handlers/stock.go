package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nastradacha/inventory-app/ledger"
	"github.com/nastradacha/inventory-app/web/middleware"
	"github.com/shopspring/decimal"
)

type intakeRequest struct {
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Quantity     int             `json:"quantity"`
	SafetyStock  *int            `json:"safety_stock"`
	ExpiryDate   *time.Time      `json:"expiry_date"`
}

func (r *intakeRequest) toInput() ledger.RestockInput {
	safety := 5
	if r.SafetyStock != nil {
		safety = *r.SafetyStock
	}
	return ledger.RestockInput{
		Name:         r.Name,
		Category:     r.Category,
		CostPrice:    r.CostPrice,
		SellingPrice: r.SellingPrice,
		Quantity:     r.Quantity,
		SafetyStock:  safety,
		ExpiryDate:   r.ExpiryDate,
	}
}

// StockIntake screens the proposed name for near-duplicates and either
// applies the intake or stages it for confirmation. A staged intake comes
// back with status 202 and the match that triggered it.
func StockIntake(c *fiber.Ctx) error {
	var req intakeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	result, err := ldgr().IntakeStock(req.toInput(), middleware.ActorFromCtx(c))
	if err != nil {
		return renderError(c, err)
	}
	if result.Pending != nil {
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"staged":  true,
			"pending": result.Pending,
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"staged":  false,
		"product": result.Product,
	})
}

// PendingIntakeView returns the caller's live staged intake, if any.
func PendingIntakeView(c *fiber.Ctx) error {
	pending, err := ldgr().PendingFor(middleware.ActorFromCtx(c))
	if err != nil {
		return renderError(c, err)
	}
	if pending == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no pending intake"})
	}
	return c.JSON(pending)
}

// PendingIntakeConfirm applies a staged intake, either folding it into the
// matched product or proceeding under the proposed name.
func PendingIntakeConfirm(c *fiber.Ctx) error {
	token := c.Params("token")
	var req struct {
		UseMatched bool `json:"use_matched"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	product, err := ldgr().ConfirmIntake(token, req.UseMatched, middleware.ActorFromCtx(c))
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(product)
}

// PendingIntakeCancel discards a staged intake.
func PendingIntakeCancel(c *fiber.Ctx) error {
	token := c.Params("token")
	if err := ldgr().CancelIntake(token, middleware.ActorFromCtx(c)); err != nil {
		return renderError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
