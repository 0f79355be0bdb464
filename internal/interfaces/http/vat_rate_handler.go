package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/diaghi13/fs-gymme-sub005/internal/application/billing"
	"github.com/diaghi13/fs-gymme-sub005/internal/application/dto"
)

// VatRateHandler espone il listino delle aliquote IVA.
type VatRateHandler struct {
	vatRateUC *billing.VatRateUseCase
}

func NewVatRateHandler(vatRateUC *billing.VatRateUseCase) *VatRateHandler {
	return &VatRateHandler{vatRateUC: vatRateUC}
}

// Create gestisce POST /api/vat-rates.
func (h *VatRateHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateVatRateRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "BAD_REQUEST", Message: "body non valido"})
	}
	resp, err := h.vatRateUC.Create(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// List gestisce GET /api/vat-rates?visible=true.
func (h *VatRateHandler) List(c *fiber.Ctx) error {
	onlyVisible := c.Query("visible") == "true"
	resp, err := h.vatRateUC.List(c.Context(), onlyVisible)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
