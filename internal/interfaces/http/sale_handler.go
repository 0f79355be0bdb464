package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/diaghi13/fs-gymme-sub005/internal/application/billing"
	"github.com/diaghi13/fs-gymme-sub005/internal/application/dto"
)

// SaleHandler espone la creazione e consultazione delle vendite.
type SaleHandler struct {
	saleUC *billing.CreateSaleUseCase
}

func NewSaleHandler(saleUC *billing.CreateSaleUseCase) *SaleHandler {
	return &SaleHandler{saleUC: saleUC}
}

// Create gestisce POST /api/sales.
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "BAD_REQUEST", Message: "body non valido"})
	}
	resp, err := h.saleUC.CreateSale(c.Context(), GetCompanyID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Get gestisce GET /api/sales/:id.
func (h *SaleHandler) Get(c *fiber.Ctx) error {
	resp, err := h.saleUC.GetSale(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Finalize gestisce POST /api/sales/:id/finalize.
func (h *SaleHandler) Finalize(c *fiber.Ctx) error {
	resp, err := h.saleUC.FinalizeSale(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// List gestisce GET /api/sales?limit=&offset=.
func (h *SaleHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "BAD_REQUEST", Message: "parametri di paginazione non validi"})
	}
	resp, err := h.saleUC.ListSales(c.Context(), GetCompanyID(c), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
