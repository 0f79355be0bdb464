package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/diaghi13/fs-gymme-sub005/internal/application/billing"
	"github.com/diaghi13/fs-gymme-sub005/internal/application/dto"
)

// CustomerHandler espone l'anagrafica clienti della palestra.
type CustomerHandler struct {
	customerUC *billing.CustomerUseCase
}

func NewCustomerHandler(customerUC *billing.CustomerUseCase) *CustomerHandler {
	return &CustomerHandler{customerUC: customerUC}
}

// Create gestisce POST /api/customers.
func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCustomerRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "BAD_REQUEST", Message: "body non valido"})
	}
	resp, err := h.customerUC.Create(c.Context(), GetCompanyID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Get gestisce GET /api/customers/:id.
func (h *CustomerHandler) Get(c *fiber.Ctx) error {
	resp, err := h.customerUC.Get(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// List gestisce GET /api/customers?limit=&offset=.
func (h *CustomerHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "BAD_REQUEST", Message: "parametri di paginazione non validi"})
	}
	resp, err := h.customerUC.List(c.Context(), GetCompanyID(c), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
