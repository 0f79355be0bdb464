package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/diaghi13/fs-gymme-sub005/internal/application/retention"
)

// ComplianceHandler espone lo sweep di ritenzione e il cruscotto di
// conformità alla conservazione decennale.
type ComplianceHandler struct {
	sweeper *retention.Sweeper
}

func NewComplianceHandler(sweeper *retention.Sweeper) *ComplianceHandler {
	return &ComplianceHandler{sweeper: sweeper}
}

// Sweep gestisce POST /api/compliance/sweep: anonimizza i dati personali
// delle fatture oltre il periodo di conservazione.
func (h *ComplianceHandler) Sweep(c *fiber.Ctx) error {
	resp, err := h.sweeper.Run(c.Context(), GetCompanyID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Dashboard gestisce GET /api/compliance/dashboard.
func (h *ComplianceHandler) Dashboard(c *fiber.Ctx) error {
	resp, err := h.sweeper.Dashboard(c.Context(), GetCompanyID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
