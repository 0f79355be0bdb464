package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/diaghi13/fs-gymme-sub005/internal/application/billing"
	"github.com/diaghi13/fs-gymme-sub005/internal/application/dto"
)

// InvoiceHandler espone il ciclo di vita della fattura elettronica:
// generazione, invio al SdI, consultazione stato, download XML/PDF e
// invio in conservazione.
type InvoiceHandler struct {
	generateUC *billing.GenerateInvoiceUseCase
	sendUC     *billing.SendInvoiceUseCase
	preserveUC *billing.PreserveInvoiceUseCase
	pdfUC      *billing.PDFUseCase
}

func NewInvoiceHandler(
	generateUC *billing.GenerateInvoiceUseCase,
	sendUC *billing.SendInvoiceUseCase,
	preserveUC *billing.PreserveInvoiceUseCase,
	pdfUC *billing.PDFUseCase,
) *InvoiceHandler {
	return &InvoiceHandler{
		generateUC: generateUC,
		sendUC:     sendUC,
		preserveUC: preserveUC,
		pdfUC:      pdfUC,
	}
}

// Generate gestisce POST /api/sales/:id/invoice.
func (h *InvoiceHandler) Generate(c *fiber.Ctx) error {
	var in dto.GenerateInvoiceRequest
	// Body opzionale: senza body si genera una TD01 standard.
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "BAD_REQUEST", Message: "body non valido"})
		}
	}
	resp, err := h.generateUC.Generate(c.Context(), GetCompanyID(c), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// List gestisce GET /api/invoices?status=&limit=&offset=.
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "BAD_REQUEST", Message: "parametri di paginazione non validi"})
	}
	resp, err := h.generateUC.ListInvoices(c.Context(), GetCompanyID(c), c.Query("status"), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Get gestisce GET /api/invoices/:id.
func (h *InvoiceHandler) Get(c *fiber.Ctx) error {
	resp, err := h.generateUC.GetInvoice(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Send gestisce POST /api/invoices/:id/send.
func (h *InvoiceHandler) Send(c *fiber.Ctx) error {
	resp, err := h.sendUC.Send(c.Context(), GetCompanyID(c), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Resend gestisce POST /api/invoices/:id/resend (dopo uno scarto).
func (h *InvoiceHandler) Resend(c *fiber.Ctx) error {
	resp, err := h.sendUC.Resend(c.Context(), GetCompanyID(c), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Status gestisce GET /api/invoices/:id/status.
func (h *InvoiceHandler) Status(c *fiber.Ctx) error {
	resp, err := h.sendUC.GetStatus(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// XML gestisce GET /api/invoices/:id/xml e restituisce il file FatturaPA
// archiviato, byte per byte come è stato trasmesso.
func (h *InvoiceHandler) XML(c *fiber.Ctx) error {
	fileName, data, err := h.generateUC.GetInvoiceXML(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/xml")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)
	return c.Send(data)
}

// PDF gestisce GET /api/invoices/:id/pdf (copia di cortesia).
func (h *InvoiceHandler) PDF(c *fiber.Ctx) error {
	data, fileName, err := h.pdfUC.DownloadInvoicePDF(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)
	return c.Send(data)
}

// Preserve gestisce POST /api/invoices/:id/preserve.
func (h *InvoiceHandler) Preserve(c *fiber.Ctx) error {
	resp, err := h.preserveUC.Preserve(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Attempts gestisce GET /api/invoices/:id/attempts.
func (h *InvoiceHandler) Attempts(c *fiber.Ctx) error {
	resp, err := h.generateUC.ListAttempts(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
