package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/diaghi13/fs-gymme-sub005/internal/application/billing"
	"github.com/diaghi13/fs-gymme-sub005/internal/application/dto"
)

// NotificationHandler riceve le notifiche asincrone del SdI (ricevute di
// consegna, scarti, mancate consegne, decorrenza termini, esiti committente)
// e le applica alla fattura corrispondente.
type NotificationHandler struct {
	notificationUC *billing.NotificationUseCase
}

func NewNotificationHandler(notificationUC *billing.NotificationUseCase) *NotificationHandler {
	return &NotificationHandler{notificationUC: notificationUC}
}

// Apply gestisce POST /api/sdi/notifications. Accetta sia il body JSON
// {"payload": "<xml>"} sia l'XML grezzo con Content-Type application/xml,
// come lo inoltrano i connettori dei canali accreditati.
func (h *NotificationHandler) Apply(c *fiber.Ctx) error {
	rawXML := c.Body()
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), "application/xml") {
		var in dto.SdINotificationRequest
		if err := c.BodyParser(&in); err != nil || in.Payload == "" {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "BAD_REQUEST", Message: "payload della notifica mancante"})
		}
		rawXML = []byte(in.Payload)
	}
	resp, err := h.notificationUC.Apply(c.Context(), rawXML)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
