package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/diaghi13/fs-gymme-sub005/internal/application/dto"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain"
)

// respondError traduce i sentinel di dominio in risposte HTTP. Gli scarti del
// SdI viaggiano in Details: l'operatore vede la lista errori da correggere.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "accesso negato alla risorsa"})
	case errors.Is(err, domain.ErrDuplicateInvoice):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE_INVOICE", Message: "la vendita ha già una fattura attiva"})
	case errors.Is(err, domain.ErrNotSendable):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "NOT_SENDABLE", Message: err.Error()})
	case errors.Is(err, domain.ErrSendBudgetExhausted):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "SEND_BUDGET_EXHAUSTED", Message: "tentativi di invio esauriti, scarto definitivo"})
	case errors.Is(err, domain.ErrExchangeRejection):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Code:    "SDI_REJECTED",
			Message: "fattura scartata dal SdI",
			Details: rejectionDetails(err),
		})
	case errors.Is(err, domain.ErrGatewayTransport):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "SDI_UNAVAILABLE", Message: "canale SdI non raggiungibile, riprovare"})
	case errors.Is(err, domain.ErrNotPreservable):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "NOT_PRESERVABLE", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "EMAIL_EXISTS", Message: "email già registrata"})
	case errors.Is(err, domain.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_CREDENTIALS", Message: "credenziali non valide"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

// rejectionDetails estrae la lista scarti dal messaggio d'errore wrappato.
func rejectionDetails(err error) []string {
	msg := err.Error()
	if idx := strings.Index(msg, ": "); idx >= 0 {
		msg = msg[idx+2:]
	}
	parts := strings.Split(msg, "; ")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
