// Package notify inoltra gli esiti di trasmissione agli operatori.
package notify

import (
	"github.com/rs/zerolog"

	"github.com/diaghi13/fs-gymme-sub005/internal/application/billing"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain/entity"
)

// LogNotifier implementa billing.Notifier sul log strutturato: gli scarti
// emergono come warning da instradare verso l'alerting. Un canale email/PEC
// può sostituirlo senza toccare i casi d'uso.
type LogNotifier struct {
	log zerolog.Logger
}

// NewLogNotifier crea il notifier.
func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

var _ billing.Notifier = (*LogNotifier)(nil)

// NotifyRejected segnala lo scarto della fattura agli operatori.
func (n *LogNotifier) NotifyRejected(invoice *entity.ElectronicInvoice, errors string) {
	n.log.Warn().
		Str("invoice_id", invoice.ID).
		Str("company_id", invoice.CompanyID).
		Str("progressivo", invoice.Progressivo).
		Str("errors", errors).
		Msg("fattura scartata: correggere e reinviare")
}

// NotifyAccepted conferma l'accettazione della fattura.
func (n *LogNotifier) NotifyAccepted(invoice *entity.ElectronicInvoice) {
	n.log.Info().
		Str("invoice_id", invoice.ID).
		Str("company_id", invoice.CompanyID).
		Str("progressivo", invoice.Progressivo).
		Str("external_id", invoice.ExternalID).
		Msg("fattura accettata dal SdI")
}
