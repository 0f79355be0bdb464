package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/diaghi13/fs-gymme-sub005/internal/application/dto"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain/entity"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain/repository"
	infrasdi "github.com/diaghi13/fs-gymme-sub005/internal/infrastructure/sdi"
)

// NotificationUseCase applica le notifiche asincrone del SdI allo stato della
// fattura: è il collaboratore esterno che chiude il ciclo di trasmissione.
type NotificationUseCase struct {
	txRunner BillingTxRunner
	notifier Notifier
	log      zerolog.Logger
}

// NewNotificationUseCase costruisce il caso d'uso.
func NewNotificationUseCase(txRunner BillingTxRunner, notifier Notifier, log zerolog.Logger) *NotificationUseCase {
	return &NotificationUseCase{txRunner: txRunner, notifier: notifier, log: log}
}

// Apply parsa la notifica e applica la transizione corrispondente.
// Le notifiche su fatture già in stato finale sono ignorate (idempotenza:
// il SdI può recapitare la stessa notifica più volte).
func (uc *NotificationUseCase) Apply(ctx context.Context, rawXML []byte) (*dto.InvoiceStatusResponse, error) {
	notif, err := infrasdi.ParseNotification(rawXML)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	newStatus, message, err := mapNotification(notif)
	if err != nil {
		return nil, err
	}

	var inv *entity.ElectronicInvoice
	err = uc.txRunner.RunSend(ctx, func(invoiceRepo repository.InvoiceRepository) error {
		found, err := invoiceRepo.GetByExternalID(notif.IdentificativoSdI)
		if err != nil || found == nil {
			return fmt.Errorf("%w: nessuna fattura con IdentificativoSdI %s", domain.ErrNotFound, notif.IdentificativoSdI)
		}
		locked, err := invoiceRepo.GetByIDForUpdate(found.ID)
		if err != nil || locked == nil {
			return domain.ErrNotFound
		}
		inv = locked
		if inv.IsFinal() {
			// notifica duplicata o tardiva: nessuna transizione
			return nil
		}
		if err := inv.UpdateStatus(newStatus, message, time.Now()); err != nil {
			return err
		}
		return invoiceRepo.Update(inv)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("invoice_id", inv.ID).
		Str("notification", notif.Type).
		Str("status", inv.Status).
		Msg("notifica SdI applicata")

	switch inv.Status {
	case entity.InvoiceStatusAccepted:
		uc.notifier.NotifyAccepted(inv)
	case entity.InvoiceStatusRejected:
		uc.notifier.NotifyRejected(inv, inv.StatusMessage)
	}

	return toStatusResponse(inv), nil
}

// mapNotification traduce il tipo di notifica SdI nello stato interno.
func mapNotification(n *infrasdi.Notification) (status, message string, err error) {
	switch n.Type {
	case infrasdi.NotificationRicevutaConsegna:
		return entity.InvoiceStatusAccepted, "RicevutaConsegna", nil

	case infrasdi.NotificationScarto:
		return entity.InvoiceStatusRejected, strings.Join(n.Errors, "; "), nil

	case infrasdi.NotificationMancataConsegna:
		// il SdI ha preso in carico ma non ha recapitato: la fattura è emessa,
		// la consegna avverrà tramite il cassetto fiscale del destinatario.
		return entity.InvoiceStatusAccepted, "MancataConsegna: fattura a disposizione nell'area riservata del destinatario", nil

	case infrasdi.NotificationDecorrenzaTermini:
		return entity.InvoiceStatusAccepted, "DecorrenzaTermini", nil

	case infrasdi.NotificationEsito:
		if n.EsitoCommittente == infrasdi.EsitoAccettato {
			return entity.InvoiceStatusAccepted, "NotificaEsito: EC01 accettata dal committente", nil
		}
		return entity.InvoiceStatusRejected, "NotificaEsito: EC02 rifiutata dal committente", nil

	default:
		return "", "", fmt.Errorf("%w: tipo di notifica sconosciuto %q", domain.ErrValidation, n.Type)
	}
}
