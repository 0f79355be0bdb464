package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/diaghi13/fs-gymme-sub005/internal/application/dto"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain/entity"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain/repository"
	infrasdi "github.com/diaghi13/fs-gymme-sub005/internal/infrastructure/sdi"
)

// sdiCallTimeout limite massimo della chiamata di trasmissione.
const sdiCallTimeout = 60 * time.Second

// SendInvoiceUseCase trasmette la fattura al SdI. Il tentativo è serializzato
// per fattura con un lock di riga; la riga del registro tentativi e la
// transizione di stato si scrivono nella stessa transazione, qualunque sia
// l'esito della chiamata.
type SendInvoiceUseCase struct {
	txRunner    BillingTxRunner
	invoiceRepo repository.InvoiceRepository
	xmlStore    XMLStore
	submitter   infrasdi.Submitter
	notifier    Notifier
	cfg         SdIConfig
	log         zerolog.Logger
}

// NewSendInvoiceUseCase costruisce il caso d'uso.
func NewSendInvoiceUseCase(
	txRunner BillingTxRunner,
	invoiceRepo repository.InvoiceRepository,
	xmlStore XMLStore,
	submitter infrasdi.Submitter,
	notifier Notifier,
	cfg SdIConfig,
	log zerolog.Logger,
) *SendInvoiceUseCase {
	return &SendInvoiceUseCase{
		txRunner:    txRunner,
		invoiceRepo: invoiceRepo,
		xmlStore:    xmlStore,
		submitter:   submitter,
		notifier:    notifier,
		cfg:         cfg,
		log:         log,
	}
}

// Send trasmette la fattura (primo invio). Precondizione: CanSend.
func (uc *SendInvoiceUseCase) Send(ctx context.Context, companyID, userID, invoiceID string) (*dto.InvoiceStatusResponse, error) {
	return uc.send(ctx, companyID, userID, invoiceID, false)
}

// Resend rimette in coda e trasmette una fattura scartata o in errore di
// trasporto. Precondizione: CanResend e budget tentativi non esaurito.
func (uc *SendInvoiceUseCase) Resend(ctx context.Context, companyID, userID, invoiceID string) (*dto.InvoiceStatusResponse, error) {
	return uc.send(ctx, companyID, userID, invoiceID, true)
}

func (uc *SendInvoiceUseCase) send(ctx context.Context, companyID, userID, invoiceID string, resend bool) (*dto.InvoiceStatusResponse, error) {
	var (
		inv          *entity.ElectronicInvoice
		transportErr error
		rejection    []string
	)

	err := uc.txRunner.RunSend(ctx, func(invoiceRepo repository.InvoiceRepository) error {
		// Lock di riga: due richieste concorrenti sulla stessa fattura si
		// serializzano qui, la seconda rivaluta le precondizioni sullo stato
		// aggiornato dalla prima.
		locked, err := invoiceRepo.GetByIDForUpdate(invoiceID)
		if err != nil || locked == nil {
			return domain.ErrNotFound
		}
		if locked.CompanyID != companyID {
			return domain.ErrForbidden
		}
		inv = locked
		now := time.Now()

		if resend {
			if !inv.CanResend() {
				return fmt.Errorf("%w: stato %s", domain.ErrNotSendable, inv.Status)
			}
			if uc.cfg.MaxSendAttempts > 0 && inv.SendAttempts >= uc.cfg.MaxSendAttempts {
				// budget esaurito: uno scarto diventa definitivo
				if inv.Status == entity.InvoiceStatusRejected {
					if err := inv.UpdateStatus(entity.InvoiceStatusRejectedFinal, "tentativi di invio esauriti", now); err != nil {
						return err
					}
					if err := invoiceRepo.Update(inv); err != nil {
						return err
					}
				}
				return domain.ErrSendBudgetExhausted
			}
			if err := inv.UpdateStatus(entity.InvoiceStatusToSend, "", now); err != nil {
				return err
			}
		}
		if !inv.CanSend() {
			return fmt.Errorf("%w: stato %s", domain.ErrNotSendable, inv.Status)
		}

		xmlData, err := uc.xmlStore.Read(inv.XMLPath)
		if err != nil {
			return fmt.Errorf("lettura XML della fattura: %w", err)
		}

		attemptNo := inv.IncrementSendAttempts(now)

		// La chiamata di rete usa un contesto staccato dal chiamante: una volta
		// in volo, l'esito registrato è quello reale del viaggio, non la
		// cancellazione del client.
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sdiCallTimeout)
		defer cancel()
		result, callErr := uc.submitter.Submit(callCtx, inv.XMLPath, xmlData)

		attempt := &entity.SendAttempt{
			ID:            uuid.New().String(),
			InvoiceID:     inv.ID,
			AttemptNumber: attemptNo,
			UserID:        userID,
			CreatedAt:     time.Now(),
		}

		switch {
		case callErr != nil:
			// errore di trasporto: la fattura resta reinviabile; tentativo e
			// stato SEND_FAILED vanno comunque a commit. La risposta non è
			// mai arrivata, ma la richiesta tentata va a registro come per
			// gli altri esiti.
			attempt.Outcome = entity.InvoiceStatusSendFailed
			attempt.RequestPayload = infrasdi.SnapshotRequest(inv.XMLPath, len(xmlData))
			attempt.ResponsePayload = callErr.Error()
			if err := inv.UpdateStatus(entity.InvoiceStatusSendFailed, callErr.Error(), time.Now()); err != nil {
				return err
			}
			transportErr = callErr

		case !result.Accepted:
			// scarto sincrono del SdI: non reinviabile senza correzione.
			attempt.Outcome = entity.InvoiceStatusRejected
			attempt.RequestPayload = result.RawRequest
			attempt.ResponsePayload = result.RawReply
			attempt.ExternalID = result.ExternalID
			attempt.Errors = marshalErrors(result.Errors)
			inv.ExternalID = result.ExternalID
			if err := inv.UpdateStatus(entity.InvoiceStatusRejected, strings.Join(result.Errors, "; "), time.Now()); err != nil {
				return err
			}
			rejection = result.Errors

		default:
			attempt.Outcome = entity.InvoiceStatusSent
			attempt.RequestPayload = result.RawRequest
			attempt.ResponsePayload = result.RawReply
			attempt.ExternalID = result.ExternalID
			inv.ExternalID = result.ExternalID
			if err := inv.UpdateStatus(entity.InvoiceStatusSent, "", time.Now()); err != nil {
				return err
			}
		}

		if err := invoiceRepo.CreateAttempt(attempt); err != nil {
			return err
		}
		return invoiceRepo.Update(inv)
	})
	if err != nil {
		return nil, err
	}

	switch {
	case transportErr != nil:
		uc.log.Warn().
			Str("invoice_id", invoiceID).
			Int("attempt", inv.SendAttempts).
			Err(transportErr).
			Msg("errore di trasporto verso il SdI, fattura reinviabile")
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayTransport, transportErr)

	case rejection != nil:
		uc.log.Warn().
			Str("invoice_id", invoiceID).
			Strs("errors", rejection).
			Msg("fattura scartata dal SdI")
		uc.notifier.NotifyRejected(inv, strings.Join(rejection, "; "))
		return nil, fmt.Errorf("%w: %s", domain.ErrExchangeRejection, strings.Join(rejection, "; "))
	}

	uc.log.Info().
		Str("invoice_id", invoiceID).
		Str("external_id", inv.ExternalID).
		Int("attempt", inv.SendAttempts).
		Msg("fattura trasmessa al SdI")

	return toStatusResponse(inv), nil
}

// GetStatus risposta leggera per il polling dello stato.
func (uc *SendInvoiceUseCase) GetStatus(ctx context.Context, companyID, invoiceID string) (*dto.InvoiceStatusResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(invoiceID)
	if err != nil || inv == nil {
		return nil, domain.ErrNotFound
	}
	if inv.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return toStatusResponse(inv), nil
}

func marshalErrors(errs []string) string {
	if len(errs) == 0 {
		return ""
	}
	b, err := json.Marshal(errs)
	if err != nil {
		return strings.Join(errs, "; ")
	}
	return string(b)
}

func toStatusResponse(inv *entity.ElectronicInvoice) *dto.InvoiceStatusResponse {
	return &dto.InvoiceStatusResponse{
		ID:            inv.ID,
		Status:        inv.Status,
		StatusMessage: inv.StatusMessage,
		ExternalID:    inv.ExternalID,
		SendAttempts:  inv.SendAttempts,
	}
}
