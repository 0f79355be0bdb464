package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/diaghi13/fs-gymme-sub005/internal/application/dto"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain/entity"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain/repository"
)

// PreserveInvoiceUseCase marca la fattura come messa in conservazione
// sostitutiva. Ammesso solo su fatture accettate; il riferimento è l'impronta
// SHA-256 dell'XML archiviato.
type PreserveInvoiceUseCase struct {
	txRunner BillingTxRunner
	xmlStore XMLStore
	log      zerolog.Logger
}

// NewPreserveInvoiceUseCase costruisce il caso d'uso.
func NewPreserveInvoiceUseCase(txRunner BillingTxRunner, xmlStore XMLStore, log zerolog.Logger) *PreserveInvoiceUseCase {
	return &PreserveInvoiceUseCase{txRunner: txRunner, xmlStore: xmlStore, log: log}
}

// Preserve calcola l'impronta dell'XML e marca la fattura come conservata.
func (uc *PreserveInvoiceUseCase) Preserve(ctx context.Context, companyID, invoiceID string) (*dto.InvoiceResponse, error) {
	var inv *entity.ElectronicInvoice
	err := uc.txRunner.RunSend(ctx, func(invoiceRepo repository.InvoiceRepository) error {
		locked, err := invoiceRepo.GetByIDForUpdate(invoiceID)
		if err != nil || locked == nil {
			return domain.ErrNotFound
		}
		if locked.CompanyID != companyID {
			return domain.ErrForbidden
		}
		inv = locked

		xmlData, err := uc.xmlStore.Read(inv.XMLPath)
		if err != nil {
			return err
		}
		digest := sha256.Sum256(xmlData)
		ref := "sha256:" + hex.EncodeToString(digest[:])

		if err := inv.MarkPreserved(ref, time.Now()); err != nil {
			switch {
			case errors.Is(err, entity.ErrInvoiceNotPreservable):
				return domain.ErrNotPreservable
			case errors.Is(err, entity.ErrInvoiceAlreadyPreserved):
				return domain.ErrConflict
			}
			return err
		}
		return invoiceRepo.Update(inv)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("invoice_id", inv.ID).
		Str("preservation_ref", inv.PreservationRef).
		Msg("fattura messa in conservazione")

	return toInvoiceResponse(inv), nil
}
