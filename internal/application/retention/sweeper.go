// Package retention implementa lo sweeper di conservazione: individua le
// fatture oltre la finestra legale di ritenzione, anonimizza i dati personali
// e produce il riepilogo di conformità.
package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/diaghi13/fs-gymme-sub005/internal/application/dto"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain/repository"
	infrasdi "github.com/diaghi13/fs-gymme-sub005/internal/infrastructure/sdi"
)

// sweepBatchSize limite di fatture processate per passaggio.
const sweepBatchSize = 500

// TxRunner esegue la transazione di anonimizzazione di una singola fattura.
// Una transazione per fattura: il fallimento di un record non blocca gli altri.
type TxRunner interface {
	RunRetention(ctx context.Context, fn func(
		invoiceRepo repository.InvoiceRepository,
		saleRepo repository.SaleRepository,
		customerRepo repository.CustomerRepository,
	) error) error
}

// XMLStore dà accesso agli XML firmati archiviati: lo sweeper li riscrive
// con il cessionario anonimizzato.
type XMLStore interface {
	Read(path string) ([]byte, error)
	Write(path string, data []byte) error
}

// Config della politica di ritenzione.
type Config struct {
	Years         int // finestra legale, di norma 10 anni (art. 2220 c.c.)
	WarningMonths int // preavviso di prossima scadenza
}

// Sweeper classifica e anonimizza le fatture oltre la finestra di ritenzione.
type Sweeper struct {
	txRunner    TxRunner
	invoiceRepo repository.InvoiceRepository
	xmlStore    XMLStore
	cfg         Config
	log         zerolog.Logger
}

// NewSweeper costruisce lo sweeper.
func NewSweeper(txRunner TxRunner, invoiceRepo repository.InvoiceRepository, xmlStore XMLStore, cfg Config, log zerolog.Logger) *Sweeper {
	return &Sweeper{txRunner: txRunner, invoiceRepo: invoiceRepo, xmlStore: xmlStore, cfg: cfg, log: log}
}

// Run anonimizza le fatture della società oltre la scadenza di ritenzione.
// I fallimenti per record vengono raccolti, mai propagati: il passaggio
// completa sempre e riporta i conteggi.
func (s *Sweeper) Run(ctx context.Context, companyID string) (*dto.SweepResultResponse, error) {
	cutoff := time.Now().AddDate(-s.cfg.Years, 0, 0)

	expired, err := s.invoiceRepo.ListOlderThan(companyID, cutoff, true, sweepBatchSize)
	if err != nil {
		return nil, fmt.Errorf("retention: elenco fatture scadute: %w", err)
	}

	result := &dto.SweepResultResponse{Found: len(expired)}
	for _, inv := range expired {
		if err := s.anonymizeOne(ctx, inv.ID); err != nil {
			result.Failed++
			result.Failures = append(result.Failures, fmt.Sprintf("%s: %v", inv.ID, err))
			s.log.Error().Str("invoice_id", inv.ID).Err(err).Msg("anonimizzazione fallita, si prosegue")
			continue
		}
		result.Anonymized++
	}

	s.log.Info().
		Str("company_id", companyID).
		Int("found", result.Found).
		Int("anonymized", result.Anonymized).
		Int("failed", result.Failed).
		Msg("passaggio di conservazione completato")

	return result, nil
}

// anonymizeOne tratta una fattura nella sua transazione: anonimizza il
// cliente collegato, riscrive l'XML archiviato senza i dati identificativi
// (i totali fiscali restano intatti) e marca la fattura.
func (s *Sweeper) anonymizeOne(ctx context.Context, invoiceID string) error {
	return s.txRunner.RunRetention(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		saleRepo repository.SaleRepository,
		customerRepo repository.CustomerRepository,
	) error {
		inv, err := invoiceRepo.GetByIDForUpdate(invoiceID)
		if err != nil || inv == nil {
			return fmt.Errorf("lettura fattura: %w", err)
		}
		if inv.AnonymizedAt != nil {
			return nil // già trattata da un passaggio concorrente
		}
		now := time.Now()

		sale, err := saleRepo.GetByID(inv.SaleID)
		if err != nil || sale == nil {
			return fmt.Errorf("lettura vendita: %w", err)
		}
		customer, err := customerRepo.GetByID(sale.CustomerID)
		if err != nil || customer == nil {
			return fmt.Errorf("lettura cliente: %w", err)
		}
		if !customer.IsAnonymized() {
			customer.Anonymize(now)
			if err := customerRepo.Update(customer); err != nil {
				return fmt.Errorf("aggiornamento cliente: %w", err)
			}
		}

		if inv.XMLPath != "" {
			rawXML, err := s.xmlStore.Read(inv.XMLPath)
			if err != nil {
				return fmt.Errorf("lettura xml archiviato: %w", err)
			}
			anonXML, err := infrasdi.AnonymizeCessionario(rawXML)
			if err != nil {
				return fmt.Errorf("anonimizzazione xml: %w", err)
			}
			if err := s.xmlStore.Write(inv.XMLPath, anonXML); err != nil {
				return fmt.Errorf("riscrittura xml archiviato: %w", err)
			}
		}

		inv.AnonymizedAt = &now
		inv.UpdatedAt = now
		return invoiceRepo.Update(inv)
	})
}

// Dashboard produce il riepilogo di conformità della società, senza mutare
// alcuna fattura.
func (s *Sweeper) Dashboard(ctx context.Context, companyID string) (*dto.ComplianceDashboardResponse, error) {
	now := time.Now()
	deadline := now.AddDate(-s.cfg.Years, 0, 0)
	warning := deadline.AddDate(0, s.cfg.WarningMonths, 0)

	expired, nearExpiry, compliant, err := s.invoiceRepo.CountByAge(companyID, deadline, warning)
	if err != nil {
		return nil, fmt.Errorf("retention: conteggi di conformità: %w", err)
	}

	total := expired + nearExpiry + compliant
	resp := &dto.ComplianceDashboardResponse{
		RetentionYears: s.cfg.Years,
		Total:          total,
		Compliant:      compliant,
		NearExpiry:     nearExpiry,
		NonCompliant:   expired,
	}
	if total > 0 {
		resp.CompliantPercent = float64(compliant) / float64(total) * 100
		resp.NearExpiryPercent = float64(nearExpiry) / float64(total) * 100
	}
	return resp, nil
}
