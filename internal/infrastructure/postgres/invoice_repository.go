package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/diaghi13/fs-gymme-sub005/internal/domain"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain/entity"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementazione di InvoiceRepository (usabile con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository costruisce l'adattatore. Passare pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `
	id, company_id, sale_id, document_type, progressivo, xml_path,
	transmission_id, COALESCE(external_id, ''), status, status_message, status_updated_at,
	send_attempts, last_attempt_at, preserved_at, COALESCE(preservation_ref, ''),
	anonymized_at, created_at, updated_at`

// Create persiste la testata della fattura elettronica.
func (r *InvoiceRepo) Create(invoice *entity.ElectronicInvoice) error {
	if invoice.ID == "" {
		invoice.ID = uuid.New().String()
	}
	query := `
		INSERT INTO electronic_invoices (id, company_id, sale_id, document_type, progressivo, xml_path,
			transmission_id, external_id, status, status_message, status_updated_at,
			send_attempts, last_attempt_at, preserved_at, preservation_ref, anonymized_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(context.Background(), query,
		invoice.ID, invoice.CompanyID, invoice.SaleID, invoice.DocumentType,
		invoice.Progressivo, invoice.XMLPath, invoice.TransmissionID,
		nullIfEmpty(invoice.ExternalID), invoice.Status, invoice.StatusMessage,
		invoice.StatusUpdatedAt, invoice.SendAttempts, invoice.LastAttemptAt,
		invoice.PreservedAt, nullIfEmpty(invoice.PreservationRef), invoice.AnonymizedAt,
		invoice.CreatedAt, invoice.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateInvoice
		}
		return fmt.Errorf("insert electronic invoice: %w", err)
	}
	return nil
}

// NextProgressivo incrementa e restituisce il progressivo di invio della
// società. L'UPSERT con RETURNING è atomico: due generazioni concorrenti
// non ottengono mai lo stesso valore.
func (r *InvoiceRepo) NextProgressivo(companyID string) (string, error) {
	query := `
		INSERT INTO invoice_progressivi (company_id, last_value)
		VALUES ($1, 1)
		ON CONFLICT (company_id)
		DO UPDATE SET last_value = invoice_progressivi.last_value + 1
		RETURNING last_value`
	var n int64
	if err := r.q.QueryRow(context.Background(), query, companyID).Scan(&n); err != nil {
		return "", fmt.Errorf("next progressivo fattura: %w", err)
	}
	return fmt.Sprintf("%05d", n), nil
}

// GetByID legge la fattura per ID.
func (r *InvoiceRepo) GetByID(id string) (*entity.ElectronicInvoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM electronic_invoices WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

// GetByIDForUpdate legge la fattura con lock di riga. Da usare dentro una
// transazione: serializza i tentativi di invio concorrenti.
func (r *InvoiceRepo) GetByIDForUpdate(id string) (*entity.ElectronicInvoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM electronic_invoices WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

// GetActiveBySale restituisce la fattura della vendita per tipo documento.
func (r *InvoiceRepo) GetActiveBySale(saleID, documentType string) (*entity.ElectronicInvoice, error) {
	query := `SELECT ` + invoiceColumns + `
		FROM electronic_invoices
		WHERE sale_id = $1 AND document_type = $2
		ORDER BY created_at DESC
		LIMIT 1`
	inv, err := r.scanOne(r.q.QueryRow(context.Background(), query, saleID, documentType))
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}

// GetByTransmissionID risolve la fattura dalla chiave di correlazione locale.
func (r *InvoiceRepo) GetByTransmissionID(transmissionID string) (*entity.ElectronicInvoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM electronic_invoices WHERE transmission_id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, transmissionID))
}

// GetByExternalID risolve la fattura dall'IdentificativoSdI della notifica.
func (r *InvoiceRepo) GetByExternalID(externalID string) (*entity.ElectronicInvoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM electronic_invoices WHERE external_id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, externalID))
}

// Update persiste i campi mutabili della fattura.
func (r *InvoiceRepo) Update(invoice *entity.ElectronicInvoice) error {
	query := `
		UPDATE electronic_invoices
		SET status            = $2,
		    status_message    = $3,
		    status_updated_at = $4,
		    external_id       = COALESCE($5, external_id),
		    send_attempts     = $6,
		    last_attempt_at   = $7,
		    preserved_at      = $8,
		    preservation_ref  = COALESCE($9, preservation_ref),
		    anonymized_at     = $10,
		    updated_at        = $11
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		invoice.ID, invoice.Status, invoice.StatusMessage, invoice.StatusUpdatedAt,
		nullIfEmpty(invoice.ExternalID), invoice.SendAttempts, invoice.LastAttemptAt,
		invoice.PreservedAt, nullIfEmpty(invoice.PreservationRef), invoice.AnonymizedAt,
		invoice.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update electronic invoice: %w", err)
	}
	return nil
}

// ListByCompany elenca le fatture della società, con filtro opzionale di stato.
func (r *InvoiceRepo) ListByCompany(companyID string, status string, limit, offset int) ([]*entity.ElectronicInvoice, error) {
	query := `SELECT ` + invoiceColumns + `
		FROM electronic_invoices
		WHERE company_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(context.Background(), query, companyID, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list electronic invoices: %w", err)
	}
	defer rows.Close()
	return r.scanMany(rows)
}

// ListOlderThan restituisce le fatture emesse prima della soglia, per lo
// sweeper di conservazione.
func (r *InvoiceRepo) ListOlderThan(companyID string, cutoff time.Time, onlyNotAnonymized bool, limit int) ([]*entity.ElectronicInvoice, error) {
	query := `SELECT ` + invoiceColumns + `
		FROM electronic_invoices
		WHERE company_id = $1 AND created_at < $2 AND ($3 = false OR anonymized_at IS NULL)
		ORDER BY created_at ASC
		LIMIT $4`
	rows, err := r.q.Query(context.Background(), query, companyID, cutoff, onlyNotAnonymized, limit)
	if err != nil {
		return nil, fmt.Errorf("list invoices older than: %w", err)
	}
	defer rows.Close()
	return r.scanMany(rows)
}

// CountByAge classifica le fatture rispetto alle soglie di ritenzione
// per il cruscotto di conformità.
func (r *InvoiceRepo) CountByAge(companyID string, deadline, warning time.Time) (expired, nearExpiry, compliant int, err error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE created_at < $2 AND anonymized_at IS NULL),
			COUNT(*) FILTER (WHERE created_at >= $2 AND created_at < $3),
			COUNT(*) FILTER (WHERE created_at >= $3 OR anonymized_at IS NOT NULL)
		FROM electronic_invoices
		WHERE company_id = $1`
	if err = r.q.QueryRow(context.Background(), query, companyID, deadline, warning).Scan(&expired, &nearExpiry, &compliant); err != nil {
		return 0, 0, 0, fmt.Errorf("count invoices by age: %w", err)
	}
	return expired, nearExpiry, compliant, nil
}

// CreateAttempt appende una riga al registro tentativi (append-only).
func (r *InvoiceRepo) CreateAttempt(attempt *entity.SendAttempt) error {
	if attempt.ID == "" {
		attempt.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoice_send_attempts (id, invoice_id, attempt_number, outcome,
			request_payload, response_payload, errors, external_id, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		attempt.ID, attempt.InvoiceID, attempt.AttemptNumber, attempt.Outcome,
		attempt.RequestPayload, attempt.ResponsePayload, attempt.Errors,
		nullIfEmpty(attempt.ExternalID), nullIfEmpty(attempt.UserID), attempt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert send attempt: %w", err)
	}
	return nil
}

// ListAttempts elenca i tentativi di una fattura in ordine cronologico.
func (r *InvoiceRepo) ListAttempts(invoiceID string) ([]*entity.SendAttempt, error) {
	query := `
		SELECT id, invoice_id, attempt_number, outcome, request_payload, response_payload,
		       errors, COALESCE(external_id, ''), COALESCE(user_id, ''), created_at
		FROM invoice_send_attempts
		WHERE invoice_id = $1
		ORDER BY attempt_number ASC`
	rows, err := r.q.Query(context.Background(), query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list send attempts: %w", err)
	}
	defer rows.Close()
	var list []*entity.SendAttempt
	for rows.Next() {
		var a entity.SendAttempt
		if err := rows.Scan(&a.ID, &a.InvoiceID, &a.AttemptNumber, &a.Outcome,
			&a.RequestPayload, &a.ResponsePayload, &a.Errors, &a.ExternalID,
			&a.UserID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan send attempt: %w", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}

// ── helper ──

func (r *InvoiceRepo) scanOne(row pgx.Row) (*entity.ElectronicInvoice, error) {
	var inv entity.ElectronicInvoice
	err := row.Scan(
		&inv.ID, &inv.CompanyID, &inv.SaleID, &inv.DocumentType, &inv.Progressivo,
		&inv.XMLPath, &inv.TransmissionID, &inv.ExternalID, &inv.Status,
		&inv.StatusMessage, &inv.StatusUpdatedAt, &inv.SendAttempts,
		&inv.LastAttemptAt, &inv.PreservedAt, &inv.PreservationRef,
		&inv.AnonymizedAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get electronic invoice: %w", err)
	}
	return &inv, nil
}

func (r *InvoiceRepo) scanMany(rows pgx.Rows) ([]*entity.ElectronicInvoice, error) {
	var list []*entity.ElectronicInvoice
	for rows.Next() {
		var inv entity.ElectronicInvoice
		if err := rows.Scan(
			&inv.ID, &inv.CompanyID, &inv.SaleID, &inv.DocumentType, &inv.Progressivo,
			&inv.XMLPath, &inv.TransmissionID, &inv.ExternalID, &inv.Status,
			&inv.StatusMessage, &inv.StatusUpdatedAt, &inv.SendAttempts,
			&inv.LastAttemptAt, &inv.PreservedAt, &inv.PreservationRef,
			&inv.AnonymizedAt, &inv.CreatedAt, &inv.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan electronic invoice: %w", err)
		}
		list = append(list, &inv)
	}
	return list, rows.Err()
}
