package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/diaghi13/fs-gymme-sub005/internal/domain/entity"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementazione di SaleRepository (usabile con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository costruisce l'adattatore. Passare pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create persiste la testata della vendita.
func (r *SaleRepo) Create(sale *entity.Sale) error {
	if sale.ID == "" {
		sale.ID = uuid.New().String()
	}
	query := `
		INSERT INTO sales (id, company_id, customer_id, status, date, progressivo, currency,
			total_net, total_vat, total_gross, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		sale.ID, sale.CompanyID, sale.CustomerID, sale.Status, sale.Date,
		sale.Progressivo, sale.Currency, sale.TotalNet, sale.TotalVat,
		sale.TotalGross, sale.CreatedAt, sale.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("progressivo vendita già assegnato: %w", err)
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

// CreateRow persiste una riga della vendita.
func (r *SaleRepo) CreateRow(row *entity.SaleRow) error {
	if row.ID == "" {
		row.ID = uuid.New().String()
	}
	query := `
		INSERT INTO sale_rows (id, sale_id, description, quantity, unit_price_net,
			discount_percent, discount_absolute, vat_rate_id, vat_percentage, vat_natura,
			total_net, vat_amount, total_gross, service_start, service_end, subscription_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(context.Background(), query,
		row.ID, row.SaleID, row.Description, row.Quantity, row.UnitPriceNet,
		row.DiscountPercent, row.DiscountAbsolute, row.VatRateID, row.VatPercentage,
		nullIfEmpty(row.VatNatura), row.TotalNet, row.VatAmount, row.TotalGross,
		row.ServiceStart, row.ServiceEnd, nullIfEmpty(row.SubscriptionID),
	)
	if err != nil {
		return fmt.Errorf("insert sale row: %w", err)
	}
	return nil
}

// CreatePayment persiste una scadenza di pagamento.
func (r *SaleRepo) CreatePayment(payment *entity.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	query := `
		INSERT INTO sale_payments (id, sale_id, method_code, due_date, amount)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(context.Background(), query,
		payment.ID, payment.SaleID, payment.MethodCode, payment.DueDate, payment.Amount,
	)
	if err != nil {
		return fmt.Errorf("insert sale payment: %w", err)
	}
	return nil
}

// GetByID restituisce la vendita completa di righe e pagamenti.
func (r *SaleRepo) GetByID(id string) (*entity.Sale, error) {
	query := `
		SELECT id, company_id, customer_id, status, date, progressivo, currency,
		       total_net, total_vat, total_gross, created_at, updated_at
		FROM sales WHERE id = $1`
	var s entity.Sale
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&s.ID, &s.CompanyID, &s.CustomerID, &s.Status, &s.Date, &s.Progressivo,
		&s.Currency, &s.TotalNet, &s.TotalVat, &s.TotalGross, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	if err := r.loadRows(&s); err != nil {
		return nil, err
	}
	if err := r.loadPayments(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByCompany elenca le vendite della società (solo testate).
func (r *SaleRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Sale, error) {
	query := `
		SELECT id, company_id, customer_id, status, date, progressivo, currency,
		       total_net, total_vat, total_gross, created_at, updated_at
		FROM sales
		WHERE company_id = $1
		ORDER BY date DESC, created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	var list []*entity.Sale
	for rows.Next() {
		var s entity.Sale
		if err := rows.Scan(
			&s.ID, &s.CompanyID, &s.CustomerID, &s.Status, &s.Date, &s.Progressivo,
			&s.Currency, &s.TotalNet, &s.TotalVat, &s.TotalGross, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// UpdateStatus aggiorna il solo stato della vendita.
func (r *SaleRepo) UpdateStatus(id, status string) error {
	query := `UPDATE sales SET status = $2, updated_at = $3 WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, id, status, time.Now())
	if err != nil {
		return fmt.Errorf("update sale status: %w", err)
	}
	return nil
}

// SetRowSubscription collega la riga all'abbonamento creato dal provisioning.
func (r *SaleRepo) SetRowSubscription(rowID, subscriptionID string) error {
	query := `UPDATE sale_rows SET subscription_id = $2 WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, rowID, subscriptionID)
	if err != nil {
		return fmt.Errorf("set row subscription: %w", err)
	}
	return nil
}

// NextProgressivo incrementa e restituisce il progressivo della società per
// l'anno indicato. L'UPSERT con RETURNING è atomico.
func (r *SaleRepo) NextProgressivo(companyID string, year int) (string, error) {
	query := `
		INSERT INTO sale_progressivi (company_id, year, last_value)
		VALUES ($1, $2, 1)
		ON CONFLICT (company_id, year)
		DO UPDATE SET last_value = sale_progressivi.last_value + 1
		RETURNING last_value`
	var n int64
	if err := r.q.QueryRow(context.Background(), query, companyID, year).Scan(&n); err != nil {
		return "", fmt.Errorf("next progressivo vendita: %w", err)
	}
	return fmt.Sprintf("%d/%d", n, year), nil
}

// ── helper ──

func (r *SaleRepo) loadRows(s *entity.Sale) error {
	query := `
		SELECT id, sale_id, description, quantity, unit_price_net,
		       discount_percent, discount_absolute, vat_rate_id, vat_percentage,
		       COALESCE(vat_natura, ''), total_net, vat_amount, total_gross,
		       service_start, service_end, COALESCE(subscription_id, '')
		FROM sale_rows WHERE sale_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, s.ID)
	if err != nil {
		return fmt.Errorf("list sale rows: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var row entity.SaleRow
		if err := rows.Scan(
			&row.ID, &row.SaleID, &row.Description, &row.Quantity, &row.UnitPriceNet,
			&row.DiscountPercent, &row.DiscountAbsolute, &row.VatRateID, &row.VatPercentage,
			&row.VatNatura, &row.TotalNet, &row.VatAmount, &row.TotalGross,
			&row.ServiceStart, &row.ServiceEnd, &row.SubscriptionID,
		); err != nil {
			return fmt.Errorf("scan sale row: %w", err)
		}
		s.Rows = append(s.Rows, row)
	}
	return rows.Err()
}

func (r *SaleRepo) loadPayments(s *entity.Sale) error {
	query := `
		SELECT id, sale_id, method_code, due_date, amount
		FROM sale_payments WHERE sale_id = $1 ORDER BY due_date`
	rows, err := r.q.Query(context.Background(), query, s.ID)
	if err != nil {
		return fmt.Errorf("list sale payments: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p entity.Payment
		if err := rows.Scan(&p.ID, &p.SaleID, &p.MethodCode, &p.DueDate, &p.Amount); err != nil {
			return fmt.Errorf("scan sale payment: %w", err)
		}
		s.Payments = append(s.Payments, p)
	}
	return rows.Err()
}
