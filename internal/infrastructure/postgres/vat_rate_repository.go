package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/diaghi13/fs-gymme-sub005/internal/domain"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain/entity"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain/repository"
)

var _ repository.VatRateRepository = (*VatRateRepo)(nil)

// VatRateRepo implementazione di VatRateRepository (usabile con pool o tx).
type VatRateRepo struct {
	q Querier
}

// NewVatRateRepository costruisce l'adattatore. Passare pool o tx (Querier).
func NewVatRateRepository(q Querier) *VatRateRepo {
	return &VatRateRepo{q: q}
}

// Create persiste un'aliquota IVA (seed).
func (r *VatRateRepo) Create(rate *entity.VatRate) error {
	if rate.ID == "" {
		rate.ID = uuid.New().String()
	}
	query := `
		INSERT INTO vat_rates (id, code, description, percentage, natura, visible, withholding, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		rate.ID, rate.Code, rate.Description, rate.Percentage,
		nullIfEmpty(rate.Natura), rate.Visible, rate.Withholding,
		rate.CreatedAt, rate.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert vat rate: %w", err)
	}
	return nil
}

// GetByID legge un'aliquota per ID.
func (r *VatRateRepo) GetByID(id string) (*entity.VatRate, error) {
	query := `
		SELECT id, code, description, percentage, COALESCE(natura, ''), visible, withholding, created_at, updated_at
		FROM vat_rates WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

// GetByCode legge un'aliquota per codice interno.
func (r *VatRateRepo) GetByCode(code string) (*entity.VatRate, error) {
	query := `
		SELECT id, code, description, percentage, COALESCE(natura, ''), visible, withholding, created_at, updated_at
		FROM vat_rates WHERE code = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, code))
}

// List elenca le aliquote, opzionalmente solo quelle selezionabili nei listini.
func (r *VatRateRepo) List(onlyVisible bool) ([]*entity.VatRate, error) {
	query := `
		SELECT id, code, description, percentage, COALESCE(natura, ''), visible, withholding, created_at, updated_at
		FROM vat_rates
		WHERE ($1 = false OR visible = true)
		ORDER BY percentage DESC, code`
	rows, err := r.q.Query(context.Background(), query, onlyVisible)
	if err != nil {
		return nil, fmt.Errorf("list vat rates: %w", err)
	}
	defer rows.Close()
	var list []*entity.VatRate
	for rows.Next() {
		v, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, v)
	}
	return list, rows.Err()
}

func (r *VatRateRepo) scanOne(row pgx.Row) (*entity.VatRate, error) {
	var v entity.VatRate
	err := row.Scan(
		&v.ID, &v.Code, &v.Description, &v.Percentage, &v.Natura,
		&v.Visible, &v.Withholding, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get vat rate: %w", err)
	}
	return &v, nil
}
