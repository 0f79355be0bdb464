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

var _ repository.SubscriptionRepository = (*SubscriptionRepo)(nil)

// SubscriptionRepo implementazione di SubscriptionRepository (usabile con pool o tx).
type SubscriptionRepo struct {
	q Querier
}

// NewSubscriptionRepository costruisce l'adattatore. Passare pool o tx (Querier).
func NewSubscriptionRepository(q Querier) *SubscriptionRepo {
	return &SubscriptionRepo{q: q}
}

// Create persiste un nuovo abbonamento.
func (r *SubscriptionRepo) Create(subscription *entity.Subscription) error {
	if subscription.ID == "" {
		subscription.ID = uuid.New().String()
	}
	query := `
		INSERT INTO subscriptions (id, company_id, customer_id, sale_row_id, name,
			start_date, end_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		subscription.ID, subscription.CompanyID, subscription.CustomerID,
		subscription.SaleRowID, subscription.Name, subscription.StartDate,
		subscription.EndDate, subscription.Status, subscription.CreatedAt,
		subscription.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert subscription: %w", err)
	}
	return nil
}

// GetByID legge un abbonamento per ID.
func (r *SubscriptionRepo) GetByID(id string) (*entity.Subscription, error) {
	query := `
		SELECT id, company_id, customer_id, sale_row_id, name, start_date, end_date, status, created_at, updated_at
		FROM subscriptions WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

// GetBySaleRow legge l'abbonamento originato dalla riga di vendita
// (chiave di idempotenza del provisioning).
func (r *SubscriptionRepo) GetBySaleRow(saleRowID string) (*entity.Subscription, error) {
	query := `
		SELECT id, company_id, customer_id, sale_row_id, name, start_date, end_date, status, created_at, updated_at
		FROM subscriptions WHERE sale_row_id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, saleRowID))
}

// ListByCustomer elenca gli abbonamenti del cliente.
func (r *SubscriptionRepo) ListByCustomer(customerID string) ([]*entity.Subscription, error) {
	query := `
		SELECT id, company_id, customer_id, sale_row_id, name, start_date, end_date, status, created_at, updated_at
		FROM subscriptions
		WHERE customer_id = $1
		ORDER BY start_date DESC`
	rows, err := r.q.Query(context.Background(), query, customerID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()
	var list []*entity.Subscription
	for rows.Next() {
		s, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// UpdateStatus aggiorna il solo stato dell'abbonamento.
func (r *SubscriptionRepo) UpdateStatus(id, status string) error {
	query := `UPDATE subscriptions SET status = $2, updated_at = $3 WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, id, status, time.Now())
	if err != nil {
		return fmt.Errorf("update subscription status: %w", err)
	}
	return nil
}

func (r *SubscriptionRepo) scanOne(row pgx.Row) (*entity.Subscription, error) {
	var s entity.Subscription
	err := row.Scan(
		&s.ID, &s.CompanyID, &s.CustomerID, &s.SaleRowID, &s.Name,
		&s.StartDate, &s.EndDate, &s.Status, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	return &s, nil
}
