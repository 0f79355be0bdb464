package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diaghi13/fs-gymme-sub005/internal/application/billing"
	"github.com/diaghi13/fs-gymme-sub005/internal/application/retention"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain/repository"
)

// Ensure TxRunner implements billing.BillingTxRunner and retention.TxRunner.
var _ billing.BillingTxRunner = (*TxRunner)(nil)
var _ retention.TxRunner = (*TxRunner)(nil)

// TxRunner esegue callback dentro una transazione PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner costruisce il runner con il pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunSale apre una transazione per la creazione della vendita.
func (r *TxRunner) RunSale(ctx context.Context, fn func(
	saleRepo repository.SaleRepository,
) error) error {
	return r.run(ctx, func(tx Querier) error {
		return fn(NewSaleRepository(tx))
	})
}

// RunGenerate apre una transazione per la generazione della fattura:
// progressivo di invio, scrittura XML e insert della testata nello stesso
// perimetro atomico.
func (r *TxRunner) RunGenerate(ctx context.Context, fn func(
	saleRepo repository.SaleRepository,
	invoiceRepo repository.InvoiceRepository,
) error) error {
	return r.run(ctx, func(tx Querier) error {
		return fn(NewSaleRepository(tx), NewInvoiceRepository(tx))
	})
}

// RunSend apre una transazione per l'invio: il chiamante apre con
// GetByIDForUpdate, così i tentativi concorrenti si serializzano sul lock
// di riga.
func (r *TxRunner) RunSend(ctx context.Context, fn func(
	invoiceRepo repository.InvoiceRepository,
) error) error {
	return r.run(ctx, func(tx Querier) error {
		return fn(NewInvoiceRepository(tx))
	})
}

// RunRetention apre la transazione di anonimizzazione di una fattura.
func (r *TxRunner) RunRetention(ctx context.Context, fn func(
	invoiceRepo repository.InvoiceRepository,
	saleRepo repository.SaleRepository,
	customerRepo repository.CustomerRepository,
) error) error {
	return r.run(ctx, func(tx Querier) error {
		return fn(NewInvoiceRepository(tx), NewSaleRepository(tx), NewCustomerRepository(tx))
	})
}

func (r *TxRunner) run(ctx context.Context, fn func(tx Querier) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
