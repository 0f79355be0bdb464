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

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implementazione di CustomerRepository (usabile con pool o tx).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository costruisce l'adattatore. Passare pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

const customerColumns = `
	id, company_id, name, COALESCE(codice_fiscale, ''), COALESCE(partita_iva, ''),
	COALESCE(codice_destinatario, ''), COALESCE(pec, ''), address, cap, city, province,
	country, email, phone, anonymized_at, created_at, updated_at`

// Create persiste un nuovo cliente.
func (r *CustomerRepo) Create(customer *entity.Customer) error {
	if customer.ID == "" {
		customer.ID = uuid.New().String()
	}
	query := `
		INSERT INTO customers (id, company_id, name, codice_fiscale, partita_iva,
			codice_destinatario, pec, address, cap, city, province, country,
			email, phone, anonymized_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(context.Background(), query,
		customer.ID, customer.CompanyID, customer.Name,
		nullIfEmpty(customer.CodiceFiscale), nullIfEmpty(customer.PartitaIVA),
		nullIfEmpty(customer.CodiceDestinatario), nullIfEmpty(customer.PEC),
		customer.Address, customer.CAP, customer.City, customer.Province,
		customer.Country, customer.Email, customer.Phone, customer.AnonymizedAt,
		customer.CreatedAt, customer.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// GetByID legge un cliente per ID.
func (r *CustomerRepo) GetByID(id string) (*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

// GetByCompanyAndCodiceFiscale cerca il cliente della società per codice
// fiscale (deduplicazione anagrafica).
func (r *CustomerRepo) GetByCompanyAndCodiceFiscale(companyID, codiceFiscale string) (*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE company_id = $1 AND codice_fiscale = $2`
	return r.scanOne(r.q.QueryRow(context.Background(), query, companyID, codiceFiscale))
}

// ListByCompany elenca i clienti della società.
func (r *CustomerRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Customer, error) {
	query := `SELECT ` + customerColumns + `
		FROM customers
		WHERE company_id = $1
		ORDER BY name
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Customer
	for rows.Next() {
		c, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// Update persiste tutti i campi del cliente, anonimizzazione inclusa.
func (r *CustomerRepo) Update(customer *entity.Customer) error {
	query := `
		UPDATE customers
		SET name = $2, codice_fiscale = $3, partita_iva = $4, codice_destinatario = $5,
		    pec = $6, address = $7, cap = $8, city = $9, province = $10, country = $11,
		    email = $12, phone = $13, anonymized_at = $14, updated_at = $15
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		customer.ID, customer.Name,
		nullIfEmpty(customer.CodiceFiscale), nullIfEmpty(customer.PartitaIVA),
		nullIfEmpty(customer.CodiceDestinatario), nullIfEmpty(customer.PEC),
		customer.Address, customer.CAP, customer.City, customer.Province,
		customer.Country, customer.Email, customer.Phone, customer.AnonymizedAt,
		customer.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	return nil
}

// Delete elimina il cliente.
func (r *CustomerRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	return nil
}

func (r *CustomerRepo) scanOne(row pgx.Row) (*entity.Customer, error) {
	var c entity.Customer
	err := row.Scan(
		&c.ID, &c.CompanyID, &c.Name, &c.CodiceFiscale, &c.PartitaIVA,
		&c.CodiceDestinatario, &c.PEC, &c.Address, &c.CAP, &c.City, &c.Province,
		&c.Country, &c.Email, &c.Phone, &c.AnonymizedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}
