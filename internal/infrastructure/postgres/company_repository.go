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

var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo implementazione di CompanyRepository (usabile con pool o tx).
type CompanyRepo struct {
	q Querier
}

// NewCompanyRepository costruisce l'adattatore. Passare pool o tx (Querier).
func NewCompanyRepository(q Querier) *CompanyRepo {
	return &CompanyRepo{q: q}
}

const companyColumns = `
	id, name, partita_iva, COALESCE(codice_fiscale, ''), regime_fiscale,
	address, cap, city, province, country, email, phone, COALESCE(iban, ''),
	status, created_at, updated_at`

// Create persiste una nuova società.
func (r *CompanyRepo) Create(company *entity.Company) error {
	if company.ID == "" {
		company.ID = uuid.New().String()
	}
	query := `
		INSERT INTO companies (id, name, partita_iva, codice_fiscale, regime_fiscale,
			address, cap, city, province, country, email, phone, iban, status,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(context.Background(), query,
		company.ID, company.Name, company.PartitaIVA, nullIfEmpty(company.CodiceFiscale),
		company.RegimeFiscale, company.Address, company.CAP, company.City,
		company.Province, company.Country, company.Email, company.Phone,
		nullIfEmpty(company.IBAN), company.Status, company.CreatedAt, company.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

// GetByID legge una società per ID.
func (r *CompanyRepo) GetByID(id string) (*entity.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

// GetByPartitaIVA legge una società per partita IVA.
func (r *CompanyRepo) GetByPartitaIVA(partitaIVA string) (*entity.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE partita_iva = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, partitaIVA))
}

// Update persiste i campi anagrafici della società.
func (r *CompanyRepo) Update(company *entity.Company) error {
	query := `
		UPDATE companies
		SET name = $2, partita_iva = $3, codice_fiscale = $4, regime_fiscale = $5,
		    address = $6, cap = $7, city = $8, province = $9, country = $10,
		    email = $11, phone = $12, iban = $13, status = $14, updated_at = $15
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		company.ID, company.Name, company.PartitaIVA, nullIfEmpty(company.CodiceFiscale),
		company.RegimeFiscale, company.Address, company.CAP, company.City,
		company.Province, company.Country, company.Email, company.Phone,
		nullIfEmpty(company.IBAN), company.Status, company.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update company: %w", err)
	}
	return nil
}

// List elenca le società registrate.
func (r *CompanyRepo) List(limit, offset int) ([]*entity.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()
	var list []*entity.Company
	for rows.Next() {
		c, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (r *CompanyRepo) scanOne(row pgx.Row) (*entity.Company, error) {
	var c entity.Company
	err := row.Scan(
		&c.ID, &c.Name, &c.PartitaIVA, &c.CodiceFiscale, &c.RegimeFiscale,
		&c.Address, &c.CAP, &c.City, &c.Province, &c.Country, &c.Email, &c.Phone,
		&c.IBAN, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return &c, nil
}
