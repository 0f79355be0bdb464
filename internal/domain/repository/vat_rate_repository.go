package repository

import "github.com/diaghi13/fs-gymme-sub005/internal/domain/entity"

// VatRateRepository definisce la porta di persistenza per le aliquote IVA.
// Dato di riferimento: si inserisce da seed e si legge, mai si calcola.
type VatRateRepository interface {
	Create(rate *entity.VatRate) error
	GetByID(id string) (*entity.VatRate, error)
	GetByCode(code string) (*entity.VatRate, error)
	List(onlyVisible bool) ([]*entity.VatRate, error)
}
