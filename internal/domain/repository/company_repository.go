package repository

import "github.com/diaghi13/fs-gymme-sub005/internal/domain/entity"

// CompanyRepository definisce la porta di persistenza per Company (DIP).
// L'implementazione vive in infrastructure.
type CompanyRepository interface {
	Create(company *entity.Company) error
	GetByID(id string) (*entity.Company, error)
	GetByPartitaIVA(partitaIVA string) (*entity.Company, error)
	Update(company *entity.Company) error
	List(limit, offset int) ([]*entity.Company, error)
}
