package repository

import "github.com/diaghi13/fs-gymme-sub005/internal/domain/entity"

// CustomerRepository definisce la porta di persistenza per Customer.
type CustomerRepository interface {
	Create(customer *entity.Customer) error
	GetByID(id string) (*entity.Customer, error)
	GetByCompanyAndCodiceFiscale(companyID, codiceFiscale string) (*entity.Customer, error)
	ListByCompany(companyID string, limit, offset int) ([]*entity.Customer, error)
	Update(customer *entity.Customer) error
	Delete(id string) error
}
