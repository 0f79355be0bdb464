package repository

import "github.com/diaghi13/fs-gymme-sub005/internal/domain/entity"

// UserRepository definisce la porta di persistenza per User (DIP).
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id string) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	Update(user *entity.User) error
	ListByCompany(companyID string, limit, offset int) ([]*entity.User, error)
}
