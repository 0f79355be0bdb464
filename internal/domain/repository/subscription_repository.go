package repository

import "github.com/diaghi13/fs-gymme-sub005/internal/domain/entity"

// SubscriptionRepository definisce la porta di persistenza per gli abbonamenti.
type SubscriptionRepository interface {
	Create(subscription *entity.Subscription) error
	GetByID(id string) (*entity.Subscription, error)
	GetBySaleRow(saleRowID string) (*entity.Subscription, error)
	ListByCustomer(customerID string) ([]*entity.Subscription, error)
	UpdateStatus(id, status string) error
}
