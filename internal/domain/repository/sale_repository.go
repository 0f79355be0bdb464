package repository

import "github.com/diaghi13/fs-gymme-sub005/internal/domain/entity"

// SaleRepository definisce la porta di persistenza per Sale, righe e pagamenti.
type SaleRepository interface {
	Create(sale *entity.Sale) error
	CreateRow(row *entity.SaleRow) error
	CreatePayment(payment *entity.Payment) error
	// GetByID restituisce la vendita completa di righe e pagamenti.
	GetByID(id string) (*entity.Sale, error)
	ListByCompany(companyID string, limit, offset int) ([]*entity.Sale, error)
	UpdateStatus(id, status string) error
	// SetRowSubscription collega la riga all'abbonamento creato dal provisioning.
	SetRowSubscription(rowID, subscriptionID string) error
	// NextProgressivo restituisce il progressivo successivo per società e anno.
	NextProgressivo(companyID string, year int) (string, error)
}
