package entity

import "time"

// Stati di un abbonamento.
const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusExpired  = "expired"
	SubscriptionStatusCanceled = "canceled"
)

// Subscription rappresenta un abbonamento attivato da una riga di vendita
// con periodo di validità. Creato dal provisioning post-commit, mai
// contestualmente al salvataggio della riga.
type Subscription struct {
	ID         string
	CompanyID  string
	CustomerID string
	SaleRowID  string // riga di vendita che ha originato l'abbonamento
	Name       string
	StartDate  time.Time
	EndDate    time.Time
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsActive indica un abbonamento in corso di validità alla data indicata.
func (s *Subscription) IsActive(at time.Time) bool {
	return s.Status == SubscriptionStatusActive &&
		!at.Before(s.StartDate) && !at.After(s.EndDate)
}
