package billing

import "time"

// SaleRowCreatedEvent è pubblicato dopo il commit della vendita, una volta per
// riga con periodo di validità. Il provisioning degli abbonamenti lo consuma
// fuori dalla transazione di origine: la creazione della riga e la creazione
// dell'abbonamento restano testabili separatamente.
type SaleRowCreatedEvent struct {
	CompanyID    string
	CustomerID   string
	SaleID       string
	SaleRowID    string
	Description  string
	ServiceStart time.Time
	ServiceEnd   time.Time
	OccurredAt   time.Time
}
