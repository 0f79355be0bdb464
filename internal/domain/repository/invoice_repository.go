package repository

import (
	"time"

	"github.com/diaghi13/fs-gymme-sub005/internal/domain/entity"
)

// InvoiceRepository definisce la porta di persistenza per ElectronicInvoice
// e per il registro tentativi (append-only).
type InvoiceRepository interface {
	Create(invoice *entity.ElectronicInvoice) error
	// NextProgressivo restituisce il progressivo di invio successivo per la
	// società (sequenza dedicata, monotona).
	NextProgressivo(companyID string) (string, error)
	GetByID(id string) (*entity.ElectronicInvoice, error)
	// GetByIDForUpdate legge la fattura con lock di riga (SELECT ... FOR
	// UPDATE). Da usare dentro una transazione prima di ogni invio: serializza
	// i tentativi concorrenti sulla stessa fattura.
	GetByIDForUpdate(id string) (*entity.ElectronicInvoice, error)
	// GetActiveBySale restituisce la fattura non sostituita della vendita per
	// tipo documento, domain.ErrNotFound se assente.
	GetActiveBySale(saleID, documentType string) (*entity.ElectronicInvoice, error)
	// Update persiste i campi mutabili: stato, messaggio, contatore tentativi,
	// identificativi esterni, conservazione.
	Update(invoice *entity.ElectronicInvoice) error
	ListByCompany(companyID string, status string, limit, offset int) ([]*entity.ElectronicInvoice, error)
	// GetByTransmissionID risolve la fattura dalla chiave di correlazione
	// presente nelle notifiche asincrone del SdI.
	GetByTransmissionID(transmissionID string) (*entity.ElectronicInvoice, error)
	// GetByExternalID risolve la fattura dall'IdentificativoSdI.
	GetByExternalID(externalID string) (*entity.ElectronicInvoice, error)

	// CreateAttempt appende una riga al registro tentativi. Mai aggiornata.
	CreateAttempt(attempt *entity.SendAttempt) error
	ListAttempts(invoiceID string) ([]*entity.SendAttempt, error)

	// ListOlderThan restituisce le fatture emesse prima della soglia, per lo
	// sweeper di conservazione. Con onlyNotAnonymized esclude le già trattate.
	ListOlderThan(companyID string, cutoff time.Time, onlyNotAnonymized bool, limit int) ([]*entity.ElectronicInvoice, error)
	// CountByAge classifica le fatture della società rispetto alle soglie di
	// scadenza e preavviso, per il cruscotto di conformità.
	CountByAge(companyID string, deadline, warning time.Time) (expired, nearExpiry, compliant int, err error)
}
