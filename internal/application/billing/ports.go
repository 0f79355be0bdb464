package billing

import (
	"context"

	"github.com/diaghi13/fs-gymme-sub005/internal/domain/entity"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain/repository"
)

// BillingTxRunner esegue callback dentro una transazione PostgreSQL con repo
// legati alla transazione. Un runner per flusso: generazione, invio, vendita.
type BillingTxRunner interface {
	// RunGenerate: transazione per la generazione fattura (vendita + fattura).
	RunGenerate(ctx context.Context, fn func(
		saleRepo repository.SaleRepository,
		invoiceRepo repository.InvoiceRepository,
	) error) error

	// RunSend: transazione per l'invio. Il chiamante deve aprire con
	// GetByIDForUpdate per serializzare i tentativi concorrenti.
	RunSend(ctx context.Context, fn func(
		invoiceRepo repository.InvoiceRepository,
	) error) error

	// RunSale: transazione per la creazione della vendita.
	RunSale(ctx context.Context, fn func(
		saleRepo repository.SaleRepository,
	) error) error
}

// XMLStore persiste gli XML delle fatture su disco. La scrittura è idempotente
// per percorso: rigenerare la stessa fattura sovrascrive lo stesso file.
type XMLStore interface {
	Write(path string, data []byte) error
	Read(path string) ([]byte, error)
	Remove(path string) error
}

// Notifier inoltra gli esiti di trasmissione agli interessati: allerta agli
// operatori sugli scarti, conferma al cliente sulle accettazioni.
type Notifier interface {
	NotifyRejected(invoice *entity.ElectronicInvoice, errors string)
	NotifyAccepted(invoice *entity.ElectronicInvoice)
}

// EventPublisher pubblica eventi post-commit del flusso vendite. I consumer
// (provisioning abbonamenti) girano fuori dalla transazione di origine.
type EventPublisher interface {
	Publish(event SaleRowCreatedEvent)
}

// InvoicePDFGenerator produce la resa PDF leggibile della fattura.
type InvoicePDFGenerator interface {
	Generate(sale *entity.Sale, invoice *entity.ElectronicInvoice, company *entity.Company, customer *entity.Customer) ([]byte, error)
}
