package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stati di una vendita. Una vendita finalizzata (saved/sent) è immutabile.
const (
	SaleStatusDraft    = "draft"
	SaleStatusSaved    = "saved"
	SaleStatusSent     = "sent" // fattura trasmessa al SdI
	SaleStatusCanceled = "canceled"
)

// Sale rappresenta una transazione commerciale (vendita al banco o
// abbonamento). Dopo la finalizzazione righe e pagamenti non cambiano più.
type Sale struct {
	ID           string
	CompanyID    string
	CustomerID   string
	Status       string // draft, saved, sent, canceled
	Date         time.Time
	Progressivo  string // numero progressivo univoco per società/anno
	Currency     string // ISO 4217, di norma "EUR"
	TotalNet     decimal.Decimal
	TotalVat     decimal.Decimal
	TotalGross   decimal.Decimal
	Rows         []SaleRow
	Payments     []Payment
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SaleRow rappresenta una riga della vendita. I totali sono calcolati e
// arrotondati a livello di riga, mai per unità.
type SaleRow struct {
	ID               string
	SaleID           string
	Description      string
	Quantity         decimal.Decimal
	UnitPriceNet     decimal.Decimal // prezzo unitario al netto dell'IVA
	DiscountPercent  decimal.Decimal // sconto percentuale sul netto
	DiscountAbsolute decimal.Decimal // sconto assoluto sul netto, in euro
	VatRateID        string
	VatPercentage    decimal.Decimal // denormalizzata dall'aliquota al momento della vendita
	VatNatura        string          // valorizzata quando VatPercentage = 0
	TotalNet         decimal.Decimal
	VatAmount        decimal.Decimal
	TotalGross       decimal.Decimal
	ServiceStart     *time.Time // periodo di validità (abbonamenti)
	ServiceEnd       *time.Time
	SubscriptionID   string // valorizzato dal provisioning post-vendita
}

// IsSubscription indica una riga con periodo di validità, che alla
// finalizzazione della vendita genera un abbonamento.
func (r *SaleRow) IsSubscription() bool {
	return r.ServiceStart != nil && r.ServiceEnd != nil
}

// Payment rappresenta una scadenza di pagamento della vendita
// (blocco DettaglioPagamento in fattura).
type Payment struct {
	ID         string
	SaleID     string
	MethodCode string // MP01 contanti, MP05 bonifico, MP08 carta, ...
	DueDate    time.Time
	Amount     decimal.Decimal
}

// IsFinalized indica che la vendita è stata chiusa ed è fatturabile.
func (s *Sale) IsFinalized() bool {
	return s.Status == SaleStatusSaved || s.Status == SaleStatusSent
}

// CanInvoice indica se la vendita ammette la generazione della fattura:
// esclude bozze e vendite annullate.
func (s *Sale) CanInvoice() bool {
	return s.Status != SaleStatusDraft && s.Status != SaleStatusCanceled
}

// Reconcile verifica che i totali di testata quadrino con la somma delle
// righe entro la tolleranza di arrotondamento (un centesimo per riga).
func (s *Sale) Reconcile() bool {
	var net, vat, gross decimal.Decimal
	for _, r := range s.Rows {
		net = net.Add(r.TotalNet)
		vat = vat.Add(r.VatAmount)
		gross = gross.Add(r.TotalGross)
	}
	tolerance := decimal.NewFromInt(int64(len(s.Rows))).Div(decimal.NewFromInt(100))
	return s.TotalNet.Sub(net).Abs().LessThanOrEqual(tolerance) &&
		s.TotalVat.Sub(vat).Abs().LessThanOrEqual(tolerance) &&
		s.TotalGross.Sub(gross).Abs().LessThanOrEqual(tolerance)
}
