package dto

import "github.com/shopspring/decimal"

// CreateSaleRequest body per POST /api/sales.
type CreateSaleRequest struct {
	CustomerID string               `json:"customer_id"`
	Date       string               `json:"date,omitempty"` // YYYY-MM-DD; vuota = oggi
	Currency   string               `json:"currency,omitempty"`
	Rows       []SaleRowRequest     `json:"rows"`
	Payments   []SalePaymentRequest `json:"payments"`
	Finalize   bool                 `json:"finalize"` // true = saved, false = draft
}

// SaleRowRequest riga della vendita. I totali si calcolano lato server.
type SaleRowRequest struct {
	Description      string          `json:"description"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitPriceNet     decimal.Decimal `json:"unit_price_net"`
	DiscountPercent  decimal.Decimal `json:"discount_percent,omitempty"`
	DiscountAbsolute decimal.Decimal `json:"discount_absolute,omitempty"`
	VatRateCode      string          `json:"vat_rate_code"`
	ServiceStart     string          `json:"service_start,omitempty"` // YYYY-MM-DD, per abbonamenti
	ServiceEnd       string          `json:"service_end,omitempty"`
}

// SalePaymentRequest scadenza di pagamento.
type SalePaymentRequest struct {
	MethodCode string          `json:"method_code"` // MP01, MP05, MP08, ...
	DueDate    string          `json:"due_date,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
}

// SaleResponse vendita con righe e pagamenti per GET /api/sales/:id.
type SaleResponse struct {
	ID          string                `json:"id"`
	CompanyID   string                `json:"company_id"`
	CustomerID  string                `json:"customer_id"`
	Status      string                `json:"status"`
	Date        string                `json:"date"`
	Progressivo string                `json:"progressivo"`
	Currency    string                `json:"currency"`
	TotalNet    decimal.Decimal       `json:"total_net"`
	TotalVat    decimal.Decimal       `json:"total_vat"`
	TotalGross  decimal.Decimal       `json:"total_gross"`
	Rows        []SaleRowResponse     `json:"rows"`
	Payments    []SalePaymentResponse `json:"payments"`
}

// SaleRowResponse riga nella risposta, con i totali arrotondati.
type SaleRowResponse struct {
	ID             string          `json:"id"`
	Description    string          `json:"description"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPriceNet   decimal.Decimal `json:"unit_price_net"`
	VatPercentage  decimal.Decimal `json:"vat_percentage"`
	VatNatura      string          `json:"vat_natura,omitempty"`
	TotalNet       decimal.Decimal `json:"total_net"`
	VatAmount      decimal.Decimal `json:"vat_amount"`
	TotalGross     decimal.Decimal `json:"total_gross"`
	ServiceStart   string          `json:"service_start,omitempty"`
	ServiceEnd     string          `json:"service_end,omitempty"`
	SubscriptionID string          `json:"subscription_id,omitempty"`
}

// SalePaymentResponse scadenza di pagamento nella risposta.
type SalePaymentResponse struct {
	ID         string          `json:"id"`
	MethodCode string          `json:"method_code"`
	DueDate    string          `json:"due_date"`
	Amount     decimal.Decimal `json:"amount"`
}
