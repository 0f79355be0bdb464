package dto

// GenerateInvoiceRequest body per POST /api/sales/:id/invoice.
type GenerateInvoiceRequest struct {
	// DocumentType "TD01" (fattura, default) o "TD04" (nota di credito).
	DocumentType string `json:"document_type,omitempty"`
}

// InvoiceResponse fattura elettronica per GET /api/invoices/:id.
type InvoiceResponse struct {
	ID              string `json:"id"`
	SaleID          string `json:"sale_id"`
	DocumentType    string `json:"document_type"`
	Progressivo     string `json:"progressivo"`
	Status          string `json:"status"`
	StatusMessage   string `json:"status_message,omitempty"`
	StatusUpdatedAt string `json:"status_updated_at"`
	TransmissionID  string `json:"transmission_id"`
	ExternalID      string `json:"external_id,omitempty"`
	SendAttempts    int    `json:"send_attempts"`
	LastAttemptAt   string `json:"last_attempt_at,omitempty"`
	PreservedAt     string `json:"preserved_at,omitempty"`
	PreservationRef string `json:"preservation_ref,omitempty"`
	XMLPath         string `json:"xml_path,omitempty"`
}

// InvoiceStatusResponse risposta leggera per il polling
// GET /api/invoices/:id/status. Il frontend interroga questo endpoint fino a
// che status non è finale.
type InvoiceStatusResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"` // GENERATED|TO_SEND|SENT|SEND_FAILED|ACCEPTED|REJECTED|REJECTED_FINAL
	StatusMessage string `json:"status_message,omitempty"`
	ExternalID    string `json:"external_id,omitempty"`
	SendAttempts  int    `json:"send_attempts"`
}

// SendAttemptResponse riga del registro tentativi per
// GET /api/invoices/:id/attempts.
type SendAttemptResponse struct {
	AttemptNumber int    `json:"attempt_number"`
	Outcome       string `json:"outcome"`
	Errors        string `json:"errors,omitempty"`
	ExternalID    string `json:"external_id,omitempty"`
	UserID        string `json:"user_id,omitempty"`
	CreatedAt     string `json:"created_at"`
}

// SdINotificationRequest body per POST /api/sdi/notifications: la notifica
// asincrona del SdI inoltrata dal canale di ricezione.
type SdINotificationRequest struct {
	// XML grezzo della notifica (RicevutaConsegna, NotificaScarto, ...).
	Payload string `json:"payload"`
}

// CreateVatRateRequest body per POST /api/vat-rates.
type CreateVatRateRequest struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Percentage  string `json:"percentage"`
	Natura      string `json:"natura,omitempty"`
	Visible     bool   `json:"visible"`
	Withholding bool   `json:"withholding"`
}

// VatRateResponse aliquota nelle risposte.
type VatRateResponse struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description"`
	Percentage  string `json:"percentage"`
	Natura      string `json:"natura,omitempty"`
	Visible     bool   `json:"visible"`
	Withholding bool   `json:"withholding"`
}

// CreateCustomerRequest body per POST /api/customers.
type CreateCustomerRequest struct {
	Name               string `json:"name"`
	CodiceFiscale      string `json:"codice_fiscale"`
	PartitaIVA         string `json:"partita_iva,omitempty"`
	CodiceDestinatario string `json:"codice_destinatario,omitempty"`
	PEC                string `json:"pec,omitempty"`
	Address            string `json:"address,omitempty"`
	CAP                string `json:"cap,omitempty"`
	City               string `json:"city,omitempty"`
	Province           string `json:"province,omitempty"`
	Email              string `json:"email,omitempty"`
	Phone              string `json:"phone,omitempty"`
}

// CustomerResponse cliente nelle risposte.
type CustomerResponse struct {
	ID                 string `json:"id"`
	CompanyID          string `json:"company_id"`
	Name               string `json:"name"`
	CodiceFiscale      string `json:"codice_fiscale,omitempty"`
	PartitaIVA         string `json:"partita_iva,omitempty"`
	CodiceDestinatario string `json:"codice_destinatario,omitempty"`
	PEC                string `json:"pec,omitempty"`
	Address            string `json:"address,omitempty"`
	City               string `json:"city,omitempty"`
	Email              string `json:"email,omitempty"`
	Anonymized         bool   `json:"anonymized"`
}
