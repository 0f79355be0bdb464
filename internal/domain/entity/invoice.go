package entity

import "time"

// Stati di trasmissione al SdI (Sistema di Interscambio).
const (
	InvoiceStatusGenerated     = "GENERATED"      // XML generato, mai inviato
	InvoiceStatusToSend        = "TO_SEND"        // rimesso in coda dopo uno scarto
	InvoiceStatusSent          = "SENT"           // trasmesso, esito asincrono atteso
	InvoiceStatusSendFailed    = "SEND_FAILED"    // errore di trasporto, reinviabile
	InvoiceStatusAccepted      = "ACCEPTED"       // consegnata o impossibilità di recapito decorsa
	InvoiceStatusRejected      = "REJECTED"       // scartata dal SdI, correggere e reinviare
	InvoiceStatusRejectedFinal = "REJECTED_FINAL" // scarto definitivo, nessun reinvio
)

// Tipi di documento FatturaPA gestiti.
const (
	DocumentTypeInvoice    = "TD01" // fattura ordinaria
	DocumentTypeCreditNote = "TD04" // nota di credito
)

// CanSendStatus indica gli stati da cui è ammesso il primo invio.
func CanSendStatus(status string) bool {
	return status == InvoiceStatusGenerated || status == InvoiceStatusToSend
}

// CanResendStatus indica gli stati reinviabili dopo un esito negativo.
// ACCEPTED e gli stati finali non sono mai reinviabili.
func CanResendStatus(status string) bool {
	return status == InvoiceStatusRejected || status == InvoiceStatusSendFailed
}

// IsFinalStatus indica gli stati terminali: nessuna transizione ulteriore
// è ammessa, salvo la marcatura ortogonale di conservazione.
func IsFinalStatus(status string) bool {
	return status == InvoiceStatusAccepted || status == InvoiceStatusRejectedFinal
}

// CanBeSupersededStatus indica gli stati in cui la fattura può essere
// sostituita da un nuovo documento: dopo uno scarto il file trasmesso non
// è più emendabile e la correzione richiede una nuova generazione.
func CanBeSupersededStatus(status string) bool {
	return status == InvoiceStatusRejected || status == InvoiceStatusRejectedFinal
}

// ElectronicInvoice rappresenta la fattura elettronica di una vendita.
// Creata alla generazione dell'XML, poi segue il ciclo di trasmissione al
// SdI; una fattura scartata può essere sostituita da una generazione
// successiva, e l'ultima generata è la fattura attiva della vendita.
type ElectronicInvoice struct {
	ID              string
	CompanyID       string
	SaleID          string
	DocumentType    string // TD01, TD04
	Progressivo     string // progressivo di invio, nel nome file IT<piva>_<progressivo>.xml
	XMLPath         string // percorso del file XML su disco
	TransmissionID  string // chiave di correlazione generata localmente
	ExternalID      string // IdentificativoSdI assegnato dal SdI
	Status          string
	StatusMessage   string // ultimo messaggio di esito/errore (lista scarti inclusa)
	StatusUpdatedAt time.Time
	SendAttempts    int
	LastAttemptAt   *time.Time
	PreservedAt     *time.Time // marcatura di conservazione sostitutiva
	PreservationRef string     // hash SHA-256 del pacchetto conservato
	AnonymizedAt    *time.Time // valorizzato dallo sweeper a fine ritenzione
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CanSend indica se la fattura ammette il primo invio.
func (i *ElectronicInvoice) CanSend() bool {
	return CanSendStatus(i.Status)
}

// CanResend indica se la fattura ammette un reinvio.
func (i *ElectronicInvoice) CanResend() bool {
	return CanResendStatus(i.Status)
}

// IsFinal indica se la fattura è in uno stato terminale.
func (i *ElectronicInvoice) IsFinal() bool {
	return IsFinalStatus(i.Status)
}

// CanBeSuperseded indica se la fattura può essere sostituita da un nuovo
// documento corretto.
func (i *ElectronicInvoice) CanBeSuperseded() bool {
	return CanBeSupersededStatus(i.Status)
}

// IsPreserved indica se la fattura è già in conservazione.
func (i *ElectronicInvoice) IsPreserved() bool {
	return i.PreservedAt != nil
}

// IsCreditNote indica una nota di credito (TD04).
func (i *ElectronicInvoice) IsCreditNote() bool {
	return i.DocumentType == DocumentTypeCreditNote
}

// UpdateStatus è l'unico punto di transizione di stato: registra il nuovo
// stato, il messaggio di esito e il timestamp del cambio. Le transizioni
// da uno stato finale sono rifiutate.
func (i *ElectronicInvoice) UpdateStatus(newStatus, message string, now time.Time) error {
	if i.IsFinal() {
		return ErrInvoiceFinal
	}
	i.Status = newStatus
	i.StatusMessage = message
	i.StatusUpdatedAt = now
	i.UpdatedAt = now
	return nil
}

// IncrementSendAttempts incrementa il contatore dei tentativi, indipendente
// dall'esito. Il contatore è monotono: mai decrementato.
func (i *ElectronicInvoice) IncrementSendAttempts(now time.Time) int {
	i.SendAttempts++
	i.LastAttemptAt = &now
	i.UpdatedAt = now
	return i.SendAttempts
}

// MarkPreserved registra la marcatura di conservazione. Ammessa solo su
// fatture accettate e mai già conservate.
func (i *ElectronicInvoice) MarkPreserved(ref string, now time.Time) error {
	if i.Status != InvoiceStatusAccepted {
		return ErrInvoiceNotPreservable
	}
	if i.IsPreserved() {
		return ErrInvoiceAlreadyPreserved
	}
	i.PreservedAt = &now
	i.PreservationRef = ref
	i.UpdatedAt = now
	return nil
}

// SendAttempt rappresenta una riga del registro tentativi (append-only):
// mai modificata dopo la scrittura, ricostruisce la storia indipendentemente
// dallo stato corrente della fattura.
type SendAttempt struct {
	ID              string
	InvoiceID       string
	AttemptNumber   int    // monotono per fattura, pari al contatore post-incremento
	Outcome         string // stato registrato all'esito del tentativo
	RequestPayload  string // snapshot della richiesta SOAP
	ResponsePayload string // snapshot della risposta (o messaggio d'errore di trasporto)
	Errors          string // lista scarti parsata, JSON
	ExternalID      string // IdentificativoSdI, se assegnato
	UserID          string // operatore che ha richiesto l'invio
	CreatedAt       time.Time
}
