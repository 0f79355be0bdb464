package entity

import "errors"

// Errori del ciclo di vita della fattura, sollevati dalle transizioni
// dell'entità stessa.
var (
	ErrInvoiceFinal            = errors.New("la fattura è in uno stato finale")
	ErrInvoiceNotPreservable   = errors.New("solo le fatture accettate sono conservabili")
	ErrInvoiceAlreadyPreserved = errors.New("la fattura è già in conservazione")
)
