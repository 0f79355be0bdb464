package domain

import "errors"

// Errori sentinella del dominio. I layer esterni (HTTP, CLI) li mappano
// sui rispettivi codici di risposta con errors.Is.
var (
	// ErrValidation indica dati di ingresso non conformi (prezzi negativi,
	// aliquote sconosciute, anagrafiche incomplete).
	ErrValidation = errors.New("dati non validi")

	// ErrNotFound indica che la risorsa richiesta non esiste o non
	// appartiene alla società del chiamante.
	ErrNotFound = errors.New("risorsa non trovata")

	// ErrForbidden indica un accesso cross-tenant o un ruolo insufficiente.
	ErrForbidden = errors.New("operazione non consentita")

	// ErrConflict indica una violazione di stato concorrente.
	ErrConflict = errors.New("conflitto di stato")

	// ErrDuplicateInvoice indica che la vendita ha già una fattura attiva.
	ErrDuplicateInvoice = errors.New("la vendita ha già una fattura attiva")

	// ErrNotSendable indica che lo stato corrente della fattura non ammette
	// l'invio richiesto.
	ErrNotSendable = errors.New("la fattura non è inviabile nello stato corrente")

	// ErrSendBudgetExhausted indica che la fattura ha esaurito i tentativi
	// di invio configurati.
	ErrSendBudgetExhausted = errors.New("tentativi di invio esauriti")

	// ErrGatewayTransport indica un errore di trasporto verso il SdI: il
	// tentativo è registrato e l'invio è ripetibile.
	ErrGatewayTransport = errors.New("errore di trasmissione verso il Sistema di Interscambio")

	// ErrExchangeRejection indica uno scarto sincrono del SdI: la fattura
	// passa in stato REJECTED.
	ErrExchangeRejection = errors.New("fattura scartata dal Sistema di Interscambio")

	// ErrNotPreservable indica che la fattura non è nello stato richiesto
	// per la messa in conservazione.
	ErrNotPreservable = errors.New("la fattura non è conservabile nello stato corrente")

	// Autenticazione e utenti.
	ErrEmailAlreadyExists = errors.New("l'email è già registrata")
	ErrInvalidCredentials = errors.New("credenziali non valide")
	ErrUnauthorized       = errors.New("autenticazione richiesta")
	ErrUserNotFound       = errors.New("utente non trovato")
)
