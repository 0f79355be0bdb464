package entity

import "time"

// Customer rappresenta un cliente della società (iscritto o azienda).
// I dati confluiscono nel blocco CessionarioCommittente della fattura.
type Customer struct {
	ID                 string
	CompanyID          string
	Name               string // Denominazione o Nome+Cognome
	CodiceFiscale      string
	PartitaIVA         string // vuota per i privati
	CodiceDestinatario string // codice SdI a 7 caratteri; vuoto -> "0000000"
	PEC                string // alternativa al codice destinatario
	Address            string
	CAP                string
	City               string
	Province           string
	Country            string
	Email              string
	Phone              string
	AnonymizedAt       *time.Time // valorizzato dallo sweeper di conservazione
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsAnonymized indica se l'anagrafica è già stata anonimizzata.
func (c *Customer) IsAnonymized() bool {
	return c.AnonymizedAt != nil
}

// Anonymize sostituisce i dati identificativi con segnaposto neutri,
// preservando i totali fiscali dei documenti collegati. L'operazione è
// irreversibile.
func (c *Customer) Anonymize(now time.Time) {
	c.Name = "CLIENTE ANONIMIZZATO"
	c.CodiceFiscale = ""
	c.PartitaIVA = ""
	c.CodiceDestinatario = ""
	c.PEC = ""
	c.Address = ""
	c.CAP = ""
	c.City = ""
	c.Province = ""
	c.Email = ""
	c.Phone = ""
	c.AnonymizedAt = &now
	c.UpdatedAt = now
}
