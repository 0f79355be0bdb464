package entity

import "time"

// Regimi fiscali supportati (codici RegimeFiscale FatturaPA).
const (
	RegimeFiscaleOrdinario   = "RF01"
	RegimeFiscaleForfettario = "RF19"
)

// Company rappresenta una società/palestra del sistema (multi-tenant).
// I dati anagrafici confluiscono nel blocco CedentePrestatore della fattura.
type Company struct {
	ID             string
	Name           string // Denominazione
	PartitaIVA     string // 11 cifre, senza prefisso IT
	CodiceFiscale  string
	RegimeFiscale  string // RF01, RF19, ...
	Address        string
	CAP            string
	City           string
	Province       string // sigla (MI, RM, ...)
	Country        string // ISO 3166-1 alpha-2, di norma "IT"
	Email          string
	Phone          string
	IBAN           string // coordinate per i pagamenti MP05 (bonifico)
	Status         string // active, suspended, inactive
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
