// Package sdi contiene cataloghi e validazioni allineati alle specifiche
// tecniche della Fattura Elettronica (FatturaPA v1.2.2, Sistema di Interscambio).
package sdi

// =============================================================================
// Tipo Documento (specifiche tecniche FatturaPA - blocco 2.1.1.1)
// =============================================================================

const (
	DocTypeFattura      = "TD01" // Fattura ordinaria
	DocTypeNotaCredito  = "TD04" // Nota di credito
	DocTypeNotaDebito   = "TD05" // Nota di debito
	DocTypeParcella     = "TD06" // Parcella
)

// ValidDocumentTypes contiene i tipi documento supportati dal servizio.
var ValidDocumentTypes = map[string]bool{
	DocTypeFattura:     true,
	DocTypeNotaCredito: true,
	DocTypeNotaDebito:  true,
	DocTypeParcella:    true,
}

// =============================================================================
// Natura dell'operazione (blocco 2.2.2.2) - obbligatoria quando l'aliquota è 0
// =============================================================================

const (
	NaturaEsclusa          = "N1" // Escluse ex art. 15 DPR 633/72
	NaturaNonSoggetta      = "N2" // Non soggette a IVA
	NaturaNonImponibile    = "N3" // Non imponibili
	NaturaEsente           = "N4" // Esenti
	NaturaRegimeMargine    = "N5" // Regime del margine
	NaturaInversioneContab = "N6" // Inversione contabile (reverse charge)
	NaturaIVAAltroStatoUE  = "N7" // IVA assolta in altro stato UE
)

// ValidNatureCodes codici natura validi (forma base; le sottocategorie N2.x/N3.x/N6.x sono accettate per prefisso).
var ValidNatureCodes = map[string]bool{
	NaturaEsclusa: true, NaturaNonSoggetta: true, NaturaNonImponibile: true,
	NaturaEsente: true, NaturaRegimeMargine: true, NaturaInversioneContab: true,
	NaturaIVAAltroStatoUE: true,
}

// IsValidNatura accetta i codici base N1..N7 e le sottocategorie (es. "N2.1", "N3.5", "N6.2").
func IsValidNatura(code string) bool {
	if ValidNatureCodes[code] {
		return true
	}
	if len(code) >= 4 && code[2] == '.' && ValidNatureCodes[code[:2]] {
		return true
	}
	return false
}

// =============================================================================
// Modalità di pagamento (blocco 2.4.2.2)
// =============================================================================

const (
	PaymentMethodContanti       = "MP01" // Contanti
	PaymentMethodAssegno        = "MP02" // Assegno
	PaymentMethodBonifico       = "MP05" // Bonifico bancario
	PaymentMethodCarta          = "MP08" // Carta di pagamento
	PaymentMethodRID            = "MP10" // RID
	PaymentMethodDomiciliazione = "MP16" // Domiciliazione bancaria
)

// ValidPaymentMethodCodes codici di modalità di pagamento di uso frequente.
var ValidPaymentMethodCodes = map[string]bool{
	PaymentMethodContanti: true, PaymentMethodAssegno: true, PaymentMethodBonifico: true,
	PaymentMethodCarta: true, PaymentMethodRID: true, PaymentMethodDomiciliazione: true,
}

// Condizioni di pagamento (blocco 2.4.1).
const (
	PaymentTermsRate     = "TP01" // Pagamento a rate
	PaymentTermsCompleto = "TP02" // Pagamento completo
	PaymentTermsAnticipo = "TP03" // Anticipo
)

// =============================================================================
// Formato trasmissione e destinatario (blocco 1.1)
// =============================================================================

const (
	FormatoPrivati = "FPR12" // fattura verso privati (B2B/B2C)
	FormatoPA      = "FPA12" // fattura verso Pubblica Amministrazione

	// CodiceDestinatarioDefault è il codice convenzionale quando il destinatario
	// non ha un codice SdI registrato (recapito via PEC o cassetto fiscale).
	CodiceDestinatarioDefault = "0000000"
)

// =============================================================================
// Regime fiscale (blocco 1.2.1.8) ed esigibilità IVA (blocco 2.2.2.7)
// =============================================================================

const (
	RegimeOrdinario  = "RF01" // Regime ordinario
	RegimeForfettario = "RF19" // Regime forfettario

	EsigibilitaImmediata = "I" // IVA ad esigibilità immediata
	EsigibilitaDifferita = "D" // IVA ad esigibilità differita
	EsigibilitaScissione = "S" // Scissione dei pagamenti
)
