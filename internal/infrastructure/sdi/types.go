// Package sdi contiene gli adapter verso il Sistema di Interscambio:
// costruzione dell'XML FatturaPA, client SOAP del canale di trasmissione,
// parsing delle notifiche asincrone e convenzioni sui nomi file.
package sdi

import (
	"fmt"
	"strings"

	"github.com/diaghi13/fs-gymme-sub005/internal/domain/entity"
)

// BuildContext raccoglie i dati già caricati necessari alla costruzione del
// documento. Il builder non tocca mai la persistenza.
type BuildContext struct {
	Company      *entity.Company
	Customer     *entity.Customer
	Sale         *entity.Sale
	DocumentType string // TD01, TD04
	Progressivo  string // ProgressivoInvio
}

// FileName costruisce il nome file secondo la convenzione SdI:
// IT<IdFiscale>_<Progressivo>.xml.
func FileName(partitaIVA, progressivo string) string {
	return fmt.Sprintf("IT%s_%s.xml", strings.TrimPrefix(strings.ToUpper(partitaIVA), "IT"), progressivo)
}
