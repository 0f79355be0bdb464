package sdi

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/diaghi13/fs-gymme-sub005/internal/domain/entity"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain/money"
	pkgsdi "github.com/diaghi13/fs-gymme-sub005/pkg/sdi"
)

// Namespace ufficiali FatturaPA v1.2 (specifiche tecniche AdE).
const (
	NsFatturaPA = "http://ivaservizi.agenziaentrate.gov.it/docs/xsd/fatture/v1.2"
	NsDs        = "http://www.w3.org/2000/09/xmldsig#"
	nsXsi       = "http://www.w3.org/2001/XMLSchema-instance"

	// Versione dello schema: vincolata, mai negoziata. Il tracciato è imposto
	// dall'AdE e la struttura byte per byte conta per l'accettazione.
	schemaVersion = pkgsdi.FormatoPrivati // FPR12
)

// Limiti di lunghezza dei campi testuali (tracciato FatturaPA).
const (
	maxDenominazione = 80
	maxDescrizione   = 1000
)

// XMLBuilder costruisce l'XML FatturaPA della fattura (senza firma).
type XMLBuilder struct{}

// NewXMLBuilder crea il builder.
func NewXMLBuilder() *XMLBuilder {
	return &XMLBuilder{}
}

// Build genera il []byte del documento FatturaElettronica v1.2.
func (b *XMLBuilder) Build(ctx *BuildContext) ([]byte, error) {
	if ctx == nil || ctx.Sale == nil || ctx.Company == nil || ctx.Customer == nil {
		return nil, fmt.Errorf("sdi: mancano vendita, società o cliente nel contesto")
	}
	if len(ctx.Sale.Rows) == 0 {
		return nil, fmt.Errorf("sdi: la vendita non ha righe")
	}
	for _, r := range ctx.Sale.Rows {
		if r.VatPercentage.IsZero() && r.VatNatura == "" {
			return nil, fmt.Errorf("sdi: riga %s ad aliquota zero senza codice natura", r.ID)
		}
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	// Root con prefisso esplicito: i figli del tracciato sono senza namespace.
	root := xml.StartElement{
		Name: xml.Name{Local: "p:FatturaElettronica"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "versione"}, Value: schemaVersion},
			{Name: xml.Name{Local: "xmlns:p"}, Value: NsFatturaPA},
			{Name: xml.Name{Local: "xmlns:ds"}, Value: NsDs},
			{Name: xml.Name{Local: "xmlns:xsi"}, Value: nsXsi},
		},
	}
	if err := enc.EncodeToken(root); err != nil {
		return nil, err
	}

	if err := b.writeHeader(enc, ctx); err != nil {
		return nil, err
	}
	if err := b.writeBody(enc, ctx); err != nil {
		return nil, err
	}

	if err := enc.EncodeToken(root.End()); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeHeader scrive FatturaElettronicaHeader: dati di trasmissione,
// cedente/prestatore e cessionario/committente.
func (b *XMLBuilder) writeHeader(enc *xml.Encoder, ctx *BuildContext) error {
	open(enc, "FatturaElettronicaHeader")

	// ── DatiTrasmissione ──
	open(enc, "DatiTrasmissione")
	open(enc, "IdTrasmittente")
	write(enc, "IdPaese", countryOrIT(ctx.Company.Country))
	write(enc, "IdCodice", ctx.Company.PartitaIVA)
	closeEl(enc, "IdTrasmittente")
	write(enc, "ProgressivoInvio", ctx.Progressivo)
	write(enc, "FormatoTrasmissione", schemaVersion)
	// destinatario senza codice SdI: codice convenzionale e recapito via PEC
	codiceDest := ctx.Customer.CodiceDestinatario
	if codiceDest == "" {
		codiceDest = pkgsdi.CodiceDestinatarioDefault
	}
	write(enc, "CodiceDestinatario", codiceDest)
	if codiceDest == pkgsdi.CodiceDestinatarioDefault && ctx.Customer.PEC != "" {
		write(enc, "PECDestinatario", ctx.Customer.PEC)
	}
	closeEl(enc, "DatiTrasmissione")

	// ── CedentePrestatore ──
	open(enc, "CedentePrestatore")
	open(enc, "DatiAnagrafici")
	open(enc, "IdFiscaleIVA")
	write(enc, "IdPaese", countryOrIT(ctx.Company.Country))
	write(enc, "IdCodice", ctx.Company.PartitaIVA)
	closeEl(enc, "IdFiscaleIVA")
	if ctx.Company.CodiceFiscale != "" {
		write(enc, "CodiceFiscale", ctx.Company.CodiceFiscale)
	}
	open(enc, "Anagrafica")
	write(enc, "Denominazione", clean(ctx.Company.Name, maxDenominazione))
	closeEl(enc, "Anagrafica")
	regime := ctx.Company.RegimeFiscale
	if regime == "" {
		regime = pkgsdi.RegimeOrdinario
	}
	write(enc, "RegimeFiscale", regime)
	closeEl(enc, "DatiAnagrafici")
	b.writeSede(enc, ctx.Company.Address, ctx.Company.CAP, ctx.Company.City, ctx.Company.Province, ctx.Company.Country)
	closeEl(enc, "CedentePrestatore")

	// ── CessionarioCommittente ──
	open(enc, "CessionarioCommittente")
	open(enc, "DatiAnagrafici")
	if ctx.Customer.PartitaIVA != "" {
		open(enc, "IdFiscaleIVA")
		write(enc, "IdPaese", countryOrIT(ctx.Customer.Country))
		write(enc, "IdCodice", ctx.Customer.PartitaIVA)
		closeEl(enc, "IdFiscaleIVA")
	}
	if ctx.Customer.CodiceFiscale != "" {
		write(enc, "CodiceFiscale", ctx.Customer.CodiceFiscale)
	}
	open(enc, "Anagrafica")
	write(enc, "Denominazione", clean(ctx.Customer.Name, maxDenominazione))
	closeEl(enc, "Anagrafica")
	closeEl(enc, "DatiAnagrafici")
	b.writeSede(enc, ctx.Customer.Address, ctx.Customer.CAP, ctx.Customer.City, ctx.Customer.Province, ctx.Customer.Country)
	closeEl(enc, "CessionarioCommittente")

	closeEl(enc, "FatturaElettronicaHeader")
	return nil
}

// writeSede scrive il blocco Sede con i default richiesti dal tracciato
// (campi obbligatori anche quando l'anagrafica è incompleta).
func (b *XMLBuilder) writeSede(enc *xml.Encoder, address, cap, city, province, country string) {
	open(enc, "Sede")
	write(enc, "Indirizzo", orDefault(clean(address, maxDenominazione), "N.D."))
	write(enc, "CAP", orDefault(cap, "00000"))
	write(enc, "Comune", orDefault(clean(city, 60), "N.D."))
	if province != "" {
		write(enc, "Provincia", province)
	}
	write(enc, "Nazione", countryOrIT(country))
	closeEl(enc, "Sede")
}

// writeBody scrive FatturaElettronicaBody: dati generali, beni/servizi con
// riepilogo per aliquota, pagamenti.
func (b *XMLBuilder) writeBody(enc *xml.Encoder, ctx *BuildContext) error {
	sale := ctx.Sale
	open(enc, "FatturaElettronicaBody")

	// ── DatiGenerali ──
	open(enc, "DatiGenerali")
	open(enc, "DatiGeneraliDocumento")
	write(enc, "TipoDocumento", ctx.DocumentType)
	write(enc, "Divisa", orDefault(sale.Currency, "EUR"))
	write(enc, "Data", sale.Date.Format("2006-01-02"))
	write(enc, "Numero", sale.Progressivo)
	write(enc, "ImportoTotaleDocumento", amount(sale.TotalGross))
	closeEl(enc, "DatiGeneraliDocumento")
	closeEl(enc, "DatiGenerali")

	// ── DatiBeniServizi ──
	open(enc, "DatiBeniServizi")
	summaryRows := make([]money.Row, 0, len(sale.Rows))
	for i, r := range sale.Rows {
		b.writeLine(enc, i+1, &r)
		summaryRows = append(summaryRows, money.Row{
			VatPercentage: r.VatPercentage,
			Natura:        r.VatNatura,
			TotalNet:      r.TotalNet,
			VatAmount:     r.VatAmount,
		})
	}
	// un DatiRiepilogo per aliquota distinta: imponibile e imposta del gruppo
	// sono le somme dei valori di riga già arrotondati.
	summary := money.Summarize(summaryRows)
	for _, g := range summary.ByRate {
		open(enc, "DatiRiepilogo")
		write(enc, "AliquotaIVA", amount(g.VatPercentage))
		if g.Natura != "" {
			write(enc, "Natura", g.Natura)
		}
		write(enc, "ImponibileImporto", amount(g.TaxableBase))
		write(enc, "Imposta", amount(g.VatAmount))
		write(enc, "EsigibilitaIVA", pkgsdi.EsigibilitaImmediata)
		closeEl(enc, "DatiRiepilogo")
	}
	closeEl(enc, "DatiBeniServizi")

	// ── DatiPagamento ──
	if len(sale.Payments) > 0 {
		open(enc, "DatiPagamento")
		condizioni := pkgsdi.PaymentTermsCompleto
		if len(sale.Payments) > 1 {
			condizioni = pkgsdi.PaymentTermsRate
		}
		write(enc, "CondizioniPagamento", condizioni)
		for _, p := range sale.Payments {
			open(enc, "DettaglioPagamento")
			write(enc, "ModalitaPagamento", p.MethodCode)
			write(enc, "DataScadenzaPagamento", p.DueDate.Format("2006-01-02"))
			write(enc, "ImportoPagamento", amount(p.Amount))
			if p.MethodCode == pkgsdi.PaymentMethodBonifico && ctx.Company.IBAN != "" {
				write(enc, "IBAN", ctx.Company.IBAN)
			}
			closeEl(enc, "DettaglioPagamento")
		}
		closeEl(enc, "DatiPagamento")
	}

	closeEl(enc, "FatturaElettronicaBody")
	return nil
}

// writeLine scrive una DettaglioLinee con i totali arrotondati di riga.
func (b *XMLBuilder) writeLine(enc *xml.Encoder, num int, r *entity.SaleRow) {
	open(enc, "DettaglioLinee")
	write(enc, "NumeroLinea", strconv.Itoa(num))
	write(enc, "Descrizione", clean(r.Description, maxDescrizione))
	write(enc, "Quantita", quantity(r.Quantity))
	if r.ServiceStart != nil && r.ServiceEnd != nil {
		write(enc, "DataInizioPeriodo", r.ServiceStart.Format("2006-01-02"))
		write(enc, "DataFinePeriodo", r.ServiceEnd.Format("2006-01-02"))
	}
	write(enc, "PrezzoUnitario", amount(r.UnitPriceNet))
	if r.DiscountPercent.IsPositive() || r.DiscountAbsolute.IsPositive() {
		open(enc, "ScontoMaggiorazione")
		write(enc, "Tipo", "SC")
		if r.DiscountPercent.IsPositive() {
			write(enc, "Percentuale", amount(r.DiscountPercent))
		}
		if r.DiscountAbsolute.IsPositive() {
			write(enc, "Importo", amount(r.DiscountAbsolute))
		}
		closeEl(enc, "ScontoMaggiorazione")
	}
	write(enc, "PrezzoTotale", amount(r.TotalNet))
	write(enc, "AliquotaIVA", amount(r.VatPercentage))
	if r.VatNatura != "" {
		write(enc, "Natura", r.VatNatura)
	}
	closeEl(enc, "DettaglioLinee")
}

// ── helper di scrittura ─────────────────────────────────────────────────

func open(enc *xml.Encoder, local string) {
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: local}})
}

func closeEl(enc *xml.Encoder, local string) {
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: local}})
}

func write(enc *xml.Encoder, local, value string) {
	open(enc, local)
	_ = enc.EncodeToken(xml.CharData(value))
	closeEl(enc, local)
}

// amount formatta un importo con due decimali fissi, come da tracciato.
func amount(d decimal.Decimal) string {
	return d.Round(2).StringFixed(2)
}

// quantity formatta la quantità con due decimali.
func quantity(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func clean(s string, max int) string {
	return pkgsdi.Truncate(pkgsdi.Sanitize(s), max)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func countryOrIT(c string) string {
	if c == "" {
		return "IT"
	}
	return c
}
