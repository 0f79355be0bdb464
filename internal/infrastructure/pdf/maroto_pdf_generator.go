// Package pdf implementa la resa grafica della fattura elettronica.
//
// Layout della pagina A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Denominazione + P.IVA  │  N° Fattura + Data        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CEDENTE: Indirizzo / Tel / Email                           │
//	│  CESSIONARIO: Denominazione + CF/P.IVA + contatti           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABELLA: Qtà | Descrizione | Prezzo Unit. | IVA | Totale   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALI: Imponibile / IVA / TOTALE DOCUMENTO                │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER SdI: Identificativo + stato + nota legale           │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/diaghi13/fs-gymme-sub005/internal/application/billing"
	"github.com/diaghi13/fs-gymme-sub005/internal/domain/entity"
)

// ── Palette ───────────────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa billing.InvoicePDFGenerator con Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator costruisce il generatore.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

var _ billing.InvoicePDFGenerator = (*MarotoPDFGenerator)(nil)

// Generate produce il PDF della fattura e ne restituisce i byte.
func (g *MarotoPDFGenerator) Generate(
	sale *entity.Sale,
	invoice *entity.ElectronicInvoice,
	company *entity.Company,
	customer *entity.Customer,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Fattura Elettronica", true).
		WithAuthor(company.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(sale, invoice, company))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(cedenteRow(company))
	m.AddRows(cessionarioRow(customer))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableDetailRows(sale.Rows) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(sale))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	for _, r := range sdiFooterRows(invoice) {
		m.AddRows(r)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generazione documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Sezioni ───────────────────────────────────────────────────────────────────

// headerRow: denominazione + P.IVA (sx) e numero fattura + data (dx).
func headerRow(sale *entity.Sale, invoice *entity.ElectronicInvoice, company *entity.Company) core.Row {
	title := "FATTURA"
	if invoice.IsCreditNote() {
		title = "NOTA DI CREDITO"
	}
	data := sale.Date.Format("02/01/2006")

	return row.New(18).Add(
		col.New(7).Add(
			text.New(company.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("P.IVA: IT"+company.PartitaIVA, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(title, props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("N. "+sale.Progressivo, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Data: "+data, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// cedenteRow: dati del cedente/prestatore.
func cedenteRow(company *entity.Company) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("CEDENTE / PRESTATORE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Indirizzo: %s, %s %s (%s)   |   Tel: %s   |   Email: %s",
				nonEmpty(company.Address, "—"),
				nonEmpty(company.CAP, "—"),
				nonEmpty(company.City, "—"),
				nonEmpty(company.Province, "—"),
				nonEmpty(company.Phone, "—"),
				nonEmpty(company.Email, "—"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// cessionarioRow: dati del cessionario/committente.
func cessionarioRow(customer *entity.Customer) core.Row {
	identificativo := customer.CodiceFiscale
	if identificativo == "" {
		identificativo = customer.PartitaIVA
	}
	return row.New(14).Add(
		col.New(12).Add(
			text.New("CESSIONARIO / COMMITTENTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(customer.Name, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("CF/P.IVA: %s   |   Email: %s   |   Tel: %s",
				nonEmpty(identificativo, "—"),
				nonEmpty(customer.Email, "—"),
				nonEmpty(customer.Phone, "—"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// tableHeaderRow: intestazione della tabella righe.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Qtà", 1, align.Center),
		h("Descrizione", 5, align.Left),
		h("Prezzo Unit.", 2, align.Right),
		h("IVA%", 1, align.Center),
		h("Totale", 3, align.Right),
	)
}

// tableDetailRows: una riga di tabella per ogni riga di vendita.
func tableDetailRows(rows []entity.SaleRow) []core.Row {
	result := make([]core.Row, 0, len(rows))
	for _, r := range rows {
		aliquota := r.VatPercentage.StringFixed(0) + "%"
		if r.VatPercentage.IsZero() && r.VatNatura != "" {
			aliquota = r.VatNatura
		}
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				r.Quantity.StringFixed(0),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(5).Add(text.New(
				r.Description,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				"€ "+r.UnitPriceNet.StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(1).Add(text.New(
				aliquota,
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(3).Add(text.New(
				"€ "+r.TotalGross.StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow: blocco totali allineato a destra.
func totalsRow(sale *entity.Sale) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	grandLabel := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 2,
		})
	}
	grandValue := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1,
		})
	}

	return row.New(26).Add(
		col.New(3),
		col.New(3).Add(
			label("Imponibile:"),
			label("IVA:"),
			grandLabel("TOTALE DOCUMENTO:"),
		),
		col.New(3).Add(
			value("€ "+sale.TotalNet.StringFixed(2)),
			value("€ "+sale.TotalVat.StringFixed(2)),
			grandValue("€ "+sale.TotalGross.StringFixed(2)),
		),
		col.New(3),
	)
}

// sdiFooterRows: riferimenti di trasmissione + nota legale.
func sdiFooterRows(invoice *entity.ElectronicInvoice) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("TRASMISSIONE AL SISTEMA DI INTERSCAMBIO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)),
		row.New(5).Add(col.New(12).Add(
			text.New(fmt.Sprintf("Progressivo di invio: %s   |   Identificativo SdI: %s   |   Stato: %s",
				invoice.Progressivo,
				nonEmpty(invoice.ExternalID, "—"),
				invoice.Status,
			), props.Text{Size: 7, Color: colorGray, Top: 1}),
		)),
	}

	if invoice.PreservationRef != "" {
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New("Riferimento di conservazione: "+invoice.PreservationRef, props.Text{
				Size: 6.5, Color: colorGray, Top: 1,
			}),
		)))
	}

	rows = append(rows, row.New(8).Add(col.New(12).Add(
		text.New(
			"Copia analogica della fattura elettronica trasmessa al Sistema di Interscambio "+
				"ai sensi del D.Lgs. 127/2015. L'originale è conservato in modalità elettronica.",
			props.Text{Size: 6.5, Color: colorGray, Top: 2},
		),
	)))

	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
