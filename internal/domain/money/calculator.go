// Package money implementa le conversioni netto/lordo e il calcolo IVA con
// un'unica politica di arrotondamento: mezzo centesimo verso l'alto, applicato
// dopo OGNI operazione aritmetica. Le frazioni non arrotondate non attraversano
// mai il confine di una riga: è questo che garantisce la quadratura al
// centesimo tra righe, riepiloghi per aliquota e totali di documento.
package money

import (
	"sort"

	"github.com/shopspring/decimal"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// round2 arrotonda a due decimali (centesimo), half-up.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// NetFromGross scorpora l'IVA dal lordo: net = round(gross / (1 + pct/100), 2).
func NetFromGross(gross, vatPercentage decimal.Decimal) decimal.Decimal {
	divisor := one.Add(vatPercentage.Div(hundred))
	return round2(gross.Div(divisor))
}

// VatFromNet calcola l'imposta sul netto: vat = round(net * pct/100, 2).
func VatFromNet(net, vatPercentage decimal.Decimal) decimal.Decimal {
	return round2(net.Mul(vatPercentage).Div(hundred))
}

// GrossFromNet ricompone il lordo come net + VatFromNet(net), mai come
// net*(1+pct/100) arrotondato in un colpo solo: le due formule possono
// divergere di un centesimo e la prima è quella che quadra con i riepiloghi.
func GrossFromNet(net, vatPercentage decimal.Decimal) decimal.Decimal {
	return round2(net.Add(VatFromNet(net, vatPercentage)))
}

// ApplyDiscount applica gli sconti al netto, prima del calcolo dell'IVA:
// prima il percentuale, poi l'assoluto, con arrotondamento dopo ciascun passo.
// Il risultato non scende mai sotto zero.
func ApplyDiscount(net, percentDiscount, absoluteDiscount decimal.Decimal) decimal.Decimal {
	out := net
	if percentDiscount.IsPositive() {
		out = round2(out.Sub(round2(out.Mul(percentDiscount).Div(hundred))))
	}
	if absoluteDiscount.IsPositive() {
		out = round2(out.Sub(absoluteDiscount))
	}
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

// RowAmounts è il risultato del calcolo di una riga.
type RowAmounts struct {
	TotalNet   decimal.Decimal
	VatAmount  decimal.Decimal
	TotalGross decimal.Decimal
}

// RowTotals calcola i totali di una riga: netto unitario per quantità,
// arrotondato UNA volta a livello di riga (mai per unità), poi sconti,
// poi IVA.
func RowTotals(unitPriceNet, quantity, percentDiscount, absoluteDiscount, vatPercentage decimal.Decimal) RowAmounts {
	net := round2(unitPriceNet.Mul(quantity))
	net = ApplyDiscount(net, percentDiscount, absoluteDiscount)
	vat := VatFromNet(net, vatPercentage)
	return RowAmounts{
		TotalNet:   net,
		VatAmount:  vat,
		TotalGross: round2(net.Add(vat)),
	}
}

// Row è una riga già calcolata, input del riepilogo per aliquota.
type Row struct {
	VatPercentage decimal.Decimal
	Natura        string // obbligatoria quando VatPercentage = 0
	TotalNet      decimal.Decimal
	VatAmount     decimal.Decimal
}

// RateGroup è il riepilogo di una singola aliquota (blocco DatiRiepilogo).
type RateGroup struct {
	VatPercentage decimal.Decimal
	Natura        string
	TaxableBase   decimal.Decimal // imponibile: somma dei netti di riga
	VatAmount     decimal.Decimal // imposta: somma delle IVA di riga già arrotondate
}

// Summary è il riepilogo IVA del documento.
type Summary struct {
	ByRate     []RateGroup // ordinato per aliquota crescente
	TotalNet   decimal.Decimal
	TotalVat   decimal.Decimal
	TotalGross decimal.Decimal
}

// Summarize raggruppa le righe per aliquota e calcola i totali di documento.
// L'imposta di ogni gruppo è la SOMMA delle IVA di riga già arrotondate, mai
// il ricalcolo percentuale sull'imponibile aggregato: per legge di quadratura
// le due strade possono divergere di un centesimo e fa fede la prima.
func Summarize(rows []Row) Summary {
	type key struct {
		pct    string
		natura string
	}
	groups := make(map[key]*RateGroup)
	var order []key
	for _, r := range rows {
		k := key{pct: r.VatPercentage.String(), natura: r.Natura}
		g, ok := groups[k]
		if !ok {
			g = &RateGroup{VatPercentage: r.VatPercentage, Natura: r.Natura}
			groups[k] = g
			order = append(order, k)
		}
		g.TaxableBase = g.TaxableBase.Add(r.TotalNet)
		g.VatAmount = g.VatAmount.Add(r.VatAmount)
	}

	sort.SliceStable(order, func(i, j int) bool {
		gi, gj := groups[order[i]], groups[order[j]]
		if !gi.VatPercentage.Equal(gj.VatPercentage) {
			return gi.VatPercentage.LessThan(gj.VatPercentage)
		}
		return gi.Natura < gj.Natura
	})

	var sum Summary
	for _, k := range order {
		g := groups[k]
		g.TaxableBase = round2(g.TaxableBase)
		g.VatAmount = round2(g.VatAmount)
		sum.ByRate = append(sum.ByRate, *g)
		sum.TotalNet = sum.TotalNet.Add(g.TaxableBase)
		sum.TotalVat = sum.TotalVat.Add(g.VatAmount)
	}
	sum.TotalNet = round2(sum.TotalNet)
	sum.TotalVat = round2(sum.TotalVat)
	sum.TotalGross = round2(sum.TotalNet.Add(sum.TotalVat))
	return sum
}
