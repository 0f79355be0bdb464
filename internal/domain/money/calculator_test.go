package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetFromGross_ScorporoEuro123Al22(t *testing.T) {
	gross := dec("123.00")
	pct := dec("22")

	net := NetFromGross(gross, pct)
	vat := VatFromNet(net, pct)

	assertDec(t, "100.82", net, "scorporo di 123.00 al 22%")
	assertDec(t, "22.18", vat, "imposta sul netto scorporato")
	assertDec(t, "123.00", GrossFromNet(net, pct), "il lordo ricostruito deve tornare esatto")
}

func TestNetFromGross_RoundTripSuImportiScomodi(t *testing.T) {
	// lordi volutamente non divisibili esattamente per 1+pct/100
	cases := []struct{ gross, pct string }{
		{"123.00", "22"},
		{"123.45", "22"},
		{"99.99", "22"},
		{"1.00", "22"},
		{"7.77", "10"},
		{"50.00", "5"},
		{"10.00", "4"},
		{"88.88", "4"},
		{"50.00", "0"},
	}
	for _, c := range cases {
		gross := dec(c.gross)
		pct := dec(c.pct)

		net := NetFromGross(gross, pct)
		back := GrossFromNet(net, pct)

		assert.True(t, back.Equal(gross),
			"round-trip lordo %s al %s%%: atteso %s, ottenuto %s (netto %s)",
			c.gross, c.pct, c.gross, back, net)
	}
}

func TestVatFromNet_AliquotaZero(t *testing.T) {
	net := dec("50.00")

	assertDec(t, "0.00", VatFromNet(net, decimal.Zero), "aliquota esente: imposta nulla")
	assertDec(t, "50.00", GrossFromNet(net, decimal.Zero), "aliquota esente: lordo uguale al netto")
}

func TestApplyDiscount_PercentualePoiAssoluto(t *testing.T) {
	net := dec("100.00")

	assertDec(t, "90.00", ApplyDiscount(net, dec("10"), decimal.Zero), "sconto 10%")
	assertDec(t, "84.50", ApplyDiscount(net, decimal.Zero, dec("15.50")), "sconto assoluto 15.50")
	assertDec(t, "85.00", ApplyDiscount(net, dec("10"), dec("5.00")), "percentuale prima, assoluto poi")
	assertDec(t, "0.00", ApplyDiscount(dec("10.00"), decimal.Zero, dec("20.00")), "lo sconto non porta mai sotto zero")
}

func TestRowTotals_ArrotondamentoALivelloDiRiga(t *testing.T) {
	// 3 x 0.333: arrotondando per unità verrebbe 0.99, a livello di riga 1.00
	got := RowTotals(dec("0.333"), dec("3"), decimal.Zero, decimal.Zero, dec("22"))

	assertDec(t, "1.00", got.TotalNet, "il netto si arrotonda una volta sola, sulla riga")
	assertDec(t, "0.22", got.VatAmount, "")
	assertDec(t, "1.22", got.TotalGross, "")
}

func TestRowTotals_QuantitaScontoEIva(t *testing.T) {
	got := RowTotals(dec("9.99"), dec("3"), dec("10"), decimal.Zero, dec("22"))

	// 9.99*3 = 29.97; sconto 10% = 3.00; netto 26.97; IVA 5.93; lordo 32.90
	assertDec(t, "26.97", got.TotalNet, "")
	assertDec(t, "5.93", got.VatAmount, "")
	assertDec(t, "32.90", got.TotalGross, "")
}

func TestSummarize_SommaPerRigaNonRicalcoloAggregato(t *testing.T) {
	// tre righe da 10.01 al 22%: per riga round(2.2022)=2.20, somma 6.60;
	// il ricalcolo sull'imponibile aggregato darebbe round(30.03*0.22)=6.61.
	row := Row{VatPercentage: dec("22"), TotalNet: dec("10.01"), VatAmount: VatFromNet(dec("10.01"), dec("22"))}
	sum := Summarize([]Row{row, row, row})

	require.Len(t, sum.ByRate, 1)
	assertDec(t, "30.03", sum.ByRate[0].TaxableBase, "imponibile del gruppo 22%")
	assertDec(t, "6.60", sum.ByRate[0].VatAmount, "l'imposta è la somma delle IVA di riga, non il ricalcolo aggregato")
	assertDec(t, "30.03", sum.TotalNet, "")
	assertDec(t, "6.60", sum.TotalVat, "")
	assertDec(t, "36.63", sum.TotalGross, "")
}

func TestSummarize_GruppiOrdinatiPerAliquota(t *testing.T) {
	rows := []Row{
		{VatPercentage: dec("22"), TotalNet: dec("100.00"), VatAmount: dec("22.00")},
		{VatPercentage: decimal.Zero, Natura: "N4", TotalNet: dec("50.00"), VatAmount: decimal.Zero},
		{VatPercentage: dec("10"), TotalNet: dec("20.00"), VatAmount: dec("2.00")},
		{VatPercentage: dec("22"), TotalNet: dec("30.00"), VatAmount: dec("6.60")},
	}

	sum := Summarize(rows)

	require.Len(t, sum.ByRate, 3, "un gruppo per aliquota distinta")
	assertDec(t, "0", sum.ByRate[0].VatPercentage, "")
	assert.Equal(t, "N4", sum.ByRate[0].Natura, "l'aliquota zero porta con sé la natura di esenzione")
	assertDec(t, "10", sum.ByRate[1].VatPercentage, "")
	assertDec(t, "22", sum.ByRate[2].VatPercentage, "")

	assertDec(t, "130.00", sum.ByRate[2].TaxableBase, "le righe al 22% si accorpano")
	assertDec(t, "28.60", sum.ByRate[2].VatAmount, "")
	assertDec(t, "200.00", sum.TotalNet, "")
	assertDec(t, "30.60", sum.TotalVat, "")
	assertDec(t, "230.60", sum.TotalGross, "")
}

// ── helper ──────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDec(t *testing.T, want string, got decimal.Decimal, msg string) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "atteso %s, ottenuto %s. %s", want, got, msg)
}
