package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// VatRate rappresenta un'aliquota IVA di riferimento. Dato statico:
// caricato da seed/configurazione, mai calcolato.
type VatRate struct {
	ID          string
	Code        string          // codice interno (es. "IVA22", "ESENTE-N4")
	Description string
	Percentage  decimal.Decimal // 22, 10, 5, 4, 0
	Natura      string          // obbligatoria quando Percentage = 0 (N1..N7)
	Visible     bool            // selezionabile nei listini
	Withholding bool            // soggetta a ritenuta d'acconto
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsExempt indica un'aliquota a zero, che in fattura richiede il codice Natura.
func (v *VatRate) IsExempt() bool {
	return v.Percentage.IsZero()
}
