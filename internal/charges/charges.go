// Package charges computes the percentage service charge on B and K line items.
package charges

import "github.com/shopspring/decimal"

var (
	hundred = decimal.NewFromInt(100)

	MinPct = decimal.Zero
	MaxPct = decimal.NewFromInt(10)
)

type LineItem struct {
	Amount    decimal.Decimal `json:"amount"`
	ChargePct decimal.Decimal `json:"charge_pct"`
}

type Totals struct {
	TotalAmount   decimal.Decimal   `json:"total_amount"`
	TotalCharge   decimal.Decimal   `json:"total_charge"`
	PerLineCharge []decimal.Decimal `json:"per_line_charge"`
}

// Charge returns amount * pct / 100 without rounding.
func Charge(item LineItem) decimal.Decimal {
	return item.Amount.Mul(item.ChargePct).Div(hundred)
}

// Compute sums amounts and charges over items. An empty list yields zero totals.
func Compute(items []LineItem) Totals {
	t := Totals{
		TotalAmount:   decimal.Zero,
		TotalCharge:   decimal.Zero,
		PerLineCharge: make([]decimal.Decimal, 0, len(items)),
	}
	for _, it := range items {
		c := Charge(it)
		t.PerLineCharge = append(t.PerLineCharge, c)
		t.TotalAmount = t.TotalAmount.Add(it.Amount)
		t.TotalCharge = t.TotalCharge.Add(c)
	}
	return t
}

// Clamp pins a form input to the accepted ranges: amount >= 0, pct in [0,10].
func Clamp(item LineItem) LineItem {
	if item.Amount.IsNegative() {
		item.Amount = decimal.Zero
	}
	switch {
	case item.ChargePct.LessThan(MinPct):
		item.ChargePct = MinPct
	case item.ChargePct.GreaterThan(MaxPct):
		item.ChargePct = MaxPct
	}
	return item
}

// Round2 formats d with exactly two decimal places for display and export.
func Round2(d decimal.Decimal) string {
	return d.StringFixed(2)
}
