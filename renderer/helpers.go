package renderer

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/etnz/payments"
	"github.com/shopspring/decimal"
)

// formatMoney formats an amount with all its fractional digits. With a known
// currency code, the currency's symbol, separators and layout are used.
func formatMoney(d decimal.Decimal, code string) string {
	if code == "" {
		return payments.FormatAmount(d)
	}
	// to get a never nil currency I need to call the Money constructor
	cur := money.New(0, strings.ToUpper(code)).Currency()
	if cur.Template == "" {
		// unknown to go-money
		return payments.FormatAmount(d) + " " + strings.ToUpper(code)
	}
	f := money.NewFormatter(payments.Scale, cur.Decimal, cur.Thousand, cur.Grapheme, cur.Template)
	return f.Format(d.Round(payments.Scale).Shift(payments.Scale).IntPart())
}

// escapeCell makes s safe to print in a markdown table cell.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
