// Package results holds the computed metric results and their display formatting.
package results

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Transform rewrites a raw value before it is evaluated or displayed.
type Transform func(float64) float64

// NumberFormat controls decimals and thousands grouping.
type NumberFormat struct {
	Decimals int  `json:"decimals"`
	Grouping bool `json:"grouping"`
}

// Formatting is shared by every result. Display order is
// transform, number format, prefix, suffix, then the currency symbol in front.
type Formatting struct {
	Prefix    string
	Suffix    string
	Currency  string
	Number    *NumberFormat
	Transform Transform
}

var printer = message.NewPrinter(language.English)

// Apply runs the transform, if any.
func (f Formatting) Apply(v float64) float64 {
	if f.Transform == nil {
		return v
	}
	return f.Transform(v)
}

// Display renders an already transformed value.
func (f Formatting) Display(v float64) string {
	var b strings.Builder
	b.WriteString(f.currencySymbol())
	b.WriteString(f.Prefix)
	b.WriteString(formatNumber(v, f.Number))
	b.WriteString(f.Suffix)
	return b.String()
}

// Format applies the transform then renders.
func (f Formatting) Format(v float64) string {
	return f.Display(f.Apply(v))
}

func (f Formatting) currencySymbol() string {
	code := strings.TrimSpace(f.Currency)
	if code == "" {
		return ""
	}
	if len(code) == 3 {
		if unit, err := currency.ParseISO(code); err == nil {
			return printer.Sprint(currency.NarrowSymbol(unit))
		}
	}
	return code
}

func formatNumber(v float64, nf *NumberFormat) string {
	if nf == nil {
		return printer.Sprintf("%v", number.Decimal(v, number.NoSeparator(), number.MaxFractionDigits(2)))
	}
	opts := []number.Option{
		number.MinFractionDigits(nf.Decimals),
		number.MaxFractionDigits(nf.Decimals),
	}
	if !nf.Grouping {
		opts = append(opts, number.NoSeparator())
	}
	return printer.Sprintf("%v", number.Decimal(v, opts...))
}

// round2 rounds half away from zero to two decimals.
func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
