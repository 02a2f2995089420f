// Package format renders receipt values for Indonesian customers.
package format

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.Indonesian)

var jakarta = time.FixedZone("WIB", 7*60*60)

// IDR renders an amount in rupiah with id-ID grouping, e.g. "Rp 150.000".
// Cents are shown only when present: "Rp 250.000,50".
func IDR(amount decimal.Decimal) string {
	amount = amount.Round(2)
	if amount.Equal(amount.Truncate(0)) {
		return printer.Sprintf("Rp %d", amount.IntPart())
	}
	return printer.Sprintf("Rp %.2f", amount.InexactFloat64())
}

// Timestamp renders t in Western Indonesia Time.
func Timestamp(t time.Time) string {
	return t.In(jakarta).Format("02 Jan 2006 15:04") + " WIB"
}
