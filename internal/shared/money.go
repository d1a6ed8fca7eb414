package shared

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var rupiahPrinter = message.NewPrinter(language.Indonesian)

// FormatRupiah renders an integer rupiah amount with Indonesian thousand
// separators, e.g. 12000000 -> "Rp 12.000.000". Used in generated ledger
// descriptions only; amounts cross the store boundary as plain integers.
func FormatRupiah(amount int64) string {
	return rupiahPrinter.Sprintf("Rp %d", amount)
}
