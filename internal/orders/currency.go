package orders

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var idPrinter = message.NewPrinter(language.Indonesian)

// FormatRupiah renders an integer amount the way id-ID formats IDR with no
// fraction digits: "Rp", a no-break space, and dot-grouped thousands.
func FormatRupiah(amount int64) string {
	return "Rp\u00a0" + idPrinter.Sprintf("%d", amount)
}
