package urban

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ImageDir is the root of every classifier's image path.
const ImageDir = "images"

var printer = message.NewPrinter(language.English)

// FormatInt formats n with thousands separators, e.g. "1,500".
func FormatInt(n int64) string {
	return printer.Sprintf("%d", n)
}

// FormatPercent formats a ratio as a percentage with one decimal place,
// e.g. 0.6667 as "66.7%".
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p*100)
}
