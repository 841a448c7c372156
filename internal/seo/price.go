package seo

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatPrice groups thousands with commas (100000 -> "100,000") and keeps
// up to two fractional digits when present.
func FormatPrice(value float64) string {
	cents := int64(math.Round(math.Abs(value) * 100))
	whole, frac := cents/100, cents%100

	formatted := message.NewPrinter(language.English).Sprintf("%d", whole)
	if frac != 0 {
		formatted += strings.TrimRight(fmt.Sprintf(".%02d", frac), "0")
	}
	if value < 0 && cents != 0 {
		formatted = "-" + formatted
	}
	return formatted
}

// PriceRange renders "lowest - highest so'm".
func PriceRange(lowest, highest float64) string {
	return FormatPrice(lowest) + " - " + FormatPrice(highest) + " so'm"
}
