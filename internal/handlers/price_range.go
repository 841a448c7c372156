package handlers

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"
)

var priceSeparators = strings.NewReplacer(",", "", " ", "", "\u00a0", "", "_", "")

// parsePrice accepts JSON numbers and grouped strings such as "1,000,000" or
// "1 000 000", the way the admin form submits them.
func parsePrice(value interface{}) (float64, error) {
	if s, ok := value.(string); ok {
		value = priceSeparators.Replace(strings.TrimSpace(s))
		if value == "" {
			return 0, fmt.Errorf("price is empty")
		}
	}
	parsed, err := cast.ToFloat64E(value)
	if err != nil {
		return 0, fmt.Errorf("invalid price %v", value)
	}
	if math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0, fmt.Errorf("invalid price %v", value)
	}
	return parsed, nil
}

// validatePriceRange requires both prices to be positive. A lowest price
// above the highest is accepted as entered.
func validatePriceRange(lowest, highest float64) error {
	if !finite(lowest) || lowest <= 0 {
		return fmt.Errorf("lowestPrice must be greater than 0")
	}
	if !finite(highest) || highest <= 0 {
		return fmt.Errorf("highestPrice must be greater than 0")
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
