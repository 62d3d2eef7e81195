package vision

import (
	"strconv"
	"strings"
)

// parseAmount coerces free-text money ("¥12,000", "12000円") into an integer
// by dropping everything except digits and commas, then the commas. A string
// with no usable digits yields ok=false and the amount is omitted from the
// prompt context.
func parseAmount(s string) (int, bool) {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == ',' {
			b.WriteRune(r)
		}
	}
	cleaned := strings.ReplaceAll(b.String(), ",", "")
	if cleaned == "" {
		return 0, false
	}
	n, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0, false
	}
	return n, true
}
