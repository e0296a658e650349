package nacha

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// formatText upper-cases value and space pads or truncates it to exactly
// width characters. Accents are stripped and any other non-printable or
// non-ASCII character becomes a space.
func formatText(value string, width int) string {
	s := strings.ToUpper(toASCII(value))
	if len(s) >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}

func toASCII(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(t, value); err == nil {
		value = out
	}
	return strings.Map(func(r rune) rune {
		if r < ' ' || r > '~' {
			return ' '
		}
		return r
	}, value)
}

// formatNumeric strips decimal points and thousands separators from value and
// left pads it with zeros to width. Values with more digits than width are
// rejected rather than truncated.
func formatNumeric(value string, width int) (string, error) {
	digits := strings.NewReplacer(".", "", ",", "").Replace(strings.TrimSpace(value))
	for _, c := range digits {
		if c < '0' || c > '9' {
			return "", fmt.Errorf("%q is not numeric", value)
		}
	}
	if len(digits) > width {
		return "", fmt.Errorf("%q into %d digits: %w", value, width, ErrFieldOverflow)
	}
	return strings.Repeat("0", width-len(digits)) + digits, nil
}

func formatInt(n int64, width int) (string, error) {
	if n < 0 {
		return "", fmt.Errorf("negative value %d", n)
	}
	return formatNumeric(strconv.FormatInt(n, 10), width)
}

// formatAmount renders d in cents with two implied decimal places.
func formatAmount(d decimal.Decimal, width int) (string, error) {
	if d.IsNegative() {
		return "", fmt.Errorf("negative amount %s", d.StringFixed(2))
	}
	return formatNumeric(d.StringFixed(2), width)
}

// formatHash keeps the low-order 10 digits of an entry hash.
func formatHash(hash int64) string {
	s := fmt.Sprintf("%010d", hash)
	return s[len(s)-10:]
}

// formatRouting right-justifies an immediate destination or origin in its
// 10 character field.
func formatRouting(value string, width int) (string, error) {
	value = strings.TrimSpace(value)
	if len(value) > width {
		return "", fmt.Errorf("%q into %d characters: %w", value, width, ErrFieldOverflow)
	}
	return strings.Repeat(" ", width-len(value)) + value, nil
}
