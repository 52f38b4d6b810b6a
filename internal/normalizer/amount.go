package normalizer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const minorPerMajor = 100

var (
	currencyPrefix = regexp.MustCompile(`(?i)^(rp|idr)\.?`)
	displayPrinter = message.NewPrinter(language.Indonesian)
)

// ParseDisplayAmount turns table text like "Rp 150.000" into 150000 (major units).
// Anything without digits ("-", "") parses to 0.
func ParseDisplayAmount(text string) int64 {
	amount, _ := parseDisplayAmount(text)
	return amount
}

func parseDisplayAmount(text string) (int64, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(text, "\u00a0", " "))
	s = strings.TrimSpace(currencyPrefix.ReplaceAllString(s, ""))
	// дробная часть после запятой не учитывается
	s, _, _ = strings.Cut(s, ",")
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	amount, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return amount, true
}

// MajorFromMinor is exact: minor / 100 with two decimal places.
func MajorFromMinor(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// FormatDisplayAmount renders minor units the way the portal shows them: "Rp 1.500", "Rp 3.999,5".
func FormatDisplayAmount(minor int64) string {
	major, _ := MajorFromMinor(minor).Float64()
	return "Rp " + displayPrinter.Sprint(number.Decimal(major, number.MaxFractionDigits(2)))
}
