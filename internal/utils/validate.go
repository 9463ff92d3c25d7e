package utils

import (
	"regexp"  // Money format check
	"strings" // Whitespace trimming
	"time"    // Date parsing

	"github.com/shopspring/decimal" // Exact money amounts
)

// Input format for money strings: non-negative, at most two decimal places.
// Mirrors what the account and transaction forms submit.
var moneyPattern = regexp.MustCompile(`^\d+(?:\.?\d{0,2})$`)

// dateLayout is the expected yyyy-mm-dd form input format
const dateLayout = "2006-01-02"

// ValidNonEmpty reports whether s contains anything besides whitespace
func ValidNonEmpty(s string) bool {
	return strings.TrimSpace(s) != ""
}

// ParseDateUTC parses a yyyy-mm-dd string into a UTC calendar day.
// Timezone information is never accepted from the client; the day the user
// wrote down is the day that is stored.
func ParseDateUTC(s string) (time.Time, bool) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DateToUTCDay truncates t to its UTC calendar day
func DateToUTCDay(t time.Time) time.Time {
	return time.Date(t.UTC().Year(), t.UTC().Month(), t.UTC().Day(), 0, 0, 0, 0, time.UTC)
}

// ParseMoney parses a non-negative money string with at most 2 decimal
// places into an exact decimal
func ParseMoney(s string) (decimal.Decimal, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || !moneyPattern.MatchString(trimmed) {
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(trimmed)
	if err != nil || amount.IsNegative() {
		return decimal.Zero, false
	}
	return amount, true
}
