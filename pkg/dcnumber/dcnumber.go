// Package dcnumber issues and parses delivery challan numbers of the form
// {unitShortCode}/{sequence}/{financialYear}, e.g. "BRN/17/2025-26".
// Sequences are per unit per financial year and come from an atomic
// database counter, so concurrent dispatch creation cannot race to the
// same number.
package dcnumber

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FinancialYear labels the April-to-March year containing t as "YYYY-YY":
// 2025-06-15 falls in "2025-26", 2026-03-31 still in "2025-26".
func FinancialYear(t time.Time) string {
	year := t.Year()
	if t.Month() < time.April {
		year--
	}
	return fmt.Sprintf("%d-%02d", year, (year+1)%100)
}

// Format renders a DC number.
func Format(unitShortCode string, sequence int, financialYear string) string {
	return fmt.Sprintf("%s/%d/%s", unitShortCode, sequence, financialYear)
}

// Parse splits a DC number into its parts.
func Parse(dc string) (unitShortCode string, sequence int, financialYear string, err error) {
	parts := strings.Split(dc, "/")
	if len(parts) != 3 {
		return "", 0, "", fmt.Errorf("malformed dc number %q", dc)
	}

	seq, err := strconv.Atoi(parts[1])
	if err != nil || seq < 1 {
		return "", 0, "", fmt.Errorf("malformed dc number %q: bad sequence", dc)
	}

	if parts[0] == "" || parts[2] == "" {
		return "", 0, "", fmt.Errorf("malformed dc number %q", dc)
	}

	return parts[0], seq, parts[2], nil
}

// SequenceKey is the counter key for one unit and financial year.
func SequenceKey(unitShortCode, financialYear string) string {
	return fmt.Sprintf("DC_%s_%s", unitShortCode, financialYear)
}
