package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// Normalizer turns a price text into whole rupees.
type Normalizer func(text string) (int64, bool)

var (
	decimalRun = regexp.MustCompile(`[\d,]+\.?\d*`)
	digitRun   = regexp.MustCompile(`\d+`)
)

const (
	lakh  = 100_000
	crore = 10_000_000
)

// NormalizePrice parses the first numeral in text, honouring thousands
// separators, a decimal point and a trailing "lakh" or "crore" unit.
// The result is truncated to whole rupees.
func NormalizePrice(text string) (int64, bool) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(text, "₹", ""))
	if cleaned == "" {
		return 0, false
	}

	match := decimalRun.FindString(cleaned)
	numeral := strings.ReplaceAll(match, ",", "")
	if numeral == "" || numeral == "." {
		return 0, false
	}
	number, err := strconv.ParseFloat(numeral, 64)
	if err != nil {
		return 0, false
	}

	lower := strings.ToLower(cleaned)
	switch {
	case strings.Contains(lower, "lakh"):
		number *= lakh
	case strings.Contains(lower, "crore"):
		number *= crore
	}
	return int64(number), true
}

// ConcatDigits joins every digit run in text and parses the result.
// Markup debris such as "<!-- -->" or "&nbsp;" between the digits is ignored.
func ConcatDigits(text string) (int64, bool) {
	runs := digitRun.FindAllString(text, -1)
	if len(runs) == 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.Join(runs, ""), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// FirstInt returns the first digit run in text.
func FirstInt(text string) (int, bool) {
	run := digitRun.FindString(text)
	if run == "" {
		return 0, false
	}
	n, err := strconv.Atoi(run)
	if err != nil {
		return 0, false
	}
	return n, true
}

// FormatCurrency renders an amount and its unit as "₹<amount> <unit>".
// Thousands separators are dropped from the amount.
func FormatCurrency(amount, unit string) string {
	amount = strings.ReplaceAll(Collapse(amount), ",", "")
	return strings.TrimSpace("₹" + amount + " " + Collapse(unit))
}
