package processors

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/username/partsviewer/backend/src/models"
)

var (
	nonNumericChars = regexp.MustCompile(`[^\d.]`)
	leadingNumber   = regexp.MustCompile(`^\d*\.?\d*`)
	dollarMarker    = regexp.MustCompile(`(?i)\$|dollar|usd`)
	wonMarker       = regexp.MustCompile(`(?i)원|₩|won|krw`)

	// Unmarked amounts at or above this are read as won. 1000 USD is
	// therefore misread as KRW; imports depend on this staying put.
	krwThreshold = decimal.NewFromInt(1000)
)

// ClassifyCurrency decides whether a raw price cell is a dollar or a won
// amount. At most one of the returned amounts is set; both are nil when the
// cell is empty, has no digits, or carries both currency markers.
func ClassifyCurrency(raw any) models.CurrencyAmounts {
	str, ok := cellText(raw)
	if !ok {
		return models.CurrencyAmounts{}
	}
	str = strings.TrimSpace(str)

	magnitude, ok := parseMagnitude(str)
	if !ok {
		return models.CurrencyAmounts{}
	}
	value := magnitude.InexactFloat64()

	isDollar := dollarMarker.MatchString(str)
	isWon := wonMarker.MatchString(str)

	switch {
	case isDollar && !isWon:
		return models.CurrencyAmounts{USD: &value}
	case isWon && !isDollar:
		return models.CurrencyAmounts{KRW: &value}
	case isDollar && isWon:
		return models.CurrencyAmounts{}
	}

	if magnitude.GreaterThanOrEqual(krwThreshold) {
		return models.CurrencyAmounts{KRW: &value}
	}
	return models.CurrencyAmounts{USD: &value}
}

// cellText renders a cell as text. Empty cells, including a numeric zero,
// report false.
func cellText(raw any) (string, bool) {
	var s string
	switch v := raw.(type) {
	case nil:
		return "", false
	case string:
		s = v
	case float64:
		if v == 0 {
			return "", false
		}
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		if v == 0 {
			return "", false
		}
		s = strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		if v == 0 {
			return "", false
		}
		s = strconv.Itoa(v)
	case int64:
		if v == 0 {
			return "", false
		}
		s = strconv.FormatInt(v, 10)
	case json.Number:
		if f, err := v.Float64(); err == nil && f == 0 {
			return "", false
		}
		s = v.String()
	case bool:
		if !v {
			return "", false
		}
		s = "true"
	default:
		s = fmt.Sprint(v)
	}
	return s, s != ""
}

// parseMagnitude drops every character that is not a digit or a decimal
// point and reads the longest leading number of what is left, so "1,200원"
// is 1200 and "1.2.3" is 1.2.
func parseMagnitude(s string) (decimal.Decimal, bool) {
	stripped := nonNumericChars.ReplaceAllString(s, "")
	prefix := leadingNumber.FindString(stripped)
	if strings.Trim(prefix, ".") == "" {
		return decimal.Zero, false
	}
	prefix = strings.TrimSuffix(prefix, ".")
	if strings.HasPrefix(prefix, ".") {
		prefix = "0" + prefix
	}
	d, err := decimal.NewFromString(prefix)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
