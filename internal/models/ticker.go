package models

import (
	"regexp"
	"strings"

	apperrors "finsight-go-api/internal/errors"
)

// Symbols are alphanumeric segments joined by single separators, with an
// optional leading index caret (^GSPC) and suffixes such as BRK.B,
// RELIANCE.NS, EURUSD=X or ES=F.
var tickerPattern = regexp.MustCompile(`^\^?[A-Z0-9]+(?:[.\-=][A-Z0-9]+)*=?$`)

const maxTickerLength = 12

// ParseTicker normalizes raw user input into a TickerQuery.
func ParseTicker(raw string) (TickerQuery, error) {
	symbol := strings.ToUpper(strings.TrimSpace(raw))
	if symbol == "" {
		return TickerQuery{}, apperrors.NewValidationError("ticker", raw, "ticker is required")
	}
	if len(symbol) > maxTickerLength || !tickerPattern.MatchString(symbol) {
		return TickerQuery{}, apperrors.NewValidationError("ticker", raw, "ticker must be up to 12 letters or digits, optionally joined by . - =")
	}
	return TickerQuery{Symbol: symbol}, nil
}
