package requests

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Quote is a historical price quote. RequestMetadata is never nil.
type Quote struct {
	TotalAmount      decimal.Decimal
	QuoteExplanation string
	RequestMetadata  map[string]any
}

// ValidateQuote converts a raw quote record. Unparseable metadata degrades to
// an empty mapping; a missing or negative amount is rejected.
func ValidateQuote(record Record) (Quote, error) {
	totalAmount, amountErr := parseTotalAmount(record)
	if amountErr != nil {
		return Quote{}, amountErr
	}
	explanation, explanationErr := record.text(FieldQuoteExplanation)
	if explanationErr != nil {
		return Quote{}, explanationErr
	}
	return Quote{
		TotalAmount:      totalAmount,
		QuoteExplanation: explanation,
		RequestMetadata:  ParseMetadata(record[FieldRequestMetadata]),
	}, nil
}

func parseTotalAmount(record Record) (decimal.Decimal, error) {
	value, present := record[FieldTotalAmount]
	if !present || value == nil {
		return decimal.Decimal{}, newValidationError(FieldTotalAmount, "", ErrMissingField)
	}

	var amount decimal.Decimal
	switch typed := value.(type) {
	case decimal.Decimal:
		amount = typed
	case float64:
		if math.IsNaN(typed) || math.IsInf(typed, 0) {
			return decimal.Decimal{}, newValidationError(FieldTotalAmount, fmt.Sprint(typed), ErrInvalidAmount)
		}
		amount = decimal.NewFromFloat(typed)
	case int:
		amount = decimal.NewFromInt(int64(typed))
	case int64:
		amount = decimal.NewFromInt(typed)
	default:
		parsed, parseErr := decimal.NewFromString(fmt.Sprint(value))
		if parseErr != nil {
			return decimal.Decimal{}, newValidationError(FieldTotalAmount, fmt.Sprint(value), ErrInvalidAmount)
		}
		amount = parsed
	}

	if amount.IsNegative() {
		return decimal.Decimal{}, newValidationError(FieldTotalAmount, amount.String(), ErrInvalidAmount)
	}
	return amount, nil
}
