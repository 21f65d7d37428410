package requests

import (
	"fmt"
	"strings"
)

// OrderSize is the customer's declared order volume.
type OrderSize string

const (
	OrderSizeSmall  OrderSize = "small"
	OrderSizeMedium OrderSize = "medium"
	OrderSizeLarge  OrderSize = "large"
)

var validOrderSizes = []OrderSize{
	OrderSizeSmall,
	OrderSizeMedium,
	OrderSizeLarge,
}

// String implements fmt.Stringer.
func (size OrderSize) String() string {
	return string(size)
}

// IsValid reports whether the size is one of the canonical values.
func (size OrderSize) IsValid() bool {
	for _, candidate := range validOrderSizes {
		if candidate == size {
			return true
		}
	}
	return false
}

// ParseOrderSize folds case and surrounding whitespace before matching.
func ParseOrderSize(value string) (OrderSize, error) {
	normalized := OrderSize(strings.ToLower(strings.TrimSpace(value)))
	if !normalized.IsValid() {
		return "", fmt.Errorf("%w %q", ErrInvalidOrderSize, value)
	}
	return normalized, nil
}
