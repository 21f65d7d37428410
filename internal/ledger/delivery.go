package ledger

import (
	"strings"
	"time"
)

const isoDateLayout = time.DateOnly

type leadTime struct {
	maxUnits int
	days     int
}

var leadTimes = []leadTime{
	{maxUnits: 10, days: 0},
	{maxUnits: 100, days: 1},
	{maxUnits: 1000, days: 4},
}

const bulkLeadTimeDays = 7

// DeliveryDate adds the supplier lead time for quantity units to orderDate.
func DeliveryDate(orderDate time.Time, quantity int) time.Time {
	return orderDate.AddDate(0, 0, leadTimeDays(quantity))
}

// SupplierDeliveryDate estimates delivery for an ISO order date and returns an
// ISO date. A time component is ignored; an unparseable date falls back to
// today.
func SupplierDeliveryDate(orderDate string, quantity int, today time.Time) string {
	datePart, _, _ := strings.Cut(strings.TrimSpace(orderDate), "T")
	parsed, err := time.Parse(isoDateLayout, datePart)
	if err != nil {
		parsed = today
	}
	return DeliveryDate(parsed, quantity).Format(isoDateLayout)
}

func leadTimeDays(quantity int) int {
	for _, candidate := range leadTimes {
		if quantity <= candidate.maxUnits {
			return candidate.days
		}
	}
	return bulkLeadTimeDays
}
