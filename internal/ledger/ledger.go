// Package ledger describes the inventory, cash and quote-history capabilities
// the stage workers rely on, and the tool catalog advertised to them.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidTransactionType = errors.New("invalid transaction type")

// TransactionType distinguishes supplier purchases from customer sales.
type TransactionType string

const (
	TransactionStockOrders TransactionType = "stock_orders"
	TransactionSales       TransactionType = "sales"
)

var validTransactionTypes = []TransactionType{
	TransactionStockOrders,
	TransactionSales,
}

func (transactionType TransactionType) String() string { return string(transactionType) }

func (transactionType TransactionType) IsValid() bool {
	return slices.Contains(validTransactionTypes, transactionType)
}

func ParseTransactionType(value string) (TransactionType, error) {
	transactionType := TransactionType(strings.ToLower(strings.TrimSpace(value)))
	if !transactionType.IsValid() {
		return "", fmt.Errorf("%w %q", ErrInvalidTransactionType, value)
	}
	return transactionType, nil
}

// Transaction is a single stock purchase or sale. Price is the total for all
// units.
type Transaction struct {
	ItemName string
	Type     TransactionType
	Units    int
	Price    decimal.Decimal
	Date     time.Time
}

type StockLevel struct {
	ItemName     string
	CurrentStock int
}

type InventoryLine struct {
	ItemName  string
	Stock     int
	UnitPrice decimal.Decimal
}

// Value is the stock valued at unit price.
func (line InventoryLine) Value() decimal.Decimal {
	return line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Stock)))
}

type TopSeller struct {
	ItemName     string
	TotalUnits   int
	TotalRevenue decimal.Decimal
}

type FinancialReport struct {
	AsOfDate           time.Time
	CashBalance        decimal.Decimal
	InventorySummary   []InventoryLine
	TopSellingProducts []TopSeller
}

func (report FinancialReport) InventoryValue() decimal.Decimal {
	total := decimal.Zero
	for _, line := range report.InventorySummary {
		total = total.Add(line.Value())
	}
	return total
}

func (report FinancialReport) TotalAssets() decimal.Decimal {
	return report.CashBalance.Add(report.InventoryValue())
}

// QuoteRecord is a historical quote joined with the request that produced it.
type QuoteRecord struct {
	OriginalRequest  string
	TotalAmount      decimal.Decimal
	QuoteExplanation string
	JobType          string
	OrderSize        string
	EventType        string
	OrderDate        time.Time
}

// Ledger is the storage boundary behind the worker tools. Dates are
// inclusive upper bounds.
type Ledger interface {
	InventorySnapshot(ctx context.Context, asOf time.Time) (map[string]int, error)
	StockLevel(ctx context.Context, itemName string, asOf time.Time) (StockLevel, error)
	SearchQuoteHistory(ctx context.Context, searchTerms []string, limit int) ([]QuoteRecord, error)
	CreateTransaction(ctx context.Context, transaction Transaction) (int64, error)
	CashBalance(ctx context.Context, asOf time.Time) (decimal.Decimal, error)
	FinancialReport(ctx context.Context, asOf time.Time) (FinancialReport, error)
}
