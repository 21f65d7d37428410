package ledger

import "github.com/temirov/quote-pipeline/internal/pipeline"

// Tool is a ledger capability advertised to a worker.
type Tool struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

const (
	ToolInventorySnapshot = "get_inventory"
	ToolStockLevel        = "get_stock"
	ToolSearchQuotes      = "search_quotes"
	ToolCreateTransaction = "create_transaction"
	ToolEstimateDelivery  = "estimate_delivery"
	ToolCashBalance       = "get_cash"
	ToolFinancialReport   = "financial_report"
)

var catalog = map[string]Tool{
	ToolInventorySnapshot: {Name: ToolInventorySnapshot, Description: "Return inventory snapshot as of an ISO date."},
	ToolStockLevel:        {Name: ToolStockLevel, Description: "Return stock level for an item as of an ISO date."},
	ToolSearchQuotes:      {Name: ToolSearchQuotes, Description: "Search historical quotes matching any of the search terms, newest first, at most 5 by default."},
	ToolCreateTransaction: {Name: ToolCreateTransaction, Description: "Record a 'stock_orders' or 'sales' transaction with item, units, total price and ISO date; returns its id."},
	ToolEstimateDelivery:  {Name: ToolEstimateDelivery, Description: "Estimate supplier delivery ISO date from an ISO order date and unit quantity."},
	ToolCashBalance:       {Name: ToolCashBalance, Description: "Return cash balance as of an ISO date."},
	ToolFinancialReport:   {Name: ToolFinancialReport, Description: "Generate a financial report with cash, inventory value, total assets and top sellers as of an ISO date."},
}

var stageTools = map[pipeline.Stage][]string{
	pipeline.StageInventory: {ToolInventorySnapshot, ToolStockLevel, ToolEstimateDelivery},
	pipeline.StageQuoting:   {ToolSearchQuotes, ToolInventorySnapshot, ToolStockLevel},
	pipeline.StageOrdering:  {ToolCreateTransaction, ToolCashBalance, ToolEstimateDelivery, ToolFinancialReport},
}

// LookupTool returns the catalog entry for a tool name.
func LookupTool(name string) (Tool, bool) {
	tool, ok := catalog[name]
	return tool, ok
}

// DefaultToolNames returns the tool names a stage gets when none are configured.
func DefaultToolNames(stage pipeline.Stage) []string {
	return append([]string(nil), stageTools[stage]...)
}

// Tools resolves names against the catalog, skipping unknown names.
func Tools(names []string) []Tool {
	tools := make([]Tool, 0, len(names))
	for _, name := range names {
		if tool, ok := catalog[name]; ok {
			tools = append(tools, tool)
		}
	}
	return tools
}
