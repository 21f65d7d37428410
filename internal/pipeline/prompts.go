package pipeline

import (
	"fmt"
	"strings"

	"github.com/temirov/quote-pipeline/internal/requests"
)

const (
	DefaultCompanyName = "Munder Difflin"

	inventoryAgentName = "InventoryAgent"
	quotingAgentName   = "QuotingAgent"
	orderingAgentName  = "OrderingAgent"

	personaLineFormat = "You are %s working at %s.\n"

	inventoryInstructions = "Check if requested items are available.\n\n" +
		"If the items in inventory lack specifics such as color or style or format A3-A4," +
		" assume reasonable defaults close to the requested in the db.\n\n"
	quotingInstructions = "Generate a professional price quote based on the inventory results.\n\n" +
		"Apply discounts for large orders or special events.\n\n"
	orderingInstructions = "Finalize the order assuming customer accepts the quote.\n\n"

	inventoryDataFormat = "Customer request: %s\nNeed size: %s\nEvent: %s\nDate: %s"
	quotingDataFormat   = "Inventory info: %s\nCustomer request: %s\nJob: %s, Size: %s, Event: %s\nDate: %s"
	orderingDataFormat  = "Quote details: %s\nDate: %s"
)

// AgentName returns the persona name used for a stage.
func AgentName(stage Stage) string {
	switch stage {
	case StageInventory:
		return inventoryAgentName
	case StageQuoting:
		return quotingAgentName
	case StageOrdering:
		return orderingAgentName
	default:
		return ""
	}
}

// TaskBuilder renders stage task descriptions. Preambles replaces the persona
// and instruction text of a stage; the request data block is always appended.
type TaskBuilder struct {
	CompanyName string
	Preambles   map[Stage]string
}

func (builder TaskBuilder) Inventory(sample requests.QuoteRequestSample) string {
	return builder.preamble(StageInventory, inventoryInstructions) + fmt.Sprintf(
		inventoryDataFormat,
		sample.Request,
		sample.NeedSize,
		sample.Event,
		sample.ISODate(),
	)
}

func (builder TaskBuilder) Quote(sample requests.QuoteRequestSample, inventoryResult string) string {
	return builder.preamble(StageQuoting, quotingInstructions) + fmt.Sprintf(
		quotingDataFormat,
		inventoryResult,
		sample.Request,
		sample.Job,
		sample.NeedSize,
		sample.Event,
		sample.ISODate(),
	)
}

func (builder TaskBuilder) Order(sample requests.QuoteRequestSample, quoteResult string) string {
	return builder.preamble(StageOrdering, orderingInstructions) + fmt.Sprintf(
		orderingDataFormat,
		quoteResult,
		sample.ISODate(),
	)
}

func (builder TaskBuilder) preamble(stage Stage, defaultInstructions string) string {
	if override := strings.TrimSpace(builder.Preambles[stage]); override != "" {
		return override + "\n\n"
	}
	companyName := strings.TrimSpace(builder.CompanyName)
	if companyName == "" {
		companyName = DefaultCompanyName
	}
	return fmt.Sprintf(personaLineFormat, AgentName(stage), companyName) + defaultInstructions
}
