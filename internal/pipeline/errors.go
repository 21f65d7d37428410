package pipeline

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownStage    = errors.New("unknown stage")
	ErrMissingWorker   = errors.New("no worker registered for stage")
	ErrDuplicateWorker = errors.New("worker already registered for stage")
	ErrWorkerPanicked  = errors.New("worker panicked")
)

const (
	errorWithContextForm        = "ERROR (%s): %s"
	errorWithoutContext         = "ERROR: %s"
	ContextInventory            = "inventory"
	ContextQuoting              = "quoting"
	ContextOrdering             = "ordering"
	ContextOrchestratorFault    = "orchestrator.exception"
	ContextValidation           = "validation"
	inventoryFailureMessageForm = "Inventory check failed: %s"
	quotingFailureMessageForm   = "Quote generation failed: %s"
	orderingFailureMessageForm  = "Order finalization failed: %s"
)

// ErrorResponse is the single failure value returned across the pipeline.
// Context is empty when no location applies.
type ErrorResponse struct {
	Message string `json:"error"`
	Context string `json:"context,omitempty"`
}

// String renders "ERROR (<context>): <message>" or "ERROR: <message>".
func (response ErrorResponse) String() string {
	if response.Context != "" {
		return fmt.Sprintf(errorWithContextForm, response.Context, response.Message)
	}
	return fmt.Sprintf(errorWithoutContext, response.Message)
}

// Error lets an ErrorResponse travel through error-returning APIs.
func (response ErrorResponse) Error() string {
	return response.String()
}

func stageFailure(stage Stage, resultText string) ErrorResponse {
	switch stage {
	case StageInventory:
		return ErrorResponse{Message: fmt.Sprintf(inventoryFailureMessageForm, resultText), Context: ContextInventory}
	case StageQuoting:
		return ErrorResponse{Message: fmt.Sprintf(quotingFailureMessageForm, resultText), Context: ContextQuoting}
	default:
		return ErrorResponse{Message: fmt.Sprintf(orderingFailureMessageForm, resultText), Context: ContextOrdering}
	}
}

func faultResponse(fault error) ErrorResponse {
	return ErrorResponse{Message: fault.Error(), Context: ContextOrchestratorFault}
}
