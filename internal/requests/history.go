package requests

// QuoteRequest is a historical request row. It shares the need_size rule with
// QuoteRequestSample but carries the customer's original wording instead of a
// date.
type QuoteRequest struct {
	Mood     *string
	Job      string
	NeedSize OrderSize
	Event    string
	Response string
}

// ValidateHistorical converts a raw historical record into a QuoteRequest.
func ValidateHistorical(record Record) (QuoteRequest, error) {
	job, jobErr := record.text(FieldJob)
	if jobErr != nil {
		return QuoteRequest{}, jobErr
	}
	needSize, sizeErr := validateNeedSize(record)
	if sizeErr != nil {
		return QuoteRequest{}, sizeErr
	}
	event, eventErr := record.text(FieldEvent)
	if eventErr != nil {
		return QuoteRequest{}, eventErr
	}
	response, responseErr := record.text(FieldResponse)
	if responseErr != nil {
		return QuoteRequest{}, responseErr
	}
	return QuoteRequest{
		Mood:     record.optionalText(FieldMood),
		Job:      job,
		NeedSize: needSize,
		Event:    event,
		Response: response,
	}, nil
}
