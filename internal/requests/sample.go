package requests

import (
	"fmt"
	"time"
)

// QuoteRequestSample is the canonical form of an incoming customer request.
type QuoteRequestSample struct {
	Job         string
	NeedSize    OrderSize
	Event       string
	Request     string
	RequestDate time.Time
}

// Validate converts a raw record into a QuoteRequestSample. It has no side
// effects; every failure is a *ValidationError.
func Validate(record Record) (QuoteRequestSample, error) {
	job, jobErr := record.text(FieldJob)
	if jobErr != nil {
		return QuoteRequestSample{}, jobErr
	}
	needSize, sizeErr := validateNeedSize(record)
	if sizeErr != nil {
		return QuoteRequestSample{}, sizeErr
	}
	event, eventErr := record.text(FieldEvent)
	if eventErr != nil {
		return QuoteRequestSample{}, eventErr
	}
	request, requestErr := record.text(FieldRequest)
	if requestErr != nil {
		return QuoteRequestSample{}, requestErr
	}
	requestDate, dateErr := validateRequestDate(record)
	if dateErr != nil {
		return QuoteRequestSample{}, dateErr
	}
	return QuoteRequestSample{
		Job:         job,
		NeedSize:    needSize,
		Event:       event,
		Request:     request,
		RequestDate: requestDate,
	}, nil
}

// ISODate renders the request date as YYYY-MM-DD.
func (sample QuoteRequestSample) ISODate() string {
	return ISODate(sample.RequestDate)
}

func validateNeedSize(record Record) (OrderSize, error) {
	rawSize, rawErr := record.text(FieldNeedSize)
	if rawErr != nil {
		return "", rawErr
	}
	size, parseErr := ParseOrderSize(rawSize)
	if parseErr != nil {
		return "", newValidationError(FieldNeedSize, rawSize, ErrInvalidOrderSize)
	}
	return size, nil
}

func validateRequestDate(record Record) (time.Time, error) {
	value, present := record[FieldRequestDate]
	if !present || value == nil {
		return time.Time{}, newValidationError(FieldRequestDate, "", ErrMissingField)
	}
	if moment, isTime := value.(time.Time); isTime {
		return moment, nil
	}
	rawDate := fmt.Sprint(value)
	parsed, parseErr := ParseRequestDate(rawDate)
	if parseErr != nil {
		return time.Time{}, newValidationError(FieldRequestDate, rawDate, ErrInvalidRequestDate)
	}
	return parsed, nil
}
