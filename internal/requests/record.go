package requests

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	FieldJob              = "job"
	FieldNeedSize         = "need_size"
	FieldEvent            = "event"
	FieldRequest          = "request"
	FieldRequestDate      = "request_date"
	FieldMood             = "mood"
	FieldResponse         = "response"
	FieldTotalAmount      = "total_amount"
	FieldQuoteExplanation = "quote_explanation"
	FieldRequestMetadata  = "request_metadata"

	readHeaderErrorFormat = "read csv header: %w"
	readRowErrorFormat    = "read csv row %d: %w"
	byteOrderMark         = "\ufeff"
)

// Record is one raw incoming row keyed by column name. Values are usually
// strings but already-typed values (time.Time, numbers, maps) are accepted.
type Record map[string]any

func (record Record) text(field string) (string, error) {
	value, present := record[field]
	if !present || value == nil {
		return "", newValidationError(field, "", ErrMissingField)
	}
	if textValue, isText := value.(string); isText {
		return textValue, nil
	}
	return fmt.Sprint(value), nil
}

func (record Record) optionalText(field string) *string {
	value, present := record[field]
	if !present || value == nil {
		return nil
	}
	textValue, isText := value.(string)
	if !isText {
		textValue = fmt.Sprint(value)
	}
	return &textValue
}

// ReadRecords decodes a CSV document whose first row names the columns.
func ReadRecords(reader io.Reader) ([]Record, error) {
	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1

	header, headerErr := csvReader.Read()
	if headerErr != nil {
		if errors.Is(headerErr, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf(readHeaderErrorFormat, headerErr)
	}
	for index := range header {
		header[index] = strings.TrimSpace(strings.TrimPrefix(header[index], byteOrderMark))
	}

	var records []Record
	for rowNumber := 1; ; rowNumber++ {
		row, rowErr := csvReader.Read()
		if errors.Is(rowErr, io.EOF) {
			break
		}
		if rowErr != nil {
			return nil, fmt.Errorf(readRowErrorFormat, rowNumber, rowErr)
		}
		record := make(Record, len(header))
		for columnIndex, columnName := range header {
			if columnIndex < len(row) {
				record[columnName] = row[columnIndex]
			}
		}
		records = append(records, record)
	}
	return records, nil
}
