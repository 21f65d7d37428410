package quotepipeline

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/temirov/quote-pipeline/internal/requests"
)

var resultsHeader = []string{"request_id", "request_date", "job", "event", "status", "context", "response"}

func printResults(writer io.Writer, results []requestResult) error {
	for _, result := range results {
		if _, err := fmt.Fprintf(writer, requestLineFormat, result.RowNumber, result.Outcome.String()); err != nil {
			return fmt.Errorf(writeOutputErrorFormat, err)
		}
	}
	return nil
}

func encodeResults(results []requestResult) ([]byte, error) {
	var buffer bytes.Buffer
	csvWriter := csv.NewWriter(&buffer)
	if err := csvWriter.Write(resultsHeader); err != nil {
		return nil, err
	}
	for _, result := range results {
		requestDate, job, event := "", recordText(result.Record, requests.FieldJob), recordText(result.Record, requests.FieldEvent)
		if result.Sample != nil {
			requestDate = result.Sample.ISODate()
			job, event = result.Sample.Job, result.Sample.Event
		}
		row := []string{
			strconv.Itoa(result.RowNumber),
			requestDate,
			job,
			event,
			result.status(),
			result.failureContext(),
			result.Outcome.String(),
		}
		if err := csvWriter.Write(row); err != nil {
			return nil, err
		}
	}
	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func recordText(record requests.Record, field string) string {
	value, ok := record[field]
	if !ok || value == nil {
		return ""
	}
	return fmt.Sprint(value)
}
