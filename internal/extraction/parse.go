package extraction

import (
	"encoding/json"
	"fmt"
	"strings"
)

// receiptPayload mirrors the JSON object the prompt demands. Pointer
// fields distinguish absent keys from empty values so every field can
// default independently of the others.
type receiptPayload struct {
	RestaurantName *string       `json:"restaurant_name"`
	Date           *string       `json:"date"`
	Time           *string       `json:"time"`
	Total          *string       `json:"total"`
	Items          []itemPayload `json:"items"`
}

type itemPayload struct {
	Quantity   flexString `json:"quantity"`
	Name       *string    `json:"name"`
	UnitPrice  *string    `json:"unit_price"`
	TotalPrice *string    `json:"total_price"`
}

// flexString accepts a JSON string or number. Models are inconsistent
// about quoting quantities.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("quantity is neither string nor number: %w", err)
	}
	*f = flexString(n.String())
	return nil
}

// Normalize parses the model's raw response text into a ReceiptRecord,
// substituting the documented sentinel for every field the model left
// out. A response that is not a JSON object yields a *ParseError
// carrying the raw text.
func Normalize(raw string) (*ReceiptRecord, error) {
	text := strings.TrimSpace(raw)

	// Remove markdown code blocks if present
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	// Find the JSON object boundaries - look for first { and last }
	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, &ParseError{Raw: raw, Err: fmt.Errorf("no JSON object found in response")}
	}

	endIdx := strings.LastIndex(text, "}")
	if endIdx == -1 || endIdx < startIdx {
		return nil, &ParseError{Raw: raw, Err: fmt.Errorf("invalid JSON object in response")}
	}

	text = text[startIdx : endIdx+1]

	var payload receiptPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, &ParseError{Raw: raw, Err: fmt.Errorf("unmarshaling json: %w", err)}
	}

	record := &ReceiptRecord{
		RestaurantName: stringOr(payload.RestaurantName, NotAvailable),
		Date:           stringOr(payload.Date, NotAvailable),
		Time:           stringOr(payload.Time, NotAvailable),
		Total:          stringOr(payload.Total, NotAvailable),
		Items:          make([]LineItem, 0, len(payload.Items)),
	}

	for _, item := range payload.Items {
		record.Items = append(record.Items, LineItem{
			Quantity:   strings.TrimSpace(string(item.Quantity)),
			Name:       stringOr(item.Name, NotApplicable),
			UnitPrice:  stringOr(item.UnitPrice, NotApplicable),
			TotalPrice: stringOr(item.TotalPrice, NotApplicable),
		})
	}

	return record, nil
}

// stringOr returns the trimmed value, or fallback when the key was
// absent or blank.
func stringOr(value *string, fallback string) string {
	if value == nil {
		return fallback
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return fallback
	}
	return trimmed
}
