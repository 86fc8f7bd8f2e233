package worldbank

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// Page is the pagination metadata, the first element of every
// World Bank API response.
type Page struct {
	Page        int    `json:"page"`
	Pages       int    `json:"pages"`
	PerPage     int    `json:"per_page"`
	Total       int    `json:"total"`
	SourceID    string `json:"sourceid,omitempty"`
	LastUpdated string `json:"lastupdated,omitempty"`
}

// Ref is an id/value pair used by the API for countries and indicators.
type Ref struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// Record is a single observation returned by the indicator endpoint.
type Record struct {
	Indicator       *Ref     `json:"indicator,omitempty"`
	Country         *Ref     `json:"country,omitempty"`
	CountryISO3Code string   `json:"countryiso3code,omitempty"`
	Date            string   `json:"date,omitempty"`
	Value           *float64 `json:"value"`
	Unit            string   `json:"unit,omitempty"`
	ObsStatus       string   `json:"obs_status,omitempty"`
	Decimal         int      `json:"decimal,omitempty"`
}

// Message is returned in place of the pagination metadata
// when the API rejects a request with HTTP 200.
type Message struct {
	ID    string `json:"id"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Envelope is the decoded `[metadata, records]` response.
type Envelope struct {
	Page     *Page
	Messages []Message
	// Records is nil when the second element is absent or is not a list.
	Records []Record
}

// ParseEnvelope decodes the response body.
// Only a body that is not a JSON array is an error,
// all other shape deviations produce an envelope without records.
func ParseEnvelope(body []byte) (*Envelope, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(body, &parts); err != nil {
		var v any
		if jerr := json.Unmarshal(body, &v); jerr != nil {
			return nil, errors.Wrap(jerr, "failed to decode response")
		}
		// valid JSON, but not an array
		return &Envelope{}, nil
	}

	env := new(Envelope)
	if len(parts) > 0 {
		var meta struct {
			Page
			Message []Message `json:"message"`
		}
		if err := json.Unmarshal(parts[0], &meta); err == nil {
			if len(meta.Message) > 0 {
				env.Messages = meta.Message
			} else {
				p := meta.Page
				env.Page = &p
			}
		}
	}
	if len(parts) > 1 {
		var records []Record
		if err := json.Unmarshal(parts[1], &records); err == nil {
			env.Records = records
		}
	}
	return env, nil
}

// IsEmpty returns true for a record decoded from `{}` or `null`.
func (r *Record) IsEmpty() bool {
	return r == nil || *r == Record{}
}

// First returns the first record, or nil when there are no records
// or the first one is empty.
func (e *Envelope) First() *Record {
	if e == nil || len(e.Records) == 0 || e.Records[0].IsEmpty() {
		return nil
	}
	return &e.Records[0]
}
