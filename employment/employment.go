package employment

import (
	"context"

	"github.com/effective-security/worldbank-mcp/worldbank"
)

//go:generate mockgen -source=employment.go -destination=../mocks/mockemployment/employment_mock.gen.go -package mockemployment

// IndicatorSource provides single-year observations of indicator series.
type IndicatorSource interface {
	// Fetch returns nil observation when the series has no records.
	Fetch(ctx context.Context, country, indicator string, year int) (*worldbank.Observation, error)
	// IndicatorURL returns the URL the observation is fetched from.
	IndicatorURL(country, indicator string, year int) string
	// APIBase returns the indicator root for the country.
	APIBase(country string) string
}
