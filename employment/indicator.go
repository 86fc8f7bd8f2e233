package employment

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/worldbank-mcp/schema"
	"github.com/effective-security/worldbank-mcp/tools"
	"github.com/effective-security/worldbank-mcp/worldbank"
	mcp "github.com/metoro-io/mcp-golang"
)

// Tool names
const (
	EmploymentRatioToolName  = "get_employment_ratio"
	UnemploymentRateToolName = "get_unemployment_rate"
)

// Indicator codes of the single-series tools
const (
	EmploymentRatioIndicator  = "SL.EMP.TOTL.SP.ZS"
	UnemploymentRateIndicator = "SL.UEM.TOTL.ZS"
)

// IndicatorResult holds the fields common to single-series results.
// On invalid input only Error is set; on upstream HTTP failure Error and API are set;
// when the series has no value Message is set.
type IndicatorResult struct {
	Error         string `json:"error,omitempty"`
	Message       string `json:"message,omitempty"`
	Country       string `json:"country,omitempty"`
	CountryCode   string `json:"countryCode,omitempty"`
	Year          int    `json:"year,omitempty"`
	Indicator     string `json:"indicator,omitempty"`
	IndicatorName string `json:"indicatorName,omitempty"`
	Unit          string `json:"unit,omitempty"`
	Source        string `json:"source,omitempty"`
	API           string `json:"api,omitempty"`
}

// RatioResult is the output of the employment ratio tool.
type RatioResult struct {
	IndicatorResult
	Ratio *float64 `json:"ratio,omitempty"`
}

// RateResult is the output of the unemployment rate tool.
type RateResult struct {
	IndicatorResult
	Rate *float64 `json:"rate,omitempty"`
}

// series describes a single indicator tool
type series struct {
	indicator   string
	defaultName string
	unit        string
	noData      string
}

// fetch returns the common result and the observed value,
// transport and decoding failures are returned as error.
func (s *series) fetch(ctx context.Context, t *baseTool, req *Request) (*IndicatorResult, *float64, error) {
	code, msg := t.normalize(ctx, req)
	if msg != "" {
		return &IndicatorResult{Error: msg}, nil, nil
	}

	reqURL := t.source.IndicatorURL(code, s.indicator, req.Year)
	obs, err := t.source.Fetch(ctx, code, s.indicator, req.Year)
	if err != nil {
		if se, ok := worldbank.IsStatusError(err); ok {
			return &IndicatorResult{
				Error: fmt.Sprintf("World Bank request failed: HTTP %d", se.StatusCode),
				API:   reqURL,
			}, nil, nil
		}
		return nil, nil, errors.WithMessagef(err, "failed to fetch %s", s.indicator)
	}

	if obs == nil || obs.Value == nil {
		return &IndicatorResult{
			Message:     fmt.Sprintf(s.noData, code, req.Year),
			CountryCode: code,
			Year:        req.Year,
			Indicator:   s.indicator,
			API:         reqURL,
		}, nil, nil
	}

	res := &IndicatorResult{
		Country:       obs.Country,
		CountryCode:   code,
		Year:          req.Year,
		Indicator:     s.indicator,
		IndicatorName: obs.IndicatorName,
		Unit:          s.unit,
		Source:        worldbank.Source,
		API:           reqURL,
	}
	if res.Country == "" {
		res.Country = code
	}
	if res.IndicatorName == "" {
		res.IndicatorName = s.defaultName
	}
	return res, obs.Value, nil
}

var ratioSeries = series{
	indicator:   EmploymentRatioIndicator,
	defaultName: "Employment to population ratio",
	unit:        "% of total population ages 15+",
	noData:      "No employment ratio data found for %s in %d.",
}

var rateSeries = series{
	indicator:   UnemploymentRateIndicator,
	defaultName: "Unemployment rate",
	unit:        "% of total labor force",
	noData:      "No unemployment data found for %s in %d.",
}

// EmploymentRatioTool returns the employment-to-population ratio, ages 15+.
type EmploymentRatioTool struct {
	baseTool
}

var (
	_ tools.Tool[Request, RatioResult] = (*EmploymentRatioTool)(nil)
	_ tools.MCPTool[Request]           = (*EmploymentRatioTool)(nil)
)

func NewEmploymentRatioTool(source IndicatorSource) *EmploymentRatioTool {
	return &EmploymentRatioTool{
		baseTool: baseTool{
			name:        EmploymentRatioToolName,
			description: "Return the employment-to-population ratio (% of population aged 15+) from World Bank.",
			funcParams:  schema.MustParameters[Request](),
			source:      source,
		},
	}
}

func (t *EmploymentRatioTool) Run(ctx context.Context, req *Request) (*RatioResult, error) {
	res, value, err := ratioSeries.fetch(ctx, &t.baseTool, req)
	if err != nil {
		return nil, err
	}
	return &RatioResult{IndicatorResult: *res, Ratio: value}, nil
}

func (t *EmploymentRatioTool) Call(ctx context.Context, input string) (string, error) {
	return callJSON(ctx, input, t.Run)
}

func (t *EmploymentRatioTool) RunMCP(ctx context.Context, req *Request) (*mcp.ToolResponse, error) {
	return tools.RunMCP(ctx, nil, t, req)
}

func (t *EmploymentRatioTool) RegisterMCP(registrator tools.McpServerRegistrator, cb tools.Callback) error {
	return tools.RegisterMCP[Request](registrator, cb, t)
}

// UnemploymentRateTool returns unemployment as % of total labor force.
type UnemploymentRateTool struct {
	baseTool
}

var (
	_ tools.Tool[Request, RateResult] = (*UnemploymentRateTool)(nil)
	_ tools.MCPTool[Request]          = (*UnemploymentRateTool)(nil)
)

func NewUnemploymentRateTool(source IndicatorSource) *UnemploymentRateTool {
	return &UnemploymentRateTool{
		baseTool: baseTool{
			name:        UnemploymentRateToolName,
			description: "Return the unemployment rate (% of total labor force) from World Bank.",
			funcParams:  schema.MustParameters[Request](),
			source:      source,
		},
	}
}

func (t *UnemploymentRateTool) Run(ctx context.Context, req *Request) (*RateResult, error) {
	res, value, err := rateSeries.fetch(ctx, &t.baseTool, req)
	if err != nil {
		return nil, err
	}
	return &RateResult{IndicatorResult: *res, Rate: value}, nil
}

func (t *UnemploymentRateTool) Call(ctx context.Context, input string) (string, error) {
	return callJSON(ctx, input, t.Run)
}

func (t *UnemploymentRateTool) RunMCP(ctx context.Context, req *Request) (*mcp.ToolResponse, error) {
	return tools.RunMCP(ctx, nil, t, req)
}

func (t *UnemploymentRateTool) RegisterMCP(registrator tools.McpServerRegistrator, cb tools.Callback) error {
	return tools.RegisterMCP[Request](registrator, cb, t)
}

// All returns the employment tools in registration order.
func All(source IndicatorSource) []tools.ITool {
	return []tools.ITool{
		NewSectorTool(source),
		NewEmploymentRatioTool(source),
		NewUnemploymentRateTool(source),
	}
}

// NewRegistry returns a registry with all employment tools.
func NewRegistry(source IndicatorSource) (*tools.Registry, error) {
	return tools.NewRegistry(All(source)...)
}
