package employment

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/effective-security/worldbank-mcp/schema"
	"github.com/effective-security/worldbank-mcp/tools"
	"github.com/effective-security/worldbank-mcp/worldbank"
	"github.com/effective-security/xlog"
	mcp "github.com/metoro-io/mcp-golang"
	"golang.org/x/sync/errgroup"
)

// SectorToolName is the name of the sector breakdown tool
const SectorToolName = "get_employment_by_sector"

// Sector is an employment sector and its share indicator.
type Sector struct {
	Name      string
	Indicator string
}

// Sectors in the order they are reported.
var Sectors = []Sector{
	{Name: "services", Indicator: "SL.SRV.EMPL.ZS"},
	{Name: "agriculture", Indicator: "SL.AGR.EMPL.ZS"},
	{Name: "industry", Indicator: "SL.IND.EMPL.ZS"},
}

const summaryNote = "Percentages should sum to approximately 100%"

// SectorShare is the share of total employment in a sector.
type SectorShare struct {
	// Percentage is null when the API has no value
	Percentage    *float64 `json:"percentage"`
	Indicator     string   `json:"indicator"`
	IndicatorName string   `json:"indicatorName,omitempty"`
	Message       string   `json:"message,omitempty"`
}

// SectorSummary is attached only when all sectors have a value.
type SectorSummary struct {
	TotalPercentage float64 `json:"total_percentage"`
	Note            string  `json:"note"`
}

// SectorResult is the output of the sector tool.
// On invalid input only Error is set.
type SectorResult struct {
	Error              string                  `json:"error,omitempty"`
	Country            string                  `json:"country,omitempty"`
	CountryCode        string                  `json:"countryCode,omitempty"`
	Year               int                     `json:"year,omitempty"`
	EmploymentBySector map[string]*SectorShare `json:"employment_by_sector"`
	Source             string                  `json:"source,omitempty"`
	APIBase            string                  `json:"api_base,omitempty"`
	Errors             []string                `json:"errors,omitempty"`
	Summary            *SectorSummary          `json:"summary,omitempty"`
}

// SectorTool returns employment shares of services, agriculture and industry.
type SectorTool struct {
	baseTool
}

var (
	_ tools.Tool[Request, SectorResult] = (*SectorTool)(nil)
	_ tools.MCPTool[Request]            = (*SectorTool)(nil)
)

// NewSectorTool returns the sector tool backed by the source.
func NewSectorTool(source IndicatorSource) *SectorTool {
	return &SectorTool{
		baseTool: baseTool{
			name: SectorToolName,
			description: "Return employment data by sector (Services, Agriculture, Industry) from World Bank. " +
				"Each sector includes the percentage of total employment and the indicator code.",
			funcParams: schema.MustParameters[Request](),
			source:     source,
		},
	}
}

type sectorOutcome struct {
	obs *worldbank.Observation
	err error
}

// Run fetches the three sector indicators concurrently.
// A failed sector is reported in Errors and does not fail the call.
func (t *SectorTool) Run(ctx context.Context, req *Request) (*SectorResult, error) {
	code, msg := t.normalize(ctx, req)
	if msg != "" {
		return &SectorResult{Error: msg}, nil
	}

	outcomes := make([]sectorOutcome, len(Sectors))
	var g errgroup.Group
	for i, s := range Sectors {
		g.Go(func() error {
			obs, err := t.source.Fetch(ctx, code, s.Indicator, req.Year)
			outcomes[i] = sectorOutcome{obs: obs, err: err}
			return nil
		})
	}
	_ = g.Wait()

	res := &SectorResult{
		CountryCode:        code,
		Year:               req.Year,
		EmploymentBySector: make(map[string]*SectorShare, len(Sectors)),
		Source:             worldbank.Source,
		APIBase:            t.source.APIBase(code),
	}

	for i, s := range Sectors {
		o := outcomes[i]
		if o.err != nil {
			res.Errors = append(res.Errors, sectorError(s.Name, o.err))
			logger.ContextKV(ctx, xlog.WARNING,
				"tool", t.name,
				"sector", s.Name,
				"country", code,
				"err", o.err.Error(),
			)
			continue
		}
		if o.obs == nil {
			res.EmploymentBySector[s.Name] = &SectorShare{
				Indicator: s.Indicator,
				Message:   fmt.Sprintf("No data available for %d", req.Year),
			}
			continue
		}
		if res.Country == "" {
			res.Country = o.obs.Country
		}
		name := o.obs.IndicatorName
		if name == "" {
			name = capitalize(s.Name) + " employment"
		}
		res.EmploymentBySector[s.Name] = &SectorShare{
			Percentage:    o.obs.Value,
			Indicator:     s.Indicator,
			IndicatorName: name,
		}
	}
	if res.Country == "" {
		res.Country = code
	}

	total, complete := 0.0, true
	for _, s := range Sectors {
		share := res.EmploymentBySector[s.Name]
		if share == nil || share.Percentage == nil {
			complete = false
			break
		}
		total += *share.Percentage
	}
	if complete {
		res.Summary = &SectorSummary{
			TotalPercentage: math.RoundToEven(total*100) / 100,
			Note:            summaryNote,
		}
	}

	return res, nil
}

// MarshalJSON writes only the error for an invalid request.
// Otherwise employment_by_sector is always present, even when empty.
func (r SectorResult) MarshalJSON() ([]byte, error) {
	if r.Error != "" {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{r.Error})
	}
	type result SectorResult
	if r.EmploymentBySector == nil {
		r.EmploymentBySector = map[string]*SectorShare{}
	}
	return json.Marshal(result(r))
}

func (t *SectorTool) Call(ctx context.Context, input string) (string, error) {
	return callJSON(ctx, input, t.Run)
}

func (t *SectorTool) RunMCP(ctx context.Context, req *Request) (*mcp.ToolResponse, error) {
	return tools.RunMCP(ctx, nil, t, req)
}

func (t *SectorTool) RegisterMCP(registrator tools.McpServerRegistrator, cb tools.Callback) error {
	return tools.RegisterMCP[Request](registrator, cb, t)
}

func sectorError(sector string, err error) string {
	if se, ok := worldbank.IsStatusError(err); ok {
		return fmt.Sprintf("%s: HTTP %d", sector, se.StatusCode)
	}
	return fmt.Sprintf("%s: %s", sector, err.Error())
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
