package employment

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/worldbank-mcp/pkg/metricskey"
	"github.com/effective-security/worldbank-mcp/utils"
	"github.com/effective-security/xlog"
	"github.com/go-playground/validator/v10"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/worldbank-mcp", "employment")

// Validation messages returned in the `error` field of a result.
const (
	ErrMsgCountry = "country must be ISO-2 or ISO-3 code (e.g., 'US' or 'USA')."
	ErrMsgYear    = "year must be between 1991 and 2100."
)

// Request is the input of every employment tool.
type Request struct {
	Country string `json:"country" yaml:"country" toml:"country" fake:"US" jsonschema:"title=Country,description=ISO 2- or 3-letter country code (e.g. US or USA or KR or KOR)."`
	Year    int    `json:"year" yaml:"year" toml:"year" fake:"2020" jsonschema:"title=Year,description=Four-digit year (1991 to 2100)."`
}

type normalizedRequest struct {
	Country string `validate:"min=2,max=3"`
	Year    int    `validate:"min=1991,max=2100"`
}

var validate = validator.New()

// Normalize returns the trimmed upper-case country code,
// or a message describing the invalid input.
// The country is checked before the year.
func (r *Request) Normalize() (string, string) {
	in := normalizedRequest{
		Country: strings.ToUpper(strings.TrimSpace(r.Country)),
		Year:    r.Year,
	}
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Field() == "Year" {
			return "", ErrMsgYear
		}
		return "", ErrMsgCountry
	}
	return in.Country, ""
}

type baseTool struct {
	name        string
	description string
	funcParams  any
	source      IndicatorSource
}

func (t *baseTool) Name() string {
	return t.name
}

func (t *baseTool) Description() string {
	return t.description
}

func (t *baseTool) Parameters() any {
	return t.funcParams
}

// normalize validates the request and counts rejected calls.
func (t *baseTool) normalize(ctx context.Context, req *Request) (string, string) {
	code, msg := req.Normalize()
	if msg != "" {
		metricskey.StatsToolCallsRejected.IncrCounter(1, t.name)
		logger.ContextKV(ctx, xlog.DEBUG,
			"tool", t.name,
			"country", req.Country,
			"year", req.Year,
			"reason", msg,
		)
	}
	return code, msg
}

func callJSON[O any](ctx context.Context, input string, run func(context.Context, *Request) (*O, error)) (string, error) {
	var req Request
	if err := json.Unmarshal(utils.CleanJSON([]byte(input)), &req); err != nil {
		return "", errors.Wrap(err, "failed to unmarshal input")
	}
	out, err := run(ctx, &req)
	if err != nil {
		return "", err
	}
	bs, err := json.Marshal(out)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal output")
	}
	return string(bs), nil
}
