package employment_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/worldbank-mcp/employment"
	"github.com/effective-security/worldbank-mcp/mocks/mockemployment"
	"github.com/effective-security/worldbank-mcp/worldbank"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// sectorServer serves a fake World Bank API,
// responses maps indicator code to status and body.
func sectorServer(t *testing.T, responses map[string]func(w http.ResponseWriter)) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		require.Len(t, parts, 4, r.URL.Path)
		assert.Equal(t, "country", parts[0])
		assert.Equal(t, "indicator", parts[2])

		fn, ok := responses[parts[3]]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fn(w)
	}))
}

func record(indicator, name string, value float64) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		fmt.Fprintf(w, `[{"page":1,"pages":1,"per_page":50,"total":1},[{"indicator":{"id":%q,"value":%q},"country":{"id":"US","value":"United States"},"date":"2020","value":%v}]]`,
			indicator, name, value)
	}
}

func status(code int) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.WriteHeader(code)
	}
}

func TestSector_Summary(t *testing.T) {
	server := sectorServer(t, map[string]func(w http.ResponseWriter){
		"SL.SRV.EMPL.ZS": record("SL.SRV.EMPL.ZS", "Employment in services (% of total employment)", 60.5),
		"SL.AGR.EMPL.ZS": record("SL.AGR.EMPL.ZS", "Employment in agriculture (% of total employment)", 10.25),
		"SL.IND.EMPL.ZS": record("SL.IND.EMPL.ZS", "Employment in industry (% of total employment)", 29.25),
	})
	defer server.Close()

	client := worldbank.New().WithBaseURL(server.URL)
	tool := employment.NewSectorTool(client)
	assert.Equal(t, "get_employment_by_sector", tool.Name())

	res, err := tool.Run(context.Background(), &employment.Request{Country: " us", Year: 2020})
	require.NoError(t, err)
	assert.Empty(t, res.Error)
	assert.Empty(t, res.Errors)
	assert.Equal(t, "United States", res.Country)
	assert.Equal(t, "US", res.CountryCode)
	assert.Equal(t, 2020, res.Year)
	assert.Equal(t, worldbank.Source, res.Source)
	assert.Equal(t, server.URL+"/country/US/indicator/", res.APIBase)

	require.Len(t, res.EmploymentBySector, 3)
	services := res.EmploymentBySector["services"]
	require.NotNil(t, services)
	assert.Equal(t, 60.5, *services.Percentage)
	assert.Equal(t, "SL.SRV.EMPL.ZS", services.Indicator)
	assert.Equal(t, "Employment in services (% of total employment)", services.IndicatorName)
	assert.Empty(t, services.Message)

	require.NotNil(t, res.Summary)
	assert.Equal(t, 100.0, res.Summary.TotalPercentage)
	assert.Equal(t, "Percentages should sum to approximately 100%", res.Summary.Note)
}

func TestSector_SummaryRounded(t *testing.T) {
	server := sectorServer(t, map[string]func(w http.ResponseWriter){
		"SL.SRV.EMPL.ZS": record("SL.SRV.EMPL.ZS", "services", 70.111),
		"SL.AGR.EMPL.ZS": record("SL.AGR.EMPL.ZS", "agriculture", 5.222),
		"SL.IND.EMPL.ZS": record("SL.IND.EMPL.ZS", "industry", 24.333),
	})
	defer server.Close()

	tool := employment.NewSectorTool(worldbank.New().WithBaseURL(server.URL))
	res, err := tool.Run(context.Background(), &employment.Request{Country: "US", Year: 2020})
	require.NoError(t, err)
	require.NotNil(t, res.Summary)
	assert.Equal(t, 99.67, res.Summary.TotalPercentage)
}

func TestSector_PartialFailure(t *testing.T) {
	server := sectorServer(t, map[string]func(w http.ResponseWriter){
		"SL.SRV.EMPL.ZS": record("SL.SRV.EMPL.ZS", "services", 60.5),
		"SL.AGR.EMPL.ZS": record("SL.AGR.EMPL.ZS", "agriculture", 10.25),
		"SL.IND.EMPL.ZS": status(http.StatusInternalServerError),
	})
	defer server.Close()

	tool := employment.NewSectorTool(worldbank.New().WithBaseURL(server.URL))
	res, err := tool.Run(context.Background(), &employment.Request{Country: "US", Year: 2020})
	require.NoError(t, err)

	assert.Equal(t, []string{"industry: HTTP 500"}, res.Errors)
	require.Len(t, res.EmploymentBySector, 2)
	assert.Equal(t, 60.5, *res.EmploymentBySector["services"].Percentage)
	assert.Equal(t, 10.25, *res.EmploymentBySector["agriculture"].Percentage)
	assert.NotContains(t, res.EmploymentBySector, "industry")
	assert.Nil(t, res.Summary)
	assert.Equal(t, "United States", res.Country)
}

func TestSector_NoData(t *testing.T) {
	server := sectorServer(t, map[string]func(w http.ResponseWriter){
		"SL.SRV.EMPL.ZS": record("SL.SRV.EMPL.ZS", "services", 60.5),
		"SL.AGR.EMPL.ZS": func(w http.ResponseWriter) {
			fmt.Fprint(w, `[{"page":1,"pages":0,"per_page":50,"total":0},null]`)
		},
		"SL.IND.EMPL.ZS": func(w http.ResponseWriter) {
			fmt.Fprint(w, `[{"page":1},[{"indicator":{"id":"SL.IND.EMPL.ZS"},"country":{"id":"US","value":"United States"},"date":"2020","value":null}]]`)
		},
	})
	defer server.Close()

	tool := employment.NewSectorTool(worldbank.New().WithBaseURL(server.URL))
	out, err := tool.Call(context.Background(), `{"country":"US","year":2020}`)
	require.NoError(t, err)

	assert.Contains(t, out, `"agriculture":{"percentage":null,"indicator":"SL.AGR.EMPL.ZS","message":"No data available for 2020"}`)
	assert.Contains(t, out, `"industry":{"percentage":null,"indicator":"SL.IND.EMPL.ZS","indicatorName":"Industry employment"}`)
	assert.NotContains(t, out, `"summary"`)
	assert.NotContains(t, out, `"errors"`)
}

func TestSector_TransportError(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mockemployment.NewMockIndicatorSource(ctrl)

	source.EXPECT().APIBase("DE").Return("base/DE/")
	source.EXPECT().Fetch(gomock.Any(), "DE", "SL.SRV.EMPL.ZS", 2015).Return(nil, errors.New("connection reset"))
	source.EXPECT().Fetch(gomock.Any(), "DE", "SL.AGR.EMPL.ZS", 2015).Return(&worldbank.Observation{
		Country: "Germany",
		Value:   ptr(1.3),
	}, nil)
	source.EXPECT().Fetch(gomock.Any(), "DE", "SL.IND.EMPL.ZS", 2015).Return(nil, errors.WithStack(&worldbank.StatusError{StatusCode: 502, URL: "u"}))

	tool := employment.NewSectorTool(source)
	res, err := tool.Run(context.Background(), &employment.Request{Country: "de", Year: 2015})
	require.NoError(t, err)

	assert.Equal(t, []string{"services: connection reset", "industry: HTTP 502"}, res.Errors)
	assert.Equal(t, "Germany", res.Country)
	assert.Equal(t, "base/DE/", res.APIBase)
	require.Len(t, res.EmploymentBySector, 1)
	agr := res.EmploymentBySector["agriculture"]
	assert.Equal(t, "Agriculture employment", agr.IndicatorName)
	assert.Equal(t, 1.3, *agr.Percentage)
	assert.Nil(t, res.Summary)
}

func TestSector_CountryFallback(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mockemployment.NewMockIndicatorSource(ctrl)

	source.EXPECT().APIBase("XKX").Return("base")
	source.EXPECT().Fetch(gomock.Any(), "XKX", gomock.Any(), 2000).Return(nil, nil).Times(3)

	res, err := employment.NewSectorTool(source).Run(context.Background(), &employment.Request{Country: "xkx", Year: 2000})
	require.NoError(t, err)
	assert.Equal(t, "XKX", res.Country)
	assert.Len(t, res.EmploymentBySector, 3)
	for _, s := range employment.Sectors {
		share := res.EmploymentBySector[s.Name]
		require.NotNil(t, share)
		assert.Nil(t, share.Percentage)
		assert.Equal(t, s.Indicator, share.Indicator)
		assert.Equal(t, "No data available for 2000", share.Message)
	}
	assert.Nil(t, res.Summary)
}

func TestSector_AllFailed(t *testing.T) {
	server := sectorServer(t, map[string]func(w http.ResponseWriter){
		"SL.SRV.EMPL.ZS": status(http.StatusInternalServerError),
		"SL.AGR.EMPL.ZS": status(http.StatusInternalServerError),
		"SL.IND.EMPL.ZS": status(http.StatusInternalServerError),
	})
	defer server.Close()

	tool := employment.NewSectorTool(worldbank.New().WithBaseURL(server.URL))
	out, err := tool.Call(context.Background(), `{"country":"US","year":2020}`)
	require.NoError(t, err)

	assert.Contains(t, out, `"employment_by_sector":{}`)
	assert.Contains(t, out, `"errors":["services: HTTP 500","agriculture: HTTP 500","industry: HTTP 500"]`)
	assert.Contains(t, out, `"country":"US"`)
	assert.NotContains(t, out, `"summary"`)

	// invalid input carries the error only
	out, err = tool.Call(context.Background(), `{"country":"U","year":2020}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"country must be ISO-2 or ISO-3 code (e.g., 'US' or 'USA')."}`, out)
}

func TestSector_EmptyRecords(t *testing.T) {
	empty := func(body string) func(w http.ResponseWriter) {
		return func(w http.ResponseWriter) {
			fmt.Fprint(w, body)
		}
	}
	server := sectorServer(t, map[string]func(w http.ResponseWriter){
		"SL.SRV.EMPL.ZS": empty(`[{"page":1},[{}]]`),
		"SL.AGR.EMPL.ZS": empty(`[{"page":1},[null]]`),
		"SL.IND.EMPL.ZS": empty(`[{"page":1},[{}]]`),
	})
	defer server.Close()

	tool := employment.NewSectorTool(worldbank.New().WithBaseURL(server.URL))
	res, err := tool.Run(context.Background(), &employment.Request{Country: "US", Year: 2021})
	require.NoError(t, err)
	require.Len(t, res.EmploymentBySector, 3)
	for _, s := range employment.Sectors {
		share := res.EmploymentBySector[s.Name]
		require.NotNil(t, share)
		assert.Nil(t, share.Percentage)
		assert.Empty(t, share.IndicatorName)
		assert.Equal(t, "No data available for 2021", share.Message)
	}
	assert.Nil(t, res.Summary)
}

func TestSector_SummaryHalfToEven(t *testing.T) {
	server := sectorServer(t, map[string]func(w http.ResponseWriter){
		"SL.SRV.EMPL.ZS": record("SL.SRV.EMPL.ZS", "services", 50.125),
		"SL.AGR.EMPL.ZS": record("SL.AGR.EMPL.ZS", "agriculture", 25),
		"SL.IND.EMPL.ZS": record("SL.IND.EMPL.ZS", "industry", 25),
	})
	defer server.Close()

	tool := employment.NewSectorTool(worldbank.New().WithBaseURL(server.URL))
	res, err := tool.Run(context.Background(), &employment.Request{Country: "US", Year: 2020})
	require.NoError(t, err)
	require.NotNil(t, res.Summary)
	assert.Equal(t, 100.12, res.Summary.TotalPercentage)
}
