package worldbank

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/worldbank-mcp/pkg/metricskey"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/worldbank-mcp", "worldbank")

const (
	// DefaultBaseURL is the root of the World Bank v2 REST API
	DefaultBaseURL = "https://api.worldbank.org/v2"
	// DefaultTimeout is applied to every request
	DefaultTimeout = 20 * time.Second
	// DefaultUserAgent identifies the client to the API
	DefaultUserAgent = "mcp-worldbank-employment/1.0"
	// Source is the attribution string for data returned by the API
	Source = "World Bank Open Data"

	maxBodySize = 4 << 20
)

// Observation is the first record of an indicator series for a single year.
type Observation struct {
	// URL is the request URL the observation was fetched from
	URL string
	// Country is the country name, empty if the API did not return one
	Country string
	// CountryID is the country id as returned by the API
	CountryID string
	// Indicator is the requested indicator code
	Indicator string
	// IndicatorName is empty if the API did not return one
	IndicatorName string
	Date          string
	// Value is nil when the series has no value for the year
	Value *float64
}

// Client queries indicator series of the World Bank Open Data API.
type Client struct {
	baseURL    string
	userAgent  string
	timeout    time.Duration
	httpClient *http.Client
}

// New returns a client with default settings.
func New() *Client {
	return &Client{
		baseURL:    DefaultBaseURL,
		userAgent:  DefaultUserAgent,
		timeout:    DefaultTimeout,
		httpClient: http.DefaultClient,
	}
}

// WithBaseURL overrides the API root, used by tests and mirrors.
func (c *Client) WithBaseURL(baseURL string) *Client {
	if baseURL != "" {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
	return c
}

func (c *Client) WithHTTPClient(client *http.Client) *Client {
	if client != nil {
		c.httpClient = client
	}
	return c
}

func (c *Client) WithUserAgent(userAgent string) *Client {
	if userAgent != "" {
		c.userAgent = userAgent
	}
	return c
}

func (c *Client) WithTimeout(timeout time.Duration) *Client {
	if timeout > 0 {
		c.timeout = timeout
	}
	return c
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// APIBase returns the indicator root for the country.
func (c *Client) APIBase(country string) string {
	return fmt.Sprintf("%s/country/%s/indicator/", c.baseURL, url.PathEscape(country))
}

// IndicatorURL returns the request URL for a single-year series.
func (c *Client) IndicatorURL(country, indicator string, year int) string {
	return fmt.Sprintf("%s%s?date=%d:%d&format=json", c.APIBase(country), url.PathEscape(indicator), year, year)
}

// Fetch returns the observation of the indicator for the country and year.
// It returns nil observation and nil error when the API has no records.
// A status other than 200 is reported as *StatusError.
func (c *Client) Fetch(ctx context.Context, country, indicator string, year int) (*Observation, error) {
	reqURL := c.IndicatorURL(country, indicator, year)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	metricskey.PerfUpstreamRequest.MeasureSince(started, indicator)
	if err != nil {
		metricskey.StatsUpstreamRequests.IncrCounter(1, indicator, "error")
		logger.ContextKV(ctx, xlog.ERROR,
			"url", reqURL,
			"err", err.Error(),
		)
		return nil, errors.Wrap(err, "failed to execute request")
	}
	defer resp.Body.Close()

	metricskey.StatsUpstreamRequests.IncrCounter(1, indicator, strconv.Itoa(resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		logger.ContextKV(ctx, xlog.WARNING,
			"url", reqURL,
			"status", resp.StatusCode,
		)
		return nil, errors.WithStack(&StatusError{StatusCode: resp.StatusCode, URL: reqURL})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response")
	}

	env, err := ParseEnvelope(body)
	if err != nil {
		return nil, err
	}

	rec := env.First()
	if rec == nil {
		metricskey.StatsUpstreamNoData.IncrCounter(1, indicator)
		kv := []any{"url", reqURL, "status", "no_data"}
		if len(env.Messages) > 0 {
			kv = append(kv, "message", env.Messages[0].Value)
		}
		logger.ContextKV(ctx, xlog.DEBUG, kv...)
		return nil, nil
	}

	obs := &Observation{
		URL:       reqURL,
		Indicator: indicator,
		Date:      rec.Date,
		Value:     rec.Value,
	}
	if rec.Country != nil {
		obs.Country = rec.Country.Value
		obs.CountryID = rec.Country.ID
	}
	if rec.Indicator != nil {
		obs.IndicatorName = rec.Indicator.Value
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"url", reqURL,
		"country", obs.Country,
		"has_value", obs.Value != nil,
	)
	return obs, nil
}
