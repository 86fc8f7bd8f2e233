package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upstream(t *testing.T) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "wbmcp-test", r.Header.Get("User-Agent"))
		if strings.HasSuffix(r.URL.Path, "/SL.UEM.TOTL.ZS") {
			fmt.Fprint(w, `[{"page":1},[{"indicator":{"id":"SL.UEM.TOTL.ZS","value":"Unemployment"},"country":{"id":"US","value":"United States"},"date":"2020","value":8.05}]]`)
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
}

func writeConfig(t *testing.T, baseURL string) string {
	file := filepath.Join(t.TempDir(), "config.yaml")
	cfg := fmt.Sprintf("worldbank:\n  base_url: %s\n  user_agent: wbmcp-test\n  timeout: 2s\nlog_level: ERROR\n", baseURL)
	require.NoError(t, os.WriteFile(file, []byte(cfg), 0o600))
	return file
}

func run(t *testing.T, args ...string) (string, string, error) {
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestCall(t *testing.T) {
	up := upstream(t)
	defer up.Close()
	cfg := writeConfig(t, up.URL)

	out, _, err := run(t, "call", "get_unemployment_rate", "--country", "us", "--year", "2020", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, `"rate": 8.05`)
	assert.Contains(t, out, `"country": "United States"`)

	out, _, err = run(t, "call", "get_unemployment_rate", "--country", "US", "--year", "2020", "-o", "yaml", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "rate: 8.05")
	assert.Contains(t, out, "% of total labor force")

	out, _, err = run(t, "call", "get_unemployment_rate", "--country", "US", "--year", "2020", "-o", "toml", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "rate = 8.05")

	out, _, err = run(t, "call", "get_employment_ratio", "--country", "US", "--year", "2020", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, `"error": "World Bank request failed: HTTP 502"`)

	out, _, err = run(t, "call", "get_employment_ratio", "--country", "USAA", "--year", "2020", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, `"error": "country must be ISO-2 or ISO-3 code (e.g., 'US' or 'USA')."`)
}

func TestCall_Verbose(t *testing.T) {
	up := upstream(t)
	defer up.Close()
	cfg := writeConfig(t, up.URL)

	_, errOut, err := run(t, "call", "get_unemployment_rate", "--country", "US", "--year", "2020", "--verbose", "--stats", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, errOut, "Tool Start: get_unemployment_rate")
	assert.Contains(t, errOut, "Tool End: get_unemployment_rate")
	assert.Contains(t, errOut, "*** Run Started ***")
	assert.Contains(t, errOut, "Tool calls: 1, Failed: 0, Not Found: 0")
}

func TestCall_Errors(t *testing.T) {
	_, _, err := run(t, "call", "get_gdp", "--country", "US", "--year", "2020")
	assert.ErrorContains(t, err, "tool not found")

	_, _, err = run(t, "call", "get_unemployment_rate", "--country", "US")
	assert.ErrorContains(t, err, `required flag(s) "year" not set`)

	_, _, err = run(t, "call", "get_unemployment_rate", "--country", "US", "--year", "1900", "-o", "xml")
	assert.ErrorContains(t, err, "unsupported format: xml")

	_, _, err = run(t, "tools", "--log-level", "LOUD")
	assert.ErrorContains(t, err, "invalid log level: LOUD")

	_, _, err = run(t, "tools", "--config", "testdata/missing.yaml")
	assert.Error(t, err)
}

func TestTools(t *testing.T) {
	out, _, err := run(t, "tools", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, `"Name": "get_employment_by_sector"`)
	assert.Contains(t, out, `"Name": "get_employment_ratio"`)
	assert.Contains(t, out, `"Name": "get_unemployment_rate"`)
}

func TestCall_Input(t *testing.T) {
	up := upstream(t)
	defer up.Close()
	cfg := writeConfig(t, up.URL)
	dir := t.TempDir()

	files := map[string]string{
		"req.yaml": "country: us\nyear: 1990\n",
		"req.toml": "country = \"US\"\nyear = 1990\n",
		"req.json": "```json\n{\"country\": \"US\", \"year\": 1990}\n```",
	}
	for name, content := range files {
		file := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(file, []byte(content), 0o600))

		out, _, err := run(t, "call", "get_unemployment_rate", "--input", file, "--config", cfg)
		require.NoError(t, err, name)
		assert.Contains(t, out, `"error": "year must be between 1991 and 2100."`, name)

		out, _, err = run(t, "call", "get_unemployment_rate", "--input", file, "--year", "2020", "--config", cfg)
		require.NoError(t, err, name)
		assert.Contains(t, out, `"rate": 8.05`, name)
	}

	_, _, err := run(t, "call", "get_unemployment_rate", "--input", filepath.Join(dir, "req.txt"))
	assert.EqualError(t, err, `unsupported file extension: "`+filepath.Join(dir, "req.txt")+`"`)

	_, _, err = run(t, "call", "get_unemployment_rate", "--input", filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read request")

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("country = "), 0o600))
	_, _, err = run(t, "call", "get_unemployment_rate", "--input", bad)
	assert.ErrorContains(t, err, "failed to decode request")
}

func TestTemplate(t *testing.T) {
	out, _, err := run(t, "template", "--log-level", "error")
	require.NoError(t, err)
	assert.Equal(t, "country: US # ISO 2- or 3-letter country code (e.g. US or USA or KR or KOR).\nyear: 2020 # Four-digit year (1991 to 2100).\n", out)

	out, _, err = run(t, "template", "-o", "toml", "--log-level", "error")
	require.NoError(t, err)
	assert.Equal(t, "country = \"US\"\nyear = 2020\n", out)

	out, _, err = run(t, "template", "-o", "json", "--log-level", "error")
	require.NoError(t, err)
	assert.Equal(t, "{\n\t\"country\": \"US\",\n\t\"year\": 2020\n}\n", out)

	_, _, err = run(t, "template", "-o", "xml")
	assert.EqualError(t, err, "unsupported format: xml")
}
