package config_test

import (
	"testing"
	"time"

	"github.com/effective-security/worldbank-mcp/config"
	"github.com/effective-security/worldbank-mcp/worldbank"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	cfg, err := config.LoadConfig("testdata/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "https://wb.example.com/v2", cfg.WorldBank.BaseURL)
	assert.Equal(t, "wbmcp-test/1.0", cfg.WorldBank.UserAgent)
	assert.Equal(t, "0.0.0.0:9001", cfg.HTTP.Addr)
	assert.Equal(t, "/rpc", cfg.HTTP.MCPPath)
	assert.Equal(t, "DEBUG", cfg.LogLevel)

	d, err := cfg.WorldBank.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, d)

	client, err := cfg.WorldBank.Client()
	require.NoError(t, err)
	assert.Equal(t, "https://wb.example.com/v2", client.BaseURL())
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, worldbank.DefaultBaseURL, cfg.WorldBank.BaseURL)
	assert.Equal(t, worldbank.DefaultUserAgent, cfg.WorldBank.UserAgent)
	assert.Equal(t, "20s", cfg.WorldBank.Timeout)
	assert.Equal(t, "127.0.0.1:8001", cfg.HTTP.Addr)
	assert.Equal(t, "/mcp", cfg.HTTP.MCPPath)
	assert.Equal(t, "INFO", cfg.LogLevel)

	cfg, err = config.LoadConfig("testdata/partial.yaml")
	require.NoError(t, err)
	assert.Equal(t, "localhost:8080", cfg.HTTP.Addr)
	assert.Equal(t, "/mcp", cfg.HTTP.MCPPath)
	assert.Equal(t, worldbank.DefaultBaseURL, cfg.WorldBank.BaseURL)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := config.LoadConfig("testdata/non-existent.yaml")
	require.Error(t, err)

	_, err = config.LoadConfig("testdata/invalid.yaml")
	require.Error(t, err)

	_, err = config.LoadConfig("testdata/bad_timeout.yaml")
	assert.ErrorContains(t, err, `invalid worldbank.timeout: "soon"`)

	_, err = config.LoadConfig("testdata/bad_level.yaml")
	assert.ErrorContains(t, err, "invalid config")
}

func TestValidate(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())

	cfg.WorldBank.Timeout = "-1s"
	assert.EqualError(t, cfg.Validate(), `invalid worldbank.timeout: "-1s"`)

	cfg = config.Default()
	cfg.HTTP.MCPPath = "mcp"
	assert.ErrorContains(t, cfg.Validate(), "invalid config")

	cfg = config.Default()
	cfg.WorldBank.BaseURL = "not a url"
	assert.ErrorContains(t, cfg.Validate(), "invalid config")
}
