/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type testEndpointConfig struct {
	BaseURL string
	Timeout time.Duration
}

func (c *testEndpointConfig) SetProviderDefaults(dp DataProvider) {
	dp.SetDefault("endpoint.baseURL", "https://example.com")
	dp.SetDefault("endpoint.timeout", "10s")
}

func (c *testEndpointConfig) Set(dp DataProvider) (err error) {
	if c.BaseURL, err = dp.GetString("endpoint.baseURL"); err != nil {
		return err
	}
	c.Timeout, err = dp.GetDuration("endpoint.timeout")
	return err
}

type testBudgetConfig struct {
	Limit int
}

func (c *testBudgetConfig) KeyPrefix() string {
	return "budget"
}

func (c *testBudgetConfig) SetProviderDefaults(_ DataProvider) {}

func (c *testBudgetConfig) Set(dp DataProvider) (err error) {
	c.Limit, err = dp.GetInt("limit")
	return err
}

func TestLoader_LoadFromReader(t *testing.T) {
	t.Run("load config, use defaults", func(t *testing.T) {
		cfg := &testEndpointConfig{}
		err := NewLoader(NewViperAdapter()).LoadFromReader(bytes.NewBufferString(`{}`), DataTypeJSON, cfg)
		require.NoError(t, err)
		require.Equal(t, "https://example.com", cfg.BaseURL)
		require.Equal(t, 10*time.Second, cfg.Timeout)
	})

	t.Run("load config", func(t *testing.T) {
		cfg := &testEndpointConfig{}
		yamlData := "endpoint:\n  baseURL: http://127.0.0.1:8080\n  timeout: 3s\n"
		err := NewLoader(NewViperAdapter()).LoadFromReader(bytes.NewBufferString(yamlData), DataTypeYAML, cfg)
		require.NoError(t, err)
		require.Equal(t, "http://127.0.0.1:8080", cfg.BaseURL)
		require.Equal(t, 3*time.Second, cfg.Timeout)
	})

	t.Run("load several configs, use key prefix", func(t *testing.T) {
		endpointCfg := &testEndpointConfig{}
		budgetCfg := &testBudgetConfig{}
		err := NewLoader(NewViperAdapter()).LoadFromReader(
			bytes.NewBufferString(`{"budget":{"limit":3}}`), DataTypeJSON, endpointCfg, budgetCfg)
		require.NoError(t, err)
		require.Equal(t, 3, budgetCfg.Limit)
		require.Equal(t, "https://example.com", endpointCfg.BaseURL)
	})

	t.Run("invalid value", func(t *testing.T) {
		budgetCfg := &testBudgetConfig{}
		err := NewLoader(NewViperAdapter()).LoadFromReader(
			bytes.NewBufferString(`{"budget":{"limit":"many"}}`), DataTypeJSON, budgetCfg)
		require.ErrorContains(t, err, "budget.limit")
	})
}

func TestLoader_LoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("budget:\n  limit: 7\n"), 0o600))

	budgetCfg := &testBudgetConfig{}
	require.NoError(t, NewLoader(NewViperAdapter()).LoadFromFile(path, DataTypeYAML, budgetCfg))
	require.Equal(t, 7, budgetCfg.Limit)
}

func TestNewDefaultLoader_EnvVars(t *testing.T) {
	t.Setenv("CRPTTEST_BUDGET_LIMIT", "42")

	budgetCfg := &testBudgetConfig{}
	err := NewDefaultLoader("crpttest").LoadFromReader(bytes.NewBufferString(`{"budget":{"limit":1}}`), DataTypeJSON, budgetCfg)
	require.NoError(t, err)
	require.Equal(t, 42, budgetCfg.Limit)
}
