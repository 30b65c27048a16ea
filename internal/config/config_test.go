package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "examtutor.db", cfg.DBPath)
	assert.Equal(t, "default", cfg.ScopeID)
	assert.Equal(t, "gpt-4o-mini", cfg.FastModel)
	assert.Equal(t, "gpt-4o", cfg.SmartModel)
	assert.False(t, cfg.ExpandQuery)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("EXAMTUTOR_DB", "/tmp/x.db")
	t.Setenv("EXAMTUTOR_SCOPE", "physics")
	t.Setenv("EXAMTUTOR_CUSTOM_ENDPOINT", "http://localhost:9999")
	t.Setenv("EXAMTUTOR_EXPAND_QUERY", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.Equal(t, "physics", cfg.ScopeID)
	assert.Equal(t, "http://localhost:9999", cfg.CustomEndpoint)
	assert.True(t, cfg.ExpandQuery)
}
