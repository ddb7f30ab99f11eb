package appconf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvFlagToEnvironment(t *testing.T) {
	tests := []struct {
		flag     string
		expected Environment
	}{
		{"development", Development},
		{"test", Test},
		{"production", Production},
		{"prod", Production},
		{"PRODUCTION", Production},
		{" test ", Test},
		{"", Development},
		{"bogus", Development},
	}
	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			assert.Equal(t, tt.expected, EnvFlagToEnvironment(tt.flag))
		})
	}
}

func TestEnvironmentString(t *testing.T) {
	assert.Equal(t, "development", Development.String())
	assert.Equal(t, "test", Test.String())
	assert.Equal(t, "production", Production.String())
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		path := writeConfig(t, `{
			"env": "production",
			"verbose": true,
			"data-path": "/data/network.db",
			"feeds": [
				{"id": "metro", "url": "https://example.com/gtfs.zip"},
				{"id": "ferry", "url": "/data/ferry.zip", "auth-header-key": "Authorization", "auth-header-value": "Bearer abc"}
			]
		}`)
		config, err := LoadFromFile(path)
		require.NoError(t, err)

		appCfg := config.ToAppConfig()
		assert.Equal(t, Production, appCfg.Env)
		assert.True(t, appCfg.Verbose)

		gtfsCfg := config.ToGtfsConfigData()
		require.Len(t, gtfsCfg.Feeds, 2)
		assert.Equal(t, "metro", gtfsCfg.Feeds[0].ID)
		assert.Equal(t, "Authorization", gtfsCfg.Feeds[1].AuthHeaderKey)
		assert.Equal(t, "/data/network.db", gtfsCfg.DataPath)
	})

	t.Run("fails on nonexistent file", func(t *testing.T) {
		config, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.json"))
		assert.Error(t, err)
		assert.Nil(t, config)
		assert.Contains(t, err.Error(), "failed to stat config file")
	})

	t.Run("fails on malformed JSON", func(t *testing.T) {
		path := writeConfig(t, `{"feeds": [`)
		config, err := LoadFromFile(path)
		assert.Error(t, err)
		assert.Nil(t, config)
		assert.Contains(t, err.Error(), "failed to parse JSON config")
	})

	t.Run("fails without feeds", func(t *testing.T) {
		path := writeConfig(t, `{"env": "test"}`)
		_, err := LoadFromFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})

	t.Run("fails on duplicate feed ids", func(t *testing.T) {
		path := writeConfig(t, `{"feeds": [
			{"id": "a", "url": "x"}, {"id": "a", "url": "y"}
		]}`)
		_, err := LoadFromFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "more than once")
	})

	t.Run("fails on unknown env", func(t *testing.T) {
		path := writeConfig(t, `{"env": "staging", "feeds": [{"id": "a", "url": "x"}]}`)
		_, err := LoadFromFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown env")
	})
}
