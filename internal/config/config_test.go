package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/burst/internal/config"
	"github.com/nikbrunner/burst/internal/search"
	"github.com/nikbrunner/burst/internal/sorter"
)

func TestLoad_CreatesFileWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := config.Load(path)

	assert.NilError(t, err)
	assert.DeepEqual(t, *cfg, config.DefaultConfig())

	_, err = os.Stat(path)
	assert.NilError(t, err, "config file should be created")
}

func TestLoad_FillsMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	assert.NilError(t, os.WriteFile(path, []byte("backend: sqlite\nsortMode: alpha\nconfirmDelete: false\n"), 0644))

	cfg, err := config.Load(path)

	assert.NilError(t, err)
	assert.Equal(t, cfg.Backend, config.BackendSQLite)
	assert.Equal(t, cfg.Mode(), sorter.Alphabetical)
	assert.Equal(t, cfg.SearchStrategy(), search.StrategyScore)
	assert.Equal(t, cfg.ScoreThreshold, search.DefaultScoreThreshold)
	assert.Equal(t, cfg.URLDistance, search.DefaultURLDistance)
	assert.Assert(t, !cfg.ShouldConfirmDelete())
	assert.Equal(t, cfg.ResolvedDataPath("/data"), filepath.Join("/data", "bookmarks.db"))
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "backend", content: "backend: postgres\n", wantErr: "unknown backend"},
		{name: "sort mode", content: "sortMode: random\n", wantErr: "unknown sort mode"},
		{name: "strategy", content: "strategy: regex\n", wantErr: "unknown search strategy"},
		{name: "malformed", content: "backend: [\n", wantErr: "parse config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			assert.NilError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := config.Load(path)

			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := config.DefaultConfig()
	cfg.Strategy = string(search.StrategySubsequence)
	cfg.DataPath = "/tmp/marks.json"

	assert.NilError(t, config.Save(path, &cfg))
	loaded, err := config.Load(path)

	assert.NilError(t, err)
	assert.Equal(t, loaded.SearchStrategy(), search.StrategySubsequence)
	assert.Equal(t, loaded.ResolvedDataPath("/ignored"), "/tmp/marks.json")

	data, err := os.ReadFile(path)
	assert.NilError(t, err)
	assert.Assert(t, is.Contains(string(data), "strategy: subsequence"))
}

func TestDefaultFilePath_EnvOverride(t *testing.T) {
	t.Setenv(config.EnvPath, "/etc/burst.yaml")

	path, err := config.DefaultFilePath()

	assert.NilError(t, err)
	assert.Equal(t, path, "/etc/burst.yaml")
}
