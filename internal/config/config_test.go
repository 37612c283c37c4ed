package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/labelgraph/internal/graph"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	return dir
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	dir := writeConfig(t, "labelgraph.yml", `
driver: postgres
dsn: postgres://localhost/taxonomy?sslmode=disable
tables:
  routes: taxonomy_routes
maxDepth: 12
workers: 4
log:
  level: debug
  format: json
`)
	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Driver)
	assert.Equal(t, "postgres://localhost/taxonomy?sslmode=disable", cfg.DSN)
	assert.Equal(t, graph.Tables{
		Labels:        "labels",
		Relationships: "label_relationships",
		Routes:        "taxonomy_routes",
		Labelables:    "labelables",
	}, cfg.Tables)
	assert.Equal(t, 12, cfg.MaxDepth)
	assert.Equal(t, 4, cfg.Workers)

	lvl, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_YAMLExtension(t *testing.T) {
	dir := writeConfig(t, "labelgraph.yaml", "driver: memory\n")
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Driver)
	assert.Equal(t, graph.DefaultMaxDepth, cfg.MaxDepth)
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := writeConfig(t, "labelgraph.yml", "driver: sqlite\ndsn: file.db\n")
	t.Setenv(EnvDriver, "mysql")
	t.Setenv(EnvDSN, "user:pass@/taxonomy")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.Driver)
	assert.Equal(t, "user:pass@/taxonomy", cfg.DSN)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad yaml", "driver: [sqlite\n"},
		{"unknown driver", "driver: oracle\n"},
		{"negative workers", "workers: -1\n"},
		{"bad level", "log:\n  level: loud\n"},
		{"bad format", "log:\n  format: xml\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, "labelgraph.yml", tt.body))
			assert.Error(t, err)
		})
	}
}
