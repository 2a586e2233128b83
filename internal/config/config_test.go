package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ARCHIVE_CONFIG_PATH", "")
	t.Setenv("PORT", "")
	t.Setenv("UPLOAD_DIR", "")
	t.Setenv("UPLOAD_MAX_SIZE_MB", "")
	t.Setenv("ANALYSIS_WORKERS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "./uploads", cfg.Uploads.Dir)
	assert.Equal(t, 4, cfg.Workers.AnalysisWorkers)
}

func TestLoadYAMLThenEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 9000
uploads:
  dir: /srv/archive/uploads
  max_size_mb: 50
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	t.Setenv("ARCHIVE_CONFIG_PATH", path)
	t.Setenv("PORT", "9100")
	t.Setenv("UPLOAD_DIR", "")
	t.Setenv("UPLOAD_MAX_SIZE_MB", "")
	t.Setenv("ANALYSIS_WORKERS", "")

	cfg, err := Load()
	require.NoError(t, err)

	// Env beats file, file beats defaults
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "/srv/archive/uploads", cfg.Uploads.Dir)
	assert.Equal(t, 50, cfg.Uploads.MaxSizeMB)
}

func TestLoadRejectsBadPort(t *testing.T) {
	t.Setenv("ARCHIVE_CONFIG_PATH", "")
	t.Setenv("PORT", "not-a-port")

	_, err := Load()
	assert.Error(t, err)
}
