package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, filepath.Join("models", "model.onnx"), cfg.ModelPath())
	assert.Equal(t, 60*time.Second, cfg.LoadTimeout())
	assert.Equal(t, []string{"jpeg", "png"}, cfg.AllowedFormats)
	assert.False(t, cfg.AutoOrient)
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingDefaultPathUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load(DefaultPath)
	require.NoError(t, err)
	assert.Equal(t, Default().Port, cfg.Port)
}

func TestLoadMissingExplicitPathFails(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
port = "9001"
model_dir = "/srv/models"
model_file_name = "xception.onnx"
pool_size = 4
allowed_formats = ["JPG", "png", "webp"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("LESIONSCAN_PORT", "9100")
	t.Setenv("LESIONSCAN_POOL_SIZE", "3")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, 3, cfg.PoolSize)
	assert.Equal(t, filepath.Join("/srv/models", "xception.onnx"), cfg.ModelPath())
	assert.Equal(t, []string{"jpeg", "png", "webp"}, cfg.Formats())
}

func TestLoadBadEnv(t *testing.T) {
	t.Setenv("LESIONSCAN_POOL_SIZE", "many")
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"empty port", func(c *Config) { c.Port = "" }, ErrNoPort},
		{"no model path", func(c *Config) { c.ModelDir, c.ModelFileName = "", "" }, ErrNoModelPath},
		{"zero timeout", func(c *Config) { c.LoadTimeoutSeconds = 0 }, ErrInvalidLoadTimeout},
		{"zero pool", func(c *Config) { c.PoolSize = 0 }, ErrInvalidPoolSize},
		{"zero upload", func(c *Config) { c.MaxUploadBytes = 0 }, ErrInvalidUploadLimit},
		{"no formats", func(c *Config) { c.AllowedFormats = nil }, ErrNoAllowedFormats},
		{"negative rate", func(c *Config) { c.RateLimitPerMinute = -1 }, ErrInvalidRateLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}

func TestCReadsDefaultPathOnce(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	require.NoError(t, os.WriteFile(DefaultPath, []byte(`port = "9200"`), 0o644))

	first, err := C()
	require.NoError(t, err)
	assert.Equal(t, "9200", first.Port)

	require.NoError(t, os.WriteFile(DefaultPath, []byte(`port = "9300"`), 0o644))
	second, err := C()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestValidateMaxPixels(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.Equal(t, int64(50_000_000), cfg.MaxPixels)
	cfg.MaxPixels = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidMaxPixels)
}
