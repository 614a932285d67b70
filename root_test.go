package main

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/krau/lesionscan/model"
	"github.com/krau/lesionscan/preprocess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommands(t *testing.T) {
	t.Parallel()

	cmd := newRootCmd()
	names := map[string]bool{}
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["predict"])
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func writeFixture(t *testing.T) (cfgPath, imgPath, modelDir string) {
	t.Helper()
	dir := t.TempDir()
	modelDir = filepath.Join(dir, "models")

	cfgPath = filepath.Join(dir, "config.toml")
	cfg := "model_dir = '" + filepath.ToSlash(modelDir) + "'\nlog_level = 'error'\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	imgPath = filepath.Join(dir, "lesion.png")
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 30, 30))))
	require.NoError(t, os.WriteFile(imgPath, buf.Bytes(), 0o644))
	return cfgPath, imgPath, modelDir
}

func TestPredictMissingArtifact(t *testing.T) {
	cfgPath, imgPath, _ := writeFixture(t)

	var out bytes.Buffer
	err := runPredict(context.Background(), cfgPath, imgPath, false, &out)
	var mle *model.ModelLoadError
	require.ErrorAs(t, err, &mle)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Empty(t, out.String())
}

func TestPredictRejectsNonImage(t *testing.T) {
	cfgPath, _, _ := writeFixture(t)
	bad := filepath.Join(t.TempDir(), "notes.png")
	require.NoError(t, os.WriteFile(bad, []byte("not a picture"), 0o644))

	err := runPredict(context.Background(), cfgPath, bad, false, &bytes.Buffer{})
	var uie *preprocess.UnsupportedImageError
	assert.ErrorAs(t, err, &uie)
}

func TestPredictBadConfig(t *testing.T) {
	_, imgPath, _ := writeFixture(t)

	err := runPredict(context.Background(), filepath.Join(t.TempDir(), "absent.toml"), imgPath, false, &bytes.Buffer{})
	assert.Error(t, err)
}
