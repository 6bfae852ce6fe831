package detect

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeNames(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.names")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadLabels(t *testing.T) {
	path := writeNames(t, "pothole\nlongitudinal_crack\n\ntransverse_crack\n")

	labels, err := LoadLabels(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"pothole", "longitudinal_crack", "transverse_crack"}, labels)
}

func TestLoadLabels_Empty(t *testing.T) {
	path := writeNames(t, "\n\n")

	_, err := LoadLabels(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestLoadLabels_Missing(t *testing.T) {
	_, err := LoadLabels(filepath.Join(t.TempDir(), "nope.names"))
	assert.Error(t, err)
}

func TestClassName_Fallback(t *testing.T) {
	labels := []string{"pothole"}
	assert.Equal(t, "pothole", className(labels, 0))
	assert.Equal(t, "class_7", className(labels, 7))
	assert.Equal(t, "class_-1", className(labels, -1))
}
