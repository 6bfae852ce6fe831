package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadscan/roadscan-cli/internal/model"
)

var roadLabels = []string{"pothole", "longitudinal_crack", "transverse_crack", "alligator_crack"}

func TestParseRows_ConfidenceRescale(t *testing.T) {
	rows := []float32{10, 20, 110, 220, 0.8734, 0}

	detections, truncated, err := parseRows(rows, roadLabels, 0)
	require.NoError(t, err)
	assert.False(t, truncated)
	require.Len(t, detections, 1)
	assert.Equal(t, "pothole", detections[0].Name)
	assert.InDelta(t, 87.34, detections[0].Confidence, 0.001)
	assert.Equal(t, "pothole (87.34%)", detections[0].Line())
}

func TestParseRows_ModelOrderPreserved(t *testing.T) {
	rows := []float32{
		0, 0, 10, 10, 0.9, 1,
		5, 5, 20, 20, 0.2, 0,
		1, 1, 30, 30, 0.5, 3,
	}

	detections, _, err := parseRows(rows, roadLabels, 0)
	require.NoError(t, err)
	require.Len(t, detections, 3)
	assert.Equal(t, "longitudinal_crack", detections[0].Name)
	assert.Equal(t, "pothole", detections[1].Name)
	assert.Equal(t, "alligator_crack", detections[2].Name)
}

func TestParseRows_Empty(t *testing.T) {
	detections, truncated, err := parseRows(nil, roadLabels, 0)
	require.NoError(t, err)
	assert.False(t, truncated)
	assert.Empty(t, detections)
}

func TestParseRows_UnknownClassIndex(t *testing.T) {
	rows := []float32{0, 0, 1, 1, 0.5, 42}

	detections, _, err := parseRows(rows, roadLabels, 0)
	require.NoError(t, err)
	require.Len(t, detections, 1)
	assert.Equal(t, "class_42", detections[0].Name)
}

func TestParseRows_CapTruncates(t *testing.T) {
	var rows []float32
	for i := 0; i < 5; i++ {
		rows = append(rows, 0, 0, 1, 1, 0.5, 0)
	}

	detections, truncated, err := parseRows(rows, roadLabels, 3)
	require.NoError(t, err)
	assert.True(t, truncated)
	assert.Len(t, detections, 3)
}

func TestParseRows_MalformedLength(t *testing.T) {
	_, _, err := parseRows([]float32{1, 2, 3, 4}, roadLabels, 0)
	assert.Error(t, err)
}

func TestScaleBoxes(t *testing.T) {
	detections := []model.Detection{
		{Box: model.Box{X1: 64, Y1: 32, X2: 128, Y2: 320}},
	}

	scaleBoxes(detections, 640, 1280, 320)
	assert.InDelta(t, 128.0, detections[0].Box.X1, 0.001)
	assert.InDelta(t, 16.0, detections[0].Box.Y1, 0.001)
	assert.InDelta(t, 256.0, detections[0].Box.X2, 0.001)
	assert.InDelta(t, 160.0, detections[0].Box.Y2, 0.001)
}
