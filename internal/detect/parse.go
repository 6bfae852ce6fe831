package detect

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/roadscan/roadscan-cli/internal/model"
)

// rowWidth is the layout of one model output row: x1, y1, x2, y2,
// confidence (0-1 fraction), class index.
const rowWidth = 6

// parseRows maps raw model output rows to detections, in model order.
// Confidence is rescaled from a 0-1 fraction to a 0-100 percentage. No
// thresholding or NMS happens here; the exported model already applies both.
// When max > 0 and the model returned more rows, the tail is dropped and the
// truncated flag is set.
func parseRows(rows []float32, labels []string, max int) ([]model.Detection, bool, error) {
	if len(rows)%rowWidth != 0 {
		return nil, false, eris.Errorf("detect: output length %d is not a multiple of %d", len(rows), rowWidth)
	}

	count := len(rows) / rowWidth
	truncated := false
	if max > 0 && count > max {
		count = max
		truncated = true
	}

	detections := make([]model.Detection, 0, count)
	for i := 0; i < count; i++ {
		row := rows[i*rowWidth : (i+1)*rowWidth]
		cls := int(math.Round(float64(row[5])))
		detections = append(detections, model.Detection{
			Name:       className(labels, cls),
			Confidence: float64(row[4]) * 100,
			Box: model.Box{
				X1: float64(row[0]),
				Y1: float64(row[1]),
				X2: float64(row[2]),
				Y2: float64(row[3]),
			},
		})
	}
	return detections, truncated, nil
}

// scaleBoxes maps boxes from network input coordinates back to the original
// image dimensions.
func scaleBoxes(detections []model.Detection, inputSize, width, height int) {
	if inputSize <= 0 {
		return
	}
	sx := float64(width) / float64(inputSize)
	sy := float64(height) / float64(inputSize)
	for i := range detections {
		b := &detections[i].Box
		b.X1 *= sx
		b.X2 *= sx
		b.Y1 *= sy
		b.Y2 *= sy
	}
}
