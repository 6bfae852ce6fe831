// Package detect runs a pretrained road-defect detection model over street
// imagery. The model is consumed as a black box: image in, rows of
// (box, confidence, class) out. Parsing of those rows is pure Go; the forward
// pass itself lives behind the gocv build tag.
package detect

import (
	"context"

	"github.com/roadscan/roadscan-cli/internal/model"
)

// Detector runs one forward pass over an image and returns the ordered
// detections plus an annotated JPEG.
type Detector interface {
	Detect(ctx context.Context, img *model.Image) (*model.DetectionResult, error)
}

// Config holds the detector model settings.
type Config struct {
	ModelPath     string // ONNX model exported with NMS baked in
	NamesPath     string // label table bundled with the model, one class per line
	InputSize     int    // square network input, e.g. 640
	MaxDetections int    // cap on rows kept per image; 0 means no cap
}
