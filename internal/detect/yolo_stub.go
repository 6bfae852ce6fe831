//go:build !gocv
// +build !gocv

package detect

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/roadscan/roadscan-cli/internal/model"
)

// YOLODetector is a placeholder when the binary is built without the gocv tag.
type YOLODetector struct{}

// NewYOLODetector fails: inference requires an OpenCV-enabled build.
func NewYOLODetector(cfg Config) (*YOLODetector, error) {
	return nil, eris.New("detect: built without gocv support, rebuild with -tags gocv")
}

// Detect fails: inference requires an OpenCV-enabled build.
func (d *YOLODetector) Detect(ctx context.Context, img *model.Image) (*model.DetectionResult, error) {
	return nil, eris.New("detect: built without gocv support, rebuild with -tags gocv")
}

// Close implements the same surface as the gocv build.
func (d *YOLODetector) Close() error { return nil }
