//go:build gocv
// +build gocv

package detect

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/roadscan/roadscan-cli/internal/model"
)

// YOLODetector runs an exported ONNX detection model via the OpenCV DNN
// module. The network handle is created once and is immutable afterwards;
// forward passes are serialized with a mutex because the underlying net is
// not safe for concurrent inference.
type YOLODetector struct {
	mu     sync.Mutex
	net    gocv.Net
	labels []string
	cfg    Config
}

// NewYOLODetector loads the model and its label table. The returned handle is
// meant to live for the whole process and be shared across requests.
func NewYOLODetector(cfg Config) (*YOLODetector, error) {
	labels, err := LoadLabels(cfg.NamesPath)
	if err != nil {
		return nil, err
	}

	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, eris.Errorf("detect: failed to load model from %s", cfg.ModelPath)
	}

	if cfg.InputSize <= 0 {
		cfg.InputSize = 640
	}

	zap.L().Info("detect: model loaded",
		zap.String("model", cfg.ModelPath),
		zap.Int("classes", len(labels)),
	)

	return &YOLODetector{net: net, labels: labels, cfg: cfg}, nil
}

// Close releases the network handle.
func (d *YOLODetector) Close() error {
	return d.net.Close()
}

// Detect runs one forward pass and returns ordered detections plus an
// annotated JPEG.
func (d *YOLODetector) Detect(ctx context.Context, img *model.Image) (*model.DetectionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "detect: context")
	}

	mat, err := gocv.IMDecode(img.Data, gocv.IMReadColor)
	if err != nil || mat.Empty() {
		if !mat.Empty() {
			mat.Close()
		}
		return nil, eris.New("detect: failed to decode image")
	}
	defer mat.Close()

	rows, err := d.forward(mat)
	if err != nil {
		return nil, err
	}

	detections, truncated, err := parseRows(rows, d.labels, d.cfg.MaxDetections)
	if err != nil {
		return nil, err
	}
	scaleBoxes(detections, d.cfg.InputSize, mat.Cols(), mat.Rows())

	if truncated {
		zap.L().Warn("detect: detection list truncated",
			zap.Int("kept", len(detections)),
			zap.Int("cap", d.cfg.MaxDetections),
		)
	}

	annotated, err := annotate(mat, detections)
	if err != nil {
		return nil, err
	}

	return &model.DetectionResult{
		Detections: detections,
		Annotated:  annotated,
		Truncated:  truncated,
	}, nil
}

// forward runs the network on the image and returns the flattened output rows.
func (d *YOLODetector) forward(mat gocv.Mat) ([]float32, error) {
	size := d.cfg.InputSize
	blob := gocv.BlobFromImage(mat, 1.0/255.0, image.Pt(size, size),
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.mu.Lock()
	defer d.mu.Unlock()

	d.net.SetInput(blob, "")
	out := d.net.Forward("")
	defer out.Close()

	if out.Empty() {
		return nil, nil
	}

	flat, err := out.DataPtrFloat32()
	if err != nil {
		return nil, eris.Wrap(err, "detect: read model output")
	}
	rows := make([]float32, len(flat))
	copy(rows, flat)
	return rows, nil
}

// annotate draws boxes and "<name> <conf>%" labels on a copy of the image and
// encodes it as JPEG.
func annotate(mat gocv.Mat, detections []model.Detection) ([]byte, error) {
	out := mat.Clone()
	defer out.Close()

	green := color.RGBA{G: 255, A: 255}
	for _, det := range detections {
		rect := image.Rect(int(det.Box.X1), int(det.Box.Y1), int(det.Box.X2), int(det.Box.Y2))
		gocv.Rectangle(&out, rect, green, 2)
		label := fmt.Sprintf("%s %.2f%%", det.Name, det.Confidence)
		origin := image.Pt(rect.Min.X, rect.Min.Y-6)
		if origin.Y < 12 {
			origin.Y = rect.Min.Y + 14
		}
		gocv.PutText(&out, label, origin, gocv.FontHersheySimplex, 0.5, green, 1)
	}

	img, err := out.ToImage()
	if err != nil {
		return nil, eris.Wrap(err, "detect: convert annotated image")
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, eris.Wrap(err, "detect: encode annotated image")
	}
	return buf.Bytes(), nil
}
