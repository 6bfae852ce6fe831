// Package pipeline orchestrates one scan request: geocode the address, fetch
// street imagery, run defect detection, write the PDF report. The stages run
// strictly in order; each stage's output is the next stage's only input.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/roadscan/roadscan-cli/internal/detect"
	"github.com/roadscan/roadscan-cli/internal/model"
	"github.com/roadscan/roadscan-cli/internal/report"
	"github.com/roadscan/roadscan-cli/pkg/geocode"
	"github.com/roadscan/roadscan-cli/pkg/streetview"
)

// The two expected user-facing failure paths. Everything else a stage returns
// is an internal error: reported to the caller, no report written.
var (
	// ErrEmptyAddress is returned when the submitted address is blank.
	ErrEmptyAddress = eris.New("pipeline: address is empty")

	// ErrAddressNotFound is returned when the geocoder has no result.
	ErrAddressNotFound = eris.New("pipeline: address not found")
)

// Pipeline wires the four scan stages together.
type Pipeline struct {
	geocoder geocode.Client
	imagery  streetview.Client
	detector detect.Detector
	reports  *report.Generator
}

// New creates a Pipeline with all dependencies.
func New(gc geocode.Client, sv streetview.Client, det detect.Detector, rep *report.Generator) *Pipeline {
	return &Pipeline{
		geocoder: gc,
		imagery:  sv,
		detector: det,
		reports:  rep,
	}
}

// Run executes the full scan workflow for a single address. The returned
// ScanResult always carries the state the workflow reached, including on
// error.
func (p *Pipeline) Run(ctx context.Context, address string) (*model.ScanResult, error) {
	address = strings.TrimSpace(address)

	result := &model.ScanResult{
		Address:    address,
		Detections: []model.Detection{},
		State:      model.StateIdle,
	}

	if address == "" {
		return result, ErrEmptyAddress
	}
	result.State = model.StateAddressSubmitted

	log := zap.L().With(zap.String("address", address))
	log.Info("pipeline: scan started")

	// Geocode.
	var geo *geocode.Result
	err := p.runStage(result, "geocode", func() error {
		var stageErr error
		geo, stageErr = p.geocoder.Geocode(ctx, address)
		return stageErr
	})
	if err != nil {
		return result, eris.Wrap(err, "pipeline: geocode")
	}
	if !geo.Matched {
		result.State = model.StateAddressNotFound
		log.Info("pipeline: address not found")
		return result, ErrAddressNotFound
	}
	result.Coordinates = &geo.Coordinates
	result.State = model.StateGeocoded

	// Street imagery.
	var img *model.Image
	err = p.runStage(result, "imagery", func() error {
		var stageErr error
		img, stageErr = p.imagery.Fetch(ctx, geo.Coordinates)
		return stageErr
	})
	if err != nil {
		return result, eris.Wrap(err, "pipeline: imagery")
	}
	result.Image = img.Data
	result.State = model.StateImageFetched

	// Detection.
	var dr *model.DetectionResult
	err = p.runStage(result, "detect", func() error {
		var stageErr error
		dr, stageErr = p.detector.Detect(ctx, img)
		return stageErr
	})
	if err != nil {
		return result, eris.Wrap(err, "pipeline: detect")
	}
	result.Detections = dr.Detections
	result.Annotated = dr.Annotated
	result.State = model.StateDetected

	// Report.
	err = p.runStage(result, "report", func() error {
		path, stageErr := p.reports.Generate(address, result.Coordinates, result.Detections)
		if stageErr != nil {
			return stageErr
		}
		result.ReportPath = path
		return nil
	})
	if err != nil {
		return result, eris.Wrap(err, "pipeline: report")
	}
	result.State = model.StateReportReady

	log.Info("pipeline: scan complete",
		zap.Int("detections", len(result.Detections)),
		zap.String("report", result.ReportPath),
	)
	return result, nil
}

// runStage times a stage, records it on the result, and logs the outcome.
func (p *Pipeline) runStage(result *model.ScanResult, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	duration := time.Since(start).Milliseconds()

	result.Stages = append(result.Stages, model.StageTiming{Name: name, DurationMS: duration})

	log := zap.L().With(
		zap.String("stage", name),
		zap.Int64("duration_ms", duration),
	)
	if err != nil {
		log.Error("pipeline: stage failed", zap.Error(err))
	} else {
		log.Info("pipeline: stage complete")
	}
	return err
}
