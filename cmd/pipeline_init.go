package main

import (
	"github.com/roadscan/roadscan-cli/internal/config"
	"github.com/roadscan/roadscan-cli/internal/detect"
	"github.com/roadscan/roadscan-cli/internal/pipeline"
	"github.com/roadscan/roadscan-cli/internal/report"
	"github.com/roadscan/roadscan-cli/pkg/geocode"
	"github.com/roadscan/roadscan-cli/pkg/streetview"
)

// initPipeline constructs the scan pipeline and its dependencies. The
// detection model is loaded here, once, and the handle lives for the rest of
// the process; the returned cleanup releases it.
func initPipeline(cfg *config.Config) (*pipeline.Pipeline, func(), error) {
	gc := geocode.NewClient(cfg.Google.APIKey,
		geocode.WithRateLimit(cfg.Google.RPS),
	)

	sv := streetview.NewClient(cfg.Google.APIKey,
		streetview.WithRateLimit(cfg.Google.RPS),
		streetview.WithParams(streetview.Params{
			Size:    cfg.StreetView.Size,
			FOV:     cfg.StreetView.FOV,
			Heading: cfg.StreetView.Heading,
			Pitch:   cfg.StreetView.Pitch,
		}),
	)

	det, err := detect.NewYOLODetector(detect.Config{
		ModelPath:     cfg.Detector.ModelPath,
		NamesPath:     cfg.Detector.NamesPath,
		InputSize:     cfg.Detector.InputSize,
		MaxDetections: cfg.Detector.MaxDetections,
	})
	if err != nil {
		return nil, nil, err
	}

	rep := report.NewGenerator(cfg.Reports.Dir)

	p := pipeline.New(gc, sv, det, rep)
	cleanup := func() { _ = det.Close() }
	return p, cleanup, nil
}
