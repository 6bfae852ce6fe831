// Package model defines the request-scoped values that flow through the scan
// pipeline: coordinates, imagery, detections, and the scan result itself.
package model

import "fmt"

// Coordinates is a geocoded latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// MapsURL returns a Google Maps link for the coordinates.
func (c Coordinates) MapsURL() string {
	return fmt.Sprintf("https://www.google.com/maps?q=%g,%g", c.Latitude, c.Longitude)
}

// Image is a decoded street-level image: the raw encoded bytes plus the
// dimensions read from the image header.
type Image struct {
	Data   []byte
	Width  int
	Height int
	Format string // "jpeg" or "png"
}

// Box is a detection bounding box in pixel coordinates (top-left, bottom-right).
type Box struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Detection is one model-flagged road defect.
type Detection struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"` // percentage, 0-100
	Box        Box     `json:"box"`
}

// Line formats the detection the way it appears in reports and the UI:
// "<name> (<confidence>%)" with two decimal places.
func (d Detection) Line() string {
	return fmt.Sprintf("%s (%.2f%%)", d.Name, d.Confidence)
}

// DetectionResult holds the ordered detections for one image plus the
// annotated JPEG with boxes and labels drawn.
type DetectionResult struct {
	Detections []Detection
	Annotated  []byte
	Truncated  bool // true when the max-detections cap dropped rows
}

// ScanState tracks where a scan request is in the linear workflow.
type ScanState string

const (
	StateIdle             ScanState = "idle"
	StateAddressSubmitted ScanState = "address_submitted"
	StateGeocoded         ScanState = "geocoded"
	StateImageFetched     ScanState = "image_fetched"
	StateDetected         ScanState = "detected"
	StateReportReady      ScanState = "report_ready"
	StateAddressNotFound  ScanState = "address_not_found"
)

// StageTiming records how long one pipeline stage took.
type StageTiming struct {
	Name       string `json:"name"`
	DurationMS int64  `json:"duration_ms"`
}

// ScanResult is the outcome of one scan request.
type ScanResult struct {
	Address     string        `json:"address"`
	Coordinates *Coordinates  `json:"coordinates,omitempty"`
	Detections  []Detection   `json:"detections"`
	Image       []byte        `json:"-"`
	Annotated   []byte        `json:"-"`
	ReportPath  string        `json:"report_path,omitempty"`
	State       ScanState     `json:"state"`
	Stages      []StageTiming `json:"stages,omitempty"`
}
