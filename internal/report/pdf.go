// Package report renders scan results into timestamped PDF files.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/roadscan/roadscan-cli/internal/model"
)

// NoDefectsLine is the literal line written when the detection list is empty.
const NoDefectsLine = "No defects detected."

// Generator writes PDF defect reports into a dedicated directory.
type Generator struct {
	dir string
	now func() time.Time // injectable clock for tests
}

// NewGenerator creates a Generator writing into dir.
func NewGenerator(dir string) *Generator {
	return &Generator{dir: dir, now: time.Now}
}

// Generate renders the report and writes it as
// defect_report_<YYYYMMDD>_<HHMMSS>.pdf, returning the file path. An existing
// file with the same timestamp gets a numeric suffix; reports are never
// overwritten.
func (g *Generator) Generate(address string, coords *model.Coordinates, detections []model.Detection) (string, error) {
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return "", eris.Wrap(err, "report: create reports dir")
	}

	ts := g.now()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "Road Defect Detection Report", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 12)
	pdf.Ln(5)
	pdf.CellFormat(0, 10, fmt.Sprintf("Timestamp: %s", ts.Format("2006-01-02 15:04:05")), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 10, fmt.Sprintf("Address: %s", address), "", 1, "", false, 0, "")
	if coords != nil {
		pdf.CellFormat(0, 10, fmt.Sprintf("Location: %s", coords.MapsURL()), "", 1, "", false, 0, "")
	}

	pdf.Ln(5)
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, "Detected Defects:", "", 1, "", false, 0, "")

	pdf.SetFont("Arial", "", 12)
	for _, line := range detectionLines(detections) {
		pdf.CellFormat(0, 10, line, "", 1, "", false, 0, "")
	}

	f, path, err := g.createReportFile(ts)
	if err != nil {
		return "", err
	}
	if err := pdf.OutputAndClose(f); err != nil {
		return "", eris.Wrap(err, "report: write pdf")
	}

	zap.L().Info("report written",
		zap.String("path", path),
		zap.Int("detections", len(detections)),
	)
	return path, nil
}

// detectionLines renders the report body: one bulleted line per detection in
// model order, or the no-defects line when the list is empty.
func detectionLines(detections []model.Detection) []string {
	if len(detections) == 0 {
		return []string{NoDefectsLine}
	}
	lines := make([]string, 0, len(detections))
	for _, d := range detections {
		lines = append(lines, "- "+d.Line())
	}
	return lines
}

// createReportFile opens the timestamped filename exclusively, appending
// _2, _3, ... when a report from the same wall-clock second already exists.
// O_EXCL makes the claim atomic, so concurrent writers in the same second
// each get their own file and an existing report is never truncated.
func (g *Generator) createReportFile(ts time.Time) (*os.File, string, error) {
	base := fmt.Sprintf("defect_report_%s", ts.Format("20060102_150405"))
	path := filepath.Join(g.dir, base+".pdf")
	for i := 2; ; i++ {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, path, nil
		}
		if !os.IsExist(err) {
			return nil, "", eris.Wrap(err, "report: create report file")
		}
		path = filepath.Join(g.dir, fmt.Sprintf("%s_%d.pdf", base, i))
	}
}
