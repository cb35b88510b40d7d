// Package reporting renders a one-page PDF session summary, per
// §4.10: zone violations, the list of Remote ID-bearing devices seen
// with their last-known threat level, and aggregate frame counters. It
// reads only from already-accumulated in-memory state and never
// touches the detection hot path.
package reporting

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/skywatch/dronerid/internal/core/domain"
)

// SessionReport renders the §4.10 PDF summary.
type SessionReport struct {
	pdf *gofpdf.Fpdf
}

// NewSessionReport builds a SessionReport from the emitter's fused
// detection table and a Stats snapshot. sessionID identifies the
// orchestrator run that produced them.
func NewSessionReport(sessionID string, detections []domain.Detection, stats domain.Stats) *SessionReport {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	r := &SessionReport{pdf: pdf}
	r.addHeader(sessionID)
	r.addFrameCounters(stats)
	r.addZoneViolations(detections)
	r.addDeviceTable(detections)
	r.addFooter()
	return r
}

// Output writes the rendered PDF to w.
func (r *SessionReport) Output(w io.Writer) error {
	return r.pdf.Output(w)
}

func (r *SessionReport) addHeader(sessionID string) {
	pdf := r.pdf
	pdf.SetFont("Arial", "B", 20)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 12, "Drone Remote ID Session Report", "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 6, fmt.Sprintf("Session: %s", sessionID), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04:05")), "", 1, "L", false, 0, "")
	pdf.Ln(6)
}

func (r *SessionReport) addFrameCounters(stats domain.Stats) {
	pdf := r.pdf
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 9, "Aggregate Frame Counters", "", 1, "L", false, 0, "")
	pdf.Ln(1)

	rows := []struct {
		label string
		value uint64
	}{
		{"Sample blocks captured", stats.SampleBlocksCaptured},
		{"Beacon frames", stats.FramesBeacon},
		{"Action frames", stats.FramesAction},
		{"Probe response frames", stats.FramesProbeResp},
		{"Data frames", stats.FramesData},
		{"Control frames", stats.FramesControl},
		{"Other management frames", stats.FramesOtherMgmt},
		{"Remote ID records decoded", stats.RecordsDecoded},
		{"Records dropped", stats.RecordsDropped},
		{"Detections emitted", stats.DetectionsEmitted},
		{"Pub/sub publish errors", stats.PubSubPublishErrors},
	}

	pdf.SetFont("Arial", "", 10)
	for _, row := range rows {
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(90, 6, row.label+":", "", 0, "L", false, 0, "")
		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(0, 6, fmt.Sprintf("%d", row.value), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)
}

func (r *SessionReport) addZoneViolations(detections []domain.Detection) {
	pdf := r.pdf
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 9, "Zone Violations", "", 1, "L", false, 0, "")
	pdf.Ln(1)

	var violations []domain.Detection
	for _, d := range detections {
		for _, reason := range d.Threat.Reasons {
			if containsZoneReason(reason) {
				violations = append(violations, d)
				break
			}
		}
	}

	if len(violations) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(0, 7, "No zone violations recorded this session", "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}

	pdf.SetFont("Arial", "", 9)
	for _, d := range violations {
		pdf.SetTextColor(220, 53, 69)
		pdf.CellFormat(0, 6, fmt.Sprintf("%s - %s", deviceLabel(d), d.Threat.Level.String()), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)
}

func (r *SessionReport) addDeviceTable(detections []domain.Detection) {
	pdf := r.pdf
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 9, "Remote ID-Bearing Devices", "", 1, "L", false, 0, "")
	pdf.Ln(1)

	sorted := make([]domain.Detection, len(detections))
	copy(sorted, detections)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LastSeen.After(sorted[j].LastSeen) })

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 9)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(50, 8, "Device", "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 8, "Vendor", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 8, "Threat", "1", 0, "C", true, 0, "")
	pdf.CellFormat(20, 8, "Seen", "1", 0, "C", true, 0, "")
	pdf.CellFormat(45, 8, "Last Seen", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 8)
	for _, d := range sorted {
		r, g, b := threatColor(d.Threat.Level)
		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(50, 7, deviceLabel(d), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, d.Record.Vendor, "1", 0, "L", false, 0, "")
		pdf.SetTextColor(r, g, b)
		pdf.CellFormat(25, 7, d.Threat.Level.String(), "1", 0, "C", false, 0, "")
		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", d.SeenCount), "1", 0, "C", false, 0, "")
		pdf.CellFormat(45, 7, d.LastSeen.Format("2006-01-02 15:04:05"), "1", 1, "L", false, 0, "")
	}
}

func (r *SessionReport) addFooter() {
	pdf := r.pdf
	pdf.SetY(-15)
	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(10, pdf.GetY(), 200, pdf.GetY())
	pdf.Ln(3)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 5, "dronerid session report", "", 1, "C", false, 0, "")
}

func deviceLabel(d domain.Detection) string {
	if d.Record.BasicID != nil && d.Record.BasicID.UASID != "" {
		return d.Record.BasicID.UASID
	}
	if d.Record.SourceAddress != "" {
		return d.Record.SourceAddress
	}
	return "unknown"
}

func threatColor(level domain.ThreatLevel) (r, g, b int) {
	switch level {
	case domain.ThreatHigh:
		return 220, 53, 69
	case domain.ThreatMedium:
		return 255, 149, 0
	default:
		return 52, 199, 89
	}
}

func containsZoneReason(reason string) bool {
	const marker = "inside restricted zone"
	if len(reason) < len(marker) {
		return false
	}
	return reason[:len(marker)] == marker
}
