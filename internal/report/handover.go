// Package report renders shift handover documents.
package report

import (
	"bytes"
	"fmt"
	"time"

	"FCCMonitorAPI/internal/models"

	"github.com/jung-kurt/gofpdf"
)

// Handover is the content of a shift handover report.
type Handover struct {
	Unit        string
	GeneratedAt time.Time
	GeneratedBy string
	Latest      *models.HandoverLog
	Active      models.AlarmGroups
}

var priorityTitles = map[models.Priority]string{
	models.PriorityCritical: "Priority 1 - Critical",
	models.PriorityHigh:     "Priority 2 - High",
	models.PriorityMedium:   "Priority 3 - Medium",
	models.PriorityLow:      "Priority 4 - Low",
}

// BuildHandoverPDF renders the latest handover note followed by active alarms
// grouped by priority.
func BuildHandoverPDF(h Handover) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, tr(fmt.Sprintf("%s Shift Handover", h.Unit)))
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", h.GeneratedAt.Format(time.RFC3339)))
	pdf.Ln(5)
	if h.GeneratedBy != "" {
		pdf.Cell(0, 6, tr(fmt.Sprintf("Generated by: %s", h.GeneratedBy)))
		pdf.Ln(5)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 6, "Handover Notes")
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 10)
	if h.Latest == nil {
		pdf.Cell(0, 6, "No handover notes recorded.")
		pdf.Ln(6)
	} else {
		pdf.Cell(0, 6, tr(fmt.Sprintf("Shift: %s    Author: %s    %s",
			h.Latest.Shift, h.Latest.Author, h.Latest.CreatedAt.Format("2006-01-02 15:04"))))
		pdf.Ln(6)
		pdf.MultiCell(0, 5, tr(h.Latest.Notes), "", "L", false)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 6, "Active Alarms")
	pdf.Ln(7)

	for _, p := range models.Priorities {
		alarms := *h.Active.Bucket(p)

		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(0, 6, fmt.Sprintf("%s (%d)", priorityTitles[p], len(alarms)))
		pdf.Ln(6)
		if len(alarms) == 0 {
			continue
		}

		pdf.CellFormat(22, 6, "Tag", "1", 0, "C", false, 0, "")
		pdf.CellFormat(90, 6, "Message", "1", 0, "C", false, 0, "")
		pdf.CellFormat(18, 6, "Risk", "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, "Raised", "1", 0, "C", false, 0, "")
		pdf.CellFormat(20, 6, "Escalated", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 9)
		for _, a := range alarms {
			escalated := ""
			if a.Escalated {
				escalated = "yes"
			}
			pdf.CellFormat(22, 6, a.TagID, "1", 0, "L", false, 0, "")
			pdf.CellFormat(90, 6, tr(truncate(a.Message, 60)), "1", 0, "L", false, 0, "")
			pdf.CellFormat(18, 6, fmt.Sprintf("%d", a.RiskScore), "1", 0, "R", false, 0, "")
			pdf.CellFormat(30, 6, a.Timestamp.Format("01-02 15:04"), "1", 0, "C", false, 0, "")
			pdf.CellFormat(20, 6, escalated, "1", 0, "C", false, 0, "")
			pdf.Ln(-1)
		}
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render handover pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
