package services

import (
	"bytes"
	"fmt"

	"github.com/phpdave11/gofpdf"

	"tourplanner/internal/itinerary"
	"tourplanner/pkg/utils"
)

// RenderTourPDF lays a final tour out on A4 pages: summary, flights, then one table per
// day.
func RenderTourPDF(tourID string, createdAt int64, tour itinerary.FinalTour) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Tour "+tourID, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr(fmt.Sprintf("%s to %s", tour.Departure, tour.Destination)))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Tour ID: %s", tourID))
	pdf.Ln(6)
	if created := utils.FormatDisplayVN(utils.FromUnixSecondsVN(createdAt)); created != "" {
		pdf.Cell(0, 7, "Created: "+created)
		pdf.Ln(6)
	}
	pdf.Cell(0, 7, fmt.Sprintf("Days: %d   Travellers: %d   Budget: %.2f", tour.TotalDays, tour.PartySize, tour.Budget))
	pdf.Ln(10)

	if tour.DepartureFlight != nil || tour.ReturnFlight != nil {
		pdf.SetFont("Arial", "B", 13)
		pdf.Cell(0, 8, "Flights")
		pdf.Ln(9)
		pdf.SetFont("Arial", "", 10)
		for _, f := range []struct {
			label  string
			flight *itinerary.Flight
		}{{"Departure", tour.DepartureFlight}, {"Return", tour.ReturnFlight}} {
			if f.flight == nil {
				continue
			}
			line := fmt.Sprintf("%s: %s %s  %s -> %s  %s  %s  %.2f",
				f.label, f.flight.Airline, f.flight.FlightCode,
				f.flight.DepIATA, f.flight.ArrIATA,
				f.flight.DepTime.Format("2006-01-02 15:04"), f.flight.Stops, f.flight.Price)
			pdf.Cell(0, 6, tr(line))
			pdf.Ln(6)
		}
		pdf.Ln(4)
	}

	widths := []float64{28, 22, 100, 30}
	for _, day := range tour.Schedules {
		pdf.SetFont("Arial", "B", 13)
		heading := fmt.Sprintf("Day %d - %s", day.Day, day.DateLabel)
		if day.Source == itinerary.SourceFallback {
			heading += " (placeholder)"
		}
		pdf.Cell(0, 8, tr(heading))
		pdf.Ln(9)

		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		for i, h := range []string{"Time", "Type", "Activity", "Cost"} {
			pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 10)
		for _, it := range day.Items {
			pdf.CellFormat(widths[0], 6, it.StartTime+"-"+it.EndTime, "1", 0, "C", false, 0, "")
			pdf.CellFormat(widths[1], 6, string(it.Type), "1", 0, "C", false, 0, "")
			pdf.CellFormat(widths[2], 6, tr(truncate(it.Title, 60)), "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[3], 6, fmt.Sprintf("%.2f", it.Cost), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(widths[0]+widths[1]+widths[2], 7, "Day total", "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, fmt.Sprintf("%.2f", day.TotalCost), "1", 0, "R", false, 0, "")
		pdf.Ln(12)
	}

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, fmt.Sprintf("Total cost: %.2f", tour.TotalCost))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render tour pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "..."
}
