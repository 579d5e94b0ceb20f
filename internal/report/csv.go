package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/liftlab-data/barpath.report/internal/security"
	"github.com/liftlab-data/barpath.report/internal/session"
	"github.com/liftlab-data/barpath.report/internal/units"
)

// csvHeader is the column layout of a session CSV export. Distance columns
// carry the target unit in their name at write time.
var csvHeader = []string{
	"session_id",
	"exercise",
	"tempo",
	"rep",
	"total_distance",
	"vertical_range",
	"duration_s",
	"points",
	"completeness",
	"efficiency",
	"density",
	"smoothness",
	"score",
}

// WriteCSV writes one row per rep plus a header. Distances are converted
// from stored meters into targetUnits for display. An empty rep list
// produces a header-only file, which is the valid "nothing to report"
// state rather than an error.
func WriteCSV(w io.Writer, sum session.Summary, targetUnits string) error {
	if !units.IsValid(targetUnits) {
		targetUnits = units.Meters
	}

	cw := csv.NewWriter(w)

	header := make([]string, len(csvHeader))
	copy(header, csvHeader)
	header[4] = "total_distance_" + targetUnits
	header[5] = "vertical_range_" + targetUnits
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, rec := range sum.Reps {
		row := []string{
			sum.Session.ID,
			rec.Exercise,
			rec.Tempo,
			fmt.Sprintf("%d", rec.RepNumber),
			fmt.Sprintf("%.3f", units.ConvertDistance(rec.TotalDistanceM, targetUnits)),
			fmt.Sprintf("%.3f", units.ConvertDistance(rec.VerticalRangeM, targetUnits)),
			fmt.Sprintf("%.2f", float64(rec.DurationMs)/1000.0),
			fmt.Sprintf("%d", rec.PointCount),
			fmt.Sprintf("%d", rec.Completeness),
			fmt.Sprintf("%d", rec.Efficiency),
			fmt.Sprintf("%d", rec.Density),
			fmt.Sprintf("%d", rec.Smoothness),
			fmt.Sprintf("%d", rec.Score),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row for rep %d: %w", rec.RepNumber, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// Filename builds the attachment filename for a session download. The
// exercise name is user-supplied, so it is sanitized before embedding.
func Filename(sum session.Summary, ext string) string {
	started := sum.Session.StartedAt.Format("20060102-150405")
	exercise := sum.Session.Exercise
	if exercise == "" {
		exercise = "session"
	}
	return fmt.Sprintf("barpath-%s-%s.%s", security.SanitizeFilename(exercise), started, ext)
}
