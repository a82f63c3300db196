package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
)

// speciesCSVRow is the flattened, gocsv-tagged projection of a
// SpeciesSnapshot written to species.csv, one row per species per turn.
type speciesCSVRow struct {
	Turn       int     `csv:"turn"`
	LineageCode string `csv:"lineage_code"`
	Population float64 `csv:"population"`
	Deaths     float64 `csv:"deaths"`
	Births     float64 `csv:"births"`
	DeathRate  float64 `csv:"death_rate"`
}

// CSVWriter appends per-turn species snapshots to a running species.csv
// file under dir, writing the header once, matching the teacher's
// telemetry output pattern.
type CSVWriter struct {
	dir           string
	file          *os.File
	headerWritten bool
}

// NewCSVWriter creates species.csv under dir, truncating any existing
// file. A
// nil *CSVWriter is a valid no-op receiver, matching the teacher's
// nil-disables-output convention.
func NewCSVWriter(dir string) (*CSVWriter, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating report directory: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, "species.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating species.csv: %w", err)
	}
	return &CSVWriter{dir: dir, file: f}, nil
}

// WriteTurn appends one turn's species snapshots as CSV rows.
func (w *CSVWriter) WriteTurn(r TurnReport) error {
	if w == nil {
		return nil
	}
	rows := make([]speciesCSVRow, 0, len(r.Species))
	for _, s := range r.Species {
		rows = append(rows, speciesCSVRow{
			Turn: r.Turn, LineageCode: s.LineageCode, Population: s.Population,
			Deaths: s.Deaths, Births: s.Births, DeathRate: s.DeathRate,
		})
	}
	if !w.headerWritten {
		if err := gocsv.Marshal(rows, w.file); err != nil {
			return fmt.Errorf("writing species.csv: %w", err)
		}
		w.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(rows, w.file); err != nil {
		return fmt.Errorf("writing species.csv: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (w *CSVWriter) Close() error {
	if w == nil || w.file == nil {
		return nil
	}
	return w.file.Close()
}
