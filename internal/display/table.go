package display

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/RMahshie/vibrascope/internal/spectrum"
)

// Format selects the Table output encoding
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat validates a user supplied output format
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want csv or json)", s)
	}
}

// Table streams frequency/magnitude pairs to a writer. Output that has
// been written cannot be taken back, so Clear is a no-op.
type Table struct {
	W      io.Writer
	Format Format
}

// Show writes the plot; a missing plot writes nothing
func (t Table) Show(plot spectrum.Plot) error {
	points, ok := plot.Points()
	if !ok {
		return nil
	}

	switch t.Format {
	case FormatJSON:
		enc := json.NewEncoder(t.W)
		enc.SetIndent("", "  ")
		return enc.Encode(points)
	default:
		cw := csv.NewWriter(t.W)
		if err := cw.Write([]string{"frequency", "magnitude"}); err != nil {
			return err
		}
		for _, p := range points {
			record := []string{
				strconv.FormatFloat(p.Frequency, 'g', -1, 64),
				strconv.FormatFloat(p.Magnitude, 'g', -1, 64),
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	}
}

// Clear implements Display
func (t Table) Clear() {}
