package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/trajsim/internal/dynamo"
)

var csvHeader = []string{"time", "x", "y", "vx", "vy"}

// WriteCSV writes one row per state. Values use the shortest exact
// representation so reading them back reproduces every bit, NaN included.
func WriteCSV(w io.Writer, states []dynamo.Projectile, times []float64) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for i, p := range states {
		t := 0.0
		if i < len(times) {
			t = times[i]
		}
		row := []string{formatFloat(t)}
		for _, v := range p.Row() {
			row = append(row, formatFloat(v))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func ReadCSV(r io.Reader) ([]dynamo.Projectile, []float64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return []dynamo.Projectile{}, []float64{}, nil
	}

	states := make([]dynamo.Projectile, 0, len(records)-1)
	times := make([]float64, 0, len(records)-1)

	for i, record := range records[1:] {
		if len(record) == 0 {
			continue
		}
		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("row %d column %d: %w", i+1, j, err)
			}
			vals[j] = v
		}
		times = append(times, vals[0])
		states = append(states, dynamo.FromRow(vals[1:]))
	}

	return states, times, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
