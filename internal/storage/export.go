package storage

import (
	"encoding/json"
	"io"
	"math"
	"strconv"

	"github.com/san-kum/trajsim/internal/dynamo"
)

// Num marshals non-finite floats as null, which encoding/json rejects
// otherwise.
type Num float64

func (n Num) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}

type ExportData struct {
	ID          string             `json:"id"`
	Spec        RunSpec            `json:"spec"`
	Steps       int                `json:"steps"`
	Times       []float64          `json:"times"`
	States      [][]Num            `json:"states"`
	Metrics     map[string]float64 `json:"metrics"`
	Fingerprint string             `json:"fingerprint"`
}

func NewExportData(meta *RunMetadata, states []dynamo.Projectile, times []float64) ExportData {
	data := ExportData{
		ID:          meta.ID,
		Spec:        meta.Spec,
		Steps:       len(times),
		Times:       times,
		States:      make([][]Num, len(states)),
		Metrics:     meta.Metrics,
		Fingerprint: meta.Fingerprint,
	}
	for i, p := range states {
		row := p.Row()
		data.States[i] = make([]Num, len(row))
		for j, v := range row {
			data.States[i][j] = Num(v)
		}
	}
	return data
}

func ExportJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
