// Package form holds the launch inputs as free-form text fields.
//
// Each field is parsed as a float64. Text that does not parse is dropped and
// the previous value stays in place; no error reaches the user.
package form

import (
	"errors"
	"strconv"
	"strings"

	"github.com/san-kum/trajsim/internal/dynamo"
)

type Field int

const (
	Wind Field = iota
	Elevation
	Caliber
	BallisticCoefficient
)

var fieldNames = [...]string{"wind", "elevation", "caliber", "ballistic_coefficient"}

func (f Field) String() string {
	if f < 0 || int(f) >= len(fieldNames) {
		return "unknown"
	}
	return fieldNames[f]
}

// Fields lists every input in display order.
func Fields() []Field {
	return []Field{Wind, Elevation, Caliber, BallisticCoefficient}
}

// ParseField maps a field name to its Field.
func ParseField(name string) (Field, bool) {
	for i, n := range fieldNames {
		if strings.EqualFold(n, name) {
			return Field(i), true
		}
	}
	return 0, false
}

const (
	DefaultCaliber              = 0.00762
	DefaultBallisticCoefficient = 0.4
)

// Form is the set of launch inputs. The zero value is not useful; use New.
type Form struct {
	values [4]float64
	text   [4]string
}

func New() *Form {
	f := &Form{}
	f.values[Caliber] = DefaultCaliber
	f.values[BallisticCoefficient] = DefaultBallisticCoefficient
	for _, fld := range Fields() {
		f.text[fld] = strconv.FormatFloat(f.values[fld], 'g', -1, 64)
	}
	return f
}

// Input records text for a field and reports whether it parsed. The raw
// text is kept either way so an editor can show it back.
func (f *Form) Input(field Field, text string) bool {
	if field < 0 || int(field) >= len(f.values) {
		return false
	}
	f.text[field] = text
	// out-of-range literals such as "1e400" parse to ±Inf
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return false
	}
	f.values[field] = v
	return true
}

// Set stores a value directly, bypassing text parsing.
func (f *Form) Set(field Field, v float64) {
	if field < 0 || int(field) >= len(f.values) {
		return
	}
	f.values[field] = v
	f.text[field] = strconv.FormatFloat(v, 'g', -1, 64)
}

func (f *Form) Value(field Field) float64 {
	if field < 0 || int(field) >= len(f.values) {
		return 0
	}
	return f.values[field]
}

func (f *Form) Text(field Field) string {
	if field < 0 || int(field) >= len(f.text) {
		return ""
	}
	return f.text[field]
}

func (f *Form) Elevation() float64 { return f.values[Elevation] }

func (f *Form) Environment() dynamo.Environment {
	return dynamo.Environment{
		Wind:                 f.values[Wind],
		Caliber:              f.values[Caliber],
		BallisticCoefficient: f.values[BallisticCoefficient],
	}
}
