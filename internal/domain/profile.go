// Package domain contains the core business entities and interfaces.
package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrDatasetUnavailable indicates that no reference population has been loaded.
	ErrDatasetUnavailable = errors.New("diet dataset not loaded")
	// ErrInvalidFieldValue indicates that a supplied value is not a finite number.
	ErrInvalidFieldValue = errors.New("invalid field value")
)

// Field identifies one of the six blood-panel measurements.
type Field int

// Fields in their fixed feature order.
const (
	FastingBloodSugar Field = iota
	PostPrandialBloodSugar
	Thyroxine
	Cholesterol
	LDLCholesterol
	HDLCholesterol
)

// NumFields is the dimension of a profile's feature vector.
const NumFields = 6

// Fields lists every field in feature order.
var Fields = [NumFields]Field{
	FastingBloodSugar,
	PostPrandialBloodSugar,
	Thyroxine,
	Cholesterol,
	LDLCholesterol,
	HDLCholesterol,
}

var fieldInfo = [NumFields]struct {
	label  string
	column string
	def    float64
}{
	{"Fasting Blood Sugar", "Fasting_Blood_Sugar", 90},
	{"Post Prandial Blood Sugar", "Post_Prandial_Blood_Sugar", 120},
	{"Thyroxine", "Thyroxine", 1.5},
	{"Cholesterol", "Cholesterol", 180},
	{"LDL Cholesterol", "LDL_Cholesterol", 90},
	{"HDL Cholesterol", "HDL_Cholesterol", 50},
}

// Label is the human-readable name used by lab reports and API callers.
func (f Field) Label() string { return fieldInfo[f].label }

// Column is the key used in the persisted reference table.
func (f Field) Column() string { return fieldInfo[f].column }

// Default is the population-average value substituted when a field is missing.
func (f Field) Default() float64 { return fieldInfo[f].def }

func (f Field) String() string { return f.Label() }

// LookupField resolves a label or column key to a Field.
func LookupField(name string) (Field, bool) {
	for _, f := range Fields {
		if name == f.Label() || name == f.Column() {
			return f, true
		}
	}
	return 0, false
}

// HealthProfile is a fully populated six-field blood-panel snapshot.
type HealthProfile struct {
	FastingBloodSugar      float64 `json:"fastingBloodSugar"`
	PostPrandialBloodSugar float64 `json:"postPrandialBloodSugar"`
	Thyroxine              float64 `json:"thyroxine"`
	Cholesterol            float64 `json:"cholesterol"`
	LDLCholesterol         float64 `json:"ldlCholesterol"`
	HDLCholesterol         float64 `json:"hdlCholesterol"`
}

// DefaultProfile returns the profile made entirely of documented defaults.
func DefaultProfile() HealthProfile {
	var v [NumFields]float64
	for _, f := range Fields {
		v[f] = f.Default()
	}
	return ProfileFromVector(v)
}

// Vector returns the profile's values in feature order.
func (p HealthProfile) Vector() [NumFields]float64 {
	return [NumFields]float64{
		p.FastingBloodSugar,
		p.PostPrandialBloodSugar,
		p.Thyroxine,
		p.Cholesterol,
		p.LDLCholesterol,
		p.HDLCholesterol,
	}
}

// Value returns a single field.
func (p HealthProfile) Value(f Field) float64 {
	return p.Vector()[f]
}

// ProfileFromVector builds a profile from values in feature order.
func ProfileFromVector(v [NumFields]float64) HealthProfile {
	return HealthProfile{
		FastingBloodSugar:      v[FastingBloodSugar],
		PostPrandialBloodSugar: v[PostPrandialBloodSugar],
		Thyroxine:              v[Thyroxine],
		Cholesterol:            v[Cholesterol],
		LDLCholesterol:         v[LDLCholesterol],
		HDLCholesterol:         v[HDLCholesterol],
	}
}

// Labeled returns the profile keyed by field label.
func (p HealthProfile) Labeled() map[string]float64 {
	out := make(map[string]float64, NumFields)
	for _, f := range Fields {
		out[f.Label()] = p.Value(f)
	}
	return out
}

// ParseFieldValue parses a raw lab value. Anything that is not a finite
// number yields ErrInvalidFieldValue.
func ParseFieldValue(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidFieldValue)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFieldValue, raw)
	}
	return v, nil
}

// ProfileFromFields fills a profile from a field mapping, substituting the
// default for any field that is missing or unparsable. It never fails; the
// second result lists the fields that were defaulted, in feature order.
func ProfileFromFields(fields map[string]string) (HealthProfile, []Field) {
	var v [NumFields]float64
	var found [NumFields]bool
	for name, raw := range fields {
		f, ok := LookupField(name)
		if !ok {
			continue
		}
		x, err := ParseFieldValue(raw)
		if err != nil {
			continue
		}
		// a label and its column key may both be present; the label wins
		if found[f] && name != f.Label() {
			continue
		}
		v[f] = x
		found[f] = true
	}

	var defaulted []Field
	for _, f := range Fields {
		if !found[f] {
			v[f] = f.Default()
			defaulted = append(defaulted, f)
		}
	}
	return ProfileFromVector(v), defaulted
}
