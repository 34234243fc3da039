// Package geodata holds the georeferenced cluster dataset shared by every
// pipeline stage: GeoJSON and shapefile ingestion, prioritized field
// resolution, and delimited summary output.
package geodata

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/twpayne/go-geom"
)

// Feature is one settlement cluster: an opaque geometry plus named
// properties. The geometry is carried through the pipeline untouched.
type Feature struct {
	ID         string
	Geometry   geom.T
	Properties map[string]any
}

// Dataset is an ordered collection of cluster features. Row order is
// significant: top-N selections break ties by original order, so repeated
// runs on identical input produce identical selections.
type Dataset struct {
	Features []*Feature
}

// Len returns the number of features.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Features)
}

// Copy returns a deep copy of the dataset. Property maps are cloned so a
// scenario can mutate its copy without touching the baseline. Geometries are
// shared; no stage mutates them.
func (d *Dataset) Copy() *Dataset {
	if d == nil {
		return nil
	}
	out := &Dataset{Features: make([]*Feature, len(d.Features))}
	for i, f := range d.Features {
		props := make(map[string]any, len(f.Properties))
		for k, v := range f.Properties {
			props[k] = v
		}
		out.Features[i] = &Feature{ID: f.ID, Geometry: f.Geometry, Properties: props}
	}
	return out
}

// HasColumn reports whether any feature carries the given property key.
func (d *Dataset) HasColumn(key string) bool {
	for _, f := range d.Features {
		if _, ok := f.Properties[key]; ok {
			return true
		}
	}
	return false
}

// Column coerces the named property to a numeric column, substituting def
// for missing or unparsable values. Never fails: numeric degeneracy is
// resolved, not reported.
func (d *Dataset) Column(key string, def float64) []float64 {
	out := make([]float64, len(d.Features))
	for i, f := range d.Features {
		out[i] = f.Float(key, def)
	}
	return out
}

// ResolveColumn returns the numeric column for the first candidate key
// present anywhere in the dataset, or a column of def when no candidate is
// present. This is the prioritized-list lookup used by the scoring and
// demand stages to tolerate heterogeneous upstream schemas.
func (d *Dataset) ResolveColumn(candidates []string, def float64) []float64 {
	for _, key := range candidates {
		if d.HasColumn(key) {
			return d.Column(key, def)
		}
	}
	out := make([]float64, len(d.Features))
	for i := range out {
		out[i] = def
	}
	return out
}

// Float returns the property coerced to float64, or def when the value is
// missing, unparsable, or non-finite.
func (f *Feature) Float(key string, def float64) float64 {
	v, ok := f.Properties[key]
	if !ok || v == nil {
		return def
	}
	num, ok := toFloat(v)
	if !ok || math.IsNaN(num) || math.IsInf(num, 0) {
		return def
	}
	return num
}

// Str returns the property as a string, or "" when missing or not a string.
func (f *Feature) Str(key string) string {
	if s, ok := f.Properties[key].(string); ok {
		return s
	}
	return ""
}

// Set stores a property value.
func (f *Feature) Set(key string, v any) {
	if f.Properties == nil {
		f.Properties = make(map[string]any)
	}
	f.Properties[key] = v
}

// PropString renders a property for tabular output. Floats print without a
// trailing ".0" so numeric cluster IDs round-trip cleanly through JSON.
func (f *Feature) PropString(key string) string {
	v, ok := f.Properties[key]
	if !ok || v == nil {
		return ""
	}
	switch n := v.(type) {
	case string:
		return n
	case float64:
		return strconv.FormatFloat(n, 'g', -1, 64)
	default:
		return fmt.Sprint(n)
	}
}

// toFloat coerces the JSON-ish value types seen in feature properties.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}
