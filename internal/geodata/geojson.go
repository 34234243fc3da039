package geodata

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

// ReadFile loads a cluster dataset, dispatching on file extension. GeoJSON
// and shapefile inputs are supported, matching what upstream tooling emits.
func ReadFile(path string) (*Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".shp":
		return ReadShapefile(path)
	default:
		return ReadGeoJSON(path)
	}
}

// ReadGeoJSON loads a GeoJSON feature collection. Every feature must carry
// a geometry; a dataset without geometries is rejected before any
// computation happens.
func ReadGeoJSON(path string) (*Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geodata: read %s", path)
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(raw, &fc); err != nil {
		return nil, eris.Wrapf(err, "geodata: parse GeoJSON %s", path)
	}

	d := &Dataset{Features: make([]*Feature, 0, len(fc.Features))}
	for i, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			return nil, eris.Errorf("geodata: feature %d in %s has no geometry", i, path)
		}
		props := f.Properties
		if props == nil {
			props = make(map[string]any)
		}
		d.Features = append(d.Features, &Feature{
			ID:         f.ID,
			Geometry:   f.Geometry,
			Properties: props,
		})
	}

	zap.L().Debug("geodata: loaded GeoJSON",
		zap.String("path", path),
		zap.Int("features", len(d.Features)),
	)
	return d, nil
}

// WriteGeoJSON persists the dataset as a GeoJSON feature collection. The
// file is replaced by a full rewrite, never patched in place.
func WriteGeoJSON(path string, d *Dataset) error {
	fc := geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, d.Len())}
	for _, f := range d.Features {
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         f.ID,
			Geometry:   f.Geometry,
			Properties: f.Properties,
		})
	}

	data, err := json.Marshal(&fc)
	if err != nil {
		return eris.Wrapf(err, "geodata: encode GeoJSON %s", path)
	}
	return writeAtomic(path, data)
}
