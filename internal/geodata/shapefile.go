package geodata

import (
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// ReadShapefile loads a shapefile into a cluster dataset. Attribute values
// that parse as numbers are stored numerically so downstream field
// resolution treats both input formats alike.
func ReadShapefile(path string) (*Dataset, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geodata: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.TrimRight(f.String(), "\x00")
	}

	d := &Dataset{}
	row := 0
	for reader.Next() {
		_, shape := reader.Shape()
		g := shapeToGeom(shape)
		if g == nil {
			return nil, eris.Errorf("geodata: record %d in %s has no usable geometry", row, path)
		}

		props := make(map[string]any, len(names))
		for i, name := range names {
			raw := strings.TrimSpace(reader.Attribute(i))
			if num, err := strconv.ParseFloat(raw, 64); err == nil {
				props[name] = num
			} else {
				props[name] = raw
			}
		}

		d.Features = append(d.Features, &Feature{Geometry: g, Properties: props})
		row++
	}

	zap.L().Debug("geodata: loaded shapefile",
		zap.String("path", path),
		zap.Int("features", d.Len()),
	)
	return d, nil
}

// shapeToGeom converts a go-shp geometry to go-geom with SRID 4326.
// Unsupported or empty shapes return nil.
func shapeToGeom(shape shp.Shape) geom.T {
	switch s := shape.(type) {
	case *shp.Point:
		return geom.NewPointFlat(geom.XY, []float64{s.X, s.Y}).SetSRID(4326)

	case *shp.PolyLine:
		return polyLineToMultiLineString(s)

	case *shp.Polygon:
		return polygonToMultiPolygon(s)

	default:
		return nil
	}
}

// polyLineToMultiLineString converts a shapefile PolyLine to a geom.MultiLineString.
func polyLineToMultiLineString(pl *shp.PolyLine) geom.T {
	if pl == nil || pl.NumParts == 0 || len(pl.Points) == 0 {
		return nil
	}

	mls := geom.NewMultiLineString(geom.XY).SetSRID(4326)

	for i := int32(0); i < pl.NumParts; i++ {
		start, end := partRange(pl.Parts, i, len(pl.Points))

		ls := geom.NewLineStringFlat(geom.XY, flatCoords(pl.Points[start:end]))
		if err := mls.Push(ls); err != nil {
			zap.L().Debug("geodata: skipping malformed linestring part", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}

	if mls.NumLineStrings() == 0 {
		return nil
	}
	return mls
}

// polygonToMultiPolygon converts a shapefile Polygon to a geom.MultiPolygon.
func polygonToMultiPolygon(p *shp.Polygon) geom.T {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)

	for i := int32(0); i < p.NumParts; i++ {
		start, end := partRange(p.Parts, i, len(p.Points))

		ring := geom.NewLinearRingFlat(geom.XY, flatCoords(p.Points[start:end]))
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			zap.L().Debug("geodata: skipping malformed polygon ring", zap.Int32("part", i), zap.Error(err))
			continue
		}

		if err := mp.Push(poly); err != nil {
			zap.L().Debug("geodata: skipping malformed polygon part", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// partRange returns the [start, end) point range for part i.
func partRange(parts []int32, i int32, total int) (int, int) {
	start := int(parts[i])
	end := total
	if int(i)+1 < len(parts) {
		end = int(parts[i+1])
	}
	return start, end
}

// flatCoords converts shapefile points to flat coordinate pairs for go-geom.
func flatCoords(points []shp.Point) []float64 {
	flat := make([]float64, 0, len(points)*2)
	for _, p := range points {
		flat = append(flat, p.X, p.Y)
	}
	return flat
}
