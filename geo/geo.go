// Package geo passes vector geometry through to the map renderer.
package geo

import (
	"encoding/json"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
)

// DefaultCenter is the map center used when there is nothing to bound.
var DefaultCenter = orb.Point{-80.51, 43.46}

var errInvalidJSON = errors.New("invalid json")

// Anchor is the popup position of a feature.
type Anchor struct {
	Feature      int
	Point        orb.Point
	GeometryType string
}

// Vector is a parsed vector geometry file.
type Vector struct {
	// Raw is the input, unchanged.
	Raw json.RawMessage
	// Collection is nil if the input is well-formed JSON but not GeoJSON.
	Collection *geojson.FeatureCollection
	Anchors    []Anchor
	// Bound is valid only if HasBound is true.
	Bound    orb.Bound
	HasBound bool
}

// Parse checks that data is well-formed JSON and decodes it as GeoJSON where
// possible. A Feature or a bare geometry is wrapped into a collection.
func Parse(data []byte) (*Vector, error) {
	if !json.Valid(data) {
		return nil, errInvalidJSON
	}
	v := &Vector{Raw: json.RawMessage(data)}

	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		// Valid JSON, not an object.
		return v, nil
	}

	switch probe.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, errors.Wrap(err, "decoding feature collection")
		}
		v.Collection = fc
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, errors.Wrap(err, "decoding feature")
		}
		v.Collection = geojson.NewFeatureCollection().Append(f)
	case "Point", "MultiPoint", "LineString", "MultiLineString",
		"Polygon", "MultiPolygon", "GeometryCollection":
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, errors.Wrap(err, "decoding geometry")
		}
		v.Collection = geojson.NewFeatureCollection().Append(geojson.NewFeature(g.Geometry()))
	default:
		return v, nil
	}

	for i, f := range v.Collection.Features {
		if f.Geometry == nil {
			continue
		}
		if p, ok := AnchorOf(f.Geometry); ok {
			v.Anchors = append(v.Anchors, Anchor{
				Feature:      i,
				Point:        p,
				GeometryType: f.Geometry.GeoJSONType(),
			})
		}
		b := f.Geometry.Bound()
		if b.IsEmpty() {
			continue
		}
		if v.HasBound {
			v.Bound = v.Bound.Union(b)
		} else {
			v.Bound, v.HasBound = b, true
		}
	}
	return v, nil
}

// Len returns the number of features.
func (v *Vector) Len() int {
	if v.Collection == nil {
		return 0
	}
	return len(v.Collection.Features)
}

// Center returns the center of the bound, or DefaultCenter.
func (v *Vector) Center() orb.Point {
	if !v.HasBound {
		return DefaultCenter
	}
	return v.Bound.Center()
}

// AnchorOf returns the popup position of g.
// Lines are anchored at the mean of their coordinates and polygons at the mean
// of their first ring. Other geometry types have no anchor.
func AnchorOf(g orb.Geometry) (orb.Point, bool) {
	switch g := g.(type) {
	case orb.Point:
		return g, true
	case orb.LineString:
		return mean(g)
	case orb.Polygon:
		if len(g) == 0 {
			return orb.Point{}, false
		}
		return mean(g[0])
	case orb.MultiPolygon:
		if len(g) == 0 || len(g[0]) == 0 {
			return orb.Point{}, false
		}
		return mean(g[0][0])
	default:
		return orb.Point{}, false
	}
}

func mean(ps []orb.Point) (orb.Point, bool) {
	if len(ps) == 0 {
		return orb.Point{}, false
	}
	var x, y float64
	for _, p := range ps {
		x += p[0]
		y += p[1]
	}
	n := float64(len(ps))
	return orb.Point{x / n, y / n}, true
}
