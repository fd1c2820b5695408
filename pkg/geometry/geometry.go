// Package geometry wraps the planar geometry used by network elements: WKT
// parsing, lengths, and the nearest-point distance that drives connectivity.
package geometry

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/planar"
)

var (
	// ErrEmptyGeometry is returned for blank WKT strings and empty line strings.
	ErrEmptyGeometry = errors.New("geometry: empty geometry")

	// ErrUnsupportedGeometry is returned for anything other than points and line strings.
	ErrUnsupportedGeometry = errors.New("geometry: unsupported geometry type")
)

const epsilon = 1e-12

// Parse decodes a WKT string into a point or line string.
func Parse(s string) (orb.Geometry, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrEmptyGeometry
	}

	g, err := wkt.Unmarshal(s)
	if err != nil {
		return nil, fmt.Errorf("geometry: parse %q: %w", s, err)
	}

	switch v := g.(type) {
	case orb.Point:
		return v, nil
	case orb.LineString:
		if len(v) == 0 {
			return nil, ErrEmptyGeometry
		}
		return v, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedGeometry, g.GeoJSONType())
	}
}

// WKT encodes a geometry as well-known text.
func WKT(g orb.Geometry) string {
	if g == nil {
		return ""
	}
	return wkt.MarshalString(g)
}

// Length returns the planar length of g. Points have zero length.
func Length(g orb.Geometry) float64 {
	if g == nil {
		return 0
	}
	return planar.Length(g)
}

// Distance returns the minimum planar distance between two geometries.
func Distance(a, b orb.Geometry) float64 {
	pa, pb := NearestPoints(a, b)
	return planar.Distance(pa, pb)
}

// NearestPoints returns the pair of points, one on each geometry, that are
// closest to each other. The first point lies on a, the second on b.
func NearestPoints(a, b orb.Geometry) (orb.Point, orb.Point) {
	sa := segments(a)
	sb := segments(b)

	best := math.Inf(1)
	var pa, pb orb.Point
	for _, s := range sa {
		for _, t := range sb {
			p, q := closestBetween(s, t)
			d := planar.Distance(p, q)
			if d < best {
				best = d
				pa, pb = p, q
			}
		}
	}
	return pa, pb
}

// Connector returns the straight segment joining the nearest points of a and b.
func Connector(a, b orb.Geometry) orb.LineString {
	pa, pb := NearestPoints(a, b)
	return orb.LineString{pa, pb}
}

// segment is a closed segment; a point is the degenerate segment {p, p}.
type segment struct {
	a, b orb.Point
}

func segments(g orb.Geometry) []segment {
	switch v := g.(type) {
	case orb.Point:
		return []segment{{v, v}}
	case orb.LineString:
		if len(v) == 1 {
			return []segment{{v[0], v[0]}}
		}
		out := make([]segment, 0, len(v)-1)
		for i := 0; i < len(v)-1; i++ {
			out = append(out, segment{v[i], v[i+1]})
		}
		return out
	case orb.MultiPoint:
		out := make([]segment, 0, len(v))
		for _, p := range v {
			out = append(out, segment{p, p})
		}
		return out
	default:
		return nil
	}
}

// closestBetween returns the closest pair of points between two segments.
func closestBetween(s, t segment) (orb.Point, orb.Point) {
	if p, ok := intersection(s, t); ok {
		return p, p
	}

	candidates := [4][2]orb.Point{
		{s.a, closestOnSegment(s.a, t)},
		{s.b, closestOnSegment(s.b, t)},
		{closestOnSegment(t.a, s), t.a},
		{closestOnSegment(t.b, s), t.b},
	}

	best := candidates[0]
	bestD := planar.Distance(best[0], best[1])
	for _, c := range candidates[1:] {
		if d := planar.Distance(c[0], c[1]); d < bestD {
			best, bestD = c, d
		}
	}
	return best[0], best[1]
}

// closestOnSegment projects p onto s, clamped to the segment.
func closestOnSegment(p orb.Point, s segment) orb.Point {
	dx := s.b[0] - s.a[0]
	dy := s.b[1] - s.a[1]
	den := dx*dx + dy*dy
	if den < epsilon {
		return s.a
	}

	t := ((p[0]-s.a[0])*dx + (p[1]-s.a[1])*dy) / den
	t = math.Max(0, math.Min(1, t))
	return orb.Point{s.a[0] + t*dx, s.a[1] + t*dy}
}

// intersection reports the crossing point of two non-degenerate, non-parallel segments.
func intersection(s, t segment) (orb.Point, bool) {
	rx, ry := s.b[0]-s.a[0], s.b[1]-s.a[1]
	qx, qy := t.b[0]-t.a[0], t.b[1]-t.a[1]

	den := cross(rx, ry, qx, qy)
	if math.Abs(den) < epsilon {
		return orb.Point{}, false
	}

	wx, wy := t.a[0]-s.a[0], t.a[1]-s.a[1]
	u := cross(wx, wy, qx, qy) / den
	v := cross(wx, wy, rx, ry) / den
	if u < 0 || u > 1 || v < 0 || v > 1 {
		return orb.Point{}, false
	}
	return orb.Point{s.a[0] + u*rx, s.a[1] + u*ry}, true
}

func cross(ax, ay, bx, by float64) float64 {
	return ax*by - ay*bx
}
