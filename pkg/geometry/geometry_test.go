package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
)

const tolerance = 1e-9

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < tolerance
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
		want    orb.Geometry
	}{
		{"point", "POINT (1 2)", nil, orb.Point{1, 2}},
		{"line", "LINESTRING (0 0, 3 4)", nil, orb.LineString{{0, 0}, {3, 4}}},
		{"blank", "   ", ErrEmptyGeometry, nil},
		{"polygon", "POLYGON ((0 0, 1 0, 1 1, 0 0))", ErrUnsupportedGeometry, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Parse(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.input, err)
			}
			if !orb.Equal(g, tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, g, tt.want)
			}
		})
	}
}

func TestParse_Garbage(t *testing.T) {
	if _, err := Parse("POINT (a b"); err == nil {
		t.Error("expected error for malformed WKT")
	}
}

func TestLength(t *testing.T) {
	if got := Length(orb.Point{4, 4}); got != 0 {
		t.Errorf("point length = %f, want 0", got)
	}
	if got := Length(orb.LineString{{0, 0}, {3, 4}, {3, 10}}); !approxEqual(got, 11) {
		t.Errorf("line length = %f, want 11", got)
	}
	if got := Length(nil); got != 0 {
		t.Errorf("nil length = %f, want 0", got)
	}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b orb.Geometry
		want float64
	}{
		{"point to point", orb.Point{0, 0}, orb.Point{3, 4}, 5},
		{"point to line interior", orb.Point{5, 3}, orb.LineString{{0, 0}, {10, 0}}, 3},
		{"point to line endpoint", orb.Point{13, 4}, orb.LineString{{0, 0}, {10, 0}}, 5},
		{"parallel lines", orb.LineString{{0, 0}, {10, 0}}, orb.LineString{{0, 2}, {10, 2}}, 2},
		{"crossing lines", orb.LineString{{0, 0}, {10, 10}}, orb.LineString{{0, 10}, {10, 0}}, 0},
		{"polyline", orb.Point{5, 6}, orb.LineString{{0, 0}, {0, 5}, {10, 5}}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Distance(tt.a, tt.b); !approxEqual(got, tt.want) {
				t.Errorf("Distance = %f, want %f", got, tt.want)
			}
			if got := Distance(tt.b, tt.a); !approxEqual(got, tt.want) {
				t.Errorf("Distance (swapped) = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestNearestPoints(t *testing.T) {
	pa, pb := NearestPoints(orb.Point{5, 3}, orb.LineString{{0, 0}, {10, 0}})
	if pa != (orb.Point{5, 3}) {
		t.Errorf("first point = %v, want (5 3)", pa)
	}
	if pb != (orb.Point{5, 0}) {
		t.Errorf("second point = %v, want (5 0)", pb)
	}
}

func TestConnector(t *testing.T) {
	c := Connector(orb.LineString{{0, 0}, {0, 10}}, orb.Point{4, 7})
	if len(c) != 2 {
		t.Fatalf("connector has %d points, want 2", len(c))
	}
	if c[0] != (orb.Point{0, 7}) || c[1] != (orb.Point{4, 7}) {
		t.Errorf("connector = %v, want [(0 7) (4 7)]", c)
	}
}

func TestWKTRoundTrip(t *testing.T) {
	line := orb.LineString{{1, 2}, {3, 4}}
	g, err := Parse(WKT(line))
	if err != nil {
		t.Fatalf("Parse(WKT) failed: %v", err)
	}
	if !orb.Equal(g, line) {
		t.Errorf("round trip = %v, want %v", g, line)
	}
	if WKT(nil) != "" {
		t.Error("WKT(nil) should be empty")
	}
}
