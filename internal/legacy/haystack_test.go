package legacy

import (
	"testing"

	"github.com/five82/alfalfa/internal/sim"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		in   any
		want any
	}{
		{"s:Zone Temp", "Zone Temp"},
		{"n:21.5", 21.5},
		{"n:21.5 °C", 21.5},
		{"r:abc123 Site One", "abc123"},
		{"m:", true},
		{"b:true", "true"},
		{"n:not-a-number", "n:not-a-number"},
		{"plain", "plain"},
		{42.0, 42.0},
		{nil, nil},
	}
	for _, tt := range tests {
		if got := Decode(tt.in); got != tt.want {
			t.Fatalf("Decode(%#v) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestPointFromRow_ClassifiesByMarkers(t *testing.T) {
	tests := []struct {
		name string
		row  map[string]any
		want sim.PointType
	}{
		{"output", map[string]any{"id": "r:p1", "dis": "s:out", "cur": "m:"}, sim.PointOutput},
		{"input", map[string]any{"id": "r:p2", "dis": "s:in", "writable": "m:"}, sim.PointInput},
		{"both", map[string]any{"id": "r:p3", "dis": "s:both", "writable": "m:", "cur": "m:"}, sim.PointBidirectional},
	}
	for _, tt := range tests {
		pt, ok := pointFromRow(tt.row)
		if !ok {
			t.Fatalf("%s: pointFromRow skipped row", tt.name)
		}
		if pt.Type != tt.want {
			t.Fatalf("%s: type = %s, want %s", tt.name, pt.Type, tt.want)
		}
	}

	pt, _ := pointFromRow(map[string]any{"id": "r:p9 Damper Cmd", "dis": "s:Damper Cmd"})
	if pt.ID != "p9" || pt.Name != "Damper Cmd" {
		t.Fatalf("point = %#v, want id p9 name Damper Cmd", pt)
	}

	if _, ok := pointFromRow(map[string]any{"dis": "s:orphan"}); ok {
		t.Fatalf("row without id should be skipped")
	}
}

func TestPointFilter(t *testing.T) {
	if got := pointFilter("site-1"); got != "siteRef==@site-1 and point" {
		t.Fatalf("pointFilter = %q", got)
	}
}
