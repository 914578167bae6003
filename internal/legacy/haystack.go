package legacy

import (
	"strconv"
	"strings"

	"github.com/five82/alfalfa/internal/sim"
)

// readGrid is the row-oriented JSON returned by the Haystack read endpoint.
type readGrid struct {
	Rows []map[string]any `json:"rows"`
}

// Decode strips the Haystack type tag from a scalar. "s:" becomes a string,
// "n:" a float64 (units dropped), "b:" / "m:" / "r:" are unwrapped; anything
// else is returned unchanged.
func Decode(value any) any {
	s, ok := value.(string)
	if !ok || len(s) < 2 || s[1] != ':' {
		return value
	}
	body := s[2:]
	switch s[0] {
	case 's':
		return body
	case 'n':
		num := body
		if i := strings.IndexByte(num, ' '); i >= 0 {
			num = num[:i]
		}
		f, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return value
		}
		return f
	case 'r':
		return refID(body)
	case 'm':
		return true
	case 'b':
		return body
	default:
		return value
	}
}

// refID drops the display suffix of a Haystack ref ("id dis").
func refID(body string) string {
	if i := strings.IndexByte(body, ' '); i >= 0 {
		return body[:i]
	}
	return body
}

// decodeString decodes a scalar and renders it as a string.
func decodeString(value any) string {
	switch v := Decode(value).(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		if s, ok := value.(string); ok {
			return s
		}
		return ""
	}
}

// pointFromRow converts a Haystack point record. Rows without an id are
// skipped by the caller.
func pointFromRow(row map[string]any) (sim.Point, bool) {
	id := decodeString(row["id"])
	if id == "" {
		return sim.Point{}, false
	}
	name := decodeString(row["dis"])
	_, writable := row["writable"]
	_, cur := row["cur"]

	pt := sim.PointOutput
	switch {
	case writable && cur:
		pt = sim.PointBidirectional
	case writable:
		pt = sim.PointInput
	}
	return sim.Point{ID: sim.PointID(id), Name: name, Type: pt}, true
}

func pointFilter(run sim.RunID) string {
	return "siteRef==@" + string(run) + " and point"
}
