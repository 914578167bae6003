package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/five82/alfalfa"
)

// parseAssignments turns name=value arguments into an input map. A value of
// "null" (or nothing after the equals sign) releases the input; anything
// else must be a number.
func parseAssignments(args []string) (map[string]any, error) {
	inputs := make(map[string]any, len(args))
	for _, arg := range args {
		name, raw, ok := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("expected name=value, got %q", arg)
		}
		if _, dup := inputs[name]; dup {
			return nil, fmt.Errorf("input %q given more than once", name)
		}
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.EqualFold(raw, "null") {
			inputs[name] = nil
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("input %q: %q is not a number", name, raw)
		}
		inputs[name] = v
	}
	return inputs, nil
}

// parseSimTime accepts the server's timestamp layout or RFC 3339. An empty
// string yields the zero time, which leaves the server default in place.
func parseSimTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(alfalfa.TimeLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: use %q or RFC 3339", s, alfalfa.TimeLayout)
	}
	return t, nil
}

// parsePointType maps a --type flag value to a point type.
func parsePointType(s string) (alfalfa.PointType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "input":
		return alfalfa.PointInput, nil
	case "output":
		return alfalfa.PointOutput, nil
	case "bidirectional":
		return alfalfa.PointBidirectional, nil
	default:
		return "", fmt.Errorf("unknown point type %q (want input, output or bidirectional)", s)
	}
}
