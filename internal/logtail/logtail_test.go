package logtail

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestLines(t *testing.T) {
	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{
			name:     "read all (0)",
			maxLines: 0,
			expected: expectedAll,
		},
		{
			name:     "read all (negative)",
			maxLines: -1,
			expected: expectedAll,
		},
		{
			name:     "read partial (5)",
			maxLines: 5,
			expected: expectedAll[5:],
		},
		{
			name:     "read exactly all (10)",
			maxLines: 10,
			expected: expectedAll,
		},
		{
			name:     "read more than exists (20)",
			maxLines: 20,
			expected: expectedAll,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Lines(strings.NewReader(content.String()), tt.maxLines)
			if err != nil {
				t.Fatalf("Lines() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Lines() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestTail(t *testing.T) {
	log := "Traceback (most recent call last):\n  File \"worker.py\"\nRuntimeError: EnergyPlus exited"
	got := Tail(log, 1)
	if len(got) != 1 || got[0] != "RuntimeError: EnergyPlus exited" {
		t.Fatalf("Tail() = %q", got)
	}
	if got := Tail("", 5); len(got) != 0 {
		t.Fatalf("Tail(empty) = %q, want none", got)
	}
}
