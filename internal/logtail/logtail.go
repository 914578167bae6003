package logtail

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Lines returns at most maxLines from the end of r. A non-positive maxLines
// returns every line.
func Lines(r io.Reader, maxLines int) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var all []string
		for scanner.Scan() {
			all = append(all, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return all, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Tail is Lines over an in-memory log.
func Tail(log string, maxLines int) []string {
	lines, err := Lines(strings.NewReader(log), maxLines)
	if err != nil {
		// Only a line longer than the scanner buffer fails; keep it whole.
		return []string{log}
	}
	return lines
}
