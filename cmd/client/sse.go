package main

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// Event is one dispatched text/event-stream record.
type Event struct {
	Name string
	Data string
}

// readEvents parses r until EOF or ctx is done. Comment lines, heartbeats
// included, are skipped. Multi-line data fields are joined with '\n'.
func readEvents(ctx context.Context, r io.Reader, out chan<- Event) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var name string
	var data []string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if len(data) == 0 {
				name = ""
				continue
			}
			if name == "" {
				name = "message"
			}
			select {
			case out <- Event{Name: name, Data: strings.Join(data, "\n")}:
			case <-ctx.Done():
				return ctx.Err()
			}
			name, data = "", nil
		case strings.HasPrefix(line, ":"):
		default:
			field, value, _ := strings.Cut(line, ":")
			value = strings.TrimPrefix(value, " ")
			switch field {
			case "event":
				name = value
			case "data":
				data = append(data, value)
			}
		}
	}
	return scanner.Err()
}
