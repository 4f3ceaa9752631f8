package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"

	"x509lint/internal/lint"
)

// ConsoleOption configures a ConsoleSink.
type ConsoleOption func(*ConsoleSink)

// WithNoColor disables status colors regardless of the terminal.
func WithNoColor(noColor bool) ConsoleOption {
	return func(s *ConsoleSink) {
		s.noColor = noColor
	}
}

type ConsoleSink struct {
	writer    io.Writer
	format    string // "text", "json", "ndjson"
	noColor   bool
	mu        sync.Mutex
	documents []Document // For JSON array output

	header *color.Color
	styles map[lint.Status]*color.Color
}

func NewConsoleSink(w io.Writer, format string, opts ...ConsoleOption) *ConsoleSink {
	if w == nil {
		w = os.Stdout
	}
	if format == "" {
		format = "text"
	}

	s := &ConsoleSink{
		writer:    w,
		format:    format,
		documents: []Document{},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.header = color.New(color.Bold)
	s.styles = map[lint.Status]*color.Color{
		lint.Pass:  color.New(color.FgGreen),
		lint.Warn:  color.New(color.FgYellow),
		lint.Error: color.New(color.FgRed, color.Bold),
	}
	if s.noColor {
		s.header.DisableColor()
		for _, c := range s.styles {
			c.DisableColor()
		}
	}
	return s
}

func (s *ConsoleSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(v)
}

func (s *ConsoleSink) writeLocked(v any) error {
	switch s.format {
	case "json":
		d, ok := v.(Document)
		if !ok {
			// Ignore lifecycle events in JSON console mode.
			return nil
		}
		s.documents = append(s.documents, d)
		return nil
	case "ndjson":
		return writeNDJSON(s.writer, v)
	case "text":
		d, ok := v.(Document)
		if !ok {
			// Ignore events in text mode.
			return nil
		}
		if err := s.writeText(d); err != nil {
			return err
		}
		return flushIfPossible(s.writer)
	default:
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
}

// writeText prints one document:
//
//	cert.pem#0: Subject: C=FR, CN=Example
//	  [warn] rfc:serial_msb: Serial number is negative (RFC5280: 4.1.2.2)
//	  No warnings/errors
func (s *ConsoleSink) writeText(d Document) error {
	if d.Failed() {
		_, err := s.styles[lint.Error].Fprintf(s.writer, "%s#%d: %s\n", d.Source, d.Index, d.Error)
		return err
	}
	if _, err := s.header.Fprintf(s.writer, "%s#%d: %s\n", d.Source, d.Index, d.Label()); err != nil {
		return err
	}
	if len(d.Findings) == 0 {
		_, err := s.styles[lint.Pass].Fprintln(s.writer, "  No warnings/errors")
		return err
	}
	for _, f := range d.Findings {
		if _, err := fmt.Fprint(s.writer, "  "); err != nil {
			return err
		}
		if _, err := s.styles[f.Status].Fprintf(s.writer, "[%s]", f.Status); err != nil {
			return err
		}
		line := fmt.Sprintf(" %s: %s", f.Lint, f.Description)
		if f.Citation != "" {
			line += fmt.Sprintf(" (%s)", f.Citation)
		}
		if f.Details != "" {
			line += " - " + f.Details
		}
		if _, err := fmt.Fprintln(s.writer, line); err != nil {
			return err
		}
	}
	return nil
}

func (s *ConsoleSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format == "json" {
		encoder := json.NewEncoder(s.writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(s.documents); err != nil {
			return err
		}
		return flushIfPossible(s.writer)
	}
	if s.format != "text" && s.format != "ndjson" {
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
	return nil
}
