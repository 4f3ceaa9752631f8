package output

import (
	"encoding/json"
	"io"
)

// flusher is implemented by buffered writers such as bufio.Writer.
type flusher interface {
	Flush() error
}

func flushIfPossible(w io.Writer) error {
	if f, ok := w.(flusher); ok {
		return f.Flush()
	}
	return nil
}

// writeNDJSON encodes v as one NDJSON line and flushes it, so a reader
// following the stream sees each document as soon as it is linted. A
// Document is wrapped in a document.result Event; other values are ignored.
func writeNDJSON(w io.Writer, v any) error {
	var ev Event
	switch t := v.(type) {
	case Event:
		ev = t
	case Document:
		ev = eventFromDocument(t)
	default:
		return nil
	}
	if err := json.NewEncoder(w).Encode(ev); err != nil {
		return err
	}
	return flushIfPossible(w)
}
