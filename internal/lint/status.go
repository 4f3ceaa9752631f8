package lint

import (
	"fmt"
	"strings"
)

// Status is the severity of a lint outcome. Values are ordered: Pass < Warn < Error.
type Status int

const (
	// Pass means there is nothing to report.
	Pass Status = iota
	// Warn is a finding that should be reviewed.
	Warn
	// Error is a finding that violates a MUST-level requirement.
	Error
)

func (s Status) String() string {
	switch s {
	case Pass:
		return "pass"
	case Warn:
		return "warn"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// ParseStatus converts "pass", "warn" or "error" (case-insensitive) to a Status.
func ParseStatus(raw string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pass":
		return Pass, nil
	case "warn", "warning":
		return Warn, nil
	case "error":
		return Error, nil
	default:
		return Pass, fmt.Errorf("unknown lint status %q (must be one of: pass, warn, error)", raw)
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	v, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
