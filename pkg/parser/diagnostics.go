package parser

import (
	"fmt"
	"strings"
)

// Severity of a diagnostic
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "error"
	}
}

// MarshalText renders the severity by name in JSON output
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a severity name
func (s *Severity) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	case "info":
		*s = SeverityInfo
	default:
		return fmt.Errorf("unknown severity %q", text)
	}
	return nil
}

// Diagnostic is a recorded, offset-ranged parse problem. The parser never
// stops at the first one.
type Diagnostic struct {
	Severity   Severity `json:"severity"`
	Offset     int      `json:"offset"`
	EndOffset  int      `json:"endOffset"`
	Line       int      `json:"line"`
	Column     int      `json:"column"`
	File       string   `json:"file,omitempty"`
	Production string   `json:"production,omitempty"`
	Message    string   `json:"message"`
}

func (d Diagnostic) String() string {
	loc := fmt.Sprintf("%d:%d", d.Line, d.Column)
	if d.File != "" {
		loc = d.File + ":" + loc
	}
	return fmt.Sprintf("%s: %s: %s", loc, d.Severity, d.Message)
}

func diagnosticFrom(bt *BacktrackError) Diagnostic {
	msg := bt.Message
	if msg == "" {
		msg = "syntax error"
	}
	return Diagnostic{
		Severity:   SeverityError,
		Offset:     bt.Offset,
		EndOffset:  bt.EndOffset,
		Line:       bt.Line,
		Column:     bt.Column,
		File:       bt.File,
		Production: bt.Production,
		Message:    msg,
	}
}

// CountErrors returns the number of error-severity diagnostics
func CountErrors(diags []Diagnostic) int {
	n := 0
	for _, d := range diags {
		if d.Severity == SeverityError {
			n++
		}
	}
	return n
}
