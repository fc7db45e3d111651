package lint

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapquery/pkg/ast"
)

// ---------- Severity ----------

// Severity indicates the importance of a diagnostic.
type Severity int

// Severity levels for diagnostics.
const (
	// SeverityError indicates a query that is almost certainly wrong.
	SeverityError Severity = iota
	// SeverityWarning indicates a potential issue that should be reviewed.
	SeverityWarning
	// SeverityInfo indicates informational feedback.
	SeverityInfo
	// SeverityHint indicates a suggestion for improvement.
	SeverityHint
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseSeverity converts a string to a Severity value.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(s) {
	case "error":
		return SeverityError, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "info":
		return SeverityInfo, nil
	case "hint":
		return SeverityHint, nil
	}
	return SeverityWarning, fmt.Errorf("unknown severity %q", s)
}

// ---------- Rules ----------

// CheckFunc inspects a query tree and returns its findings. Checks are
// read-only and must not keep references to the tree.
type CheckFunc func(q ast.Query) []Diagnostic

// RuleDef is a data-driven rule definition.
type RuleDef struct {
	ID          string   // Unique identifier, e.g. "AM04"
	Name        string   // Human-readable name, e.g. "ambiguous.column_count"
	Group       string   // Category, e.g. "ambiguous"
	Description string   // One-line description
	Severity    Severity // Default severity
	Check       CheckFunc

	BadExample  string
	GoodExample string
}

// ---------- Diagnostics ----------

// Diagnostic represents a lint finding. Query is the SQL of the query the
// finding is about, without its WITH clause.
type Diagnostic struct {
	RuleID   string   `json:"rule"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Query    string   `json:"query,omitempty"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s [%s] %s", d.Severity, d.RuleID, d.Message)
}

// HasErrors reports whether any diagnostic is an error.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
