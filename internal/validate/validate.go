// Package validate checks game snapshots against structural and semantic
// rules. Validation is pure: it never mutates its input and never panics
// on malformed data. Malformed input simply yields issues.
package validate

import (
	"fmt"
	"strings"

	"github.com/ashvale/duskfall/internal/core"
)

// Severity classifies how serious an issue is. ERROR and CRITICAL block
// the operation that requested validation; WARNING and INFO are advisory.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Issue describes a single defect found in a snapshot.
type Issue struct {
	Severity Severity
	Path     string // field path, e.g. "playerData.health"
	Message  string
	Value    any
	Expected string // optional expected type/range description
}

func (i Issue) String() string {
	s := fmt.Sprintf("%s %s: %s (value: %v)", i.Severity, i.Path, i.Message, i.Value)
	if i.Expected != "" {
		s += " expected " + i.Expected
	}
	return s
}

// Report is the outcome of validating one snapshot.
type Report []Issue

// HasBlocking reports whether any issue is ERROR or CRITICAL.
func (r Report) HasBlocking() bool {
	for _, i := range r {
		if i.Severity >= SeverityError {
			return true
		}
	}
	return false
}

// Blocking returns only the ERROR and CRITICAL issues.
func (r Report) Blocking() Report {
	var out Report
	for _, i := range r {
		if i.Severity >= SeverityError {
			out = append(out, i)
		}
	}
	return out
}

func (r Report) String() string {
	if len(r) == 0 {
		return "ok"
	}
	parts := make([]string, len(r))
	for n, i := range r {
		parts[n] = i.String()
	}
	return strings.Join(parts, "; ")
}

// Category selects which rule set Snapshot applies.
type Category string

const (
	CategoryPlayer Category = "player"
	CategoryWorld  Category = "world"
	CategoryCombat Category = "combat"
)

// Categories lists every known validation category.
func Categories() []Category {
	return []Category{CategoryPlayer, CategoryWorld, CategoryCombat}
}

// Snapshot validates snap against the rules of one category.
func Snapshot(snap *core.GameSnapshot, cat Category) Report {
	if snap == nil {
		return Report{{
			Severity: SeverityCritical,
			Path:     string(cat),
			Message:  "snapshot is nil",
		}}
	}
	switch cat {
	case CategoryPlayer:
		return checkPlayer(snap)
	case CategoryWorld:
		return checkWorld(snap)
	case CategoryCombat:
		return checkCombat(snap)
	default:
		return Report{{
			Severity: SeverityError,
			Path:     string(cat),
			Message:  "unknown validation category",
			Value:    string(cat),
		}}
	}
}

// All validates snap against every category and concatenates the reports.
func All(snap *core.GameSnapshot) Report {
	var out Report
	for _, cat := range Categories() {
		out = append(out, Snapshot(snap, cat)...)
	}
	return out
}
