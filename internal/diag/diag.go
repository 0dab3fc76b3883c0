// Package diag reports the three fault categories spec.md §7 names:
// precondition violations (abort before the pass runs), monotonicity
// violations (debug-build assertions — a bug in a transfer function), and
// upstream anomalies (logged, non-fatal). The formatting is adapted
// directly from the teacher's internal/errors.ErrorReporter — same
// Level/Suggestion shape, same caret-diagram rendering — but anchored to
// graph nodes and partitions instead of source positions, since the combo
// pass has no source text to point at.
package diag

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"
)

// Level mirrors the teacher's ErrorLevel.
type Level string

const (
	LevelFatal   Level = "fatal"
	LevelWarning Level = "warning"
	LevelNote    Level = "note"
)

// Finding is one diagnostic: a precondition violation, a monotonicity
// assertion failure, or an upstream anomaly.
type Finding struct {
	Level   Level
	Code    string // e.g. "C0001" precondition, "C0002" monotonicity, "C0003" unoptimized-CF
	Message string
	Node    string // node/partition identity the finding is anchored to, if any
}

func (f Finding) String() string {
	var levelColor func(format string, a ...interface{}) string
	switch f.Level {
	case LevelFatal:
		levelColor = color.New(color.FgRed, color.Bold).SprintfFunc()
	case LevelWarning:
		levelColor = color.New(color.FgYellow, color.Bold).SprintfFunc()
	default:
		levelColor = color.New(color.FgBlue, color.Bold).SprintfFunc()
	}
	dim := color.New(color.Faint).SprintFunc()

	var b strings.Builder
	if f.Code != "" {
		b.WriteString(levelColor("%s[%s]: %s", string(f.Level), f.Code, f.Message))
	} else {
		b.WriteString(levelColor("%s: %s", string(f.Level), f.Message))
	}
	if f.Node != "" {
		b.WriteString("\n")
		b.WriteString(dim(fmt.Sprintf("  --> at %s", f.Node)))
	}
	return b.String()
}

// Reporter accumulates findings for one combo.Run invocation.
type Reporter struct {
	findings []Finding
}

func NewReporter() *Reporter { return &Reporter{} }

func (r *Reporter) Warn(code, node, format string, args ...interface{}) {
	r.findings = append(r.findings, Finding{Level: LevelWarning, Code: code, Message: fmt.Sprintf(format, args...), Node: node})
}

func (r *Reporter) Note(code, node, format string, args ...interface{}) {
	r.findings = append(r.findings, Finding{Level: LevelNote, Code: code, Message: fmt.Sprintf(format, args...), Node: node})
}

func (r *Reporter) Findings() []Finding { return r.findings }

func (r *Reporter) HasWarnings() bool {
	for _, f := range r.findings {
		if f.Level == LevelWarning {
			return true
		}
	}
	return false
}

// PreconditionError wraps a fatal, abort-before-running precondition
// violation (spec.md §7: "graph not in expected form, missing required
// properties") with stack context via pkg/errors, the way the engine's
// entry point rejects malformed input before starting the fixed point.
func PreconditionError(format string, args ...interface{}) error {
	return errors.Errorf("combo: precondition violation: "+format, args...)
}

// WrapPrecondition attaches precondition context to an underlying error
// (e.g. a config-load failure) without discarding its stack.
func WrapPrecondition(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, "combo: precondition violation: "+format, args...)
}

// MonotonicityViolation panics when debug is true (combo sets it from
// Config.Verbose), matching
// spec.md §7's "debug-build assertion, indicating a bug in a transfer
// function"; release builds merely record a Finding and proceed, since the
// fixed point may simply be less precise, not unsound-crashing.
func MonotonicityViolation(r *Reporter, debug bool, node string, from, to string) {
	msg := fmt.Sprintf("illegal lattice transition %s -> %s", from, to)
	if debug {
		panic(Finding{Level: LevelFatal, Code: "C0002", Message: msg, Node: node}.String())
	}
	r.Warn("C0002", node, "%s", msg)
}

// UnoptimizedCF records spec.md §7's named non-fatal anomaly: a Switch
// with a constant selector but more than one reachable successor, which
// indicates an invariant violation by an upstream pass, not this one.
func (r *Reporter) UnoptimizedCF(node string) {
	r.Warn("C0003", node, "control flow not fully resolved: constant selector but multiple reachable successors")
}
