// Package graph is the concrete host SSA IR the combo engine analyzes. It
// implements the external interfaces spec.md §6 names (node walking, the
// computed_value oracle, graph mutation) so the engine in
// internal/combo is runnable end to end, the way the teacher's own
// internal/ir package is the concrete IR its internal/semantic and
// (erstwhile) optimizations.go operate over.
package graph

import "fmt"

// ModeKind is the type tag spec.md's glossary defines: integer
// width+signedness, float, boolean, memory, control, tuple.
type ModeKind int

const (
	ModeInt ModeKind = iota
	ModeBool
	ModeFloat
	ModeMemory
	ModeControl
	ModeTuple
)

func (k ModeKind) String() string {
	switch k {
	case ModeInt:
		return "int"
	case ModeBool:
		return "bool"
	case ModeFloat:
		return "float"
	case ModeMemory:
		return "memory"
	case ModeControl:
		return "control"
	case ModeTuple:
		return "tuple"
	default:
		return "?"
	}
}

// Mode fully qualifies a value's type: its kind, and for ModeInt its bit
// width and signedness (both needed for lambda_opcode's attribute
// comparison in spec.md §4.6 and for tarval arithmetic).
type Mode struct {
	Kind   ModeKind
	Width  int
	Signed bool
}

func (m Mode) String() string {
	if m.Kind == ModeInt {
		sign := "u"
		if m.Signed {
			sign = "s"
		}
		return fmt.Sprintf("%s%d", sign, m.Width)
	}
	return m.Kind.String()
}

func (m Mode) Equal(o Mode) bool {
	return m.Kind == o.Kind && m.Width == o.Width && m.Signed == o.Signed
}

func (m Mode) IsFloat() bool { return m.Kind == ModeFloat }

var (
	Bool            = Mode{Kind: ModeBool}
	ControlMode     = Mode{Kind: ModeControl}
	MemoryMode      = Mode{Kind: ModeMemory}
	TupleMode       = Mode{Kind: ModeTuple}
)

// Int builds an integer mode of a given width/signedness.
func Int(width int, signed bool) Mode { return Mode{Kind: ModeInt, Width: width, Signed: signed} }

// Float builds a floating-point mode of a given width.
func Float(width int) Mode { return Mode{Kind: ModeFloat, Width: width} }
