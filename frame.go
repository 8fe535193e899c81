// Package enhancers implements a stack-trace grouping enhancement engine: a
// small domain-specific rule language and evaluator that rewrites frame
// attributes (in_app, category) and per-frame grouping-contribution metadata
// used downstream to compute issue fingerprints.
package enhancers

import "strings"

// Family is a bitmask over the platform families a frame can belong to. It
// is always a 3-bit value except for the "all" sentinel, which sets every
// bit so it matches any single-bit family.
type Family uint8

const (
	FamilyOther      Family = 0b001
	FamilyNative     Family = 0b010
	FamilyJavaScript Family = 0b100
	FamilyAll        Family = 0xFF
)

// ParseFamilies turns a comma-separated family-name list into a bitmask.
// Unknown names contribute no bits and are silently ignored.
func ParseFamilies(names string) Family {
	var bits Family
	for _, name := range strings.Split(names, ",") {
		switch strings.TrimSpace(name) {
		case "other":
			bits |= FamilyOther
		case "native":
			bits |= FamilyNative
		case "javascript":
			bits |= FamilyJavaScript
		case "all":
			bits |= FamilyAll
		}
	}
	return bits
}

// FamilyFromPlatform maps a host platform string onto a single-bit Family,
// per the fixed mapping callers are expected to apply before handing frames
// to the engine.
func FamilyFromPlatform(platform string) Family {
	switch strings.ToLower(platform) {
	case "objc", "cocoa", "swift", "native", "c":
		return FamilyNative
	case "javascript", "node":
		return FamilyJavaScript
	default:
		return FamilyOther
	}
}

// Matches reports whether two family bitmasks share at least one bit.
func (f Family) Matches(other Family) bool {
	return f&other != 0
}

// TriBool is a three-valued boolean: unset, true, or false. The zero value
// is Unset.
type TriBool uint8

const (
	Unset TriBool = iota
	True
	False
)

// BoolValue reports the effective boolean value, treating Unset as false.
func (t TriBool) BoolValue() bool {
	return t == True
}

// TriBoolFrom converts a plain bool into a set TriBool.
func TriBoolFrom(b bool) TriBool {
	if b {
		return True
	}
	return False
}

// Frame is a normalized stack frame record consumed by the engine. Callers
// are responsible for populating Family and for lowercasing and
// slash-normalizing Path and Package before matching (see Normalize).
type Frame struct {
	Category string
	Function string
	Module   string
	Package  string
	Path     string
	Family   Family
	InApp    TriBool

	// InAppLastChanged references the rule most recently responsible for
	// setting InApp. It is used purely for hint generation, never as an
	// ownership edge.
	InAppLastChanged *Rule
}

// Normalize lowercases and slash-normalizes Path and Package in place, as
// required by the path-like matcher contract.
func (f *Frame) Normalize() {
	f.Path = normalizePathLike(f.Path)
	f.Package = normalizePathLike(f.Package)
}

func normalizePathLike(s string) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, `\`, "/")
	return strings.ToLower(s)
}

// FrameField enumerates the frame attributes a matcher can target.
type FrameField uint8

const (
	FieldCategory FrameField = iota
	FieldFunction
	FieldModule
	FieldPackage
	FieldPath
)

func (f FrameField) String() string {
	switch f {
	case FieldCategory:
		return "category"
	case FieldFunction:
		return "function"
	case FieldModule:
		return "module"
	case FieldPackage:
		return "package"
	case FieldPath:
		return "path"
	default:
		return "unknown"
	}
}

// Get returns the field's current value and whether it is present
// (non-empty).
func (f FrameField) Get(frame *Frame) (string, bool) {
	var v string
	switch f {
	case FieldCategory:
		v = frame.Category
	case FieldFunction:
		v = frame.Function
	case FieldModule:
		v = frame.Module
	case FieldPackage:
		v = frame.Package
	case FieldPath:
		v = frame.Path
	}
	return v, v != ""
}

// ExceptionField enumerates the exception attributes a matcher can target.
type ExceptionField uint8

const (
	ExceptionType ExceptionField = iota
	ExceptionValue
	ExceptionMechanism
)

// unknownSentinel is substituted for a missing exception attribute, per the
// matcher contract: a missing attribute is matched against this literal.
const unknownSentinel = "<unknown>"

// ExceptionData carries the optional exception attributes the engine may
// match against. It is read-only to the engine.
type ExceptionData struct {
	Type      string
	Value     string
	Mechanism string
}

func (e ExceptionField) Get(data ExceptionData) string {
	var v string
	switch e {
	case ExceptionType:
		v = data.Type
	case ExceptionValue:
		v = data.Value
	case ExceptionMechanism:
		v = data.Mechanism
	}
	if v == "" {
		return unknownSentinel
	}
	return v
}

// Component is per-frame grouping metadata updated by the engine. Callers
// create it with initial values, the updater pass mutates it, and callers
// read it back afterwards.
type Component struct {
	Contributes    bool
	IsPrefixFrame  bool
	IsSentinelFrame bool
	Hint           string
}

// Variable is a named StacktraceState field: a value paired with the rule
// that last set it, if any.
type Variable[T any] struct {
	Value  T
	Setter *Rule
}

// StacktraceState is the aggregate produced by the updater pass.
type StacktraceState struct {
	MinFrames        Variable[uint64]
	MaxFrames        Variable[uint64]
	InvertStacktrace Variable[bool]
}
