package enhancers

import "fmt"

// FlagActionType is the flag an action toggles. The ordering (Group=0,
// App=1, Prefix=2, Sentinel=3) is load-bearing: it is the low-nibble index
// used by the compact binary encoding.
type FlagActionType uint8

const (
	ActionGroup FlagActionType = iota
	ActionApp
	ActionPrefix
	ActionSentinel
)

func (t FlagActionType) String() string {
	switch t {
	case ActionGroup:
		return "group"
	case ActionApp:
		return "app"
	case ActionPrefix:
		return "prefix"
	case ActionSentinel:
		return "sentinel"
	default:
		return "?"
	}
}

// Range selects which frames or components a flag action applies to,
// relative to the frame index the rule matched at.
type Range uint8

const (
	RangeNone Range = iota
	RangeUp
	RangeDown
)

func (r Range) sigil() string {
	switch r {
	case RangeUp:
		return "^"
	case RangeDown:
		return "v"
	default:
		return ""
	}
}

// sliceBounds returns the [start, end) bounds of frames/components this
// range selects, given the matched index i and slice length n.
func (r Range) sliceBounds(i, n int) (int, int) {
	switch r {
	case RangeUp:
		return i + 1, n
	case RangeDown:
		return 0, i
	default:
		return i, i + 1
	}
}

// Action is the closed set of things a rule can do: a FlagAction or a
// VarAction.
type Action interface {
	isAction()
	String() string
}

// FlagAction toggles one of app/group/prefix/sentinel, true for '+' and
// false for '-', over the frames/components selected by Range.
type FlagAction struct {
	Type  FlagActionType
	Flag  bool
	Range Range
}

func (FlagAction) isAction() {}

func (a FlagAction) String() string {
	sign := "-"
	if a.Flag {
		sign = "+"
	}
	return fmt.Sprintf("%s%s%s", a.Range.sigil(), sign, a.Type)
}

// VarActionName is the closed set of variable names a var-action can set.
type VarActionName uint8

const (
	VarMinFrames VarActionName = iota
	VarMaxFrames
	VarInvertStacktrace
	VarCategory
)

func (n VarActionName) String() string {
	switch n {
	case VarMinFrames:
		return "min-frames"
	case VarMaxFrames:
		return "max-frames"
	case VarInvertStacktrace:
		return "invert-stacktrace"
	case VarCategory:
		return "category"
	default:
		return "?"
	}
}

// VarAction sets a named variable: min-frames/max-frames (uint),
// invert-stacktrace (bool), or category (string). Exactly one of IntValue,
// BoolValue, StrValue is meaningful, selected by Name.
type VarAction struct {
	Name      VarActionName
	IntValue  uint64
	BoolValue bool
	StrValue  string
}

func (VarAction) isAction() {}

func (a VarAction) String() string {
	switch a.Name {
	case VarMinFrames, VarMaxFrames:
		return fmt.Sprintf("%s=%d", a.Name, a.IntValue)
	case VarInvertStacktrace:
		return fmt.Sprintf("%s=%t", a.Name, a.BoolValue)
	default:
		return fmt.Sprintf("%s=%s", a.Name, a.StrValue)
	}
}

// isModifierAction reports whether an action belongs to the modifier set:
// an app flag-action, or the category var-action.
func isModifierAction(a Action) bool {
	switch v := a.(type) {
	case FlagAction:
		return v.Type == ActionApp
	case VarAction:
		return v.Name == VarCategory
	default:
		return false
	}
}

// isUpdaterAction reports whether an action belongs to the updater set:
// anything other than the category var-action. App flag-actions are in
// both sets.
func isUpdaterAction(a Action) bool {
	if v, ok := a.(VarAction); ok {
		return v.Name != VarCategory
	}
	return true
}
