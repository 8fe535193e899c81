package enhancers

import (
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// schemaVersion is the only supported compact-binary-encoding version.
const schemaVersion = 2

// flagWireEntry is one row of the fixed (flag, range) table the binary
// encoding's value/range index selects into.
type flagWireEntry struct {
	flag  bool
	rng   Range
}

var flagWireTable = []flagWireEntry{
	{true, RangeNone},
	{true, RangeUp},
	{true, RangeDown},
	{false, RangeNone},
	{false, RangeUp},
	{false, RangeDown},
}

var flagTypeOrder = []FlagActionType{ActionGroup, ActionApp, ActionPrefix, ActionSentinel}

func flagTypeIndex(t FlagActionType) int {
	for i, candidate := range flagTypeOrder {
		if candidate == t {
			return i
		}
	}
	return -1
}

func encodeFlagAction(a FlagAction) int64 {
	typeIdx := flagTypeIndex(a.Type)
	rangeIdx := -1
	for i, entry := range flagWireTable {
		if entry.flag == a.Flag && entry.rng == a.Range {
			rangeIdx = i
			break
		}
	}
	return int64(typeIdx) | int64(rangeIdx)<<8
}

func decodeFlagAction(wire int64) (FlagAction, error) {
	typeIdx := int(wire & 0xF)
	rangeIdx := int(wire >> 8)
	if typeIdx < 0 || typeIdx >= len(flagTypeOrder) {
		return FlagAction{}, &DecodeError{Message: fmt.Sprintf("flag action type index %d out of range", typeIdx)}
	}
	if rangeIdx < 0 || rangeIdx >= len(flagWireTable) {
		return FlagAction{}, &DecodeError{Message: fmt.Sprintf("flag action range index %d out of range", rangeIdx)}
	}
	entry := flagWireTable[rangeIdx]
	return FlagAction{Type: flagTypeOrder[typeIdx], Flag: entry.flag, Range: entry.rng}, nil
}

func varActionWireName(n VarActionName) string {
	return n.String()
}

var varNameByWire = map[string]VarActionName{
	"min-frames":        VarMinFrames,
	"max-frames":        VarMaxFrames,
	"invert-stacktrace": VarInvertStacktrace,
	"category":          VarCategory,
}

func encodeVarRHS(a VarAction) interface{} {
	switch a.Name {
	case VarMinFrames, VarMaxFrames:
		return a.IntValue
	case VarInvertStacktrace:
		return a.BoolValue
	default:
		return a.StrValue
	}
}

func matcherStringWire(tag byte, negated bool, pattern string, offset FrameOffset) string {
	body := negPrefix(negated) + string(tag) + pattern
	switch offset {
	case OffsetCaller:
		return "[" + body + "]|"
	case OffsetCallee:
		return "|[" + body + "]"
	default:
		return body
	}
}

func frameMatcherToWire(m FrameMatcher) string {
	pattern := m.wirePattern()
	return matcherStringWire(m.wireTag(), m.negated(), pattern, m.offset())
}

func exceptionMatcherToWire(m ExceptionMatcher) string {
	return matcherStringWire(m.wireTag(), m.negated(), m.wirePattern(), OffsetNone)
}

// decodeMatcherString parses a single MatcherStr wire value into its
// constituent offset/negation/tag/pattern.
func decodeMatcherString(s string) (offset FrameOffset, negated bool, tag byte, pattern string, err error) {
	body := s
	switch {
	case strings.HasPrefix(s, "|[") && strings.HasSuffix(s, "]"):
		offset = OffsetCallee
		body = s[2 : len(s)-1]
	case strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]|"):
		offset = OffsetCaller
		body = s[1 : len(s)-2]
	}
	if body == "" {
		return 0, false, 0, "", &DecodeError{Message: "empty matcher body"}
	}
	if body[0] == '!' {
		negated = true
		body = body[1:]
	}
	if body == "" {
		return 0, false, 0, "", &DecodeError{Message: "matcher body missing tag"}
	}
	tag = body[0]
	pattern = body[1:]
	return offset, negated, tag, pattern, nil
}

func decodeMatcher(caches *Caches, wire string) (FrameMatcher, ExceptionMatcher, error) {
	offset, negated, tag, pattern, err := decodeMatcherString(wire)
	if err != nil {
		return nil, nil, err
	}
	kind, ok := matcherKindByTag[tag]
	if !ok {
		return nil, nil, &DecodeError{Message: fmt.Sprintf("unknown matcher tag %q", string(tag))}
	}
	argument := pattern
	if kind == kindFamily {
		argument = familyFromWireLetters(pattern)
	}
	return buildMatcher(caches, kind, negated, offset, argument)
}

// EncodeBinary produces the compact MessagePack representation of an
// Enhancements value, per the version-2 wire format.
func EncodeBinary(e *Enhancements) ([]byte, error) {
	rulesWire := make([]interface{}, 0, len(e.rules))
	for _, r := range e.rules {
		matchers := make([]string, 0, len(r.exceptionMatchers)+len(r.frameMatchers))
		for _, em := range r.exceptionMatchers {
			matchers = append(matchers, exceptionMatcherToWire(em))
		}
		for _, fm := range r.frameMatchers {
			matchers = append(matchers, frameMatcherToWire(fm))
		}

		actionsWire := make([]interface{}, 0, len(r.actions))
		for _, a := range r.actions {
			switch v := a.(type) {
			case FlagAction:
				actionsWire = append(actionsWire, encodeFlagAction(v))
			case VarAction:
				actionsWire = append(actionsWire, []interface{}{varActionWireName(v.Name), encodeVarRHS(v)})
			}
		}

		rulesWire = append(rulesWire, []interface{}{matchers, actionsWire})
	}

	top := []interface{}{uint64(schemaVersion), []string{}, rulesWire}
	return msgpack.Marshal(top)
}

// FromBinary decodes a compact MessagePack representation into an
// Enhancements value. Only schema version 2 is accepted.
func FromBinary(data []byte, caches *Caches) (*Enhancements, error) {
	if caches == nil {
		caches = NoCaches()
	}

	var top []interface{}
	if err := msgpack.Unmarshal(data, &top); err != nil {
		return nil, &DecodeError{Message: err.Error()}
	}
	if len(top) != 3 {
		return nil, &DecodeError{Message: "expected a 3-element (version, bases, rules) tuple"}
	}

	version, ok := toUint64(top[0])
	if !ok || version != schemaVersion {
		return nil, &DecodeError{Message: fmt.Sprintf("unsupported schema version %v", top[0])}
	}

	rulesRaw, ok := top[2].([]interface{})
	if !ok {
		return nil, &DecodeError{Message: "expected a rules array"}
	}

	rules := make([]*Rule, 0, len(rulesRaw))
	for _, rr := range rulesRaw {
		rule, err := decodeRuleTuple(caches, rr)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return newEnhancements(rules), nil
}

func decodeRuleTuple(caches *Caches, raw interface{}) (*Rule, error) {
	tuple, ok := raw.([]interface{})
	if !ok || len(tuple) != 2 {
		return nil, &DecodeError{Message: "malformed rule tuple, expected (matchers, actions)"}
	}
	matchersRaw, ok := tuple[0].([]interface{})
	if !ok {
		return nil, &DecodeError{Message: "malformed matchers list"}
	}
	actionsRaw, ok := tuple[1].([]interface{})
	if !ok {
		return nil, &DecodeError{Message: "malformed actions list"}
	}

	var frameMatchers []FrameMatcher
	var exceptionMatchers []ExceptionMatcher
	for _, mr := range matchersRaw {
		wire, ok := mr.(string)
		if !ok {
			return nil, &DecodeError{Message: "matcher entries must be strings"}
		}
		fm, em, err := decodeMatcher(caches, wire)
		if err != nil {
			return nil, err
		}
		if fm != nil {
			frameMatchers = append(frameMatchers, fm)
		} else {
			exceptionMatchers = append(exceptionMatchers, em)
		}
	}

	actions := make([]Action, 0, len(actionsRaw))
	for _, ar := range actionsRaw {
		action, err := decodeActionEntry(ar)
		if err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}

	return &Rule{frameMatchers: frameMatchers, exceptionMatchers: exceptionMatchers, actions: actions}, nil
}

func decodeActionEntry(raw interface{}) (Action, error) {
	if n, ok := toInt64(raw); ok {
		return decodeFlagAction(n)
	}
	pair, ok := raw.([]interface{})
	if !ok || len(pair) != 2 {
		return nil, &DecodeError{Message: "var action must be a (name, rhs) pair"}
	}
	name, ok := pair[0].(string)
	if !ok {
		return nil, &DecodeError{Message: "var action name must be a string"}
	}
	varName, ok := varNameByWire[name]
	if !ok {
		return nil, &DecodeError{Message: fmt.Sprintf("unknown var action name %q", name)}
	}
	switch varName {
	case VarMinFrames, VarMaxFrames:
		n, ok := toUint64(pair[1])
		if !ok {
			return nil, &DecodeError{Message: fmt.Sprintf("%s requires an integer value", varName)}
		}
		return VarAction{Name: varName, IntValue: n}, nil
	case VarInvertStacktrace:
		b, ok := pair[1].(bool)
		if !ok {
			return nil, &DecodeError{Message: "invert-stacktrace requires a boolean value"}
		}
		return VarAction{Name: varName, BoolValue: b}, nil
	default:
		s, ok := pair[1].(string)
		if !ok {
			return nil, &DecodeError{Message: "category requires a string value"}
		}
		return VarAction{Name: varName, StrValue: s}, nil
	}
}

func toUint64(v interface{}) (uint64, bool) {
	switch n := v.(type) {
	case uint64:
		return n, true
	case int64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int8:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int16:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int32:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case uint8:
		return uint64(n), true
	case uint16:
		return uint64(n), true
	case uint32:
		return uint64(n), true
	default:
		return 0, false
	}
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	default:
		return 0, false
	}
}
