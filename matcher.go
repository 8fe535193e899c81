package enhancers

import (
	"fmt"
	"strings"

	"github.com/coregx/coregex"
)

// FrameOffset selects which frame, relative to the index under evaluation,
// a frame matcher actually inspects.
type FrameOffset uint8

const (
	OffsetNone FrameOffset = iota
	OffsetCaller
	OffsetCallee
)

func resolveOffset(off FrameOffset, idx, n int) (int, bool) {
	switch off {
	case OffsetCaller:
		idx--
	case OffsetCallee:
		idx++
	}
	if idx < 0 || idx >= n {
		return 0, false
	}
	return idx, true
}

// FrameMatcher is a predicate evaluated against a frame at a given index,
// honoring its own offset and negation.
type FrameMatcher interface {
	matches(frames []*Frame, idx int) bool
	offset() FrameOffset
	negated() bool
	// body renders the matcher without caller/callee bracket decoration,
	// e.g. "path:*/test.js" or "!family:native".
	body() string
	wireTag() byte
	wirePattern() string
}

// ExceptionMatcher is a predicate evaluated against exception metadata.
type ExceptionMatcher interface {
	matches(data ExceptionData) bool
	body() string
	negated() bool
	wireTag() byte
	wirePattern() string
}

type fieldMatcher struct {
	field    FrameField
	kind     matcherKind
	name     string // canonical matcher name as written ("path", "package", ...)
	pathLike bool
	neg      bool
	off      FrameOffset
	pattern  string
	regex    *coregex.Regex
}

func (m *fieldMatcher) offset() FrameOffset { return m.off }
func (m *fieldMatcher) negated() bool       { return m.neg }
func (m *fieldMatcher) wireTag() byte       { return matcherTagByKind[m.kind] }
func (m *fieldMatcher) wirePattern() string { return m.pattern }

func (m *fieldMatcher) body() string {
	return fmt.Sprintf("%s%s:%s", negPrefix(m.neg), m.name, m.pattern)
}

func (m *fieldMatcher) matches(frames []*Frame, idx int) bool {
	j, ok := resolveOffset(m.off, idx, len(frames))
	if !ok {
		return false
	}
	value, present := m.field.Get(frames[j])
	if !present {
		return m.neg
	}
	return m.matchValue(value) != m.neg
}

func (m *fieldMatcher) matchValue(value string) bool {
	if m.regex.MatchString(value) {
		return true
	}
	if m.pathLike && !strings.HasPrefix(value, "/") {
		return m.regex.MatchString("/" + value)
	}
	return false
}

type familyMatcher struct {
	neg     bool
	off     FrameOffset
	pattern string
	bits    Family
}

func (m *familyMatcher) offset() FrameOffset { return m.off }
func (m *familyMatcher) negated() bool       { return m.neg }
func (m *familyMatcher) wireTag() byte       { return 'F' }
func (m *familyMatcher) wirePattern() string { return familyWirePattern(m.pattern) }
func (m *familyMatcher) body() string {
	return fmt.Sprintf("%sfamily:%s", negPrefix(m.neg), m.pattern)
}

// familyWirePattern expands comma-separated family names into the
// single-letter alphabet the binary encoding uses (N=native,
// J=javascript, a=all); unknown names are dropped, matching the textual
// matcher's own "ignore unknown" tolerance.
func familyWirePattern(names string) string {
	var b strings.Builder
	for _, name := range strings.Split(names, ",") {
		switch strings.TrimSpace(name) {
		case "native":
			b.WriteByte('N')
		case "javascript":
			b.WriteByte('J')
		case "all":
			b.WriteByte('a')
		}
	}
	return b.String()
}

// familyFromWireLetters is the inverse of familyWirePattern, used when
// decoding the binary form: 'N'/'J'/'a' expand back to comma-joined
// family names, unknown letters are ignored.
func familyFromWireLetters(letters string) string {
	var parts []string
	for _, c := range letters {
		switch c {
		case 'N':
			parts = append(parts, "native")
		case 'J':
			parts = append(parts, "javascript")
		case 'a':
			parts = append(parts, "all")
		}
	}
	return strings.Join(parts, ",")
}

func (m *familyMatcher) matches(frames []*Frame, idx int) bool {
	j, ok := resolveOffset(m.off, idx, len(frames))
	if !ok {
		return false
	}
	return m.bits.Matches(frames[j].Family) != m.neg
}

type inAppMatcher struct {
	neg      bool
	off      FrameOffset
	expected bool
	pattern  string
}

func (m *inAppMatcher) offset() FrameOffset { return m.off }
func (m *inAppMatcher) negated() bool       { return m.neg }
func (m *inAppMatcher) wireTag() byte       { return 'a' }
func (m *inAppMatcher) wirePattern() string { return m.pattern }
func (m *inAppMatcher) body() string {
	return fmt.Sprintf("%sapp:%s", negPrefix(m.neg), m.pattern)
}

func (m *inAppMatcher) matches(frames []*Frame, idx int) bool {
	j, ok := resolveOffset(m.off, idx, len(frames))
	if !ok {
		return false
	}
	return (frames[j].InApp.BoolValue() == m.expected) != m.neg
}

type exceptionFieldMatcher struct {
	field   ExceptionField
	kind    matcherKind
	name    string
	neg     bool
	pattern string
	regex   *coregex.Regex
}

func (m *exceptionFieldMatcher) negated() bool       { return m.neg }
func (m *exceptionFieldMatcher) wireTag() byte       { return matcherTagByKind[m.kind] }
func (m *exceptionFieldMatcher) wirePattern() string { return m.pattern }

func (m *exceptionFieldMatcher) body() string {
	return fmt.Sprintf("%s%s:%s", negPrefix(m.neg), m.name, m.pattern)
}

func (m *exceptionFieldMatcher) matches(data ExceptionData) bool {
	value := m.field.Get(data)
	return m.regex.MatchString(value) != m.neg
}

func negPrefix(neg bool) string {
	if neg {
		return "!"
	}
	return ""
}

// parseBool interprets the in-app / invert-stacktrace boolean vocabulary.
func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "1", "yes", "true":
		return true, true
	case "0", "no", "false":
		return false, true
	default:
		return false, false
	}
}
