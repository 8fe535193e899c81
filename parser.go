package enhancers

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Parse parses a textual rule set (one rule per line, '#'-comments, blank
// lines ignored) into an Enhancements value. Each non-blank, non-comment
// line is looked up in caches.Rules before being parsed; order is
// semantically significant and preserved.
func Parse(text string, caches *Caches) (*Enhancements, error) {
	if caches == nil {
		caches = NoCaches()
	}
	var rules []*Rule
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rule, err := caches.Rules.GetOrInsert(line, func() (*Rule, error) {
			return parseRule(line, caches)
		})
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return newEnhancements(rules), nil
}

// ParseRule parses a single rule line in isolation, without consulting or
// populating a rule cache.
func ParseRule(line string, caches *Caches) (*Rule, error) {
	if caches == nil {
		caches = NoCaches()
	}
	return parseRule(strings.TrimSpace(line), caches)
}

func parseRule(line string, caches *Caches) (*Rule, error) {
	s := newScanner(line)

	frameMatchers, exceptionMatchers, err := parseMatchers(s, caches, line)
	if err != nil {
		return nil, err
	}
	if len(frameMatchers) == 0 && len(exceptionMatchers) == 0 {
		return nil, &ParseError{Message: "rule has no matchers", Line: line, Position: 0}
	}

	actions, err := parseActions(s, line)
	if err != nil {
		return nil, err
	}
	if len(actions) == 0 {
		return nil, &ParseError{Message: "rule has no actions", Line: line, Position: s.pos}
	}

	s.skipSpaces()
	if !s.eof() {
		return nil, &ParseError{Message: "unexpected trailing characters", Line: line, Position: s.pos}
	}

	return &Rule{
		frameMatchers:     frameMatchers,
		exceptionMatchers: exceptionMatchers,
		actions:           actions,
	}, nil
}

type rawMatcher struct {
	negated  bool
	kind     matcherKind
	argument string
}

// parseMatchers consumes matchers = caller_matcher? frame_matcher+
// callee_matcher?, dispatching each parsed matcher into the frame or
// exception matcher list as appropriate.
func parseMatchers(s *scanner, caches *Caches, line string) ([]FrameMatcher, []ExceptionMatcher, error) {
	var frameMatchers []FrameMatcher
	var exceptionMatchers []ExceptionMatcher

	appendMatcher := func(raw rawMatcher, offset FrameOffset) error {
		fm, em, err := buildMatcher(caches, raw.kind, raw.negated, offset, raw.argument)
		if err != nil {
			return err
		}
		if fm != nil {
			frameMatchers = append(frameMatchers, fm)
		} else {
			exceptionMatchers = append(exceptionMatchers, em)
		}
		return nil
	}

	s.skipSpaces()
	if r, ok := s.peek(); ok && r == '[' {
		mark := s.mark()
		s.advance()
		s.skipSpaces()
		raw, ok, err := tryParseRawMatcher(s, line, true)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			return nil, nil, &ParseError{Message: "expected a matcher inside '[...]'", Line: line, Position: s.pos}
		}
		s.skipSpaces()
		if r, ok := s.peek(); !ok || r != ']' {
			s.reset(mark)
			return nil, nil, &ParseError{Message: "unterminated caller matcher, expected ']'", Line: line, Position: s.pos}
		}
		s.advance()
		s.skipSpaces()
		if r, ok := s.peek(); !ok || r != '|' {
			return nil, nil, &ParseError{Message: "caller matcher must be followed by '|'", Line: line, Position: s.pos}
		}
		s.advance()
		if err := appendMatcher(raw, OffsetCaller); err != nil {
			return nil, nil, err
		}
	}

	count := 0
	for {
		s.skipSpaces()
		// callee_matcher = "|" "[" frame_matcher "]"
		if r, ok := s.peek(); ok && r == '|' {
			if r2, ok2 := s.peekAt(1); ok2 && r2 == '[' {
				s.advance()
				s.advance()
				s.skipSpaces()
				raw, ok, err := tryParseRawMatcher(s, line, true)
				if err != nil {
					return nil, nil, err
				}
				if !ok {
					return nil, nil, &ParseError{Message: "expected a matcher inside '|[...]'", Line: line, Position: s.pos}
				}
				s.skipSpaces()
				if r, ok := s.peek(); !ok || r != ']' {
					return nil, nil, &ParseError{Message: "unterminated callee matcher, expected ']'", Line: line, Position: s.pos}
				}
				s.advance()
				if err := appendMatcher(raw, OffsetCallee); err != nil {
					return nil, nil, err
				}
				break
			}
		}

		mark := s.mark()
		raw, ok, err := tryParseRawMatcher(s, line, false)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			s.reset(mark)
			break
		}
		if err := appendMatcher(raw, OffsetNone); err != nil {
			return nil, nil, err
		}
		count++
	}

	if count == 0 {
		return nil, nil, &ParseError{Message: "expected at least one matcher", Line: line, Position: s.pos}
	}

	return frameMatchers, exceptionMatchers, nil
}

// tryParseRawMatcher attempts frame_matcher = negation? matcher_type ":"
// argument. It backtracks and returns ok=false, nil error when the input
// at the current position isn't shaped like a matcher at all (no ':'
// immediately after the name) so the caller can fall through to action
// parsing. inBracket is set inside a caller/callee bracket, where an
// unquoted argument also ends at ']'.
func tryParseRawMatcher(s *scanner, line string, inBracket bool) (rawMatcher, bool, error) {
	mark := s.mark()

	negated := false
	if r, ok := s.peek(); ok && r == '!' {
		negated = true
		s.advance()
	}

	var name string
	if r, ok := s.peek(); ok && r == '"' {
		s.advance()
		name = s.scanWhile(isQuotedIdentRune)
		if r, ok := s.peek(); !ok || r != '"' {
			s.reset(mark)
			return rawMatcher{}, false, nil
		}
		s.advance()
	} else {
		name = s.scanWhile(isIdentRune)
		if name == "" {
			s.reset(mark)
			return rawMatcher{}, false, nil
		}
	}

	if r, ok := s.peek(); !ok || r != ':' {
		s.reset(mark)
		return rawMatcher{}, false, nil
	}
	s.advance() // consume ':'

	kind, ok := matcherNamesByAlias[name]
	if !ok {
		return rawMatcher{}, false, newUnknownMatcherError(line, mark, name)
	}

	argument, err := scanArgument(s, line, inBracket)
	if err != nil {
		return rawMatcher{}, false, err
	}

	return rawMatcher{negated: negated, kind: kind, argument: argument}, true, nil
}

// scanArgument consumes argument = quoted_string | unquoted_token.
func scanArgument(s *scanner, line string, inBracket bool) (string, error) {
	r, ok := s.peek()
	if !ok {
		return "", &ParseError{Message: "expected a matcher argument", Line: line, Position: s.pos}
	}
	if r != '"' {
		var arg string
		if inBracket {
			arg = s.scanWhile(func(r rune) bool { return !unicode.IsSpace(r) && r != ']' })
		} else {
			arg = s.scanUntilSpace()
		}
		if arg == "" {
			return "", &ParseError{Message: "expected a matcher argument", Line: line, Position: s.pos}
		}
		return arg, nil
	}

	s.advance() // opening quote
	var b strings.Builder
	for {
		r, ok := s.peek()
		if !ok {
			return "", &ParseError{Message: "unterminated quoted argument", Line: line, Position: s.pos}
		}
		if r == '"' {
			s.advance()
			return b.String(), nil
		}
		if r == '\\' {
			s.advance()
			escaped, ok := s.peek()
			if !ok {
				return "", &ParseError{Message: "unterminated escape sequence", Line: line, Position: s.pos}
			}
			if escaped != '\\' {
				return "", &ParseError{Message: fmt.Sprintf("unsupported escape sequence '\\%c'", escaped), Line: line, Position: s.pos}
			}
			s.advance()
			b.WriteRune('\\')
			continue
		}
		b.WriteRune(r)
		s.advance()
	}
}

var flagNames = map[string]FlagActionType{
	"group":    ActionGroup,
	"app":      ActionApp,
	"prefix":   ActionPrefix,
	"sentinel": ActionSentinel,
}

var varNames = map[string]VarActionName{
	"min-frames":        VarMinFrames,
	"max-frames":        VarMaxFrames,
	"invert-stacktrace": VarInvertStacktrace,
	"category":          VarCategory,
}

// parseActions consumes actions = action+ opt(comment), where comment is a
// "#" and everything after it to the end of the line.
func parseActions(s *scanner, line string) ([]Action, error) {
	var actions []Action
	for {
		s.skipSpaces()
		if r, ok := s.peek(); ok && r == '#' {
			s.skipToEnd()
			break
		}
		if s.eof() {
			break
		}
		action, err := parseAction(s, line)
		if err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}
	return actions, nil
}

func parseAction(s *scanner, line string) (Action, error) {
	rng := RangeNone
	if r, ok := s.peek(); ok && (r == '^' || r == 'v') {
		if next, ok2 := s.peekAt(1); ok2 && (next == '+' || next == '-') {
			if r == '^' {
				rng = RangeUp
			} else {
				rng = RangeDown
			}
			s.advance()
		}
	}

	if r, ok := s.peek(); ok && (r == '+' || r == '-') {
		flag := r == '+'
		s.advance()
		name := s.scanWhile(isIdentRune)
		actionType, ok := flagNames[name]
		if !ok {
			return nil, &ParseError{Message: fmt.Sprintf("unknown flag action %q", name), Line: line, Position: s.pos}
		}
		return FlagAction{Type: actionType, Flag: flag, Range: rng}, nil
	}

	if rng != RangeNone {
		return nil, &ParseError{Message: "range sigil must be followed by '+' or '-'", Line: line, Position: s.pos}
	}

	name := s.scanWhile(isIdentRune)
	if name == "" {
		return nil, &ParseError{Message: "expected an action", Line: line, Position: s.pos}
	}
	varName, ok := varNames[name]
	if !ok {
		return nil, &ParseError{Message: fmt.Sprintf("unknown var action %q", name), Line: line, Position: s.pos}
	}
	s.skipSpaces()
	if r, ok := s.peek(); !ok || r != '=' {
		return nil, &ParseError{Message: "expected '=' after var action name", Line: line, Position: s.pos}
	}
	s.advance()
	s.skipSpaces()
	rhs := s.scanWhile(isIdentRune)
	if rhs == "" {
		return nil, &ParseError{Message: "expected a value after '='", Line: line, Position: s.pos}
	}

	switch varName {
	case VarMinFrames, VarMaxFrames:
		n, err := strconv.ParseUint(rhs, 10, 64)
		if err != nil {
			return nil, &ParseError{Message: fmt.Sprintf("%s requires a non-negative integer, got %q", varName, rhs), Line: line, Position: s.pos}
		}
		return VarAction{Name: varName, IntValue: n}, nil
	case VarInvertStacktrace:
		b, ok := parseBool(rhs)
		if !ok {
			return nil, &ParseError{Message: fmt.Sprintf("invert-stacktrace requires a boolean, got %q", rhs), Line: line, Position: s.pos}
		}
		return VarAction{Name: varName, BoolValue: b}, nil
	default: // VarCategory
		return VarAction{Name: varName, StrValue: rhs}, nil
	}
}
