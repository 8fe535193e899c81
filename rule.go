package enhancers

import "strings"

// Rule is an immutable, shareable aggregate: a set of exception matchers
// that must all match for the rule to be eligible, a set of frame matchers
// that must all match at a given index, and an ordered list of actions.
// Rules are passed around as *Rule so the same parsed rule can be shared
// between the "all rules" list and the modifier/updater partitions without
// copying.
type Rule struct {
	exceptionMatchers []ExceptionMatcher
	frameMatchers     []FrameMatcher
	actions           []Action
}

// FrameMatchers returns the rule's frame predicates, in declaration order.
func (r *Rule) FrameMatchers() []FrameMatcher { return r.frameMatchers }

// ExceptionMatchers returns the rule's exception predicates, in declaration
// order.
func (r *Rule) ExceptionMatchers() []ExceptionMatcher { return r.exceptionMatchers }

// Actions returns the rule's actions, in declaration order.
func (r *Rule) Actions() []Action { return r.actions }

// String renders the rule's canonical printable form: exception matchers,
// then frame matchers (bracket-decorated for caller/callee offsets), then
// actions, space-separated. Equal rules always print equally, and this
// form is what appears inside generated hint strings.
func (r *Rule) String() string {
	parts := make([]string, 0, len(r.exceptionMatchers)+len(r.frameMatchers)+len(r.actions))
	for _, m := range r.exceptionMatchers {
		parts = append(parts, m.body())
	}
	for _, m := range r.frameMatchers {
		body := m.body()
		switch m.offset() {
		case OffsetCaller:
			body = "[" + body + "]|"
		case OffsetCallee:
			body = "|[" + body + "]"
		}
		parts = append(parts, body)
	}
	for _, a := range r.actions {
		parts = append(parts, a.String())
	}
	return strings.Join(parts, " ")
}

// matchesFrame reports whether every frame matcher matches at idx.
func (r *Rule) matchesFrame(frames []*Frame, idx int) bool {
	for _, m := range r.frameMatchers {
		if !m.matches(frames, idx) {
			return false
		}
	}
	return true
}

// matchesException reports whether every exception matcher matches.
func (r *Rule) matchesException(data ExceptionData) bool {
	for _, m := range r.exceptionMatchers {
		if !m.matches(data) {
			return false
		}
	}
	return true
}

// hasModifierAction reports whether the rule belongs in the modifier
// partition (at least one app flag-action or category var-action).
func (r *Rule) hasModifierAction() bool {
	for _, a := range r.actions {
		if isModifierAction(a) {
			return true
		}
	}
	return false
}

// hasUpdaterAction reports whether the rule belongs in the updater
// partition (at least one action other than the category var-action).
func (r *Rule) hasUpdaterAction() bool {
	for _, a := range r.actions {
		if isUpdaterAction(a) {
			return true
		}
	}
	return false
}
