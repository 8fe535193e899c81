package enhancers

import "fmt"

// ApplyModificationsToFrames runs the modifier pass: for every eligible
// modifier rule, in declaration order, it collects the frame indices the
// rule matches against a snapshot of frames, then applies the rule's
// app-flag and category actions to those indices. The collect-then-mutate
// split is mandatory so that a rule's own writes never influence its own
// matching.
func ApplyModificationsToFrames(e *Enhancements, frames []*Frame, exception ExceptionData) {
	n := len(frames)
	for _, rule := range e.modifierRules {
		if !rule.matchesException(exception) {
			continue
		}

		indices := make([]int, 0, n)
		for i := 0; i < n; i++ {
			if rule.matchesFrame(frames, i) {
				indices = append(indices, i)
			}
		}

		for _, i := range indices {
			for _, action := range rule.actions {
				switch a := action.(type) {
				case VarAction:
					if a.Name == VarCategory {
						frames[i].Category = a.StrValue
					}
				case FlagAction:
					if a.Type == ActionApp {
						start, end := a.Range.sliceBounds(i, n)
						for j := start; j < end; j++ {
							frames[j].InApp = TriBoolFrom(a.Flag)
							frames[j].InAppLastChanged = rule
						}
					}
				}
			}
		}
	}
}

// UpdateFrameComponentsContributions runs the updater pass: seeds a
// StacktraceState, records in-app hints left by the modifier pass, applies
// every updater rule's group/prefix/sentinel/var actions to the matching
// components, and finally trims contributing components from the tail
// according to the accumulated max_frames.
func UpdateFrameComponentsContributions(e *Enhancements, components []*Component, frames []*Frame) StacktraceState {
	var state StacktraceState

	for i, frame := range frames {
		if frame.InAppLastChanged == nil {
			continue
		}
		verb := "out of app"
		if frame.InApp.BoolValue() {
			verb = "in-app"
		}
		components[i].Hint = fmt.Sprintf("marked %s by stack trace rule (%s)", verb, frame.InAppLastChanged.String())
	}

	n := len(frames)
	for _, rule := range e.updaterRules {
		for i := 0; i < n; i++ {
			if !rule.matchesFrame(frames, i) {
				continue
			}
			for _, action := range rule.actions {
				applyUpdaterAction(rule, action, components, i, n, &state)
			}
		}
	}

	trimByMaxFrames(components, state.MaxFrames)

	return state
}

func applyUpdaterAction(rule *Rule, action Action, components []*Component, i, n int, state *StacktraceState) {
	switch a := action.(type) {
	case FlagAction:
		switch a.Type {
		case ActionApp:
			// in_app was already committed during the modifier pass; the
			// hint from step 2 of the updater pass stands.
		case ActionGroup:
			start, end := a.Range.sliceBounds(i, n)
			for j := start; j < end; j++ {
				c := components[j]
				if c.Contributes == a.Flag {
					continue
				}
				c.Contributes = a.Flag
				if a.Flag {
					c.Hint = fmt.Sprintf("un-ignored by stack trace rule (%s)", rule.String())
				} else {
					c.Hint = fmt.Sprintf("ignored by stack trace rule (%s)", rule.String())
				}
			}
		case ActionPrefix:
			start, end := a.Range.sliceBounds(i, n)
			for j := start; j < end; j++ {
				components[j].IsPrefixFrame = a.Flag
				components[j].Hint = fmt.Sprintf("marked as prefix frame by stack trace rule (%s)", rule.String())
			}
		case ActionSentinel:
			start, end := a.Range.sliceBounds(i, n)
			for j := start; j < end; j++ {
				components[j].IsSentinelFrame = a.Flag
				components[j].Hint = fmt.Sprintf("marked as sentinel frame by stack trace rule (%s)", rule.String())
			}
		}
	case VarAction:
		switch a.Name {
		case VarMinFrames:
			state.MinFrames = Variable[uint64]{Value: a.IntValue, Setter: rule}
		case VarMaxFrames:
			state.MaxFrames = Variable[uint64]{Value: a.IntValue, Setter: rule}
		case VarInvertStacktrace:
			state.InvertStacktrace = Variable[bool]{Value: a.BoolValue, Setter: rule}
		case VarCategory:
			// category is modifier-only; no component-level effect here.
		}
	}
}

// trimByMaxFrames walks components from last to first, keeping at most
// max_frames contributing, and marks the rest as pruned with an
// explanatory hint.
func trimByMaxFrames(components []*Component, maxFrames Variable[uint64]) {
	if maxFrames.Value == 0 {
		return
	}

	unit := "frames"
	verb := "are"
	if maxFrames.Value == 1 {
		unit = "frame"
		verb = "is"
	}
	setterSuffix := ""
	if maxFrames.Setter != nil {
		setterSuffix = fmt.Sprintf(" by stack trace rule (%s)", maxFrames.Setter.String())
	}
	hint := fmt.Sprintf("ignored because only %d %s %s considered%s", maxFrames.Value, unit, verb, setterSuffix)

	contributing := 0
	for i := len(components) - 1; i >= 0; i-- {
		c := components[i]
		if !c.Contributes {
			continue
		}
		contributing++
		if uint64(contributing) > maxFrames.Value {
			c.Contributes = false
			c.Hint = hint
		}
	}
}
