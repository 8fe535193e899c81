package enhancers

// Enhancements is an immutable, shareable bundle of parsed rules, plus the
// modifier/updater partitions computed from them. It is safe to share
// freely once constructed: nothing mutates it afterwards except Extend,
// which recomputes the partitions.
type Enhancements struct {
	rules         []*Rule
	modifierRules []*Rule
	updaterRules  []*Rule
}

func newEnhancements(rules []*Rule) *Enhancements {
	e := &Enhancements{rules: rules}
	e.partition()
	return e
}

func (e *Enhancements) partition() {
	e.modifierRules = nil
	e.updaterRules = nil
	for _, r := range e.rules {
		if r.hasModifierAction() {
			e.modifierRules = append(e.modifierRules, r)
		}
		if r.hasUpdaterAction() {
			e.updaterRules = append(e.updaterRules, r)
		}
	}
}

// Empty returns an Enhancements with no rules.
func Empty() *Enhancements {
	return newEnhancements(nil)
}

// Extend appends other's rules to e's and recomputes the modifier/updater
// partitions. Duplicates are not removed.
func (e *Enhancements) Extend(other *Enhancements) {
	if other == nil {
		return
	}
	e.rules = append(e.rules, other.rules...)
	e.partition()
}

// Rules returns every parsed rule, in declaration order. The returned
// slice must not be mutated by callers.
func (e *Enhancements) Rules() []*Rule {
	return e.rules
}
