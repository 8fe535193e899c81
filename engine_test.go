package enhancers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyHasNoRules(t *testing.T) {
	e := Empty()
	assert.Empty(t, e.Rules())
}

func TestParsePartitionsModifierAndUpdaterRules(t *testing.T) {
	e := buildEnhancements(t, "function:f +app\nfunction:g +group\nfunction:h category=x\n")
	require.Len(t, e.Rules(), 3)
	assert.Len(t, e.modifierRules, 2) // +app and category=x
	assert.Len(t, e.updaterRules, 2)  // +app and +group
}

func TestExtendAppendsAndRepartitions(t *testing.T) {
	a := buildEnhancements(t, "function:f +app\n")
	b := buildEnhancements(t, "function:g +group\n")

	a.Extend(b)
	assert.Len(t, a.Rules(), 2)
	assert.Len(t, a.modifierRules, 1)
	assert.Len(t, a.updaterRules, 2)
}

func TestExtendWithNilIsNoOp(t *testing.T) {
	a := buildEnhancements(t, "function:f +app\n")
	a.Extend(nil)
	assert.Len(t, a.Rules(), 1)
}

func TestParseRuleOrderIsPreserved(t *testing.T) {
	e := buildEnhancements(t, "function:a +app\nfunction:b +app\nfunction:c +app\n")
	require.Len(t, e.Rules(), 3)
	assert.Equal(t, "function:a +app", e.Rules()[0].String())
	assert.Equal(t, "function:b +app", e.Rules()[1].String())
	assert.Equal(t, "function:c +app", e.Rules()[2].String())
}
