package enhancers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseOneRule(t *testing.T, line string) *Rule {
	t.Helper()
	rule, err := ParseRule(line, NoCaches())
	require.NoError(t, err)
	require.NotNil(t, rule)
	return rule
}

func TestParseSimpleRule(t *testing.T) {
	rule := parseOneRule(t, `function:handle* +app`)
	require.Len(t, rule.FrameMatchers(), 1)
	require.Len(t, rule.Actions(), 1)
}

func TestParseAllMatcherAliases(t *testing.T) {
	cases := map[string]matcherKind{
		"module":          kindModule,
		"stack.module":    kindModule,
		"function":        kindFunction,
		"stack.function":  kindFunction,
		"category":        kindCategory,
		"path":            kindPath,
		"stack.abs_path":  kindPath,
		"package":         kindPackage,
		"stack.package":   kindPackage,
		"family":          kindFamily,
		"app":             kindApp,
		"type":            kindType,
		"error.type":      kindType,
		"value":           kindValue,
		"error.value":     kindValue,
		"mechanism":       kindMechanism,
		"error.mechanism": kindMechanism,
	}
	for alias, kind := range cases {
		arg := "foo"
		if kind == kindApp {
			arg = "yes"
		}
		line := `"` + alias + `":` + arg + ` +group`
		rule, err := ParseRule(line, NoCaches())
		require.NoErrorf(t, err, "alias %q", alias)
		require.NotNil(t, rule)
		if kind.isException() {
			require.Len(t, rule.ExceptionMatchers(), 1)
		} else {
			require.Len(t, rule.FrameMatchers(), 1)
		}
	}
}

func TestParseCallerAndCalleeBrackets(t *testing.T) {
	rule := parseOneRule(t, `[function:caller]| function:middle |[function:callee] +app`)
	require.Len(t, rule.FrameMatchers(), 3)
	assert.Equal(t, OffsetCaller, rule.FrameMatchers()[0].offset())
	assert.Equal(t, OffsetNone, rule.FrameMatchers()[1].offset())
	assert.Equal(t, OffsetCallee, rule.FrameMatchers()[2].offset())
}

func TestParseNegation(t *testing.T) {
	rule := parseOneRule(t, `!family:native +app`)
	assert.True(t, rule.FrameMatchers()[0].negated())
}

func TestParseQuotedArgumentWithEscape(t *testing.T) {
	rule := parseOneRule(t, `function:"foo\\bar" +app`)
	assert.Equal(t, `foo\bar`, rule.FrameMatchers()[0].(*fieldMatcher).pattern)
}

func TestParseUnterminatedQuoteErrors(t *testing.T) {
	_, err := ParseRule(`function:"unterminated +app`, NoCaches())
	require.Error(t, err)
}

func TestParseUnsupportedEscapeErrors(t *testing.T) {
	_, err := ParseRule(`function:"bad\nescape" +app`, NoCaches())
	require.Error(t, err)
}

func TestParseFlagActionForms(t *testing.T) {
	rule := parseOneRule(t, `function:f +group -app ^+prefix v-sentinel`)
	actions := rule.Actions()
	require.Len(t, actions, 4)
	assert.Equal(t, FlagAction{Type: ActionGroup, Flag: true, Range: RangeNone}, actions[0])
	assert.Equal(t, FlagAction{Type: ActionApp, Flag: false, Range: RangeNone}, actions[1])
	assert.Equal(t, FlagAction{Type: ActionPrefix, Flag: true, Range: RangeUp}, actions[2])
	assert.Equal(t, FlagAction{Type: ActionSentinel, Flag: false, Range: RangeDown}, actions[3])
}

func TestParseVarActionForms(t *testing.T) {
	rule := parseOneRule(t, `function:f min-frames=3 max-frames=10 invert-stacktrace=true category=foo`)
	actions := rule.Actions()
	require.Len(t, actions, 4)
	assert.Equal(t, VarAction{Name: VarMinFrames, IntValue: 3}, actions[0])
	assert.Equal(t, VarAction{Name: VarMaxFrames, IntValue: 10}, actions[1])
	assert.Equal(t, VarAction{Name: VarInvertStacktrace, BoolValue: true}, actions[2])
	assert.Equal(t, VarAction{Name: VarCategory, StrValue: "foo"}, actions[3])
}

func TestParseUnknownMatcherError(t *testing.T) {
	_, err := ParseRule(`bogus:x +app`, NoCaches())
	require.Error(t, err)
	var uerr *UnknownMatcherError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "bogus", uerr.Name)
}

func TestParseUnknownFlagActionError(t *testing.T) {
	_, err := ParseRule(`function:f +bogus`, NoCaches())
	require.Error(t, err)
}

func TestParseUnknownVarActionError(t *testing.T) {
	_, err := ParseRule(`function:f bogus=1`, NoCaches())
	require.Error(t, err)
}

func TestParseNoMatchersError(t *testing.T) {
	_, err := ParseRule(`+app`, NoCaches())
	require.Error(t, err)
}

func TestParseNoActionsError(t *testing.T) {
	_, err := ParseRule(`function:f`, NoCaches())
	require.Error(t, err)
}

func TestParseTrailingCharactersError(t *testing.T) {
	_, err := ParseRule(`function:f +app )`, NoCaches())
	require.Error(t, err)
}

func TestParseAllowsTrailingComment(t *testing.T) {
	rule := parseOneRule(t, `function:main category=entry  # set entry`)
	require.Len(t, rule.Actions(), 1)
	assert.Equal(t, "function:main category=entry", rule.String())
}

func TestParseTrailingCommentWithNoSpaceBeforeHash(t *testing.T) {
	rule := parseOneRule(t, `function:main +app #comment`)
	assert.Equal(t, "function:main +app", rule.String())
}

func TestParseCommentBeforeAnyActionIsStillAnError(t *testing.T) {
	_, err := ParseRule(`function:main # comment`, NoCaches())
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
}

func TestParseSkipsBlankAndCommentLines(t *testing.T) {
	text := "\n# a comment\n  \nfunction:f +app\n"
	e, err := Parse(text, NoCaches())
	require.NoError(t, err)
	assert.Len(t, e.Rules(), 1)
}

func TestParseUsesRuleCache(t *testing.T) {
	caches := NewCaches(16, 16)
	text := "function:f +app\nfunction:f +app\n"
	e, err := Parse(text, caches)
	require.NoError(t, err)
	require.Len(t, e.Rules(), 2)
	assert.Same(t, e.Rules()[0], e.Rules()[1])
}
