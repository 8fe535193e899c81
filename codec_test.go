package enhancers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestEncodeDecodeRoundTripSimpleRule(t *testing.T) {
	e := buildEnhancements(t, `function:handle* +app`)
	data, err := EncodeBinary(e)
	require.NoError(t, err)

	decoded, err := FromBinary(data, NoCaches())
	require.NoError(t, err)
	require.Len(t, decoded.Rules(), 1)
	assert.Equal(t, e.Rules()[0].String(), decoded.Rules()[0].String())
}

func TestEncodeDecodeRoundTripEveryMatcherKind(t *testing.T) {
	e := buildEnhancements(t, `type:*Error value:*timeout* mechanism:generic module:m function:f category:c path:p package:pkg family:native,javascript app:yes +group -app ^+prefix v-sentinel min-frames=2 max-frames=9 invert-stacktrace=true category=oops`)
	data, err := EncodeBinary(e)
	require.NoError(t, err)

	decoded, err := FromBinary(data, NoCaches())
	require.NoError(t, err)
	require.Len(t, decoded.Rules(), 1)
	assert.Equal(t, e.Rules()[0].String(), decoded.Rules()[0].String())
}

func TestEncodeDecodeRoundTripOffsetsAndNegation(t *testing.T) {
	e := buildEnhancements(t, `[!function:caller]| !family:native |[function:callee] +app`)
	data, err := EncodeBinary(e)
	require.NoError(t, err)

	decoded, err := FromBinary(data, NoCaches())
	require.NoError(t, err)
	require.Len(t, decoded.Rules(), 1)
	assert.Equal(t, e.Rules()[0].String(), decoded.Rules()[0].String())
}

func TestFromBinaryRejectsWrongVersion(t *testing.T) {
	bad := mustMarshal(t, []interface{}{uint64(1), []string{}, []interface{}{}})
	_, err := FromBinary(bad, NoCaches())
	require.Error(t, err)
	var derr *DecodeError
	require.ErrorAs(t, err, &derr)
}

func TestFromBinaryRejectsMalformedTopLevel(t *testing.T) {
	bad := mustMarshal(t, []interface{}{uint64(2), []string{}})
	_, err := FromBinary(bad, NoCaches())
	require.Error(t, err)
}

func TestFromBinaryRejectsUnknownMatcherTag(t *testing.T) {
	bad := mustMarshal(t, []interface{}{
		uint64(2),
		[]string{},
		[]interface{}{
			[]interface{}{[]string{"Zbogus"}, []interface{}{int64(0)}},
		},
	})
	_, err := FromBinary(bad, NoCaches())
	require.Error(t, err)
}

func TestFromBinaryRejectsOutOfRangeFlagAction(t *testing.T) {
	bad := mustMarshal(t, []interface{}{
		uint64(2),
		[]string{},
		[]interface{}{
			[]interface{}{[]string{"mfoo"}, []interface{}{int64(4)}},
		},
	})
	_, err := FromBinary(bad, NoCaches())
	require.Error(t, err)
}

func TestEncodeBinaryOrdersExceptionMatchersBeforeFrameMatchers(t *testing.T) {
	e := buildEnhancements(t, `function:f type:E +app`)
	data, err := EncodeBinary(e)
	require.NoError(t, err)

	decoded, err := FromBinary(data, NoCaches())
	require.NoError(t, err)
	rule := decoded.Rules()[0]
	require.Len(t, rule.ExceptionMatchers(), 1)
	require.Len(t, rule.FrameMatchers(), 1)

	var top []interface{}
	require.NoError(t, msgpack.Unmarshal(data, &top))
	ruleWire := top[2].([]interface{})[0].([]interface{})
	assert.Equal(t, []interface{}{"tE", "ff"}, ruleWire[0])
}

func mustMarshal(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := msgpack.Marshal(v)
	require.NoError(t, err)
	return data
}
