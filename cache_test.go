package enhancers

import (
	"testing"

	"github.com/coregx/coregex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleCacheReturnsSharedPointerOnHit(t *testing.T) {
	cache := NewRuleCache(8)
	calls := 0
	compute := func() (*Rule, error) {
		calls++
		return &Rule{}, nil
	}

	first, err := cache.GetOrInsert("line", compute)
	require.NoError(t, err)
	second, err := cache.GetOrInsert("line", compute)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestRuleCacheZeroCapacityAlwaysRecomputes(t *testing.T) {
	cache := NewRuleCache(0)
	calls := 0
	compute := func() (*Rule, error) {
		calls++
		return &Rule{}, nil
	}

	first, err := cache.GetOrInsert("line", compute)
	require.NoError(t, err)
	second, err := cache.GetOrInsert("line", compute)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, 2, calls)
}

func TestRuleCachePropagatesComputeError(t *testing.T) {
	cache := NewRuleCache(8)
	wantErr := &ParseError{Message: "boom"}
	_, err := cache.GetOrInsert("line", func() (*Rule, error) { return nil, wantErr })
	assert.Equal(t, wantErr, err)
}

func TestRegexCacheReturnsSharedCompiledRegex(t *testing.T) {
	cache := NewRegexCache(8)
	calls := 0
	key := regexKey{pattern: "(?i)^foo$", pathLike: false}
	compute := func() (*coregex.Regex, error) {
		calls++
		return coregex.Compile("(?i)^foo$")
	}

	first, err := cache.getOrInsert(key, compute)
	require.NoError(t, err)
	second, err := cache.getOrInsert(key, compute)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestRegexCacheKeyIncludesPathMode(t *testing.T) {
	cache := NewRegexCache(8)
	calls := 0
	compute := func() (*coregex.Regex, error) {
		calls++
		return coregex.Compile("(?i)^foo$")
	}

	_, err := cache.getOrInsert(regexKey{pattern: "foo", pathLike: false}, compute)
	require.NoError(t, err)
	_, err = cache.getOrInsert(regexKey{pattern: "foo", pathLike: true}, compute)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
}

func TestCachesCompileRegexSucceedsForValidPattern(t *testing.T) {
	caches := NoCaches()
	re, err := caches.compileRegex("foo*", true)
	require.NoError(t, err)
	assert.True(t, re.MatchString("foobar"))
}

func TestNewCachesNonPositiveCapacityDisablesCaching(t *testing.T) {
	caches := NewCaches(0, 0)
	_, ok := caches.Rules.(nullRuleCache)
	assert.True(t, ok)
	_, ok2 := caches.Regexp.(nullRegexCache)
	assert.True(t, ok2)
}
