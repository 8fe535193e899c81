package enhancers

import (
	"github.com/coregx/coregex"
	lru "github.com/hashicorp/golang-lru/v2"
)

// RuleCache caches parsed rules keyed by their trimmed source line. A
// capacity of 0 must disable caching entirely.
type RuleCache interface {
	GetOrInsert(line string, compute func() (*Rule, error)) (*Rule, error)
}

// regexKey is the regex-cache key: a glob pattern together with the
// path-like mode it was compiled under.
type regexKey struct {
	pattern  string
	pathLike bool
}

// RegexCache caches compiled regexes keyed by (pattern, path_mode).
type RegexCache interface {
	getOrInsert(key regexKey, compute func() (*coregex.Regex, error)) (*coregex.Regex, error)
}

// nullRuleCache never stores anything; every lookup recomputes.
type nullRuleCache struct{}

func (nullRuleCache) GetOrInsert(_ string, compute func() (*Rule, error)) (*Rule, error) {
	return compute()
}

// nullRegexCache never stores anything; every lookup recompiles.
type nullRegexCache struct{}

func (nullRegexCache) getOrInsert(_ regexKey, compute func() (*coregex.Regex, error)) (*coregex.Regex, error) {
	return compute()
}

type lruRuleCache struct {
	cache *lru.Cache[string, *Rule]
}

// NewRuleCache builds a RuleCache. A capacity <= 0 disables caching.
func NewRuleCache(capacity int) RuleCache {
	if capacity <= 0 {
		return nullRuleCache{}
	}
	c, err := lru.New[string, *Rule](capacity)
	if err != nil {
		// lru.New only fails for a non-positive size, already excluded above.
		return nullRuleCache{}
	}
	return &lruRuleCache{cache: c}
}

func (c *lruRuleCache) GetOrInsert(line string, compute func() (*Rule, error)) (*Rule, error) {
	if rule, ok := c.cache.Get(line); ok {
		return rule, nil
	}
	rule, err := compute()
	if err != nil {
		return nil, err
	}
	c.cache.Add(line, rule)
	return rule, nil
}

type lruRegexCache struct {
	cache *lru.Cache[regexKey, *coregex.Regex]
}

// NewRegexCache builds a RegexCache. A capacity <= 0 disables caching.
func NewRegexCache(capacity int) RegexCache {
	if capacity <= 0 {
		return nullRegexCache{}
	}
	c, err := lru.New[regexKey, *coregex.Regex](capacity)
	if err != nil {
		return nullRegexCache{}
	}
	return &lruRegexCache{cache: c}
}

func (c *lruRegexCache) getOrInsert(key regexKey, compute func() (*coregex.Regex, error)) (*coregex.Regex, error) {
	if re, ok := c.cache.Get(key); ok {
		return re, nil
	}
	re, err := compute()
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, re)
	return re, nil
}

// Caches bundles the rule cache and regex cache the engine consults while
// parsing text or constructing matchers from the binary form. Both are
// injected collaborators, never singletons; construct with NewCaches or
// assemble the two caches independently.
type Caches struct {
	Rules  RuleCache
	Regexp RegexCache
}

// NewCaches builds a Caches whose two LRUs are sized independently by
// ruleCapacity and regexCapacity. A capacity <= 0 disables the
// corresponding cache.
func NewCaches(ruleCapacity, regexCapacity int) *Caches {
	return &Caches{
		Rules:  NewRuleCache(ruleCapacity),
		Regexp: NewRegexCache(regexCapacity),
	}
}

// NoCaches returns a Caches with both layers disabled.
func NoCaches() *Caches {
	return &Caches{Rules: nullRuleCache{}, Regexp: nullRegexCache{}}
}

func (c *Caches) compileRegex(pattern string, pathLike bool) (*coregex.Regex, error) {
	key := regexKey{pattern: pattern, pathLike: pathLike}
	return c.Regexp.getOrInsert(key, func() (*coregex.Regex, error) {
		source := translatePattern(pattern, pathLike)
		re, err := coregex.Compile(source)
		if err != nil {
			return nil, &PatternError{Pattern: pattern, Cause: err}
		}
		return re, nil
	})
}
