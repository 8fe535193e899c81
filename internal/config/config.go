// Package config loads engine-level tunables: cache capacities and the
// default bundled rule-set path. Priority is env vars > config file >
// defaults, matching the project's existing viper-based configuration
// style.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the engine's runtime tunables.
type Config struct {
	Caches      CachesConfig `mapstructure:"caches"`
	DefaultRules RulesConfig `mapstructure:"default_rules"`
}

// CachesConfig sizes the rule and regex LRUs the engine is constructed
// with. A capacity of 0 disables that cache.
type CachesConfig struct {
	RuleCapacity  int `mapstructure:"rule_capacity"`
	RegexCapacity int `mapstructure:"regex_capacity"`
}

// RulesConfig points at an optional bundled rule-set file loaded at
// startup by an embedding host.
type RulesConfig struct {
	Path string `mapstructure:"path"`
}

// Load reads configuration from an optional file and from environment
// variables prefixed ENHANCERS_ (e.g. ENHANCERS_CACHES_RULE_CAPACITY).
// configPath may be empty, in which case only defaults and environment
// overrides apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("ENHANCERS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("caches.rule_capacity", 1024)
	v.SetDefault("caches.regex_capacity", 1024)
	v.SetDefault("default_rules.path", "")
}
