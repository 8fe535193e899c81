package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the grouping-enhancers engine.
var (
	ParseDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "enhancers_parse_duration_seconds",
			Help:    "Time taken to parse a textual rule-set",
			Buckets: prometheus.ExponentialBuckets(0.00001, 2, 20),
		},
	)

	ParseTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enhancers_parse_total",
			Help: "Total number of rule-set parse attempts",
		},
		[]string{"status"}, // status: success|error
	)

	RulesLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "enhancers_rules_loaded",
			Help: "Number of rules in the most recently parsed rule-set",
		},
	)

	RuleCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enhancers_rule_cache_hits_total",
			Help: "Rule-text-to-Rule cache hit/miss counts",
		},
		[]string{"result"}, // result: hit|miss
	)

	RegexCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enhancers_regex_cache_hits_total",
			Help: "Compiled-pattern cache hit/miss counts",
		},
		[]string{"result"},
	)

	ApplyModificationsDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "enhancers_apply_modifications_duration_seconds",
			Help:    "Time taken to run the modifier pass over one stack trace",
			Buckets: prometheus.ExponentialBuckets(0.000001, 2, 20),
		},
	)

	UpdateComponentsDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "enhancers_update_components_duration_seconds",
			Help:    "Time taken to run the updater pass over one stack trace",
			Buckets: prometheus.ExponentialBuckets(0.000001, 2, 20),
		},
	)

	FramesProcessed = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "enhancers_frames_processed",
			Help:    "Number of frames in stack traces processed by the engine",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	FramesTrimmedByMaxFrames = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "enhancers_frames_trimmed_by_max_frames_total",
			Help: "Total number of components whose contribution was trimmed by a max-frames action",
		},
	)

	BinaryDecodeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enhancers_binary_decode_total",
			Help: "Total number of compact binary decode attempts",
		},
		[]string{"status"}, // status: success|error
	)

	BinaryEncodeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "enhancers_binary_encode_duration_seconds",
			Help:    "Time taken to encode a rule-set into its compact binary form",
			Buckets: prometheus.ExponentialBuckets(0.00001, 2, 20),
		},
	)
)
