package enhancers

import (
	"context"
	"strings"
	"time"

	"github.com/betracehq/grouping-enhancers/internal/observability"
)

// ParseWithContext wraps Parse with the engine's logging, tracing, and
// metrics instrumentation. Callers that don't need observability can call
// Parse directly.
func ParseWithContext(ctx context.Context, text string, caches *Caches) (*Enhancements, error) {
	lineCount := 1
	for _, r := range text {
		if r == '\n' {
			lineCount++
		}
	}
	ctx, span := observability.StartParseSpan(ctx, lineCount)
	start := time.Now()

	e, err := Parse(text, caches)

	duration := time.Since(start)
	ruleCount := 0
	if e != nil {
		ruleCount = len(e.Rules())
	}
	observability.RecordParseResult(span, ruleCount, err, duration)
	observability.LogParseResult(ctx, ruleCount, err)
	return e, err
}

// FromBinaryWithContext wraps FromBinary with the engine's logging, tracing,
// and metrics instrumentation.
func FromBinaryWithContext(ctx context.Context, data []byte, caches *Caches) (*Enhancements, error) {
	ctx, span := observability.StartDecodeSpan(ctx, len(data))
	e, err := FromBinary(data, caches)
	observability.RecordDecodeResult(span, err)
	if err != nil {
		observability.Error(ctx, "decode failed: %v", err)
	} else {
		observability.Debug(ctx, "decoded %d rule(s)", len(e.Rules()))
	}
	return e, err
}

// EncodeBinaryWithContext wraps EncodeBinary with duration metrics.
func EncodeBinaryWithContext(ctx context.Context, e *Enhancements) ([]byte, error) {
	start := time.Now()
	data, err := EncodeBinary(e)
	observability.BinaryEncodeDuration.Observe(time.Since(start).Seconds())
	return data, err
}

// ApplyModificationsToFramesWithContext wraps ApplyModificationsToFrames
// with the engine's logging, tracing, and metrics instrumentation.
func ApplyModificationsToFramesWithContext(ctx context.Context, e *Enhancements, frames []*Frame, exception ExceptionData) {
	ctx, span := observability.StartApplyModificationsSpan(ctx, len(frames))
	defer span.End()
	start := time.Now()

	ApplyModificationsToFrames(e, frames, exception)

	observability.LogApplyResult(ctx, "apply_modifications", len(frames), time.Since(start))
	observability.ApplyModificationsDuration.Observe(time.Since(start).Seconds())
	observability.FramesProcessed.Observe(float64(len(frames)))
}

// UpdateFrameComponentsContributionsWithContext wraps
// UpdateFrameComponentsContributions with the engine's logging, tracing,
// and metrics instrumentation.
func UpdateFrameComponentsContributionsWithContext(ctx context.Context, e *Enhancements, components []*Component, frames []*Frame) StacktraceState {
	ctx, span := observability.StartUpdateComponentsSpan(ctx, len(frames))
	defer span.End()
	start := time.Now()

	state := UpdateFrameComponentsContributions(e, components, frames)

	trimmed := 0
	for _, c := range components {
		if !c.Contributes && strings.HasPrefix(c.Hint, "ignored because only ") && state.MaxFrames.Value > 0 {
			trimmed++
		}
	}
	observability.RecordTrimmedFrames(span, trimmed)
	observability.LogApplyResult(ctx, "update_components", len(frames), time.Since(start))
	observability.UpdateComponentsDuration.Observe(time.Since(start).Seconds())
	return state
}
