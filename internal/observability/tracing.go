package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer is the OpenTelemetry tracer for the grouping-enhancers engine.
var Tracer = otel.Tracer("enhancers")

// StartParseSpan starts a span covering a textual rule-set parse.
func StartParseSpan(ctx context.Context, lineCount int) (context.Context, trace.Span) {
	return Tracer.Start(ctx, "enhancers.parse",
		trace.WithAttributes(
			attribute.Int("enhancers.line_count", lineCount),
		),
	)
}

// RecordParseResult closes out a parse span and updates its metrics.
func RecordParseResult(span trace.Span, ruleCount int, err error, duration time.Duration) {
	defer span.End()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		ParseTotal.WithLabelValues("error").Inc()
		return
	}
	span.SetAttributes(attribute.Int("enhancers.rule_count", ruleCount))
	span.SetStatus(codes.Ok, "")
	ParseTotal.WithLabelValues("success").Inc()
	ParseDuration.Observe(duration.Seconds())
	RulesLoaded.Set(float64(ruleCount))
}

// StartApplyModificationsSpan starts a span covering one modifier-pass run.
func StartApplyModificationsSpan(ctx context.Context, frameCount int) (context.Context, trace.Span) {
	return Tracer.Start(ctx, "enhancers.apply_modifications",
		trace.WithAttributes(
			attribute.Int("enhancers.frame_count", frameCount),
		),
	)
}

// StartUpdateComponentsSpan starts a span covering one updater-pass run.
func StartUpdateComponentsSpan(ctx context.Context, frameCount int) (context.Context, trace.Span) {
	return Tracer.Start(ctx, "enhancers.update_components",
		trace.WithAttributes(
			attribute.Int("enhancers.frame_count", frameCount),
		),
	)
}

// RecordTrimmedFrames increments the max-frames trim counter.
func RecordTrimmedFrames(span trace.Span, trimmed int) {
	if trimmed <= 0 {
		return
	}
	span.SetAttributes(attribute.Int("enhancers.frames_trimmed", trimmed))
	FramesTrimmedByMaxFrames.Add(float64(trimmed))
}

// StartDecodeSpan starts a span covering a compact binary decode.
func StartDecodeSpan(ctx context.Context, byteCount int) (context.Context, trace.Span) {
	return Tracer.Start(ctx, "enhancers.from_binary",
		trace.WithAttributes(
			attribute.Int("enhancers.byte_count", byteCount),
		),
	)
}

// RecordDecodeResult closes out a decode span and updates its metrics.
func RecordDecodeResult(span trace.Span, err error) {
	defer span.End()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		BinaryDecodeTotal.WithLabelValues("error").Inc()
		return
	}
	span.SetStatus(codes.Ok, "")
	BinaryDecodeTotal.WithLabelValues("success").Inc()
}
