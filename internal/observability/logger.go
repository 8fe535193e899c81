package observability

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// LogLevel represents logging levels.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

var currentLogLevel = LogLevelInfo

func init() {
	if os.Getenv("DEBUG") != "" || os.Getenv("ENHANCERS_DEBUG") != "" {
		currentLogLevel = LogLevelDebug
	}
}

// Debug logs debug-level messages (only when DEBUG or ENHANCERS_DEBUG is set).
func Debug(ctx context.Context, format string, args ...interface{}) {
	if currentLogLevel <= LogLevelDebug {
		logWithContext(ctx, "DEBUG", format, args...)
	}
}

// Info logs info-level messages.
func Info(ctx context.Context, format string, args ...interface{}) {
	if currentLogLevel <= LogLevelInfo {
		logWithContext(ctx, "INFO", format, args...)
	}
}

// Warn logs warning-level messages.
func Warn(ctx context.Context, format string, args ...interface{}) {
	if currentLogLevel <= LogLevelWarn {
		logWithContext(ctx, "WARN", format, args...)
	}
}

// Error logs error-level messages.
func Error(ctx context.Context, format string, args ...interface{}) {
	if currentLogLevel <= LogLevelError {
		logWithContext(ctx, "ERROR", format, args...)
	}
}

func logWithContext(ctx context.Context, level string, format string, args ...interface{}) {
	timestamp := time.Now().Format("2006/01/02 15:04:05.000")
	message := fmt.Sprintf(format, args...)

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		traceID := span.SpanContext().TraceID().String()
		log.Printf("%s [%s] [trace=%s] %s", timestamp, level, traceID[:8], message)
	} else {
		log.Printf("%s [%s] %s", timestamp, level, message)
	}
}

// LogParseResult logs the outcome of parsing a rule-set.
func LogParseResult(ctx context.Context, ruleCount int, err error) {
	if err != nil {
		Error(ctx, "parse failed: %v", err)
		return
	}
	Debug(ctx, "parsed %d rule(s)", ruleCount)
}

// LogApplyResult logs the outcome of applying modifications or updating
// component contributions over a stack trace.
func LogApplyResult(ctx context.Context, operation string, frameCount int, duration time.Duration) {
	Debug(ctx, "%s: %d frame(s) in %v", operation, frameCount, duration)
}
