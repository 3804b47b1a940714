package metadata

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

/*
Metadata Collected
- Declaration fetch timestamps and durations
- HTTP status codes
- Cache writes with content hashes
- Non-fatal failures (fetch, cache refresh)

Metadata is write-only.
No component may read metadata to influence allow/deny decisions.
*/

type MetadataSink interface {
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		details string,
		attrs []Attribute,
	)

	RecordFetch(
		fetchUrl string,
		httpStatus int,
		duration time.Duration,
		contentType string,
		attempts int,
	)

	RecordArtifact(kind ArtifactKind, path string, attrs []Attribute)
}

/*
Recorder is the production MetadataSink. It writes one structured JSON
log entry per event through zap.
It must not:
- perform I/O decisions
- affect control flow
*/
type Recorder struct {
	logger *zap.Logger
}

// NewRecorder builds a zap production logger at the given level
// ("debug", "info", "warn", "error"). Unknown levels fall back to info.
func NewRecorder(level string, outputPaths ...string) (*Recorder, error) {
	zapCfg := zap.NewProductionConfig()
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapCfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	zapCfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	if len(outputPaths) > 0 {
		zapCfg.OutputPaths = outputPaths
	}

	z, err := zapCfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	return &Recorder{logger: z}, nil
}

// NewRecorderWithLogger wraps an existing zap logger.
func NewRecorderWithLogger(logger *zap.Logger) *Recorder {
	return &Recorder{logger: logger}
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (r *Recorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	errorString string,
	attrs []Attribute,
) {
	fields := append([]zap.Field{
		zap.Time("observed_at", observedAt),
		zap.String("package", packageName),
		zap.String("action", action),
		zap.Stringer("cause", cause),
		zap.String("error", errorString),
	}, attrFields(attrs)...)
	r.logger.Warn("error recorded", fields...)
}

func (r *Recorder) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	attempts int,
) {
	r.logger.Info("declaration fetched",
		zap.String("url", fetchUrl),
		zap.Int("http_status", httpStatus),
		zap.Duration("duration", duration),
		zap.String("content_type", contentType),
		zap.Int("attempts", attempts),
	)
}

func (r *Recorder) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {
	fields := append([]zap.Field{
		zap.String("kind", string(kind)),
		zap.String("path", path),
	}, attrFields(attrs)...)
	r.logger.Debug("artifact recorded", fields...)
}

// Sync flushes buffered log entries.
func (r *Recorder) Sync() error {
	return r.logger.Sync()
}

func attrFields(attrs []Attribute) []zap.Field {
	fields := make([]zap.Field, 0, len(attrs))
	for _, a := range attrs {
		fields = append(fields, zap.String(string(a.Key), a.Value))
	}
	return fields
}

// NoopSink, struct that implements metadata.Sink but does nothing
// Engine (or Test) can decide whether to inject Recorder or NoopSink
// Purpose is to make metadata orthogonal

type NoopSink struct{}

func (n *NoopSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	errorString string,
	attrs []Attribute,
) {
}

func (n *NoopSink) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	attempts int,
) {
}

func (n *NoopSink) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {}
