package log

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/policylens/survey-profiler/pkg/requestid"
)

// DebugLoggerBuilder collects the fields shared by every line of a traced operation.
type DebugLoggerBuilder struct {
	name      string
	operation string
	fields    []zap.Field
}

func NewDebugLogger(name string) *DebugLoggerBuilder {
	return &DebugLoggerBuilder{name: name}
}

// WithContext attaches the request id carried by ctx, if any.
func (b *DebugLoggerBuilder) WithContext(ctx context.Context) *DebugLoggerBuilder {
	if id := requestid.FromContext(ctx); id != "" {
		b.fields = append(b.fields, zap.String("request_id", id))
	}
	return b
}

func (b *DebugLoggerBuilder) Operation(op string) *DebugLoggerBuilder {
	b.operation = op
	return b
}

func (b *DebugLoggerBuilder) WithParam(key string, value any) *DebugLoggerBuilder {
	b.fields = append(b.fields, zap.Any(key, value))
	return b
}

func (b *DebugLoggerBuilder) WithString(key, value string) *DebugLoggerBuilder {
	b.fields = append(b.fields, zap.String(key, value))
	return b
}

func (b *DebugLoggerBuilder) WithInt(key string, value int) *DebugLoggerBuilder {
	b.fields = append(b.fields, zap.Int(key, value))
	return b
}

func (b *DebugLoggerBuilder) WithInt64(key string, value int64) *DebugLoggerBuilder {
	b.fields = append(b.fields, zap.Int64(key, value))
	return b
}

func (b *DebugLoggerBuilder) WithUUID(key string, value uuid.UUID) *DebugLoggerBuilder {
	b.fields = append(b.fields, zap.String(key, value.String()))
	return b
}

func (b *DebugLoggerBuilder) Build() *DebugLogger {
	fields := make([]zap.Field, 0, len(b.fields)+1)
	if b.operation != "" {
		fields = append(fields, zap.String("operation", b.operation))
	}
	fields = append(fields, b.fields...)

	return &DebugLogger{
		logger:    zap.L().Named(b.name).WithOptions(zap.AddCallerSkip(1)),
		operation: b.operation,
		fields:    fields,
		started:   time.Now(),
	}
}

// DebugLogger traces the steps of one operation. Steps log at debug level, the outcome at info or error.
type DebugLogger struct {
	logger    *zap.Logger
	operation string
	fields    []zap.Field
	started   time.Time
}

func (l *DebugLogger) Step(name string) *Entry {
	return l.entry(zap.DebugLevel, fmt.Sprintf("%s: %s", l.operation, name)).WithString("step", name)
}

func (l *DebugLogger) Success() *Entry {
	return l.entry(zap.InfoLevel, fmt.Sprintf("%s: success", l.operation)).
		with(zap.Duration("duration", time.Since(l.started)))
}

func (l *DebugLogger) Error(err error) *Entry {
	return l.entry(zap.ErrorLevel, fmt.Sprintf("%s: failed", l.operation)).
		with(zap.Error(err), zap.Duration("duration", time.Since(l.started)))
}

func (l *DebugLogger) entry(level zapcore.Level, msg string) *Entry {
	fields := make([]zap.Field, len(l.fields), len(l.fields)+4)
	copy(fields, l.fields)
	return &Entry{logger: l.logger, level: level, msg: msg, fields: fields}
}

// Entry is a single log line under construction. Nothing is written until Log is called.
type Entry struct {
	logger *zap.Logger
	level  zapcore.Level
	msg    string
	fields []zap.Field
}

func (e *Entry) with(fields ...zap.Field) *Entry {
	e.fields = append(e.fields, fields...)
	return e
}

func (e *Entry) WithParam(key string, value any) *Entry {
	return e.with(zap.Any(key, value))
}

func (e *Entry) WithString(key, value string) *Entry {
	return e.with(zap.String(key, value))
}

func (e *Entry) WithInt(key string, value int) *Entry {
	return e.with(zap.Int(key, value))
}

func (e *Entry) WithInt64(key string, value int64) *Entry {
	return e.with(zap.Int64(key, value))
}

func (e *Entry) WithUUID(key string, value uuid.UUID) *Entry {
	return e.with(zap.String(key, value.String()))
}

func (e *Entry) Log() {
	if ce := e.logger.Check(e.level, e.msg); ce != nil {
		ce.Write(e.fields...)
	}
}
