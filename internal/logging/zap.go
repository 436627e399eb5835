package logging

import (
	"context"

	"go.uber.org/zap"
)

// ZapLogger adapts a zap logger to Logger through its sugared API.
// The context is accepted for interface parity and otherwise ignored.
type ZapLogger struct {
	l *zap.SugaredLogger
}

func NewZapLogger(l *zap.Logger) *ZapLogger {
	return &ZapLogger{l: l.Sugar()}
}

func (z *ZapLogger) log(lvl Level, msg string, args []any) {
	z.l.Logw(lvl.zap(), msg, args...)
}

func (z *ZapLogger) Debug(_ context.Context, msg string, args ...any) {
	z.log(LevelDebug, msg, args)
}

func (z *ZapLogger) Info(_ context.Context, msg string, args ...any) {
	z.log(LevelInfo, msg, args)
}

func (z *ZapLogger) Warn(_ context.Context, msg string, args ...any) {
	z.log(LevelWarn, msg, args)
}

func (z *ZapLogger) Error(_ context.Context, msg string, args ...any) {
	z.log(LevelError, msg, args)
}

func (z *ZapLogger) With(args ...any) Logger {
	return &ZapLogger{l: z.l.With(args...)}
}

// Enabled reports whether entries at lvl would be written.
func (z *ZapLogger) Enabled(_ context.Context, lvl Level) bool {
	return z.l.Desugar().Core().Enabled(lvl.zap())
}

// Sync flushes buffered entries.
func (z *ZapLogger) Sync() error {
	return z.l.Sync()
}
