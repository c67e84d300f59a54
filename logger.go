package jwtauth

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

// NewLogrusLogger adapts a logrus.FieldLogger. Key/value pairs become
// logrus fields.
func NewLogrusLogger(l logrus.FieldLogger) Logger {
	return &logrusLoggerAdapter{l}
}

type logrusLoggerAdapter struct{ l logrus.FieldLogger }

func (a *logrusLoggerAdapter) Debug(msg string, args ...any) {
	a.l.WithFields(logrus.Fields(fields(args))).Debug(msg)
}
func (a *logrusLoggerAdapter) Info(msg string, args ...any) {
	a.l.WithFields(logrus.Fields(fields(args))).Info(msg)
}
func (a *logrusLoggerAdapter) Warn(msg string, args ...any) {
	a.l.WithFields(logrus.Fields(fields(args))).Warn(msg)
}
func (a *logrusLoggerAdapter) Error(msg string, args ...any) {
	a.l.WithFields(logrus.Fields(fields(args))).Error(msg)
}

// NewZapLogger adapts a zap.SugaredLogger, which takes key/value pairs
// natively.
func NewZapLogger(l *zap.SugaredLogger) Logger {
	return &zapLoggerAdapter{l}
}

type zapLoggerAdapter struct{ l *zap.SugaredLogger }

func (a *zapLoggerAdapter) Debug(msg string, args ...any) { a.l.Debugw(msg, args...) }
func (a *zapLoggerAdapter) Info(msg string, args ...any)  { a.l.Infow(msg, args...) }
func (a *zapLoggerAdapter) Warn(msg string, args ...any)  { a.l.Warnw(msg, args...) }
func (a *zapLoggerAdapter) Error(msg string, args ...any) { a.l.Errorw(msg, args...) }

// NewZerologLogger adapts a zerolog.Logger.
func NewZerologLogger(l zerolog.Logger) Logger {
	return &zerologLoggerAdapter{l}
}

type zerologLoggerAdapter struct{ l zerolog.Logger }

func (a *zerologLoggerAdapter) Debug(msg string, args ...any) {
	a.l.Debug().Fields(fields(args)).Msg(msg)
}
func (a *zerologLoggerAdapter) Info(msg string, args ...any) {
	a.l.Info().Fields(fields(args)).Msg(msg)
}
func (a *zerologLoggerAdapter) Warn(msg string, args ...any) {
	a.l.Warn().Fields(fields(args)).Msg(msg)
}
func (a *zerologLoggerAdapter) Error(msg string, args ...any) {
	a.l.Error().Fields(fields(args)).Msg(msg)
}

// fields turns slog-style alternating key/value args into a map. A
// trailing key without a value is kept with a placeholder.
func fields(args []any) map[string]any {
	out := make(map[string]any, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		if i+1 == len(args) {
			out[key] = "!MISSING"
			continue
		}
		out[key] = args[i+1]
	}
	return out
}
