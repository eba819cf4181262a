package telemetry

import (
	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Bridge tees base into the OTLP log pipeline. Entries below minLevel stay
// local. With logs disabled base is returned unchanged.
func (p *Providers) Bridge(base *zap.Logger, minLevel zapcore.Level) *zap.Logger {
	if p.logs == nil {
		return base
	}
	exported := &minLevelCore{
		Core: otelzap.NewCore(p.service, otelzap.WithLoggerProvider(p.logs)),
		min:  minLevel,
	}
	return base.WithOptions(zap.WrapCore(func(local zapcore.Core) zapcore.Core {
		return zapcore.NewTee(local, exported)
	}))
}

type minLevelCore struct {
	zapcore.Core
	min zapcore.Level
}

func (c *minLevelCore) Enabled(lvl zapcore.Level) bool {
	return lvl >= c.min && c.Core.Enabled(lvl)
}

func (c *minLevelCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(entry.Level) {
		return ce
	}
	return c.Core.Check(entry, ce)
}

func (c *minLevelCore) With(fields []zapcore.Field) zapcore.Core {
	return &minLevelCore{Core: c.Core.With(fields), min: c.min}
}
