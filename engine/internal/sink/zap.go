package sink

import (
	"diagnostics-recorder/engine/config"
	"diagnostics-recorder/engine/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap logger according to the sink config
func New(cfg config.SinkConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Env == config.EnvDevelopment {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.OutputPaths = cfg.OutputPaths
	if len(zcfg.OutputPaths) == 0 {
		zcfg.OutputPaths = []string{"stderr"}
	}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	// every forwarded entry is written, repeats included
	zcfg.Sampling = nil
	zcfg.EncoderConfig.TimeKey = "timestamp"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	// verbose entries are forwarded at debug
	zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	return zcfg.Build()
}

// Sync flushes logger
func Sync(log *zap.Logger) {
	if log == nil {
		return
	}
	_ = log.Sync()
}

// Zap forwards recorder entries to a zap logger
type Zap struct {
	log *zap.Logger
}

// NewZap wraps log and tags every record with a per-process session id
func NewZap(log *zap.Logger) *Zap {
	if log == nil {
		log = zap.NewNop()
	}
	return &Zap{log: log.With(zap.String("session", uuid.NewString()))}
}

// Forward writes one record under the named tag
func (z *Zap) Forward(tag string, severity logger.Severity, text string) {
	z.log.Named(tag).Check(Level(severity), text).Write()
}

// Level maps a recorder severity onto a zap level
func Level(severity logger.Severity) zapcore.Level {
	switch severity {
	case logger.SeverityVerbose, logger.SeverityDebug:
		return zapcore.DebugLevel
	case logger.SeverityInfo:
		return zapcore.InfoLevel
	case logger.SeverityWarn:
		return zapcore.WarnLevel
	case logger.SeverityError:
		return zapcore.ErrorLevel
	}
	return zapcore.InfoLevel
}
