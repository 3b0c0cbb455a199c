package xlog

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// AntsXLogger adapts an XLogger to the ants pool logger, every pool
// message is logged at error level under the "ants" component.
type AntsXLogger struct {
	logger *zap.Logger
}

func (l *AntsXLogger) Printf(format string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Error(fmt.Sprintf(format, args...))
}

func NewAntsXLogger(logger XLogger) *AntsXLogger {
	if logger == nil {
		return &AntsXLogger{}
	}
	return &AntsXLogger{
		logger: logger.
			zap().
			Named("ants").
			WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
				if core == nil {
					panic("[XLogger] core is nil")
				}
				var (
					cc  xLogCore
					err error
				)
				switch c := core.(type) {
				case xLogMultiCore:
					cc, err = WrapCores(c, componentCoreEncoderCfg)
				case xLogCore:
					cc, err = WrapCore(c, componentCoreEncoderCfg)
				default:
					panic("[XLogger] core is not xLogCore")
				}
				if err != nil {
					panic(err)
				}
				return cc
			})),
	}
}
