package xlog

import (
	"os"
	"path/filepath"

	"github.com/google/safeopen"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xrbt/lib/infra"
)

type FileCoreConfig struct {
	FilePath string `json:"filePath" yaml:"filePath"`
	Filename string `json:"filename" yaml:"filename"`
}

// openLogFile appends to the log file, the name cannot escape FilePath.
func (cfg *FileCoreConfig) openLogFile() (*os.File, error) {
	if cfg.FilePath == "" {
		cfg.FilePath = os.TempDir()
	}
	if cfg.Filename == "" {
		cfg.Filename = filepath.Base(os.Args[0]) + "_xlog.log"
	}
	if err := os.MkdirAll(cfg.FilePath, 0o755); err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "unable to create log dir: "+cfg.FilePath)
	}
	f, err := safeopen.OpenFileBeneath(cfg.FilePath, cfg.Filename, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "unable to open log file: "+cfg.Filename)
	}
	return f, nil
}

func newFileCore(ws zapcore.WriteSyncer) XLogCoreConstructor {
	return func(
		lvlEnabler zapcore.LevelEnabler,
		encoder logEncoderType,
		writer logOutWriterType,
		lvlEnc zapcore.LevelEncoder,
		tsEnc zapcore.TimeEncoder,
	) xLogCore {
		if writer != File || ws == nil {
			return nil
		}
		cc := &commonCore{
			lvlEnabler: lvlEnabler,
			lvlEnc:     lvlEnc,
			tsEnc:      tsEnc,
			ws:         ws,
			enc:        getEncoderByType(encoder),
		}
		config := zapcore.EncoderConfig{
			MessageKey:    "msg",
			LevelKey:      "lvl",
			EncodeLevel:   cc.lvlEnc,
			TimeKey:       "ts",
			EncodeTime:    cc.tsEnc,
			CallerKey:     "callAt",
			EncodeCaller:  zapcore.ShortCallerEncoder,
			FunctionKey:   coreKeyIgnored,
			NameKey:       "component",
			EncodeName:    zapcore.FullNameEncoder,
			StacktraceKey: coreKeyIgnored,
		}
		cc.core = zapcore.NewCore(cc.enc(config), cc.ws, cc.lvlEnabler)
		return cc
	}
}

func WithXLoggerFileWriter(coreCfg *FileCoreConfig) XLoggerOption {
	return func(cfg *loggerCfg) error {
		if coreCfg == nil {
			coreCfg = &FileCoreConfig{}
		}
		f, err := coreCfg.openLogFile()
		if err != nil {
			return err
		}
		cfg.closers = append(cfg.closers, f)
		cfg.coreConstructors = append(cfg.coreConstructors, newFileCore(zapcore.Lock(f)))
		cfg.writers = append(cfg.writers, File)
		return nil
	}
}
