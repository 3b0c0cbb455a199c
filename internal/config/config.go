package config

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/benz9527/xrbt/observability"
	"github.com/benz9527/xrbt/xlog"
)

const (
	DefaultLogLevel   = "info"
	DefaultLogEncoder = "text"
	DefaultWorkers    = 4
	DefaultMetrics    = observability.MetricsNone
	maxWorkers        = 1024
)

var (
	ErrInvalidWorkers  = errors.New("[config] workers must be in [1, 1024]")
	ErrInvalidMetrics  = errors.New("[config] unknown metrics exporter")
	ErrInvalidCapacity = errors.New("[config] tree capacity must not be negative")
)

// Config is the xrbt configuration. Field tags use mapstructure for viper.
type Config struct {
	Log     LogConfig  `mapstructure:"log"`
	Workers int        `mapstructure:"workers"`
	Metrics string     `mapstructure:"metrics"`
	Display bool       `mapstructure:"display"`
	Color   bool       `mapstructure:"color"`
	Tree    TreeConfig `mapstructure:"tree"`
}

// LogConfig selects the logger level, encoder and an optional log file.
// An empty File logs to stderr only.
type LogConfig struct {
	Level   string `mapstructure:"level"`
	Encoder string `mapstructure:"encoder"`
	Dir     string `mapstructure:"dir"`
	File    string `mapstructure:"file"`
}

type TreeConfig struct {
	Desc       bool `mapstructure:"desc"`
	BorrowPred bool `mapstructure:"borrow_pred"`
	Capacity   int  `mapstructure:"capacity"`
}

// Validate reports every invalid setting.
func (cfg *Config) Validate() error {
	var err error
	if _, lvlErr := xlog.ParseLogLevel(cfg.Log.Level); lvlErr != nil {
		err = multierr.Append(err, lvlErr)
	}
	if _, encErr := xlog.ParseLogEncoder(cfg.Log.Encoder); encErr != nil {
		err = multierr.Append(err, encErr)
	}
	if cfg.Workers < 1 || cfg.Workers > maxWorkers {
		err = multierr.Append(err, fmt.Errorf("%w: %d", ErrInvalidWorkers, cfg.Workers))
	}
	switch cfg.Metrics {
	case observability.MetricsNone, observability.MetricsConsole, observability.MetricsPrometheus:
	default:
		err = multierr.Append(err, fmt.Errorf("%w: %q", ErrInvalidMetrics, cfg.Metrics))
	}
	if cfg.Tree.Capacity < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: %d", ErrInvalidCapacity, cfg.Tree.Capacity))
	}
	return err
}
