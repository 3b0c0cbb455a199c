package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	configName      = ".xrbt"
	configType      = "yaml"
	envPrefix       = "XRBT"
	envKeySeparator = "_"
)

// LoadConfig reads defaults, then the config file, then XRBT_* env vars.
// An explicit configPath must exist. Otherwise .xrbt.yaml is searched in
// the working directory and $HOME, and a missing file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	if err := viperCfg.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := viperCfg.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("log.level", DefaultLogLevel)
	viperCfg.SetDefault("log.encoder", DefaultLogEncoder)
	viperCfg.SetDefault("log.dir", "")
	viperCfg.SetDefault("log.file", "")

	viperCfg.SetDefault("workers", DefaultWorkers)
	viperCfg.SetDefault("metrics", DefaultMetrics)
	viperCfg.SetDefault("display", false)
	viperCfg.SetDefault("color", true)

	viperCfg.SetDefault("tree.desc", false)
	viperCfg.SetDefault("tree.borrow_pred", false)
	viperCfg.SetDefault("tree.capacity", 0)
}
