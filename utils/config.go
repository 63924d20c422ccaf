package utils

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ethpandaops/abimatch/types"
)

// Config is the globally accessible configuration
var Config *types.Config = DefaultConfig()

// DefaultConfig returns a configuration with the default schema aliases and an in-memory sqlite engine
func DefaultConfig() *types.Config {
	cfg := &types.Config{}
	setDefaultConfig(cfg)
	return cfg
}

// ReadConfig will process a configuration
func ReadConfig(cfg *types.Config, path string) error {
	err := readConfigFile(cfg, path)
	if err != nil {
		return err
	}

	readConfigEnv(cfg)
	setDefaultConfig(cfg)

	Config = cfg
	return nil
}

func readConfigFile(cfg *types.Config, path string) error {
	if path == "" {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error opening config file %v: %w", path, err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	err = decoder.Decode(cfg)
	if err != nil {
		return fmt.Errorf("error decoding config file %v: %w", path, err)
	}
	return nil
}

func readConfigEnv(cfg *types.Config) {
	err := envconfig.Process("", cfg)
	if err != nil {
		log.WithError(err).Error("error processing config environment overrides")
	}
}

func setDefaultConfig(cfg *types.Config) {
	if cfg.Database.Engine == "" {
		cfg.Database.Engine = "sqlite"
	}
	if cfg.Database.Sqlite.File == "" {
		cfg.Database.Sqlite.File = ":memory:"
	}
	if cfg.LogDecoder.LogAlias.Topic0 == "" {
		cfg.LogDecoder.LogAlias.Topic0 = "topic0"
	}
	if cfg.LogDecoder.LogAlias.Address == "" {
		cfg.LogDecoder.LogAlias.Address = "address"
	}
	if cfg.TraceDecoder.TraceAlias.Selector == "" {
		cfg.TraceDecoder.TraceAlias.Selector = "selector"
	}
	if cfg.TraceDecoder.TraceAlias.ActionTo == "" {
		cfg.TraceDecoder.TraceAlias.ActionTo = "action_to"
	}
}
