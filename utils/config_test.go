package utils

import (
	"os"
	"path"
	"testing"

	"github.com/ethpandaops/abimatch/types"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Database.Engine != "sqlite" || cfg.Database.Sqlite.File != ":memory:" {
		t.Errorf("unexpected default database config: %+v", cfg.Database)
	}
	if cfg.LogDecoder.LogAlias.Topic0 != "topic0" || cfg.LogDecoder.LogAlias.Address != "address" {
		t.Errorf("unexpected default log aliases: %+v", cfg.LogDecoder.LogAlias)
	}
	if cfg.TraceDecoder.TraceAlias.Selector != "selector" || cfg.TraceDecoder.TraceAlias.ActionTo != "action_to" {
		t.Errorf("unexpected default trace aliases: %+v", cfg.TraceDecoder.TraceAlias)
	}
}

func TestReadConfig(t *testing.T) {
	configYml := `
logDecoder:
  logAlias:
    topic0: event_hash
traceDecoder:
  traceAlias:
    actionTo: to_address
`
	configPath := path.Join(t.TempDir(), "config.yml")
	err := os.WriteFile(configPath, []byte(configYml), 0o644)
	if err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	prevConfig := Config
	t.Cleanup(func() {
		Config = prevConfig
	})

	cfg := &types.Config{}
	err = ReadConfig(cfg, configPath)
	if err != nil {
		t.Fatalf("could not read config: %v", err)
	}

	if cfg.LogDecoder.LogAlias.Topic0 != "event_hash" {
		t.Errorf("expected configured topic0 alias, got %v", cfg.LogDecoder.LogAlias.Topic0)
	}
	if cfg.LogDecoder.LogAlias.Address != "address" {
		t.Errorf("expected default address alias, got %v", cfg.LogDecoder.LogAlias.Address)
	}
	if cfg.TraceDecoder.TraceAlias.ActionTo != "to_address" {
		t.Errorf("expected configured action_to alias, got %v", cfg.TraceDecoder.TraceAlias.ActionTo)
	}
	if Config != cfg {
		t.Errorf("global config was not updated")
	}
}

func TestReadConfigMissingFile(t *testing.T) {
	prevConfig := Config
	t.Cleanup(func() {
		Config = prevConfig
	})

	cfg := &types.Config{}
	err := ReadConfig(cfg, "/nonexistent/config.yml")
	if err == nil {
		t.Errorf("expected error for missing config file")
	}
}
