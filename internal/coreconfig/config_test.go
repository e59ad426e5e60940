package coreconfig

import (
	"os"
	"testing"
)

func TestLoad_DefaultsWhenEnvUnset(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Expression.MaxSourceBytes != 4096 {
		t.Fatalf("MaxSourceBytes = %d, want 4096", cfg.Expression.MaxSourceBytes)
	}
	if cfg.SRL.MasterKeyEnv != "SRL_MASTER_KEY" {
		t.Fatalf("MasterKeyEnv = %q, want SRL_MASTER_KEY", cfg.SRL.MasterKeyEnv)
	}
}

func TestLoad_EnvOverridesDefault(t *testing.T) {
	t.Setenv("GRAPH_SHARD_COUNT", "32")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Graph.ShardCount != 32 {
		t.Fatalf("ShardCount = %d, want 32", cfg.Graph.ShardCount)
	}
}

func TestApplyYAMLOverride_MissingFileIsNoop(t *testing.T) {
	cfg := Defaults()
	if err := ApplyYAMLOverride(cfg, "/nonexistent/path.yaml"); err != nil {
		t.Fatalf("expected no error for missing override file, got %v", err)
	}
}

func TestApplyYAMLOverride_Applies(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/override.yaml"
	if err := os.WriteFile(path, []byte("seed:\n  directory: custom-seeds\n"), 0o600); err != nil {
		t.Fatalf("write override: %v", err)
	}

	cfg := Defaults()
	if err := ApplyYAMLOverride(cfg, path); err != nil {
		t.Fatalf("ApplyYAMLOverride() error: %v", err)
	}
	if cfg.Seed.Directory != "custom-seeds" {
		t.Fatalf("Seed.Directory = %q, want custom-seeds", cfg.Seed.Directory)
	}
}
