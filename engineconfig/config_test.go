package engineconfig

import (
	"path/filepath"
	"testing"
)

func TestDefaultEngineConfigMatchesSpecDefaults(t *testing.T) {
	cfg := DefaultEngineConfig()
	if cfg.Physics.FixedDT != 1.0/60.0 {
		t.Fatalf("expected fixed_dt 1/60, got %v", cfg.Physics.FixedDT)
	}
	if cfg.Physics.MaxSubSteps != 4 {
		t.Fatalf("expected max_substeps 4, got %v", cfg.Physics.MaxSubSteps)
	}
	if cfg.ThreadingEnabled {
		t.Fatal("expected threading disabled by default")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.json")

	cfg := DefaultEngineConfig()
	cfg.ThreadingEnabled = true
	cfg.PostProcess.BloomEnabled = true
	cfg.PostParams.ToneMapping = ToneMappingUncharted2

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.ThreadingEnabled != cfg.ThreadingEnabled {
		t.Fatalf("expected ThreadingEnabled %v, got %v", cfg.ThreadingEnabled, loaded.ThreadingEnabled)
	}
	if loaded.PostProcess.BloomEnabled != cfg.PostProcess.BloomEnabled {
		t.Fatal("expected bloom_enabled to round-trip")
	}
	if loaded.PostParams.ToneMapping != ToneMappingUncharted2 {
		t.Fatalf("expected tone_mapping to round-trip, got %v", loaded.PostParams.ToneMapping)
	}
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := Load("/nonexistent/path/engine.json")
	if err == nil {
		t.Fatal("expected an error loading a nonexistent config file")
	}
}
