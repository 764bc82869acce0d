package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/me/jobbind/internal/pathmap"
	"github.com/me/jobbind/pkg/model"
)

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	def := Default()
	if cfg.Addr != def.Addr || cfg.LogLevel != def.LogLevel || cfg.WorkRoot != def.WorkRoot {
		t.Errorf("Load(\"\") = %+v, want %+v", cfg, def)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobbind.yaml")
	data := `
addr: ":9090"
log_format: json
db_path: /var/lib/jobbind.db
map_inputs: true
strict_mapping: true
path_mappings:
  - from: /data
    to: /mnt/data
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.LogFormat != "json" || cfg.DBPath != "/var/lib/jobbind.db" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want default info", cfg.LogLevel)
	}
	if !cfg.MapInputs || !cfg.StrictMapping {
		t.Errorf("flags not loaded: %+v", cfg)
	}
	if len(cfg.PathMappings) != 1 || cfg.PathMappings[0].To != "/mnt/data" {
		t.Errorf("PathMappings = %+v", cfg.PathMappings)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("addr: [unclosed"), 0644)
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestMapper(t *testing.T) {
	cfg := Default()
	got, err := cfg.Mapper().Map("/data/x", nil)
	if err != nil || got != "/data/x" {
		t.Errorf("identity Map = %q, %v", got, err)
	}

	cfg.PathMappings = []PathMapping{{From: "/data", To: "/mnt/data"}}
	cfg.StrictMapping = true
	m := cfg.Mapper()
	if got, err := m.Map("/data/x", nil); err != nil || got != "/mnt/data/x" {
		t.Errorf("Map = %q, %v", got, err)
	}
	_, err = m.Map("/other/y", nil)
	var fme *model.FileMappingError
	if !errors.As(err, &fme) || !errors.Is(err, pathmap.ErrNoRule) {
		t.Errorf("strict Map error = %v", err)
	}
}
