package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `travel:
  buffer_percent: 20
  prep_minutes: 15
  matrix:
    downtown:
      annex: 25
detect:
  open_hour: 9
  close_hour: 17
  closures:
    - "2026-07-04"
optimize:
  population_size: 20
  generations: 25
resolve:
  buffer_margin_minutes: 5
  audit:
    store: "jsonl"
    path: "audit.jsonl"
metrics:
  sinks:
    - type: "nop"
notifier:
  type: "log"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"travel.buffer_percent", cfg.Travel.BufferPercent, 20.0},
		{"travel.prep_minutes", cfg.Travel.PrepMinutes, 15.0},
		{"travel.matrix", cfg.Travel.Matrix["downtown"]["annex"], 25.0},
		{"detect.open_hour", cfg.Detect.OpenHour, 9},
		{"detect.close_hour", cfg.Detect.CloseHour, 17},
		{"detect.closures", len(cfg.Detect.Closures), 1},
		{"optimize.population_size", cfg.Optimize.PopulationSize, 20},
		{"optimize.generations", cfg.Optimize.Generations, 25},
		{"resolve.margin", cfg.Resolve.BufferMarginMinutes, 5.0},
		{"resolve.audit.store", cfg.Resolve.Audit.Store, "jsonl"},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"notifier.type", cfg.Notifier.Type, "log"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, c.got, c.want)
		}
	}
	// Defaults fill the rest.
	if len(cfg.Resolve.Rules) == 0 {
		t.Error("default rule table not applied")
	}
	if cfg.Optimize.MutationRate == 0 {
		t.Error("optimizer defaults not applied")
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("x = 1"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestLoadRejectsBadRuleTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `resolve:
  rules:
    - name: "bad"
      conflict: "overlap"
      strategy: "teleport"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}
