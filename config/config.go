package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/courtflow/courtsched/core/detect"
	"github.com/courtflow/courtsched/core/metrics"
	"github.com/courtflow/courtsched/core/optimize"
	"github.com/courtflow/courtsched/core/resolve"
	"github.com/courtflow/courtsched/core/travel"
	"github.com/courtflow/courtsched/infra/notify"
)

type Config struct {
	Travel   travel.Config         `json:"travel"`
	Detect   detect.Config         `json:"detect"`
	Optimize optimize.Config       `json:"optimize"`
	Resolve  resolve.Config        `json:"resolve"`
	Metrics  metrics.Config        `json:"metrics"`
	Notifier notify.NotifierConfig `json:"notifier"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("CS_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "cs_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Travel.SetDefaults()
	cfg.Detect.SetDefaults()
	cfg.Optimize.SetDefaults()
	cfg.Resolve.SetDefaults()
	if err := cfg.Travel.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Detect.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Optimize.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Resolve.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
