package metrics

import "github.com/courtflow/courtsched/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks          []factory.ModuleConfig `json:"sinks"`
	PrometheusPort int                    `json:"prometheus_port"`
}
