package config

import (
	"fmt"
	"sort"

	"github.com/spf13/viper"

	"github.com/zjrosen/cmdhl/internal/log"
)

// SetDefaults registers every default with v so that keys missing from the
// config file still unmarshal to their defaults.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("rules_file", d.RulesFile)
	v.SetDefault("highlight.nested_priority", d.Highlight.NestedPriority)
	v.SetDefault("highlight.reuse", d.Highlight.Reuse)
	v.SetDefault("parser.comments", d.Parser.Comments)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("watch.enabled", d.Watch.Enabled)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", d.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
	v.SetDefault("theme.preset", d.Theme.Preset)
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Tracing.FilePath = ExpandHome(cfg.Tracing.FilePath)
	if err := Validate(cfg); err != nil {
		log.ErrorErr(log.CatConfig, "Invalid configuration", err, "file", v.ConfigFileUsed())
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	log.Debug(log.CatConfig, "Loaded config", "file", v.ConfigFileUsed(),
		"rules_file", cfg.RulesFile, "preset", cfg.Theme.Preset)
	return cfg, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
