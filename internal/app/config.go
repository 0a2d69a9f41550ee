package app

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/specialistvlad/opgrid/internal/artifact"
	"github.com/specialistvlad/opgrid/internal/report"
	"github.com/specialistvlad/opgrid/internal/sources"
)

// Config holds all the necessary configuration for an App instance to run.
// The toml tags name the keys accepted by a config file.
type Config struct {
	PlanPath   string   `toml:"plan"`    // hcl files; empty uses the embedded plan
	SourcesDir string   `toml:"sources"` // target sources
	Include    string   `toml:"include"`
	OutDir     string   `toml:"out"` // modified sources; empty discards them
	Mods       []string `toml:"mods"`

	ArtifactsPath string `toml:"artifacts"`
	ArtifactTypes string `toml:"artifact_types"`

	ProgressURL string `toml:"progress_url"`
	StatusPort  int    `toml:"status_port"`

	LogFormat string `toml:"log_format"`
	LogLevel  string `toml:"log_level"`
	NoColor   bool   `toml:"no_color"`

	types artifact.TypeSet
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Include:   sources.DefaultInclude,
		LogFormat: "text",
		LogLevel:  "info",
	}
}

// DecodeConfigFile overlays the keys present in the TOML file at path onto
// cfg. Unknown keys are rejected.
func DecodeConfigFile(path string, cfg *Config) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return fmt.Errorf("config file %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// NewConfig validates cfg and returns a copy ready for NewApp.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.SourcesDir == "" {
		return nil, errors.New("SourcesDir is a required configuration field and cannot be empty")
	}
	if cfg.Include == "" {
		cfg.Include = sources.DefaultInclude
	}
	if !doublestar.ValidatePattern(cfg.Include) {
		return nil, fmt.Errorf("invalid include pattern %q", cfg.Include)
	}

	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "text"
	case "text", "json", "pretty":
	default:
		return nil, fmt.Errorf("invalid log format %q: must be 'text', 'json' or 'pretty'", cfg.LogFormat)
	}
	switch cfg.LogLevel {
	case "":
		cfg.LogLevel = "info"
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}

	if cfg.StatusPort < 0 || cfg.StatusPort > 65535 {
		return nil, fmt.Errorf("invalid status port %d", cfg.StatusPort)
	}

	types, err := artifact.ParseTypes(cfg.ArtifactTypes)
	if err != nil {
		return nil, err
	}
	cfg.types = types

	if cfg.ArtifactsPath != "" {
		if _, err := report.FormatFor(cfg.ArtifactsPath); err != nil {
			return nil, err
		}
	}

	cfg.Mods = append([]string(nil), cfg.Mods...)
	return &cfg, nil
}

// Types returns the artifact types selected for export.
func (c *Config) Types() artifact.TypeSet {
	if c.types == nil {
		return artifact.Types(artifact.AllTypes...)
	}
	return c.types
}
