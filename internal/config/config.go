// Package config loads pickme's configuration: ranking weights, indexed
// roots and their traversal limits, query namespaces, and daemon overrides.
package config

// Config is the complete configuration surface the core consumes. Shape
// mirrors the TOML file at
// $XDG_CONFIG_HOME/pickme/config.toml.
type Config struct {
	// Active disables search entirely when false: requests return empty
	// results without touching storage.
	Active bool `toml:"active" mapstructure:"active"`

	Weights WeightsConfig `toml:"weights" mapstructure:"weights"`

	// Namespaces is a duck-typed table (each value a path string or a
	// pattern list); viper/mapstructure cannot discriminate that shape, so
	// it is left untouched by Unmarshal and populated separately by the
	// loader's decodeDuckTypedTables via BurntSushi/toml.
	Namespaces map[string]Namespace `toml:"-" mapstructure:"-"`

	Priorities []string    `toml:"priorities" mapstructure:"priorities"`
	Index      IndexConfig `toml:"index" mapstructure:"index"`
	Daemon     DaemonConfig `toml:"daemon" mapstructure:"daemon"`
}

// WeightsConfig holds the composite-score ranking weights.
type WeightsConfig struct {
	GitRecency   float64 `toml:"git_recency" mapstructure:"git_recency"`
	GitFrequency float64 `toml:"git_frequency" mapstructure:"git_frequency"`
	GitStatus    float64 `toml:"git_status" mapstructure:"git_status"`
}

// Namespace is a duck-typed config value: either a single expandable path
// or a list of glob patterns, discriminated at parse time.
type Namespace struct {
	Path     string
	Patterns []string
}

// IsPath reports whether this namespace resolves to a single root
// substitution rather than a pattern list.
func (n Namespace) IsPath() bool {
	return n.Path != "" && len(n.Patterns) == 0
}

// IndexConfig controls traversal.
type IndexConfig struct {
	Roots    []string      `toml:"roots" mapstructure:"roots"`
	Disabled []string      `toml:"disabled" mapstructure:"disabled"`
	Include  IncludeConfig `toml:"include" mapstructure:"include"`
	Exclude  ExcludeConfig `toml:"exclude" mapstructure:"exclude"`
	Depth    DepthConfig   `toml:"depth" mapstructure:"depth"`
	Limits   LimitsConfig  `toml:"limits" mapstructure:"limits"`
}

// IncludeConfig holds positive traversal options.
type IncludeConfig struct {
	Hidden   bool     `toml:"hidden" mapstructure:"hidden"`
	Patterns []string `toml:"patterns" mapstructure:"patterns"`
}

// ExcludeConfig holds traversal exclusions.
type ExcludeConfig struct {
	Patterns         []string `toml:"patterns" mapstructure:"patterns"`
	GitignoredFiles  bool     `toml:"gitignored_files" mapstructure:"gitignored_files"`
}

// DepthConfig holds the default traversal depth and per-root overrides.
// PerRoot is populated from any `index.depth.<root>` key other than
// `default` by the loader.
type DepthConfig struct {
	Default int            `toml:"default" mapstructure:"default"`
	PerRoot map[string]int `toml:"-" mapstructure:"-"`
}

// LimitsConfig bounds per-root traversal cost.
type LimitsConfig struct {
	MaxFilesPerRoot int `toml:"max_files_per_root" mapstructure:"max_files_per_root"`
}

// DaemonConfig holds daemon-only overrides.
type DaemonConfig struct {
	SocketPath string `toml:"socket_path" mapstructure:"socket_path"`
}

// Default returns the configuration used when no config file is present,
// matching the built-in weight, depth, and limit defaults.
func Default() *Config {
	return &Config{
		Active: true,
		Weights: WeightsConfig{
			GitRecency:   1.0,
			GitFrequency: 0.5,
			GitStatus:    5.0,
		},
		Namespaces: map[string]Namespace{},
		Priorities: []string{},
		Index: IndexConfig{
			Roots:    []string{},
			Disabled: []string{},
			Include: IncludeConfig{
				Hidden:   false,
				Patterns: []string{},
			},
			Exclude: ExcludeConfig{
				Patterns:        []string{},
				GitignoredFiles: true,
			},
			Depth: DepthConfig{
				Default: 10,
				PerRoot: map[string]int{},
			},
			Limits: LimitsConfig{
				MaxFilesPerRoot: 0,
			},
		},
		Daemon: DaemonConfig{},
	}
}

// DepthForRoot returns the configured max_depth for root, falling back to
// the default when no per-root override exists.
func (c *Config) DepthForRoot(root string) int {
	if d, ok := c.Index.Depth.PerRoot[root]; ok {
		return d
	}
	return c.Index.Depth.Default
}
