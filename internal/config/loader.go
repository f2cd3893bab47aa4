package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

// Loader loads pickme's configuration from defaults, a TOML file, and
// environment variables, in that ascending priority.
type Loader interface {
	Load() (*Config, error)
}

type loader struct {
	configDir string
}

// NewLoader creates a loader that searches configDir for config.toml.
func NewLoader(configDir string) Loader {
	return &loader{configDir: configDir}
}

// Load reads config.toml (if present) over the built-in defaults, applies
// PICKME_* environment overrides, decodes the duck-typed `namespaces` table
// by hand (viper's mapstructure cannot discriminate a string from a string
// list into the same field), and validates the result.
func (l *loader) Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(l.configDir)

	v.SetEnvPrefix("PICKME")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	configPath := filepath.Join(l.configDir, "config.toml")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	namespaces, perRootDepth, err := decodeDuckTypedTables(configPath)
	if err != nil {
		return nil, fmt.Errorf("decode config tables: %w", err)
	}
	if len(namespaces) > 0 {
		cfg.Namespaces = namespaces
	}
	if len(perRootDepth) > 0 {
		cfg.Index.Depth.PerRoot = perRootDepth
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("active", d.Active)
	v.SetDefault("weights.git_recency", d.Weights.GitRecency)
	v.SetDefault("weights.git_frequency", d.Weights.GitFrequency)
	v.SetDefault("weights.git_status", d.Weights.GitStatus)
	v.SetDefault("priorities", d.Priorities)

	v.SetDefault("index.roots", d.Index.Roots)
	v.SetDefault("index.disabled", d.Index.Disabled)
	v.SetDefault("index.include.hidden", d.Index.Include.Hidden)
	v.SetDefault("index.include.patterns", d.Index.Include.Patterns)
	v.SetDefault("index.exclude.patterns", d.Index.Exclude.Patterns)
	v.SetDefault("index.exclude.gitignored_files", d.Index.Exclude.GitignoredFiles)
	v.SetDefault("index.depth.default", d.Index.Depth.Default)
	v.SetDefault("index.limits.max_files_per_root", d.Index.Limits.MaxFilesPerRoot)

	v.SetDefault("daemon.socket_path", d.Daemon.SocketPath)
}

// decodeDuckTypedTables reads config.toml directly with BurntSushi/toml to
// recover the two tables viper's mapstructure decoding cannot represent
// faithfully: `namespaces` (each value either a string path or a list of
// patterns) and `index.depth` (a `default` key alongside arbitrary
// per-root override keys). Returns empty maps, not an error, if the file
// does not exist.
func decodeDuckTypedTables(path string) (map[string]Namespace, map[string]int, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, nil, nil
	}

	var raw struct {
		Namespaces map[string]toml.Primitive `toml:"namespaces"`
		Index      struct {
			Depth map[string]toml.Primitive `toml:"depth"`
		} `toml:"index"`
	}

	md, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, nil, fmt.Errorf("parse TOML: %w", err)
	}

	namespaces := map[string]Namespace{}
	for name, prim := range raw.Namespaces {
		var asString string
		if err := md.PrimitiveDecode(prim, &asString); err == nil {
			namespaces[name] = Namespace{Path: asString}
			continue
		}
		var asList []string
		if err := md.PrimitiveDecode(prim, &asList); err == nil {
			namespaces[name] = Namespace{Patterns: asList}
			continue
		}
		return nil, nil, fmt.Errorf("namespace %q is neither a string nor a string list", name)
	}

	perRootDepth := map[string]int{}
	for key, prim := range raw.Index.Depth {
		if key == "default" {
			continue
		}
		var depth int
		if err := md.PrimitiveDecode(prim, &depth); err != nil {
			return nil, nil, fmt.Errorf("index.depth.%s must be an integer: %w", key, err)
		}
		perRootDepth[key] = depth
	}

	return namespaces, perRootDepth, nil
}

// LoadConfig loads config.toml from $XDG_CONFIG_HOME/pickme (or
// ~/.config/pickme if unset).
func LoadConfig() (*Config, error) {
	return NewLoader(DefaultConfigDir()).Load()
}

// DefaultConfigDir resolves $XDG_CONFIG_HOME/pickme, falling back to
// ~/.config/pickme.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "pickme")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/pickme"
	}
	return filepath.Join(home, ".config", "pickme")
}
