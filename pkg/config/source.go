// pkg/config/source.go
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// ConfigSource represents a configuration source that can load values
// into koanf. Sources are loaded in priority order (lowest first), with
// higher priority sources overriding lower priority values.
//
// Built-in sources and their priorities:
//   - DefaultSource (10): hardcoded default values
//   - FileSource (20): config file (e.g., ~/.cvesync/config.yaml)
//   - EnvSource (30): environment variables (CVESYNC_*, plus the
//     AIRFLOW_* variables the original deployment documented)
//   - FlagSource (40): command-line flags
type ConfigSource interface {
	// Name returns a human-readable name for this source.
	Name() string

	// Priority returns the load priority. Lower values are loaded
	// first, higher values override lower ones.
	Priority() int

	// Load loads configuration values into the provided koanf instance.
	Load(k *koanf.Koanf) error
}

// DefaultSource provides hardcoded default configuration values.
type DefaultSource struct{}

func (s *DefaultSource) Name() string  { return "defaults" }
func (s *DefaultSource) Priority() int { return 10 }

func (s *DefaultSource) Load(k *koanf.Koanf) error {
	if err := k.Load(confmap.Provider(DefaultConfigAsMap(), "."), nil); err != nil {
		return fmt.Errorf("error loading defaults: %w", err)
	}
	return nil
}

// FileSource loads configuration from a YAML file. A missing file is
// skipped silently so a bare install works without any config.
type FileSource struct {
	Path string
}

func (s *FileSource) Name() string  { return "file:" + s.Path }
func (s *FileSource) Priority() int { return 20 }

func (s *FileSource) Load(k *koanf.Koanf) error {
	if s.Path == "" {
		return nil
	}

	if _, err := os.Stat(s.Path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("error checking config file %s: %w", s.Path, err)
	}

	if err := k.Load(file.Provider(s.Path), yaml.Parser()); err != nil {
		return fmt.Errorf("error loading config file %s: %w", s.Path, err)
	}
	return nil
}

// EnvSource loads configuration from environment variables.
// Variables must have the CVESYNC_ prefix; underscores map to dots:
//
//	CVESYNC_LOG_LEVEL      -> log.level
//	CVESYNC_AIRFLOW_URL    -> airflow.url
//	CVESYNC_TRIGGER_TIMEOUT -> trigger.timeout
//
// The bare AIRFLOW_URL / AIRFLOW_USERNAME / AIRFLOW_PASSWORD variables
// used by the OpenCVE deployment guides are also honored.
type EnvSource struct {
	Prefix string
}

func (s *EnvSource) Name() string  { return "env" }
func (s *EnvSource) Priority() int { return 30 }

// legacyEnvKeys maps the deployment-guide variable names onto config keys.
var legacyEnvKeys = map[string]string{
	"AIRFLOW_URL":      "airflow.url",
	"AIRFLOW_USERNAME": "airflow.username",
	"AIRFLOW_PASSWORD": "airflow.password",
}

func (s *EnvSource) Load(k *koanf.Koanf) error {
	for envKey, configKey := range legacyEnvKeys {
		if v, ok := os.LookupEnv(envKey); ok && v != "" {
			if err := k.Set(configKey, v); err != nil {
				return fmt.Errorf("error setting %s from environment: %w", configKey, err)
			}
		}
	}

	prefix := s.Prefix
	if prefix == "" {
		prefix = "CVESYNC_"
	}

	if err := k.Load(env.Provider(prefix, ".", func(key string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(key, prefix)), "_", ".")
	}), nil); err != nil {
		return fmt.Errorf("error loading environment variables: %w", err)
	}
	return nil
}

// FlagSource loads configuration from command-line flags.
type FlagSource struct {
	Flags *pflag.FlagSet
	Debug bool // if true, force log.level to "debug"
}

func (s *FlagSource) Name() string  { return "flags" }
func (s *FlagSource) Priority() int { return 40 }

func (s *FlagSource) Load(k *koanf.Koanf) error {
	if s.Flags != nil {
		if err := k.Load(posflag.Provider(s.Flags, ".", k), nil); err != nil {
			return fmt.Errorf("error loading command-line flags: %w", err)
		}
	}

	if s.Debug {
		_ = k.Set("log.level", "debug")
	}

	return nil
}

// DefaultSources returns the standard configuration sources.
// Order: defaults -> file -> env -> flags.
func DefaultSources(configPath string, flags *pflag.FlagSet, debug bool) []ConfigSource {
	return []ConfigSource{
		&DefaultSource{},
		&FileSource{Path: configPath},
		&EnvSource{},
		&FlagSource{Flags: flags, Debug: debug},
	}
}

func sortedByPriority(sources []ConfigSource) []ConfigSource {
	sorted := make([]ConfigSource, len(sources))
	copy(sorted, sources)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() < sorted[j].Priority()
	})
	return sorted
}
