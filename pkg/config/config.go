// pkg/config/config.go
package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/v2"
)

var validate = validator.New()

// Manager handles loading and accessing application configuration.
// It is safe for concurrent use; Get returns a copy of the current
// configuration so runtime reloads never race with readers.
type Manager struct {
	koanfInstance *koanf.Koanf
	currentConfig Config
	sources       []ConfigSource
	mu            sync.RWMutex
}

// NewManager creates a Manager with its own koanf instance.
func NewManager() *Manager {
	return &Manager{koanfInstance: koanf.New(".")}
}

// DefaultConfig returns a Config populated with hardcoded defaults.
// The Airflow values mirror the development docker-compose stack and are
// placeholders only.
func DefaultConfig() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Airflow: AirflowConfig{
			URL:      "http://localhost:8080",
			Username: "airflow",
			Password: "airflow",
			DAG:      "opencve",
		},
		Trigger: TriggerConfig{
			Timeout:  300 * time.Second,
			Interval: 2 * time.Second,
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1",
			Port:         8180,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			Auth: AuthConfig{
				Mode: "none",
			},
		},
	}
}

// DefaultConfigAsMap flattens DefaultConfig for koanf's confmap provider,
// so every key is known before higher-priority sources load.
func DefaultConfigAsMap() map[string]interface{} {
	def := DefaultConfig()
	return map[string]interface{}{
		"log.level":  def.Log.Level,
		"log.format": def.Log.Format,
		"log.file":   def.Log.File,

		"airflow.url":      def.Airflow.URL,
		"airflow.username": def.Airflow.Username,
		"airflow.password": def.Airflow.Password,
		"airflow.dag":      def.Airflow.DAG,

		"trigger.timeout":  def.Trigger.Timeout,
		"trigger.interval": def.Trigger.Interval,

		"server.addr":          def.Server.Addr,
		"server.port":          def.Server.Port,
		"server.read_timeout":  def.Server.ReadTimeout,
		"server.write_timeout": def.Server.WriteTimeout,
		"server.auth.mode":     def.Server.Auth.Mode,
		"server.auth.token":    def.Server.Auth.Token,
	}
}

// Load merges the given sources in priority order and unmarshals the
// result into the manager's current configuration. The source list is
// retained so Reload can replay it later.
func (m *Manager) Load(sources []ConfigSource) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sources = sources
	return m.loadLocked()
}

// Reload replays the sources captured by the last Load. Used by the
// config file watcher while the server runs.
func (m *Manager) Reload() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sources == nil {
		return fmt.Errorf("reload before initial load")
	}
	// Start from a clean instance so deleted file keys do not linger.
	m.koanfInstance = koanf.New(".")
	return m.loadLocked()
}

func (m *Manager) loadLocked() error {
	for _, src := range sortedByPriority(m.sources) {
		if err := src.Load(m.koanfInstance); err != nil {
			return fmt.Errorf("config source %s: %w", src.Name(), err)
		}
	}

	var newCfg Config
	if err := m.koanfInstance.UnmarshalWithConf("", &newCfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return fmt.Errorf("error unmarshaling final config: %w", err)
	}

	if err := Validate(newCfg); err != nil {
		return err
	}

	m.currentConfig = newCfg
	return nil
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentConfig
}

// Validate checks the merged configuration for coherence.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Server.Auth.Mode == "token" && cfg.Server.Auth.Token == "" {
		return fmt.Errorf("invalid configuration: server.auth.token is required in token mode")
	}
	return nil
}

