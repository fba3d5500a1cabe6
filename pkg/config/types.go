// pkg/config/types.go
package config

import "time"

// Config is the root configuration structure for cvesync.
type Config struct {
	Log     LogConfig     `koanf:"log"`
	Airflow AirflowConfig `koanf:"airflow"`
	Trigger TriggerConfig `koanf:"trigger"`
	Server  ServerConfig  `koanf:"server"`
}

// LogConfig holds logging related configuration.
type LogConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // json | text
	File   string `koanf:"file"`   // optional log file path
}

// AirflowConfig locates the Airflow deployment that runs the sync DAG.
// The defaults are development placeholders and must be overridden in
// real deployments; the password is never logged.
type AirflowConfig struct {
	URL      string `koanf:"url" validate:"required,url"`
	Username string `koanf:"username" validate:"required"`
	Password string `koanf:"password" validate:"required"`
	DAG      string `koanf:"dag" validate:"required"`
}

// TriggerConfig tunes the trigger-and-wait behavior.
type TriggerConfig struct {
	Timeout  time.Duration `koanf:"timeout" validate:"gt=0"`  // wait deadline when --wait is used
	Interval time.Duration `koanf:"interval" validate:"gt=0"` // delay between state queries
}

// ServerConfig holds configuration for the admin API server.
type ServerConfig struct {
	Addr         string        `koanf:"addr"`
	Port         int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	Auth         AuthConfig    `koanf:"auth"`
}

// AuthConfig holds admin API authentication configuration.
type AuthConfig struct {
	Mode  string `koanf:"mode" validate:"oneof=none token"` // none | token
	Token string `koanf:"token"`                            // static bearer token (required for token mode)
}
