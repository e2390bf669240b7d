package cliconfig

import (
	"time"

	"github.com/getmockd/imposter/pkg/config"
)

// Defaults.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// NewDefault creates a CLIConfig holding the default values.
func NewDefault() *CLIConfig {
	cfg := &CLIConfig{
		Host:          config.DefaultHost,
		Port:          config.DefaultPort,
		ScriptTimeout: config.DefaultScriptTimeout,
		ConfigDirs:    []string{"."},
		LogLevel:      DefaultLogLevel,
		LogFormat:     DefaultLogFormat,
		Sources:       make(map[string]string),
	}
	for _, key := range []string{"host", "port", "scriptTimeout", "configDirs", "logLevel", "logFormat"} {
		cfg.Sources[key] = SourceDefault
	}
	return cfg
}

// ServerConfig converts the CLI configuration to the server's.
func (c *CLIConfig) ServerConfig() *config.ServerConfig {
	return &config.ServerConfig{
		Host:          c.Host,
		Port:          c.Port,
		ServerURL:     c.ServerURL,
		ConfigDirs:    append([]string(nil), c.ConfigDirs...),
		Plugins:       append([]string(nil), c.Plugins...),
		ScriptTimeout: c.ScriptTimeout,
	}
}

// maxScriptTimeout bounds ScriptTimeout.
const maxScriptTimeout = 10 * time.Minute
