// Package cliconfig provides layered configuration for the imposter CLI.
package cliconfig

import "time"

// CLIConfig is the effective configuration of the imposter CLI.
// Values are resolved with the following precedence:
// 1. Command-line flags (highest priority)
// 2. Environment variables (IMPOSTER_*)
// 3. Local config file (.imposterrc.yaml in current directory)
// 4. Global config file (~/.config/imposter/config.yaml)
// 5. Default values (lowest priority)
type CLIConfig struct {
	// Server settings
	Host          string        `yaml:"host,omitempty" json:"host,omitempty"`
	Port          int           `yaml:"port,omitempty" json:"port,omitempty"`
	ServerURL     string        `yaml:"serverUrl,omitempty" json:"serverUrl,omitempty"`
	ScriptTimeout time.Duration `yaml:"scriptTimeout,omitempty" json:"scriptTimeout,omitempty"`

	// Mock settings
	ConfigDirs []string `yaml:"configDirs,omitempty" json:"configDirs,omitempty"`
	Plugins    []string `yaml:"plugins,omitempty" json:"plugins,omitempty"`

	// Logging settings
	LogLevel  string `yaml:"logLevel,omitempty" json:"logLevel,omitempty"`
	LogFormat string `yaml:"logFormat,omitempty" json:"logFormat,omitempty"`

	// Sources tracks where each value came from, keyed by YAML name.
	Sources map[string]string `yaml:"-" json:"-"`
}

// Config sources.
const (
	SourceDefault = "default"
	SourceGlobal  = "global"
	SourceLocal   = "local"
	SourceEnv     = "env"
	SourceFlag    = "flag"
)
