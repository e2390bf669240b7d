package cliconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// GlobalConfigDir is the directory, under the user config directory, that
// holds the global config.
const GlobalConfigDir = "imposter"

// EnvPrefix prefixes every environment variable read by LoadEnvConfig.
const EnvPrefix = "IMPOSTER_"

// LocalConfigFileNames are the names searched for local config, in order.
var LocalConfigFileNames = []string{".imposterrc.yaml", ".imposterrc.yml"}

// GlobalConfigFileNames are the names searched for global config, in order.
var GlobalConfigFileNames = []string{"config.yaml", "config.yml"}

// ConfigError represents a configuration file error with location info.
type ConfigError struct {
	Path    string
	Line    int
	Column  int
	Message string
}

func (e *ConfigError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s (line %d, column %d): %s", e.Path, e.Line, e.Column, e.Message)
	}
	return e.Path + ": " + e.Message
}

// FindLocalConfig searches dir for a local config file. It returns "" when
// none exists.
func FindLocalConfig(dir string) string {
	for _, name := range LocalConfigFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// FindGlobalConfig returns the path to the global config file, or "" when
// none exists.
func FindGlobalConfig() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	for _, name := range GlobalConfigFileNames {
		path := filepath.Join(configDir, GlobalConfigDir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// LoadConfigFile loads a CLIConfig from a YAML file.
func LoadConfigFile(path string) (*CLIConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg CLIConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &ConfigError{Path: path, Line: yamlErrorLine(err.Error()), Message: err.Error()}
	}
	cfg.Sources = make(map[string]string)
	return &cfg, nil
}

// yamlErrorLine extracts the line number from a "yaml: line N: ..." message.
func yamlErrorLine(msg string) int {
	rest, ok := strings.CutPrefix(msg, "yaml: line ")
	if !ok {
		return 0
	}
	end := strings.IndexByte(rest, ':')
	if end < 0 {
		return 0
	}
	n, err := strconv.Atoi(rest[:end])
	if err != nil {
		return 0
	}
	return n
}

// LoadEnvConfig applies IMPOSTER_* environment variables to cfg using
// lookup, which is usually os.LookupEnv. List values are comma separated.
func LoadEnvConfig(cfg *CLIConfig, lookup func(string) (string, bool)) error {
	env := &CLIConfig{}
	get := func(name string) string {
		v, _ := lookup(EnvPrefix + name)
		return strings.TrimSpace(v)
	}

	env.Host = get("HOST")
	env.ServerURL = get("SERVER_URL")
	env.LogLevel = get("LOG_LEVEL")
	env.LogFormat = get("LOG_FORMAT")
	env.ConfigDirs = splitList(get("CONFIG_DIR"))
	env.Plugins = splitList(get("PLUGINS"))

	if v := get("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sPORT: %w", EnvPrefix, err)
		}
		env.Port = port
	}
	if v := get("SCRIPT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sSCRIPT_TIMEOUT: %w", EnvPrefix, err)
		}
		env.ScriptTimeout = d
	}

	MergeConfig(cfg, env, SourceEnv)
	return nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// LoadOptions locates the config sources. Zero values select the real
// environment.
type LoadOptions struct {
	// GlobalPath overrides the global config path.
	GlobalPath string

	// WorkDir is searched for the local config. Defaults to the current
	// directory.
	WorkDir string

	// LookupEnv reads environment variables. Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// LoadAll loads configuration from every source except flags and merges
// them. Precedence: env > local config > global config > defaults.
func LoadAll(opts LoadOptions) (*CLIConfig, error) {
	cfg := NewDefault()

	globalPath := opts.GlobalPath
	if globalPath == "" {
		globalPath = FindGlobalConfig()
	}
	if globalPath != "" {
		globalCfg, err := LoadConfigFile(globalPath)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		MergeConfig(cfg, globalCfg, SourceGlobal)
	}

	workDir := opts.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		workDir = wd
	}
	if localPath := FindLocalConfig(workDir); localPath != "" {
		localCfg, err := LoadConfigFile(localPath)
		if err != nil {
			return nil, err
		}
		MergeConfig(cfg, localCfg, SourceLocal)
	}

	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := LoadEnvConfig(cfg, lookup); err != nil {
		return nil, err
	}
	return cfg, nil
}
