package cliconfig

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func envFrom(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestCLIConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  CLIConfig
		wantErr string
	}{
		{
			name:   "valid defaults",
			config: *NewDefault(),
		},
		{
			name:   "ephemeral port",
			config: CLIConfig{Port: 0},
		},
		{
			name:    "port too high",
			config:  CLIConfig{Port: 70000},
			wantErr: "port 70000 is out of range",
		},
		{
			name:    "port negative",
			config:  CLIConfig{Port: -1},
			wantErr: "port -1 is out of range",
		},
		{
			name:    "script timeout too long",
			config:  CLIConfig{Port: 8080, ScriptTimeout: time.Hour},
			wantErr: "scriptTimeout 1h0m0s is out of range",
		},
		{
			name:    "unknown log level",
			config:  CLIConfig{Port: 8080, LogLevel: "loud"},
			wantErr: `logLevel "loud"`,
		},
		{
			name:   "log level case insensitive",
			config: CLIConfig{Port: 8080, LogLevel: "DEBUG", LogFormat: "JSON"},
		},
		{
			name:    "unknown log format",
			config:  CLIConfig{Port: 8080, LogFormat: "xml"},
			wantErr: `logFormat "xml"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Errorf("expected error containing %q, got nil", tt.wantErr)
			} else if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestMergeConfig(t *testing.T) {
	t.Run("merges non-zero values", func(t *testing.T) {
		target := NewDefault()
		MergeConfig(target, &CLIConfig{Port: 9000, Plugins: []string{"rest"}}, SourceLocal)

		if target.Port != 9000 {
			t.Errorf("expected port 9000, got %d", target.Port)
		}
		if target.Sources["port"] != SourceLocal {
			t.Errorf("expected source 'local', got %q", target.Sources["port"])
		}
		if !reflect.DeepEqual(target.Plugins, []string{"rest"}) {
			t.Errorf("unexpected plugins %v", target.Plugins)
		}
		if target.Sources["host"] != SourceDefault {
			t.Errorf("expected host to keep default source, got %q", target.Sources["host"])
		}
	})

	t.Run("nil source is no-op", func(t *testing.T) {
		target := NewDefault()
		MergeConfig(target, nil, SourceLocal)
		if !reflect.DeepEqual(target, NewDefault()) {
			t.Errorf("expected defaults, got %+v", target)
		}
	})
}

func TestLoadEnvConfig(t *testing.T) {
	cfg := NewDefault()
	err := LoadEnvConfig(cfg, envFrom(map[string]string{
		"IMPOSTER_PORT":           "9090",
		"IMPOSTER_CONFIG_DIR":     "/a, /b,",
		"IMPOSTER_SCRIPT_TIMEOUT": "250ms",
		"IMPOSTER_LOG_FORMAT":     "json",
	}))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9090 || cfg.Sources["port"] != SourceEnv {
		t.Errorf("port = %d from %q", cfg.Port, cfg.Sources["port"])
	}
	if !reflect.DeepEqual(cfg.ConfigDirs, []string{"/a", "/b"}) {
		t.Errorf("configDirs = %v", cfg.ConfigDirs)
	}
	if cfg.ScriptTimeout != 250*time.Millisecond {
		t.Errorf("scriptTimeout = %s", cfg.ScriptTimeout)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("logFormat = %q", cfg.LogFormat)
	}

	if err := LoadEnvConfig(NewDefault(), envFrom(map[string]string{"IMPOSTER_PORT": "http"})); err == nil {
		t.Error("expected error for non-numeric port")
	}
}

func TestLoadAll_Precedence(t *testing.T) {
	dir := t.TempDir()
	global := filepath.Join(dir, "global.yaml")
	if err := os.WriteFile(global, []byte("port: 7000\nhost: 127.0.0.1\nlogLevel: debug\n"), 0644); err != nil {
		t.Fatal(err)
	}
	work := filepath.Join(dir, "work")
	if err := os.Mkdir(work, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(work, ".imposterrc.yaml"), []byte("port: 7100\nscriptTimeout: 2s\nconfigDirs: [mocks]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadAll(LoadOptions{
		GlobalPath: global,
		WorkDir:    work,
		LookupEnv:  envFrom(map[string]string{"IMPOSTER_LOG_LEVEL": "warn"}),
	})
	if err != nil {
		t.Fatal(err)
	}

	checks := []struct {
		key, source string
		ok          bool
	}{
		{"host", SourceGlobal, cfg.Host == "127.0.0.1"},
		{"port", SourceLocal, cfg.Port == 7100},
		{"scriptTimeout", SourceLocal, cfg.ScriptTimeout == 2*time.Second},
		{"configDirs", SourceLocal, reflect.DeepEqual(cfg.ConfigDirs, []string{"mocks"})},
		{"logLevel", SourceEnv, cfg.LogLevel == "warn"},
		{"logFormat", SourceDefault, cfg.LogFormat == DefaultLogFormat},
	}
	for _, c := range checks {
		if !c.ok {
			t.Errorf("%s has unexpected value", c.key)
		}
		if cfg.Sources[c.key] != c.source {
			t.Errorf("%s source = %q, want %q", c.key, cfg.Sources[c.key], c.source)
		}
	}
}

func TestLoadAll_MissingGlobalIgnored(t *testing.T) {
	cfg, err := LoadAll(LoadOptions{
		GlobalPath: filepath.Join(t.TempDir(), "nope.yaml"),
		WorkDir:    t.TempDir(),
		LookupEnv:  envFrom(nil),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg, NewDefault()) {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadConfigFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("port: [\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadConfigFile(path)
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if cerr.Path != path {
		t.Errorf("path = %q", cerr.Path)
	}
}

func TestServerConfig(t *testing.T) {
	cfg := NewDefault()
	cfg.Plugins = []string{"rest"}
	sc := cfg.ServerConfig()

	if sc.Port != cfg.Port || sc.Host != cfg.Host || sc.ScriptTimeout != cfg.ScriptTimeout {
		t.Errorf("unexpected server config %+v", sc)
	}
	sc.Plugins[0] = "changed"
	if cfg.Plugins[0] != "rest" {
		t.Error("server config shares the plugins slice")
	}
}
