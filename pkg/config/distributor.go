package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/getmockd/imposter/pkg/logging"
)

// ConfigFilePattern matches plugin configuration files within a directory.
const ConfigFilePattern = "*-config.{yaml,yml,json}"

// Distributor discovers configuration files and groups them by plugin.
type Distributor struct {
	log   *slog.Logger
	dirFS func(dir string) fs.FS
}

// NewDistributor creates a distributor. A nil logger discards output.
func NewDistributor(log *slog.Logger) *Distributor {
	return &Distributor{log: logging.OrNop(log), dirFS: os.DirFS}
}

// Distribute scans each directory (non-recursively) and returns the
// discovered files grouped by declared plugin identifier. Directories are
// scanned in the order given and files in lexical order. Any unreadable
// directory or invalid file aborts the whole load.
func (d *Distributor) Distribute(dirs []string) (Groups, error) {
	groups := make(Groups)
	for _, dir := range dirs {
		files, err := d.scan(dir)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			groups[f.Plugin] = append(groups[f.Plugin], f)
		}
	}
	d.log.Debug("distributed configuration", "directories", len(dirs), "files", groups.Count(), "plugins", len(groups))
	return groups, nil
}

// Distribute is a convenience wrapper around a distributor without logging.
func Distribute(dirs []string) (Groups, error) {
	return NewDistributor(nil).Distribute(dirs)
}

func (d *Distributor) scan(dir string) ([]ConfigFile, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directory %s: %w", dir, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, abs)
		}
		return nil, fmt.Errorf("failed to access directory %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, abs)
	}

	matches, err := doublestar.Glob(d.dirFS(abs), ConfigFilePattern,
		doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
	if err != nil {
		return nil, fmt.Errorf("failed to scan directory %s: %w", abs, err)
	}
	sort.Strings(matches)

	files := make([]ConfigFile, 0, len(matches))
	for _, name := range matches {
		f, err := LoadFile(filepath.Join(abs, name))
		if err != nil {
			return nil, err
		}
		d.log.Debug("discovered configuration file", "path", f.Path, logging.KeyPlugin, f.Plugin)
		files = append(files, f)
	}
	return files, nil
}

// LoadFile reads and validates a single configuration file.
func LoadFile(path string) (ConfigFile, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return ConfigFile{}, &LoadError{Path: path, Message: "failed to resolve path", Err: err}
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return ConfigFile{}, &LoadError{Path: abs, Message: "failed to read", Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return ConfigFile{}, &LoadError{Path: abs, Message: "failed to load", Err: ErrEmptyFile}
	}

	format := formatFor(abs)
	doc, err := parseDocument(data, format)
	if err != nil {
		return ConfigFile{}, &LoadError{Path: abs, Message: "failed to parse", Err: fmt.Errorf("%w: %v", ErrInvalidConfig, err)}
	}
	if _, ok := doc.(map[string]any); !ok {
		return ConfigFile{}, &LoadError{Path: abs, Message: "failed to parse", Err: fmt.Errorf("%w: top level must be a mapping", ErrInvalidConfig)}
	}
	if err := validateDeclaration(doc); err != nil {
		return ConfigFile{}, &LoadError{Path: abs, Message: "failed validation", Err: err}
	}

	decl := doc.(map[string]any)
	plugin, _ := decl["plugin"].(string)
	if plugin == "" {
		plugin, _ = decl["pluginClass"].(string)
	}

	return ConfigFile{
		Path:    abs,
		BaseDir: filepath.Dir(abs),
		Plugin:  plugin,
		Format:  format,
		Raw:     data,
	}, nil
}

func formatFor(path string) Format {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		return FormatYAML
	}
	return FormatJSON
}

// parseDocument decodes data into JSON-compatible values.
func parseDocument(data []byte, format Format) (any, error) {
	if format == FormatYAML {
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		return toJSONValue(doc)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}
