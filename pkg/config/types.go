package config

import (
	"strings"
)

// Format is the serialisation format of a configuration file.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ConfigFile is one discovered plugin configuration file. It is loaded once
// at startup and never modified afterwards.
type ConfigFile struct {
	// Path is the absolute path of the file.
	Path string

	// BaseDir is the absolute directory containing the file. Relative
	// response and script files resolve against it.
	BaseDir string

	// Plugin is the plugin identifier the file declares.
	Plugin string

	// Format is the file's serialisation format.
	Format Format

	// Raw holds the file contents.
	Raw []byte
}

// Groups maps a declared plugin identifier to its configuration files, in
// discovery order.
type Groups map[string][]ConfigFile

// Files returns the group for id. The result is never nil.
func (g Groups) Files(id string) []ConfigFile {
	if files, ok := g[id]; ok && files != nil {
		return files
	}
	return []ConfigFile{}
}

// Count returns the total number of files across all groups.
func (g Groups) Count() int {
	n := 0
	for _, files := range g {
		n += len(files)
	}
	return n
}

// ResourceType selects how a resource is resolved.
type ResourceType string

// Resource types.
const (
	ResourceTypeObject ResourceType = "OBJECT"
	ResourceTypeArray  ResourceType = "ARRAY"
)

// ResponseConfig describes the default response of a resource.
type ResponseConfig struct {
	// StatusCode overrides the default 200 when set.
	StatusCode int `json:"statusCode,omitempty" yaml:"statusCode,omitempty" validate:"omitempty,min=100,max=599"`

	// File is a static response file for OBJECT resources, or the dataset
	// for ARRAY resources.
	File string `json:"file,omitempty" yaml:"file,omitempty"`

	// ScriptFile is run before the response is resolved.
	ScriptFile string `json:"scriptFile,omitempty" yaml:"scriptFile,omitempty"`

	// Headers are added to every response.
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`

	// Template enables ${...} placeholder substitution in response files.
	Template bool `json:"template,omitempty" yaml:"template,omitempty"`
}

// ResourceConfig declares one mocked resource.
type ResourceConfig struct {
	Path        string         `json:"path,omitempty" yaml:"path,omitempty" validate:"omitempty,startswith=/"`
	Method      string         `json:"method,omitempty" yaml:"method,omitempty" validate:"omitempty,alpha"`
	Type        ResourceType   `json:"type,omitempty" yaml:"type,omitempty" validate:"omitempty,oneof=OBJECT ARRAY object array"`
	ContentType string         `json:"contentType,omitempty" yaml:"contentType,omitempty"`
	Response    ResponseConfig `json:"response,omitempty" yaml:"response,omitempty"`

	// BaseDir is stamped by Decode; it is never read from the file.
	BaseDir string `json:"-" yaml:"-"`
}

// EffectiveMethod returns the upper-cased method, defaulting to GET.
func (r *ResourceConfig) EffectiveMethod() string {
	if r.Method == "" {
		return "GET"
	}
	return strings.ToUpper(r.Method)
}

// EffectiveType returns the resource type, defaulting to OBJECT.
func (r *ResourceConfig) EffectiveType() ResourceType {
	if r.Type == "" {
		return ResourceTypeObject
	}
	return ResourceType(strings.ToUpper(string(r.Type)))
}

// BaseConfig is embedded by every plugin configuration. The plugin's root
// resource is inlined alongside the plugin declaration.
type BaseConfig struct {
	Plugin      string `json:"plugin,omitempty" yaml:"plugin,omitempty"`
	PluginClass string `json:"pluginClass,omitempty" yaml:"pluginClass,omitempty"`

	ResourceConfig `yaml:",inline"`
}

// RootResource returns the inlined root resource.
func (b *BaseConfig) RootResource() *ResourceConfig {
	return &b.ResourceConfig
}

// PluginID returns the declared plugin identifier, honouring the legacy
// pluginClass alias.
func (b *BaseConfig) PluginID() string {
	if b.Plugin != "" {
		return b.Plugin
	}
	return b.PluginClass
}

// RootHolder is implemented by configurations that embed BaseConfig.
type RootHolder interface {
	RootResource() *ResourceConfig
}

// ResourcesHolder is implemented by configurations that declare
// sub-resources.
type ResourcesHolder interface {
	SubResources() []*ResourceConfig
}
