package openapi

import "github.com/getmockd/imposter/pkg/config"

// Config is the configuration file of an OpenAPI mock. The root path, when
// set, prefixes every operation path; the root response and script apply to
// operations without a matching resource.
type Config struct {
	config.BaseConfig `yaml:",inline"`

	SpecFile        string     `json:"specFile" yaml:"specFile" validate:"required"`
	StripServerPath bool       `json:"stripServerPath,omitempty" yaml:"stripServerPath,omitempty"`
	Validation      Validation `json:"validation,omitempty" yaml:"validation,omitempty"`

	// Resources override responses per operation. Path is the OpenAPI path,
	// e.g. /pets/{petId}.
	Resources []config.ResourceConfig `json:"resources,omitempty" yaml:"resources,omitempty" validate:"dive"`
}

// Validation toggles request validation against the OpenAPI document.
type Validation struct {
	Request bool `json:"request,omitempty" yaml:"request,omitempty"`
}

// SubResources implements config.ResourcesHolder.
func (c *Config) SubResources() []*config.ResourceConfig {
	out := make([]*config.ResourceConfig, len(c.Resources))
	for i := range c.Resources {
		out[i] = &c.Resources[i]
	}
	return out
}

// resourceFor returns a copy of the resource configured for the operation,
// falling back to the root resource.
func (c *Config) resourceFor(specPath, method string) config.ResourceConfig {
	for _, rc := range c.Resources {
		if rc.Path == specPath && rc.EffectiveMethod() == method {
			if rc.ContentType == "" {
				rc.ContentType = c.ContentType
			}
			return rc
		}
	}
	rc := c.ResourceConfig
	rc.Path = specPath
	rc.Method = method
	return rc
}
