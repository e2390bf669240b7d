// Package rest implements the generic REST plugin: static OBJECT resources
// and ARRAY resources backed by a dataset.
package rest

import (
	"fmt"
	"log/slog"

	"github.com/getmockd/imposter/pkg/config"
	"github.com/getmockd/imposter/pkg/logging"
	"github.com/getmockd/imposter/pkg/plugin"
	"github.com/getmockd/imposter/pkg/resource"
)

// ID is the plugin identifier.
const ID = "rest"

// Config is the configuration file of a REST mock.
type Config struct {
	config.BaseConfig `yaml:",inline"`

	Resources []config.ResourceConfig `json:"resources,omitempty" yaml:"resources,omitempty" validate:"dive"`
}

// SubResources implements config.ResourcesHolder.
func (c *Config) SubResources() []*config.ResourceConfig {
	out := make([]*config.ResourceConfig, len(c.Resources))
	for i := range c.Resources {
		out[i] = &c.Resources[i]
	}
	return out
}

// Plugin serves the resources of every rest configuration file.
type Plugin struct {
	log     *slog.Logger
	handler *resource.Handler
	configs []*Config
}

// New creates the plugin.
func New(deps plugin.Dependencies) (plugin.Plugin, error) {
	return &Plugin{
		log:     logging.ForPlugin(deps.Logger, ID),
		handler: resource.NewHandler(deps.Scripts),
	}, nil
}

// Registration describes the plugin for the catalogue.
func Registration() plugin.Registration {
	return plugin.Registration{
		ID:          ID,
		Aliases:     []string{"com.gatehill.imposter.plugin.rest.RestPluginImpl"},
		Description: "Generic REST resources served from files and datasets",
		New:         New,
	}
}

func (p *Plugin) ID() string { return ID }

// LoadConfiguration decodes each file. Sub-resources without a content
// type inherit the root's.
func (p *Plugin) LoadConfiguration(files []config.ConfigFile) error {
	configs := make([]*Config, 0, len(files))
	for _, f := range files {
		cfg := &Config{}
		if err := config.Decode(f, cfg); err != nil {
			return err
		}
		for i := range cfg.Resources {
			if cfg.Resources[i].ContentType == "" {
				cfg.Resources[i].ContentType = cfg.ContentType
			}
		}
		configs = append(configs, cfg)
	}
	p.configs = configs
	p.log.Debug("loaded configuration", "files", len(files))
	return nil
}

// ConfigureRoutes registers the root resource of each configuration at its
// path, then each sub-resource under the root path.
func (p *Plugin) ConfigureRoutes(r plugin.Router) error {
	for _, cfg := range p.configs {
		root := cfg.RootResource()
		if root.Path != "" {
			if err := p.addObject(r, root.Path, root); err != nil {
				return err
			}
		}

		for _, rc := range cfg.SubResources() {
			qualified := root.Path + rc.Path
			var err error
			switch rc.EffectiveType() {
			case config.ResourceTypeArray:
				err = p.addArray(r, qualified, rc)
			default:
				err = p.addObject(r, qualified, rc)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Plugin) addObject(r plugin.Router, path string, rc *config.ResourceConfig) error {
	p.log.Debug("adding object handler", logging.KeyResource, path, "method", rc.EffectiveMethod())
	return r.Handle(rc.EffectiveMethod(), path, p.handler.Object(rc))
}

func (p *Plugin) addArray(r plugin.Router, path string, rc *config.ResourceConfig) error {
	h, err := p.handler.Array(rc, rc.Path)
	if err != nil {
		return fmt.Errorf("resource %s: %w", path, err)
	}
	p.log.Debug("adding array handler", logging.KeyResource, path, "method", rc.EffectiveMethod())
	return r.Handle(rc.EffectiveMethod(), path, h)
}
