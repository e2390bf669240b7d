// Package detector provides the default plugin: a provider that loads every
// plugin declared by the discovered configuration files.
package detector

import (
	"log/slog"
	"sort"

	"github.com/getmockd/imposter/pkg/config"
	"github.com/getmockd/imposter/pkg/logging"
	"github.com/getmockd/imposter/pkg/plugin"
)

// ID is the plugin identifier.
const ID = "detector"

// Plugin is the config detector.
type Plugin struct {
	log *slog.Logger
}

// New creates the plugin.
func New(deps plugin.Dependencies) (plugin.Plugin, error) {
	return &Plugin{log: logging.ForPlugin(deps.Logger, ID)}, nil
}

// Registration describes the plugin for the catalogue.
func Registration() plugin.Registration {
	return plugin.Registration{
		ID:          ID,
		Aliases:     []string{"config-detector"},
		Description: "Loads every plugin declared by the configuration files",
		New:         New,
	}
}

func (p *Plugin) ID() string { return ID }

// ProvidePlugins returns the declared plugin identifiers, sorted.
func (p *Plugin) ProvidePlugins(_ *config.ServerConfig, groups config.Groups) ([]string, error) {
	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	p.log.Debug("detected plugins", "plugins", ids)
	return ids, nil
}
