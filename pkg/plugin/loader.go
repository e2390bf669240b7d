package plugin

import (
	"fmt"
	"log/slog"

	"github.com/getmockd/imposter/pkg/config"
	"github.com/getmockd/imposter/pkg/logging"
)

// Loader instantiates and configures plugins.
type Loader struct {
	catalogue *Catalogue
	deps      Dependencies
	groups    config.Groups
	registry  *Registry
	log       *slog.Logger
}

// NewLoader creates a loader. groups may be nil.
func NewLoader(cat *Catalogue, deps Dependencies, groups config.Groups) *Loader {
	if groups == nil {
		groups = config.Groups{}
	}
	if deps.Config == nil {
		deps.Config = config.DefaultServerConfig()
	}
	deps.Logger = logging.OrNop(deps.Logger)
	return &Loader{
		catalogue: cat,
		deps:      deps,
		groups:    groups,
		registry:  NewRegistry(),
		log:       deps.Logger,
	}
}

// Registry returns the loader's registry.
func (l *Loader) Registry() *Registry {
	return l.registry
}

// Load resolves ids (DefaultPlugins when empty), expanding providers until
// no new identifiers appear, then configures every configurable instance.
func (l *Loader) Load(ids []string) (*Registry, error) {
	if len(ids) == 0 {
		ids = DefaultPlugins
	}

	if err := l.resolve(ids); err != nil {
		return nil, err
	}
	if l.registry.Count() == 0 {
		return nil, ErrNoPlugins
	}
	if err := l.configure(); err != nil {
		return nil, err
	}

	l.log.Info("plugins loaded", "count", l.registry.Count(), "plugins", l.registry.Identifiers())
	return l.registry, nil
}

func (l *Loader) resolve(ids []string) error {
	for _, id := range ids {
		l.registry.RegisterIdentifier(l.catalogue.Canonical(id))
	}

	var created []string
	for _, id := range l.registry.Identifiers() {
		if l.registry.HasInstance(id) {
			continue
		}
		p, err := l.catalogue.Instantiate(id, l.deps)
		if err != nil {
			return err
		}
		l.registry.RegisterInstance(id, p)
		l.log.Debug("plugin instantiated", logging.KeyPlugin, id)
		created = append(created, id)
	}

	for _, id := range created {
		p, _ := l.registry.Instance(id)
		provider, ok := p.(Provider)
		if !ok || !l.registry.RegisterProvider(id) {
			continue
		}
		provided, err := provider.ProvidePlugins(l.deps.Config, l.groups)
		if err != nil {
			return fmt.Errorf("plugin %s: failed to provide plugins: %w", id, err)
		}
		l.log.Debug("provider expanded", logging.KeyPlugin, id, "provided", provided)
		if len(provided) > 0 {
			if err := l.resolve(provided); err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *Loader) configure() error {
	for _, id := range l.registry.Identifiers() {
		p, ok := l.registry.Instance(id)
		if !ok {
			continue
		}
		c, ok := p.(Configurable)
		if !ok {
			continue
		}
		files := l.filesFor(id)
		if err := c.LoadConfiguration(files); err != nil {
			return fmt.Errorf("plugin %s: failed to load configuration: %w", id, err)
		}
		l.log.Debug("plugin configured", logging.KeyPlugin, id, "files", len(files))
	}
	return nil
}

// filesFor returns the files declaring id or one of its aliases, in
// discovery order per declared name.
func (l *Loader) filesFor(id string) []config.ConfigFile {
	files := append([]config.ConfigFile{}, l.groups.Files(id)...)
	if reg, ok := l.catalogue.Lookup(id); ok {
		for _, alias := range reg.Aliases {
			files = append(files, l.groups.Files(alias)...)
		}
	}
	return files
}
