package plugin

import (
	"fmt"
	"sort"
	"sync"
)

// Factory creates a plugin instance.
type Factory func(deps Dependencies) (Plugin, error)

// Registration describes an available plugin implementation.
type Registration struct {
	// ID is the canonical identifier.
	ID string

	// Aliases are alternative identifiers accepted in configuration files.
	Aliases []string

	// Description is shown by `imposter plugins`.
	Description string

	// Modules are applied, in order, to a private copy of the shared
	// dependencies before New runs.
	Modules []Module

	// New creates the instance.
	New Factory
}

// Catalogue maps identifiers to plugin registrations.
// It is thread-safe and can be used concurrently.
type Catalogue struct {
	regs    map[string]Registration
	aliases map[string]string
	mu      sync.RWMutex
}

// NewCatalogue creates an empty catalogue.
func NewCatalogue() *Catalogue {
	return &Catalogue{
		regs:    make(map[string]Registration),
		aliases: make(map[string]string),
	}
}

// Register adds a registration.
func (c *Catalogue) Register(reg Registration) error {
	if reg.ID == "" {
		return ErrEmptyID
	}
	if reg.New == nil {
		return fmt.Errorf("%w: %s", ErrNilFactory, reg.ID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	names := append([]string{reg.ID}, reg.Aliases...)
	for _, name := range names {
		if _, exists := c.regs[name]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicatePlugin, name)
		}
		if _, exists := c.aliases[name]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicatePlugin, name)
		}
	}

	c.regs[reg.ID] = reg
	for _, alias := range reg.Aliases {
		c.aliases[alias] = reg.ID
	}
	return nil
}

// MustRegister is like Register but panics on error.
func (c *Catalogue) MustRegister(reg Registration) {
	if err := c.Register(reg); err != nil {
		panic(err)
	}
}

// Canonical maps an alias to its canonical identifier. Unknown names are
// returned unchanged.
func (c *Catalogue) Canonical(name string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if id, ok := c.aliases[name]; ok {
		return id
	}
	return name
}

// Lookup returns the registration for an identifier or alias.
func (c *Catalogue) Lookup(name string) (Registration, bool) {
	id := c.Canonical(name)
	c.mu.RLock()
	defer c.mu.RUnlock()
	reg, ok := c.regs[id]
	return reg, ok
}

// List returns all registrations sorted by identifier.
func (c *Catalogue) List() []Registration {
	c.mu.RLock()
	defer c.mu.RUnlock()

	regs := make([]Registration, 0, len(c.regs))
	for _, reg := range c.regs {
		regs = append(regs, reg)
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i].ID < regs[j].ID })
	return regs
}

// Instantiate creates the plugin registered under name. The registration's
// modules configure a clone of base, so base itself is never modified.
func (c *Catalogue) Instantiate(name string, base Dependencies) (Plugin, error) {
	reg, ok := c.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlugin, name)
	}

	deps := base.Clone()
	for _, m := range reg.Modules {
		if m.Configure == nil {
			continue
		}
		if err := m.Configure(&deps); err != nil {
			return nil, fmt.Errorf("plugin %s: module %s: %w", reg.ID, m.Name, err)
		}
	}

	p, err := reg.New(deps)
	if err != nil {
		return nil, fmt.Errorf("plugin %s: %w", reg.ID, err)
	}
	return p, nil
}
