package plugin

import (
	"github.com/gin-gonic/gin"

	"github.com/getmockd/imposter/pkg/config"
)

// DefaultPlugins are loaded when no identifiers are requested explicitly.
var DefaultPlugins = []string{"detector"}

// Plugin is the base interface implemented by every plugin.
type Plugin interface {
	// ID returns the plugin's catalogue identifier.
	ID() string
}

// Provider is implemented by plugins that yield further plugin identifiers.
// ProvidePlugins is called at most once per provider.
type Provider interface {
	Plugin
	ProvidePlugins(cfg *config.ServerConfig, groups config.Groups) ([]string, error)
}

// Configurable is implemented by plugins that consume configuration files.
// LoadConfiguration is called exactly once, with an empty slice when no file
// declares the plugin.
type Configurable interface {
	Plugin
	LoadConfiguration(files []config.ConfigFile) error
}

// Router accepts handler registrations. Paths use :name parameters.
type Router interface {
	Handle(method, path string, h gin.HandlerFunc) error
}

// Routable is implemented by plugins that serve HTTP requests.
type Routable interface {
	Plugin
	ConfigureRoutes(r Router) error
}
