package cli

import (
	"log/slog"

	"github.com/getmockd/imposter/pkg/cliconfig"
	"github.com/getmockd/imposter/pkg/config"
	"github.com/getmockd/imposter/pkg/plugin"
	"github.com/getmockd/imposter/pkg/plugins"
	"github.com/getmockd/imposter/pkg/script"
	"github.com/getmockd/imposter/pkg/server"
)

// bootstrap is a configured server ready to start.
type bootstrap struct {
	server   *server.Server
	registry *plugin.Registry
	groups   config.Groups
}

// boot discovers configuration, loads plugins and registers their routes.
func boot(cfg *cliconfig.CLIConfig, version string, log *slog.Logger) (*bootstrap, error) {
	serverCfg := cfg.ServerConfig()

	groups, err := config.NewDistributor(log).Distribute(serverCfg.ConfigDirs)
	if err != nil {
		return nil, err
	}

	deps := plugin.Dependencies{
		Config:  serverCfg,
		Logger:  log,
		Scripts: script.NewRunner(serverCfg.EffectiveScriptTimeout(), log),
	}
	reg, err := plugin.NewLoader(plugins.Catalogue(), deps, groups).Load(serverCfg.Plugins)
	if err != nil {
		return nil, err
	}

	srv := server.New(serverCfg, server.Options{Version: version, Logger: log})
	if err := srv.ConfigureRoutes(reg); err != nil {
		return nil, err
	}

	return &bootstrap{server: srv, registry: reg, groups: groups}, nil
}
