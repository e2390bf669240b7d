// Package plugin discovers, instantiates and configures imposter plugins.
//
// # Interface Hierarchy
//
// Plugin is the base interface every plugin implements. Optional behaviour
// is expressed through capability interfaces, detected by type assertion:
//
//	Plugin (base - all plugins)
//	├── Provider      - yields further plugin identifiers at startup
//	├── Configurable  - receives the configuration files declaring it
//	└── Routable      - registers HTTP handlers
//
// # Catalogue
//
// A Catalogue maps plugin identifiers to registrations. A registration lists
// the modules the plugin depends on; each module contributes extra entries to
// a private copy of the shared Dependencies before the factory runs:
//
//	cat := plugin.NewCatalogue()
//	cat.MustRegister(plugin.Registration{
//	    ID:      "rest",
//	    New:     func(deps plugin.Dependencies) (plugin.Plugin, error) { return rest.New(deps), nil },
//	})
//
// # Loading
//
// Loader drives the Registry: it seeds the requested identifiers, creates
// instances through the catalogue, asks every new provider for more
// identifiers until nothing new appears, and finally hands each configurable
// plugin its group of configuration files.
//
//	reg, err := plugin.NewLoader(cat, deps, groups).Load(nil)
package plugin
