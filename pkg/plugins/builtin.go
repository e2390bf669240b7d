// Package plugins assembles the catalogue of built-in plugins.
package plugins

import (
	"github.com/getmockd/imposter/pkg/plugin"
	"github.com/getmockd/imposter/pkg/plugins/detector"
	"github.com/getmockd/imposter/pkg/plugins/openapi"
	"github.com/getmockd/imposter/pkg/plugins/rest"
	"github.com/getmockd/imposter/pkg/plugins/sfdc"
)

// Catalogue returns a catalogue holding every built-in plugin.
func Catalogue() *plugin.Catalogue {
	cat := plugin.NewCatalogue()
	cat.MustRegister(detector.Registration())
	cat.MustRegister(rest.Registration())
	cat.MustRegister(sfdc.Registration())
	cat.MustRegister(openapi.Registration())
	return cat
}
