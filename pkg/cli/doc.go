// Package cli implements the imposter command line: serve, validate,
// plugins and version.
//
// Configuration is layered by pkg/cliconfig; flags given on the command line
// take precedence over every other source.
package cli
