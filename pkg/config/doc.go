// Package config discovers, parses and distributes imposter configuration.
//
// A configuration directory holds any number of plugin configuration files
// named *-config.yaml, *-config.yml or *-config.json. Every file declares the
// plugin that owns it:
//
//	plugin: rest
//	path: /pets
//	contentType: application/json
//	response:
//	  file: pets.json
//
// Distribute scans the directories and groups the files by plugin identifier.
// Plugins later turn the raw files of their group into typed configuration
// with Decode, which also applies struct-tag validation and stamps the
// directory of the file onto every resource so that relative response files
// resolve against it.
//
// ServerConfig carries the listener and runtime settings shared with every
// plugin.
package config
