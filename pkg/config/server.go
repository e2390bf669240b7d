package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Server defaults.
const (
	DefaultHost          = "0.0.0.0"
	DefaultPort          = 8080
	DefaultScriptTimeout = 5 * time.Second
)

// ServerConfig carries the listener and runtime settings shared with every
// plugin.
type ServerConfig struct {
	// Host is the listen address.
	Host string

	// Port is the listen port.
	Port int

	// ServerURL overrides the advertised base URL.
	ServerURL string

	// ConfigDirs are scanned for plugin configuration files.
	ConfigDirs []string

	// Plugins are the explicitly requested plugin identifiers.
	Plugins []string

	// ScriptTimeout bounds a single script execution.
	ScriptTimeout time.Duration
}

// DefaultServerConfig returns the default server settings.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Host:          DefaultHost,
		Port:          DefaultPort,
		ScriptTimeout: DefaultScriptTimeout,
	}
}

// ListenAddr returns the host:port the server binds to.
func (c *ServerConfig) ListenAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ResolveServerURL returns the advertised base URL: ServerURL when set,
// otherwise http://host[:port] where a wildcard host is rendered as
// localhost and port 80 is omitted.
func (c *ServerConfig) ResolveServerURL() string {
	if c.ServerURL != "" {
		return strings.TrimSuffix(c.ServerURL, "/")
	}

	host := c.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if c.Port == 80 || c.Port == 0 {
		return "http://" + host
	}
	return fmt.Sprintf("http://%s:%d", host, c.Port)
}

// EffectiveScriptTimeout returns ScriptTimeout, or the default when unset.
func (c *ServerConfig) EffectiveScriptTimeout() time.Duration {
	if c == nil || c.ScriptTimeout <= 0 {
		return DefaultScriptTimeout
	}
	return c.ScriptTimeout
}
