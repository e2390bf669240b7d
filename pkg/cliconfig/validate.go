package cliconfig

import (
	"fmt"
	"strings"
)

// Validate checks that the values are in range.
func (c *CLIConfig) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d is out of range (0-65535)", c.Port)
	}
	if c.ScriptTimeout < 0 || c.ScriptTimeout > maxScriptTimeout {
		return fmt.Errorf("scriptTimeout %s is out of range (0-%s)", c.ScriptTimeout, maxScriptTimeout)
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logLevel %q is not one of debug, info, warn, error", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("logFormat %q is not one of text, json", c.LogFormat)
	}
	return nil
}
