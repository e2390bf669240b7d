package cliconfig

// MergeConfig merges source into target, recording sourceType for every
// value taken from source. Only non-zero values are applied.
func MergeConfig(target, source *CLIConfig, sourceType string) {
	if source == nil {
		return
	}
	if target.Sources == nil {
		target.Sources = make(map[string]string)
	}

	if source.Host != "" {
		target.Host = source.Host
		target.Sources["host"] = sourceType
	}
	if source.Port != 0 {
		target.Port = source.Port
		target.Sources["port"] = sourceType
	}
	if source.ServerURL != "" {
		target.ServerURL = source.ServerURL
		target.Sources["serverUrl"] = sourceType
	}
	if source.ScriptTimeout != 0 {
		target.ScriptTimeout = source.ScriptTimeout
		target.Sources["scriptTimeout"] = sourceType
	}
	if len(source.ConfigDirs) > 0 {
		target.ConfigDirs = append([]string(nil), source.ConfigDirs...)
		target.Sources["configDirs"] = sourceType
	}
	if len(source.Plugins) > 0 {
		target.Plugins = append([]string(nil), source.Plugins...)
		target.Sources["plugins"] = sourceType
	}
	if source.LogLevel != "" {
		target.LogLevel = source.LogLevel
		target.Sources["logLevel"] = sourceType
	}
	if source.LogFormat != "" {
		target.LogFormat = source.LogFormat
		target.Sources["logFormat"] = sourceType
	}
}
