package plugin

// Error is a simple error type for plugin errors.
// It allows defining sentinel errors as constants.
type Error string

// Error implements the error interface.
func (e Error) Error() string { return string(e) }

// Sentinel errors for plugin discovery and loading.
const (
	// ErrNoPlugins is returned when loading ends without any plugin instance.
	ErrNoPlugins = Error("no plugins were loaded")

	// ErrUnknownPlugin is returned when an identifier has no registration.
	ErrUnknownPlugin = Error("unknown plugin")

	// ErrDuplicatePlugin is returned when an identifier or alias is
	// registered twice.
	ErrDuplicatePlugin = Error("plugin already registered")

	// ErrEmptyID is returned when a registration has no identifier.
	ErrEmptyID = Error("plugin ID cannot be empty")

	// ErrNilFactory is returned when a registration has no factory.
	ErrNilFactory = Error("plugin factory cannot be nil")
)
