package ecsvault

// Config holds process-wide defaults for storage and dispatch. It
// follows a global-singleton config pattern: a
// package-level value callers mutate before constructing a Registry
// or Manager, rather than a flag/env loader (loading config from files
// or the command line is outside this package's scope).
var Config = config{
	DefaultPoolSize:        0, // 0 means runtime.GOMAXPROCS(0)
	SlotMapInitialCapacity: 256,
	ConsoleListenAddr:      "127.0.0.1:7777",
}

type config struct {
	// DefaultPoolSize is the worker count NewManager uses when none is
	// given explicitly. Zero means "use GOMAXPROCS".
	DefaultPoolSize int

	// SlotMapInitialCapacity is the number of slots preallocated by
	// NewRegistry.
	SlotMapInitialCapacity int

	// ConsoleListenAddr is the default address the console reference
	// server in package console binds to.
	ConsoleListenAddr string
}
