package fastboot

// Config holds the client configuration.
type Config struct {
	// Progress is called with cumulative bytes sent during download (optional)
	Progress ProgressFunc

	// Logger receives protocol diagnostics (optional)
	Logger Logger

	// ChunkSize bounds each transport write during the payload phase so
	// progress reporting stays granular. Chunking is invisible on the
	// wire.
	ChunkSize int
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		ChunkSize: 16 * 1024,
	}
}

// Option is a functional option for configuring the Client.
type Option func(*Config)

// WithProgress sets a callback to track download payload progress.
//
// Example:
//
//	client := fastboot.New(port,
//	    fastboot.WithProgress(func(sent, total int) {
//	        bar.Set(sent)
//	    }),
//	)
func WithProgress(cb ProgressFunc) Option {
	return func(c *Config) {
		c.Progress = cb
	}
}

// WithLogger sets a logger for protocol diagnostics.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithChunkSize sets the maximum bytes per transport write during the
// payload phase. Values below 1 are ignored.
func WithChunkSize(size int) Option {
	return func(c *Config) {
		if size > 0 {
			c.ChunkSize = size
		}
	}
}
