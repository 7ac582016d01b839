package transport

import "time"

// Config defines socket creation and file transfer defaults.
type Config struct {
	// DialTimeout bounds a single TCP connect attempt.
	DialTimeout time.Duration
	// DialRetry is the pause between connect attempts.
	DialRetry time.Duration
	// DialMaxRetries caps connect attempts before a dial fails.
	DialMaxRetries int
	// SubscribeSettle is the pause between subscribing to a download topic
	// and sending the transfer request. It narrows, but does not close, the
	// window in which a late subscriber misses published frames.
	SubscribeSettle time.Duration
	// ChunkSize is the payload size of one uploaded chunk.
	ChunkSize int
}

// DefaultConfig returns the transport defaults.
func DefaultConfig() Config {
	return Config{
		DialTimeout:     5 * time.Second,
		DialRetry:       250 * time.Millisecond,
		DialMaxRetries:  10,
		SubscribeSettle: 100 * time.Millisecond,
		ChunkSize:       1 << 20,
	}
}

// WithDefaults fills zero values from DefaultConfig. SubscribeSettle may be
// negative to disable the pause entirely.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.DialTimeout <= 0 {
		c.DialTimeout = def.DialTimeout
	}
	if c.DialRetry <= 0 {
		c.DialRetry = def.DialRetry
	}
	if c.DialMaxRetries <= 0 {
		c.DialMaxRetries = def.DialMaxRetries
	}
	if c.SubscribeSettle == 0 {
		c.SubscribeSettle = def.SubscribeSettle
	}
	if c.SubscribeSettle < 0 {
		c.SubscribeSettle = 0
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = def.ChunkSize
	}
	return c
}
