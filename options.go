package rangedex

import "go.uber.org/zap"

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver    string // "memory", "valkey" or "redis"
	addrs     []string
	password  string
	keyPrefix string

	indexes map[string]map[string]string

	logger *zap.Logger
}

// WithValkey stores segments in a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis stores segments in a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithMemory keeps segments in process memory. This is the default.
func WithMemory() Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "memory"
		c.addrs = nil
		c.password = ""
	})
}

// WithKeyPrefix sets the key prefix used in Valkey or Redis. Default: "rangedex:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithIndex declares an index and the types of its fields, e.g.
// {"age": "long", "price": "double", "name": "keyword"}. May be repeated.
func WithIndex(name string, mappings map[string]string) Option {
	return optionFunc(func(c *clientConfig) {
		if c.indexes == nil {
			c.indexes = make(map[string]map[string]string)
		}
		c.indexes[name] = mappings
	})
}

// WithLogger sets the logger for rewrite failures and debug traces.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}
