package morph

import (
	"time"

	"gorm.io/morph/config"
	"gorm.io/morph/dialect"
	"gorm.io/morph/logger"
	"gorm.io/morph/schema"
)

// ConfigOption use functional option for morph Config.
type ConfigOption func(c *Config)

// WithNamingStrategy set schema namer.
func WithNamingStrategy(namer schema.Namer) ConfigOption {
	return func(c *Config) {
		c.NamingStrategy = namer
	}
}

// WithLogger set logger.
func WithLogger(logger logger.Interface) ConfigOption {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithSlowThreshold set the slow statement threshold of the default logger.
func WithSlowThreshold(threshold time.Duration) ConfigOption {
	return func(c *Config) {
		c.SlowThreshold = threshold
	}
}

// WithConfig set field, type and template defaults.
func WithConfig(cfg *config.Config) ConfigOption {
	return func(c *Config) {
		c.Schema = cfg
	}
}

// WithDialector set dialector.
func WithDialector(dialector dialect.Dialector) ConfigOption {
	return func(c *Config) {
		c.Dialector = dialector
	}
}

// WithConnPool set conn pool, the dialector does not open its own.
func WithConnPool(pool ConnPool) ConfigOption {
	return func(c *Config) {
		c.ConnPool = pool
	}
}
