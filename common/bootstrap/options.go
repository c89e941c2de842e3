package bootstrap

import (
	"github.com/justicantus/mediagate/common/config"
	"github.com/justicantus/mediagate/common/logger"
)

// Option configures the bootstrap process
type Option func(*options)

type options struct {
	customLogger *logger.Logger
	customConfig *config.Config
}

// WithLogger uses a pre-built logger instead of creating one
func WithLogger(log *logger.Logger) Option {
	return func(o *options) {
		o.customLogger = log
	}
}

// WithConfig uses a pre-built config instead of loading from environment
func WithConfig(cfg *config.Config) Option {
	return func(o *options) {
		o.customConfig = cfg
	}
}

func defaultOptions() *options {
	return &options{}
}
