package convert

import "github.com/gerunddev/uniast/internal/logger"

// Option configures a Parser or a Serializer.
type Option func(*options)

type options struct {
	log *logger.Logger
}

// WithLogger sets the logger conversions report to.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

func newOptions(opts []Option) options {
	o := options{log: logger.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
