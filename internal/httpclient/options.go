package httpclient

import "time"

// Options holds client configuration.
type Options struct {
	providerName string
	timeout      time.Duration
	headers      map[string]string
}

// Option configures the client.
type Option func(*Options)

func newOptions(opts ...Option) *Options {
	options := &Options{}
	for _, o := range opts {
		o(options)
	}
	return options
}

// WithProviderName names the client in metrics and traces.
func WithProviderName(name string) Option {
	return func(o *Options) {
		o.providerName = name
	}
}

// WithTimeout sets the overall request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.timeout = timeout
	}
}

// WithHeader sets a default header on every request.
func WithHeader(key, value string) Option {
	return func(o *Options) {
		if o.headers == nil {
			o.headers = make(map[string]string)
		}
		o.headers[key] = value
	}
}
