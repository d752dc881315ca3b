package kaskade

// Option represents a client configuration option.
type Option func(*Client)

// WithAPIProtocol sets the API protocol (http or https).
func WithAPIProtocol(protocol string) Option {
	return func(c *Client) {
		c.apiProtocol = protocol
	}
}

// WithAPIHost sets the API host requests are addressed to.
func WithAPIHost(host string) Option {
	return func(c *Client) {
		c.apiHost = host
	}
}

// WithAPIVersion sets the value of the API version header attached to every
// request.
func WithAPIVersion(version string) Option {
	return func(c *Client) {
		c.apiVersion = version
	}
}

// WithLocalLayer sets the local cache execution pipeline.
func WithLocalLayer(layer Layer) Option {
	return func(c *Client) {
		c.local = layer
	}
}

// WithCloudLayer sets the network execution pipeline.
func WithCloudLayer(layer Layer) Option {
	return func(c *Client) {
		c.cloud = layer
	}
}

// WithDefaultDataPolicy sets the policy applied to requests that do not
// choose one explicitly.
func WithDefaultDataPolicy(policy DataPolicy) Option {
	return func(c *Client) {
		c.defaultPolicy = policy
	}
}

// WithDefaultAuth sets the auth strategy applied to requests that do not
// carry their own.
func WithDefaultAuth(auth AuthStrategy) Option {
	return func(c *Client) {
		c.defaultAuth = auth
	}
}

// WithMetrics enables Prometheus metrics collection on the default
// registerer.
func WithMetrics() Option {
	return func(c *Client) {
		c.metrics = NewMetricsCollector()
	}
}

// WithMetricsCollector sets a custom metrics collector.
func WithMetricsCollector(collector *MetricsCollector) Option {
	return func(c *Client) {
		c.metrics = collector
	}
}

// WithLogger sets a custom logger for debug output.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables debug logging with default configuration.
func WithDebug() Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.Enabled = true
	}
}

// WithDebugConfig sets custom debug configuration.
func WithDebugConfig(config *DebugConfig) Option {
	return func(c *Client) {
		c.debug = config
	}
}

// WithSimpleLogger enables debug logging with a simple console logger.
func WithSimpleLogger() Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.Enabled = true
		c.logger = NewSimpleLogger()
	}
}

// WithExecIDGenerator sets a custom function for generating execution IDs.
func WithExecIDGenerator(gen func() string) Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.ExecIDGen = gen
	}
}

// RequestOption represents a per-request construction option.
type RequestOption func(*Request)

// WithQuery attaches a filter/sort/limit specification to the request.
func WithQuery(query Query) RequestOption {
	return func(r *Request) {
		r.Query = query
	}
}

// WithFlags attaches extra query-string parameters merged alongside the
// serialized query. The query's values win on key collision.
func WithFlags(flags map[string]string) RequestOption {
	return func(r *Request) {
		r.Flags = flags
	}
}

// WithBody sets the request payload. The payload is opaque to the executor.
func WithBody(body interface{}) RequestOption {
	return func(r *Request) {
		r.Body = body
	}
}

// WithAuth sets the request's auth strategy, overriding the client default.
func WithAuth(auth AuthStrategy) RequestOption {
	return func(r *Request) {
		r.Auth = auth
	}
}

// WithDataPolicy sets the request's data policy, overriding the client
// default.
func WithDataPolicy(policy DataPolicy) RequestOption {
	return func(r *Request) {
		r.DataPolicy = policy
	}
}

// WithResponseType sets how the network layer asks for the response payload.
func WithResponseType(rt ResponseType) RequestOption {
	return func(r *Request) {
		r.ResponseType = rt
	}
}

// WithHeader sets one header on the request, overriding defaults.
func WithHeader(name, value string) RequestOption {
	return func(r *Request) {
		r.Headers.Set(name, value)
	}
}

// WithHeaders applies a header mapping to the request.
func WithHeaders(headers map[string]string) RequestOption {
	return func(r *Request) {
		r.Headers.SetAll(headers)
	}
}

// WithFragment sets the URL hash fragment, appended verbatim.
func WithFragment(fragment string) RequestOption {
	return func(r *Request) {
		r.Fragment = fragment
	}
}
