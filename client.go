package kaskade

import (
	"fmt"
	"strings"
)

// Client is the configuration object shared by every request it creates: the
// API endpoint (protocol and host), the two execution layers, the default
// data policy and the ambient logging/metrics setup. It is safe for
// concurrent use; per-operation state lives on the Request.
type Client struct {
	apiProtocol   string
	apiHost       string
	apiVersion    string
	local         Layer
	cloud         Layer
	defaultPolicy DataPolicy
	defaultAuth   AuthStrategy
	logger        Logger
	debug         *DebugConfig
	metrics       *MetricsCollector

	validationError error
}

// New constructs a Client using the provided functional options. A best
// effort validation is performed; call IsValid / ValidationError for errors.
func New(options ...Option) *Client {
	client := &Client{
		apiProtocol:   "https",
		apiHost:       "",
		apiVersion:    "1",
		local:         NewMemoryLayer(),
		cloud:         NewHTTPLayer(),
		defaultPolicy: CloudOnly,
		defaultAuth:   nil,
		logger:        nil,
		debug:         DefaultDebugConfig(),
		metrics:       nil,
	}

	for _, option := range options {
		option(client)
	}

	if err := client.ValidateConfiguration(); err != nil {
		client.validationError = err
	}

	return client
}

// APIProtocol returns the configured API protocol.
func (c *Client) APIProtocol() string { return c.apiProtocol }

// APIHost returns the configured API host.
func (c *Client) APIHost() string { return c.apiHost }

// IsValid reports whether configuration validation passed at construction.
func (c *Client) IsValid() bool {
	return c.validationError == nil
}

// ValidationError returns the configuration validation error, if any.
func (c *Client) ValidationError() error {
	return c.validationError
}

// NewRequest constructs a request descriptor for one logical operation with
// the client's defaults merged under the caller's options. The method string
// is validated immediately; protocol and host are seeded from the client and
// independently mutable on the returned request.
func (c *Client) NewRequest(method, path string, options ...RequestOption) (*Request, error) {
	if c == nil {
		return nil, &ClientError{
			Type:    ErrorTypeValidation,
			Message: "client is nil",
			Cause:   ErrNilClient,
		}
	}
	if c.validationError != nil {
		return nil, c.validationError
	}

	m, err := ParseMethod(method)
	if err != nil {
		return nil, err
	}

	req := &Request{
		Headers:      defaultHeaders(c.apiVersion),
		Protocol:     c.apiProtocol,
		Host:         c.apiHost,
		Path:         path,
		ResponseType: ResponseTypeJSON,
		Auth:         c.defaultAuth,
		DataPolicy:   c.defaultPolicy,
		client:       c,
		method:       m,
	}

	for _, option := range options {
		option(req)
	}

	return req, nil
}

// ValidateConfiguration validates the client configuration and returns an
// error if invalid.
func (c *Client) ValidateConfiguration() error {
	var problems []string

	if c.apiProtocol != "http" && c.apiProtocol != "https" {
		problems = append(problems, fmt.Sprintf("apiProtocol must be http or https, got %q", c.apiProtocol))
	}
	if strings.TrimSpace(c.apiHost) == "" {
		problems = append(problems, "apiHost must be set")
	}
	if c.local == nil {
		problems = append(problems, "local layer cannot be nil")
	}
	if c.cloud == nil {
		problems = append(problems, "cloud layer cannot be nil")
	}
	if c.defaultPolicy < LocalOnly || c.defaultPolicy > CloudFirst {
		problems = append(problems, "defaultPolicy must be one of the four data policies")
	}
	if c.debug != nil && c.debug.Enabled {
		if c.debug.ExecIDGen == nil {
			problems = append(problems, "debug ExecIDGen must be set when debug is enabled")
		}
		if c.logger == nil {
			problems = append(problems, "logger must be set when debug is enabled")
		}
	}

	if len(problems) > 0 {
		return &ClientError{
			Type:    ErrorTypeValidation,
			Message: "configuration validation failed",
			Cause:   fmt.Errorf("validation errors: %v", problems),
		}
	}

	return nil
}
