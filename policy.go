package kaskade

import (
	"context"
	"errors"
	"time"
)

// DataPolicy is the routing strategy controlling whether a logical operation
// is served from the local layer, the cloud layer, or a
// consistency-preserving combination of both.
type DataPolicy int

const (
	// LocalOnly serves the operation from the local layer alone.
	LocalOnly DataPolicy = iota
	// CloudOnly serves the operation from the cloud layer alone.
	CloudOnly
	// LocalFirst serves from the local layer, mirroring successful writes
	// to the cloud and falling back to CloudFirst for failed reads.
	LocalFirst
	// CloudFirst serves from the cloud layer, writing successful results
	// back into the local layer and serving failed reads locally.
	CloudFirst
)

// String implements fmt.Stringer.
func (p DataPolicy) String() string {
	switch p {
	case LocalOnly:
		return "LocalOnly"
	case CloudOnly:
		return "CloudOnly"
	case LocalFirst:
		return "LocalFirst"
	case CloudFirst:
		return "CloudFirst"
	default:
		return "Unknown"
	}
}

// Execute runs one request through the policy state machine and resolves to
// exactly one response or one failure.
//
// Entry guard: if the request already has an execution in flight the call
// fails immediately with ErrAlreadyExecuting and does not disturb the
// in-flight call. The guard is cleared unconditionally on completion, so a
// later Execute on the same instance is always possible.
func (c *Client) Execute(ctx context.Context, req *Request) (*Response, error) {
	if err := c.checkExecutable(req); err != nil {
		return nil, err
	}

	if !req.executing.CompareAndSwap(false, true) {
		c.metrics.RecordReentrancyRejection(string(req.method))
		return nil, &ClientError{
			Type:    ErrorTypeReentrant,
			Message: "execute called while a previous execution is still in flight",
			Cause:   ErrAlreadyExecuting,
			Method:  string(req.method),
			URL:     req.URL(),
			Policy:  req.DataPolicy.String(),
		}
	}
	defer req.executing.Store(false)

	var execID string
	if c.debugEnabled() && c.debug.ExecIDGen != nil {
		execID = c.debug.ExecIDGen()
	}
	if c.debugEnabled() && c.debug.LogPolicy {
		c.logger.Debug("execution start",
			"execID", execID, "policy", req.DataPolicy, "method", req.method, "url", req.URL())
	}

	start := time.Now()
	c.metrics.RecordExecutionStart(req.DataPolicy.String(), string(req.method))

	resp, err := c.dispatch(ctx, req, req.DataPolicy, execID)
	req.Response = resp

	c.metrics.RecordExecutionEnd(req.DataPolicy.String(), string(req.method))
	c.metrics.RecordExecution(req.DataPolicy.String(), string(req.method), outcome(resp, err), time.Since(start))

	if c.debugEnabled() && c.debug.LogPolicy {
		if err != nil {
			c.logger.Debug("execution failed", "execID", execID, "error", err.Error())
		} else {
			c.logger.Debug("execution done", "execID", execID, "status", resp.StatusCode)
		}
	}
	return resp, err
}

// dispatch is the policy state machine: one function parameterized by the
// policy tag, calling itself recursively for mirror and fallback branches.
// Layer errors are hard failures and propagate immediately; only an
// unsuccessful Response flows through the branching below as data.
func (c *Client) dispatch(ctx context.Context, req *Request, policy DataPolicy, execID string) (*Response, error) {
	switch policy {
	case LocalOnly:
		return c.executeLocal(ctx, req, execID)

	case CloudOnly:
		return c.executeCloud(ctx, req, execID)

	case LocalFirst:
		resp, err := c.dispatch(ctx, req, LocalOnly, execID)
		if err != nil {
			return nil, err
		}
		if resp.IsSuccess() {
			if req.method == GET {
				return resp, nil
			}
			// Write succeeded locally: mirror it forward to the cloud
			// with the stored data as body, then resolve to the local
			// response. Auth is inherited so the mirror can reach the
			// network.
			mirror := req.derive(CloudOnly, req.method, resp.Data, req.Auth)
			c.logMirror(execID, "mirroring local write to cloud", mirror)
			c.metrics.RecordMirrorWrite("cloud", string(mirror.method))
			if _, merr := c.dispatch(ctx, mirror, CloudOnly, execID); merr != nil {
				return nil, merr
			}
			return resp, nil
		}
		if req.method == GET {
			// Failed local read: fall through to the richer CloudFirst
			// policy so the network result is mirrored back locally.
			fallback := req.derive(CloudFirst, req.method, req.Body, req.Auth)
			c.logMirror(execID, "local read failed, falling back to cloud", fallback)
			c.metrics.RecordFallback("cloud", string(req.method))
			return c.dispatch(ctx, fallback, CloudFirst, execID)
		}
		// Local-first writes are never replayed against the network on
		// failure; surface the local failure as-is.
		return resp, nil

	case CloudFirst:
		resp, err := c.dispatch(ctx, req, CloudOnly, execID)
		if err != nil {
			return nil, err
		}
		if resp.IsSuccess() {
			method := req.method
			if method == GET {
				// A successful read is written into the local layer as
				// an upsert.
				method = PUT
			}
			mirror := req.derive(LocalOnly, method, resp.Data, nil)
			c.logMirror(execID, "mirroring cloud result to local", mirror)
			c.metrics.RecordMirrorWrite("local", string(mirror.method))
			if _, merr := c.dispatch(ctx, mirror, LocalOnly, execID); merr != nil {
				return nil, merr
			}
			return resp, nil
		}
		if req.method == GET {
			// Serve stale local data on network failure, reads only.
			fallback := req.derive(LocalOnly, req.method, req.Body, nil)
			c.logMirror(execID, "cloud read failed, serving local data", fallback)
			c.metrics.RecordFallback("local", string(req.method))
			return c.dispatch(ctx, fallback, LocalOnly, execID)
		}
		return resp, nil

	default:
		return nil, &ClientError{
			Type:    ErrorTypeValidation,
			Message: "unknown data policy",
			Policy:  policy.String(),
		}
	}
}

// executeLocal invokes the local layer. Auth is never resolved on this path.
func (c *Client) executeLocal(ctx context.Context, req *Request, execID string) (*Response, error) {
	if c.debugEnabled() && c.debug.LogLayers {
		c.logger.Debug("local layer execute", "execID", execID, "method", req.method, "path", req.Path)
	}
	resp, err := c.local.Execute(ctx, req)
	c.recordLayer("local", req, resp, err)
	return resp, err
}

// executeCloud resolves auth against the request's strategy, attaches the
// resulting header if any, and invokes the cloud layer. An auth resolution
// failure aborts before the layer is reached and is not retried.
func (c *Client) executeCloud(ctx context.Context, req *Request, execID string) (*Response, error) {
	value, ok, err := resolveAuth(ctx, c, req.Auth)
	if err != nil {
		if c.debugEnabled() && c.debug.LogAuth {
			c.logger.Warn("auth resolution failed", "execID", execID, "error", err.Error())
		}
		c.metrics.RecordError(ErrorTypeAuth, string(req.method))
		return nil, &ClientError{
			Type:      ErrorTypeAuth,
			Message:   "credential resolution failed",
			Cause:     err,
			ExecID:    execID,
			Method:    string(req.method),
			URL:       req.URL(),
			Policy:    req.DataPolicy.String(),
			Layer:     "cloud",
			Timestamp: time.Now(),
		}
	}
	if ok {
		req.Headers.Set(headerAuth, value)
	}
	if c.debugEnabled() && c.debug.LogLayers {
		c.logger.Debug("cloud layer execute",
			"execID", execID, "method", req.method, "url", req.URL(), "authenticated", ok)
	}
	resp, err := c.cloud.Execute(ctx, req)
	c.recordLayer("cloud", req, resp, err)
	return resp, err
}

func (c *Client) recordLayer(layer string, req *Request, resp *Response, err error) {
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	if err != nil {
		c.metrics.RecordError(errorType(err, layer), string(req.method))
	}
	c.metrics.RecordLayerRequest(layer, string(req.method), status)
}

func (c *Client) logMirror(execID, msg string, derived *Request) {
	if c.debugEnabled() && c.debug.LogMirror {
		c.logger.Debug(msg,
			"execID", execID, "policy", derived.DataPolicy, "method", derived.method, "path", derived.Path)
	}
}

func (c *Client) debugEnabled() bool {
	return c.debug != nil && c.debug.Enabled && c.logger != nil
}

// checkExecutable validates the client configuration backing the request.
func (c *Client) checkExecutable(req *Request) error {
	if req.client != nil && req.client != c {
		return &ClientError{
			Type:    ErrorTypeValidation,
			Message: "request belongs to a different client",
		}
	}
	if c.validationError != nil {
		return c.validationError
	}
	return nil
}

func outcome(resp *Response, err error) string {
	switch {
	case err != nil:
		return "error"
	case resp.IsSuccess():
		return "success"
	default:
		return "failure"
	}
}

func errorType(err error, layer string) string {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Type
	}
	if layer == "local" {
		return ErrorTypeCache
	}
	return ErrorTypeNetwork
}
