package resqtalk

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// toolOptions hold optional tool settings.
type toolOptions struct {
	guideline   string
	fixedResult *string
}

// ToolOption configures a tool built with NewTool or NewTypedTool.
type ToolOption func(*toolOptions)

// WithUsageGuideline sets the natural-language condition under which the
// tool should be invoked. It appears in the manifest's prose section only.
func WithUsageGuideline(g string) ToolOption {
	return func(o *toolOptions) {
		o.guideline = g
	}
}

// WithFixedResult makes dispatch report the given static string instead of
// the callback's return value. An empty fixed result is still a fixed
// result and suppresses the callback's output.
func WithFixedResult(s string) ToolOption {
	return func(o *toolOptions) {
		o.fixedResult = &s
	}
}

// RegistryOption configures a Registry.
type RegistryOption func(*registryOptions)

type registryOptions struct {
	logger        *slog.Logger
	recoverPanics bool
	onBefore      func(context.Context, Directive)
	onAfter       func(ctx context.Context, d Directive, result string, err error, dur time.Duration)
}

// WithLogger sets the logger used for dispatch failures.
func WithLogger(l *slog.Logger) RegistryOption {
	return func(o *registryOptions) {
		o.logger = l
	}
}

// WithRecoverPanics controls panic recovery in Dispatch (default true).
// When enabled, a panicking tool yields a SystemError.
func WithRecoverPanics(enable bool) RegistryOption {
	return func(o *registryOptions) {
		o.recoverPanics = enable
	}
}

// WithOnBeforeDispatch sets a hook called before each tool invocation.
func WithOnBeforeDispatch(fn func(context.Context, Directive)) RegistryOption {
	return func(o *registryOptions) {
		o.onBefore = fn
	}
}

// WithOnAfterDispatch sets a hook called after each tool invocation with
// the final result, error, and duration.
func WithOnAfterDispatch(fn func(ctx context.Context, d Directive, result string, err error, dur time.Duration)) RegistryOption {
	return func(o *registryOptions) {
		o.onAfter = fn
	}
}

// ClientOption configures a backend Client.
type ClientOption func(*clientOptions)

type clientOptions struct {
	httpClient *http.Client
	cfID       string
	cfSecret   string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// WithHTTPClient replaces the default HTTP client. The default carries no
// global timeout; streamed reads are bounded by the request context.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(o *clientOptions) {
		o.httpClient = c
	}
}

// WithCFAccess attaches the Cloudflare Access service-token headers
// (CF-Access-Client-Id / CF-Access-Client-Secret) to every request.
func WithCFAccess(id, secret string) ClientOption {
	return func(o *clientOptions) {
		o.cfID = id
		o.cfSecret = secret
	}
}

// WithRateLimit caps prompt submissions. Useful when the backend is a
// constrained field deployment shared by several clients.
func WithRateLimit(r rate.Limit, burst int) ClientOption {
	return func(o *clientOptions) {
		o.limiter = rate.NewLimiter(r, burst)
	}
}

// WithClientLogger sets the logger used for transport failures.
func WithClientLogger(l *slog.Logger) ClientOption {
	return func(o *clientOptions) {
		o.logger = l
	}
}
