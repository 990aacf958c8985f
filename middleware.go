package resqtalk

import (
	"context"
	"log/slog"
	"time"
)

// Middleware wraps a Tool with cross-cutting behavior (logging, recovery).
type Middleware func(Tool) Tool

// WithLogging returns a middleware that logs start, end, duration, and
// errors of every invocation.
func WithLogging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Tool) Tool {
		return &loggingTool{toolBase: toolBase{next: next}, logger: logger}
	}
}

// WithRecovery returns a middleware that recovers panics in a single tool
// and returns SystemError. The registry already recovers on the dispatch
// path; use this for tools invoked outside a Registry.
func WithRecovery() Middleware {
	return func(next Tool) Tool {
		return &recoveryTool{toolBase{next: next}}
	}
}

// toolBase delegates Tool and ToolMetadata to the wrapped Tool; used by
// middleware wrappers.
type toolBase struct{ next Tool }

func (b *toolBase) Name() string               { return b.next.Name() }
func (b *toolBase) Description() string        { return b.next.Description() }
func (b *toolBase) Parameters() map[string]any { return b.next.Parameters() }

func (b *toolBase) UsageGuideline() string {
	if tm, ok := b.next.(ToolMetadata); ok {
		return tm.UsageGuideline()
	}
	return ""
}

func (b *toolBase) FixedResult() (string, bool) {
	if tm, ok := b.next.(ToolMetadata); ok {
		return tm.FixedResult()
	}
	return "", false
}

type loggingTool struct {
	toolBase
	logger *slog.Logger
}

func (m *loggingTool) Invoke(ctx context.Context, params map[string]any) (string, error) {
	m.logger.Info("tool start", "tool", m.next.Name())
	start := time.Now()
	res, err := m.next.Invoke(ctx, params)
	dur := time.Since(start)
	if err != nil {
		m.logger.Error("tool error", "tool", m.next.Name(), "duration", dur, "error", err)
		return "", err
	}
	m.logger.Info("tool end", "tool", m.next.Name(), "duration", dur)
	return res, nil
}

type recoveryTool struct{ toolBase }

func (r *recoveryTool) Invoke(ctx context.Context, params map[string]any) (res string, err error) {
	defer func() {
		if p := recover(); p != nil {
			res = ""
			err = &SystemError{Err: &panicError{p: p}}
		}
	}()
	return r.next.Invoke(ctx, params)
}

// Use stores the given middlewares and reapplies them from scratch to all
// registered tools (onion order: first middleware is outermost). Tools
// registered after Use also get these middlewares. Calling Use again
// replaces the chain and rewraps from raw tools, avoiding double-wrapping.
func (r *Registry) Use(middlewares ...Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middlewares = middlewares
	r.tools = r.tools[:0]
	for _, raw := range r.rawTools {
		t := raw
		for i := len(middlewares) - 1; i >= 0; i-- {
			t = middlewares[i](t)
		}
		r.tools = append(r.tools, t)
	}
}
