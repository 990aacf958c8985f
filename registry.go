package resqtalk

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Registry holds the process-wide tool table. It is append-only: tools are
// registered at startup and never removed or replaced for the lifetime of
// the registry. Duplicate names are accepted at registration time (a caller
// error) and surface as ErrAmbiguousTool at dispatch.
type Registry struct {
	mu          sync.RWMutex
	tools       []Tool // wrapped with middlewares, used by Dispatch and Manifest
	rawTools    []Tool // unwrapped, used by Use() to re-apply middlewares from scratch
	middlewares []Middleware
	opts        registryOptions
}

// NewRegistry creates a Registry with the given options.
func NewRegistry(opts ...RegistryOption) *Registry {
	o := registryOptions{
		recoverPanics: true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Registry{opts: o}
}

// Register appends a tool. Registering two tools with the same name is not
// rejected here; such a name becomes undispatchable (ErrAmbiguousTool).
// Stored middlewares (see Use) are applied before registration.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rawTools = append(r.rawTools, t)
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		t = r.middlewares[i](t)
	}
	r.tools = append(r.tools, t)
}

// Tools returns a snapshot of all registered tools in insertion order.
func (r *Registry) Tools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, len(r.tools))
	copy(out, r.tools)
	return out
}

// Dispatch resolves a directive against the registry and invokes the
// matched tool. Exactly one registered tool must carry the directive's
// name: zero matches is ErrToolNotFound, more than one is ErrAmbiguousTool.
// The returned string is the text to surface to the conversation: the
// tool's fixed result when it declares one, otherwise whatever Invoke
// returned ("" for void tools).
//
// Dispatch reads the registry without mutating it; the only side effect is
// the matched tool's own. A recovered panic inside Invoke becomes a
// SystemError so one failing tool cannot take down the dispatch path.
func (r *Registry) Dispatch(ctx context.Context, d Directive) (result string, err error) {
	tool, err := r.lookup(d.ToolName)
	if err != nil {
		if r.opts.logger != nil {
			r.opts.logger.Error("tool dispatch failed", "tool", d.ToolName, "error", err)
		}
		return "", err
	}

	if r.opts.onBefore != nil {
		r.opts.onBefore(ctx, d)
	}
	start := time.Now()
	defer func() {
		if r.opts.onAfter != nil {
			r.opts.onAfter(ctx, d, result, err, time.Since(start))
		}
	}()
	if r.opts.recoverPanics {
		defer func() {
			if p := recover(); p != nil {
				result = ""
				err = &SystemError{Err: &panicError{p: p}}
			}
		}()
	}

	out, err := tool.Invoke(ctx, d.Parameters)
	if err != nil {
		if r.opts.logger != nil {
			r.opts.logger.Error("tool invocation failed", "tool", d.ToolName, "error", err)
		}
		return "", err
	}
	if fixed, ok := fixedResult(tool); ok {
		return fixed, nil
	}
	return out, nil
}

// lookup finds the single tool with the given name.
func (r *Registry) lookup(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var found Tool
	matches := 0
	for _, t := range r.tools {
		if t.Name() == name {
			found = t
			matches++
		}
	}
	switch matches {
	case 1:
		return found, nil
	case 0:
		return nil, fmt.Errorf("dispatch %q: %w", name, ErrToolNotFound)
	default:
		return nil, fmt.Errorf("dispatch %q matched %d tools: %w", name, matches, ErrAmbiguousTool)
	}
}

// fixedResult reports the tool's static result string if it declares one.
func fixedResult(t Tool) (string, bool) {
	if tm, ok := t.(ToolMetadata); ok {
		return tm.FixedResult()
	}
	return "", false
}

// usageGuideline returns the tool's usage guidance, if any.
func usageGuideline(t Tool) string {
	if tm, ok := t.(ToolMetadata); ok {
		return tm.UsageGuideline()
	}
	return ""
}
