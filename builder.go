package resqtalk

import (
	"context"
	"encoding/json"
	"maps"
)

// tool is the internal implementation of Tool built by NewTool or
// NewTypedTool.
type tool struct {
	name        string
	description string
	schema      map[string]any
	invoke      InvokeFunc
	opts        toolOptions
}

// NewTool builds a Tool from an explicit parameter list and a callback.
// The schema sent to the backend is derived mechanically from params; no
// runtime validation is performed against it. Use WithFixedResult for
// tools whose conversational result is a canned string and
// WithUsageGuideline to tell the model when to call the tool.
func NewTool(name, description string, params []Param, invoke InvokeFunc, opts ...ToolOption) Tool {
	var o toolOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &tool{
		name:        name,
		description: description,
		schema:      paramSchema(params),
		invoke:      invoke,
		opts:        o,
	}
}

// NewVoidTool builds a Tool whose invocation is a pure side effect. The
// dispatch result is the empty string (or the fixed result when set),
// which the UI layer renders as an "Ok, executing tool" placeholder.
func NewVoidTool(name, description string, params []Param, fn func(ctx context.Context, params map[string]any) error, opts ...ToolOption) Tool {
	invoke := func(ctx context.Context, p map[string]any) (string, error) {
		return "", fn(ctx, p)
	}
	return NewTool(name, description, params, invoke, opts...)
}

// NewTypedTool builds a Tool from a typed function. The parameter schema is
// reflected from T's struct tags, and directive parameters are validated
// against that same schema before fn runs, so the schema shown to the model
// and the one enforced here never drift apart. Validation failures are
// ClientError so the message can be fed back for self-correction.
// Returns an error if schema generation fails (e.g. unsupported type).
func NewTypedTool[T any](name, description string, fn func(ctx context.Context, args T) (string, error), opts ...ToolOption) (Tool, error) {
	var o toolOptions
	for _, opt := range opts {
		opt(&o)
	}
	schemaMap, resolved, err := generateSchema[T]()
	if err != nil {
		return nil, err
	}
	invoke := func(ctx context.Context, params map[string]any) (string, error) {
		if params == nil {
			params = map[string]any{}
		}
		if err := validateAgainstSchema(resolved, params); err != nil {
			return "", err
		}
		data, err := json.Marshal(params)
		if err != nil {
			return "", wrapJSONParseError(err)
		}
		var args T
		if err := json.Unmarshal(data, &args); err != nil {
			return "", wrapJSONParseError(err)
		}
		if err := validateCustom(args); err != nil {
			if IsClientError(err) {
				return "", err
			}
			return "", &ClientError{Reason: err.Error(), Err: ErrValidation}
		}
		return fn(ctx, args)
	}
	return &tool{
		name:        name,
		description: description,
		schema:      schemaMap,
		invoke:      invoke,
		opts:        o,
	}, nil
}

func (t *tool) Name() string        { return t.name }
func (t *tool) Description() string { return t.description }

// Parameters returns a shallow copy of the JSON Schema (top-level keys
// only). Nested maps are shared; callers must not mutate them.
func (t *tool) Parameters() map[string]any { return maps.Clone(t.schema) }

func (t *tool) Invoke(ctx context.Context, params map[string]any) (string, error) {
	return t.invoke(ctx, params)
}

func (t *tool) UsageGuideline() string { return t.opts.guideline }

func (t *tool) FixedResult() (string, bool) {
	if t.opts.fixedResult == nil {
		return "", false
	}
	return *t.opts.fixedResult, true
}

// paramSchema builds the object schema for an explicit parameter list.
// Required always marshals as an array, even when empty.
func paramSchema(params []Param) map[string]any {
	props := make(map[string]any, len(params))
	required := make([]string, 0, len(params))
	for _, p := range params {
		props[p.Name] = map[string]any{"type": p.Type}
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

var (
	_ Tool         = (*tool)(nil)
	_ ToolMetadata = (*tool)(nil)
)
