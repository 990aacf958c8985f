package resqtalk

import "context"

// ToolCallMarker separates conversational text from an embedded tool-call
// directive in "mixed" model output. Everything before the marker is shown
// to the user as-is; the remainder must be a JSON object.
const ToolCallMarker = "TOOL_CALL: "

// DataPrefix is the framing prefix for payload lines in the backend's
// event stream. Lines without it are ignored.
const DataPrefix = "data: "

// Mode selects which input affordance the client presents. Persisted
// server-side and fetched on load.
type Mode string

const (
	ModeText  Mode = "text"
	ModeVoice Mode = "voice"
)

// Param describes one named parameter in a tool's schema. Type is a JSON
// Schema type tag ("string", "number", ...). Order of a []Param is
// preserved in the required list; the schema itself performs no runtime
// validation on the dispatch path.
type Param struct {
	Name     string
	Type     string
	Required bool
}

// InvokeFunc performs a tool's local side effect and returns the text to
// surface to the conversation. Void tools return "". The returned string
// is ignored when the tool declares a fixed result.
type InvokeFunc func(ctx context.Context, params map[string]any) (string, error)

// Tool is a named, client-side-executable capability advertised to the
// backend so a generated response can request it.
type Tool interface {
	Name() string
	Description() string
	// Parameters returns the tool's JSON Schema as a map, included in the
	// machine-readable portion of the manifest.
	Parameters() map[string]any
	// Invoke runs the tool with the directive's parameters. Invalid or
	// missing parameters are the tool's own responsibility to tolerate
	// or reject.
	Invoke(ctx context.Context, params map[string]any) (string, error)
}

// ToolMetadata is implemented by tools created with NewTool and exposes the
// optional fields that are not part of the minimal Tool contract. The
// manifest builder uses UsageGuideline; dispatch uses FixedResult.
type ToolMetadata interface {
	// UsageGuideline states, in natural language, when the tool should be
	// invoked. Informational only; not enforced.
	UsageGuideline() string
	// FixedResult returns a static result string and true when the tool
	// reports a canned message instead of a computed one.
	FixedResult() (string, bool)
}

// Directive is a parsed instruction naming a tool and its arguments,
// embedded in model output.
type Directive struct {
	ToolName   string         `json:"name"`
	Parameters map[string]any `json:"parameters"`
}

// Delta is one incremental text fragment extracted from a streamed
// response frame. First is true for the first non-empty delta of a
// session; the consumer appends a new message on First and replaces the
// last one otherwise.
type Delta struct {
	Text  string
	First bool
}
