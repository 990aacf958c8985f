package resqtalk

import (
	"encoding/json"
	"fmt"
	"strings"
)

// manifestPreamble is the fixed instruction block describing the required
// call format. It is sent to the backend verbatim ahead of the tool table.
const manifestPreamble = `You have access to functions. If you decide to invoke any of the function(s),
you MUST put it in the format of
{"name": function name, "parameters": dictionary of argument name and its value}

If you do not have to use any function calls, then just return a plain string with your response.

You SHOULD NOT include any other text in the response if you call a function. The name of the function
should match EXACTLY one of these functions at a time:`

// manifestEntry is the machine-readable description of one tool. Fixed
// results and usage guidelines are deliberately excluded; guidelines appear
// once in the prose section and results are internal.
type manifestEntry struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Manifest renders the prompt preamble, per-tool usage guidance, and the
// JSON table of every registered tool. It is a pure read of current
// registry state: calling it twice with no intervening registrations
// yields identical strings, and tools appear in insertion order.
func (r *Registry) Manifest() string {
	tools := r.Tools()

	var b strings.Builder
	b.WriteString(manifestPreamble)
	b.WriteString("\n")

	var guided bool
	for _, t := range tools {
		if g := usageGuideline(t); g != "" {
			if !guided {
				b.WriteString("\nUsage guidance:\n")
				guided = true
			}
			fmt.Fprintf(&b, "- %s: %s\n", t.Name(), g)
		}
	}
	b.WriteString("\n")

	entries := make([]manifestEntry, 0, len(tools))
	for _, t := range tools {
		entries = append(entries, manifestEntry{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	// Map keys marshal in sorted order, so the output is deterministic.
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		// Parameters built by this package are always marshalable; a custom
		// Tool returning an unmarshalable schema is a programming error.
		panic(fmt.Sprintf("resqtalk: manifest marshal: %v", err))
	}
	b.Write(data)
	return b.String()
}
