package resqtalk

import (
	"encoding/json"
	"strings"
)

// Extract scans the fully accumulated reply text for an embedded tool-call
// directive. Two encodings are recognized, tried in this order:
//
//  1. mixed mode: the text contains ToolCallMarker; everything before the
//     marker is conversational text and the remainder must be a JSON object
//     with "name" and "parameters" keys;
//  2. pure mode: the entire trimmed text is that JSON object.
//
// A malformed payload is never an error: Extract falls back to reporting
// the whole text as conversational content with found=false. When a
// directive is found, plain holds the conversational prefix ("" in pure
// mode).
func Extract(text string) (plain string, dir *Directive, found bool) {
	if idx := strings.Index(text, ToolCallMarker); idx >= 0 {
		if d, ok := parseDirective(text[idx+len(ToolCallMarker):]); ok {
			return strings.TrimSpace(text[:idx]), d, true
		}
		return text, nil, false
	}

	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		if d, ok := parseDirective(trimmed); ok {
			return "", d, true
		}
	}
	return text, nil, false
}

// parseDirective decodes a JSON object with name/parameters keys. A missing
// or empty name means the payload is not a directive.
func parseDirective(s string) (*Directive, bool) {
	var d Directive
	if err := json.Unmarshal([]byte(s), &d); err != nil {
		return nil, false
	}
	if d.ToolName == "" {
		return nil, false
	}
	if d.Parameters == nil {
		d.Parameters = map[string]any{}
	}
	return &d, true
}
