// Package testutil provides test helpers for resqtalk (MockTool, scripted
// stream servers).
package testutil

import (
	"context"

	resqtalk "github.com/resqtalk/resqtalk-go"
)

// MockTool is a configurable Tool implementation for tests.
type MockTool struct {
	NameVal      string
	DescVal      string
	GuidelineVal string
	ParamsVal    map[string]any
	FixedVal     *string
	InvokeFn     func(ctx context.Context, params map[string]any) (string, error)
}

// Name returns the tool name.
func (m *MockTool) Name() string {
	if m.NameVal != "" {
		return m.NameVal
	}
	return "mock"
}

// Description returns the tool description.
func (m *MockTool) Description() string {
	return m.DescVal
}

// Parameters returns the parameters schema (or empty map).
func (m *MockTool) Parameters() map[string]any {
	if m.ParamsVal != nil {
		return m.ParamsVal
	}
	return map[string]any{}
}

// Invoke runs InvokeFn if set, otherwise returns "".
func (m *MockTool) Invoke(ctx context.Context, params map[string]any) (string, error) {
	if m.InvokeFn != nil {
		return m.InvokeFn(ctx, params)
	}
	return "", nil
}

// UsageGuideline returns the configured guidance.
func (m *MockTool) UsageGuideline() string {
	return m.GuidelineVal
}

// FixedResult returns the configured fixed result, if any.
func (m *MockTool) FixedResult() (string, bool) {
	if m.FixedVal == nil {
		return "", false
	}
	return *m.FixedVal, true
}

// Ensure MockTool implements Tool and ToolMetadata.
var (
	_ resqtalk.Tool         = (*MockTool)(nil)
	_ resqtalk.ToolMetadata = (*MockTool)(nil)
)
