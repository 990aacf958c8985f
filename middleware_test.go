package resqtalk

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithLogging(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	base := NewTool("echo", "", nil,
		func(context.Context, map[string]any) (string, error) { return "out", nil },
		WithUsageGuideline("guide"),
		WithFixedResult("fixed"),
	)
	wrapped := WithLogging(logger)(base)

	out, err := wrapped.Invoke(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "out", out)
	assert.Contains(t, buf.String(), "tool start")
	assert.Contains(t, buf.String(), "tool end")
	assert.Contains(t, buf.String(), "tool=echo")

	// Metadata passes through the wrapper.
	md, ok := wrapped.(ToolMetadata)
	require.True(t, ok)
	assert.Equal(t, "guide", md.UsageGuideline())
	fixed, has := md.FixedResult()
	assert.True(t, has)
	assert.Equal(t, "fixed", fixed)
}

func TestWithLogging_Error(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	boom := errors.New("gps unavailable")
	base := NewVoidTool("getLocation", "", nil,
		func(context.Context, map[string]any) error { return boom },
	)
	_, err := WithLogging(logger)(base).Invoke(context.Background(), nil)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, buf.String(), "tool error")
}

func TestWithRecovery(t *testing.T) {
	t.Parallel()

	base := NewVoidTool("boom", "", nil,
		func(context.Context, map[string]any) error { panic("dead") },
	)
	out, err := WithRecovery()(base).Invoke(context.Background(), nil)
	require.Error(t, err)
	assert.Empty(t, out)
	var sysErr *SystemError
	assert.ErrorAs(t, err, &sysErr)
}

func TestRegistry_Use(t *testing.T) {
	t.Parallel()

	var order []string
	tag := func(label string) Middleware {
		return func(next Tool) Tool {
			return &tagTool{toolBase: toolBase{next: next}, label: label, order: &order}
		}
	}

	reg := NewRegistry()
	reg.Register(NewVoidTool("before", "", nil, func(context.Context, map[string]any) error { return nil }))
	reg.Use(tag("outer"), tag("inner"))
	reg.Register(NewVoidTool("after", "", nil, func(context.Context, map[string]any) error { return nil }))

	_, err := reg.Dispatch(context.Background(), Directive{ToolName: "before"})
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner"}, order, "first middleware is outermost")

	order = order[:0]
	_, err = reg.Dispatch(context.Background(), Directive{ToolName: "after"})
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner"}, order, "late registrations get the chain too")

	// Calling Use again replaces the chain instead of stacking on top.
	order = order[:0]
	reg.Use(tag("only"))
	_, err = reg.Dispatch(context.Background(), Directive{ToolName: "before"})
	require.NoError(t, err)
	assert.Equal(t, []string{"only"}, order)
}

type tagTool struct {
	toolBase
	label string
	order *[]string
}

func (m *tagTool) Invoke(ctx context.Context, params map[string]any) (string, error) {
	*m.order = append(*m.order, m.label)
	return m.next.Invoke(ctx, params)
}
