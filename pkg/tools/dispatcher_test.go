package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoTool struct {
	name string
}

func (t *echoTool) Name() string        { return t.name }
func (t *echoTool) Description() string { return "echoes its arguments" }
func (t *echoTool) Schema() map[string]interface{} {
	return BaseToolSchema(map[string]interface{}{}, nil)
}
func (t *echoTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	return string(argsXML), nil, nil
}

func TestDispatcherRoutesCalls(t *testing.T) {
	d := NewDispatcher()
	d.Register(&echoTool{name: "echo"})

	call, err := ParseToolCall("<tool><tool_name>echo</tool_name><arguments><v>1</v></arguments></tool>")
	require.NoError(t, err)

	result, _, err := d.Dispatch(context.Background(), call)
	require.NoError(t, err)
	assert.Equal(t, "<arguments><v>1</v></arguments>", result)
}

func TestDispatcherUnknownTool(t *testing.T) {
	d := NewDispatcher()
	_, _, err := d.Dispatch(context.Background(), &ToolCall{ToolName: "missing"})
	assert.ErrorContains(t, err, `unknown tool "missing"`)
}

func TestDispatcherListSorted(t *testing.T) {
	d := NewDispatcher()
	d.Register(&echoTool{name: "zeta"}, &echoTool{name: "alpha"}, &echoTool{name: "mid"})

	list := d.List()
	require.Len(t, list, 3)
	assert.Equal(t, "alpha", list[0].Name())
	assert.Equal(t, "mid", list[1].Name())
	assert.Equal(t, "zeta", list[2].Name())
}

func TestDispatcherRegisterReplaces(t *testing.T) {
	d := NewDispatcher()
	d.Register(&echoTool{name: "echo"})
	d.Register(&echoTool{name: "echo"})
	assert.Len(t, d.List(), 1)
}

func TestBaseToolSchema(t *testing.T) {
	schema := BaseToolSchema(map[string]interface{}{
		"url": map[string]interface{}{"type": "string"},
	}, []string{"url"})

	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []string{"url"}, schema["required"])

	noRequired := BaseToolSchema(map[string]interface{}{}, nil)
	_, ok := noRequired["required"]
	assert.False(t, ok)
}
