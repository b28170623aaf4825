package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Dispatcher routes parsed tool calls to registered tools. It is the thin
// protocol edge: all real work happens inside the tools.
type Dispatcher struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{tools: make(map[string]Tool)}
}

// Register adds tools, replacing any with the same name.
func (d *Dispatcher) Register(tools ...Tool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, t := range tools {
		d.tools[t.Name()] = t
	}
}

// List returns the registered tools sorted by name.
func (d *Dispatcher) List() []Tool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	list := make([]Tool, 0, len(d.tools))
	for _, t := range d.tools {
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}

// Dispatch executes the named tool with the call's arguments.
func (d *Dispatcher) Dispatch(ctx context.Context, call *ToolCall) (string, map[string]interface{}, error) {
	d.mu.RLock()
	tool, ok := d.tools[call.ToolName]
	d.mu.RUnlock()

	if !ok {
		return "", nil, fmt.Errorf("unknown tool %q", call.ToolName)
	}
	return tool.Execute(ctx, call.GetArgumentsXML())
}
