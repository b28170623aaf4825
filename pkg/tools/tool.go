// Package tools defines the tool-call contract pagelens exposes to
// external callers and the dispatcher that routes calls to registered
// tools.
package tools

import (
	"context"
	"encoding/xml"
)

// Tool is one externally callable capability. Tools are invoked through
// XML-formatted tool calls:
//
//	<tool>
//	<tool_name>analyze_page</tool_name>
//	<arguments>
//	  <id>instance-id</id>
//	  <url>https://example.com</url>
//	</arguments>
//	</tool>
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description of what this tool
	// does.
	Description() string

	// Schema returns the JSON schema for this tool's input parameters.
	Schema() map[string]interface{}

	// Execute runs the tool with the given XML arguments and returns a
	// result string plus optional structured metadata.
	Execute(ctx context.Context, argumentsXML []byte) (string, map[string]interface{}, error)
}

// ToolCall is a parsed tool invocation.
type ToolCall struct {
	XMLName   xml.Name       `xml:"tool"`
	ToolName  string         `xml:"tool_name"`
	Arguments ArgumentsBlock `xml:"arguments"`
}

// ArgumentsBlock holds the raw XML of the arguments element.
type ArgumentsBlock struct {
	InnerXML []byte `xml:",innerxml"`
}

// GetArgumentsXML returns the arguments wrapped in <arguments> tags for
// unmarshaling into a tool's input struct.
func (tc *ToolCall) GetArgumentsXML() []byte {
	const prefix = "<arguments>"
	const suffix = "</arguments>"

	result := make([]byte, 0, len(prefix)+len(tc.Arguments.InnerXML)+len(suffix))
	result = append(result, []byte(prefix)...)
	result = append(result, tc.Arguments.InnerXML...)
	result = append(result, []byte(suffix)...)
	return result
}

// BaseToolSchema creates a common JSON schema structure for a tool with
// the given properties and required fields.
func BaseToolSchema(properties map[string]interface{}, required []string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}
