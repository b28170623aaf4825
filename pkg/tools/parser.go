package tools

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strings"
)

// maxXMLSize bounds a single tool call payload.
const maxXMLSize = 10 * 1024 * 1024

var toolRegex = regexp.MustCompile(`(?s)<tool>.*?</tool>`)

// ampersandEntityRegex matches ampersands that already start XML entities
// so the fallback path does not double-escape them.
var ampersandEntityRegex = regexp.MustCompile(`&(?:amp|lt|gt|quot|apos|#\d+|#x[0-9a-fA-F]+);`)

// ParseToolCall extracts the first tool call from text. Callers hand us
// whatever the transport produced; bare ampersands in argument values are
// repaired rather than rejected.
func ParseToolCall(text string) (*ToolCall, error) {
	if len(text) > maxXMLSize {
		return nil, fmt.Errorf("tool call XML exceeds maximum size of %d bytes", maxXMLSize)
	}

	match := toolRegex.FindString(text)
	if match == "" {
		return nil, fmt.Errorf("no tool call found in text")
	}

	var call ToolCall
	if err := UnmarshalXMLWithFallback([]byte(strings.TrimSpace(match)), &call); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tool call XML: %w", err)
	}
	if call.ToolName == "" {
		return nil, fmt.Errorf("tool_name is required in tool call")
	}
	return &call, nil
}

// UnmarshalXMLWithFallback attempts to unmarshal XML, falling back to
// escaping unescaped ampersands when the initial parse fails.
func UnmarshalXMLWithFallback(data []byte, v interface{}) error {
	if err := xml.Unmarshal(data, v); err == nil {
		return nil
	}
	return xml.Unmarshal(escapeUnescapedAmpersands(data), v)
}

// escapeUnescapedAmpersands replaces bare & with &amp; while preserving
// existing entities.
func escapeUnescapedAmpersands(data []byte) []byte {
	text := string(data)

	entityPositions := make(map[int]bool)
	for _, match := range ampersandEntityRegex.FindAllStringIndex(text, -1) {
		entityPositions[match[0]] = true
	}

	var result strings.Builder
	result.Grow(len(text) + 20)
	for i := 0; i < len(text); i++ {
		if text[i] == '&' && !entityPositions[i] {
			result.WriteString("&amp;")
		} else {
			result.WriteByte(text[i])
		}
	}
	return []byte(result.String())
}
