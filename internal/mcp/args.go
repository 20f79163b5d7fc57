package mcp

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// toolArgs wraps the argument map of a tool call. MCP sends numbers as
// float64 and arrays as []interface{}.
type toolArgs map[string]interface{}

func argsOf(request mcp.CallToolRequest) (toolArgs, error) {
	if request.Params.Arguments == nil {
		return toolArgs{}, nil
	}
	m, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid arguments format")
	}
	return toolArgs(m), nil
}

// str returns the string argument key. A required argument must be present
// and non-empty.
func (a toolArgs) str(key string, required bool) (string, error) {
	val, ok := a[key]
	if !ok {
		if required {
			return "", fmt.Errorf("%s parameter is required", key)
		}
		return "", nil
	}
	s, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}
	if required && s == "" {
		return "", fmt.Errorf("%s cannot be empty", key)
	}
	return s, nil
}

func (a toolArgs) boolean(key string, def bool) bool {
	if b, ok := a[key].(bool); ok {
		return b
	}
	return def
}

// strings returns the string elements of an array argument, nil when absent.
func (a toolArgs) strings(key string) []string {
	arr, ok := a[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// clampedInt returns the integer argument key within [lo, hi].
func (a toolArgs) clampedInt(key string, def, lo, hi int) int {
	v := def
	if f, ok := a[key].(float64); ok {
		v = int(f)
	}
	return max(lo, min(hi, v))
}
