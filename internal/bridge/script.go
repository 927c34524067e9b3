package bridge

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

// renderCall serializes one command into its canonical script invocation.
// String arguments are JSON-encoded so untrusted content (video IDs,
// external IDs) cannot break out of the call text; numbers render as-is
// and booleans as true/false.
func renderCall(name string, args ...any) string {
	rendered := make([]string, len(args))
	for i, arg := range args {
		rendered[i] = renderArg(arg)
	}
	return fmt.Sprintf("%s(%s);", name, strings.Join(rendered, ", "))
}

func renderArg(arg any) string {
	switch v := arg.(type) {
	case string:
		return escapeString(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		// Structured arguments (option objects) serialize as JSON.
		return renderJSON(v)
	}
}

// escapeString JSON-encodes s, quotes included.
func escapeString(s string) string {
	out, err := sonic.Marshal(s)
	if err != nil {
		// Marshal of a string cannot fail; keep the call well-formed
		// regardless.
		return `""`
	}
	return string(out)
}

func renderJSON(v any) string {
	out, err := sonic.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(out)
}
