package resource

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ohler55/ojg/jp"

	"github.com/getmockd/imposter/pkg/dataset"
	"github.com/getmockd/imposter/pkg/script"
)

var placeholderPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Render replaces ${...} placeholders in data with values from the request.
// A placeholder is either a dotted path such as
// ${context.request.pathParams.id} or a JSONPath rooted at the context such
// as ${$.context.request.headers['X-Trace']}. Unresolvable placeholders
// render as the empty string.
func Render(data []byte, req script.RequestContext) []byte {
	root := map[string]any{"context": req.Map()}
	return placeholderPattern.ReplaceAllFunc(data, func(m []byte) []byte {
		expr := strings.TrimSpace(string(m[2 : len(m)-1]))
		return []byte(lookup(root, expr))
	})
}

func lookup(root map[string]any, expr string) string {
	x, err := jp.ParseString(toJSONPath(expr))
	if err != nil {
		return ""
	}
	v := x.First(root)
	if v == nil {
		return ""
	}
	if s, ok := dataset.Scalar(v); ok {
		return s
	}
	return fmt.Sprint(v)
}

// toJSONPath converts a dotted path into bracket notation so that keys may
// contain characters such as '-'.
func toJSONPath(expr string) string {
	if strings.HasPrefix(expr, "$") {
		return expr
	}
	var sb strings.Builder
	sb.WriteString("$")
	for _, seg := range strings.Split(expr, ".") {
		sb.WriteString("['")
		sb.WriteString(strings.ReplaceAll(seg, "'", `\'`))
		sb.WriteString("']")
	}
	return sb.String()
}
