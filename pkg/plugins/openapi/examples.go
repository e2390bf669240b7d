package openapi

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/getmockd/imposter/pkg/dataset"
)

// defaultResponseKey is the catch-all response, which has no status code.
const defaultResponseKey = "default"

// DefaultStatus returns the first response code declared by op that is not
// "default", lowest first, or 200 when none is declared.
func DefaultStatus(op *openapi3.Operation) int {
	if op == nil || op.Responses == nil {
		return 200
	}
	var codes []int
	for key := range op.Responses.Map() {
		if key == defaultResponseKey {
			continue
		}
		if code, err := strconv.Atoi(key); err == nil {
			codes = append(codes, code)
		}
	}
	if len(codes) == 0 {
		return 200
	}
	sort.Ints(codes)
	return codes[0]
}

// FindResponse returns the response declared for status, falling back to
// the range entry (2XX) and then to "default".
func FindResponse(op *openapi3.Operation, status int) *openapi3.Response {
	if op == nil || op.Responses == nil {
		return nil
	}
	ref := op.Responses.Status(status)
	if ref == nil {
		ref = op.Responses.Default()
	}
	if ref == nil {
		return nil
	}
	return ref.Value
}

// Example is a response body synthesised from an OpenAPI response.
type Example struct {
	ContentType string
	Body        []byte
}

// BuildExample picks the media type of resp, preferring JSON, and renders
// its example. The example is taken from the media type's example, its
// first named example, or the schema example, in that order. ok is false
// when resp declares no content.
func BuildExample(resp *openapi3.Response) (ex Example, ok bool) {
	if resp == nil || len(resp.Content) == 0 {
		return Example{}, false
	}
	contentType := pickMediaType(resp.Content)
	media := resp.Content[contentType]
	ex.ContentType = contentType
	if media == nil {
		return ex, true
	}

	value, found := exampleValue(media)
	if !found {
		return ex, true
	}
	ex.Body = render(contentType, value)
	return ex, true
}

func pickMediaType(content openapi3.Content) string {
	types := make([]string, 0, len(content))
	for ct := range content {
		types = append(types, ct)
	}
	sort.Strings(types)
	for _, ct := range types {
		if strings.Contains(ct, "json") {
			return ct
		}
	}
	return types[0]
}

func exampleValue(media *openapi3.MediaType) (any, bool) {
	if media.Example != nil {
		return media.Example, true
	}
	if len(media.Examples) > 0 {
		names := make([]string, 0, len(media.Examples))
		for name := range media.Examples {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if ref := media.Examples[name]; ref != nil && ref.Value != nil && ref.Value.Value != nil {
				return ref.Value.Value, true
			}
		}
	}
	if media.Schema != nil && media.Schema.Value != nil && media.Schema.Value.Example != nil {
		return media.Schema.Value.Example, true
	}
	return nil, false
}

func render(contentType string, value any) []byte {
	if s, ok := value.(string); ok && !strings.Contains(contentType, "json") {
		return []byte(s)
	}
	if strings.Contains(contentType, "json") {
		if s, ok := value.(string); ok && json.Valid([]byte(s)) {
			return []byte(s)
		}
		return dataset.Encode(value)
	}
	if s, ok := dataset.Scalar(value); ok {
		return []byte(s)
	}
	return dataset.Encode(value)
}
