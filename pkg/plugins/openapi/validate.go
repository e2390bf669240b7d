package openapi

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
)

// ErrInvalidRequest is returned when a request does not conform to its OpenAPI operation.
var ErrInvalidRequest = errors.New("request failed OpenAPI validation")

// maxValidationBodySize bounds the body read for validation.
const maxValidationBodySize = 10 << 20

// FieldError describes one validation failure.
type FieldError struct {
	Location string `json:"location"`
	Field    string `json:"field,omitempty"`
	Message  string `json:"message"`
}

// ValidationError collects the failures of one request.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		if fe.Field != "" {
			msgs[i] = fe.Location + " " + fe.Field + ": " + fe.Message
		} else {
			msgs[i] = fe.Location + ": " + fe.Message
		}
	}
	return ErrInvalidRequest.Error() + ": " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidRequest }

// ValidateRequest checks r against the operation of route. The request body
// is restored after it is read.
func ValidateRequest(r *http.Request, route *routers.Route, pathParams map[string]string) error {
	if r.Body != nil && r.Body != http.NoBody {
		data, err := io.ReadAll(io.LimitReader(r.Body, maxValidationBodySize))
		if err != nil {
			return fmt.Errorf("failed to read request body: %w", err)
		}
		r.Body = io.NopCloser(bytes.NewReader(data))
		defer func() { r.Body = io.NopCloser(bytes.NewReader(data)) }()
	}

	input := &openapi3filter.RequestValidationInput{
		Request:    r,
		PathParams: pathParams,
		Route:      route,
		Options: &openapi3filter.Options{
			MultiError:         true,
			AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
		},
	}
	err := openapi3filter.ValidateRequest(r.Context(), input)
	if err == nil {
		return nil
	}
	verr := &ValidationError{}
	collect(err, verr)
	return verr
}

func collect(err error, out *ValidationError) {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		for _, e := range multi {
			collect(e, out)
		}
		return
	}

	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		fe := FieldError{Location: "request", Message: reqErr.Error()}
		switch {
		case reqErr.Parameter != nil:
			fe.Location = reqErr.Parameter.In
			fe.Field = reqErr.Parameter.Name
		case reqErr.RequestBody != nil:
			fe.Location = "body"
		}
		if reqErr.Err != nil {
			fe.Message = reqErr.Err.Error()
			var schemaErr *openapi3.SchemaError
			if errors.As(reqErr.Err, &schemaErr) {
				if p := jsonPath(schemaErr.JSONPointer()); p != "" {
					fe.Field = p
				}
				fe.Message = schemaErr.Reason
			}
		}
		out.Errors = append(out.Errors, fe)
		return
	}

	var secErr *openapi3filter.SecurityRequirementsError
	if errors.As(err, &secErr) {
		out.Errors = append(out.Errors, FieldError{Location: "security", Message: secErr.Error()})
		return
	}

	out.Errors = append(out.Errors, FieldError{Location: "request", Message: err.Error()})
}

// jsonPath converts JSON pointer parts to $.foo.bar[0] form.
func jsonPath(parts []string) string {
	if len(parts) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("$")
	for _, part := range parts {
		if part == "" {
			continue
		}
		if isIndex(part) {
			sb.WriteString("[" + part + "]")
		} else {
			sb.WriteString("." + part)
		}
	}
	return sb.String()
}

func isIndex(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s != ""
}
