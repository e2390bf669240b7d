package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed declaration.schema.json
var declarationSchemaJSON []byte

const declarationSchemaURL = "declaration.schema.json"

var (
	declarationOnce   sync.Once
	declarationSchema *jsonschema.Schema
	declarationErr    error
)

func compiledDeclarationSchema() (*jsonschema.Schema, error) {
	declarationOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(declarationSchemaURL, bytes.NewReader(declarationSchemaJSON)); err != nil {
			declarationErr = fmt.Errorf("failed to add declaration schema: %w", err)
			return
		}
		declarationSchema, declarationErr = compiler.Compile(declarationSchemaURL)
	})
	return declarationSchema, declarationErr
}

// validateDeclaration checks the parsed document against the declaration
// schema. doc must hold JSON-compatible values.
func validateDeclaration(doc any) error {
	schema, err := compiledDeclarationSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return fmt.Errorf("%w: %s", ErrMissingPlugin, strings.Join(schemaMessages(ve, nil), "; "))
		}
		return fmt.Errorf("%w: %v", ErrMissingPlugin, err)
	}
	return nil
}

// schemaMessages flattens nested schema errors into "field: message" lines.
func schemaMessages(err *jsonschema.ValidationError, out []string) []string {
	if len(err.Causes) == 0 {
		field := strings.ReplaceAll(strings.TrimPrefix(err.InstanceLocation, "/"), "/", ".")
		if field == "" {
			return append(out, err.Message)
		}
		return append(out, field+": "+err.Message)
	}
	for _, cause := range err.Causes {
		out = schemaMessages(cause, out)
	}
	return out
}

// toJSONValue round-trips v through encoding/json so that YAML-decoded
// documents carry the same value types as JSON ones.
func toJSONValue(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
