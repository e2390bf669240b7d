package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

// Decode decodes file into target, validates it using validate struct tags
// and stamps the file's base directory onto the root resource and every
// sub-resource. target must be a pointer to a struct.
func Decode(file ConfigFile, target any) error {
	if err := unmarshal(file, target); err != nil {
		return &LoadError{Path: file.Path, Message: "failed to decode", Err: fmt.Errorf("%w: %v", ErrInvalidConfig, err)}
	}

	if err := structValidator().Struct(target); err != nil {
		return &LoadError{Path: file.Path, Message: "failed validation", Err: convertValidationError(err)}
	}

	if h, ok := target.(RootHolder); ok {
		h.RootResource().BaseDir = file.BaseDir
	}
	if h, ok := target.(ResourcesHolder); ok {
		for _, rc := range h.SubResources() {
			rc.BaseDir = file.BaseDir
		}
	}
	return nil
}

func unmarshal(file ConfigFile, target any) error {
	if file.Format == FormatYAML {
		return yaml.Unmarshal(file.Raw, target)
	}
	return json.NewDecoder(bytes.NewReader(file.Raw)).Decode(target)
}

// convertValidationError normalises validator errors into field paths.
func convertValidationError(err error) error {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	msgs := make([]string, 0, len(ves))
	for _, fe := range ves {
		msgs = append(msgs, fmt.Sprintf("%s failed validation for tag '%s'", fieldPath(fe), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

// fieldPath strips the root type name from the namespace, so
// "Config.resources[0].path" becomes "resources[0].path". Embedded structs
// keep their Go names in the namespace and are dropped too.
func fieldPath(fe validator.FieldError) string {
	parts := strings.Split(fe.Namespace(), ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	kept := parts[:0]
	for _, p := range parts {
		if p == "BaseConfig" || p == "ResourceConfig" {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, ".")
}
