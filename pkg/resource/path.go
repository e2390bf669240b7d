package resource

import (
	"errors"
	"fmt"
	"strings"
)

// Route registration errors.
var (
	ErrMissingPathParam  = errors.New("path has no :param token")
	ErrTooManyPathParams = errors.New("path has more than one :param token")
)

// PathParams returns the names of the :param tokens in a path template.
func PathParams(path string) []string {
	var params []string
	for _, seg := range strings.Split(path, "/") {
		if strings.HasPrefix(seg, ":") && len(seg) > 1 {
			params = append(params, seg[1:])
		}
	}
	return params
}

// ValidateArrayPath checks that an ARRAY resource path contains exactly one
// :param token and returns its name.
func ValidateArrayPath(path string) (string, error) {
	params := PathParams(path)
	switch len(params) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrMissingPathParam, path)
	case 1:
		return params[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrTooManyPathParams, path)
	}
}
