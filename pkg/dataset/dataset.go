// Package dataset loads the read-only record datasets that back ARRAY
// resources and the record API.
//
// A dataset is a JSON or YAML file whose root is an array of objects. It is
// read from disk on every call: nothing is cached, so concurrent readers
// share no state and edits to the file are visible on the next request.
package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ohler55/ojg/oj"
	"gopkg.in/yaml.v3"
)

// Record is a single dataset entry.
type Record = map[string]any

// Dataset is an ordered list of records.
type Dataset []Record

// Errors returned by Load.
var (
	ErrNoDataset = errors.New("no dataset configured")
	ErrNotArray  = errors.New("dataset root is not an array")
	ErrNotRecord = errors.New("dataset entry is not an object")
)

// Load reads the dataset at path. YAML is used for .yaml and .yml files,
// JSON otherwise.
func Load(path string) (Dataset, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrNoDataset
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}

	var root any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &root)
	default:
		root, err = oj.Parse(data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse dataset %s: %w", path, err)
	}

	items, ok := root.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotArray, path)
	}

	ds := make(Dataset, 0, len(items))
	for i, item := range items {
		rec, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d]", ErrNotRecord, path, i)
		}
		ds = append(ds, rec)
	}
	return ds, nil
}

// Find returns the first record whose field equals value. Scalar fields
// compare through their canonical string form, so the number 1 matches "1"
// and true matches "true". Null, object and array fields never match.
func Find(ds Dataset, field, value string) (Record, bool) {
	for _, rec := range ds {
		s, ok := Scalar(rec[field])
		if ok && s == value {
			return rec, true
		}
	}
	return nil, false
}

// Scalar returns the canonical string form of a scalar value.
func Scalar(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case uint64:
		return strconv.FormatUint(t, 10), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	case nil, map[string]any, []any:
		return "", false
	default:
		return fmt.Sprint(t), true
	}
}

// Encode renders v as indented JSON with sorted keys.
func Encode(v any) []byte {
	return []byte(oj.JSON(v, &oj.Options{Indent: 2, Sort: true}))
}
