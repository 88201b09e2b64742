package sandbox

import (
	"fmt"
	"variaredirect/internal/domain/errs"
	"variaredirect/internal/models"
)

// Result field names.
const (
	resultSkip     = "skip"
	resultDir      = "dir"
	resultFilename = "filename"
)

// ValidateResult checks the exported return value of a filter function.
//
// The value must be a non-null object with a boolean skip. Optional dir and
// filename must be strings; null and undefined count as absent.
func ValidateResult(raw any) (*models.FilterResult, error) {
	obj, ok := raw.(map[string]any)
	if !ok || obj == nil {
		return nil, fmt.Errorf("%w: filter must return an object, got %s", errs.ErrSandboxShape, describe(raw))
	}

	skip, ok := obj[resultSkip].(bool)
	if !ok {
		return nil, fmt.Errorf("%w: %q must be a boolean, got %s", errs.ErrSandboxShape, resultSkip, describe(obj[resultSkip]))
	}
	res := &models.FilterResult{Skip: skip}

	var err error
	if res.Dir, err = optionalString(obj, resultDir); err != nil {
		return nil, err
	}
	if res.Filename, err = optionalString(obj, resultFilename); err != nil {
		return nil, err
	}
	return res, nil
}

func optionalString(obj map[string]any, key string) (*string, error) {
	v, present := obj[key]
	if !present || v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("%w: %q must be a string, got %s", errs.ErrSandboxShape, key, describe(v))
	}
	return &s, nil
}

// describe names a value's JS-ish type for error messages.
func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case int64, float64, int, int32:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
