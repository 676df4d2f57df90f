package archive

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Result is a parsed success body, or the object unwrapped from one.
type Result map[string]any

// Decode copies r into out, a pointer to a struct whose fields carry json tags.
func (r Result) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("creating decoder: %w", err)
	}
	if err := dec.Decode(map[string]any(r)); err != nil {
		return fmt.Errorf("decoding result: %w", err)
	}
	return nil
}

// String returns the value at key rendered as text, or "" when absent.
func (r Result) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// unwrapObject returns body[key] when it is an object.
func unwrapObject(body Result, key string) Result {
	m, _ := body[key].(map[string]any)
	if m == nil {
		return nil
	}
	return Result(m)
}

// unwrapList returns the objects of the array at body[key]. Elements that are
// not objects are skipped.
func unwrapList(body Result, key string) []Result {
	items, _ := body[key].([]any)
	if items == nil {
		return nil
	}
	list := make([]Result, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			list = append(list, Result(m))
		}
	}
	return list
}
