// Package serialize turns document values into plain nested maps, slices
// and scalars, and encodes them as indented JSON for golden comparisons.
package serialize

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
)

var (
	// ErrCircularReference is returned when a value contains itself.
	ErrCircularReference = errors.New("circular reference")
	// ErrUnsupportedValue is returned for kinds with no structural form
	// (channels, functions, complex numbers, non-string map keys).
	ErrUnsupportedValue = errors.New("unsupported value")
)

// Structurer is implemented by types whose document form differs from their
// Go layout. Structure returns the value to serialize in their place.
type Structurer interface {
	Structure() any
}

var structurerType = reflect.TypeOf((*Structurer)(nil)).Elem()

type visitKey struct {
	ptr uintptr
	typ reflect.Type
}

type walker struct {
	visiting map[visitKey]bool
}

// Value converts v into its structural form: nil, bool, int64, uint64,
// float64, string, []any or map[string]any.
func Value(v any) (any, error) {
	w := &walker{visiting: make(map[visitKey]bool)}
	return w.value(reflect.ValueOf(v))
}

// Encode writes the structural form of v as two-space indented JSON
// followed by a newline. HTML characters are not escaped.
func Encode(out io.Writer, v any) error {
	doc, err := Value(v)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return nil
}

// Marshal is Encode into a byte slice.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (w *walker) value(v reflect.Value) (any, error) {
	if !v.IsValid() {
		return nil, nil
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil, nil
		}
	}

	if v.CanInterface() && v.Type().Implements(structurerType) {
		return w.guard(v, func() (any, error) {
			return w.value(reflect.ValueOf(v.Interface().(Structurer).Structure()))
		})
	}

	switch v.Kind() {
	case reflect.Bool:
		return v.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint(), nil
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	case reflect.String:
		return v.String(), nil
	case reflect.Interface:
		return w.value(v.Elem())
	case reflect.Pointer:
		return w.guard(v, func() (any, error) { return w.value(v.Elem()) })
	case reflect.Slice:
		if v.IsNil() {
			return []any{}, nil
		}
		return w.guard(v, func() (any, error) { return w.list(v) })
	case reflect.Array:
		return w.list(v)
	case reflect.Map:
		if v.IsNil() {
			return map[string]any{}, nil
		}
		return w.guard(v, func() (any, error) { return w.dict(v) })
	case reflect.Struct:
		out := make(map[string]any)
		if err := w.record(v, out); err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedValue, v.Type())
}

// guard runs fn with v marked as being visited on the current path. Shared
// values in sibling positions are fine; a value reached through itself is not.
func (w *walker) guard(v reflect.Value, fn func() (any, error)) (any, error) {
	var key visitKey
	switch v.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map:
		key = visitKey{ptr: v.Pointer(), typ: v.Type()}
	default:
		return fn()
	}
	if w.visiting[key] {
		return nil, fmt.Errorf("%w: %s", ErrCircularReference, v.Type())
	}
	w.visiting[key] = true
	defer delete(w.visiting, key)
	return fn()
}

func (w *walker) list(v reflect.Value) (any, error) {
	out := make([]any, v.Len())
	for i := range out {
		item, err := w.value(v.Index(i))
		if err != nil {
			return nil, err
		}
		out[i] = item
	}
	return out, nil
}

func (w *walker) dict(v reflect.Value) (any, error) {
	if v.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("%w: map key %s", ErrUnsupportedValue, v.Type().Key())
	}
	out := make(map[string]any, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		item, err := w.value(iter.Value())
		if err != nil {
			return nil, err
		}
		out[iter.Key().String()] = item
	}
	return out, nil
}

// record flattens struct fields into out using their json tag names.
// Untagged embedded structs are merged into the parent, as encoding/json does.
func (w *walker) record(v reflect.Value, out map[string]any) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, skip := fieldName(f)
		if skip {
			continue
		}
		fv := v.Field(i)
		if f.Anonymous && name == "" && fv.Kind() == reflect.Struct {
			if err := w.record(fv, out); err != nil {
				return err
			}
			continue
		}
		if !f.IsExported() {
			continue
		}
		if name == "" {
			name = f.Name
		}
		item, err := w.value(fv)
		if err != nil {
			return fmt.Errorf("field %s: %w", f.Name, err)
		}
		out[name] = item
	}
	return nil
}

func fieldName(f reflect.StructField) (name string, skip bool) {
	tag, ok := f.Tag.Lookup("json")
	if !ok {
		return "", false
	}
	if tag == "-" {
		return "", true
	}
	name, _, _ = strings.Cut(tag, ",")
	return name, false
}
