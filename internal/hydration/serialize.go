package hydration

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Set is a helper collection type whose hydration encoding carries a set
// tag so the client can reconstruct it.
type Set []interface{}

// circularMarker replaces a value that refers back into itself.
var circularMarker = map[string]interface{}{"$circular": true}

// omitted is the internal sentinel for values with no JSON representation
// (functions, channels); containers drop them entirely.
type omittedValue struct{}

var omitted = omittedValue{}

// Sanitize deep-copies a props value into a JSON-serializable shape:
// non-serializable values (functions, channels, unsafe pointers) are
// dropped; cyclic references are replaced with a circular-reference marker;
// times, non-string-keyed maps, and Sets get tagged wrapper objects for
// client-side reconstruction.
func Sanitize(v interface{}) interface{} {
	out := sanitize(reflect.ValueOf(v), make(map[uintptr]bool))
	if out == omitted {
		return nil
	}
	return out
}

func sanitize(v reflect.Value, visiting map[uintptr]bool) interface{} {
	if !v.IsValid() {
		return nil
	}

	switch v.Kind() {
	case reflect.Interface, reflect.Ptr:
		if v.IsNil() {
			return nil
		}
		if v.Kind() == reflect.Ptr {
			ptr := v.Pointer()
			if visiting[ptr] {
				return circularMarker
			}
			visiting[ptr] = true
			defer delete(visiting, ptr)
		}
		return sanitize(v.Elem(), visiting)

	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return omitted

	case reflect.Bool:
		return v.Bool()

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint()

	case reflect.Float32, reflect.Float64:
		return v.Float()

	case reflect.String:
		return v.String()

	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice {
			if v.IsNil() {
				return nil
			}
			ptr := v.Pointer()
			if visiting[ptr] {
				return circularMarker
			}
			visiting[ptr] = true
			defer delete(visiting, ptr)
		}

		values := make([]interface{}, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			item := sanitize(v.Index(i), visiting)
			if item == omitted {
				continue
			}
			values = append(values, item)
		}
		if v.Type() == reflect.TypeOf(Set(nil)) {
			return map[string]interface{}{"$type": "set", "values": values}
		}
		return values

	case reflect.Map:
		if v.IsNil() {
			return nil
		}
		ptr := v.Pointer()
		if visiting[ptr] {
			return circularMarker
		}
		visiting[ptr] = true
		defer delete(visiting, ptr)

		if v.Type().Key().Kind() == reflect.String {
			m := make(map[string]interface{}, v.Len())
			iter := v.MapRange()
			for iter.Next() {
				val := sanitize(iter.Value(), visiting)
				if val == omitted {
					continue
				}
				m[iter.Key().String()] = val
			}
			return m
		}

		// Non-string keys cannot survive JSON object encoding; tag the
		// wrapper so the client can rebuild a Map.
		entries := make([][2]interface{}, 0, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			key := sanitize(iter.Key(), visiting)
			val := sanitize(iter.Value(), visiting)
			if key == omitted || val == omitted {
				continue
			}
			entries = append(entries, [2]interface{}{key, val})
		}
		return map[string]interface{}{"$type": "map", "entries": entries}

	case reflect.Struct:
		if t, ok := v.Interface().(time.Time); ok {
			return map[string]interface{}{"$type": "date", "value": t.UnixMilli()}
		}

		m := make(map[string]interface{})
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			name := jsonFieldName(field)
			if name == "-" {
				continue
			}
			val := sanitize(v.Field(i), visiting)
			if val == omitted {
				continue
			}
			m[name] = val
		}
		return m

	case reflect.Complex64, reflect.Complex128:
		return fmt.Sprintf("%v", v.Complex())

	default:
		return nil
	}
}

// jsonFieldName mirrors encoding/json's field naming for struct props.
func jsonFieldName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" {
		return field.Name
	}
	name := strings.SplitN(tag, ",", 2)[0]
	if name == "" {
		return field.Name
	}
	return name
}
