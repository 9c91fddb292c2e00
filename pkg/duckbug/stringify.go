// stringify.go converts console arguments to message text.

package duckbug

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/davecgh/go-spew/spew"
)

// dumper renders values encoding/json rejects (channels, funcs, cycles).
var dumper = &spew.ConfigState{
	Indent:                  " ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
	MaxDepth:                16,
}

// maxEncodeDepth bounds the walk over self-referencing context values.
const maxEncodeDepth = 32

// Stringify renders a single console argument. Structured values (maps,
// slices, arrays, structs, pointers and nil) become JSON text; everything
// else becomes its display text.
func Stringify(v any) string {
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return "null"
	}

	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case error:
		return x.Error()
	case fmt.Stringer:
		return x.String()
	case []byte:
		return string(x)
	}

	if !isStructured(v) {
		return fmt.Sprint(v)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return dumper.Sprint(v)
	}
	return string(data)
}

func isStructured(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct,
		reflect.Pointer, reflect.Interface, reflect.Chan, reflect.Func,
		reflect.UnsafePointer:
		return true
	default:
		return false
	}
}

// encodable returns v when encoding/json accepts it. Otherwise it walks
// []any and map[string]any values, turning NaN, infinities, funcs and
// channels into null and any other unencodable value into its Stringify
// text, so the record still reaches JSON sinks.
func encodable(v any) any {
	return encodableAt(v, 0)
}

func encodableAt(v any, depth int) any {
	if _, err := json.Marshal(v); err == nil {
		return v
	}

	switch x := v.(type) {
	case float32, float64:
		return nil
	case []any:
		if depth < maxEncodeDepth {
			out := make([]any, len(x))
			for i, elem := range x {
				out[i] = encodableAt(elem, depth+1)
			}
			return out
		}
	case map[string]any:
		if depth < maxEncodeDepth {
			out := make(map[string]any, len(x))
			for k, elem := range x {
				out[k] = encodableAt(elem, depth+1)
			}
			return out
		}
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return nil
	}
	return Stringify(v)
}
