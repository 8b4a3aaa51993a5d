// Package refhost is a Go-native reimplementation of the runtime ABI
// (lookup, iter_next, length, truthiness, kind, call0, escaping) that the
// compiler's emitted C targets. It exists purely so this repository's own
// test suite can validate compiled templates' render semantics end to
// end without a C toolchain or a real per-host binding; it is not a
// substitute for the Ruby (or other host) runtime shim the compiler
// actually targets.
package refhost

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Kind mirrors the emitted C's kind() return values.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindNum
	KindStr
	KindList
	KindHash
	KindObj
	KindCallable
)

// resolve follows pointer/interface indirection down to the concrete
// reflect.Value the rest of the package operates on before inspecting a
// host value's shape.
func resolve(v interface{}) reflect.Value {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && (rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}
	return rv
}

// ValueKind reports the ABI kind of v.
func ValueKind(v interface{}) Kind {
	rv := resolve(v)
	if !rv.IsValid() {
		return KindNil
	}
	switch rv.Kind() {
	case reflect.Bool:
		return KindBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return KindNum
	case reflect.String:
		return KindStr
	case reflect.Slice, reflect.Array:
		return KindList
	case reflect.Map:
		return KindHash
	case reflect.Func:
		return KindCallable
	case reflect.Struct:
		return KindObj
	default:
		return KindNil
	}
}

// Truthy mirrors the falsy set the runtime's truthiness() checks against:
// nil, false, empty string, and empty list are falsy; everything else
// (including a non-empty hash or struct) is truthy.
func Truthy(v interface{}) bool {
	rv := resolve(v)
	if !rv.IsValid() {
		return false
	}
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.String, reflect.Slice, reflect.Array:
		return rv.Len() > 0
	case reflect.Map:
		return true
	default:
		return true
	}
}

// Length mirrors length(), valid only for list-kind values.
func Length(v interface{}) int {
	rv := resolve(v)
	if !rv.IsValid() {
		return 0
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.String:
		return rv.Len()
	default:
		return 0
	}
}

// IterNext mirrors iter_next(): the i'th element of a list-kind value.
func IterNext(v interface{}, i int) interface{} {
	rv := resolve(v)
	if !rv.IsValid() || i >= rv.Len() {
		return nil
	}
	return rv.Index(i).Interface()
}

// ErrArity is returned by Call0 when the callable requires one or more
// non-optional arguments, mirroring the emitted code's arity_error path.
var ErrArity = fmt.Errorf("callable requires arguments")

// Call0 invokes v, which must be KindCallable, with zero arguments,
// returning ErrArity if that isn't possible — the Go stand-in for the
// host binding discovering a non-zero minimum arity.
func Call0(v interface{}) (interface{}, error) {
	rv := resolve(v)
	if !rv.IsValid() || rv.Kind() != reflect.Func {
		return v, nil
	}
	t := rv.Type()
	required := t.NumIn()
	if t.IsVariadic() {
		required--
	}
	if required > 0 {
		return nil, ErrArity
	}
	out := rv.Call(nil)
	if len(out) == 0 {
		return nil, nil
	}
	return out[0].Interface(), nil
}

// Lookup mirrors lookup(): it reports (value, present) for key against
// v, dispatching on v's shape for maps, structs, and their corresponding
// identifier/subscript accessors. A key mapped to nil is present; a key
// absent from a map or naming no struct field is not.
func Lookup(v interface{}, key string) (interface{}, bool) {
	rv := resolve(v)
	if !rv.IsValid() {
		return nil, false
	}
	switch rv.Kind() {
	case reflect.Map:
		keyVal := reflect.ValueOf(key)
		if !keyVal.Type().AssignableTo(rv.Type().Key()) {
			return nil, false
		}
		item := rv.MapIndex(keyVal)
		if !item.IsValid() {
			return nil, false
		}
		return item.Interface(), true
	case reflect.Struct:
		field := rv.FieldByName(exportedName(key))
		if field.IsValid() && field.CanInterface() {
			return field.Interface(), true
		}
		method := methodByName(rv, key)
		if method.IsValid() {
			return method.Interface(), true
		}
		return nil, false
	default:
		return nil, false
	}
}

// exportedName capitalizes key's first byte so a lowercase Mustache key
// like "name" can bind to an exported Go struct field Name.
func exportedName(key string) string {
	if key == "" {
		return key
	}
	return strings.ToUpper(key[:1]) + key[1:]
}

func methodByName(rv reflect.Value, key string) reflect.Value {
	if m := rv.MethodByName(exportedName(key)); m.IsValid() {
		return m
	}
	if rv.CanAddr() {
		if m := rv.Addr().MethodByName(exportedName(key)); m.IsValid() {
			return m
		}
	}
	return reflect.Value{}
}

// String renders v the way writer_emit_raw's underlying to_string would:
// the dot rendering of a primitive element uses the runtime's to_string.
func String(v interface{}) string {
	rv := resolve(v)
	if !rv.IsValid() {
		return ""
	}
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64)
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	default:
		return fmt.Sprintf("%v", rv.Interface())
	}
}

var htmlEscapes = map[rune]string{
	'&':  "&amp;",
	'<':  "&lt;",
	'>':  "&gt;",
	'"':  "&quot;",
	'\'': "&#39;",
	'/':  "&#47;",
}

// EscapeHTML implements writer_emit_escaped's substitution table.
func EscapeHTML(s string) string {
	var b strings.Builder
	for _, r := range s {
		if esc, ok := htmlEscapes[r]; ok {
			b.WriteString(esc)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
