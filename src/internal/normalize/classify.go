// FILE: ziplog/src/internal/normalize/classify.go
package normalize

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/zipscene/ziplog/src/internal/core"
)

// Kind tags a classified log call argument
type Kind int

const (
	KindText Kind = iota
	KindLevel
	KindError
	KindObject
	KindScalar
	KindEntry
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindLevel:
		return "level"
	case KindError:
		return "error"
	case KindObject:
		return "object"
	case KindScalar:
		return "scalar"
	case KindEntry:
		return "entry"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Arg is one classified argument. Exactly one payload field is meaningful,
// selected by Kind.
type Arg struct {
	Kind   Kind
	Text   string         // KindText, KindLevel (canonical name)
	Err    error          // KindError
	Object map[string]any // KindObject; a private copy safe to mutate
	Entry  core.Entry     // KindEntry
	Value  any            // KindScalar
}

// Classify tags every argument of a log call. It fails only for values that
// cannot be represented as log data at all, such as functions and channels.
func Classify(levels *core.Levels, args []any) ([]Arg, error) {
	out := make([]Arg, 0, len(args))
	for i, v := range args {
		arg, err := classifyOne(levels, v)
		if err != nil {
			return nil, fmt.Errorf("%w: argument %d: %w", core.ErrInvalidArgument, i, err)
		}
		out = append(out, arg)
	}
	return out, nil
}

func classifyOne(levels *core.Levels, v any) (Arg, error) {
	switch x := v.(type) {
	case nil:
		return Arg{Kind: KindScalar, Value: nil}, nil
	case string:
		if name, err := levels.Canonical(x); err == nil {
			return Arg{Kind: KindLevel, Text: name}, nil
		}
		return Arg{Kind: KindText, Text: x}, nil
	case core.Entry:
		return Arg{Kind: KindEntry, Entry: x}, nil
	case *core.Entry:
		if x == nil {
			return Arg{Kind: KindScalar, Value: nil}, nil
		}
		return Arg{Kind: KindEntry, Entry: *x}, nil
	case error:
		return Arg{Kind: KindError, Err: x}, nil
	case map[string]any:
		return Arg{Kind: KindObject, Object: cloneMap(x)}, nil
	case time.Time:
		return Arg{Kind: KindScalar, Value: x}, nil
	case fmt.Stringer:
		if !isStructured(reflect.ValueOf(x)) {
			return Arg{Kind: KindScalar, Value: x.String()}, nil
		}
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Complex64, reflect.Complex128:
		return Arg{}, fmt.Errorf("unsupported type %T", v)
	}

	if isStructured(rv) {
		obj, isObject, err := toObject(v)
		if err != nil {
			return Arg{}, err
		}
		if isObject {
			return Arg{Kind: KindObject, Object: obj}, nil
		}
	}

	return Arg{Kind: KindScalar, Value: v}, nil
}

// isStructured reports whether v is a map or struct, possibly behind pointers
func isStructured(rv reflect.Value) bool {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	return rv.Kind() == reflect.Map || rv.Kind() == reflect.Struct
}

// toObject converts a value through its JSON form. isObject is false when the
// value encodes to something other than a JSON object, e.g. a custom marshaler.
func toObject(v any) (map[string]any, bool, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, false, fmt.Errorf("value of type %T is not representable as data: %w", v, err)
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false, nil
	}
	if obj == nil {
		return nil, false, nil
	}
	return obj, true, nil
}
