package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"reflect"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// ErrInvalidPayload is returned for values that have no JSON representation.
var ErrInvalidPayload = errors.New("payload is not JSON-representable")

var (
	ctyValueType   = reflect.TypeOf(cty.Value{})
	jsonNumberType = reflect.TypeOf(json.Number(""))
)

// ToValue converts a native Go value into its JSON-compatible cty.Value.
// Maps become objects and slices become tuples, so heterogeneous content is
// preserved. Structs go through gocty and must carry `cty` tags.
func ToValue(v any) (cty.Value, error) {
	if v == nil {
		return cty.NilVal, fmt.Errorf("%w: nil", ErrInvalidPayload)
	}
	return toValue(reflect.ValueOf(v), "$")
}

func toValue(rv reflect.Value, path string) (cty.Value, error) {
	for rv.Kind() == reflect.Interface || rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return cty.NullVal(cty.String), nil
		}
		rv = rv.Elem()
	}

	switch rv.Type() {
	case ctyValueType:
		val := rv.Interface().(cty.Value)
		if val == cty.NilVal || !val.IsWhollyKnown() {
			return cty.NilVal, fmt.Errorf("%w: %s is an unknown cty value", ErrInvalidPayload, path)
		}
		return val, nil
	case jsonNumberType:
		f, _, err := big.ParseFloat(rv.String(), 10, 512, big.ToNearestEven)
		if err != nil {
			return cty.NilVal, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, path, err)
		}
		return cty.NumberVal(f), nil
	}

	switch rv.Kind() {
	case reflect.String:
		return cty.StringVal(rv.String()), nil
	case reflect.Bool:
		return cty.BoolVal(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cty.NumberIntVal(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return cty.NumberUIntVal(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return cty.NilVal, fmt.Errorf("%w: %s is %v", ErrInvalidPayload, path, f)
		}
		return cty.NumberFloatVal(f), nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return cty.NilVal, fmt.Errorf("%w: %s has non-string keys", ErrInvalidPayload, path)
		}
		if rv.Len() == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key := iter.Key().String()
			val, err := toValue(iter.Value(), path+"."+key)
			if err != nil {
				return cty.NilVal, err
			}
			attrs[key] = val
		}
		return cty.ObjectVal(attrs), nil
	case reflect.Slice, reflect.Array:
		if rv.Len() == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, rv.Len())
		for i := range elems {
			val, err := toValue(rv.Index(i), fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return cty.NilVal, err
			}
			elems[i] = val
		}
		return cty.TupleVal(elems), nil
	case reflect.Struct:
		ty, err := gocty.ImpliedType(rv.Interface())
		if err != nil {
			return cty.NilVal, fmt.Errorf("%w: %s: unable to infer cty.Type: %v", ErrInvalidPayload, path, err)
		}
		val, err := gocty.ToCtyValue(rv.Interface(), ty)
		if err != nil {
			return cty.NilVal, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, path, err)
		}
		return val, nil
	default:
		return cty.NilVal, fmt.Errorf("%w: %s has kind %s", ErrInvalidPayload, path, rv.Kind())
	}
}

// FromValue converts a cty.Value back to plain Go values: string, bool,
// int64 or float64, map[string]any, []any, or nil.
func FromValue(val cty.Value) (any, error) {
	if !val.IsKnown() {
		return nil, fmt.Errorf("cannot convert unknown value")
	}
	if val.IsNull() {
		return nil, nil
	}
	ty := val.Type()
	if ty.IsPrimitiveType() {
		switch ty {
		case cty.String:
			return val.AsString(), nil
		case cty.Number:
			bf := val.AsBigFloat()
			if bf.IsInt() {
				if i, acc := bf.Int64(); acc == big.Exact {
					return i, nil
				}
			}
			f, _ := bf.Float64()
			return f, nil
		case cty.Bool:
			return val.True(), nil
		default:
			return nil, fmt.Errorf("unsupported primitive type: %s", ty.FriendlyName())
		}
	}
	if ty.IsObjectType() || ty.IsMapType() {
		out := make(map[string]any)
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			converted, err := FromValue(v)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = converted
		}
		return out, nil
	}
	if ty.IsTupleType() || ty.IsListType() || ty.IsSetType() {
		out := []any{}
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			converted, err := FromValue(v)
			if err != nil {
				return nil, err
			}
			out = append(out, converted)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported cty.Type for conversion: %s", ty.FriendlyName())
}

// Encode renders a payload value as JSON.
func Encode(val cty.Value) ([]byte, error) {
	return ctyjson.Marshal(val, val.Type())
}

// IsMapping reports whether val is an object or map value.
func IsMapping(val cty.Value) bool {
	ty := val.Type()
	return !val.IsNull() && (ty.IsObjectType() || ty.IsMapType())
}
