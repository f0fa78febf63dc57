package container

import (
	"fmt"
	"reflect"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// invokeMethod calls the exported method name on target.
func invokeMethod(target any, name string, args []any) (any, error) {
	if target == nil {
		return nil, fmt.Errorf("cannot call %s on a nil instance", name)
	}
	m := reflect.ValueOf(target).MethodByName(name)
	if !m.IsValid() {
		return nil, fmt.Errorf("type %T has no method %s", target, name)
	}
	out, err := callFunc(m, args)
	if err != nil {
		return nil, fmt.Errorf("%T.%s: %w", target, name, err)
	}
	return out, nil
}

// callFunc calls fn with args converted to its parameter types and unpacks
// (T), (T, error), (error) or no results.
func callFunc(fn reflect.Value, args []any) (any, error) {
	in, err := convertArgs(fn.Type(), args)
	if err != nil {
		return nil, err
	}
	return unpackResults(fn.Call(in))
}

func convertArgs(t reflect.Type, args []any) ([]reflect.Value, error) {
	n := t.NumIn()
	if t.IsVariadic() {
		if len(args) < n-1 {
			return nil, fmt.Errorf("expected at least %d arguments, got %d", n-1, len(args))
		}
	} else if len(args) != n {
		return nil, fmt.Errorf("expected %d arguments, got %d", n, len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		var pt reflect.Type
		if t.IsVariadic() && i >= n-1 {
			pt = t.In(n - 1).Elem()
		} else {
			pt = t.In(i)
		}
		v, err := convertValue(arg, pt)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		in[i] = v
	}
	return in, nil
}

func convertValue(arg any, pt reflect.Type) (reflect.Value, error) {
	if arg == nil {
		switch pt.Kind() {
		case reflect.Interface, reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(pt), nil
		}
		return reflect.Value{}, fmt.Errorf("cannot use nil as %s", pt)
	}

	v := reflect.ValueOf(arg)
	if v.Type().AssignableTo(pt) {
		return v, nil
	}

	switch {
	case pt.Kind() == reflect.Slice && v.Kind() == reflect.Slice:
		out := reflect.MakeSlice(pt, v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			ev, err := convertValue(v.Index(i).Interface(), pt.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
			}
			out.Index(i).Set(ev)
		}
		return out, nil

	case pt.Kind() == reflect.Map && v.Kind() == reflect.Map:
		out := reflect.MakeMapWithSize(pt, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			kv, err := convertValue(iter.Key().Interface(), pt.Key())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("key %v: %w", iter.Key(), err)
			}
			ev, err := convertValue(iter.Value().Interface(), pt.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("value of %v: %w", iter.Key(), err)
			}
			out.SetMapIndex(kv, ev)
		}
		return out, nil

	case sameFamily(v.Kind(), pt.Kind()) && v.Type().ConvertibleTo(pt):
		return v.Convert(pt), nil
	}

	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", arg, pt)
}

// sameFamily limits conversions to numeric<->numeric and string<->string so
// an int is never turned into a one-rune string.
func sameFamily(a, b reflect.Kind) bool {
	return (isNumeric(a) && isNumeric(b)) || (a == reflect.String && b == reflect.String) || (a == reflect.Bool && b == reflect.Bool)
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func unpackResults(out []reflect.Value) (any, error) {
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if out[0].Type() == errorType {
			if out[0].IsNil() {
				return nil, nil
			}
			return nil, out[0].Interface().(error)
		}
		return out[0].Interface(), nil
	default:
		last := out[len(out)-1]
		if last.Type() == errorType && !last.IsNil() {
			return nil, last.Interface().(error)
		}
		return out[0].Interface(), nil
	}
}
