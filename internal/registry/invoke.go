// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"runtime/debug"
	"strings"

	"github.com/bonitasoft/bonita-engine-sub001/internal/apierr"
)

// Invoke locates method by name and exact parameter type names on instance,
// converts args and calls it. Errors returned by the method are classified
// as business failures; lookup, conversion and panics are unexpected failures.
func Invoke(ctx context.Context, instance any, method string, paramTypes []string, args []any) (result any, err error) {
	if instance == nil {
		return nil, apierr.Unexpected(nil, "no implementation instance for method %s", method)
	}
	iv := reflect.ValueOf(instance)
	sig, ok := cachedSignatures(iv.Type())[method]
	if !ok || !sig.Matches(paramTypes) {
		return nil, apierr.Unexpected(nil, "no method %s(%s) on %T", method, strings.Join(paramTypes, ", "), instance)
	}
	if len(args) != len(sig.ParamTypes) {
		return nil, apierr.Unexpected(nil, "method %s expects %d arguments, got %d", method, len(sig.ParamTypes), len(args))
	}

	in := make([]reflect.Value, 0, len(args)+1)
	if sig.WantsContext {
		in = append(in, reflect.ValueOf(&ctx).Elem())
	}
	for i, a := range args {
		v, convErr := convertArg(a, sig.ParamTypes[i])
		if convErr != nil {
			return nil, apierr.Unexpected(convErr, "argument %d of %s: %v", i, method, convErr)
		}
		in = append(in, v)
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = apierr.Unexpected(&apierr.PanicError{Value: r, Stack: string(debug.Stack())}, "panic in %s: %v", method, r)
		}
	}()

	out := iv.MethodByName(method).Call(in)
	return unpackResults(sig, out)
}

func unpackResults(sig Signature, out []reflect.Value) (any, error) {
	if sig.ReturnsError {
		errVal := out[len(out)-1]
		if !errVal.IsNil() {
			return nil, apierr.AsBusiness(errVal.Interface().(error))
		}
	}
	if sig.ResultType == nil {
		return nil, nil
	}
	return out[0].Interface(), nil
}

func convertArg(a any, t reflect.Type) (reflect.Value, error) {
	if raw, ok := a.(json.RawMessage); ok && isJSONNull(raw) {
		a = nil
	}
	if a == nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("nil is not a valid %s", TypeName(t))
	}

	if raw, ok := a.(json.RawMessage); ok {
		ptr := reflect.New(t)
		if err := json.Unmarshal(raw, ptr.Interface()); err != nil {
			return reflect.Value{}, fmt.Errorf("decode %s: %w", TypeName(t), err)
		}
		return ptr.Elem(), nil
	}

	v := reflect.ValueOf(a)
	if v.Type().AssignableTo(t) {
		if t.Kind() == reflect.Interface {
			out := reflect.New(t).Elem()
			out.Set(v)
			return out, nil
		}
		return v, nil
	}
	if isInt(v.Kind()) && isInt(t.Kind()) {
		n := v.Int()
		if reflect.Zero(t).OverflowInt(n) {
			return reflect.Value{}, fmt.Errorf("%d overflows %s", n, TypeName(t))
		}
		return v.Convert(t), nil
	}
	if isFloat(v.Kind()) && isFloat(t.Kind()) {
		return v.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %s as %s", TypeName(v.Type()), TypeName(t))
}

func isInt(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

// isJSONNull reports whether raw is the JSON literal null.
func isJSONNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
