// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package registry

import (
	"reflect"
	"slices"
	"sort"
	"sync"
)

// Signature describes an invokable method of an API implementation.
type Signature struct {
	Method       string
	ParamTypes   []reflect.Type
	ParamNames   []string
	WantsContext bool
	ResultType   reflect.Type // nil when the method returns no value
	ReturnsError bool
}

// Matches reports whether the requested parameter type names equal the
// signature's exactly.
func (s Signature) Matches(paramTypes []string) bool {
	return slices.Equal(s.ParamNames, paramTypes)
}

// signatureOf extracts the signature of a method type. skip is the number of
// leading receiver parameters (1 for concrete types, 0 for interfaces).
func signatureOf(name string, ft reflect.Type, skip int) (Signature, bool) {
	sig := Signature{Method: name}
	in := skip
	if ft.NumIn() > in && ft.In(in) == contextType {
		sig.WantsContext = true
		in++
	}
	for i := in; i < ft.NumIn(); i++ {
		if ft.IsVariadic() && i == ft.NumIn()-1 {
			return Signature{}, false
		}
		sig.ParamTypes = append(sig.ParamTypes, ft.In(i))
	}
	sig.ParamNames = TypeNames(sig.ParamTypes)

	switch ft.NumOut() {
	case 0:
	case 1:
		if ft.Out(0) == errorType {
			sig.ReturnsError = true
		} else {
			sig.ResultType = ft.Out(0)
		}
	case 2:
		if ft.Out(1) != errorType {
			return Signature{}, false
		}
		sig.ResultType = ft.Out(0)
		sig.ReturnsError = true
	default:
		return Signature{}, false
	}
	return sig, true
}

// signaturesOf returns every invokable exported method of t keyed by name.
func signaturesOf(t reflect.Type) map[string]Signature {
	skip := 1
	if t.Kind() == reflect.Interface {
		skip = 0
	}
	out := make(map[string]Signature, t.NumMethod())
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if !m.IsExported() {
			continue
		}
		if sig, ok := signatureOf(m.Name, m.Type, skip); ok {
			out[m.Name] = sig
		}
	}
	return out
}

var sigCache sync.Map // reflect.Type -> map[string]Signature

func cachedSignatures(t reflect.Type) map[string]Signature {
	if v, ok := sigCache.Load(t); ok {
		return v.(map[string]Signature)
	}
	v, _ := sigCache.LoadOrStore(t, signaturesOf(t))
	return v.(map[string]Signature)
}

func sortedSignatures(m map[string]Signature) []Signature {
	out := make([]Signature, 0, len(m))
	for _, s := range m {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Method < out[j].Method })
	return out
}
