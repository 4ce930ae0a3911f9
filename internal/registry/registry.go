// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package registry records the API surfaces served by the dispatcher together
// with their declarative method metadata, and invokes methods on API
// implementation instances.
package registry

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/bonitasoft/bonita-engine-sub001/internal/scope"
)

var (
	ErrDuplicateAPI = errors.New("api already registered")
	ErrInvalidAPI   = errors.New("invalid api definition")
)

// Definition declares an API at startup. New is called once per dispatched
// call to obtain a fresh implementation instance.
type Definition[T any] struct {
	Name    string
	Type    TypeMeta
	Methods map[string]MethodMeta
	New     func() T
}

// API is a registered API surface.
type API struct {
	name     string
	typ      TypeMeta
	methods  map[string]MethodMeta
	implType reflect.Type
	sigs     map[string]Signature
	factory  scope.Factory
}

// Name returns the API interface name.
func (a *API) Name() string { return a.name }

// Type returns the type-level metadata.
func (a *API) Type() TypeMeta { return a.typ }

// Facts returns the effective metadata of method. Methods without explicit
// metadata inherit the type-level facts only.
func (a *API) Facts(method string) Facts {
	return mergeFacts(a.typ, a.methods[method])
}

// Signature returns the registered signature of method.
func (a *API) Signature(method string) (Signature, bool) {
	s, ok := a.sigs[method]
	return s, ok
}

// Signatures lists the invokable methods sorted by name.
func (a *API) Signatures() []Signature {
	return sortedSignatures(a.sigs)
}

// Factory returns the default implementation factory.
func (a *API) Factory() scope.Factory { return a.factory }

// Registry holds every registered API. It is filled at startup and read
// concurrently afterwards.
type Registry struct {
	mu   sync.RWMutex
	apis map[string]*API
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{apis: make(map[string]*API)}
}

// Register validates def against the implementation's method set and records it.
func Register[T any](r *Registry, def Definition[T]) error {
	if def.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAPI)
	}
	if def.New == nil {
		return fmt.Errorf("%w: %s has no factory", ErrInvalidAPI, def.Name)
	}

	t := reflect.TypeFor[T]()
	sigs := signaturesOf(t)
	methods := make(map[string]MethodMeta, len(def.Methods))
	for name, meta := range def.Methods {
		if _, ok := sigs[name]; !ok {
			return fmt.Errorf("%w: %s declares metadata for unknown method %s", ErrInvalidAPI, def.Name, name)
		}
		methods[name] = meta
	}

	newFn := def.New
	api := &API{
		name:     def.Name,
		typ:      def.Type,
		methods:  methods,
		implType: t,
		sigs:     sigs,
		factory:  func() any { return newFn() },
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.apis[def.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateAPI, def.Name)
	}
	r.apis[def.Name] = api
	return nil
}

// MustRegister is Register for startup wiring; it panics on invalid definitions.
func MustRegister[T any](r *Registry, def Definition[T]) {
	if err := Register(r, def); err != nil {
		panic(err)
	}
}

// Lookup returns the API registered under name.
func (r *Registry) Lookup(name string) (*API, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.apis[name]
	return a, ok
}

// Names returns the registered API names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.apis))
	for n := range r.apis {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Install publishes every default factory into s (normally the global scope).
func (r *Registry) Install(s *scope.Scope) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for name, a := range r.apis {
		s.Override(name, a.factory)
	}
}

// APIs returns every registered API sorted by name.
func (r *Registry) APIs() []*API {
	names := r.Names()
	out := make([]*API, 0, len(names))
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, n := range names {
		out = append(out, r.apis[n])
	}
	return out
}
