// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package registry

// PauseAvailability marks an API or method as callable while its tenant is
// paused. OnlyWhenPaused additionally forbids the call while the tenant runs.
type PauseAvailability struct {
	OnlyWhenPaused bool
}

// TypeMeta holds the facts declared for a whole API.
type TypeMeta struct {
	// NoSessionRequired APIs accept calls without a session and always run
	// outside a dispatcher-managed transaction.
	NoSessionRequired         bool
	AvailableWhenTenantPaused *PauseAvailability
}

// MethodMeta holds the facts declared for a single method.
type MethodMeta struct {
	// CustomTransactions methods manage their own transaction boundaries.
	CustomTransactions bool
	// AvailableWhenTenantPaused overrides the type-level fact when set.
	AvailableWhenTenantPaused *PauseAvailability
	AvailableOnStoppedNode    bool
	Deprecated                bool
	// LockScope names the functional lock guarding the method, if any.
	LockScope string
}

// Facts is the effective metadata of one method after merging type-level
// declarations.
type Facts struct {
	MethodMeta
	NoSessionRequired bool
}

// PauseFlags computes availability while the tenant runs and while it is paused.
func (f Facts) PauseFlags() (whenRunning, whenPaused bool) {
	p := f.AvailableWhenTenantPaused
	if p == nil {
		return true, false
	}
	return !p.OnlyWhenPaused, true
}

func mergeFacts(t TypeMeta, m MethodMeta) Facts {
	f := Facts{MethodMeta: m, NoSessionRequired: t.NoSessionRequired}
	if f.AvailableWhenTenantPaused == nil && t.AvailableWhenTenantPaused != nil {
		p := *t.AvailableWhenTenantPaused
		f.AvailableWhenTenantPaused = &p
	}
	return f
}
