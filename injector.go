package extspi

import (
	"reflect"

	"go.uber.org/zap"
)

// Injector is the external collaborator spec section 1 calls out as
// out of scope for this core beyond its contract: something that
// supplies dependency values by (parameter type, property name). A
// real implementation is typically backed by an IoC container; this
// package only depends on the interface.
type Injector interface {
	// Resolve returns the value to inject for paramType/property, or
	// ok=false if the injector has nothing to offer - spec section 4.3
	// step 4's "if injector returns non-null, call the setter" is
	// represented here by the ok bool instead of a nil check, since Go
	// has no single universal "null".
	Resolve(paramType reflect.Type, property string) (value any, ok bool)
}

// NopInjector never resolves anything, making injection a no-op. It is
// the bootstrap default so extensions that declare no dependencies
// build without requiring any injector wiring at all.
type NopInjector struct{}

func (NopInjector) Resolve(reflect.Type, string) (any, bool) { return nil, false }

// InjectionContext is handed to Wire, giving an extension instance
// explicit, typed lookups instead of the reflective "scan every public
// setter" mechanism spec section 9 retires: "ctx exposes typed lookups
// (ctx.get<T>(property))".
type InjectionContext struct {
	injector Injector
	director *Director
	logger   *zap.Logger
}

// Get performs a typed lookup through the configured Injector for the
// named property. ok is false when the injector has nothing to offer;
// per spec section 4.3/7, callers are expected to tolerate this
// (optional-dependency semantics) rather than treat it as fatal.
func Get[T any](ctx *InjectionContext, property string) (T, bool) {
	var zero T
	if ctx == nil || ctx.injector == nil {
		return zero, false
	}
	paramType := reflect.TypeOf((*T)(nil)).Elem()
	val, ok := ctx.injector.Resolve(paramType, property)
	if !ok || val == nil {
		return zero, false
	}
	typed, ok := val.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// Director returns the owning Scope Director, for extensions that also
// implement DirectorAware (spec section 4.3 step 5's "accessor
// awareness").
func (ctx *InjectionContext) Director() *Director {
	if ctx == nil {
		return nil
	}
	return ctx.director
}

// Wirer is implemented by extension instances that want injected
// collaborators (spec section 9's "explicit init contract"). Wire runs
// once, during the build pipeline's injection step (spec section 4.3
// step 4); a returned error is logged and swallowed, matching the
// spec's optional-dependency failure policy, never propagated to the
// caller of Get.
type Wirer interface {
	Wire(ctx *InjectionContext) error
}

// DirectorAware is implemented by extension instances that need the
// owning Director itself (spec section 4.3 step 5). SetDirector is
// called once, after Wire, before post-init hooks run.
type DirectorAware interface {
	SetDirector(d *Director)
}

// Lifecycle is implemented by extension instances with explicit
// startup behavior (spec section 4.3 step 7). Initialize runs once,
// after wrapping, as the final build pipeline step.
type Lifecycle interface {
	Initialize() error
}

// Disposer is implemented by extension instances that hold resources
// needing explicit release (spec section 3 "Lifetimes" / section 8
// invariant 9). Destroy cascades from the Director down to every
// instance that advertises this.
type Disposer interface {
	Destroy() error
}
