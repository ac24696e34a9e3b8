package extspi

import (
	"reflect"
	"testing"

	"go.uber.org/zap"
)

func TestNopInjector_NeverResolves(t *testing.T) {
	var n NopInjector
	if _, ok := n.Resolve(reflect.TypeOf(0), "anything"); ok {
		t.Fatal("expected NopInjector.Resolve to always report ok=false")
	}
}

func TestGet_ResolvesThroughInjector(t *testing.T) {
	mi := NewMapInjector()
	mi.Set("greeting", "hello")
	ctx := &InjectionContext{injector: mi, logger: zap.NewNop()}

	got, ok := Get[string](ctx, "greeting")
	if !ok || got != "hello" {
		t.Fatalf("Get() = %q, %v; want hello, true", got, ok)
	}
}

func TestGet_MissingPropertyReportsFalse(t *testing.T) {
	mi := NewMapInjector()
	ctx := &InjectionContext{injector: mi, logger: zap.NewNop()}

	got, ok := Get[string](ctx, "absent")
	if ok || got != "" {
		t.Fatalf("Get() = %q, %v; want \"\", false", got, ok)
	}
}

func TestGet_NilContextReportsFalse(t *testing.T) {
	got, ok := Get[string](nil, "x")
	if ok || got != "" {
		t.Fatalf("Get(nil, ...) = %q, %v; want \"\", false", got, ok)
	}
}

func TestInjectionContext_DirectorAccessor(t *testing.T) {
	root := NewFrameworkDirector()
	ctx := &InjectionContext{director: root}
	if ctx.Director() != root {
		t.Fatal("expected Director() to return the director the context was built with")
	}
	var nilCtx *InjectionContext
	if nilCtx.Director() != nil {
		t.Fatal("expected Director() on a nil *InjectionContext to return nil")
	}
}
