package extspi

import (
	"errors"
	"reflect"
	"sync/atomic"
	"testing"
)

type counter interface {
	Count() int
}

type counterImpl struct{ n int }

func (c *counterImpl) Count() int { return c.n }

type failingCounter struct{}

func (failingCounter) Count() int { return -1 }

var buildAttempts int32

func init() {
	if err := RegisterSPI[counter](WithDefaultName("good"), WithScope(ScopeApplication)); err != nil {
		panic(err)
	}
	if err := RegisterNamed[counter]("extspi/tests.Good", func() counter {
		atomic.AddInt32(&buildAttempts, 1)
		return &counterImpl{n: 1}
	}); err != nil {
		panic(err)
	}
	if err := RegisterNamed[counter]("extspi/tests.Bad", func() counter {
		atomic.AddInt32(&buildAttempts, 1)
		return failingCounter{}
	}); err != nil {
		panic(err)
	}
	if err := registryFor(contractType[counter]()).add("good", "extspi/tests.Good"); err != nil {
		panic(err)
	}
}

type rejectBad struct{ BasePostProcessor }

func (p *rejectBad) Before(contract reflect.Type, name string, instance any) (any, error) {
	if name == "bad" {
		return nil, errors.New("rejected")
	}
	return instance, nil
}

func TestDirector_ResolveNamedCachesSuccess(t *testing.T) {
	atomic.StoreInt32(&buildAttempts, 0)
	root := NewFrameworkDirector()

	loader, err := GetLoader[counter](root)
	if err != nil {
		t.Fatal(err)
	}

	first, err := loader.Get("good")
	if err != nil {
		t.Fatal(err)
	}
	second, err := loader.Get("good")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatal("expected the same cached instance across calls")
	}
	if atomic.LoadInt32(&buildAttempts) != 1 {
		t.Fatalf("expected factory to run once, ran %d times", buildAttempts)
	}
}

func TestDirector_StickyBuildFailureNeverRetries(t *testing.T) {
	root := NewFrameworkDirector()
	p := &rejectBad{BasePostProcessor: NewBasePostProcessor("reject-bad")}
	if err := root.RegisterPostProcessor(p); err != nil {
		t.Fatal(err)
	}

	if err := registryFor(contractType[counter]()).add("bad", "extspi/tests.Bad"); err != nil {
		t.Fatal(err)
	}

	loader, err := GetLoader[counter](root)
	if err != nil {
		t.Fatal(err)
	}

	_, err1 := loader.Get("bad")
	_, err2 := loader.Get("bad")
	if err1 == nil || err2 == nil {
		t.Fatal("expected both calls to fail")
	}
	if err1.Error() != err2.Error() {
		t.Fatalf("expected identical sticky error, got %q and %q", err1, err2)
	}
}

func TestDirector_OwnerForWalksToFramework(t *testing.T) {
	root := NewFrameworkDirector()
	app := root.NewApplication("app")
	mod := app.NewModule("mod")

	if owner := mod.ownerFor(ScopeFramework); owner != root {
		t.Fatalf("expected ScopeFramework to resolve to the root, got %s", owner.ID())
	}
	if owner := mod.ownerFor(ScopeApplication); owner != app {
		t.Fatalf("expected ScopeApplication to resolve to the nearest application director, got %s", owner.ID())
	}
	if owner := mod.ownerFor(ScopeSelf); owner != mod {
		t.Fatal("expected ScopeSelf to resolve to the calling director")
	}
}

func TestDirector_DestroyIsIdempotentAndCascades(t *testing.T) {
	root := NewFrameworkDirector()
	app := root.NewApplication("app-destroy")
	mod := app.NewModule("mod-destroy")

	if err := app.Destroy(); err != nil {
		t.Fatal(err)
	}
	if err := app.Destroy(); err != nil {
		t.Fatalf("second Destroy should be a no-op, got %v", err)
	}
	if _, ok := root.children[app.ID()]; ok {
		t.Fatal("expected destroyed child to be detached from its parent")
	}
	if !mod.isDestroyed() {
		t.Fatal("expected Destroy to cascade to child directors")
	}
}

func TestDirector_DestroyFailsSubsequentPublicCalls(t *testing.T) {
	root := NewFrameworkDirector()
	app := root.NewApplication("app-destroy-guard")

	loader, err := GetLoader[counter](app)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := loader.Get("good"); err != nil {
		t.Fatalf("expected a live director to resolve normally, got %v", err)
	}

	if err := app.Destroy(); err != nil {
		t.Fatal(err)
	}

	if _, err := GetLoader[counter](app); !errors.Is(err, ErrDestroyed) {
		t.Fatalf("expected GetLoader on a destroyed director to fail with ErrDestroyed, got %v", err)
	}
	if _, err := loader.Get("good"); !errors.Is(err, ErrDestroyed) {
		t.Fatalf("expected Get on a destroyed director to fail with ErrDestroyed, got %v", err)
	}
	if _, err := loader.GetActivate("", nil, ""); !errors.Is(err, ErrDestroyed) {
		t.Fatalf("expected GetActivate on a destroyed director to fail with ErrDestroyed, got %v", err)
	}
	if _, ok := app.PeekOrigin(contractType[counter](), "good"); ok {
		t.Fatal("expected PeekOrigin on a destroyed director to report not-found")
	}
}
