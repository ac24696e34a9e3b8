package extspi

import (
	"reflect"
	"sync"
	"time"

	"go.uber.org/zap"
)

// buildCell is a sync.Once-guarded memo cell: the Go translation of
// spec section 9's "sticky error" instance holder. Once resolve has
// run once, every later call returns the same value and the same
// error - a failed build is never retried (spec section 8 invariant
// on build-failure caching).
type buildCell struct {
	once sync.Once
	val  any
	err  error
}

func (c *buildCell) resolve(build func() (any, error)) (any, error) {
	c.once.Do(func() {
		c.val, c.err = build()
	})
	return c.val, c.err
}

// contractBuilder holds one contract's per-name build cells on one
// Director: a named cell per finished (possibly wrapped) instance, and
// a raw map recording each name's pre-wrapper instance for
// introspection (spec section 9's Open Question on raw/"_origin"
// caching, resolved by keeping named and raw state in two distinct
// maps rather than a suffixed key).
type contractBuilder struct {
	mu    sync.Mutex
	named map[string]*buildCell

	rawMu sync.Mutex
	raw   map[string]any
}

func newContractBuilder() *contractBuilder {
	return &contractBuilder{
		named: make(map[string]*buildCell),
		raw:   make(map[string]any),
	}
}

func (cb *contractBuilder) namedCell(name string) *buildCell {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	c, ok := cb.named[name]
	if !ok {
		c = &buildCell{}
		cb.named[name] = c
	}
	return c
}

func (cb *contractBuilder) storeRaw(name string, instance any) {
	cb.rawMu.Lock()
	cb.raw[name] = instance
	cb.rawMu.Unlock()
}

func (cb *contractBuilder) loadRaw(name string) (any, bool) {
	cb.rawMu.Lock()
	defer cb.rawMu.Unlock()
	v, ok := cb.raw[name]
	return v, ok
}

// disposeAll releases every successfully built named instance that
// implements Disposer (spec section 8 invariant 9). Only each name's
// finished (possibly wrapped) instance is disposed; the raw
// pre-wrapper instances kept for introspection are not disposed
// separately.
func (cb *contractBuilder) disposeAll(logger *zap.Logger) {
	cb.mu.Lock()
	named := make([]*buildCell, 0, len(cb.named))
	for _, c := range cb.named {
		named = append(named, c)
	}
	cb.mu.Unlock()
	for _, c := range named {
		if c.err != nil || c.val == nil {
			continue
		}
		if disp, ok := c.val.(Disposer); ok {
			if err := disp.Destroy(); err != nil {
				logger.Warn("extspi: instance destroy failed", zap.Error(err))
			}
		}
	}
}

// builderFor returns d's contractBuilder for contract, creating one on
// first use.
func (d *Director) builderFor(contract reflect.Type) *contractBuilder {
	d.buildMu.Lock()
	defer d.buildMu.Unlock()
	cb, ok := d.builders[contract]
	if !ok {
		cb = newContractBuilder()
		d.builders[contract] = cb
	}
	return cb
}

// resolveNamed is the Instance Builder's (component C3) entry point:
// it resolves contract's scope to find the owning Director, then runs
// (or replays) the full build pipeline for name under that Director's
// sticky cache.
func (d *Director) resolveNamed(contract reflect.Type, name string) (any, error) {
	desc, err := descriptorByType(contract)
	if err != nil {
		return nil, err
	}
	owner := d.ownerFor(desc.Scope)
	if owner.isDestroyed() {
		return nil, &DestroyedError{Contract: contract}
	}
	cb := owner.builderFor(contract)
	cell := cb.namedCell(name)
	return cell.resolve(func() (any, error) {
		return owner.assemble(contract, name, cb)
	})
}

// assemble runs the seven-step build pipeline of spec section 4.3: raw
// construction, Before hooks, injection, director awareness, After
// hooks, ordered wrapper layering (with an After pass per layer), and
// Lifecycle.Initialize - the whole thing wrapped by the owning
// Director's BuildExtension chain for tracing/observability.
func (d *Director) assemble(contract reflect.Type, name string, cb *contractBuilder) (any, error) {
	start := time.Now()
	reg := registryFor(contract)
	rec, err := reg.lookup(name)
	if err != nil {
		d.recordTrace(contract, name, "failed", start, err)
		return nil, err
	}

	ev := BuildEvent{Contract: contract, Name: name, Step: "build"}
	result, err := d.runBuildExtensions(ev, func() (any, error) {
		return d.runPipeline(contract, name, rec, cb)
	})

	outcome := "built"
	if err != nil {
		outcome = "failed"
	}
	d.recordTrace(contract, name, outcome, start, err)
	return result, err
}

func (d *Director) runPipeline(contract reflect.Type, name string, rec *classRecord, cb *contractBuilder) (any, error) {
	raw := rec.newInstance()

	raw, err := d.runBefore(contract, name, raw)
	if err != nil {
		return nil, &BuildError{Contract: contract, Name: name, Step: "before", Cause: err}
	}

	if w, ok := raw.(Wirer); ok {
		ctx := &InjectionContext{injector: d.injector, director: d, logger: d.logger}
		if err := w.Wire(ctx); err != nil {
			d.logger.Warn("extspi: optional dependency wiring failed", zap.String("name", name), zap.Error(err))
		}
	}
	if da, ok := raw.(DirectorAware); ok {
		da.SetDirector(d)
	}

	raw, err = d.runAfter(contract, name, raw)
	if err != nil {
		return nil, &BuildError{Contract: contract, Name: name, Step: "after", Cause: err}
	}
	cb.storeRaw(name, raw)

	wrapped := raw
	for _, we := range orderedWrappers(registryFor(contract).wrapperSnapshot()) {
		if !we.spec.appliesTo(name) {
			continue
		}
		wrapped = we.newWrapper(wrapped)
		wrapped, err = d.runAfter(contract, name, wrapped)
		if err != nil {
			return nil, &BuildError{Contract: contract, Name: name, Step: "wrap:" + we.identifier, Cause: err}
		}
	}

	if lc, ok := wrapped.(Lifecycle); ok {
		if err := lc.Initialize(); err != nil {
			return nil, &BuildError{Contract: contract, Name: name, Step: "initialize", Cause: err}
		}
	}
	return wrapped, nil
}

// runBefore/runAfter apply every PostProcessor in d's inherited chain,
// root-first, substituting the instance reference at each step (spec
// section 4.3 steps 3 and 5).
func (d *Director) runBefore(contract reflect.Type, name string, instance any) (any, error) {
	for _, p := range d.postProcessorChain() {
		var err error
		instance, err = p.Before(contract, name, instance)
		if err != nil {
			return nil, err
		}
	}
	return instance, nil
}

func (d *Director) runAfter(contract reflect.Type, name string, instance any) (any, error) {
	for _, p := range d.postProcessorChain() {
		var err error
		instance, err = p.After(contract, name, instance)
		if err != nil {
			return nil, err
		}
	}
	return instance, nil
}

// runBuildExtensions folds d's inherited BuildExtension chain around
// build, outermost extension (lowest Order) first.
func (d *Director) runBuildExtensions(ev BuildEvent, build func() (any, error)) (any, error) {
	exts := d.buildExtensionChain()
	next := build
	for i := len(exts) - 1; i >= 0; i-- {
		ext := exts[i]
		prev := next
		next = func() (any, error) {
			v, err := ext.Wrap(prev, ev)
			if err != nil {
				ext.OnError(err, ev)
			}
			return v, err
		}
	}
	return next()
}

// orderedWrappers sorts wrapper registrations by declared order/name
// using the same topological sort the activate pipeline uses (spec
// section 3's wrapper ordering is "sort then filter"; filtering by
// appliesTo happens at the runPipeline call site, after this sort).
func orderedWrappers(entries []*wrapperEntry) []*wrapperEntry {
	byIdentifier := make(map[string]*wrapperEntry, len(entries))
	orderables := make([]orderable, 0, len(entries))
	for _, e := range entries {
		byIdentifier[e.identifier] = e
		orderables = append(orderables, orderable{name: e.identifier, order: e.spec.Order})
	}
	names := sortOrderables(orderables)
	out := make([]*wrapperEntry, 0, len(names))
	for _, n := range names {
		out = append(out, byIdentifier[n])
	}
	return out
}

// PeekOrigin returns the pre-wrapper instance built for name, if the
// contract has already been built at least once on the owning
// Director.
func (d *Director) PeekOrigin(contract reflect.Type, name string) (any, bool) {
	desc, err := descriptorByType(contract)
	if err != nil {
		return nil, false
	}
	owner := d.ownerFor(desc.Scope)
	if owner.isDestroyed() {
		return nil, false
	}
	return owner.builderFor(contract).loadRaw(name)
}
