package extspi

import "reflect"

// PostProcessor is the scope-wide hook registered on a Director (spec
// section 3 "post_processors in insertion order", section 4.3 steps 3
// and 5). Adapted from the teacher package's Extension middleware: the
// same Name/Order/Init/Dispose shape, with Wrap's generic
// ctx/next/Operation interception narrowed to the two concrete points
// the build pipeline actually calls out - Before and After a raw
// instance is built.
type PostProcessor interface {
	Name() string

	// Init is called once when the processor is registered to a
	// Director.
	Init(d *Director) error

	// Before runs immediately after raw construction, substituting the
	// returned reference (spec section 4.3 step 3).
	Before(contract reflect.Type, name string, instance any) (any, error)

	// After runs after injection, and again after each wrapper layer is
	// applied (spec section 4.3 steps 5 and 6).
	After(contract reflect.Type, name string, instance any) (any, error)

	// Dispose is called when the owning Director is destroyed.
	Dispose(d *Director) error
}

// BasePostProcessor gives PostProcessor implementations no-op defaults
// to embed, mirroring the teacher package's BaseExtension.
type BasePostProcessor struct {
	name string
}

// NewBasePostProcessor creates a base post-processor with the given name.
func NewBasePostProcessor(name string) BasePostProcessor {
	return BasePostProcessor{name: name}
}

func (p *BasePostProcessor) Name() string { return p.name }

func (p *BasePostProcessor) Init(d *Director) error { return nil }

func (p *BasePostProcessor) Before(contract reflect.Type, name string, instance any) (any, error) {
	return instance, nil
}

func (p *BasePostProcessor) After(contract reflect.Type, name string, instance any) (any, error) {
	return instance, nil
}

func (p *BasePostProcessor) Dispose(d *Director) error { return nil }

// BuildEvent describes one step of the instance build pipeline to a
// BuildExtension, the operation-wrapping counterpart of PostProcessor -
// grounded on the teacher package's Operation/OpResolve shape, reused
// here to let logging/tracing extensions (extensions/logging.go,
// extensions/graph_debug.go) observe the whole pipeline rather than
// just Before/After.
type BuildEvent struct {
	Contract reflect.Type
	Name     string
	Step     string
}

// BuildExtension wraps the whole build pipeline invocation, the way
// the teacher package's Extension.Wrap wraps Resolve/Update.
type BuildExtension interface {
	Name() string
	Order() int
	Wrap(next func() (any, error), ev BuildEvent) (any, error)
	OnError(err error, ev BuildEvent)
}

// BaseBuildExtension supplies no-op defaults to embed.
type BaseBuildExtension struct {
	name string
}

func NewBaseBuildExtension(name string) BaseBuildExtension {
	return BaseBuildExtension{name: name}
}

func (e *BaseBuildExtension) Name() string  { return e.name }
func (e *BaseBuildExtension) Order() int    { return 100 }
func (e *BaseBuildExtension) Wrap(next func() (any, error), ev BuildEvent) (any, error) {
	return next()
}
func (e *BaseBuildExtension) OnError(err error, ev BuildEvent) {}
