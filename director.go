package extspi

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/m1gwings/treedrawer/tree"
	"go.uber.org/zap"
)

// DirectorKind is the level of a Director within a director tree (spec
// section 3's framework/application/module hierarchy).
type DirectorKind int

const (
	KindFramework DirectorKind = iota
	KindApplication
	KindModule
)

func (k DirectorKind) String() string {
	switch k {
	case KindFramework:
		return "framework"
	case KindApplication:
		return "application"
	case KindModule:
		return "module"
	default:
		return "unknown"
	}
}

var directorSeq int64

// Director is component C5, the Scope Director: one node in a
// parent/child tree of scopes, each owning its own instance caches,
// post-processors, build extensions, and build trace. It plays the
// role the teacher package gives Scope, generalized from a single flat
// graph to the spec's nested framework/application/module tree (spec
// section 3). Each node holds a pointer to its parent and a map of its
// children by ID.
type Director struct {
	id   string
	kind DirectorKind

	parent *Director

	mu       sync.RWMutex
	children map[string]*Director

	procMu          sync.RWMutex
	postProcessors  []PostProcessor
	buildExtensions []BuildExtension

	buildMu  sync.Mutex
	builders map[reflect.Type]*contractBuilder

	scanner    *Scanner
	strategies []DiscoveryStrategy

	injector Injector
	logger   *zap.Logger

	trace *buildTrace
	tags  *directorTags

	destroyMu sync.Mutex
	destroyed bool
}

// DirectorOption configures a Director at creation time.
type DirectorOption func(*Director)

func WithInjector(injector Injector) DirectorOption {
	return func(d *Director) { d.injector = injector }
}

func WithLogger(logger *zap.Logger) DirectorOption {
	return func(d *Director) { d.logger = logger }
}

func WithStrategies(strategies []DiscoveryStrategy) DirectorOption {
	return func(d *Director) { d.strategies = strategies }
}

func WithScanner(scanner *Scanner) DirectorOption {
	return func(d *Director) { d.scanner = scanner }
}

func WithTraceCapacity(capacity int) DirectorOption {
	return func(d *Director) { d.trace = newBuildTrace(capacity) }
}

func newDirector(kind DirectorKind, id string, parent *Director, opts ...DirectorOption) *Director {
	if id == "" {
		id = fmt.Sprintf("%s-%d", kind, atomic.AddInt64(&directorSeq, 1))
	}
	d := &Director{
		id:       id,
		kind:     kind,
		parent:   parent,
		children: make(map[string]*Director),
		builders: make(map[reflect.Type]*contractBuilder),
		injector: NopInjector{},
		logger:   zap.NewNop(),
		trace:    newBuildTrace(512),
		scanner:  NewScanner(256),
		tags:     newDirectorTags(),
	}
	if parent != nil {
		d.injector = parent.injector
		d.logger = parent.logger
		d.strategies = parent.strategies
		d.scanner = parent.scanner
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewFrameworkDirector creates the root of a director tree.
func NewFrameworkDirector(opts ...DirectorOption) *Director {
	return newDirector(KindFramework, "framework", nil, opts...)
}

// NewApplication creates an application-scoped child of d.
func (d *Director) NewApplication(id string, opts ...DirectorOption) *Director {
	return d.newChild(KindApplication, id, opts...)
}

// NewModule creates a module-scoped child of d.
func (d *Director) NewModule(id string, opts ...DirectorOption) *Director {
	return d.newChild(KindModule, id, opts...)
}

func (d *Director) newChild(kind DirectorKind, id string, opts ...DirectorOption) *Director {
	child := newDirector(kind, id, d, opts...)
	d.mu.Lock()
	d.children[child.id] = child
	d.mu.Unlock()
	return child
}

func (d *Director) ID() string         { return d.id }
func (d *Director) Kind() DirectorKind { return d.kind }
func (d *Director) Parent() *Director  { return d.parent }

// ownerFor walks the tree to find the Director responsible for
// building and caching instances of the given scope (spec section 3):
// ScopeSelf always means d itself; the others walk toward the root
// looking for the nearest ancestor (inclusive) of matching kind,
// falling back to the root framework Director if none is found.
func (d *Director) ownerFor(scope ScopeTag) *Director {
	switch scope {
	case ScopeSelf:
		return d
	case ScopeFramework:
		node := d
		for node.parent != nil {
			node = node.parent
		}
		return node
	case ScopeApplication:
		return d.nearestKind(KindApplication)
	case ScopeModule:
		return d.nearestKind(KindModule)
	default:
		return d
	}
}

func (d *Director) nearestKind(kind DirectorKind) *Director {
	node := d
	for node != nil {
		if node.kind == kind {
			return node
		}
		if node.parent == nil {
			return node
		}
		node = node.parent
	}
	return d
}

// RegisterPostProcessor files a scope-wide build hook on d, calling
// its Init immediately (spec section 4.3).
func (d *Director) RegisterPostProcessor(p PostProcessor) error {
	if err := p.Init(d); err != nil {
		return err
	}
	d.procMu.Lock()
	d.postProcessors = append(d.postProcessors, p)
	d.procMu.Unlock()
	return nil
}

// RegisterBuildExtension files a pipeline-wrapping hook on d.
func (d *Director) RegisterBuildExtension(e BuildExtension) {
	d.procMu.Lock()
	defer d.procMu.Unlock()
	d.buildExtensions = append(d.buildExtensions, e)
	sortBuildExtensions(d.buildExtensions)
}

func sortBuildExtensions(exts []BuildExtension) {
	for i := 1; i < len(exts); i++ {
		for j := i; j > 0 && exts[j-1].Order() > exts[j].Order(); j-- {
			exts[j-1], exts[j] = exts[j], exts[j-1]
		}
	}
}

// postProcessorChain returns every PostProcessor registered from the
// root down to d, root-first, so a logging extension registered once
// on the framework Director observes every descendant's builds too.
func (d *Director) postProcessorChain() []PostProcessor {
	var chain [][]PostProcessor
	for node := d; node != nil; node = node.parent {
		node.procMu.RLock()
		chain = append(chain, append([]PostProcessor(nil), node.postProcessors...))
		node.procMu.RUnlock()
	}
	var out []PostProcessor
	for i := len(chain) - 1; i >= 0; i-- {
		out = append(out, chain[i]...)
	}
	return out
}

func (d *Director) buildExtensionChain() []BuildExtension {
	var chain [][]BuildExtension
	for node := d; node != nil; node = node.parent {
		node.procMu.RLock()
		chain = append(chain, append([]BuildExtension(nil), node.buildExtensions...))
		node.procMu.RUnlock()
	}
	var out []BuildExtension
	for i := len(chain) - 1; i >= 0; i-- {
		out = append(out, chain[i]...)
	}
	return out
}

// isDestroyed reports whether Destroy has already run on d.
func (d *Director) isDestroyed() bool {
	d.destroyMu.Lock()
	defer d.destroyMu.Unlock()
	return d.destroyed
}

// Destroy cascades destruction through d's subtree depth-first (spec
// section 3 "Lifetimes", section 8 invariant 9): children are
// destroyed before d itself, every cached instance implementing
// Disposer is released, and every registered PostProcessor's Dispose
// runs. Destroy is idempotent.
func (d *Director) Destroy() error {
	d.destroyMu.Lock()
	if d.destroyed {
		d.destroyMu.Unlock()
		return nil
	}
	d.destroyed = true
	d.destroyMu.Unlock()

	d.mu.RLock()
	children := make([]*Director, 0, len(d.children))
	for _, c := range d.children {
		children = append(children, c)
	}
	d.mu.RUnlock()

	var firstErr error
	for _, c := range children {
		if err := c.Destroy(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	d.buildMu.Lock()
	builders := d.builders
	d.buildMu.Unlock()
	for _, cb := range builders {
		cb.disposeAll(d.logger)
	}

	d.procMu.RLock()
	procs := append([]PostProcessor(nil), d.postProcessors...)
	d.procMu.RUnlock()
	for _, p := range procs {
		if err := p.Dispose(d); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if d.parent != nil {
		d.parent.mu.Lock()
		delete(d.parent.children, d.id)
		d.parent.mu.Unlock()
	}
	return firstErr
}

// BuildTrace returns a snapshot of d's recorded build history.
func (d *Director) BuildTrace() []BuildTraceNode {
	return d.trace.Snapshot()
}

// ScannerPoolMetrics reports d's scanner's line-buffer pool hit/miss
// counts, for the extspictl "stats" subcommand.
func (d *Director) ScannerPoolMetrics() PoolMetrics {
	return d.scanner.PoolMetrics()
}

func (d *Director) recordTrace(contract reflect.Type, name, outcome string, start time.Time, err error) {
	d.trace.record(BuildTraceNode{
		ID:       uuid.NewString(),
		Contract: typeName(contract),
		Name:     name,
		Outcome:  outcome,
		Duration: time.Since(start),
		At:       start,
		Err:      err,
	})
	if err != nil {
		d.logger.Warn("extspi: build failed",
			zap.String("contract", typeName(contract)),
			zap.String("name", name),
			zap.Error(err))
	}
}

// DrawTree renders d's subtree using treedrawer, for the extspictl
// "tree" subcommand and for ad-hoc debugging (the spec's call for
// human-inspectable scope structure, carried per SPEC_FULL.md's domain
// stack).
func (d *Director) DrawTree() (string, error) {
	root := tree.NewTree(tree.NodeString(d.id + " [" + d.kind.String() + "]"))
	if err := d.attachChildren(root); err != nil {
		return "", err
	}
	return root.String(), nil
}

func (d *Director) attachChildren(node *tree.Tree) error {
	d.mu.RLock()
	children := make([]*Director, 0, len(d.children))
	for _, c := range d.children {
		children = append(children, c)
	}
	d.mu.RUnlock()

	for _, c := range children {
		label := c.id + " [" + c.kind.String() + "]"
		child := node.AddChild(tree.NodeString(label))
		if err := c.attachChildren(child); err != nil {
			return err
		}
	}
	return nil
}
