package extspi

import (
	"reflect"
	"strings"
	"sync"
)

// ScopeTag is the level in a director tree an extension contract is
// bound to (spec section 3).
type ScopeTag string

const (
	// ScopeSelf always builds a local instance, never inherited from a
	// parent director.
	ScopeSelf ScopeTag = "self"
	// ScopeFramework is shared by the framework-level director and every
	// descendant that does not shadow it locally.
	ScopeFramework ScopeTag = "framework"
	// ScopeApplication is shared within one application-level subtree.
	ScopeApplication ScopeTag = "application"
	// ScopeModule is shared within one module-level subtree.
	ScopeModule ScopeTag = "module"
)

// Classification is the bucket a registered record falls into (spec
// section 3). A record is in exactly one bucket.
type Classification int

const (
	ClassNamed Classification = iota
	ClassAdaptive
	ClassWrapper
)

func (c Classification) String() string {
	switch c {
	case ClassNamed:
		return "named"
	case ClassAdaptive:
		return "adaptive"
	case ClassWrapper:
		return "wrapper"
	default:
		return "unknown"
	}
}

// ContractDescriptor is the "annotation metadata" of spec section 3,
// carried as tagged data per the DESIGN NOTES translation rather than
// discovered by reflecting over struct tags: a stable identity, a
// default name, and a scope tag.
type ContractDescriptor struct {
	Type        reflect.Type
	DefaultName string
	Scope       ScopeTag

	// AdaptiveMethods maps a contract method name to the URL parameter
	// keys the adaptive dispatcher consults, in priority order, to pick
	// an implementation name for that call (spec section 4.4's "method
	// to dispatch key" table). A call to a method absent from this map
	// fails at call time with a GeneratorError.
	AdaptiveMethods map[string][]string

	// FuncAdapter holds a func(F) T conversion function, the Go-native
	// substitute for codegen'd adaptive classes on single-method
	// contracts (the http.HandlerFunc pattern). F must be exactly the
	// contract's sole method's function type.
	FuncAdapter reflect.Value
}

// SPIOption configures a ContractDescriptor at registration time.
type SPIOption func(*ContractDescriptor)

// WithDefaultName sets the contract's default extension name, used by
// GetDefault and as the adaptive dispatcher's final fallback.
func WithDefaultName(name string) SPIOption {
	return func(d *ContractDescriptor) { d.DefaultName = name }
}

// WithScope sets the contract's scope tag. Contracts are ScopeApplication
// by default.
func WithScope(scope ScopeTag) SPIOption {
	return func(d *ContractDescriptor) { d.Scope = scope }
}

// WithFuncAdapter registers a func(F) T conversion for single-method
// contracts, enabling Loader.GetAdaptive without a SourceCompiler step.
func WithFuncAdapter[F any, T any](adapter func(F) T) SPIOption {
	return func(d *ContractDescriptor) { d.FuncAdapter = reflect.ValueOf(adapter) }
}

// WithAdaptiveMethod declares that method should dispatch on the given
// URL parameter keys, tried in order, with the contract's DefaultName
// as the implicit last resort (spec section 4.4).
func WithAdaptiveMethod(method string, urlKeys ...string) SPIOption {
	return func(d *ContractDescriptor) {
		if d.AdaptiveMethods == nil {
			d.AdaptiveMethods = make(map[string][]string)
		}
		d.AdaptiveMethods[method] = urlKeys
	}
}

var (
	contractMu    sync.RWMutex
	contractDescs = make(map[reflect.Type]*ContractDescriptor)
)

// contractType returns the reflect.Type identity of interface T.
func contractType[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// RegisterSPI declares T as an extension contract: a pure interface
// with a default name and a scope. It is the Go-native substitute for
// annotating T with an @SPI annotation (spec section 3). Calling it
// twice for the same T overwrites the earlier descriptor - callers are
// expected to call it once, typically from a package init().
func RegisterSPI[T any](opts ...SPIOption) error {
	t := contractType[T]()
	if t == nil || t.Kind() != reflect.Interface {
		return &invalidContractError{Type: t, Reason: "not an interface"}
	}

	desc := &ContractDescriptor{Type: t, Scope: ScopeApplication}
	for _, opt := range opts {
		opt(desc)
	}
	if strings.ContainsAny(desc.DefaultName, ", ") {
		return &invalidContractError{Type: t, Reason: "default name must be a single token"}
	}

	contractMu.Lock()
	contractDescs[t] = desc
	contractMu.Unlock()
	return nil
}

// contractDescriptor looks up the descriptor for T, returning
// ErrInvalidArgument if T was never registered via RegisterSPI.
func contractDescriptor[T any]() (*ContractDescriptor, error) {
	t := contractType[T]()
	if t.Kind() != reflect.Interface {
		return nil, &invalidContractError{Type: t, Reason: "not an interface"}
	}
	contractMu.RLock()
	desc, ok := contractDescs[t]
	contractMu.RUnlock()
	if !ok {
		return nil, &invalidContractError{Type: t, Reason: "missing SPI descriptor; call RegisterSPI[T] first"}
	}
	return desc, nil
}

// RegisteredContracts returns every contract type currently registered
// via RegisterSPI, for introspection tooling (the inspection CLI's
// list subcommand) that has no compile-time T to call GetLoader with.
func RegisteredContracts() []reflect.Type {
	contractMu.RLock()
	defer contractMu.RUnlock()
	out := make([]reflect.Type, 0, len(contractDescs))
	for t := range contractDescs {
		out = append(out, t)
	}
	return out
}

// ContractByName resolves a contract's fully-qualified name (as
// produced by fqName, and as it would appear in a descriptor file) to
// its registered reflect.Type, for CLI commands that take a contract
// name as a string argument.
func ContractByName(name string) (reflect.Type, bool) {
	contractMu.RLock()
	defer contractMu.RUnlock()
	for t := range contractDescs {
		if fqName(t) == name {
			return t, true
		}
	}
	return nil, false
}

// descriptorByType looks up a contract's descriptor from a bare
// reflect.Type, for call sites (the adaptive dispatcher, the builder)
// that only have the type, not the generic parameter, in hand.
func descriptorByType(t reflect.Type) (*ContractDescriptor, error) {
	contractMu.RLock()
	desc, ok := contractDescs[t]
	contractMu.RUnlock()
	if !ok {
		return nil, &invalidContractError{Type: t, Reason: "missing SPI descriptor; call RegisterSPI[T] first"}
	}
	return desc, nil
}

// appliesTo reports whether a Wrapper record with this spec should
// wrap the named instance (spec section 3's match/mismatch lists).
func (w WrapperSpec) appliesTo(name string) bool {
	if len(w.Matches) > 0 {
		found := false
		for _, m := range w.Matches {
			if m == name {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, m := range w.Mismatches {
		if m == name {
			return false
		}
	}
	return true
}

type invalidContractError struct {
	Type   reflect.Type
	Reason string
}

func (e *invalidContractError) Error() string {
	return "extspi: invalid contract " + typeName(e.Type) + ": " + e.Reason
}

func (e *invalidContractError) Unwrap() error {
	return ErrInvalidArgument
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

// ActivateSpec is the normalised "@Activate" metadata of spec section
// 3/4.3: group membership, URL key/value preconditions, class
// preconditions, ordering, and before/after relations.
type ActivateSpec struct {
	Groups  map[string]struct{}
	KVPairs [][2]string // entry[1] == "" means a bare key (presence-only match)
	OnClass []string
	Order   int
	Before  []string
	After   []string
}

// WrapperSpec is the normalised metadata of a Wrapper record (spec
// section 3): optional name allow/deny lists and an order used to pick
// the outermost-first layering.
type WrapperSpec struct {
	Matches    []string
	Mismatches []string
	Order      int
}
