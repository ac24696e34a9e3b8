package extspi

import (
	"fmt"
	"reflect"
	"sync"
)

// Go has no runtime "load a class by fully-qualified name" primitive
// outside plugin.Open (platform-limited, single-load, no reload). The
// factory registry is the Go-native reading of spec section 9's
// "annotation metadata -> tagged data" note applied to class loading
// itself: an extension implementation registers a zero-arg (or, for
// wrappers, one-arg) constructor under a stable identifier from an
// init() function, the same pattern database/sql drivers and image
// codecs use. The resource scanner (scanner.go) still reads
// classpath-style config files and still drives discovery, override
// policy, and classification visibility exactly as specified; it
// resolves each configured identifier against this registry instead of
// a classloader.

type namedFactory struct {
	identifier  string
	newInstance func() any
	activate    ActivateSpec
}

type wrapperFactory struct {
	identifier string
	newWrapper func(inner any) any
	spec       WrapperSpec
}

type adaptiveFactory struct {
	identifier  string
	newInstance func() any
}

type contractFactories struct {
	named    map[string]*namedFactory
	wrappers map[string]*wrapperFactory
	adaptive *adaptiveFactory
}

var (
	factoryMu sync.RWMutex
	factories = make(map[reflect.Type]*contractFactories)
)

func factoriesFor(t reflect.Type) *contractFactories {
	factoryMu.Lock()
	defer factoryMu.Unlock()
	cf, ok := factories[t]
	if !ok {
		cf = &contractFactories{named: make(map[string]*namedFactory), wrappers: make(map[string]*wrapperFactory)}
		factories[t] = cf
	}
	return cf
}

// ActivateOption configures the ActivateSpec attached to a named
// registration.
type ActivateOption func(*ActivateSpec)

// InGroups restricts automatic activation to the given groups. An
// empty group query at lookup time matches any candidate.
func InGroups(groups ...string) ActivateOption {
	return func(s *ActivateSpec) {
		if s.Groups == nil {
			s.Groups = make(map[string]struct{}, len(groups))
		}
		for _, g := range groups {
			s.Groups[g] = struct{}{}
		}
	}
}

// WithURLMatch adds a URL key/value precondition. An empty value means
// presence-only ("bare key") matching.
func WithURLMatch(key, value string) ActivateOption {
	return func(s *ActivateSpec) {
		s.KVPairs = append(s.KVPairs, [2]string{key, value})
	}
}

// WithActivateOrder sets the numeric tiebreaker used by the ordering
// comparator (order.go).
func WithActivateOrder(order int) ActivateOption {
	return func(s *ActivateSpec) { s.Order = order }
}

// Before/After declare explicit ordering edges against other
// registered names, consumed by the topological sort in order.go.
func Before(names ...string) ActivateOption {
	return func(s *ActivateSpec) { s.Before = append(s.Before, names...) }
}

func After(names ...string) ActivateOption {
	return func(s *ActivateSpec) { s.After = append(s.After, names...) }
}

// RegisterNamed links identifier to factory as a Named extension
// record for contract T, with optional activation metadata. Intended
// to run from an extension implementation package's init().
func RegisterNamed[T any](identifier string, factory func() T, opts ...ActivateOption) error {
	if identifier == "" || factory == nil {
		return fmt.Errorf("%w: identifier and factory are required", ErrInvalidArgument)
	}
	spec := ActivateSpec{Groups: make(map[string]struct{})}
	for _, opt := range opts {
		opt(&spec)
	}
	cf := factoriesFor(contractType[T]())
	factoryMu.Lock()
	defer factoryMu.Unlock()
	cf.named[identifier] = &namedFactory{
		identifier:  identifier,
		newInstance: func() any { return factory() },
		activate:    spec,
	}
	return nil
}

// WrapperOption configures the WrapperSpec attached to a wrapper
// registration.
type WrapperOption func(*WrapperSpec)

// Matches restricts the wrapper to only decorate instances whose name
// is in the given list.
func Matches(names ...string) WrapperOption {
	return func(s *WrapperSpec) { s.Matches = append(s.Matches, names...) }
}

// Mismatches excludes the wrapper from decorating instances whose name
// is in the given list; mismatches win over matches.
func Mismatches(names ...string) WrapperOption {
	return func(s *WrapperSpec) { s.Mismatches = append(s.Mismatches, names...) }
}

// WithWrapperOrder sets the wrapper's position in the decoration chain
// - higher order wraps outermost (spec section 4.3 step 6).
func WithWrapperOrder(order int) WrapperOption {
	return func(s *WrapperSpec) { s.Order = order }
}

// RegisterWrapper links identifier to a one-argument constructor
// taking the contract itself - the Wrapper classification of spec
// section 3, detected there by constructor shape and here by which
// registration function the author called.
func RegisterWrapper[T any](identifier string, factory func(inner T) T, opts ...WrapperOption) error {
	if identifier == "" || factory == nil {
		return fmt.Errorf("%w: identifier and factory are required", ErrInvalidArgument)
	}
	var spec WrapperSpec
	for _, opt := range opts {
		opt(&spec)
	}
	cf := factoriesFor(contractType[T]())
	factoryMu.Lock()
	defer factoryMu.Unlock()
	cf.wrappers[identifier] = &wrapperFactory{
		identifier: identifier,
		newWrapper: func(inner any) any { return factory(inner.(T)) },
		spec:       spec,
	}
	return nil
}

// RegisterAdaptive links identifier to a zero-arg constructor as the
// single hand-written adaptive facade for contract T. Registering a
// second adaptive factory under a different identifier for the same
// contract is fatal: RegisterAdaptive returns an
// AmbiguousRegistrationError and keeps the first (spec section 4.2).
func RegisterAdaptive[T any](identifier string, factory func() T) error {
	if identifier == "" || factory == nil {
		return fmt.Errorf("%w: identifier and factory are required", ErrInvalidArgument)
	}
	cf := factoriesFor(contractType[T]())
	factoryMu.Lock()
	defer factoryMu.Unlock()
	if cf.adaptive != nil && cf.adaptive.identifier != identifier {
		return &AmbiguousRegistrationError{Contract: contractType[T](), Name: "<adaptive>", First: cf.adaptive.identifier, Second: identifier}
	}
	cf.adaptive = &adaptiveFactory{identifier: identifier, newInstance: func() any { return factory() }}
	return nil
}
