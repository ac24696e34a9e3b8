package extspi

import (
	"fmt"
	"reflect"
)

// Loader is the public, per-contract facade spec section 6 describes:
// everything a caller needs to resolve, enumerate, or extend one SPI
// contract against one Director. Methods requiring T's own type
// parameter (Get, GetOrDefault, ...) live as methods here instead of
// on Director directly, since Go methods cannot declare their own type
// parameters - the package-level GetLoader[T] is the generic entry
// point this type requires.
type Loader[T any] struct {
	director *Director
	contract reflect.Type
	desc     *ContractDescriptor
}

// GetLoader resolves the Loader for contract T against director,
// failing if T was never registered via RegisterSPI.
func GetLoader[T any](d *Director) (*Loader[T], error) {
	desc, err := contractDescriptor[T]()
	if err != nil {
		return nil, err
	}
	if d.ownerFor(desc.Scope).isDestroyed() {
		return nil, &DestroyedError{Contract: desc.Type}
	}
	return &Loader[T]{director: d, contract: desc.Type, desc: desc}, nil
}

// checkAlive returns a DestroyedError if l's owning director has
// already been torn down.
func (l *Loader[T]) checkAlive() error {
	if l.director.ownerFor(l.desc.Scope).isDestroyed() {
		return &DestroyedError{Contract: l.contract}
	}
	return nil
}

// Get resolves the Named implementation bound to name, building (and
// sticky-caching on failure) it as needed (spec section 4.3).
func (l *Loader[T]) Get(name string) (T, error) {
	var zero T
	instance, err := l.director.resolveNamed(l.contract, name)
	if err != nil {
		return zero, err
	}
	return safeTypeAssert[T](instance)
}

// GetOrDefault resolves name, or the contract's default name if name
// is empty (spec section 6).
func (l *Loader[T]) GetOrDefault(name string) (T, error) {
	if name == "" {
		return l.GetDefault()
	}
	return l.Get(name)
}

// GetDefault resolves the contract's declared default name.
func (l *Loader[T]) GetDefault() (T, error) {
	var zero T
	if l.desc.DefaultName == "" {
		return zero, &invalidContractError{Type: l.contract, Reason: "no default name registered"}
	}
	return l.Get(l.desc.DefaultName)
}

// GetAdaptive returns the contract's adaptive dispatcher as a T, using
// the func-adapter constructor supplied via WithFuncAdapter at
// RegisterSPI time (spec section 4.4). Contracts with more than one
// method have no live T value to return here - use Compile with a
// SourceCompiler instead, and call the generated type's methods
// directly against a Director-bound AdaptiveDispatcher.
func (l *Loader[T]) GetAdaptive() (T, error) {
	var zero T
	if err := l.checkAlive(); err != nil {
		return zero, err
	}
	if !l.desc.FuncAdapter.IsValid() {
		return zero, &AdaptiveBuildError{
			Contract: l.contract,
			Cause:    fmt.Errorf("no func adapter registered; call RegisterSPI[T](WithFuncAdapter(...))"),
		}
	}
	if l.contract.NumMethod() != 1 {
		return zero, &AdaptiveBuildError{
			Contract: l.contract,
			Cause:    fmt.Errorf("func-adapter adaptive dispatch requires a single-method contract, has %d", l.contract.NumMethod()),
		}
	}

	method := l.contract.Method(0)
	disp := l.director.adaptiveDispatcher(l.contract, l.desc)
	fn, err := disp.Func(method.Name)
	if err != nil {
		return zero, err
	}

	adapterType := l.desc.FuncAdapter.Type()
	results := l.desc.FuncAdapter.Call([]reflect.Value{fn.Convert(adapterType.In(0))})
	return safeTypeAssert[T](results[0].Interface())
}

// Compile renders a SourceCompiler adapter for this contract, for
// multi-method contracts GetAdaptive cannot serve directly.
func (l *Loader[T]) Compile(compiler SourceCompiler, packageName, typeName string) (string, error) {
	if compiler == nil {
		compiler = DefaultSourceCompiler
	}
	return compiler.Compile(l.contract, packageName, typeName)
}

// GetActivate resolves every Named candidate matching group/url and
// the comma-separated names query, in spec section 4.3's order:
// explicit before-names first (as given), then auto-activated
// candidates sorted by declared order/name (unless names disables
// the default set with "-default"), then explicit after-names.
// Explicit exclusions ("-name") apply throughout.
func (l *Loader[T]) GetActivate(group string, u *URL, names string) ([]T, error) {
	if err := l.checkAlive(); err != nil {
		return nil, err
	}
	reg := registryFor(l.contract)
	q := parseActivateNames(names)

	var out []T
	seen := make(map[string]bool)
	appendByName := func(name string) error {
		if seen[name] || q.excluded[name] {
			return nil
		}
		v, err := l.Get(name)
		if err != nil {
			return err
		}
		seen[name] = true
		out = append(out, v)
		return nil
	}

	for _, n := range q.before {
		if err := appendByName(n); err != nil {
			return nil, err
		}
	}

	if !q.noDefault {
		candidates := reg.activateCandidates()
		orderables := make([]orderable, 0, len(candidates))
		for name, rec := range candidates {
			if q.excluded[name] || seen[name] {
				continue
			}
			if !matchesActivate(rec.activate, group, u) {
				continue
			}
			orderables = append(orderables, orderable{
				name:   name,
				order:  rec.activate.Order,
				before: rec.activate.Before,
				after:  rec.activate.After,
			})
		}
		for _, name := range sortOrderables(orderables) {
			if err := appendByName(name); err != nil {
				return nil, err
			}
		}
	}

	for _, n := range q.after {
		if err := appendByName(n); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// SupportedNames returns the name of every acceptable Named
// registration currently filed for T, sorted.
func (l *Loader[T]) SupportedNames() []string {
	return registryFor(l.contract).supportedNames()
}

// Has reports whether name is a known, acceptable Named registration.
func (l *Loader[T]) Has(name string) bool {
	return registryFor(l.contract).has(name)
}

// Add programmatically files name -> identifier, as if scanned from an
// overriding strategy (spec section 6).
func (l *Loader[T]) Add(identifier, name string) error {
	return registryFor(l.contract).add(name, identifier)
}

// Replace is Add's alias, matching spec section 6's naming.
func (l *Loader[T]) Replace(identifier, name string) error {
	return registryFor(l.contract).replace(name, identifier)
}

// Scan runs the Resource Scanner (component C1) for T's contract over
// strategies, filing discovered registrations into its ClassRegistry.
// Callers typically call this once per Director tree at startup.
func (l *Loader[T]) Scan(scanner *Scanner, strategies []DiscoveryStrategy) {
	if scanner == nil {
		scanner = l.director.scanner
	}
	if strategies == nil {
		strategies = l.director.strategies
	}
	scanner.Scan(l.contract, strategies)
}

// ScanContract is Loader.Scan's type-erased sibling, for tooling (the
// inspection CLI) that only has a contract's reflect.Type in hand,
// never its generic parameter - it works directly against d's scanner
// and configured strategies since registryFor and Scanner.Scan are
// already type-erased underneath Loader.
func ScanContract(d *Director, contract reflect.Type) {
	d.scanner.Scan(contract, d.strategies)
}

// SupportedNamesFor is Loader.SupportedNames's type-erased sibling.
func SupportedNamesFor(contract reflect.Type) []string {
	return registryFor(contract).supportedNames()
}

// ActivateNamesFor resolves the ordered name list Loader.GetActivate
// would build, without building anything - the type-erased name-only
// projection tooling needs when it has no T to call Get with.
func ActivateNamesFor(contract reflect.Type, group string, u *URL, names string) ([]string, error) {
	reg := registryFor(contract)
	q := parseActivateNames(names)

	var out []string
	seen := make(map[string]bool)
	appendByName := func(name string) error {
		if seen[name] || q.excluded[name] {
			return nil
		}
		if !reg.has(name) {
			return &UnknownExtensionError{Contract: contract, Name: name}
		}
		seen[name] = true
		out = append(out, name)
		return nil
	}

	for _, n := range q.before {
		if err := appendByName(n); err != nil {
			return nil, err
		}
	}

	if !q.noDefault {
		candidates := reg.activateCandidates()
		orderables := make([]orderable, 0, len(candidates))
		for name, rec := range candidates {
			if q.excluded[name] || seen[name] {
				continue
			}
			if !matchesActivate(rec.activate, group, u) {
				continue
			}
			orderables = append(orderables, orderable{
				name:   name,
				order:  rec.activate.Order,
				before: rec.activate.Before,
				after:  rec.activate.After,
			})
		}
		for _, name := range sortOrderables(orderables) {
			if err := appendByName(name); err != nil {
				return nil, err
			}
		}
	}

	for _, n := range q.after {
		if err := appendByName(n); err != nil {
			return nil, err
		}
	}
	return out, nil
}
