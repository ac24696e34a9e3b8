package extspi

import "path/filepath"

// DiscoveryStrategy is one root the Resource Scanner (component C1)
// consults for descriptor files, in the order the caller supplies
// (spec section 4.1's three-tier precedence: services, internal,
// user). Overridden strategies win name conflicts over earlier,
// non-overridden ones instead of producing an ambiguous-registration
// error.
type DiscoveryStrategy struct {
	Name       string
	Root       string
	Overridden bool
}

// DefaultStrategies builds the conventional three-tier search order
// under baseDir, mirroring the META-INF/services,
// META-INF/<ns>/internal, META-INF/<ns> precedence the spec's
// DESIGN NOTES trace back to the original Dubbo loader: a low-priority
// JDK-style services root, a framework-owned internal root, and a
// user-owned root that is allowed to override both.
func DefaultStrategies(baseDir string) []DiscoveryStrategy {
	return []DiscoveryStrategy{
		{Name: "services", Root: filepath.Join(baseDir, "services"), Overridden: false},
		{Name: "internal", Root: filepath.Join(baseDir, "extspi", "internal"), Overridden: false},
		{Name: "user", Root: filepath.Join(baseDir, "extspi"), Overridden: true},
	}
}

// specialRootOverrides files a handful of contracts whose descriptor
// file is expected at a fixed location regardless of the configured
// strategies - the Go analogue of Dubbo's special-cased bootstrap SPIs
// (its own ExtensionFactory, the protocol contract) that have to be
// loadable before any application config exists.
var specialRootOverrides = make(map[string]string)

// RegisterSpecialRoot pins contract's descriptor file to an exact path,
// bypassing every configured DiscoveryStrategy. Intended for the small
// set of bootstrap contracts a process must be able to resolve before
// its own configuration (and therefore its strategy roots) are known.
func RegisterSpecialRoot[T any](path string) {
	t := contractType[T]()
	specialRootOverrides[fqName(t)] = path
}

// RegisterSpecialRootByName is RegisterSpecialRoot's non-generic twin,
// for callers that only have a contract's fully-qualified name in
// hand - config-file-driven special roots, whose contract identifier
// arrives as a string rather than a type parameter.
func RegisterSpecialRootByName(fqContractName, path string) {
	specialRootOverrides[fqContractName] = path
}
