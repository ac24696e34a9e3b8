// Package extspi provides a hierarchical, pluggable extension-point
// runtime for Go: applications declare an interface as an SPI
// contract, implementations self-register against it from init(), and
// callers resolve named, default, adaptive, or activation-filtered
// instances through a Director tree mirroring their
// framework/application/module structure.
//
// # Overview
//
// extspi organizes code around five components:
//
//  1. Scanner: reads descriptor files off a contract's configured
//     DiscoveryStrategy roots and forwards each line to a registry.
//  2. ClassRegistry: classifies registrations as Named, Adaptive, or
//     Wrapper, resolving name aliases and override precedence.
//  3. The build pipeline (builder.go): constructs, injects,
//     post-processes, and wraps a Named instance, caching both the
//     result and any failure.
//  4. AdaptiveDispatcher: routes one contract method call to whichever
//     Named implementation a request's URL selects.
//  5. Director: a node in a framework/application/module scope tree,
//     owning its own instance caches, post-processors, and lifecycle.
//
// # Basic usage
//
//	type Greeter interface {
//	    Greet(name string) string
//	}
//
//	func init() {
//	    extspi.RegisterSPI[Greeter](extspi.WithDefaultName("plain"))
//	    extspi.RegisterNamed[Greeter]("example.com/greeters.Plain", func() Greeter {
//	        return plainGreeter{}
//	    })
//	}
//
//	root := extspi.NewFrameworkDirector()
//	loader, _ := extspi.GetLoader[Greeter](root)
//	loader.Scan(nil, extspi.DefaultStrategies("./config"))
//	greeter, _ := loader.GetDefault()
package extspi
