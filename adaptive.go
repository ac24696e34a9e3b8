package extspi

import (
	"fmt"
	"reflect"
)

// AdaptiveDispatcher is component C4: for one contract, it picks which
// Named implementation should answer a given method call (spec section
// 4.4), then routes the call through the owning Director's ordinary,
// sticky-on-failure build path - so an adaptive call and a direct
// Loader.Get of the same name always observe the same cached instance.
type AdaptiveDispatcher struct {
	director *Director
	contract reflect.Type
	desc     *ContractDescriptor
}

func (d *Director) adaptiveDispatcher(contract reflect.Type, desc *ContractDescriptor) *AdaptiveDispatcher {
	return &AdaptiveDispatcher{director: d, contract: contract, desc: desc}
}

// dispatchName picks the implementation name for a call to method: the
// URL carried by args is consulted for each key WithAdaptiveMethod
// declared for method, in order; the contract's DefaultName is the
// final fallback (spec section 4.4). A method with no WithAdaptiveMethod
// declaration at all has no dispatch key to extract and no implicit
// fallback: it fails at call time rather than routing to DefaultName.
func (a *AdaptiveDispatcher) dispatchName(method string, args []reflect.Value) (string, error) {
	keys, declared := a.desc.AdaptiveMethods[method]
	if !declared {
		return "", &GeneratorError{
			Contract: a.contract,
			Method:   method,
			Reason:   "no adaptive dispatch keys declared; call WithAdaptiveMethod for this method",
		}
	}
	if u := extractURL(args); u != nil {
		for _, key := range keys {
			if v := u.Parameter(key); v != "" {
				return v, nil
			}
		}
	}
	if a.desc.DefaultName == "" {
		return "", &AdaptiveBuildError{
			Contract: a.contract,
			Cause:    fmt.Errorf("method %s: no URL parameter matched and contract has no default name", method),
		}
	}
	return a.desc.DefaultName, nil
}

// extractURL finds the first argument carrying dispatch parameters:
// either a *URL directly, or a value implementing URLGetter.
func extractURL(args []reflect.Value) *URL {
	for _, arg := range args {
		if !arg.IsValid() || !arg.CanInterface() {
			continue
		}
		v := arg.Interface()
		if u, ok := v.(*URL); ok && u != nil {
			return u
		}
		if g, ok := v.(URLGetter); ok {
			return g.GetURL()
		}
	}
	return nil
}

// Invoke resolves the implementation for a call to method/args and
// reflect.Calls method on it.
func (a *AdaptiveDispatcher) Invoke(method string, args []reflect.Value) ([]reflect.Value, error) {
	name, err := a.dispatchName(method, args)
	if err != nil {
		return nil, err
	}
	instance, err := a.director.resolveNamed(a.contract, name)
	if err != nil {
		return nil, &AdaptiveBuildError{Contract: a.contract, Cause: err}
	}
	fn := reflect.ValueOf(instance).MethodByName(method)
	if !fn.IsValid() {
		return nil, &AdaptiveBuildError{
			Contract: a.contract,
			Cause:    fmt.Errorf("implementation %q has no method %s", name, method),
		}
	}
	return fn.Call(args), nil
}

// Func returns a reflect.Value holding a function with exactly the
// contract method's signature, built with reflect.MakeFunc over
// Invoke - this is the whole of the "generated $Adaptive method body"
// spec section 4.4 describes, without any actual code generation: Go
// cannot synthesize a named type with methods at runtime, but it can
// synthesize a func value of any reflect.Type, which is all a single
// dispatch call needs. A method that declares dispatch keys but takes
// no *URL or URLGetter argument fails here with a GeneratorError.
func (a *AdaptiveDispatcher) Func(method string) (reflect.Value, error) {
	m, ok := a.contract.MethodByName(method)
	if !ok {
		return reflect.Value{}, &AdaptiveBuildError{
			Contract: a.contract,
			Cause:    fmt.Errorf("contract has no method %s", method),
		}
	}
	fnType := m.Type
	if _, declared := a.desc.AdaptiveMethods[method]; declared {
		urlType := reflect.TypeOf((*URL)(nil))
		getterType := reflect.TypeOf((*URLGetter)(nil)).Elem()
		hasURL := false
		for i := 0; i < fnType.NumIn(); i++ {
			if in := fnType.In(i); in == urlType || in.Implements(getterType) {
				hasURL = true
				break
			}
		}
		if !hasURL {
			return reflect.Value{}, &GeneratorError{Contract: a.contract, Method: method, Reason: "no *URL or URLGetter parameter to read dispatch keys from"}
		}
	}
	fn := reflect.MakeFunc(fnType, func(args []reflect.Value) []reflect.Value {
		results, err := a.Invoke(method, args)
		if err != nil {
			return zeroResults(fnType, err)
		}
		return results
	})
	return fn, nil
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// zeroResults builds a zero-valued result list for fnType, writing err
// into the final output slot if that output is an error - a
// reflect.MakeFunc body cannot itself return a Go error any other way,
// so a dispatch failure only surfaces through the method's own error
// return when it has one.
func zeroResults(fnType reflect.Type, err error) []reflect.Value {
	out := make([]reflect.Value, fnType.NumOut())
	for i := range out {
		out[i] = reflect.Zero(fnType.Out(i))
	}
	if n := fnType.NumOut(); n > 0 && fnType.Out(n-1) == errorType {
		out[n-1] = reflect.ValueOf(err)
	}
	return out
}
