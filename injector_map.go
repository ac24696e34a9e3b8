package extspi

import (
	"reflect"
	"sync"

	"github.com/extspi-go/extspi/pkg/meta"
)

// MapInjector is a minimal, concrete Injector backed by a property-name
// keyed map, for applications that don't already run an IoC container.
// Values are stored as-is via pkg/meta and resolved with a
// reflect.ConvertibleTo fallback, so a caller can register an int and
// have it injected into an int32 field, matching meta.Get's conversion
// behavior.
type MapInjector struct {
	mu   sync.RWMutex
	data map[string]any
}

// NewMapInjector creates an empty MapInjector.
func NewMapInjector() *MapInjector {
	return &MapInjector{data: make(map[string]any)}
}

// Set binds property to value, overwriting any previous binding.
func (m *MapInjector) Set(property string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	meta.Set(m.data, property, value)
}

// Resolve implements Injector. It ignores paramType beyond checking
// that the stored value is assignable or convertible to it; property
// is the only lookup key.
func (m *MapInjector) Resolve(paramType reflect.Type, property string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	values := meta.Find(m.data, property)
	if len(values) == 0 {
		return nil, false
	}
	value := values[0]

	valueType := reflect.TypeOf(value)
	if valueType == nil {
		return nil, false
	}
	if valueType.AssignableTo(paramType) {
		return value, true
	}
	if valueType.ConvertibleTo(paramType) {
		return reflect.ValueOf(value).Convert(paramType).Interface(), true
	}
	return nil, false
}
