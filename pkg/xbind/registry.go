package xbind

import (
	"reflect"
	"sync"
)

// Registry maps interface types to the concrete variants a choice
// deserialization may resolve to. Variants are tried in registration
// order, which therefore plays the role of declaration order.
// It is safe for concurrent use.
type Registry struct {
	mu sync.RWMutex

	// variants maps interface types to their ordered variant list.
	variants map[reflect.Type][]reflect.Type
}

// NewRegistry creates an empty variant registry.
func NewRegistry() *Registry {
	return &Registry{
		variants: make(map[reflect.Type][]reflect.Type),
	}
}

// DefaultRegistry is the global default registry the deserializer
// consults for interface-typed fields.
var DefaultRegistry = NewRegistry()

// RegisterVariant registers V as a variant of interface I in the
// default registry.
func RegisterVariant[I any, V any]() error {
	return DefaultRegistry.RegisterVariantTypes(
		reflect.TypeOf((*I)(nil)).Elem(),
		reflect.TypeOf((*V)(nil)).Elem(),
	)
}

// MustRegisterVariant is like RegisterVariant but panics on error.
// Intended for package init blocks where a failure is a programming
// error.
func MustRegisterVariant[I any, V any]() {
	if err := RegisterVariant[I, V](); err != nil {
		panic(err)
	}
}

// RegisterVariantTypes registers variantType as a variant of
// interfaceType.
func (r *Registry) RegisterVariantTypes(interfaceType, variantType reflect.Type) error {
	if interfaceType == nil || interfaceType.Kind() != reflect.Interface {
		return NewBindingError("", "", "variant registration needs an interface type", nil)
	}
	if variantType == nil {
		return NewBindingError(interfaceType.String(), "", "cannot register nil variant", nil)
	}
	if !variantType.Implements(interfaceType) {
		if reflect.PointerTo(variantType).Implements(interfaceType) {
			variantType = reflect.PointerTo(variantType)
		} else {
			return NewBindingError(interfaceType.String(), "",
				variantType.String()+" does not implement the interface", nil)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.variants[interfaceType] {
		if existing == variantType {
			return NewBindingError(interfaceType.String(), "",
				variantType.String()+" already registered", ErrDuplicateVariant)
		}
	}
	r.variants[interfaceType] = append(r.variants[interfaceType], variantType)
	return nil
}

// Variants returns the ordered variant list for an interface type.
// The returned slice is a copy.
func (r *Registry) Variants(interfaceType reflect.Type) []reflect.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()

	vs := r.variants[interfaceType]
	if vs == nil {
		return nil
	}
	result := make([]reflect.Type, len(vs))
	copy(result, vs)
	return result
}

// Size returns the number of interfaces with registered variants.
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.variants)
}

// Clear removes all registrations. This is primarily useful for
// testing.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.variants = make(map[reflect.Type][]reflect.Type)
}

// variantsOf is the lookup the deserializer uses.
func variantsOf(interfaceType reflect.Type) []reflect.Type {
	return DefaultRegistry.Variants(interfaceType)
}
