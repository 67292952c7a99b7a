// SPDX-License-Identifier: MIT

package structurate

import (
	"fmt"
	"reflect"
)

// TypeAdapter converts values of one Go type to and from their YAML form.
// ToYAML must return a YAML-representable value (scalars, []any, map[string]any, *Node).
type TypeAdapter[T any] interface {
	ToYAML(v T) (any, error)
	FromYAML(raw any) (T, error)
}

// AdapterFuncs builds a TypeAdapter from two functions.
type AdapterFuncs[T any] struct {
	To   func(T) (any, error)
	From func(any) (T, error)
}

// ToYAML implements TypeAdapter. A nil To passes the value through.
func (a AdapterFuncs[T]) ToYAML(v T) (any, error) {
	if a.To == nil {
		return v, nil
	}
	return a.To(v)
}

// FromYAML implements TypeAdapter.
func (a AdapterFuncs[T]) FromYAML(raw any) (T, error) {
	if a.From == nil {
		var zero T
		return zero, fmt.Errorf("%w: adapter for %T has no decoder", ErrUnsupportedType, zero)
	}
	return a.From(raw)
}

// adapter is a type-erased TypeAdapter.
type adapter struct {
	typ  reflect.Type
	to   func(reflect.Value) (any, error)
	from func(any) (reflect.Value, error)
}

func eraseAdapter[T any](a TypeAdapter[T]) adapter {
	return adapter{
		typ: reflect.TypeFor[T](),
		to: func(v reflect.Value) (any, error) {
			return a.ToYAML(v.Interface().(T))
		},
		from: func(raw any) (reflect.Value, error) {
			v, err := a.FromYAML(raw)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(&v).Elem(), nil
		},
	}
}

// RegisterAdapter makes m use a for every value of type T, wherever it appears.
func RegisterAdapter[T any](m *Mapper, a TypeAdapter[T]) {
	ea := eraseAdapter(a)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adapters[ea.typ] = ea
}

// RegisterConverter registers a under id for fields tagged `config:"key,converter=id"`.
func RegisterConverter[T any](m *Mapper, id string, a TypeAdapter[T]) {
	ea := eraseAdapter(a)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.converters[id] = ea
}

func (m *Mapper) adapterFor(t reflect.Type) (adapter, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.adapters[t]
	return a, ok
}

func (m *Mapper) converterFor(id string, t reflect.Type) (adapter, error) {
	m.mu.RLock()
	a, ok := m.converters[id]
	m.mu.RUnlock()
	if !ok {
		return adapter{}, fmt.Errorf("converter %q not registered", id)
	}
	if a.typ != t {
		return adapter{}, fmt.Errorf("converter %q handles %s, field is %s", id, a.typ, t)
	}
	return a, nil
}
