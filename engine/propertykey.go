package engine

import (
	"github.com/dop251/goja"

	"github.com/GriffinCanCode/jsbridge/jserror"
)

// PropertyKey names an object property.
type PropertyKey struct {
	v    goja.Value
	bind binding
}

// NewPropertyKey creates a key from host text.
func (r *Runtime) NewPropertyKey(name string) (PropertyKey, error) {
	var key PropertyKey
	err := r.run(jserror.OpAccess, func(vm *goja.Runtime) error {
		if err := validKey(name); err != nil {
			return err
		}
		key = PropertyKey{v: vm.ToValue(name), bind: r.bind()}
		return nil
	})
	return key, err
}

// PropertyKeyFromString creates a key from an engine string.
func (r *Runtime) PropertyKeyFromString(s String) (PropertyKey, error) {
	var key PropertyKey
	err := r.run(jserror.OpAccess, func(*goja.Runtime) error {
		if err := r.owns(s.bind); err != nil {
			return err
		}
		key = PropertyKey{v: s.v, bind: s.bind}
		return nil
	})
	return key, err
}

// Value returns the key text.
func (k PropertyKey) Value(rt *Runtime) (string, error) {
	var out string
	err := rt.run(jserror.OpAccess, func(*goja.Runtime) error {
		if err := rt.owns(k.bind); err != nil {
			return err
		}
		out = k.v.String()
		return nil
	})
	return out, err
}

// Equals reports whether both keys name the same property.
func (k PropertyKey) Equals(rt *Runtime, other PropertyKey) (bool, error) {
	var eq bool
	err := rt.run(jserror.OpAccess, func(*goja.Runtime) error {
		if err := rt.owns(k.bind); err != nil {
			return err
		}
		if err := rt.owns(other.bind); err != nil {
			return err
		}
		eq = k.v.StrictEquals(other.v)
		return nil
	})
	return eq, err
}

// ToValue returns the key as a string Value.
func (k PropertyKey) ToValue() Value {
	return Value{kind: KindString, ref: k.v, bind: k.bind}
}
