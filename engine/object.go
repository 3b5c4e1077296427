package engine

import (
	"github.com/dop251/goja"

	"github.com/GriffinCanCode/jsbridge/internal/shared/utils"
	"github.com/GriffinCanCode/jsbridge/jserror"
)

// Object is a handle to a JavaScript object. Arrays and functions are
// objects too; see AsArray and AsFunction.
type Object struct {
	obj  *goja.Object
	bind binding
}

func (r *Runtime) object(o *goja.Object) Object {
	return Object{obj: o, bind: r.bind()}
}

// NewObject creates an empty plain object.
func (r *Runtime) NewObject() (Object, error) {
	var o Object
	err := r.run(jserror.OpAccess, func(vm *goja.Runtime) error {
		o = r.object(vm.NewObject())
		return nil
	})
	return o, err
}

// Get reads a property. A missing property reads as undefined.
func (o Object) Get(rt *Runtime, key string) (Value, error) {
	var out Value
	err := rt.run(jserror.OpAccess, func(*goja.Runtime) error {
		if err := o.check(rt, key); err != nil {
			return err
		}
		var err error
		out, err = rt.value(o.obj.Get(key))
		return err
	})
	return out, err
}

// Set writes a property.
func (o Object) Set(rt *Runtime, key string, v Value) error {
	return rt.run(jserror.OpAccess, func(vm *goja.Runtime) error {
		if err := o.check(rt, key); err != nil {
			return err
		}
		gv, err := rt.toEngine(vm, v)
		if err != nil {
			return err
		}
		return o.obj.Set(key, gv)
	})
}

// Has reports whether key is in the object or its prototype chain.
func (o Object) Has(rt *Runtime, key string) (bool, error) {
	var found bool
	err := rt.run(jserror.OpAccess, func(vm *goja.Runtime) error {
		if err := o.check(rt, key); err != nil {
			return err
		}
		res, err := rt.helpers.has(goja.Undefined(), o.obj, vm.ToValue(key))
		if err != nil {
			return err
		}
		found = res.ToBoolean()
		return nil
	})
	return found, err
}

// Delete removes a property. Deleting a missing property succeeds.
func (o Object) Delete(rt *Runtime, key string) error {
	return rt.run(jserror.OpAccess, func(*goja.Runtime) error {
		if err := o.check(rt, key); err != nil {
			return err
		}
		return o.obj.Delete(key)
	})
}

// GetKey reads the property named by key.
func (o Object) GetKey(rt *Runtime, key PropertyKey) (Value, error) {
	name, err := key.Value(rt)
	if err != nil {
		return Value{}, err
	}
	return o.Get(rt, name)
}

// SetKey writes the property named by key.
func (o Object) SetKey(rt *Runtime, key PropertyKey, v Value) error {
	name, err := key.Value(rt)
	if err != nil {
		return err
	}
	return o.Set(rt, name, v)
}

// PropertyNames returns the enumerable property names, inherited ones
// included, in the engine's for-in order.
func (o Object) PropertyNames(rt *Runtime) (Array, error) {
	var arr Array
	err := rt.run(jserror.OpAccess, func(vm *goja.Runtime) error {
		if err := rt.owns(o.bind); err != nil {
			return err
		}
		res, err := rt.helpers.keys(goja.Undefined(), o.obj)
		if err != nil {
			return err
		}
		arr = Array{obj: rt.object(res.ToObject(vm))}
		return nil
	})
	return arr, err
}

// AsArray narrows o to an array.
func (o Object) AsArray(rt *Runtime) (arr Array, ok bool, err error) {
	err = rt.run(jserror.OpAccess, func(*goja.Runtime) error {
		if err := rt.owns(o.bind); err != nil {
			return err
		}
		res, err := rt.helpers.isArray(goja.Undefined(), o.obj)
		if err != nil {
			return err
		}
		if res.ToBoolean() {
			arr, ok = Array{obj: o}, true
		}
		return nil
	})
	return arr, ok, err
}

// AsFunction narrows o to a callable.
func (o Object) AsFunction(rt *Runtime) (fn Function, ok bool, err error) {
	err = rt.run(jserror.OpAccess, func(*goja.Runtime) error {
		if err := rt.owns(o.bind); err != nil {
			return err
		}
		if call, callable := goja.AssertFunction(o.obj); callable {
			fn, ok = Function{obj: o, call: call}, true
		}
		return nil
	})
	return fn, ok, err
}

// ToValue returns o as a Value.
func (o Object) ToValue() Value {
	return Value{kind: KindObject, ref: o.obj, bind: o.bind}
}

func (o Object) check(rt *Runtime, key string) error {
	if err := rt.owns(o.bind); err != nil {
		return err
	}
	return validKey(key)
}

func validKey(key string) error {
	if err := utils.ValidatePropertyKey(key); err != nil {
		return &jserror.Error{Kind: jserror.KindInternal, Message: err.Error()}
	}
	return nil
}
