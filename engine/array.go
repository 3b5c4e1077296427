package engine

import (
	"strconv"

	"github.com/dop251/goja"

	"github.com/GriffinCanCode/jsbridge/jserror"
)

// Array is a handle to a JavaScript array.
//
// Reads past the end yield undefined as they do in JavaScript, but writes
// past the end fail: Set never grows the array.
type Array struct {
	obj Object
}

// NewArray creates an array of length n with every slot empty.
func (r *Runtime) NewArray(n int) (Array, error) {
	var arr Array
	err := r.run(jserror.OpAccess, func(vm *goja.Runtime) error {
		if n < 0 {
			return jserror.Evaluation("invalid array length %d", n)
		}
		res, err := r.helpers.newArray(goja.Undefined(), vm.ToValue(n))
		if err != nil {
			return err
		}
		arr = Array{obj: r.object(res.ToObject(vm))}
		return nil
	})
	return arr, err
}

// NewArrayFrom creates an array holding values.
func (r *Runtime) NewArrayFrom(values ...Value) (Array, error) {
	var arr Array
	err := r.run(jserror.OpAccess, func(vm *goja.Runtime) error {
		items, err := r.toEngineAll(vm, values)
		if err != nil {
			return err
		}
		elems := make([]any, len(items))
		for i, it := range items {
			elems[i] = it
		}
		arr = Array{obj: r.object(vm.NewArray(elems...))}
		return nil
	})
	return arr, err
}

// Len returns the length property.
func (a Array) Len(rt *Runtime) (int, error) {
	var n int
	err := rt.run(jserror.OpAccess, func(*goja.Runtime) error {
		if err := rt.owns(a.obj.bind); err != nil {
			return err
		}
		n = a.length()
		return nil
	})
	return n, err
}

// Get reads element i. An index outside the array reads as undefined.
func (a Array) Get(rt *Runtime, i int) (Value, error) {
	var out Value
	err := rt.run(jserror.OpAccess, func(*goja.Runtime) error {
		if err := rt.owns(a.obj.bind); err != nil {
			return err
		}
		if i < 0 || i >= a.length() {
			out = Undefined()
			return nil
		}
		var err error
		out, err = rt.value(a.obj.obj.Get(strconv.Itoa(i)))
		return err
	})
	return out, err
}

// Set writes element i, which must be below Len.
func (a Array) Set(rt *Runtime, i int, v Value) error {
	return rt.run(jserror.OpAccess, func(vm *goja.Runtime) error {
		if err := rt.owns(a.obj.bind); err != nil {
			return err
		}
		if n := a.length(); i < 0 || i >= n {
			return jserror.Evaluation("array index %d out of bounds for length %d", i, n)
		}
		gv, err := rt.toEngine(vm, v)
		if err != nil {
			return err
		}
		return a.obj.obj.Set(strconv.Itoa(i), gv)
	})
}

// Object returns the array as an object.
func (a Array) Object() Object {
	return a.obj
}

// ToValue returns the array as a Value.
func (a Array) ToValue() Value {
	return a.obj.ToValue()
}

func (a Array) length() int {
	return int(a.obj.obj.Get("length").ToInteger())
}
