package engine

import (
	"github.com/dop251/goja"

	"github.com/GriffinCanCode/jsbridge/internal/monitoring"
	"github.com/GriffinCanCode/jsbridge/jserror"
)

// Function is a handle to a callable object. A call that throws returns an
// EvaluationError carrying the exception text.
type Function struct {
	obj  Object
	call goja.Callable
}

// Call invokes the function with an undefined receiver.
func (f Function) Call(rt *Runtime, args ...Value) (Value, error) {
	return f.invoke(rt, nil, args)
}

// CallWithThis invokes the function with this as the receiver.
func (f Function) CallWithThis(rt *Runtime, this Object, args ...Value) (Value, error) {
	return f.invoke(rt, &this, args)
}

// CallAsConstructor invokes the function as with new. The result is the
// constructed object unless the body returns a different object.
func (f Function) CallAsConstructor(rt *Runtime, args ...Value) (Value, error) {
	var out Value
	timer := monitoring.NewTimer(rt.metrics(), monitoring.ModeCall)
	err := rt.run(jserror.OpCall, func(vm *goja.Runtime) error {
		if err := rt.owns(f.obj.bind); err != nil {
			return err
		}
		gargs, err := rt.toEngineAll(vm, args)
		if err != nil {
			return err
		}
		obj, err := vm.New(f.obj.obj, gargs...)
		if err != nil {
			return err
		}
		out = rt.object(obj).ToValue()
		return nil
	})
	timer.Stop(status(err))
	return out, err
}

func (f Function) invoke(rt *Runtime, this *Object, args []Value) (Value, error) {
	var out Value
	timer := monitoring.NewTimer(rt.metrics(), monitoring.ModeCall)
	err := rt.run(jserror.OpCall, func(vm *goja.Runtime) error {
		if err := rt.owns(f.obj.bind); err != nil {
			return err
		}
		receiver := goja.Undefined()
		if this != nil {
			if err := rt.owns(this.bind); err != nil {
				return err
			}
			receiver = this.obj
		}
		gargs, err := rt.toEngineAll(vm, args)
		if err != nil {
			return err
		}
		res, err := f.call(receiver, gargs...)
		if err != nil {
			return err
		}
		out, err = rt.value(res)
		return err
	})
	timer.Stop(status(err))
	return out, err
}

// Object returns the function as an object.
func (f Function) Object() Object {
	return f.obj
}

// ToValue returns the function as a Value.
func (f Function) ToValue() Value {
	return f.obj.ToValue()
}
