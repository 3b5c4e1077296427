package engine

import (
	"github.com/dop251/goja"

	"github.com/GriffinCanCode/jsbridge/internal/shared/utils"
	"github.com/GriffinCanCode/jsbridge/jserror"
)

// String is a handle to a JavaScript string.
type String struct {
	v    goja.Value
	bind binding
}

// NewString copies s into the engine. s must be valid UTF-8.
func (r *Runtime) NewString(s string) (String, error) {
	var out String
	err := r.run(jserror.OpAccess, func(vm *goja.Runtime) error {
		if err := utils.ValidateText(s, "string"); err != nil {
			return &jserror.Error{Kind: jserror.KindInternal, Message: err.Error()}
		}
		out = String{v: vm.ToValue(s), bind: r.bind()}
		return nil
	})
	return out, err
}

// Value copies the string back to the host.
func (s String) Value(rt *Runtime) (string, error) {
	var out string
	err := rt.run(jserror.OpAccess, func(*goja.Runtime) error {
		if err := rt.owns(s.bind); err != nil {
			return err
		}
		out = s.v.String()
		return nil
	})
	return out, err
}

// ToValue returns the string as a Value.
func (s String) ToValue() Value {
	return Value{kind: KindString, ref: s.v, bind: s.bind}
}
