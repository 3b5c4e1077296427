package engine

import (
	"math/big"
	"reflect"
	"strconv"

	"github.com/dop251/goja"

	"github.com/GriffinCanCode/jsbridge/jserror"
)

// Kind is the tag of a Value.
type Kind int

const (
	KindUndefined Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindObject
	KindBigInt
	KindSymbol
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindBigInt:
		return "bigint"
	case KindSymbol:
		return "symbol"
	default:
		return "unknown"
	}
}

// Value is any JavaScript value. Primitive undefined, null, boolean and
// number values are self-contained; the other kinds refer to the heap of
// the runtime that produced them and need that runtime to be inspected.
// The zero Value is undefined.
type Value struct {
	kind Kind
	b    bool
	n    float64
	ref  goja.Value
	bind binding
}

// Undefined returns the undefined value.
func Undefined() Value { return Value{kind: KindUndefined} }

// Null returns the null value.
func Null() Value { return Value{kind: KindNull} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number returns a number value.
func Number(f float64) Value { return Value{kind: KindNumber, n: f} }

func (v Value) Kind() Kind        { return v.kind }
func (v Value) IsUndefined() bool { return v.kind == KindUndefined }
func (v Value) IsNull() bool      { return v.kind == KindNull }
func (v Value) IsBool() bool      { return v.kind == KindBool }
func (v Value) IsNumber() bool    { return v.kind == KindNumber }
func (v Value) IsString() bool    { return v.kind == KindString }
func (v Value) IsObject() bool    { return v.kind == KindObject }
func (v Value) IsBigInt() bool    { return v.kind == KindBigInt }
func (v Value) IsSymbol() bool    { return v.kind == KindSymbol }

// AsBool returns the boolean. It panics unless IsBool.
func (v Value) AsBool() bool {
	if v.kind != KindBool {
		panic("engine: AsBool called on " + v.kind.String() + " value")
	}
	return v.b
}

// AsNumber returns the number. It panics unless IsNumber.
func (v Value) AsNumber() float64 {
	if v.kind != KindNumber {
		panic("engine: AsNumber called on " + v.kind.String() + " value")
	}
	return v.n
}

// AsString returns the string handle, or ok == false for other kinds.
func (v Value) AsString(rt *Runtime) (s String, ok bool, err error) {
	err = rt.run(jserror.OpAccess, func(*goja.Runtime) error {
		if v.kind != KindString {
			return nil
		}
		if err := rt.owns(v.bind); err != nil {
			return err
		}
		s, ok = String{v: v.ref, bind: v.bind}, true
		return nil
	})
	return s, ok, err
}

// AsObject returns the object handle, or ok == false for other kinds.
func (v Value) AsObject(rt *Runtime) (o Object, ok bool, err error) {
	err = rt.run(jserror.OpAccess, func(*goja.Runtime) error {
		if v.kind != KindObject {
			return nil
		}
		if err := rt.owns(v.bind); err != nil {
			return err
		}
		o, ok = Object{obj: v.ref.(*goja.Object), bind: v.bind}, true
		return nil
	})
	return o, ok, err
}

// AsArray returns the array handle when v is an array object.
func (v Value) AsArray(rt *Runtime) (Array, bool, error) {
	o, ok, err := v.AsObject(rt)
	if err != nil || !ok {
		return Array{}, false, err
	}
	return o.AsArray(rt)
}

// AsFunction returns the function handle when v is a callable object.
func (v Value) AsFunction(rt *Runtime) (Function, bool, error) {
	o, ok, err := v.AsObject(rt)
	if err != nil || !ok {
		return Function{}, false, err
	}
	return o.AsFunction(rt)
}

// AsBigInt returns the bigint handle, or ok == false for other kinds.
func (v Value) AsBigInt(rt *Runtime) (b BigInt, ok bool, err error) {
	err = rt.run(jserror.OpAccess, func(*goja.Runtime) error {
		if v.kind != KindBigInt {
			return nil
		}
		if err := rt.owns(v.bind); err != nil {
			return err
		}
		b, ok = BigInt{v: v.ref, bind: v.bind}, true
		return nil
	})
	return b, ok, err
}

// ToString converts v the way String(v) does in JavaScript.
func (v Value) ToString(rt *Runtime) (string, error) {
	var s string
	err := rt.run(jserror.OpAccess, func(vm *goja.Runtime) error {
		gv, err := rt.toEngine(vm, v)
		if err != nil {
			return err
		}
		s = gv.String()
		return nil
	})
	return s, err
}

// Export converts v to a plain Go value: nil, bool, int64 or float64,
// string, *big.Int, map[string]any or []any.
func (v Value) Export(rt *Runtime) (any, error) {
	var out any
	err := rt.run(jserror.OpAccess, func(vm *goja.Runtime) error {
		gv, err := rt.toEngine(vm, v)
		if err != nil {
			return err
		}
		out = gv.Export()
		return nil
	})
	return out, err
}

// String describes the kind and, for primitives, the content.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return strconv.FormatFloat(v.n, 'g', -1, 64)
	case KindUndefined, KindNull:
		return v.kind.String()
	default:
		return "[" + v.kind.String() + "]"
	}
}

var (
	typeBigInt = reflect.TypeOf((*big.Int)(nil))
)

// value wraps an engine value produced by the current generation. Callers
// hold busy.
func (r *Runtime) value(gv goja.Value) (Value, error) {
	if gv == nil || goja.IsUndefined(gv) {
		return Undefined(), nil
	}
	if goja.IsNull(gv) {
		return Null(), nil
	}
	switch gv.(type) {
	case *goja.Object:
		return Value{kind: KindObject, ref: gv, bind: r.bind()}, nil
	case *goja.Symbol:
		return Value{kind: KindSymbol, ref: gv, bind: r.bind()}, nil
	}

	t := gv.ExportType()
	switch {
	case t == nil:
		return Value{}, jserror.Internal("engine value %q has no export type", gv.String())
	case t == typeBigInt:
		return Value{kind: KindBigInt, ref: gv, bind: r.bind()}, nil
	}
	switch t.Kind() {
	case reflect.Bool:
		return Bool(gv.ToBoolean()), nil
	case reflect.Int, reflect.Int64, reflect.Float64:
		return Number(gv.ToFloat()), nil
	case reflect.String:
		return Value{kind: KindString, ref: gv, bind: r.bind()}, nil
	}
	return Value{}, jserror.Internal("unsupported engine value of type %s", t)
}

// toEngine converts v for use on r. Heap values must belong to r's current
// generation. Callers hold busy.
func (r *Runtime) toEngine(vm *goja.Runtime, v Value) (goja.Value, error) {
	switch v.kind {
	case KindUndefined:
		return goja.Undefined(), nil
	case KindNull:
		return goja.Null(), nil
	case KindBool:
		return vm.ToValue(v.b), nil
	case KindNumber:
		return vm.ToValue(v.n), nil
	}
	if err := r.owns(v.bind); err != nil {
		return nil, err
	}
	if v.ref == nil {
		return nil, jserror.Internal("%s value has no engine reference", v.kind)
	}
	return v.ref, nil
}

func (r *Runtime) toEngineAll(vm *goja.Runtime, args []Value) ([]goja.Value, error) {
	out := make([]goja.Value, len(args))
	for i, a := range args {
		gv, err := r.toEngine(vm, a)
		if err != nil {
			return nil, err
		}
		out[i] = gv
	}
	return out, nil
}
