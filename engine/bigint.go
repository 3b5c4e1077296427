package engine

import (
	"math/big"
	"strconv"

	"github.com/dop251/goja"

	"github.com/GriffinCanCode/jsbridge/jserror"
)

// BigInt is a handle to a JavaScript bigint.
type BigInt struct {
	v    goja.Value
	bind binding
}

// BigIntFromInt64 creates a bigint holding x.
func (r *Runtime) BigIntFromInt64(x int64) (BigInt, error) {
	return r.newBigInt(strconv.FormatInt(x, 10))
}

// BigIntFromUint64 creates a bigint holding x.
func (r *Runtime) BigIntFromUint64(x uint64) (BigInt, error) {
	return r.newBigInt(strconv.FormatUint(x, 10))
}

func (r *Runtime) newBigInt(decimal string) (BigInt, error) {
	var out BigInt
	err := r.run(jserror.OpAccess, func(vm *goja.Runtime) error {
		if r.helpers.bigint == nil {
			return jserror.Internal("engine has no BigInt support")
		}
		res, err := r.helpers.bigint(goja.Undefined(), vm.ToValue(decimal))
		if err != nil {
			return err
		}
		if res.ExportType() != typeBigInt {
			return jserror.Internal("BigInt(%s) did not produce a bigint", decimal)
		}
		out = BigInt{v: res, bind: r.bind()}
		return nil
	})
	return out, err
}

// AsString formats the bigint in radix, which must be within [2, 36].
// Digits above 9 are lowercase and negative values carry a leading '-'.
func (b BigInt) AsString(rt *Runtime, radix int) (String, error) {
	var out String
	err := rt.run(jserror.OpAccess, func(vm *goja.Runtime) error {
		n, err := b.big(rt)
		if err != nil {
			return err
		}
		if radix < 2 || radix > 36 {
			return jserror.Evaluation("radix %d out of range [2, 36]", radix)
		}
		out = String{v: vm.ToValue(n.Text(radix)), bind: rt.bind()}
		return nil
	})
	return out, err
}

// Int64 returns the value when it fits in an int64.
func (b BigInt) Int64(rt *Runtime) (x int64, ok bool, err error) {
	err = rt.run(jserror.OpAccess, func(*goja.Runtime) error {
		n, err := b.big(rt)
		if err != nil {
			return err
		}
		if n.IsInt64() {
			x, ok = n.Int64(), true
		}
		return nil
	})
	return x, ok, err
}

// Uint64 returns the value when it fits in a uint64.
func (b BigInt) Uint64(rt *Runtime) (x uint64, ok bool, err error) {
	err = rt.run(jserror.OpAccess, func(*goja.Runtime) error {
		n, err := b.big(rt)
		if err != nil {
			return err
		}
		if n.IsUint64() {
			x, ok = n.Uint64(), true
		}
		return nil
	})
	return x, ok, err
}

// ToValue returns the bigint as a Value.
func (b BigInt) ToValue() Value {
	return Value{kind: KindBigInt, ref: b.v, bind: b.bind}
}

func (b BigInt) big(rt *Runtime) (*big.Int, error) {
	if err := rt.owns(b.bind); err != nil {
		return nil, err
	}
	n, ok := b.v.Export().(*big.Int)
	if !ok {
		return nil, jserror.Internal("bigint handle exported %T", b.v.Export())
	}
	return n, nil
}
