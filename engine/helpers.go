package engine

import (
	"fmt"

	"github.com/dop251/goja"
)

// helperSource is evaluated once per engine before any caller code runs, so
// the captured builtins cannot be replaced by scripts afterwards.
const helperSource = `(function () {
	return {
		has: function (o, k) { return k in o; },
		keys: function (o) {
			var r = [];
			for (var k in o) {
				r.push(k);
			}
			return r;
		},
		isArray: Array.isArray,
		newArray: function (n) { return new Array(n); },
		bigint: typeof BigInt === "function" ? BigInt : undefined,
	};
})()`

type helpers struct {
	has      goja.Callable
	keys     goja.Callable
	isArray  goja.Callable
	newArray goja.Callable
	bigint   goja.Callable // nil when the engine lacks BigInt
}

func newHelpers(vm *goja.Runtime) (*helpers, error) {
	v, err := vm.RunString(helperSource)
	if err != nil {
		return nil, fmt.Errorf("install helpers: %w", err)
	}
	obj := v.ToObject(vm)

	h := &helpers{}
	required := []struct {
		name string
		dst  *goja.Callable
	}{
		{"has", &h.has},
		{"keys", &h.keys},
		{"isArray", &h.isArray},
		{"newArray", &h.newArray},
	}
	for _, r := range required {
		fn, ok := goja.AssertFunction(obj.Get(r.name))
		if !ok {
			return nil, fmt.Errorf("install helpers: %s is not a function", r.name)
		}
		*r.dst = fn
	}
	if fn, ok := goja.AssertFunction(obj.Get("bigint")); ok {
		h.bigint = fn
	}
	return h, nil
}
