package engine

import (
	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/console"
	"github.com/dop251/goja_nodejs/require"
	"go.uber.org/zap"
)

// consolePrinter routes console output to the runtime logger.
type consolePrinter struct {
	log *zap.Logger
}

func (p consolePrinter) Log(s string)   { p.log.Info(s) }
func (p consolePrinter) Warn(s string)  { p.log.Warn(s) }
func (p consolePrinter) Error(s string) { p.log.Error(s) }

// enableConsole installs console without leaving a require global behind.
func enableConsole(vm *goja.Runtime, logger *zap.Logger) error {
	registry := require.NewRegistry()
	registry.RegisterNativeModule(console.ModuleName, console.RequireWithPrinter(consolePrinter{log: logger.Named("console")}))
	registry.Enable(vm)

	if err := vm.Set("console", require.Require(vm, console.ModuleName)); err != nil {
		return err
	}
	return vm.GlobalObject().Delete("require")
}
