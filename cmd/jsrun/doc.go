// Package main is the jsrun command-line tool.
//
// jsrun evaluates JavaScript through the engine package, compiles scripts to
// the portable bytecode container and checks sources against a runtime
// configuration's feature set.
//
// Commands:
//   - eval <expr>: evaluate an expression and print its string form
//   - run <file>...: evaluate source or bytecode files, several files run on a pool
//   - compile [-O] [-out dir] <glob>...: write a .jsbc file per matched script
//   - prepare [-n N] <file>: prepare once and evaluate N times across a pool
//   - check <file>: report syntax and feature errors without evaluating
//
// Configuration:
//   - Environment variables (JSRT_*)
//   - A YAML, TOML or JSON file via -config
//   - CLI flags (override both)
//
// Usage:
//
//	jsrun eval '1 + 2'
//	jsrun -config jsrun.yaml run main.js
//	jsrun compile -O -out build 'src/**/*.js'
//	jsrun -dev prepare -n 8 bench.js
package main
