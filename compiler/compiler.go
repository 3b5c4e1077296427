// Package compiler turns script source into the portable bytecode container.
//
// Source passes through esbuild, which rejects syntax the target runtime has
// switched off (generators) and strips whitespace when optimization is
// requested. The result is then checked by the engine's own compiler so that
// a container never holds source the engine cannot load.
package compiler

import (
	"fmt"
	"strings"

	"github.com/dop251/goja"
	"github.com/evanw/esbuild/pkg/api"

	"github.com/GriffinCanCode/jsbridge/bytecode"
	"github.com/GriffinCanCode/jsbridge/jserror"
)

// DefaultURL names compiled units that were given no url.
const DefaultURL = "bundle"

// Features lists the syntax a target runtime accepts.
type Features struct {
	Generators bool
}

// DefaultFeatures enables everything.
func DefaultFeatures() Features {
	return Features{Generators: true}
}

// Gated reports whether any syntax is switched off.
func (f Features) Gated() bool {
	return !f.Generators
}

func (f Features) supported() map[string]bool {
	if !f.Gated() {
		return nil
	}
	return map[string]bool{
		"generator":       false,
		"async-generator": false,
	}
}

// Message is one diagnostic reported by the transform.
type Message struct {
	Text     string
	Line     int
	Column   int
	LineText string
}

// SyntaxError reports source the transform rejected.
type SyntaxError struct {
	URL      string
	Messages []Message
}

func (e *SyntaxError) Error() string {
	parts := make([]string, 0, len(e.Messages))
	for _, m := range e.Messages {
		if m.Line > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d:%d: %s", e.URL, m.Line, m.Column, m.Text))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %s", e.URL, m.Text))
		}
	}
	return "SyntaxError: " + strings.Join(parts, "; ")
}

// Transform runs source through esbuild for the given features. With
// optimize set whitespace and comments are stripped. Syntax and identifier
// minification stay off: they drop side-effect-free expression statements,
// which carry the completion value, and rename functions.
func Transform(source, url string, optimize bool, features Features) (string, error) {
	result := api.Transform(source, api.TransformOptions{
		Loader:           api.LoaderJS,
		Sourcefile:       url,
		Target:           api.ESNext,
		Supported:        features.supported(),
		MinifyWhitespace: optimize,
		LegalComments:    api.LegalCommentsNone,
		LogLevel:         api.LogLevelSilent,
	})
	if len(result.Errors) > 0 {
		return "", newSyntaxError(url, result.Errors)
	}
	return string(result.Code), nil
}

// Check rejects source that uses switched-off syntax without producing
// output. It is a no-op when nothing is gated.
func Check(source, url string, features Features) error {
	if !features.Gated() {
		return nil
	}
	_, err := Transform(source, url, false, features)
	return err
}

func newSyntaxError(url string, msgs []api.Message) *SyntaxError {
	e := &SyntaxError{URL: url, Messages: make([]Message, 0, len(msgs))}
	for _, m := range msgs {
		msg := Message{Text: m.Text}
		if m.Location != nil {
			msg.Line = m.Location.Line
			msg.Column = m.Location.Column
			msg.LineText = m.Location.LineText
		}
		e.Messages = append(e.Messages, msg)
	}
	return e
}

// Option configures Compile.
type Option func(*options)

type options struct {
	features Features
}

// WithFeatures compiles for a runtime with the given syntax support.
func WithFeatures(f Features) Option {
	return func(o *options) {
		o.features = f
	}
}

// Compile produces a bytecode container for source. It needs no runtime.
// Every failure is a compilation error.
func Compile(source, url string, optimize bool, opts ...Option) (*bytecode.Bytecode, error) {
	o := &options{features: DefaultFeatures()}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if url == "" {
		url = DefaultURL
	}

	code, err := Transform(source, url, optimize, o.features)
	if err != nil {
		return nil, jserror.Translate(jserror.OpCompile, err)
	}
	if _, err := goja.Compile(url, code, false); err != nil {
		return nil, jserror.Translate(jserror.OpCompile, err)
	}

	bc, err := bytecode.Encode(bytecode.Module{URL: url, Source: code, Optimized: optimize})
	if err != nil {
		return nil, jserror.Translate(jserror.OpCompile, err)
	}
	return bc, nil
}
