// Package id provides ULID generation for runtime and script identifiers.
//
// IDs are prefixed by their kind (rt_*, ps_*, pool_*) so log lines from
// several runtimes in one process stay readable, and they sort by creation
// time.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ============================================================================
// Type-Safe ID Wrappers
// ============================================================================

// RuntimeID identifies one engine instance
type RuntimeID string

// ScriptID identifies a prepared script
type ScriptID string

// PoolID identifies a runtime pool
type PoolID string

const (
	RuntimePrefix = "rt"
	ScriptPrefix  = "ps"
	PoolPrefix    = "pool"
)

// ============================================================================
// ULID Generator
// ============================================================================

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a new ULID generator
func NewGenerator() *Generator {
	return &Generator{
		entropy: rand.Reader,
	}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateString creates a new ULID as a string
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.GenerateString())
}

// NewRuntimeID generates a new runtime ID
func NewRuntimeID() RuntimeID {
	return RuntimeID(Default().GenerateWithPrefix(RuntimePrefix))
}

// NewScriptID generates a new prepared script ID
func NewScriptID() ScriptID {
	return ScriptID(Default().GenerateWithPrefix(ScriptPrefix))
}

// NewPoolID generates a new pool ID
func NewPoolID() PoolID {
	return PoolID(Default().GenerateWithPrefix(PoolPrefix))
}

func (id RuntimeID) String() string { return string(id) }
func (id ScriptID) String() string  { return string(id) }
func (id PoolID) String() string    { return string(id) }
