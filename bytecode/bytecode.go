package bytecode

import (
	"bytes"
	"encoding/binary"
	"io"
)

// Version is the container format version written by Encode.
const Version uint32 = 1

const (
	// HeaderSize covers magic, version and flags.
	HeaderSize   = 16
	checksumSize = 8
	minSize      = HeaderSize + 3 + checksumSize
)

// Magic opens every container.
var Magic = [8]byte{0x89, 'J', 'S', 'B', 'C', '\r', '\n', 0x1a}

// Flags describe how a payload was produced.
type Flags uint32

const (
	FlagOptimized Flags = 1 << iota
)

// IsBytecode reports whether data carries the container magic and a
// supported version. It is pure and never fails.
func IsBytecode(data []byte) bool {
	if len(data) < minSize {
		return false
	}
	if !bytes.Equal(data[:len(Magic)], Magic[:]) {
		return false
	}
	return binary.LittleEndian.Uint32(data[8:12]) == Version
}

// Bytecode is an immutable compiled container.
type Bytecode struct {
	data []byte
}

// New wraps a copy of data without validating it. Loading an invalid buffer
// fails later with an InvalidBytecode error.
func New(data []byte) *Bytecode {
	return &Bytecode{data: bytes.Clone(data)}
}

// Parse wraps a copy of data after the format check.
func Parse(data []byte) (*Bytecode, error) {
	if !IsBytecode(data) {
		return nil, errNotBytecode(data)
	}
	return New(data), nil
}

// Bytes returns a copy of the container bytes.
func (b *Bytecode) Bytes() []byte {
	if b == nil {
		return nil
	}
	return bytes.Clone(b.data)
}

// Len returns the container size in bytes.
func (b *Bytecode) Len() int {
	if b == nil {
		return 0
	}
	return len(b.data)
}

// Valid reports whether the container passes the format check.
func (b *Bytecode) Valid() bool {
	return b != nil && IsBytecode(b.data)
}

// Flags returns the header flags, or zero for an invalid container.
func (b *Bytecode) Flags() Flags {
	if !b.Valid() {
		return 0
	}
	return Flags(binary.LittleEndian.Uint32(b.data[12:16]))
}

// Optimized reports whether the payload was minified.
func (b *Bytecode) Optimized() bool {
	return b.Flags()&FlagOptimized != 0
}

// WriteTo writes the container bytes to w.
func (b *Bytecode) WriteTo(w io.Writer) (int64, error) {
	if b == nil {
		return 0, nil
	}
	n, err := w.Write(b.data)
	return int64(n), err
}
