/*
Package bytecode implements the portable container for compiled scripts.

# Format

A container is a self-describing, versioned byte buffer that can be stored,
transmitted and loaded into any runtime later:

	offset  size     field
	0       8        magic 0x89 'J' 'S' 'B' 'C' '\r' '\n' 0x1a
	8       4        format version (little endian)
	12      4        flags (bit 0: optimized)
	16      varint   url length, then url bytes
	        varint   uncompressed payload length
	        varint   compressed payload length, then zstd payload
	end-8   8        xxhash64 of every preceding byte (little endian)

The payload is engine-ready script text produced by the compiler package.
The engine keeps compiled programs in memory only, so the container carries
the transformed source and the runtime compiles it on load.

IsBytecode only checks the magic and version. Decode additionally validates
structure, checksum and compression and reports every failure as an
InvalidBytecode error.
*/
package bytecode
