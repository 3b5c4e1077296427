package bytecode

import (
	"encoding/binary"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/GriffinCanCode/jsbridge/jserror"
)

// maxPayload bounds decompression of untrusted containers.
const maxPayload = 256 << 20

// Module is the decoded content of a container.
type Module struct {
	URL       string
	Source    string
	Optimized bool
}

var (
	encoderOnce sync.Once
	encoder     *zstd.Encoder
	encoderErr  error

	decoderOnce sync.Once
	decoder     *zstd.Decoder
	decoderErr  error
)

func getEncoder() (*zstd.Encoder, error) {
	encoderOnce.Do(func() {
		encoder, encoderErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	})
	return encoder, encoderErr
}

func getDecoder() (*zstd.Decoder, error) {
	decoderOnce.Do(func() {
		decoder, decoderErr = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxPayload))
	})
	return decoder, decoderErr
}

// Encode serializes m into a new container.
func Encode(m Module) (*Bytecode, error) {
	enc, err := getEncoder()
	if err != nil {
		return nil, jserror.Internal("zstd encoder: %v", err)
	}

	var flags Flags
	if m.Optimized {
		flags |= FlagOptimized
	}

	payload := enc.EncodeAll([]byte(m.Source), nil)

	buf := make([]byte, 0, HeaderSize+len(m.URL)+len(payload)+3*binary.MaxVarintLen64+checksumSize)
	buf = append(buf, Magic[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, Version)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(flags))
	buf = binary.AppendUvarint(buf, uint64(len(m.URL)))
	buf = append(buf, m.URL...)
	buf = binary.AppendUvarint(buf, uint64(len(m.Source)))
	buf = binary.AppendUvarint(buf, uint64(len(payload)))
	buf = append(buf, payload...)
	buf = binary.LittleEndian.AppendUint64(buf, xxhash.Sum64(buf))

	return &Bytecode{data: buf}, nil
}

// Decode validates b and returns its module.
func Decode(b *Bytecode) (*Module, error) {
	if b == nil || !IsBytecode(b.data) {
		var data []byte
		if b != nil {
			data = b.data
		}
		return nil, errNotBytecode(data)
	}

	data := b.data
	body, sum := data[:len(data)-checksumSize], data[len(data)-checksumSize:]
	if xxhash.Sum64(body) != binary.LittleEndian.Uint64(sum) {
		return nil, jserror.InvalidBytecode("bytecode checksum mismatch")
	}

	r := reader{buf: body, off: HeaderSize}
	url, err := r.bytes("url")
	if err != nil {
		return nil, err
	}
	rawLen, err := r.uvarint("payload length")
	if err != nil {
		return nil, err
	}
	if rawLen > maxPayload {
		return nil, jserror.InvalidBytecode("bytecode payload of %d bytes exceeds limit", rawLen)
	}
	compressed, err := r.bytes("payload")
	if err != nil {
		return nil, err
	}
	if r.off != len(body) {
		return nil, jserror.InvalidBytecode("bytecode has %d trailing bytes", len(body)-r.off)
	}

	dec, err := getDecoder()
	if err != nil {
		return nil, jserror.Internal("zstd decoder: %v", err)
	}
	source, err := dec.DecodeAll(compressed, make([]byte, 0, rawLen))
	if err != nil {
		return nil, jserror.InvalidBytecode("bytecode payload: %v", err)
	}
	if uint64(len(source)) != rawLen {
		return nil, jserror.InvalidBytecode("bytecode payload length %d, header says %d", len(source), rawLen)
	}

	return &Module{
		URL:       string(url),
		Source:    string(source),
		Optimized: Flags(binary.LittleEndian.Uint32(data[12:16]))&FlagOptimized != 0,
	}, nil
}

func errNotBytecode(data []byte) *jserror.Error {
	switch {
	case len(data) < minSize:
		return jserror.InvalidBytecode("buffer of %d bytes is too short for bytecode", len(data))
	case binary.LittleEndian.Uint32(data[8:12]) != Version && [8]byte(data[:8]) == Magic:
		return jserror.InvalidBytecode("unsupported bytecode version %d", binary.LittleEndian.Uint32(data[8:12]))
	default:
		return jserror.InvalidBytecode("missing bytecode magic")
	}
}

type reader struct {
	buf []byte
	off int
}

func (r *reader) uvarint(field string) (uint64, error) {
	v, n := binary.Uvarint(r.buf[r.off:])
	if n <= 0 {
		return 0, jserror.InvalidBytecode("truncated bytecode reading %s", field)
	}
	r.off += n
	return v, nil
}

func (r *reader) bytes(field string) ([]byte, error) {
	n, err := r.uvarint(field)
	if err != nil {
		return nil, err
	}
	if n > uint64(len(r.buf)-r.off) {
		return nil, jserror.InvalidBytecode("truncated bytecode reading %s", field)
	}
	out := r.buf[r.off : r.off+int(n)]
	r.off += int(n)
	return out, nil
}
