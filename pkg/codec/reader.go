package codec

import (
	"encoding/binary"
	"math"
)

// Reader is a bounds-checked sequential reader over an immutable byte slice.
// Every read goes through ReadExact, so the position only ever moves forward
// by whole successful reads.
type Reader struct {
	data []byte
	pos  int
}

// NewReader returns a Reader positioned at the start of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// ReadExact returns the next n bytes and advances past them. The returned
// slice aliases the underlying buffer.
func (r *Reader) ReadExact(n int) ([]byte, error) {
	if n < 0 || n > r.Remaining() {
		return nil, &Error{Kind: KindUnexpectedEOF, Want: n, Have: r.Remaining()}
	}
	b := r.data[r.pos : r.pos+n : r.pos+n]
	r.pos += n
	return b, nil
}

// Skip advances n bytes.
func (r *Reader) Skip(n int) error {
	_, err := r.ReadExact(n)
	return err
}

// Unread returns the bytes not yet consumed without advancing.
func (r *Reader) Unread() []byte {
	return r.data[r.pos:]
}

// Rest consumes and returns every remaining byte.
func (r *Reader) Rest() []byte {
	b, _ := r.ReadExact(r.Remaining())
	return b
}

// Remaining reports how many bytes are left.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// Offset reports the current position from the start of the buffer.
func (r *Reader) Offset() int {
	return r.pos
}

// AssertExhausted fails with ExtraBytes when the reader is not at the end.
func (r *Reader) AssertExhausted() error {
	if n := r.Remaining(); n != 0 {
		return ExtraBytes(n)
	}
	return nil
}

func (r *Reader) U8() (uint8, error) {
	b, err := r.ReadExact(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) I8() (int8, error) {
	v, err := r.U8()
	return int8(v), err
}

func (r *Reader) U16() (uint16, error) {
	b, err := r.ReadExact(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *Reader) I16() (int16, error) {
	v, err := r.U16()
	return int16(v), err
}

func (r *Reader) U32() (uint32, error) {
	b, err := r.ReadExact(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *Reader) I32() (int32, error) {
	v, err := r.U32()
	return int32(v), err
}

func (r *Reader) U64() (uint64, error) {
	b, err := r.ReadExact(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *Reader) I64() (int64, error) {
	v, err := r.U64()
	return int64(v), err
}

func (r *Reader) F32() (float32, error) {
	v, err := r.U32()
	return math.Float32frombits(v), err
}

func (r *Reader) F64() (float64, error) {
	v, err := r.U64()
	return math.Float64frombits(v), err
}

// Tag reads a four byte type code.
func (r *Reader) Tag() (Tag, error) {
	var t Tag
	b, err := r.ReadExact(4)
	if err != nil {
		return t, err
	}
	copy(t[:], b)
	return t, nil
}
