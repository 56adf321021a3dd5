package codec

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

// Decoder pulls one value of type T from a Reader.
type Decoder[T any] func(r *Reader) (T, error)

// Encoder appends one value of type T to a Writer.
type Encoder[T any] func(w *Writer, v T)

// Decode runs dec over b and requires it to consume every byte.
func Decode[T any](b []byte, dec Decoder[T]) (T, error) {
	r := NewReader(b)
	v, err := dec(r)
	if err != nil {
		var zero T
		return zero, err
	}
	if err := r.AssertExhausted(); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// Encode runs enc into a fresh buffer.
func Encode[T any](v T, enc Encoder[T]) []byte {
	w := NewWriter()
	enc(w, v)
	return w.Bytes()
}

func Uint8(r *Reader) (uint8, error)     { return r.U8() }
func Uint16(r *Reader) (uint16, error)   { return r.U16() }
func Uint32(r *Reader) (uint32, error)   { return r.U32() }
func Uint64(r *Reader) (uint64, error)   { return r.U64() }
func Int8(r *Reader) (int8, error)       { return r.I8() }
func Int16(r *Reader) (int16, error)     { return r.I16() }
func Int32(r *Reader) (int32, error)     { return r.I32() }
func Float32(r *Reader) (float32, error) { return r.F32() }

// Bytes captures the rest of the field as an opaque blob.
func Bytes(r *Reader) ([]byte, error) {
	return r.Rest(), nil
}

func PutUint8(w *Writer, v uint8)     { w.U8(v) }
func PutUint16(w *Writer, v uint16)   { w.U16(v) }
func PutUint32(w *Writer, v uint32)   { w.U32(v) }
func PutUint64(w *Writer, v uint64)   { w.U64(v) }
func PutInt32(w *Writer, v int32)     { w.I32(v) }
func PutFloat32(w *Writer, v float32) { w.F32(v) }
func PutBytes(w *Writer, v []byte)    { w.Write(v) }

// Struct decodes a fixed-size struct of little-endian primitives in field
// order. Reserved bytes belong in named [N]byte fields so they survive a
// round trip.
func Struct[T any](r *Reader) (T, error) {
	var v T
	n := binary.Size(v)
	if n < 0 {
		return v, errors.Errorf("codec: %T is not fixed size", v)
	}
	b, err := r.ReadExact(n)
	if err != nil {
		return v, err
	}
	if err := binary.Read(bytes.NewReader(b), binary.LittleEndian, &v); err != nil {
		return v, errors.Wrapf(err, "codec: decode %T", v)
	}
	return v, nil
}

// PutStruct is the inverse of Struct.
func PutStruct[T any](w *Writer, v T) {
	var buf bytes.Buffer
	// Writing a fixed-size value into a bytes.Buffer cannot fail.
	_ = binary.Write(&buf, binary.LittleEndian, v)
	w.Write(buf.Bytes())
}
