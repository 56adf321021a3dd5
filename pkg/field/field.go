// Package field implements the ordered field cursor every record decoder is
// written against.
//
// A record payload is a flat sequence of fields, each a four byte tag, a
// uint16 length and exactly that many payload bytes. Decoders pull fields in
// the order the format lays them out with Parse (required), TryParse
// (optional) and ParseMany (repeated, contiguous), then finish with
// AssertDone so that anything the decoder did not understand is reported
// instead of silently dropped.
package field

import (
	"github.com/ssargent/espkit/pkg/codec"
)

// HeaderSize is the size of a field's tag and length prefix.
const HeaderSize = 6

// XXXX carries the 32-bit length of a following field whose payload does not
// fit in the 16-bit length prefix.
var XXXX = codec.TagOf("XXXX")

// Field is one tagged chunk of a record payload.
type Field struct {
	Tag     codec.Tag
	Payload []byte
}

// read decodes the field at the reader's position, folding an XXXX prefix
// into the field it sizes.
func read(r *codec.Reader) (Field, error) {
	tag, err := r.Tag()
	if err != nil {
		return Field{}, err
	}
	size, err := r.U16()
	if err != nil {
		return Field{}, err
	}
	if tag == XXXX && size == 4 {
		large, err := r.U32()
		if err != nil {
			return Field{}, err
		}
		if tag, err = r.Tag(); err != nil {
			return Field{}, err
		}
		if _, err := r.U16(); err != nil {
			return Field{}, err
		}
		payload, err := r.ReadExact(int(large))
		if err != nil {
			return Field{}, err
		}
		return Field{Tag: tag, Payload: payload}, nil
	}
	payload, err := r.ReadExact(int(size))
	if err != nil {
		return Field{}, err
	}
	return Field{Tag: tag, Payload: payload}, nil
}

// Append encodes a field onto w, emitting an XXXX prefix when the payload
// exceeds the 16-bit length.
func Append(w *codec.Writer, tag codec.Tag, payload []byte) {
	if len(payload) > 0xFFFF {
		w.Tag(XXXX)
		w.U16(4)
		w.U32(uint32(len(payload)))
		w.Tag(tag)
		w.U16(0)
		w.Write(payload)
		return
	}
	w.Tag(tag)
	w.U16(uint16(len(payload)))
	w.Write(payload)
}

// Put encodes v with enc and appends it as a field.
func Put[T any](w *codec.Writer, tag codec.Tag, enc codec.Encoder[T], v T) {
	Append(w, tag, codec.Encode(v, enc))
}
