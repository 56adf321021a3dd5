package records

import (
	"github.com/ssargent/espkit/pkg/codec"
	"github.com/ssargent/espkit/pkg/field"
	"github.com/ssargent/espkit/pkg/record"
)

// GLOBTag is the global variable record.
var GLOBTag = codec.TagOf("GLOB")

var (
	fnam = codec.TagOf("FNAM")
	fltv = codec.TagOf("FLTV")
)

// GlobalTypes is the FNAM type code of a global.
var GlobalTypes = codec.NewEnum("global type", map[uint8]string{
	's': "short",
	'l': "long",
	'f': "float",
})

// GLOB is a global variable. The value is always stored as a float.
type GLOB struct {
	Base
	Type  string  `json:"type"`
	Value float32 `json:"value"`
}

// DecodeGLOB decodes a global variable.
func DecodeGLOB(h record.Header, c *field.Cursor, ctx *Context) (Record, error) {
	base, err := newBase(h, ctx)
	if err != nil {
		return nil, err
	}
	g := &GLOB{Base: base}
	if g.EditorID, err = editorID(c); err != nil {
		return nil, err
	}
	kind, err := field.Parse(c, fnam, GlobalTypes.Of(codec.Uint8))
	if err != nil {
		return nil, err
	}
	g.Type = GlobalTypes.Name(kind)
	if g.Value, err = field.Parse(c, fltv, codec.Float32); err != nil {
		return nil, err
	}
	return finish(g, c)
}
