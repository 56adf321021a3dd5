package records

import (
	"github.com/ssargent/espkit/pkg/codec"
	"github.com/ssargent/espkit/pkg/field"
	"github.com/ssargent/espkit/pkg/record"
)

// KYWDTag is the keyword record.
var KYWDTag = codec.TagOf("KYWD")

// KYWD is a keyword.
type KYWD struct {
	Base
	Color *Color `json:"color,omitempty"`
}

// DecodeKYWD decodes a keyword.
func DecodeKYWD(h record.Header, c *field.Cursor, ctx *Context) (Record, error) {
	base, err := newBase(h, ctx)
	if err != nil {
		return nil, err
	}
	k := &KYWD{Base: base}
	if k.EditorID, err = editorID(c); err != nil {
		return nil, err
	}
	if k.Color, err = field.TryParsePtr(c, CNAM, codec.Struct[Color]); err != nil {
		return nil, err
	}
	return finish(k, c)
}
