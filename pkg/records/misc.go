package records

import (
	"github.com/ssargent/espkit/pkg/codec"
	"github.com/ssargent/espkit/pkg/field"
	"github.com/ssargent/espkit/pkg/formid"
	"github.com/ssargent/espkit/pkg/record"
)

// MISCTag is the miscellaneous item record.
var MISCTag = codec.TagOf("MISC")

// ItemData is the DATA field shared by simple inventory items.
type ItemData struct {
	Value  int32   `json:"value"`
	Weight float32 `json:"weight"`
}

// MISC is a miscellaneous inventory item.
type MISC struct {
	Base
	Bounds   Bounds         `json:"bounds"`
	Name     *codec.LString `json:"name,omitempty"`
	Model    *Model         `json:"model,omitempty"`
	Icon     string         `json:"icon,omitempty"`
	Keywords []formid.ID    `json:"keywords,omitempty"`
	Data     ItemData       `json:"data"`
}

// DecodeMISC decodes a miscellaneous item.
func DecodeMISC(h record.Header, c *field.Cursor, ctx *Context) (Record, error) {
	base, err := newBase(h, ctx)
	if err != nil {
		return nil, err
	}
	m := &MISC{Base: base}
	if m.EditorID, err = editorID(c); err != nil {
		return nil, err
	}
	if m.Bounds, err = field.Parse(c, OBND, codec.Struct[Bounds]); err != nil {
		return nil, err
	}
	if m.Name, err = field.TryParsePtr(c, FULL, ctx.LStrings()); err != nil {
		return nil, err
	}
	if m.Model, err = model(c); err != nil {
		return nil, err
	}
	if m.Icon, _, err = field.TryParse(c, ICON, codec.ZString); err != nil {
		return nil, err
	}
	if m.Keywords, err = keywords(c, ctx); err != nil {
		return nil, err
	}
	if m.Data, err = field.Parse(c, DATA, codec.Struct[ItemData]); err != nil {
		return nil, err
	}
	return finish(m, c)
}
