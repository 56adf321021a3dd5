package records

import (
	"github.com/ssargent/espkit/pkg/codec"
	"github.com/ssargent/espkit/pkg/field"
	"github.com/ssargent/espkit/pkg/record"
)

// GMSTTag is the game setting record.
var GMSTTag = codec.TagOf("GMST")

// SettingTypes maps the first letter of a setting's editor ID to the type
// of its DATA field.
var SettingTypes = codec.NewEnum("game setting type", map[byte]string{
	'b': "bool",
	'i': "int",
	'u': "uint",
	'f': "float",
	's': "string",
})

// GMST is a game setting. Value holds a bool, int32, uint32, float32 or
// codec.LString according to the editor ID prefix.
type GMST struct {
	Base
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// DecodeGMST decodes a game setting.
func DecodeGMST(h record.Header, c *field.Cursor, ctx *Context) (Record, error) {
	base, err := newBase(h, ctx)
	if err != nil {
		return nil, err
	}
	g := &GMST{Base: base}
	if g.EditorID, err = editorID(c); err != nil {
		return nil, err
	}

	var prefix byte
	if g.EditorID != "" {
		prefix = g.EditorID[0]
	}
	if _, err := SettingTypes.Check(prefix); err != nil {
		return nil, err
	}
	g.Type = SettingTypes.Name(prefix)

	switch prefix {
	case 'b':
		v, err := field.Parse(c, DATA, codec.Uint32)
		if err != nil {
			return nil, err
		}
		g.Value = v != 0
	case 'i':
		g.Value, err = field.Parse(c, DATA, codec.Int32)
	case 'u':
		g.Value, err = field.Parse(c, DATA, codec.Uint32)
	case 'f':
		g.Value, err = field.Parse(c, DATA, codec.Float32)
	case 's':
		g.Value, err = field.Parse(c, DATA, ctx.LStrings())
	}
	if err != nil {
		return nil, err
	}
	return finish(g, c)
}
