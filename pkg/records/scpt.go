package records

import (
	"github.com/ssargent/espkit/pkg/codec"
	"github.com/ssargent/espkit/pkg/field"
	"github.com/ssargent/espkit/pkg/formid"
	"github.com/ssargent/espkit/pkg/record"
)

// SCPTTag is the compiled script record.
var SCPTTag = codec.TagOf("SCPT")

var (
	schr = codec.TagOf("SCHR")
	scda = codec.TagOf("SCDA")
	sctx = codec.TagOf("SCTX")
	slsd = codec.TagOf("SLSD")
	scvr = codec.TagOf("SCVR")
	scro = codec.TagOf("SCRO")
	scrv = codec.TagOf("SCRV")
)

// ScriptTypes is the SCHR script type.
var ScriptTypes = codec.NewEnum("script type", map[uint16]string{
	0x000: "object",
	0x001: "quest",
	0x100: "magic_effect",
})

// ScriptHeader is the SCHR field.
type ScriptHeader struct {
	Unused        [4]byte `json:"-"`
	RefCount      uint32  `json:"ref_count"`
	CompiledSize  uint32  `json:"compiled_size"`
	VariableCount uint32  `json:"variable_count"`
	Type          uint16  `json:"type"`
	Flags         uint16  `json:"flags"`
}

// LocalVariable is the SLSD field of a script local.
type LocalVariable struct {
	Index   uint32   `json:"index"`
	Unused1 [12]byte `json:"-"`
	Flags   uint8    `json:"flags"`
	Unused2 [7]byte  `json:"-"`
}

// ScriptVariable pairs an SLSD with its SCVR name.
type ScriptVariable struct {
	LocalVariable
	Name string `json:"name"`
}

// ScriptRef is one entry of the reference list: either an object (SCRO) or
// a local variable index (SCRV).
type ScriptRef struct {
	Object   *formid.ID `json:"object,omitempty"`
	Variable *uint32    `json:"variable,omitempty"`
}

// SCPT is a compiled script. The bytecode is kept as an opaque blob.
type SCPT struct {
	Base
	Script     ScriptHeader     `json:"script"`
	Bytecode   []byte           `json:"bytecode"`
	Source     string           `json:"source,omitempty"`
	Variables  []ScriptVariable `json:"variables,omitempty"`
	References []ScriptRef      `json:"references,omitempty"`
}

// DecodeSCPT decodes a compiled script.
func DecodeSCPT(h record.Header, c *field.Cursor, ctx *Context) (Record, error) {
	base, err := newBase(h, ctx)
	if err != nil {
		return nil, err
	}
	s := &SCPT{Base: base}
	if s.EditorID, err = editorID(c); err != nil {
		return nil, err
	}
	if s.Script, err = field.Parse(c, schr, codec.Struct[ScriptHeader]); err != nil {
		return nil, err
	}
	if _, err := ScriptTypes.Check(s.Script.Type); err != nil {
		return nil, err
	}
	if s.Bytecode, err = field.Parse(c, scda, codec.Bytes); err != nil {
		return nil, err
	}
	if n := len(s.Bytecode); n != int(s.Script.CompiledSize) {
		if n > int(s.Script.CompiledSize) {
			return nil, &codec.Error{Kind: codec.KindExtraBytes, Tag: scda, Have: n - int(s.Script.CompiledSize)}
		}
		return nil, &codec.Error{Kind: codec.KindUnexpectedEOF, Tag: scda, Want: int(s.Script.CompiledSize), Have: n}
	}
	if s.Source, _, err = field.TryParse(c, sctx, codec.Text); err != nil {
		return nil, err
	}

	for {
		local, ok, err := field.TryParse(c, slsd, codec.Struct[LocalVariable])
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		name, err := field.Parse(c, scvr, codec.ZString)
		if err != nil {
			return nil, err
		}
		s.Variables = append(s.Variables, ScriptVariable{LocalVariable: local, Name: name})
	}

	for {
		tag, err := c.PeekTag()
		if err != nil {
			return nil, err
		}
		switch tag {
		case scro:
			id, err := field.Parse(c, scro, ctx.FormIDs())
			if err != nil {
				return nil, err
			}
			s.References = append(s.References, ScriptRef{Object: &id})
			continue
		case scrv:
			idx, err := field.Parse(c, scrv, codec.Uint32)
			if err != nil {
				return nil, err
			}
			s.References = append(s.References, ScriptRef{Variable: &idx})
			continue
		}
		break
	}
	return finish(s, c)
}
