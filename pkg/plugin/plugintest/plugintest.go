// Package plugintest builds small plugin files in memory for tests.
package plugintest

import (
	"github.com/ssargent/espkit/pkg/codec"
	"github.com/ssargent/espkit/pkg/field"
	"github.com/ssargent/espkit/pkg/record"
)

var (
	tes4 = codec.TagOf("TES4")
	hedr = codec.TagOf("HEDR")
	mast = codec.TagOf("MAST")
	data = codec.TagOf("DATA")
	edid = codec.TagOf("EDID")
	cnam = codec.TagOf("CNAM")
	fnam = codec.TagOf("FNAM")
	fltv = codec.TagOf("FLTV")
)

// Builder accumulates the records of one plugin. The TES4 header is
// written by Bytes.
type Builder struct {
	masters []string
	flags   record.Flags
	body    *codec.Writer
}

// New starts a plugin declaring masters.
func New(masters ...string) *Builder {
	return &Builder{masters: masters, body: codec.NewWriter()}
}

// Localized sets the localized flag on the file header.
func (b *Builder) Localized() *Builder {
	b.flags |= record.FlagLocalized
	return b
}

// Record appends a record whose payload is written by fields.
func (b *Builder) Record(tag codec.Tag, formID uint32, fields func(w *codec.Writer)) *Builder {
	return b.RecordWithFlags(tag, 0, formID, fields)
}

// RecordWithFlags is Record with header flags. FlagCompressed compresses
// the payload.
func (b *Builder) RecordWithFlags(tag codec.Tag, flags record.Flags, formID uint32, fields func(w *codec.Writer)) *Builder {
	w := codec.NewWriter()
	if fields != nil {
		fields(w)
	}
	if err := record.Append(b.body, record.Header{Type: tag, Flags: flags, FormID: formID}, w.Bytes()); err != nil {
		panic(err)
	}
	return b
}

// Raw appends bytes verbatim, for malformed input.
func (b *Builder) Raw(p []byte) *Builder {
	b.body.Write(p)
	return b
}

// Group appends a top group labelled label holding what build appends.
func (b *Builder) Group(label codec.Tag, build func(g *Builder)) *Builder {
	inner := &Builder{body: codec.NewWriter()}
	build(inner)
	record.AppendGroup(b.body, record.GroupHeader{Label: label, GroupType: record.GroupTop}, inner.body.Bytes())
	return b
}

// Keyword appends a KYWD record.
func (b *Builder) Keyword(formID uint32, editorID string) *Builder {
	return b.Record(codec.TagOf("KYWD"), formID, func(w *codec.Writer) {
		field.Put(w, edid, codec.PutZString, editorID)
	})
}

// Global appends a float GLOB record.
func (b *Builder) Global(formID uint32, editorID string, value float32) *Builder {
	return b.Record(codec.TagOf("GLOB"), formID, func(w *codec.Writer) {
		field.Put(w, edid, codec.PutZString, editorID)
		field.Put(w, fnam, codec.PutUint8, 'f')
		field.Put(w, fltv, codec.PutFloat32, value)
	})
}

// Header returns the encoded TES4 record alone.
func (b *Builder) Header() []byte {
	w := codec.NewWriter()
	fields := codec.NewWriter()
	fields.Tag(hedr)
	fields.U16(12)
	fields.F32(1.71)
	fields.I32(0)
	fields.U32(0x800)
	field.Put(fields, cnam, codec.PutZString, "plugintest")
	for _, m := range b.masters {
		field.Put(fields, mast, codec.PutZString, m)
		field.Put(fields, data, codec.PutUint64, 0)
	}
	if err := record.Append(w, record.Header{Type: tes4, Flags: b.flags}, fields.Bytes()); err != nil {
		panic(err)
	}
	return w.Bytes()
}

// Bytes returns the whole plugin.
func (b *Builder) Bytes() []byte {
	return append(b.Header(), b.body.Bytes()...)
}
