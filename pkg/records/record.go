// Package records holds the typed record variants and their decoders.
//
// Each decoder is a short declarative sequence of field.Parse, TryParse and
// ParseMany calls in the order the format lays the fields out, ending with
// AssertDone. Decoders never touch shared state: their only inputs are the
// record header, its payload cursor and a read-only Context.
package records

import (
	"github.com/ssargent/espkit/pkg/codec"
	"github.com/ssargent/espkit/pkg/field"
	"github.com/ssargent/espkit/pkg/formid"
	"github.com/ssargent/espkit/pkg/record"
)

// Record is the tagged union of decoded records. The concrete type is the
// variant; RecordHeader().Type is the tag.
type Record interface {
	RecordHeader() record.Header
	FormID() formid.ID
}

// DecodeFunc decodes one record from its header and payload cursor.
type DecodeFunc func(h record.Header, c *field.Cursor, ctx *Context) (Record, error)

// Context is the read-only state shared by every record of one file.
type Context struct {
	// Table resolves FormIDs. It is nil only while the file header itself
	// is being decoded.
	Table *formid.Table
	// Localized selects string table IDs over inline strings.
	Localized bool
	// NewTable builds the file's table from its masters; the file header
	// decoder uses it to resolve its own FormID fields.
	NewTable func(masters []string) (*formid.Table, error)
}

// FormIDs returns the resolving FormID codec.
func (ctx *Context) FormIDs() codec.Decoder[formid.ID] {
	return ctx.Table.Decoder()
}

// LStrings returns the string codec for the file's localization mode.
func (ctx *Context) LStrings() codec.Decoder[codec.LString] {
	return codec.LStringOf(ctx.Localized)
}

// Base carries what every record has.
type Base struct {
	Header   record.Header `json:"header"`
	ID       formid.ID     `json:"id"`
	EditorID string        `json:"editor_id,omitempty"`
}

func (b *Base) RecordHeader() record.Header { return b.Header }
func (b *Base) FormID() formid.ID           { return b.ID }

func newBase(h record.Header, ctx *Context) (Base, error) {
	b := Base{Header: h}
	if ctx.Table == nil {
		return b, nil
	}
	id, err := ctx.Table.Resolve(h.FormID)
	if err != nil {
		return b, err
	}
	b.ID = id
	return b, nil
}

// Field tags shared by several records.
var (
	EDID = codec.TagOf("EDID")
	FULL = codec.TagOf("FULL")
	OBND = codec.TagOf("OBND")
	MODL = codec.TagOf("MODL")
	MODT = codec.TagOf("MODT")
	ICON = codec.TagOf("ICON")
	KSIZ = codec.TagOf("KSIZ")
	KWDA = codec.TagOf("KWDA")
	DATA = codec.TagOf("DATA")
	DESC = codec.TagOf("DESC")
	CNAM = codec.TagOf("CNAM")
)

// Bounds is an object bounding box.
type Bounds struct {
	X1, Y1, Z1 int16
	X2, Y2, Z2 int16
}

// Color is an RGBA color with an unused alpha byte.
type Color struct {
	R, G, B uint8
	Unused  uint8
}

// Model is the optional model path and its opaque texture hash data.
type Model struct {
	Path   string `json:"path"`
	Hashes []byte `json:"hashes,omitempty"`
}

func editorID(c *field.Cursor) (string, error) {
	return field.Parse(c, EDID, codec.ZString)
}

func model(c *field.Cursor) (*Model, error) {
	path, ok, err := field.TryParse(c, MODL, codec.ZString)
	if err != nil || !ok {
		return nil, err
	}
	hashes, _, err := field.TryParse(c, MODT, codec.Bytes)
	if err != nil {
		return nil, err
	}
	return &Model{Path: path, Hashes: hashes}, nil
}

// keywords reads the optional KSIZ count and the KWDA array it sizes.
func keywords(c *field.Cursor, ctx *Context) ([]formid.ID, error) {
	count, ok, err := field.TryParse(c, KSIZ, codec.Uint32)
	if err != nil || !ok {
		return nil, err
	}
	ids, err := field.Parse(c, KWDA, codec.UntilEOF(ctx.FormIDs()))
	if err != nil {
		return nil, err
	}
	switch n := len(ids); {
	case n > int(count):
		return nil, &codec.Error{Kind: codec.KindExtraBytes, Tag: KWDA, Have: (n - int(count)) * 4}
	case n < int(count):
		return nil, &codec.Error{Kind: codec.KindUnexpectedEOF, Tag: KWDA, Want: int(count) * 4, Have: n * 4}
	}
	return ids, nil
}

// finish is the last step of every decoder: any field left over is an
// error, never silently dropped.
func finish(r Record, c *field.Cursor) (Record, error) {
	if err := c.AssertDone(); err != nil {
		return nil, err
	}
	return r, nil
}

func (b *Base) base() *Base { return b }

// EditorIDOf returns rec's editor ID, or "" when rec has none.
func EditorIDOf(rec Record) string {
	if b, ok := rec.(interface{ base() *Base }); ok {
		return b.base().EditorID
	}
	return ""
}
