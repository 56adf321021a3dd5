// Package record reads the fixed record header and produces the payload a
// field cursor consumes, inflating compressed records on the way.
//
// On disk every record is
//
//	[Type(4)][Size(4)][Flags(4)][FormID(4)][Revision(4)][Version(2)][Reserved(2)][Payload(Size)]
//
// and groups share the same 24 byte header shape with different meanings
// (see GroupHeader). The type tag is read by the caller, which needs it to
// tell records from groups.
package record

import (
	"github.com/pkg/errors"

	"github.com/ssargent/espkit/pkg/codec"
)

// HeaderSize is the size of a record or group header including its tag.
const HeaderSize = 24

// Group is the tag that opens a group instead of a record.
var Group = codec.TagOf("GRUP")

// Flags is the record flag set. Bits without a name are kept as read.
type Flags uint32

const (
	FlagMaster     Flags = 0x00000001 // TES4 only: file is a master
	FlagDeleted    Flags = 0x00000020
	FlagLocalized  Flags = 0x00000080 // TES4 only: strings live in string tables
	FlagLight      Flags = 0x00000200 // TES4 only: light plugin
	FlagIgnored    Flags = 0x00001000
	FlagCompressed Flags = 0x00040000
)

const knownRecordFlags = FlagMaster | FlagDeleted | FlagLocalized | FlagLight | FlagIgnored | FlagCompressed

func (f Flags) Compressed() bool { return codec.Has(f, FlagCompressed) }
func (f Flags) Deleted() bool    { return codec.Has(f, FlagDeleted) }
func (f Flags) Localized() bool  { return codec.Has(f, FlagLocalized) }

// Unnamed returns the set bits this package has no name for.
func (f Flags) Unnamed() Flags { return codec.Unnamed(f, knownRecordFlags) }

// Header is a record header. Size is the on-disk payload size, which for a
// compressed record includes the 4 byte decompressed length prefix.
type Header struct {
	Type     codec.Tag `json:"type"`
	Size     uint32    `json:"size"`
	Flags    Flags     `json:"flags"`
	FormID   uint32    `json:"form_id"`
	Revision uint32    `json:"revision"`
	Version  uint16    `json:"version"`
	Reserved uint16    `json:"reserved"`
}

// ReadHeader reads the 20 header bytes that follow an already consumed tag.
func ReadHeader(r *codec.Reader, tag codec.Tag) (Header, error) {
	h := Header{Type: tag}
	b, err := r.ReadExact(HeaderSize - 4)
	if err != nil {
		return h, malformed(tag, err)
	}
	hr := codec.NewReader(b)
	h.Size, _ = hr.U32()
	flags, _ := hr.U32()
	h.Flags = Flags(flags)
	h.FormID, _ = hr.U32()
	h.Revision, _ = hr.U32()
	h.Version, _ = hr.U16()
	h.Reserved, _ = hr.U16()
	return h, nil
}

// ReadRecord reads the header and payload of the record whose tag was just
// consumed and returns the payload ready for a field cursor.
func ReadRecord(r *codec.Reader, tag codec.Tag) (Header, []byte, error) {
	h, err := ReadHeader(r, tag)
	if err != nil {
		return h, nil, err
	}
	raw, err := r.ReadExact(int(h.Size))
	if err != nil {
		return h, nil, errors.Wrapf(err, "%s payload", tag)
	}
	payload, err := Payload(h, raw)
	return h, payload, err
}

// Payload turns the on-disk payload of h into field bytes. It only fails
// for compressed records, and the stream position is unaffected either way.
func Payload(h Header, raw []byte) ([]byte, error) {
	if !h.Flags.Compressed() {
		return raw, nil
	}
	payload, err := Decompress(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %08X", h.Type, h.FormID)
	}
	return payload, nil
}

func malformed(tag codec.Tag, cause error) error {
	return errors.Wrap(&codec.Error{Kind: codec.KindMalformedHeader, Tag: tag, Msg: "short header"}, cause.Error())
}

// GroupHeader is the header of a GRUP. Size covers the header itself and
// every record and group nested inside.
type GroupHeader struct {
	Size      uint32  `json:"size"`
	Label     [4]byte `json:"label"`
	GroupType int32   `json:"group_type"`
	Stamp     uint16  `json:"stamp"`
	Unknown1  uint16  `json:"unknown1"`
	Version   uint16  `json:"version"`
	Unknown2  uint16  `json:"unknown2"`
}

// Group types.
const (
	GroupTop int32 = iota
	GroupWorldChildren
	GroupInteriorCellBlock
	GroupInteriorCellSubBlock
	GroupExteriorCellBlock
	GroupExteriorCellSubBlock
	GroupCellChildren
	GroupTopicChildren
	GroupCellPersistentChildren
	GroupCellTemporaryChildren
	GroupCellVisibleDistantChildren
)

// LabelTag returns the label as a record tag, meaningful for top groups.
func (g GroupHeader) LabelTag() codec.Tag {
	return codec.Tag(g.Label)
}

// ContentSize is the number of bytes of nested records and groups.
func (g GroupHeader) ContentSize() (int, error) {
	if g.Size < HeaderSize {
		return 0, &codec.Error{Kind: codec.KindMalformedGroup, Want: HeaderSize, Have: int(g.Size), Msg: "group smaller than its header"}
	}
	return int(g.Size) - HeaderSize, nil
}

// ReadGroupHeader reads the 20 bytes following a GRUP tag.
func ReadGroupHeader(r *codec.Reader) (GroupHeader, error) {
	var g GroupHeader
	b, err := r.ReadExact(HeaderSize - 4)
	if err != nil {
		return g, malformed(Group, err)
	}
	return codec.Decode(b, codec.Struct[GroupHeader])
}
