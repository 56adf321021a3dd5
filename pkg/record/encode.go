package record

import (
	"github.com/ssargent/espkit/pkg/codec"
)

// Append writes a record with h's tag and flags around payload. Size is
// taken from the payload; when h is flagged compressed the payload is
// compressed first.
func Append(w *codec.Writer, h Header, payload []byte) error {
	if h.Flags.Compressed() {
		var err error
		if payload, err = Compress(payload); err != nil {
			return err
		}
	}
	w.Tag(h.Type)
	w.U32(uint32(len(payload)))
	w.U32(uint32(h.Flags))
	w.U32(h.FormID)
	w.U32(h.Revision)
	w.U16(h.Version)
	w.U16(h.Reserved)
	w.Write(payload)
	return nil
}

// AppendGroup writes a group header around already encoded contents.
func AppendGroup(w *codec.Writer, g GroupHeader, contents []byte) {
	g.Size = uint32(HeaderSize + len(contents))
	w.Tag(Group)
	codec.PutStruct(w, g)
	w.Write(contents)
}
