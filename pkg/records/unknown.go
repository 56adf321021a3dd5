package records

import (
	"github.com/cespare/xxhash/v2"

	"github.com/ssargent/espkit/pkg/record"
)

// Unknown preserves a record whose type no decoder models. The payload is
// kept verbatim (decompressed when the record was compressed). Packed marks
// a compressed payload that failed to inflate and is kept as stored.
type Unknown struct {
	Base
	Payload  []byte `json:"payload"`
	Checksum uint64 `json:"checksum"`
	Packed   bool   `json:"packed,omitempty"`
}

// NewUnknown wraps an unmodelled record.
func NewUnknown(h record.Header, payload []byte, ctx *Context) *Unknown {
	u := &Unknown{Payload: payload, Checksum: xxhash.Sum64(payload)}
	u.Header = h
	if ctx.Table != nil {
		// A bad FormID on an unmodelled record is left unresolved rather than
		// failing the whole record.
		u.ID, _ = ctx.Table.Resolve(h.FormID)
	}
	return u
}

// Deleted is a record flagged deleted with nothing left in its payload.
type Deleted struct {
	Base
}

// NewDeleted resolves the header of a deleted record.
func NewDeleted(h record.Header, ctx *Context) (*Deleted, error) {
	base, err := newBase(h, ctx)
	if err != nil {
		return nil, err
	}
	return &Deleted{Base: base}, nil
}
