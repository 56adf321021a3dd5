package field

import (
	"github.com/pkg/errors"

	"github.com/ssargent/espkit/pkg/codec"
)

// Cursor walks the fields of one record payload. It only ever looks at the
// next field, so a non-repeated tag cannot be accepted twice by accident.
type Cursor struct {
	r *codec.Reader
}

// NewCursor returns a cursor positioned before the first field of payload.
func NewCursor(payload []byte) *Cursor {
	return &Cursor{r: codec.NewReader(payload)}
}

// Peek returns the next field without consuming it. ok is false when fewer
// bytes than a field header remain; those bytes are left for AssertDone to
// report.
func (c *Cursor) Peek() (Field, bool, error) {
	if c.r.Remaining() < HeaderSize {
		return Field{}, false, nil
	}
	probe := codec.NewReader(c.r.Unread())
	f, err := read(probe)
	if err != nil {
		return Field{}, false, errors.Wrapf(err, "field at offset %d", c.r.Offset())
	}
	return f, true, nil
}

// Next consumes and returns the next field.
func (c *Cursor) Next() (Field, error) {
	start := c.r.Offset()
	f, err := read(c.r)
	if err != nil {
		return Field{}, errors.Wrapf(err, "field at offset %d", start)
	}
	return f, nil
}

// nextTag reads the tag of the next field from its header alone, looking
// through an XXXX prefix. ok is false when no whole header remains.
func (c *Cursor) nextTag() (codec.Tag, bool) {
	rest := c.r.Unread()
	if len(rest) < HeaderSize {
		return codec.Tag{}, false
	}
	var tag codec.Tag
	copy(tag[:], rest)
	if tag == XXXX {
		if len(rest) < 2*HeaderSize+4 {
			return codec.Tag{}, false
		}
		copy(tag[:], rest[HeaderSize+4:])
	}
	return tag, true
}

// PeekTag returns the tag of the next field, or the zero tag when no whole
// field header remains. The field's payload is not checked.
func (c *Cursor) PeekTag() (codec.Tag, error) {
	tag, _ := c.nextTag()
	return tag, nil
}

// Remaining reports the unconsumed payload bytes.
func (c *Cursor) Remaining() int {
	return c.r.Remaining()
}

// Offset reports the position within the payload.
func (c *Cursor) Offset() int {
	return c.r.Offset()
}

// Done reports whether every field has been consumed.
func (c *Cursor) Done() bool {
	return c.r.Remaining() == 0
}

// AssertDone fails with ErrExtraBytes, naming the next unread field, when
// any field bytes remain.
func (c *Cursor) AssertDone() error {
	n := c.r.Remaining()
	if n == 0 {
		return nil
	}
	e := codec.ExtraBytes(n)
	if tag, err := c.PeekTag(); err == nil {
		e.Tag = tag
	}
	return e
}

// decode runs dec over f's payload and requires it to use every byte.
func decode[T any](f Field, dec codec.Decoder[T]) (T, error) {
	v, err := codec.Decode(f.Payload, dec)
	if err != nil {
		if e, ok := err.(*codec.Error); ok && e.Tag.IsZero() {
			tagged := *e
			tagged.Tag = f.Tag
			err = &tagged
		}
		return v, errors.Wrapf(err, "decode %s", f.Tag)
	}
	return v, nil
}

// Parse consumes the next field, which must carry tag, and decodes it. The
// cursor advances only on success.
func Parse[T any](c *Cursor, tag codec.Tag, dec codec.Decoder[T]) (T, error) {
	var zero T
	if next, ok := c.nextTag(); !ok || next != tag {
		return zero, codec.MissingField(tag)
	}
	f, _, err := c.Peek()
	if err != nil {
		return zero, err
	}
	v, err := decode(f, dec)
	if err != nil {
		return zero, err
	}
	if _, err := c.Next(); err != nil {
		return zero, err
	}
	return v, nil
}

// TryParse behaves like Parse when the next field carries tag. Otherwise it
// reports ok=false and leaves the cursor where it was. Only the field header
// is inspected to decide, so trailing bytes too short for a field are left
// for AssertDone.
func TryParse[T any](c *Cursor, tag codec.Tag, dec codec.Decoder[T]) (T, bool, error) {
	var zero T
	if next, ok := c.nextTag(); !ok || next != tag {
		return zero, false, nil
	}
	v, err := Parse(c, tag, dec)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

// TryParsePtr is TryParse returning nil for an absent field, for optional
// record members.
func TryParsePtr[T any](c *Cursor, tag codec.Tag, dec codec.Decoder[T]) (*T, error) {
	v, ok, err := TryParse(c, tag, dec)
	if err != nil || !ok {
		return nil, err
	}
	return &v, nil
}

// ParseMany consumes the maximal contiguous run of fields carrying tag. It
// never skips over another tag to find later matches. No matches yields an
// empty slice.
func ParseMany[T any](c *Cursor, tag codec.Tag, dec codec.Decoder[T]) ([]T, error) {
	out := make([]T, 0)
	for {
		v, ok, err := TryParse(c, tag, dec)
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, v)
	}
}

// Seen tracks tags already accepted by a decoder that reads fields in a
// loop, reporting a second occurrence as ErrDuplicateField.
type Seen map[codec.Tag]struct{}

// Mark records tag, failing if it was recorded before.
func (s Seen) Mark(tag codec.Tag) error {
	if _, dup := s[tag]; dup {
		return codec.DuplicateField(tag)
	}
	s[tag] = struct{}{}
	return nil
}
