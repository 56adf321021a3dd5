package field

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/espkit/pkg/codec"
)

var (
	tagEDID = codec.TagOf("EDID")
	tagFULL = codec.TagOf("FULL")
	tagKWDA = codec.TagOf("KWDA")
	tagMAST = codec.TagOf("MAST")
	tagDATA = codec.TagOf("DATA")
)

func payload(build func(w *codec.Writer)) []byte {
	w := codec.NewWriter()
	build(w)
	return w.Bytes()
}

func TestParse_Required(t *testing.T) {
	c := NewCursor(payload(func(w *codec.Writer) {
		Put(w, tagEDID, codec.PutZString, "IronSword")
		Put(w, tagDATA, codec.PutUint32, 25)
	}))

	name, err := Parse(c, tagEDID, codec.ZString)
	require.NoError(t, err)
	assert.Equal(t, "IronSword", name)

	value, err := Parse(c, tagDATA, codec.Uint32)
	require.NoError(t, err)
	assert.Equal(t, uint32(25), value)

	assert.NoError(t, c.AssertDone())
}

func TestParse_MissingField(t *testing.T) {
	c := NewCursor(payload(func(w *codec.Writer) {
		Put(w, tagFULL, codec.PutZString, "Iron Sword")
	}))

	_, err := Parse(c, tagEDID, codec.ZString)
	assert.ErrorIs(t, err, codec.MissingField(tagEDID))
	assert.Equal(t, 0, c.Offset(), "failed parse must not advance")

	_, err = Parse(NewCursor(nil), tagEDID, codec.ZString)
	assert.ErrorIs(t, err, codec.ErrMissingField)
}

func TestParse_SameTagTwiceFails(t *testing.T) {
	c := NewCursor(payload(func(w *codec.Writer) {
		Put(w, tagEDID, codec.PutZString, "A")
		Put(w, tagFULL, codec.PutZString, "B")
	}))

	_, err := Parse(c, tagEDID, codec.ZString)
	require.NoError(t, err)
	_, err = Parse(c, tagEDID, codec.ZString)
	assert.ErrorIs(t, err, codec.ErrMissingField)
}

func TestParse_TrailingByteInField(t *testing.T) {
	// EDID declares 6 bytes but the string ends after 5.
	c := NewCursor(payload(func(w *codec.Writer) {
		Append(w, tagEDID, []byte("Test\x00\xFF"))
	}))

	_, err := Parse(c, tagEDID, codec.ZString)
	require.Error(t, err)
	assert.ErrorIs(t, err, codec.ErrExtraBytes)
	assert.ErrorIs(t, err, &codec.Error{Kind: codec.KindExtraBytes, Tag: tagEDID})
	assert.Equal(t, 0, c.Offset())
}

func TestParse_TruncatedField(t *testing.T) {
	data := payload(func(w *codec.Writer) {
		Append(w, tagEDID, []byte("Test\x00"))
	})
	c := NewCursor(data[:len(data)-2])

	_, err := Parse(c, tagEDID, codec.ZString)
	assert.ErrorIs(t, err, codec.ErrUnexpectedEOF)
}

func TestTryParse_AbsentDoesNotAdvance(t *testing.T) {
	c := NewCursor(payload(func(w *codec.Writer) {
		Put(w, tagEDID, codec.PutZString, "Gold001")
		Put(w, tagDATA, codec.PutUint32, 1)
	}))

	_, err := Parse(c, tagEDID, codec.ZString)
	require.NoError(t, err)

	full, ok, err := TryParse(c, tagFULL, codec.ZString)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, full)

	ptr, err := TryParsePtr(c, tagFULL, codec.ZString)
	require.NoError(t, err)
	assert.Nil(t, ptr)

	value, err := Parse(c, tagDATA, codec.Uint32)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), value)
	assert.NoError(t, c.AssertDone())
}

func TestTryParse_PresentButInvalid(t *testing.T) {
	c := NewCursor(payload(func(w *codec.Writer) {
		Append(w, tagFULL, []byte("no terminator"))
	}))

	_, ok, err := TryParse(c, tagFULL, codec.ZString)
	assert.False(t, ok)
	assert.ErrorIs(t, err, codec.ErrStringEOF)
}

func TestParseMany(t *testing.T) {
	c := NewCursor(payload(func(w *codec.Writer) {
		Put(w, tagMAST, codec.PutZString, "Skyrim.esm")
		Put(w, tagMAST, codec.PutZString, "Update.esm")
		Put(w, tagMAST, codec.PutZString, "Dawnguard.esm")
		Put(w, tagDATA, codec.PutUint64, 0)
		Put(w, tagMAST, codec.PutZString, "Late.esm")
	}))

	masters, err := ParseMany(c, tagMAST, codec.ZString)
	require.NoError(t, err)
	assert.Equal(t, []string{"Skyrim.esm", "Update.esm", "Dawnguard.esm"}, masters)

	tag, err := c.PeekTag()
	require.NoError(t, err)
	assert.Equal(t, tagDATA, tag)

	_, err = Parse(c, tagDATA, codec.Uint64)
	require.NoError(t, err)

	// The separated MAST is only visible once the cursor reaches it.
	late, err := ParseMany(c, tagMAST, codec.ZString)
	require.NoError(t, err)
	assert.Equal(t, []string{"Late.esm"}, late)
	assert.NoError(t, c.AssertDone())
}

func TestParseMany_NoMatches(t *testing.T) {
	c := NewCursor(payload(func(w *codec.Writer) {
		Put(w, tagDATA, codec.PutUint32, 3)
	}))

	got, err := ParseMany(c, tagKWDA, codec.Uint32)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, 0, c.Offset())
}

func TestAssertDone_ExtraByte(t *testing.T) {
	data := payload(func(w *codec.Writer) {
		Put(w, tagEDID, codec.PutZString, "Test")
	})
	c := NewCursor(append(data, 0xFF))

	_, err := Parse(c, tagEDID, codec.ZString)
	require.NoError(t, err)

	err = c.AssertDone()
	require.Error(t, err)
	assert.ErrorIs(t, err, codec.ErrExtraBytes)
}

func TestOptionalPulls_ShortTail(t *testing.T) {
	testCases := []struct {
		name string
		tail []byte
	}{
		{name: "one byte", tail: []byte{0xFF}},
		{name: "tag only", tail: []byte("FULL")},
		{name: "tag and half a length", tail: []byte("KWDA\x04")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data := payload(func(w *codec.Writer) {
				Put(w, tagEDID, codec.PutZString, "Kw")
				w.Write(tc.tail)
			})
			c := NewCursor(data)

			_, err := Parse(c, tagEDID, codec.ZString)
			require.NoError(t, err)

			_, ok, err := TryParse(c, tagFULL, codec.ZString)
			require.NoError(t, err)
			assert.False(t, ok)

			many, err := ParseMany(c, tagKWDA, codec.Uint32)
			require.NoError(t, err)
			assert.Empty(t, many)

			tag, err := c.PeekTag()
			require.NoError(t, err)
			assert.True(t, tag.IsZero())

			_, err = Parse(c, tagFULL, codec.ZString)
			assert.ErrorIs(t, err, codec.MissingField(tagFULL))

			err = c.AssertDone()
			require.ErrorIs(t, err, codec.ErrExtraBytes)
			var e *codec.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, len(tc.tail), e.Have)
			assert.True(t, e.Tag.IsZero())
		})
	}
}

func TestTryParse_TruncatedOtherFieldIsAbsent(t *testing.T) {
	data := payload(func(w *codec.Writer) {
		Append(w, tagDATA, []byte{1, 2, 3, 4})
	})
	c := NewCursor(data[:len(data)-1])

	_, ok, err := TryParse(c, tagFULL, codec.ZString)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = Parse(c, tagDATA, codec.Uint32)
	assert.ErrorIs(t, err, codec.ErrUnexpectedEOF)
}

func TestAssertDone_UnreadField(t *testing.T) {
	c := NewCursor(payload(func(w *codec.Writer) {
		Put(w, tagEDID, codec.PutZString, "Test")
		Put(w, tagFULL, codec.PutZString, "Unread")
	}))

	_, err := Parse(c, tagEDID, codec.ZString)
	require.NoError(t, err)

	err = c.AssertDone()
	assert.ErrorIs(t, err, &codec.Error{Kind: codec.KindExtraBytes, Tag: tagFULL})
}

func TestLargeField(t *testing.T) {
	big := bytes.Repeat([]byte{0xAB}, 0x10010)
	data := payload(func(w *codec.Writer) {
		Append(w, tagDATA, big)
		Put(w, tagEDID, codec.PutZString, "After")
	})

	c := NewCursor(data)
	blob, err := Parse(c, tagDATA, codec.Bytes)
	require.NoError(t, err)
	assert.Len(t, blob, len(big))

	name, err := Parse(c, tagEDID, codec.ZString)
	require.NoError(t, err)
	assert.Equal(t, "After", name)
	assert.NoError(t, c.AssertDone())
}

func TestSeen(t *testing.T) {
	seen := Seen{}
	require.NoError(t, seen.Mark(tagEDID))
	require.NoError(t, seen.Mark(tagFULL))
	assert.ErrorIs(t, seen.Mark(tagEDID), codec.DuplicateField(tagEDID))
}
