package record

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/espkit/pkg/codec"
)

var tagMISC = codec.TagOf("MISC")

func encodeRecord(t *testing.T, h Header, payload []byte) []byte {
	t.Helper()
	w := codec.NewWriter()
	require.NoError(t, Append(w, h, payload))
	return w.Bytes()
}

func TestReadRecord_Uncompressed(t *testing.T) {
	payload := []byte("EDID\x05\x00Gold\x00")
	data := encodeRecord(t, Header{Type: tagMISC, Flags: FlagDeleted | 0x4000, FormID: 0x0000000F, Revision: 0x1234, Version: 44, Reserved: 7}, payload)

	r := codec.NewReader(data)
	tag, err := r.Tag()
	require.NoError(t, err)
	assert.Equal(t, tagMISC, tag)

	h, got, err := ReadRecord(r, tag)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	assert.Equal(t, uint32(len(payload)), h.Size)
	assert.True(t, h.Flags.Deleted())
	assert.False(t, h.Flags.Compressed())
	assert.Equal(t, Flags(0x4000), h.Flags.Unnamed())
	assert.Equal(t, uint32(0x0F), h.FormID)
	assert.Equal(t, uint32(0x1234), h.Revision)
	assert.Equal(t, uint16(44), h.Version)
	assert.Equal(t, uint16(7), h.Reserved)
	assert.NoError(t, r.AssertExhausted())
}

func TestReadRecord_Compressed(t *testing.T) {
	payload := bytes.Repeat([]byte("DATA\x08\x00\x01\x00\x00\x00\x00\x00\x80\x3F"), 20)
	data := encodeRecord(t, Header{Type: tagMISC, Flags: FlagCompressed}, payload)

	r := codec.NewReader(data[4:])
	h, got, err := ReadRecord(r, tagMISC)
	require.NoError(t, err)
	assert.True(t, h.Flags.Compressed())
	assert.Equal(t, payload, got)
	assert.Less(t, int(h.Size), len(payload))
}

func TestReadRecord_ShortHeader(t *testing.T) {
	r := codec.NewReader([]byte{1, 2, 3})
	_, _, err := ReadRecord(r, tagMISC)
	require.Error(t, err)
	assert.ErrorIs(t, err, codec.ErrMalformedHeader)
}

func TestReadRecord_TruncatedPayload(t *testing.T) {
	data := encodeRecord(t, Header{Type: tagMISC}, []byte("EDID\x05\x00Gold\x00"))
	r := codec.NewReader(data[4 : len(data)-3])

	_, _, err := ReadRecord(r, tagMISC)
	assert.ErrorIs(t, err, codec.ErrUnexpectedEOF)
}

func TestDecompress_SizeMismatch(t *testing.T) {
	inflated := bytes.Repeat([]byte{0x42}, 98)
	compressed, err := Compress(inflated)
	require.NoError(t, err)

	// Claim 100 bytes for a stream that inflates to 98.
	binary.LittleEndian.PutUint32(compressed, 100)

	out, err := Decompress(compressed)
	require.Error(t, err)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, codec.ErrDecompressionSizeMismatch)

	var e *codec.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, 100, e.Want)
	assert.Equal(t, 98, e.Have)
}

func TestDecompress_Oversized(t *testing.T) {
	compressed, err := Compress(bytes.Repeat([]byte{0x42}, 120))
	require.NoError(t, err)
	binary.LittleEndian.PutUint32(compressed, 100)

	_, err = Decompress(compressed)
	var e *codec.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, codec.KindDecompressionSizeMismatch, e.Kind)
	assert.Equal(t, 120, e.Have)
}

func TestDecompress_CompressedRecordWithMismatchFailsRead(t *testing.T) {
	compressed, err := Compress(bytes.Repeat([]byte{0x42}, 98))
	require.NoError(t, err)
	binary.LittleEndian.PutUint32(compressed, 100)

	// Write the header by hand so Append does not recompress.
	w := codec.NewWriter()
	w.Tag(tagMISC)
	w.U32(uint32(len(compressed)))
	w.U32(uint32(FlagCompressed))
	w.U32(0x801)
	w.U32(0)
	w.U16(44)
	w.U16(0)
	w.Write(compressed)

	r := codec.NewReader(w.Bytes()[4:])
	_, payload, err := ReadRecord(r, tagMISC)
	assert.ErrorIs(t, err, codec.ErrDecompressionSizeMismatch)
	assert.Nil(t, payload)
}

func TestDecompress_Corrupt(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
	}{
		{name: "no length prefix", data: []byte{1, 2}},
		{name: "not zlib", data: []byte{10, 0, 0, 0, 0xDE, 0xAD, 0xBE, 0xEF}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decompress(tc.data)
			assert.ErrorIs(t, err, codec.ErrDecompression)
		})
	}
}

func TestGroupHeader(t *testing.T) {
	inner := encodeRecord(t, Header{Type: tagMISC}, []byte("EDID\x02\x00A\x00"))

	w := codec.NewWriter()
	AppendGroup(w, GroupHeader{Label: tagMISC, GroupType: GroupTop, Stamp: 3, Version: 44}, inner)

	r := codec.NewReader(w.Bytes())
	tag, err := r.Tag()
	require.NoError(t, err)
	assert.Equal(t, Group, tag)

	g, err := ReadGroupHeader(r)
	require.NoError(t, err)
	assert.Equal(t, uint32(HeaderSize+len(inner)), g.Size)
	assert.Equal(t, tagMISC, g.LabelTag())
	assert.Equal(t, GroupTop, g.GroupType)
	assert.Equal(t, uint16(3), g.Stamp)

	n, err := g.ContentSize()
	require.NoError(t, err)
	assert.Equal(t, len(inner), n)
	assert.Equal(t, n, r.Remaining())
}

func TestGroupHeader_TooSmall(t *testing.T) {
	_, err := GroupHeader{Size: 10}.ContentSize()
	assert.ErrorIs(t, err, codec.ErrMalformedGroup)
}
