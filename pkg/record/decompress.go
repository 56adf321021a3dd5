package record

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"

	"github.com/ssargent/espkit/pkg/codec"
)

// overflowProbe bounds how far past the declared size a stream is inflated
// when measuring an oversized payload.
const overflowProbe = 1 << 20

// Decompress inflates a compressed record payload: a uint32 decompressed
// length followed by a zlib stream. The stream must inflate to exactly the
// declared length; anything else is ErrDecompressionSizeMismatch.
func Decompress(raw []byte) ([]byte, error) {
	if len(raw) < 4 {
		return nil, &codec.Error{Kind: codec.KindDecompression, Msg: "missing decompressed length"}
	}
	declared := binary.LittleEndian.Uint32(raw)

	zr, err := zlib.NewReader(bytes.NewReader(raw[4:]))
	if err != nil {
		return nil, errors.Wrap(&codec.Error{Kind: codec.KindDecompression, Msg: err.Error()}, "open zlib stream")
	}
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, int64(declared)+1))
	if err != nil {
		return nil, errors.Wrap(&codec.Error{Kind: codec.KindDecompression, Msg: err.Error()}, "inflate")
	}
	if len(out) > int(declared) {
		extra, _ := io.Copy(io.Discard, io.LimitReader(zr, overflowProbe))
		return nil, codec.SizeMismatch(int(declared), len(out)+int(extra))
	}
	if len(out) != int(declared) {
		return nil, codec.SizeMismatch(int(declared), len(out))
	}
	return out, nil
}

// Compress is the inverse of Decompress.
func Compress(payload []byte) ([]byte, error) {
	var buf bytes.Buffer
	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(len(payload)))
	buf.Write(size[:])

	zw, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, errors.Wrap(err, "create zlib writer")
	}
	if _, err := zw.Write(payload); err != nil {
		return nil, errors.Wrap(err, "zlib write")
	}
	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(err, "zlib close")
	}
	return buf.Bytes(), nil
}
