// Package codec provides the byte-level building blocks for decoding plugin
// (ESP/ESM/ESL) files.
//
// The package has two halves: a bounds-checked byte cursor ([Reader], with
// its inverse [Writer]) and a library of per-type field codecs built on top
// of it. Higher layers (fields, records, the file walk) never touch raw
// slices directly; every read goes through a Reader so that running off the
// end of a buffer is always a typed error and never a panic.
//
// # Codecs
//
// A [Decoder] is a plain function from *Reader to a value:
//
//	type Decoder[T any] func(r *Reader) (T, error)
//
// The library covers the semantic types used by plugin fields:
//   - [ZString]: NUL terminated text, UTF-8 with an ISO-8859-1 fallback
//   - [FixedString]: NUL padded text in a fixed number of bytes
//   - [LStringOf]: inline text or a string table ID in localized plugins
//   - [Flags8], [Flags16], [Flags32]: bit sets that keep unknown bits
//   - [Enum]: closed value sets that reject unknown discriminants
//   - [Struct]: fixed-size little-endian structs
//   - [UntilEOF]: homogeneous arrays filling the rest of a field
//   - [Bytes]: opaque blobs such as compiled script bytecode
//
// # Usage
//
//	name, err := codec.Decode(payload, codec.ZString)
//	if err != nil {
//	    return err
//	}
//
// [Decode] requires the decoder to consume the whole buffer; leftover bytes
// are reported as [ErrExtraBytes].
//
// # Error Handling
//
// Every failure is an [*Error] carrying a [Kind]. Use errors.Is with the
// exported sentinels to test for a class of failure:
//
//	if errors.Is(err, codec.ErrExtraBytes) {
//	    // a field held more data than its codec understood
//	}
//
// # Thread Safety
//
// Decoders are stateless functions and safe for concurrent use. A Reader is
// not; give each goroutine its own.
package codec
