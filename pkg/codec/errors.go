package codec

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a decode failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindIO
	KindMalformedHeader
	KindUnexpectedEOF
	KindExtraBytes
	KindStringEOF
	KindMissingField
	KindDuplicateField
	KindInvalidDiscriminant
	KindUnknownVersion
	KindDecompression
	KindDecompressionSizeMismatch
	KindUnresolvedMaster
	KindNotImplemented
	KindMalformedGroup
	KindMissingFileHeader
)

var kindNames = [...]string{
	KindUnknown:                   "unknown",
	KindIO:                        "io",
	KindMalformedHeader:           "malformed_header",
	KindUnexpectedEOF:             "unexpected_eof",
	KindExtraBytes:                "extra_bytes",
	KindStringEOF:                 "string_eof",
	KindMissingField:              "missing_field",
	KindDuplicateField:            "duplicate_field",
	KindInvalidDiscriminant:       "invalid_discriminant",
	KindUnknownVersion:            "unknown_version",
	KindDecompression:             "decompression",
	KindDecompressionSizeMismatch: "decompression_size_mismatch",
	KindUnresolvedMaster:          "unresolved_master",
	KindNotImplemented:            "not_implemented",
	KindMalformedGroup:            "malformed_group",
	KindMissingFileHeader:         "missing_file_header",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Error is the single error type produced by the decoding packages. Two
// errors match under errors.Is when their kinds match and, if the target
// names a tag, the tags match too.
type Error struct {
	Kind Kind
	Tag  Tag    // field or record tag, when known
	Want int    // bytes wanted, declared size or master slot
	Have int    // bytes available, actual size or master count
	Name string // enumeration, version set or plugin name
	Msg  string
}

// Sentinels for errors.Is.
var (
	ErrIO                        = &Error{Kind: KindIO}
	ErrMalformedHeader           = &Error{Kind: KindMalformedHeader}
	ErrUnexpectedEOF             = &Error{Kind: KindUnexpectedEOF}
	ErrExtraBytes                = &Error{Kind: KindExtraBytes}
	ErrStringEOF                 = &Error{Kind: KindStringEOF}
	ErrMissingField              = &Error{Kind: KindMissingField}
	ErrDuplicateField            = &Error{Kind: KindDuplicateField}
	ErrInvalidDiscriminant       = &Error{Kind: KindInvalidDiscriminant}
	ErrUnknownVersion            = &Error{Kind: KindUnknownVersion}
	ErrDecompression             = &Error{Kind: KindDecompression}
	ErrDecompressionSizeMismatch = &Error{Kind: KindDecompressionSizeMismatch}
	ErrUnresolvedMaster          = &Error{Kind: KindUnresolvedMaster}
	ErrNotImplemented            = &Error{Kind: KindNotImplemented}
	ErrMalformedGroup            = &Error{Kind: KindMalformedGroup}
	ErrMissingFileHeader         = &Error{Kind: KindMissingFileHeader}
)

func (e *Error) Error() string {
	switch e.Kind {
	case KindUnexpectedEOF:
		return fmt.Sprintf("unexpected end of data: wanted %d bytes, %d remain", e.Want, e.Have)
	case KindExtraBytes:
		if e.Tag.IsZero() {
			return fmt.Sprintf("%d extra bytes left unconsumed", e.Have)
		}
		return fmt.Sprintf("%s: %d extra bytes left unconsumed", e.Tag, e.Have)
	case KindMissingField:
		return fmt.Sprintf("missing required field %s", e.Tag)
	case KindDuplicateField:
		return fmt.Sprintf("duplicate field %s", e.Tag)
	case KindInvalidDiscriminant:
		return fmt.Sprintf("invalid %s discriminant %s", e.Name, e.Msg)
	case KindUnknownVersion:
		return fmt.Sprintf("unknown %s version %s", e.Name, e.Msg)
	case KindDecompressionSizeMismatch:
		return fmt.Sprintf("decompressed size mismatch: declared %d, inflated %d", e.Want, e.Have)
	case KindUnresolvedMaster:
		if e.Name != "" {
			return fmt.Sprintf("unresolved master %q", e.Name)
		}
		return fmt.Sprintf("unresolved master slot %d: %d masters declared", e.Want, e.Have)
	case KindNotImplemented:
		return fmt.Sprintf("decoder for %s is not implemented", e.Tag)
	}
	if e.Msg != "" {
		return e.Kind.String() + ": " + e.Msg
	}
	return e.Kind.String()
}

// Is implements errors.Is matching by kind and optional tag.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Tag.IsZero() || t.Tag == e.Tag)
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// ExtraBytes reports n unconsumed bytes.
func ExtraBytes(n int) *Error {
	return &Error{Kind: KindExtraBytes, Have: n}
}

// MissingField reports that the required field tag was not next.
func MissingField(tag Tag) *Error {
	return &Error{Kind: KindMissingField, Tag: tag}
}

// DuplicateField reports a second occurrence of a non-repeated field.
func DuplicateField(tag Tag) *Error {
	return &Error{Kind: KindDuplicateField, Tag: tag}
}

// InvalidDiscriminant reports a value outside the named enumeration.
func InvalidDiscriminant(enum string, value any) *Error {
	return &Error{Kind: KindInvalidDiscriminant, Name: enum, Msg: fmt.Sprint(value)}
}

// UnknownVersion reports a format version this package cannot read.
func UnknownVersion(what string, value any) *Error {
	return &Error{Kind: KindUnknownVersion, Name: what, Msg: fmt.Sprint(value)}
}

// SizeMismatch reports an inflated payload whose length differs from the
// declared one.
func SizeMismatch(declared, actual int) *Error {
	return &Error{Kind: KindDecompressionSizeMismatch, Want: declared, Have: actual}
}

// NotImplemented reports a registered record type without a decoder.
func NotImplemented(tag Tag) *Error {
	return &Error{Kind: KindNotImplemented, Tag: tag}
}
