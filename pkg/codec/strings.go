package codec

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// decodeText interprets b as UTF-8, falling back to ISO-8859-1 when b is not
// valid UTF-8. Every byte sequence is valid ISO-8859-1.
func decodeText(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(s)
}

// ZString reads a NUL terminated string. The terminator is consumed and
// stripped; a missing terminator is ErrStringEOF.
func ZString(r *Reader) (string, error) {
	i := bytes.IndexByte(r.Unread(), 0)
	if i < 0 {
		return "", &Error{Kind: KindStringEOF, Msg: "no terminator before end of field"}
	}
	b, err := r.ReadExact(i + 1)
	if err != nil {
		return "", err
	}
	return decodeText(b[:i]), nil
}

// PutZString writes s followed by a NUL terminator.
func PutZString(w *Writer, s string) {
	w.Write([]byte(s))
	w.U8(0)
}

// FixedString returns a decoder for a string stored in exactly n bytes and
// padded with NULs. Anything but NUL after the first NUL is ErrStringEOF.
func FixedString(n int) Decoder[string] {
	return func(r *Reader) (string, error) {
		b, err := r.ReadExact(n)
		if err != nil {
			return "", err
		}
		i := bytes.IndexByte(b, 0)
		if i < 0 {
			return decodeText(b), nil
		}
		for _, c := range b[i:] {
			if c != 0 {
				return "", &Error{Kind: KindStringEOF, Msg: "embedded NUL before end of fixed string"}
			}
		}
		return decodeText(b[:i]), nil
	}
}

// PutFixedString returns an encoder padding s with NULs to n bytes. Longer
// strings are truncated.
func PutFixedString(n int) Encoder[string] {
	return func(w *Writer, s string) {
		b := make([]byte, n)
		copy(b, s)
		w.Write(b)
	}
}

// LString is a string that is either inline or, in localized plugins, an ID
// into the external string tables.
type LString struct {
	ID        uint32 `json:"id,omitempty"`
	Text      string `json:"text,omitempty"`
	Localized bool   `json:"localized,omitempty"`
}

// LStringOf returns the decoder for a plugin's localization mode.
func LStringOf(localized bool) Decoder[LString] {
	if localized {
		return func(r *Reader) (LString, error) {
			id, err := r.U32()
			return LString{ID: id, Localized: true}, err
		}
	}
	return func(r *Reader) (LString, error) {
		s, err := ZString(r)
		return LString{Text: s}, err
	}
}

// PutLString writes s in the form matching s.Localized.
func PutLString(w *Writer, s LString) {
	if s.Localized {
		w.U32(s.ID)
		return
	}
	PutZString(w, s.Text)
}

// Text reads the rest of the field as unterminated text.
func Text(r *Reader) (string, error) {
	return decodeText(r.Rest()), nil
}
