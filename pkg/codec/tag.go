package codec

import "fmt"

// Tag is a four byte type code naming a record or a field.
type Tag [4]byte

// TagOf converts a four character string into a Tag. It panics on any other
// length, so it is meant for package level constants.
func TagOf(s string) Tag {
	if len(s) != 4 {
		panic(fmt.Sprintf("codec: tag %q is not 4 bytes", s))
	}
	var t Tag
	copy(t[:], s)
	return t
}

// IsZero reports whether the tag is unset.
func (t Tag) IsZero() bool {
	return t == Tag{}
}

func (t Tag) String() string {
	for _, b := range t {
		if b < 0x20 || b > 0x7E {
			return fmt.Sprintf("0x%02X%02X%02X%02X", t[0], t[1], t[2], t[3])
		}
	}
	return string(t[:])
}

// MarshalText lets tags appear as JSON strings and map keys.
func (t Tag) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText accepts the four character form produced by MarshalText.
func (t *Tag) UnmarshalText(b []byte) error {
	if len(b) != 4 {
		return fmt.Errorf("codec: tag %q is not 4 bytes", b)
	}
	copy(t[:], b)
	return nil
}
