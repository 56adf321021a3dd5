package codec

type unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Flags8, Flags16 and Flags32 read a bit set of the given width. Every bit is
// kept, including ones no constant names yet.
func Flags8[F ~uint8](r *Reader) (F, error) {
	v, err := r.U8()
	return F(v), err
}

func Flags16[F ~uint16](r *Reader) (F, error) {
	v, err := r.U16()
	return F(v), err
}

func Flags32[F ~uint32](r *Reader) (F, error) {
	v, err := r.U32()
	return F(v), err
}

// Has reports whether every bit of mask is set in f.
func Has[F unsigned](f, mask F) bool {
	return f&mask == mask
}

// Unnamed returns the bits of f outside known.
func Unnamed[F unsigned](f, known F) F {
	return f &^ known
}
