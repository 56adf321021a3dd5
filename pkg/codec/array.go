package codec

// UntilEOF repeats elem until the field is used up. A trailing partial
// element surfaces as the element's own ErrUnexpectedEOF.
func UntilEOF[T any](elem Decoder[T]) Decoder[[]T] {
	return func(r *Reader) ([]T, error) {
		out := make([]T, 0)
		for r.Remaining() > 0 {
			start := r.Offset()
			v, err := elem(r)
			if err != nil {
				return nil, err
			}
			if r.Offset() == start {
				return nil, &Error{Kind: KindExtraBytes, Have: r.Remaining(), Msg: "element decoder made no progress"}
			}
			out = append(out, v)
		}
		return out, nil
	}
}

// PutUntilEOF writes every element back to back.
func PutUntilEOF[T any](elem Encoder[T]) Encoder[[]T] {
	return func(w *Writer, vs []T) {
		for _, v := range vs {
			elem(w, v)
		}
	}
}
