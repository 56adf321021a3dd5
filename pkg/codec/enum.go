package codec

import "sort"

// Enum is a closed set of named values. Unlike flags, a value outside the
// set is rejected.
type Enum[T comparable] struct {
	name  string
	kind  Kind
	names map[T]string
}

// NewEnum builds an enumeration whose unknown values fail with
// ErrInvalidDiscriminant.
func NewEnum[T comparable](name string, values map[T]string) Enum[T] {
	return Enum[T]{name: name, kind: KindInvalidDiscriminant, names: values}
}

// NewVersions builds a set of supported format versions whose unknown
// values fail with ErrUnknownVersion.
func NewVersions[T comparable](name string, values map[T]string) Enum[T] {
	return Enum[T]{name: name, kind: KindUnknownVersion, names: values}
}

// Check returns v when it is a member of the set.
func (e Enum[T]) Check(v T) (T, error) {
	if _, ok := e.names[v]; !ok {
		if e.kind == KindUnknownVersion {
			return v, UnknownVersion(e.name, v)
		}
		return v, InvalidDiscriminant(e.name, v)
	}
	return v, nil
}

// Name returns the label of v, or "" when v is not a member.
func (e Enum[T]) Name(v T) string {
	return e.names[v]
}

// Names lists the labels in sorted order.
func (e Enum[T]) Names() []string {
	out := make([]string, 0, len(e.names))
	for _, n := range e.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Of wraps raw so its result is validated against the set.
func (e Enum[T]) Of(raw Decoder[T]) Decoder[T] {
	return func(r *Reader) (T, error) {
		v, err := raw(r)
		if err != nil {
			return v, err
		}
		return e.Check(v)
	}
}
