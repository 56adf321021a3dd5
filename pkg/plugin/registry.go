package plugin

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/ssargent/espkit/pkg/codec"
	"github.com/ssargent/espkit/pkg/field"
	"github.com/ssargent/espkit/pkg/record"
	"github.com/ssargent/espkit/pkg/records"
)

// Status is what a Registry knows about a tag.
type Status int

const (
	// StatusUnknown means no entry: the record is kept as opaque data.
	StatusUnknown Status = iota
	// StatusDecoder means a decoder is registered.
	StatusDecoder
	// StatusPlaceholder means the tag is modelled but its decoder is not
	// written yet. Decoding it fails with ErrNotImplemented.
	StatusPlaceholder
)

func (s Status) String() string {
	switch s {
	case StatusDecoder:
		return "decoder"
	case StatusPlaceholder:
		return "placeholder"
	default:
		return "unknown"
	}
}

// Registry maps record tags to decoders. It is filled once at startup and
// only read afterwards; lookups are safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	decoders map[codec.Tag]records.DecodeFunc
	order    []codec.Tag
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{decoders: make(map[codec.Tag]records.DecodeFunc)}
}

// Register adds the decoder for tag. A tag can be registered once.
func (r *Registry) Register(tag codec.Tag, fn records.DecodeFunc) error {
	if fn == nil {
		return errors.Errorf("nil decoder for %s", tag)
	}
	return r.add(tag, fn)
}

// Placeholder marks tag as modelled but not yet decodable.
func (r *Registry) Placeholder(tag codec.Tag) error {
	return r.add(tag, nil)
}

func (r *Registry) add(tag codec.Tag, fn records.DecodeFunc) error {
	if tag == record.Group {
		return errors.Errorf("%s is reserved for groups", tag)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.decoders[tag]; exists {
		return errors.Errorf("decoder for %s already registered", tag)
	}
	r.decoders[tag] = fn
	r.order = append(r.order, tag)
	return nil
}

// Lookup returns the decoder for tag and its status. The decoder is nil
// unless the status is StatusDecoder.
func (r *Registry) Lookup(tag codec.Tag) (records.DecodeFunc, Status) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.decoders[tag]
	switch {
	case !ok:
		return nil, StatusUnknown
	case fn == nil:
		return nil, StatusPlaceholder
	default:
		return fn, StatusDecoder
	}
}

// Tags lists registered tags, placeholders included, in registration order.
func (r *Registry) Tags() []codec.Tag {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]codec.Tag(nil), r.order...)
}

// decode runs the registered decoder for h. Placeholders fail with
// ErrNotImplemented.
func (r *Registry) decode(h record.Header, payload []byte, ctx *records.Context) (records.Record, Status, error) {
	fn, status := r.Lookup(h.Type)
	switch status {
	case StatusUnknown:
		return records.NewUnknown(h, payload, ctx), status, nil
	case StatusPlaceholder:
		return nil, status, codec.NotImplemented(h.Type)
	}
	if h.Flags.Deleted() && len(payload) == 0 {
		rec, err := records.NewDeleted(h, ctx)
		return rec, status, err
	}
	rec, err := fn(h, field.NewCursor(payload), ctx)
	return rec, status, err
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Placeholder tags: record types the decoder set is expected to cover but
// does not yet.
var (
	NPCTag  = codec.TagOf("NPC_")
	WEAPTag = codec.TagOf("WEAP")
	CELLTag = codec.TagOf("CELL")
	REFRTag = codec.TagOf("REFR")
)

// DefaultRegistry returns the shared registry holding every decoder in
// package records plus the placeholder tags. It is built on first use.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		r := NewRegistry()
		for _, e := range []struct {
			tag codec.Tag
			fn  records.DecodeFunc
		}{
			{records.TES4Tag, records.DecodeTES4},
			{records.GMSTTag, records.DecodeGMST},
			{records.GLOBTag, records.DecodeGLOB},
			{records.KYWDTag, records.DecodeKYWD},
			{records.MISCTag, records.DecodeMISC},
			{records.BOOKTag, records.DecodeBOOK},
			{records.SCPTTag, records.DecodeSCPT},
		} {
			if err := r.Register(e.tag, e.fn); err != nil {
				panic(err)
			}
		}
		for _, tag := range []codec.Tag{NPCTag, WEAPTag, CELLTag, REFRTag} {
			if err := r.Placeholder(tag); err != nil {
				panic(err)
			}
		}
		defaultRegistry = r
	})
	return defaultRegistry
}
