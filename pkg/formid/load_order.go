package formid

import (
	"strings"

	"github.com/ssargent/espkit/pkg/codec"
)

// LoadOrder is the ordered, immutable list of plugins taking part in a load.
// Plugin names compare case-insensitively, as they do on the game's file
// systems.
type LoadOrder struct {
	names []string
	index map[string]uint32
}

// NewLoadOrder builds a load order. Duplicate names keep their first slot.
func NewLoadOrder(names ...string) *LoadOrder {
	lo := &LoadOrder{
		names: append([]string(nil), names...),
		index: make(map[string]uint32, len(names)),
	}
	for i, n := range names {
		key := strings.ToLower(n)
		if _, ok := lo.index[key]; !ok {
			lo.index[key] = uint32(i)
		}
	}
	return lo
}

// Index returns the load order position of name.
func (lo *LoadOrder) Index(name string) (uint32, bool) {
	i, ok := lo.index[strings.ToLower(name)]
	return i, ok
}

// Name returns the plugin at position i.
func (lo *LoadOrder) Name(i uint32) (string, bool) {
	if int(i) >= len(lo.names) {
		return "", false
	}
	return lo.names[i], true
}

// Names returns a copy of the plugin names in order.
func (lo *LoadOrder) Names() []string {
	return append([]string(nil), lo.names...)
}

// Len reports the number of plugins.
func (lo *LoadOrder) Len() int {
	return len(lo.names)
}

// Table is the per-file resolution table: the file's own load order index
// and the load order index of each declared master. It is built once, after
// the file header is parsed, and read-only afterwards, so one Table may be
// shared by any number of goroutines.
type Table struct {
	self    uint32
	masters []uint32
	names   []string
}

// NewTable resolves the master names of plugin self against lo. A master
// missing from the load order is ErrUnresolvedMaster.
func NewTable(self string, masters []string, lo *LoadOrder) (*Table, error) {
	selfIdx, ok := lo.Index(self)
	if !ok {
		return nil, &codec.Error{Kind: codec.KindUnresolvedMaster, Name: self}
	}
	t := &Table{
		self:    selfIdx,
		masters: make([]uint32, len(masters)),
		names:   append([]string(nil), masters...),
	}
	for i, m := range masters {
		idx, ok := lo.Index(m)
		if !ok {
			return nil, &codec.Error{Kind: codec.KindUnresolvedMaster, Name: m}
		}
		t.masters[i] = idx
	}
	return t, nil
}

// StandaloneTable is a table for a file decoded outside any load order: the
// file occupies the slot after its masters, and master i occupies slot i.
func StandaloneTable(masters []string) *Table {
	t := &Table{
		self:    uint32(len(masters)),
		masters: make([]uint32, len(masters)),
		names:   append([]string(nil), masters...),
	}
	for i := range masters {
		t.masters[i] = uint32(i)
	}
	return t
}

// Self returns the file's own load order index.
func (t *Table) Self() uint32 { return t.self }

// Masters returns the declared master names.
func (t *Table) Masters() []string { return append([]string(nil), t.names...) }

// Resolve resolves raw as read from this table's file.
func (t *Table) Resolve(raw uint32) (ID, error) {
	return Resolve(raw, t.self, t.masters)
}

// Decoder returns a field codec reading a raw FormID and resolving it.
func (t *Table) Decoder() codec.Decoder[ID] {
	return func(r *codec.Reader) (ID, error) {
		raw, err := r.U32()
		if err != nil {
			return ID{}, err
		}
		return t.Resolve(raw)
	}
}
