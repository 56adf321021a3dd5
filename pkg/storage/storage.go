// Package storage persists decoded records in a pebble index keyed by
// resolved FormID, so a load order can be queried without decoding it
// again.
//
// Keys:
//
//	rec/<plugin u32 BE><local u32 BE>        JSON Entry
//	eid/<lower editor id>\x00<plugin><local>  record key
//	run/<ksuid>                              JSON Run
//
// The eid/ keys are a secondary index by EditorID. An override that renames
// a record drops the old name's key.
//
// Records are written in load order, so a record overridden by a later
// plugin ends up holding the later plugin's version.
package storage

import (
	"encoding/binary"
	"encoding/json"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/pebble"
	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/espkit/pkg/codec"
	"github.com/ssargent/espkit/pkg/formid"
	"github.com/ssargent/espkit/pkg/plugin"
	"github.com/ssargent/espkit/pkg/records"
)

var (
	// ErrNotFound is returned for a FormID or run with no entry.
	ErrNotFound = errors.New("not found")

	recordPrefix = []byte("rec/")
	editorPrefix = []byte("eid/")
	runPrefix    = []byte("run/")
)

// Entry is one indexed record.
type Entry struct {
	Plugin   string          `json:"plugin"`
	Tag      codec.Tag       `json:"tag"`
	EditorID string          `json:"editor_id,omitempty"`
	FormID   formid.ID       `json:"form_id"`
	Checksum uint64          `json:"checksum"`
	Record   json.RawMessage `json:"record"`

	// Unencodable names the value, such as NaN, that kept Record from being
	// stored. Record is null and Checksum zero when it is set.
	Unencodable string `json:"unencodable,omitempty"`
}

// Run summarizes one indexing pass.
type Run struct {
	ID       ksuid.KSUID `json:"id"`
	Started  time.Time   `json:"started"`
	Finished *time.Time  `json:"finished,omitempty"`
	Plugins  []string    `json:"plugins,omitempty"`
	Records  int         `json:"records"`
	Unknown  int         `json:"unknown"`
	Failures int         `json:"failures"`
}

// Index is a pebble backed record index.
type Index struct {
	db *pebble.DB
}

// Open opens or creates the index in dir.
func Open(dir string) (*Index, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "open index %s", dir)
	}
	return &Index{db: db}, nil
}

// Close closes the index.
func (ix *Index) Close() error {
	return ix.db.Close()
}

func recordKey(id formid.ID) []byte {
	key := make([]byte, 0, len(recordPrefix)+8)
	key = append(key, recordPrefix...)
	key = binary.BigEndian.AppendUint32(key, id.Plugin)
	return binary.BigEndian.AppendUint32(key, id.Local)
}

func editorIDPrefix(editorID string) []byte {
	key := append([]byte(nil), editorPrefix...)
	key = append(key, strings.ToLower(editorID)...)
	return append(key, 0)
}

func editorKey(editorID string, id formid.ID) []byte {
	key := editorIDPrefix(editorID)
	key = binary.BigEndian.AppendUint32(key, id.Plugin)
	return binary.BigEndian.AppendUint32(key, id.Local)
}

// prefixEnd returns the first key past every key starting with p.
func prefixEnd(p []byte) []byte {
	end := append([]byte(nil), p...)
	end[len(end)-1]++
	return end
}

func runKey(id ksuid.KSUID) []byte {
	return append(append([]byte(nil), runPrefix...), id.Bytes()...)
}

// NewEntry builds the index entry for rec, which was decoded from file.
// A record holding a value JSON cannot express, such as a NaN float, still
// gets an entry with its keys and a null Record.
func NewEntry(file string, rec records.Record) (*Entry, error) {
	e := &Entry{
		Plugin:   file,
		Tag:      rec.RecordHeader().Type,
		EditorID: records.EditorIDOf(rec),
		FormID:   rec.FormID(),
	}
	body, err := json.Marshal(rec)
	var unsupported *json.UnsupportedValueError
	switch {
	case errors.As(err, &unsupported):
		e.Unencodable = unsupported.Str
	case err != nil:
		return nil, errors.Wrapf(err, "encode %s %s", e.Tag, e.FormID)
	default:
		e.Record = body
		e.Checksum = xxhash.Sum64(body)
	}
	if u, ok := rec.(*records.Unknown); ok {
		e.Checksum = u.Checksum
	}
	return e, nil
}

// Put indexes one record. A record without a FormID is rejected, since its
// key would collide with every other such record.
func (ix *Index) Put(file string, rec records.Record) error {
	if rec.FormID().IsNull() {
		return errors.Errorf("%s in %s has no FormID to index", rec.RecordHeader().Type, file)
	}
	e, err := NewEntry(file, rec)
	if err != nil {
		return err
	}
	b := ix.db.NewIndexedBatch()
	defer b.Close()
	if err := putEntry(b, e); err != nil {
		return err
	}
	return b.Commit(pebble.NoSync)
}

// PutFile indexes every record of f in one batch and returns the count.
// The file header and records without a FormID, such as unknown records
// whose FormID names a missing master, are not indexed.
func (ix *Index) PutFile(f *plugin.File) (int, error) {
	b := ix.db.NewIndexedBatch()
	defer b.Close()

	n := 0
	for _, rec := range f.Records {
		if _, ok := rec.(*records.TES4); ok || rec.FormID().IsNull() {
			continue
		}
		e, err := NewEntry(f.Name, rec)
		if err != nil {
			return 0, err
		}
		if err := putEntry(b, e); err != nil {
			return 0, errors.Wrapf(err, "index %s %s", e.Tag, e.FormID)
		}
		n++
	}
	if err := b.Commit(pebble.Sync); err != nil {
		return 0, errors.Wrapf(err, "commit %s", f.Name)
	}
	return n, nil
}

// putEntry writes e and its EditorID key. b must be indexed so that an
// earlier write in the same batch is seen as the previous version.
func putEntry(b *pebble.Batch, e *Entry) error {
	key := recordKey(e.FormID)
	prev, err := getEntry(b, key)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return err
	case prev.EditorID != "" && !strings.EqualFold(prev.EditorID, e.EditorID):
		if err := b.Delete(editorKey(prev.EditorID, prev.FormID), nil); err != nil {
			return err
		}
	}

	value, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if err := b.Set(key, value, nil); err != nil {
		return err
	}
	if e.EditorID == "" {
		return nil
	}
	return b.Set(editorKey(e.EditorID, e.FormID), key, nil)
}

func getEntry(r pebble.Reader, key []byte) (*Entry, error) {
	value, closer, err := r.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	var e Entry
	if err := json.Unmarshal(value, &e); err != nil {
		return nil, errors.Wrapf(err, "decode entry %x", key)
	}
	return &e, nil
}

// Get returns the entry for id.
func (ix *Index) Get(id formid.ID) (*Entry, error) {
	return getEntry(ix.db, recordKey(id))
}

// FindEditorID returns the entries named editorID, matched
// case-insensitively, ordered by FormID.
func (ix *Index) FindEditorID(editorID string) ([]Entry, error) {
	prefix := editorIDPrefix(editorID)
	entries := make([]Entry, 0)
	err := ix.scan(prefix, prefixEnd(prefix), func(value []byte) error {
		e, err := getEntry(ix.db, value)
		if err != nil {
			return err
		}
		entries = append(entries, *e)
		return nil
	})
	return entries, err
}

// Scan returns every entry whose FormID belongs to the plugin at load
// order index pluginIndex, ordered by local ID.
func (ix *Index) Scan(pluginIndex uint32) ([]Entry, error) {
	lower := recordKey(formid.ID{Plugin: pluginIndex})
	upper := recordKey(formid.ID{Plugin: pluginIndex + 1})
	if pluginIndex == ^uint32(0) {
		upper = prefixEnd(recordPrefix)
	}

	entries := make([]Entry, 0)
	err := ix.scan(lower, upper, func(value []byte) error {
		var e Entry
		if err := json.Unmarshal(value, &e); err != nil {
			return err
		}
		entries = append(entries, e)
		return nil
	})
	return entries, err
}

// BeginRun starts an indexing run over plugins.
func (ix *Index) BeginRun(plugins []string) (ksuid.KSUID, error) {
	run := Run{ID: ksuid.New(), Started: time.Now().UTC(), Plugins: plugins}
	return run.ID, ix.putRun(run)
}

// FinishRun stores the final summary of the run id. Counters in summary
// replace the stored ones; the start time is kept.
func (ix *Index) FinishRun(id ksuid.KSUID, summary Run) error {
	run, err := ix.getRun(id)
	if err != nil {
		return err
	}
	finished := time.Now().UTC()
	run.Finished = &finished
	run.Records = summary.Records
	run.Unknown = summary.Unknown
	run.Failures = summary.Failures
	return ix.putRun(*run)
}

// Runs lists every run, oldest first.
func (ix *Index) Runs() ([]Run, error) {
	runs := make([]Run, 0)
	err := ix.scan(runPrefix, prefixEnd(runPrefix), func(value []byte) error {
		var r Run
		if err := json.Unmarshal(value, &r); err != nil {
			return err
		}
		runs = append(runs, r)
		return nil
	})
	return runs, err
}

func (ix *Index) putRun(run Run) error {
	value, err := json.Marshal(run)
	if err != nil {
		return err
	}
	return ix.db.Set(runKey(run.ID), value, pebble.Sync)
}

func (ix *Index) getRun(id ksuid.KSUID) (*Run, error) {
	value, closer, err := ix.db.Get(runKey(id))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	var r Run
	if err := json.Unmarshal(value, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (ix *Index) scan(lower, upper []byte, fn func(value []byte) error) error {
	iter, err := ix.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		return err
	}
	for iter.First(); iter.Valid(); iter.Next() {
		if err := fn(iter.Value()); err != nil {
			iter.Close()
			return err
		}
	}
	if err := iter.Error(); err != nil {
		iter.Close()
		return err
	}
	return iter.Close()
}
