// Package plugin decodes a whole plugin file: the TES4 file header, then
// every record and group after it, dispatching each record to the decoder
// registered for its tag.
//
// # Basic Usage
//
//	data, err := os.ReadFile("Dawnguard.esm")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	file, err := plugin.Decode("Dawnguard.esm", data, plugin.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, rec := range file.Records {
//	    fmt.Println(rec.RecordHeader().Type, rec.FormID())
//	}
//
// # Failure Policy
//
// By default the first record that fails to decode aborts the file and is
// returned as a *RecordError. With Options.ContinueOnError the failure is
// collected in File.Failures and the walk moves on to the next record.
// Failures that leave the stream position unknown (a truncated header, a
// payload or group running past its container) always abort.
package plugin

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/ssargent/espkit/pkg/codec"
	"github.com/ssargent/espkit/pkg/field"
	"github.com/ssargent/espkit/pkg/formid"
	"github.com/ssargent/espkit/pkg/metrics"
	"github.com/ssargent/espkit/pkg/record"
	"github.com/ssargent/espkit/pkg/records"
)

// Options controls a file decode. The zero value decodes standalone with
// the default registry and aborts on the first failure.
type Options struct {
	// ContinueOnError collects record failures instead of aborting.
	ContinueOnError bool
	// LoadOrder resolves FormIDs to absolute load order indices. Without it
	// the file resolves against its own masters only.
	LoadOrder *formid.LoadOrder
	Registry  *Registry
	Logger    *slog.Logger
	Metrics   *metrics.Decode
}

func (o Options) withDefaults() Options {
	if o.Registry == nil {
		o.Registry = DefaultRegistry()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// UnknownMarker notes a record kept as opaque data, so callers can report
// coverage gaps.
type UnknownMarker struct {
	Tag    codec.Tag `json:"tag"`
	Offset int       `json:"offset"`
	FormID formid.ID `json:"form_id"`
}

// RecordError is a record that failed to decode.
type RecordError struct {
	Tag    codec.Tag `json:"tag"`
	Offset int       `json:"offset"`
	FormID uint32    `json:"form_id"`
	Err    error     `json:"-"`
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s %08X at offset %d: %v", e.Tag, e.FormID, e.Offset, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// Kind returns the codec error kind of the cause.
func (e *RecordError) Kind() codec.Kind { return codec.KindOf(e.Err) }

// Group is a GRUP and everything nested in it.
type Group struct {
	Header  record.GroupHeader `json:"header"`
	Offset  int                `json:"offset"`
	Records []records.Record   `json:"-"`
	Groups  []*Group           `json:"groups,omitempty"`
}

// File is a decoded plugin.
type File struct {
	Name   string        `json:"name"`
	Header *records.TES4 `json:"header"`
	// Masters lists the declared masters in slot order.
	Masters []string      `json:"masters"`
	Table   *formid.Table `json:"-"`
	// Records holds every decoded record in file order, the header first,
	// whatever group it sits in.
	Records  []records.Record `json:"-"`
	Groups   []*Group         `json:"groups,omitempty"`
	Unknown  []UnknownMarker  `json:"unknown,omitempty"`
	Failures []RecordError    `json:"failures,omitempty"`
}

// DecodeFile reads path and decodes it under its base name.
func DecodeFile(path string, opts Options) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(&codec.Error{Kind: codec.KindIO, Name: path, Msg: err.Error()}, "read plugin")
	}
	return Decode(filepath.Base(path), data, opts)
}

// Decode decodes the plugin held in data. name is the file's own name, used
// to find it in opts.LoadOrder.
func Decode(name string, data []byte, opts Options) (*File, error) {
	opts = opts.withDefaults()
	start := time.Now()
	defer func() { opts.Metrics.ObserveFile(time.Since(start)) }()

	r := codec.NewReader(data)
	tag, err := r.Tag()
	if err != nil || tag != records.TES4Tag {
		return nil, &codec.Error{Kind: codec.KindMissingFileHeader, Tag: tag, Name: name, Msg: "first record is not TES4"}
	}
	h, payload, err := record.ReadRecord(r, tag)
	if err != nil {
		return nil, errors.Wrapf(err, "%s file header", name)
	}

	ctx := &records.Context{Localized: h.Flags.Localized()}
	if opts.LoadOrder != nil {
		ctx.NewTable = func(masters []string) (*formid.Table, error) {
			return formid.NewTable(name, masters, opts.LoadOrder)
		}
	}
	rec, err := records.DecodeTES4(h, field.NewCursor(payload), ctx)
	if err != nil {
		return nil, &RecordError{Tag: tag, Offset: 0, FormID: h.FormID, Err: err}
	}
	header := rec.(*records.TES4)
	ctx.Table = header.Table()

	f := &File{
		Name:    name,
		Header:  header,
		Masters: header.MasterNames(),
		Table:   header.Table(),
		Records: []records.Record{header},
	}
	w := &walker{file: f, ctx: ctx, opts: opts}
	if err := w.walk(r, 0, nil); err != nil {
		return nil, err
	}

	opts.Logger.Debug("decoded plugin",
		"plugin", name,
		"records", len(f.Records),
		"unknown", len(f.Unknown),
		"failures", len(f.Failures))
	return f, nil
}

type walker struct {
	file *File
	ctx  *records.Context
	opts Options
}

// walk consumes records and groups until r is exhausted. base is the file
// offset of r's first byte.
func (w *walker) walk(r *codec.Reader, base int, parent *Group) error {
	for r.Remaining() > 0 {
		offset := base + r.Offset()
		tag, err := r.Tag()
		if err != nil {
			return errors.Wrapf(err, "record tag at offset %d", offset)
		}
		if tag == record.Group {
			err = w.group(r, offset, parent)
		} else {
			err = w.record(r, tag, offset, parent)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) group(r *codec.Reader, offset int, parent *Group) error {
	gh, err := record.ReadGroupHeader(r)
	if err != nil {
		return errors.Wrapf(err, "group at offset %d", offset)
	}
	size, err := gh.ContentSize()
	if err != nil {
		return errors.Wrapf(err, "group at offset %d", offset)
	}
	if size > r.Remaining() {
		return errors.Wrapf(&codec.Error{
			Kind: codec.KindMalformedGroup,
			Tag:  gh.LabelTag(),
			Want: size,
			Have: r.Remaining(),
			Msg:  "group overruns its container",
		}, "group at offset %d", offset)
	}
	contents, _ := r.ReadExact(size)

	g := &Group{Header: gh, Offset: offset}
	if parent == nil {
		w.file.Groups = append(w.file.Groups, g)
	} else {
		parent.Groups = append(parent.Groups, g)
	}
	return w.walk(codec.NewReader(contents), offset+record.HeaderSize, g)
}

func (w *walker) record(r *codec.Reader, tag codec.Tag, offset int, parent *Group) error {
	h, err := record.ReadHeader(r, tag)
	if err != nil {
		return errors.Wrapf(err, "record at offset %d", offset)
	}
	raw, err := r.ReadExact(int(h.Size))
	if err != nil {
		return errors.Wrapf(err, "%s %08X at offset %d payload", tag, h.FormID, offset)
	}

	rec, status, err := w.decode(h, raw)
	if err != nil {
		return w.fail(&RecordError{Tag: tag, Offset: offset, FormID: h.FormID, Err: err})
	}

	if status == StatusUnknown {
		w.opts.Metrics.RecordUnknown(tag)
		w.file.Unknown = append(w.file.Unknown, UnknownMarker{Tag: tag, Offset: offset, FormID: rec.FormID()})
	} else {
		w.opts.Metrics.RecordDecoded(tag)
	}
	w.file.Records = append(w.file.Records, rec)
	if parent != nil {
		parent.Records = append(parent.Records, rec)
	}
	return nil
}

func (w *walker) decode(h record.Header, raw []byte) (records.Record, Status, error) {
	payload, err := record.Payload(h, raw)
	if err != nil {
		// Nothing reads an unmodelled payload, so a bad stream is kept as stored.
		if _, status := w.opts.Registry.Lookup(h.Type); status == StatusUnknown {
			w.opts.Logger.Warn("keeping packed payload of unknown record",
				"plugin", w.file.Name, "tag", h.Type.String(), "form_id", h.FormID, "error", err)
			u := records.NewUnknown(h, raw, w.ctx)
			u.Packed = true
			return u, StatusUnknown, nil
		}
		return nil, StatusUnknown, err
	}
	if h.Flags.Compressed() {
		w.opts.Metrics.BytesInflated(len(payload))
	}
	return w.opts.Registry.decode(h, payload, w.ctx)
}

func (w *walker) fail(e *RecordError) error {
	w.opts.Metrics.RecordFailed(e.Tag, e.Kind())
	if !w.opts.ContinueOnError {
		return e
	}
	w.opts.Logger.Warn("skipping record",
		"plugin", w.file.Name,
		"tag", e.Tag.String(),
		"form_id", e.FormID,
		"offset", e.Offset,
		"error", e.Err)
	w.file.Failures = append(w.file.Failures, *e)
	return nil
}
