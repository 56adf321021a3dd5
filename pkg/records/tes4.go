package records

import (
	"github.com/ssargent/espkit/pkg/codec"
	"github.com/ssargent/espkit/pkg/field"
	"github.com/ssargent/espkit/pkg/formid"
	"github.com/ssargent/espkit/pkg/record"
)

// TES4Tag opens every plugin file.
var TES4Tag = codec.TagOf("TES4")

var (
	hedr = codec.TagOf("HEDR")
	snam = codec.TagOf("SNAM")
	mast = codec.TagOf("MAST")
	onam = codec.TagOf("ONAM")
	intv = codec.TagOf("INTV")
	incc = codec.TagOf("INCC")
)

// HeaderVersions are the HEDR versions this package reads.
var HeaderVersions = codec.NewVersions("file header", map[float32]string{
	0.94: "fallout3",
	0.95: "fallout4",
	1.0:  "fallout4-nextgen",
	1.7:  "skyrim",
	1.71: "skyrim-se",
})

// FileStats is the HEDR field.
type FileStats struct {
	Version      float32 `json:"version"`
	NumRecords   int32   `json:"num_records"`
	NextObjectID uint32  `json:"next_object_id"`
}

// Master is a declared master file and its recorded size.
type Master struct {
	Name string `json:"name"`
	Size uint64 `json:"size"`
}

// TES4 is the file header record. Its MAST fields establish the master
// list used to resolve every FormID in the file.
type TES4 struct {
	Base
	Stats            FileStats   `json:"stats"`
	Author           string      `json:"author,omitempty"`
	Description      string      `json:"description,omitempty"`
	Masters          []Master    `json:"masters"`
	Overrides        []formid.ID `json:"overrides,omitempty"`
	InternalVersion  *uint32     `json:"internal_version,omitempty"`
	IncrementalCount *uint32     `json:"incremental_count,omitempty"`

	table *formid.Table
}

// MasterNames lists the masters in slot order.
func (t *TES4) MasterNames() []string {
	names := make([]string, len(t.Masters))
	for i, m := range t.Masters {
		names[i] = m.Name
	}
	return names
}

// Table returns the resolution table built from the masters.
func (t *TES4) Table() *formid.Table { return t.table }

// DecodeTES4 decodes the file header.
func DecodeTES4(h record.Header, c *field.Cursor, ctx *Context) (Record, error) {
	base, err := newBase(h, &Context{})
	if err != nil {
		return nil, err
	}
	t := &TES4{Base: base}

	raw, err := field.Parse(c, hedr, codec.Struct[FileStats])
	if err != nil {
		return nil, err
	}
	if _, err := HeaderVersions.Check(raw.Version); err != nil {
		return nil, err
	}
	t.Stats = raw

	if t.Author, _, err = field.TryParse(c, CNAM, codec.ZString); err != nil {
		return nil, err
	}
	if t.Description, _, err = field.TryParse(c, snam, codec.ZString); err != nil {
		return nil, err
	}

	t.Masters = make([]Master, 0)
	for {
		name, ok, err := field.TryParse(c, mast, codec.ZString)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		size, err := field.Parse(c, DATA, codec.Uint64)
		if err != nil {
			return nil, err
		}
		t.Masters = append(t.Masters, Master{Name: name, Size: size})
	}

	if ctx.NewTable != nil {
		t.table, err = ctx.NewTable(t.MasterNames())
		if err != nil {
			return nil, err
		}
	} else {
		t.table = formid.StandaloneTable(t.MasterNames())
	}

	if t.Overrides, _, err = field.TryParse(c, onam, codec.UntilEOF(t.table.Decoder())); err != nil {
		return nil, err
	}
	if t.InternalVersion, err = field.TryParsePtr(c, intv, codec.Uint32); err != nil {
		return nil, err
	}
	if t.IncrementalCount, err = field.TryParsePtr(c, incc, codec.Uint32); err != nil {
		return nil, err
	}
	return finish(t, c)
}
