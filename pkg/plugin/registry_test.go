package plugin

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/espkit/pkg/codec"
	"github.com/ssargent/espkit/pkg/field"
	"github.com/ssargent/espkit/pkg/record"
	"github.com/ssargent/espkit/pkg/records"
)

func TestRegistry_Lookup(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(records.GLOBTag, records.DecodeGLOB))
	require.NoError(t, r.Placeholder(NPCTag))

	testCases := []struct {
		name   string
		tag    codec.Tag
		status Status
		hasFn  bool
	}{
		{name: "decoder", tag: records.GLOBTag, status: StatusDecoder, hasFn: true},
		{name: "placeholder", tag: NPCTag, status: StatusPlaceholder},
		{name: "unknown", tag: codec.TagOf("LSCR"), status: StatusUnknown},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fn, status := r.Lookup(tc.tag)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.hasFn, fn != nil)
		})
	}
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(records.GLOBTag, records.DecodeGLOB))
	assert.Error(t, r.Register(records.GLOBTag, records.DecodeGLOB))
	assert.Error(t, r.Placeholder(records.GLOBTag))
	assert.Error(t, r.Register(record.Group, records.DecodeGLOB))
	assert.Error(t, r.Register(records.MISCTag, nil))
}

func TestRegistry_TagsInRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(records.SCPTTag, records.DecodeSCPT))
	require.NoError(t, r.Placeholder(CELLTag))
	require.NoError(t, r.Register(records.BOOKTag, records.DecodeBOOK))

	assert.Equal(t, []codec.Tag{records.SCPTTag, CELLTag, records.BOOKTag}, r.Tags())
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Same(t, r, DefaultRegistry())

	tags := r.Tags()
	assert.Len(t, tags, 11)
	assert.Equal(t, records.TES4Tag, tags[0])

	for _, tag := range []codec.Tag{NPCTag, WEAPTag, CELLTag, REFRTag} {
		_, status := r.Lookup(tag)
		assert.Equal(t, StatusPlaceholder, status, tag.String())
	}
}

func TestRegistry_DecodePlaceholder(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Placeholder(CELLTag))

	_, status, err := r.decode(record.Header{Type: CELLTag}, nil, &records.Context{})
	assert.Equal(t, StatusPlaceholder, status)
	assert.ErrorIs(t, err, codec.ErrNotImplemented)
}

func TestRegistry_ConcurrentLookup(t *testing.T) {
	r := DefaultRegistry()
	w := codec.NewWriter()
	field.Put(w, records.EDID, codec.PutZString, "Kw")
	payload := w.Bytes()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec, status, err := r.decode(record.Header{Type: records.KYWDTag}, payload, &records.Context{})
			assert.NoError(t, err)
			assert.Equal(t, StatusDecoder, status)
			assert.Equal(t, "Kw", rec.(*records.KYWD).EditorID)
		}()
	}
	wg.Wait()
}
