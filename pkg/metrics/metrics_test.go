package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/espkit/pkg/codec"
)

func TestDecode_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewDecode(reg)

	gmst := codec.TagOf("GMST")
	m.RecordDecoded(gmst)
	m.RecordDecoded(gmst)
	m.RecordUnknown(codec.TagOf("WTHR"))
	m.RecordFailed(gmst, codec.KindExtraBytes)
	m.BytesInflated(100)
	m.BytesInflated(28)
	m.ObserveFile(25 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.recordsDecoded.WithLabelValues("GMST")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.recordsUnknown.WithLabelValues("WTHR")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.recordsFailed.WithLabelValues("GMST", "extra_bytes")))
	assert.Equal(t, 128.0, testutil.ToFloat64(m.bytesInflated))

	assert.Equal(t, 1, testutil.CollectAndCount(m.fileDuration))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 5)
}

func TestDecode_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewDecode(prometheus.NewRegistry())
		NewDecode(prometheus.NewRegistry())
	})
}

func TestDecode_NilIsNoop(t *testing.T) {
	var m *Decode
	assert.NotPanics(t, func() {
		m.RecordDecoded(codec.TagOf("GMST"))
		m.RecordUnknown(codec.TagOf("GMST"))
		m.RecordFailed(codec.TagOf("GMST"), codec.KindIO)
		m.BytesInflated(10)
		m.ObserveFile(time.Second)
	})
}
