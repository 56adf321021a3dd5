// Package metrics exposes Prometheus counters for plugin decoding.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ssargent/espkit/pkg/codec"
)

// Decode holds the decode metrics. A nil *Decode is valid and records
// nothing.
type Decode struct {
	recordsDecoded *prometheus.CounterVec
	recordsUnknown *prometheus.CounterVec
	recordsFailed  *prometheus.CounterVec
	bytesInflated  prometheus.Counter
	fileDuration   prometheus.Histogram
}

// NewDecode creates the decode metrics and registers them with reg.
func NewDecode(reg prometheus.Registerer) *Decode {
	factory := promauto.With(reg)
	return &Decode{
		recordsDecoded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "espkit_records_decoded_total",
				Help: "Total number of records decoded into a typed variant",
			},
			[]string{"tag"},
		),

		recordsUnknown: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "espkit_records_unknown_total",
				Help: "Total number of records preserved as opaque unknown records",
			},
			[]string{"tag"},
		),

		recordsFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "espkit_records_failed_total",
				Help: "Total number of records that failed to decode",
			},
			[]string{"tag", "kind"},
		),

		bytesInflated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "espkit_bytes_inflated_total",
				Help: "Total number of bytes produced by record decompression",
			},
		),

		fileDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "espkit_file_decode_duration_seconds",
				Help:    "Whole file decode duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

// RecordDecoded counts a record decoded by a registered decoder.
func (m *Decode) RecordDecoded(tag codec.Tag) {
	if m == nil {
		return
	}
	m.recordsDecoded.WithLabelValues(tag.String()).Inc()
}

// RecordUnknown counts a record with no registered decoder.
func (m *Decode) RecordUnknown(tag codec.Tag) {
	if m == nil {
		return
	}
	m.recordsUnknown.WithLabelValues(tag.String()).Inc()
}

// RecordFailed counts a failed record by tag and error kind.
func (m *Decode) RecordFailed(tag codec.Tag, kind codec.Kind) {
	if m == nil {
		return
	}
	m.recordsFailed.WithLabelValues(tag.String(), kind.String()).Inc()
}

// BytesInflated adds the output size of one decompression.
func (m *Decode) BytesInflated(n int) {
	if m == nil {
		return
	}
	m.bytesInflated.Add(float64(n))
}

// ObserveFile records how long one file took to decode.
func (m *Decode) ObserveFile(d time.Duration) {
	if m == nil {
		return
	}
	m.fileDuration.Observe(d.Seconds())
}
