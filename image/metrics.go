package image

import (
	stderrors "errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wippyai/elf-notes/errors"
	"github.com/wippyai/elf-notes/note"
)

// Metrics counts image loading activity. A nil *Metrics records nothing.
// ImagesLoaded counts images parsed from ELF files; images served from a
// cache are counted by CacheHits instead.
type Metrics struct {
	ImagesLoaded   prometheus.Counter
	CacheHits      prometheus.Counter
	NotesDecoded   *prometheus.CounterVec
	SectionsFailed *prometheus.CounterVec
}

// NewMetrics creates the loader metrics and registers them on reg when reg is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ImagesLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "elfnotes_images_loaded_total",
			Help: "Total number of ELF images whose note sections were decoded",
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "elfnotes_cache_hits_total",
			Help: "Total number of images served from the decode cache",
		}),
		NotesDecoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "elfnotes_notes_decoded_total",
			Help: "Total number of note records decoded, by note type",
		}, []string{"type"}),
		SectionsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "elfnotes_sections_failed_total",
			Help: "Total number of note sections that failed to decode, by truncated field",
		}, []string{"field"}),
	}
	if reg != nil {
		reg.MustRegister(m.ImagesLoaded, m.CacheHits, m.NotesDecoded, m.SectionsFailed)
	}
	return m
}

func (m *Metrics) imageLoaded() {
	if m == nil {
		return
	}
	m.ImagesLoaded.Inc()
}

// CacheHit records an image taken from a cache instead of being loaded.
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.CacheHits.Inc()
}

func (m *Metrics) notesDecoded(entries []*note.Entry) {
	if m == nil {
		return
	}
	for _, e := range entries {
		m.NotesDecoded.WithLabelValues(typeLabel(e.Type())).Inc()
	}
}

func (m *Metrics) sectionFailed(err error) {
	if m == nil {
		return
	}
	field := "other"
	var tr *errors.TruncatedRecordError
	if stderrors.As(err, &tr) {
		field = tr.Field
	}
	m.SectionsFailed.WithLabelValues(field).Inc()
}

// typeLabel keeps label cardinality bounded: vendor types outside the known
// GNU set share one label.
func typeLabel(t note.Type) string {
	if t.Known() {
		return t.String()
	}
	return "other"
}
