// Package publish owns the state of one publication run: section trackers, TOC
// registries and backlink trackers. A Run replaces process-wide singletons; create one
// at the start of a build and drop it once the TOC is written.
package publish

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/specxref/internal/backlinks"
	"github.com/dgallion1/specxref/internal/failure"
	"github.com/dgallion1/specxref/internal/metrics"
	"github.com/dgallion1/specxref/internal/navigation"
	"github.com/dgallion1/specxref/internal/numbering"
	"github.com/dgallion1/specxref/internal/sectionnum"
	"github.com/dgallion1/specxref/internal/toc"
)

// ErrLinksSealed is returned when a link is recorded after SealLinks.
var ErrLinksSealed = errors.New("publish: links already sealed")

// Config carries the run settings.
type Config struct {
	Numbering   sectionnum.Config
	Duplicates  toc.DuplicatePolicy
	Disclosure  int
	StatsWindow time.Duration
	Dumper      failure.Dumper
}

type trackerKey struct {
	ig   string
	name string
}

// Run is the run-scoped context. It is not safe for concurrent use; callers that share
// a Run across goroutines serialize access.
type Run struct {
	ID        string
	StartedAt time.Time

	cfg      Config
	nav      *navigation.Index
	log      *slog.Logger
	rec      metrics.Recorder
	numberer *sectionnum.Numberer
	dumper   failure.Dumper

	trackers map[trackerKey]*numbering.Tracker
	core     *toc.Registry
	igs      map[string]*toc.Registry
	refs     map[string]*backlinks.Tracker
	barrier  *backlinks.Barrier
	stats    *PageStats
	pages    int
}

// NewRun starts a run over the navigation index nav.
func NewRun(cfg Config, nav *navigation.Index, log *slog.Logger, rec metrics.Recorder) *Run {
	if nav == nil {
		nav = navigation.New()
	}
	if log == nil {
		log = slog.Default()
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	if cfg.Dumper == nil {
		cfg.Dumper = failure.NopDumper{}
	}
	if cfg.Disclosure <= 0 {
		cfg.Disclosure = backlinks.DefaultDisclosure
	}

	id := uuid.NewString()
	log = log.With("run_id", id)
	return &Run{
		ID:        id,
		StartedAt: time.Now(),
		cfg:       cfg,
		nav:       nav,
		log:       log,
		rec:       rec,
		numberer:  sectionnum.New(cfg.Numbering, log, rec, cfg.Dumper),
		dumper:    cfg.Dumper,
		trackers:  make(map[trackerKey]*numbering.Tracker),
		core:      toc.NewRegistry(cfg.Duplicates),
		igs:       make(map[string]*toc.Registry),
		refs:      make(map[string]*backlinks.Tracker),
		barrier:   backlinks.NewBarrier(),
		stats:     NewPageStats(cfg.StatsWindow),
	}
}

// Tracker returns the section tracker of a logical page, creating it on first use.
// Pages sharing a logical name share one tracker.
func (r *Run) Tracker(logicalName, ig string) (*numbering.Tracker, error) {
	key := trackerKey{ig: ig, name: navigation.Key(logicalName)}
	if tr, ok := r.trackers[key]; ok {
		return tr, nil
	}
	prefix, err := r.nav.Lookup(ig, logicalName)
	if err != nil {
		return nil, err
	}
	tr, err := numbering.NewTracker(logicalName, ig, prefix)
	if err != nil {
		return nil, err
	}
	r.trackers[key] = tr
	return tr, nil
}

// Registry returns the TOC registry of a numbering namespace: the core registry for
// "" and an isolated registry per IG code.
func (r *Run) Registry(ig string) *toc.Registry {
	if ig == "" {
		return r.core
	}
	reg, ok := r.igs[ig]
	if !ok {
		reg = toc.NewRegistry(r.cfg.Duplicates)
		r.igs[ig] = reg
	}
	return reg
}

// References returns the backlink tracker of entity. Its Render fails until SealLinks.
func (r *Run) References(entity string) *backlinks.Tracker {
	tr, ok := r.refs[entity]
	if !ok {
		tr = backlinks.NewTracker(
			backlinks.WithBarrier(r.barrier),
			backlinks.WithDisclosure(r.cfg.Disclosure),
		)
		r.refs[entity] = tr
	}
	return tr
}

// Link records that targetID references entity.
func (r *Run) Link(entity string, typ backlinks.RefType, targetID, targetLink, display, hint string) error {
	if r.barrier.Sealed() {
		return fmt.Errorf("link %s -> %s: %w", targetID, entity, ErrLinksSealed)
	}
	r.References(entity).Link(typ, targetID, targetLink, display, hint)
	r.rec.IncReferenceLink(typ.String())
	return nil
}

// SealLinks signals that every link-producing pass has completed.
func (r *Run) SealLinks() {
	if r.barrier.Sealed() {
		return
	}
	r.barrier.Seal()
	r.log.Info("links sealed", "entities", len(r.refs))
}

func (r *Run) Sealed() bool { return r.barrier.Sealed() }

// TOC returns the core TOC entries in numeral order.
func (r *Run) TOC() []toc.Entry { return r.core.All() }

// IGTOC returns the entries of one IG namespace.
func (r *Run) IGTOC(ig string) []toc.Entry {
	if ig == "" {
		return r.TOC()
	}
	return r.Registry(ig).All()
}

// RenderTOC renders the master table of contents.
func (r *Run) RenderTOC() string { return toc.Render(r.TOC()) }

// Stats returns the page latency window.
func (r *Run) Stats() StatsSnapshot { return r.stats.Snapshot() }

// Summary describes the run state.
type Summary struct {
	ID         string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	Pages      int       `json:"pages"`
	TocEntries int       `json:"toc_entries"`
	Entities   int       `json:"entities"`
	Sealed     bool      `json:"links_sealed"`
}

func (r *Run) Summary() Summary {
	return Summary{
		ID:         r.ID,
		StartedAt:  r.StartedAt,
		Pages:      r.pages,
		TocEntries: r.core.Len(),
		Entities:   len(r.refs),
		Sealed:     r.barrier.Sealed(),
	}
}
