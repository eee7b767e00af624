package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/net/html"

	"github.com/dgallion1/specxref/internal/backlinks"
	"github.com/dgallion1/specxref/internal/failure"
	"github.com/dgallion1/specxref/internal/metrics"
	"github.com/dgallion1/specxref/internal/navigation"
	"github.com/dgallion1/specxref/internal/publish"
	"github.com/dgallion1/specxref/internal/toc"
)

// TOCFile is the name of the master TOC page written to the output directory.
const TOCFile = "toc.html"

// Options configures a Builder.
type Options struct {
	OutDir string
	Run    publish.Config
	// Navigation holds breadcrumbs shared by every manifest; a manifest's own entries
	// take precedence.
	Navigation *navigation.Index
}

// Builder runs manifests.
type Builder struct {
	opts Options
	log  *slog.Logger
	rec  metrics.Recorder
}

func New(opts Options, log *slog.Logger, rec metrics.Recorder) *Builder {
	if log == nil {
		log = slog.Default()
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Builder{opts: opts, log: log, rec: rec}
}

// Result summarizes a build.
type Result struct {
	RunID    string
	Pages    int
	Failed   []string
	Written  []string
	TOC      []toc.Entry
	Duration time.Duration
}

// Build executes m in three phases: every backlink is recorded and sealed, pages are
// numbered in manifest order, and the TOC pages are written last. A page that fails
// with a StructureError is skipped and reported at the end; any other error aborts.
func (b *Builder) Build(ctx context.Context, m *Manifest) (*Result, error) {
	start := time.Now()
	nav := m.Nav()
	if b.opts.Navigation != nil {
		nav = navigation.New()
		nav.Merge(b.opts.Navigation)
		nav.Merge(m.Nav())
	}
	run := publish.NewRun(b.opts.Run, nav, b.log, b.rec)
	res := &Result{RunID: run.ID}
	log := b.log.With("run_id", run.ID)

	for i, l := range m.Links {
		typ, err := backlinks.ParseRefType(l.Type)
		if err != nil {
			return res, fmt.Errorf("link %d: %w", i, err)
		}
		display := l.Display
		if display == "" {
			display = l.Target
		}
		if err := run.Link(l.Entity, typ, l.Target, l.Link, display, l.Hint); err != nil {
			return res, err
		}
	}
	run.SealLinks()
	log.Info("links recorded", "links", len(m.Links))

	var pageErrs []error
	for _, ps := range m.Pages {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		out, err := b.page(run, m, ps)
		res.Pages++
		if err != nil {
			if failure.IsStructure(err) {
				res.Failed = append(res.Failed, ps.Output)
				pageErrs = append(pageErrs, err)
				continue
			}
			return res, err
		}
		res.Written = append(res.Written, out)
	}

	tocs, err := b.writeTOCs(run, m)
	if err != nil {
		return res, err
	}
	res.Written = append(res.Written, tocs...)
	res.TOC = run.TOC()
	res.Duration = time.Since(start)

	log.Info("build complete",
		"pages", res.Pages,
		"failed", len(res.Failed),
		"toc_entries", len(res.TOC),
		"duration_ms", res.Duration.Milliseconds(),
	)
	if len(pageErrs) > 0 {
		return res, fmt.Errorf("%d of %d pages failed: %w", len(pageErrs), res.Pages, errors.Join(pageErrs...))
	}
	return res, nil
}

func (b *Builder) page(run *publish.Run, m *Manifest, ps PageSpec) (string, error) {
	src := m.resolve(ps.Source)
	content, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("read page source: %w", err)
	}
	// unknown statuses were rejected when the manifest was validated
	status, _ := toc.ParseStatus(ps.Status)

	out, err := run.ProcessPage(publish.Page{
		Source:      src,
		Content:     content,
		LogicalName: ps.Name,
		IG:          ps.IG,
		Anchor:      ps.Anchor,
		Link:        ps.Output,
		Level:       ps.level(),
		Status:      status,
		Conformance: ps.Conformance,
	})
	if err != nil {
		return "", err
	}
	return b.write(ps.Output, out.HTML)
}

func (b *Builder) writeTOCs(run *publish.Run, m *Manifest) ([]string, error) {
	var written []string
	p, err := b.write(TOCFile, tocPage("Table of Contents", run.RenderTOC()))
	if err != nil {
		return nil, err
	}
	written = append(written, p)

	igs := map[string]bool{}
	for _, ps := range m.Pages {
		if ps.IG != "" {
			igs[ps.IG] = true
		}
	}
	codes := make([]string, 0, len(igs))
	for ig := range igs {
		codes = append(codes, ig)
	}
	sort.Strings(codes)
	for _, ig := range codes {
		body := toc.Render(run.IGTOC(ig))
		p, err := b.write(filepath.Join(ig, TOCFile), tocPage(ig+" Table of Contents", body))
		if err != nil {
			return nil, err
		}
		written = append(written, p)
	}
	return written, nil
}

func (b *Builder) write(rel, content string) (string, error) {
	dst := filepath.Join(b.opts.OutDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(dst, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", rel, err)
	}
	b.log.Debug("wrote page", "path", dst)
	return dst, nil
}

func tocPage(title, body string) string {
	t := html.EscapeString(title)
	return "<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"/><title>" + t +
		"</title></head><body><h1>" + t + "</h1>\n" + body + "\n</body></html>\n"
}
