package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder with Prometheus collectors.
type PrometheusRecorder struct {
	pageDuration *prom.HistogramVec
	pages        *prom.CounterVec
	headings     *prom.CounterVec
	tocEntries   *prom.CounterVec
	external     prom.Counter
	conformance  prom.Counter
	references   *prom.CounterVec
}

// NewPrometheusRecorder creates the collectors and registers them with reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		pageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "specxref",
			Name:      "page_duration_seconds",
			Help:      "Time spent numbering and cross-linking one page",
			Buckets:   prom.DefBuckets,
		}, []string{"namespace"}),
		pages: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "specxref",
			Name:      "pages_total",
			Help:      "Pages processed by outcome",
		}, []string{"namespace", "outcome"}),
		headings: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "specxref",
			Name:      "headings_numbered_total",
			Help:      "Headings that received a section number",
		}, []string{"namespace"}),
		tocEntries: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "specxref",
			Name:      "toc_entries_total",
			Help:      "Sections registered in a table of contents",
		}, []string{"namespace"}),
		external: prom.NewCounter(prom.CounterOpts{
			Namespace: "specxref",
			Name:      "external_links_total",
			Help:      "Hyperlinks flagged with the external-link icon",
		}),
		conformance: prom.NewCounter(prom.CounterOpts{
			Namespace: "specxref",
			Name:      "conformance_statements_total",
			Help:      "Inline conformance statements linked from a summary list",
		}),
		references: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "specxref",
			Name:      "reference_links_total",
			Help:      "Backlinks recorded by reference type",
		}, []string{"type"}),
	}
	reg.MustRegister(pr.pageDuration, pr.pages, pr.headings, pr.tocEntries, pr.external, pr.conformance, pr.references)
	return pr
}

func (p *PrometheusRecorder) ObservePage(namespace string, d time.Duration, outcome Outcome) {
	if p == nil {
		return
	}
	p.pageDuration.WithLabelValues(namespace).Observe(d.Seconds())
	p.pages.WithLabelValues(namespace, string(outcome)).Inc()
}

func (p *PrometheusRecorder) AddHeadings(namespace string, n int) {
	if p == nil || n <= 0 {
		return
	}
	p.headings.WithLabelValues(namespace).Add(float64(n))
}

func (p *PrometheusRecorder) AddTocEntries(namespace string, n int) {
	if p == nil || n <= 0 {
		return
	}
	p.tocEntries.WithLabelValues(namespace).Add(float64(n))
}

func (p *PrometheusRecorder) AddExternalLinks(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.external.Add(float64(n))
}

func (p *PrometheusRecorder) AddConformanceStatements(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.conformance.Add(float64(n))
}

func (p *PrometheusRecorder) IncReferenceLink(refType string) {
	if p == nil {
		return
	}
	p.references.WithLabelValues(refType).Inc()
}

// HTTPHandler serves the metrics of reg.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
