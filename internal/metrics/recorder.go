// Package metrics exposes counters for the cross-linking engine. Components take a
// Recorder; NoopRecorder is the default and PrometheusRecorder backs the API server.
package metrics

import "time"

// Outcome labels page results.
type Outcome string

const (
	OutcomeSuccess       Outcome = "success"
	OutcomeStructure     Outcome = "structure_error"
	OutcomeConfiguration Outcome = "configuration_error"
	OutcomeFailed        Outcome = "failed"
)

// Recorder receives engine observations. Namespace is "core" or an IG code.
type Recorder interface {
	ObservePage(namespace string, d time.Duration, outcome Outcome)
	AddHeadings(namespace string, n int)
	AddTocEntries(namespace string, n int)
	AddExternalLinks(n int)
	AddConformanceStatements(n int)
	IncReferenceLink(refType string)
}

// NoopRecorder discards everything.
type NoopRecorder struct{}

func (NoopRecorder) ObservePage(string, time.Duration, Outcome) {}
func (NoopRecorder) AddHeadings(string, int)                    {}
func (NoopRecorder) AddTocEntries(string, int)                  {}
func (NoopRecorder) AddExternalLinks(int)                       {}
func (NoopRecorder) AddConformanceStatements(int)               {}
func (NoopRecorder) IncReferenceLink(string)                    {}

// Namespace labels an IG code, mapping the core corpus to "core".
func Namespace(ig string) string {
	if ig == "" {
		return "core"
	}
	return ig
}
