// Package failure holds the two error kinds the cross-linking engine raises and the
// diagnostic dumper used when a page cannot be processed.
package failure

import (
	"errors"
	"fmt"
)

// ConfigurationError reports an upstream authoring or configuration defect, such as a
// logical page with no breadcrumb numeral. It is not recoverable for the run.
type ConfigurationError struct {
	Namespace   string // IG code; empty for the core corpus
	LogicalName string
	Reason      string
}

func (e *ConfigurationError) Error() string {
	ns := e.Namespace
	if ns == "" {
		ns = "core"
	}
	return fmt.Sprintf("configuration error: %s page %q: %s", ns, e.LogicalName, e.Reason)
}

// NoIndexingHome is the ConfigurationError raised when no breadcrumb exists for a page.
func NoIndexingHome(namespace, logicalName string) *ConfigurationError {
	return &ConfigurationError{
		Namespace:   namespace,
		LogicalName: logicalName,
		Reason:      "no indexing home",
	}
}

// StructureError reports malformed intermediate HTML or page structure that the engine
// refuses to process. It is fatal to the page.
type StructureError struct {
	Page     string
	Reason   string
	DumpPath string // set once the offending source has been written out
	DumpErr  error  // why the source could not be written out
	Err      error
}

func (e *StructureError) Error() string {
	msg := fmt.Sprintf("structure error in %s: %s", e.Page, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.DumpPath != "" {
		msg += " (source dumped to " + e.DumpPath + ")"
	}
	if e.DumpErr != nil {
		msg += " (source not dumped: " + e.DumpErr.Error() + ")"
	}
	return msg
}

func (e *StructureError) Unwrap() error {
	return e.Err
}

// Structure builds a StructureError for page.
func Structure(page, reason string, err error) *StructureError {
	return &StructureError{Page: page, Reason: reason, Err: err}
}

// IsConfiguration reports whether err wraps a ConfigurationError.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsStructure reports whether err wraps a StructureError.
func IsStructure(err error) bool {
	var se *StructureError
	return errors.As(err, &se)
}
