package failure

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Dumper persists the source of a page that failed structural checks.
type Dumper interface {
	Dump(page, src string) (string, error)
}

// NopDumper discards sources.
type NopDumper struct{}

func (NopDumper) Dump(string, string) (string, error) { return "", nil }

// DumpSuffix ends the name of every dumped source.
const DumpSuffix = ".dump.html"

// DirDumper writes each failing source to Dir as <page>.dump.html.
type DirDumper struct {
	Dir string
}

func (d DirDumper) Dump(page, src string) (string, error) {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create diagnostics dir: %w", err)
	}
	path := filepath.Join(d.Dir, dumpName(page))
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		return "", fmt.Errorf("write diagnostic dump: %w", err)
	}
	return path, nil
}

// Annotate dumps src through d when err carries a StructureError that has not been
// dumped yet, and records the dump location, or the reason the dump failed, on it.
// err is returned unchanged otherwise.
func Annotate(d Dumper, err error, src string) error {
	var se *StructureError
	if d == nil || !errors.As(err, &se) || se.DumpPath != "" || se.DumpErr != nil {
		return err
	}
	path, derr := d.Dump(se.Page, src)
	if derr != nil {
		se.DumpErr = derr
		return err
	}
	se.DumpPath = path
	return err
}

func dumpName(page string) string {
	name := filepath.Base(page)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name + DumpSuffix
}
