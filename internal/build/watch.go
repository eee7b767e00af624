package build

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dgallion1/specxref/internal/failure"
	"github.com/dgallion1/specxref/internal/htmldoc"
)

// DefaultDebounce is the quiet period after the last change before a rebuild starts.
const DefaultDebounce = 300 * time.Millisecond

// Watch builds the manifest at file, then rebuilds whenever the manifest, the navigation
// file or a page source changes. Failed rebuilds are logged and watching continues.
// It returns when ctx is done.
func (b *Builder) Watch(ctx context.Context, file string, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer watcher.Close()

	rebuild := func() {
		m, err := LoadManifest(file)
		if err != nil {
			b.log.Warn("manifest invalid", "manifest", file, "error", err)
			return
		}
		for _, dir := range watchDirs(file, m) {
			if err := watcher.Add(dir); err != nil {
				b.log.Warn("watch add failed", "dir", dir, "error", err)
			}
		}
		if _, err := b.Build(ctx, m); err != nil {
			b.log.Warn("rebuild failed", "error", err)
		}
	}

	requests := make(chan struct{}, 1)
	var mu sync.Mutex
	var timer *time.Timer
	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounce, func() {
			select {
			case requests <- struct{}{}:
			default:
			}
		})
	}
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	if err := watcher.Add(filepath.Dir(file)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(file), err)
	}
	rebuild()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-requests:
			b.log.Info("change detected; rebuilding")
			rebuild()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !b.relevant(ev, file) {
				continue
			}
			b.log.Debug("file change detected", "path", ev.Name, "op", ev.Op.String())
			trigger()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			b.log.Warn("watcher error", "error", err)
		}
	}
}

// watchDirs lists the directories holding the manifest inputs.
func watchDirs(file string, m *Manifest) []string {
	seen := map[string]bool{filepath.Dir(file): true}
	dirs := []string{filepath.Dir(file)}
	add := func(p string) {
		d := filepath.Dir(p)
		if !seen[d] {
			seen[d] = true
			dirs = append(dirs, d)
		}
	}
	if m.NavigationFile != "" {
		add(m.resolve(m.NavigationFile))
	}
	for _, src := range m.SourcePaths() {
		add(src)
	}
	return dirs
}

func (b *Builder) relevant(ev fsnotify.Event, manifest string) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	base := filepath.Base(ev.Name)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".swp") {
		return false
	}
	// pages written by the build itself
	if b.opts.OutDir != "" && within(ev.Name, b.opts.OutDir) {
		return false
	}
	// sources dumped by a failing build
	if strings.HasSuffix(base, failure.DumpSuffix) {
		return false
	}
	if d, ok := b.opts.Run.Dumper.(failure.DirDumper); ok && d.Dir != "" && within(ev.Name, d.Dir) {
		return false
	}
	if filepath.Clean(ev.Name) == filepath.Clean(manifest) {
		return true
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".yaml", ".yml":
		return true
	}
	return htmldoc.IsSupportedExtension(base)
}

func within(name, dir string) bool {
	absName, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absDir, absName)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
