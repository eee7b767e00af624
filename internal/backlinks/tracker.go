// Package backlinks records "what references this entity" relationships while other
// entities are generated, and renders them once the entity itself is built.
package backlinks

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// DefaultDisclosure is the number of entries per type shown before the rest collapse.
const DefaultDisclosure = 6

// ErrLinksOpen is returned by Render on a tracker whose barrier is not sealed yet:
// rendering then would silently miss backlinks still to be recorded.
var ErrLinksOpen = errors.New("backlinks: render requested before all links were collected")

// Barrier is the run-scoped signal that every link-producing pass has completed.
type Barrier struct {
	sealed bool
}

func NewBarrier() *Barrier { return &Barrier{} }

// Seal marks link collection as complete.
func (b *Barrier) Seal() { b.sealed = true }

func (b *Barrier) Sealed() bool { return b.sealed }

type key struct {
	typ    RefType
	target string
}

type entry struct {
	target  string
	link    string
	display string
	hints   []string
}

// Tracker is the typed backlink multimap of one entity. It is populated by many
// unrelated generation passes and consumed once; it is not safe for concurrent use.
type Tracker struct {
	entries    map[key]*entry
	barrier    *Barrier
	disclosure int
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithBarrier gates Render on b being sealed.
func WithBarrier(b *Barrier) Option {
	return func(t *Tracker) { t.barrier = b }
}

// WithDisclosure sets how many entries per type are visible before collapsing.
func WithDisclosure(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.disclosure = n
		}
	}
}

// NewTracker creates an empty tracker.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		entries:    make(map[key]*entry),
		disclosure: DefaultDisclosure,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Link records that targetID references the tracker's entity. The first call for a
// (typ, targetID) pair fixes the display text and link; later calls only append hint.
// An empty hint is not recorded.
func (t *Tracker) Link(typ RefType, targetID, targetLink, display, hint string) {
	k := key{typ: typ, target: targetID}
	e, ok := t.entries[k]
	if !ok {
		e = &entry{target: targetID, link: targetLink, display: display}
		t.entries[k] = e
	}
	if hint != "" {
		e.hints = append(e.hints, hint)
	}
}

// Count is the total number of entries across all types.
func (t *Tracker) Count() int { return len(t.entries) }

// HasLink reports whether (typ, targetID) has been recorded.
func (t *Tracker) HasLink(typ RefType, targetID string) bool {
	_, ok := t.entries[key{typ: typ, target: targetID}]
	return ok
}

// Hints returns the hints recorded for (typ, targetID) in link order.
func (t *Tracker) Hints(typ RefType, targetID string) []string {
	e, ok := t.entries[key{typ: typ, target: targetID}]
	if !ok {
		return nil
	}
	return append([]string(nil), e.hints...)
}

// Render produces the backlink block of entityName under title.
func (t *Tracker) Render(title, entityName string) (string, error) {
	if t.barrier != nil && !t.barrier.Sealed() {
		return "", ErrLinksOpen
	}

	var b strings.Builder
	b.WriteString(`<div class="references"><p class="references-title">`)
	b.WriteString(html.EscapeString(title))
	b.WriteString(`</p>`)

	if len(t.entries) == 0 {
		b.WriteString(`<p class="references-none">No references to `)
		b.WriteString(html.EscapeString(entityName))
		b.WriteString(`.</p></div>`)
		return b.String(), nil
	}

	b.WriteString(`<ul>`)
	for _, typ := range RefTypes {
		list := t.byType(typ)
		if len(list) == 0 {
			continue
		}
		b.WriteString(`<li class="references-`)
		b.WriteString(strings.ToLower(typ.String()))
		b.WriteString(`">`)
		b.WriteString(html.EscapeString(typ.Label()))
		b.WriteString(`: `)
		for i, e := range list {
			if i == t.disclosure {
				b.WriteString(`<details class="more-references"><summary>and `)
				b.WriteString(strconv.Itoa(len(list) - t.disclosure))
				b.WriteString(` more</summary>`)
			} else if i > 0 {
				b.WriteString(`, `)
			}
			writeEntry(&b, e, entityName)
		}
		if len(list) > t.disclosure {
			b.WriteString(`</details>`)
		}
		b.WriteString(`</li>`)
	}
	b.WriteString(`</ul></div>`)
	return b.String(), nil
}

func (t *Tracker) byType(typ RefType) []*entry {
	var out []*entry
	for k, e := range t.entries {
		if k.typ == typ {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].display != out[j].display {
			return out[i].display < out[j].display
		}
		return out[i].target < out[j].target
	})
	return out
}

func writeEntry(b *strings.Builder, e *entry, entityName string) {
	title := ""
	if len(e.hints) > 0 {
		title = ` title="` + html.EscapeString(strings.Join(e.hints, ", ")) + `"`
	}
	if e.display == entityName {
		b.WriteString(`<span class="self-reference"` + title + `>itself</span>`)
		return
	}
	b.WriteString(`<a href="`)
	b.WriteString(html.EscapeString(e.link))
	b.WriteString(`"`)
	b.WriteString(title)
	b.WriteString(`>`)
	b.WriteString(html.EscapeString(e.display))
	b.WriteString(`</a>`)
}
