package numbering

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dgallion1/specxref/internal/failure"
)

// MaxLevel is the deepest heading level tracked (h6).
const MaxLevel = 6

// Tracker is the hierarchical counter of one logical document, seeded from the
// document's breadcrumb numeral. Pages that share the logical numbering sequence share
// one Tracker and call Start before each page.
type Tracker struct {
	name     string
	ig       string
	prefix   Numeral
	counters [MaxLevel]int
	anchor   string
}

// NewTracker creates the tracker for logical page name in namespace ig ("" for the core
// corpus). An empty prefix means the page has no place in the outline.
func NewTracker(name, ig, prefix string) (*Tracker, error) {
	if strings.TrimSpace(prefix) == "" {
		return nil, failure.NoIndexingHome(ig, name)
	}
	p, err := ParseNumeral(prefix)
	if err != nil {
		return nil, &failure.ConfigurationError{Namespace: ig, LogicalName: name, Reason: err.Error()}
	}
	return &Tracker{name: name, ig: ig, prefix: p}, nil
}

// Start resets the counters for a new output page. When anchorID is a numeral below the
// tracker's prefix (prefix "3", anchor "3.2"), numbering resumes under that section.
func (t *Tracker) Start(anchorID string) {
	t.counters = [MaxLevel]int{}
	t.anchor = anchorID

	n, err := ParseNumeral(anchorID)
	if err != nil || n == t.prefix || !n.HasPrefix(t.prefix) {
		return
	}
	extra := n.segments()[t.prefix.Depth():]
	for i := 0; i < len(extra) && i < MaxLevel; i++ {
		t.counters[i], _ = strconv.Atoi(extra[i])
	}
}

// Next returns the number of the next heading at level (1..6).
func (t *Tracker) Next(level int) (Numeral, error) {
	if level < 1 || level > MaxLevel {
		return "", fmt.Errorf("heading level %d out of range 1..%d", level, MaxLevel)
	}
	t.counters[level-1]++
	for i := level; i < MaxLevel; i++ {
		t.counters[i] = 0
	}

	var b strings.Builder
	b.WriteString(string(t.prefix))
	for i := 0; i < level; i++ {
		if t.counters[i] == 0 {
			continue
		}
		b.WriteByte('.')
		b.WriteString(strconv.Itoa(t.counters[i]))
	}
	return Numeral(b.String()), nil
}

func (t *Tracker) Name() string      { return t.name }
func (t *Tracker) Namespace() string { return t.ig }
func (t *Tracker) Prefix() Numeral   { return t.prefix }
func (t *Tracker) Anchor() string    { return t.anchor }

// IsIG reports whether the tracker numbers an implementation guide page.
func (t *Tracker) IsIG() bool { return t.ig != "" }
