package numbering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/specxref/internal/failure"
)

func numberAll(t *testing.T, tr *Tracker, levels ...int) []Numeral {
	t.Helper()
	var out []Numeral
	for _, l := range levels {
		n, err := tr.Next(l)
		require.NoError(t, err)
		out = append(out, n)
	}
	return out
}

func TestTracker_OutlineRules(t *testing.T) {
	tr, err := NewTracker("resource", "", "3")
	require.NoError(t, err)
	tr.Start("")

	got := numberAll(t, tr, 1, 2, 2, 1, 2)
	assert.Equal(t, []Numeral{"3.1", "3.1.1", "3.1.2", "3.2", "3.2.1"}, got)
}

func TestTracker_DeeperLevelThenBack(t *testing.T) {
	tr, err := NewTracker("resource", "", "3")
	require.NoError(t, err)
	tr.Start("")

	got := numberAll(t, tr, 1, 2, 2, 3, 2)
	assert.Equal(t, []Numeral{"3.1", "3.1.1", "3.1.2", "3.1.2.1", "3.1.3"}, got)
}

func TestTracker_SkipsZeroSegments(t *testing.T) {
	tr, err := NewTracker("resource", "", "8.1")
	require.NoError(t, err)
	tr.Start("")

	got := numberAll(t, tr, 2, 2, 4)
	assert.Equal(t, []Numeral{"8.1.1", "8.1.2", "8.1.2.1"}, got)
}

func TestTracker_StartResets(t *testing.T) {
	tr, err := NewTracker("patient", "", "8.1")
	require.NoError(t, err)
	tr.Start("patient")
	numberAll(t, tr, 1, 2)

	tr.Start("patient-examples")
	assert.Equal(t, "patient-examples", tr.Anchor())
	assert.Equal(t, []Numeral{"8.1.1"}, numberAll(t, tr, 1))
}

func TestTracker_StartSeedsFromNumeralAnchor(t *testing.T) {
	tr, err := NewTracker("patient", "", "8.1")
	require.NoError(t, err)
	tr.Start("8.1.4")

	assert.Equal(t, []Numeral{"8.1.4.1", "8.1.4.2", "8.1.5"}, numberAll(t, tr, 2, 2, 1))

	// a numeral outside the prefix is only remembered
	tr.Start("9.2")
	assert.Equal(t, []Numeral{"8.1.1"}, numberAll(t, tr, 1))
}

func TestTracker_NoIndexingHome(t *testing.T) {
	_, err := NewTracker("orphan", "", "")
	require.Error(t, err)
	var ce *failure.ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "orphan", ce.LogicalName)
	assert.Equal(t, "no indexing home", ce.Reason)

	_, err = NewTracker("bad", "uscore", "x.1")
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "uscore", ce.Namespace)
}

func TestTracker_LevelOutOfRange(t *testing.T) {
	tr, err := NewTracker("resource", "uscore", "1")
	require.NoError(t, err)
	assert.True(t, tr.IsIG())

	_, err = tr.Next(0)
	assert.Error(t, err)
	_, err = tr.Next(7)
	assert.Error(t, err)
}
