package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderAppendsOnChange(t *testing.T) {
	r := NewRecorder()

	r.Record(1, 100, 120, "alice", "Manual update")
	r.Record(1, 120, 110, "bob", "Bulk update")

	entries := r.History(1)
	require.Len(t, entries, 2)
	// most recent first
	assert.Equal(t, 110.0, entries[0].NewPrice)
	assert.Equal(t, "bob", entries[0].Actor)
	assert.Equal(t, 120.0, entries[1].NewPrice)
	assert.Equal(t, "alice", entries[1].Actor)
}

func TestRecorderIgnoresNoOps(t *testing.T) {
	r := NewRecorder()

	r.Record(1, 100, 100, "alice", "Manual update")
	assert.Empty(t, r.History(1))
	assert.Zero(t, r.Len(1))
}

func TestRecorderEmptyWithoutHistory(t *testing.T) {
	r := NewRecorder()

	// no placeholder entries are ever synthesized
	entries := r.History(42)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestRecorderDrop(t *testing.T) {
	r := NewRecorder()

	r.Record(1, 100, 120, "alice", "Manual update")
	require.Equal(t, 1, r.Len(1))

	r.Drop(1)
	assert.Empty(t, r.History(1))
}
