package paramstore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flightcore/fwautotune/pkg/paramstore"
)

func TestWriteFloat32ElidesSmallChanges(t *testing.T) {
	s := paramstore.NewMemoryStore()
	require.True(t, s.WriteFloat32("FF", 0.3), "first write always lands")

	wrote := s.WriteFloat32("FF", 0.3001) // |Δ|/|new| = 0.0001/0.3001 ≈ 0.0333% < 0.1%
	assert.False(t, wrote, "a change below the 0.1% threshold should be elided")
	assert.Equal(t, float32(0.3), s.ReadFloat32("FF"), "elided write must not move the stored value")
}

func TestWriteFloat32WritesBeyondThreshold(t *testing.T) {
	s := paramstore.NewMemoryStore()
	s.WriteFloat32("FF", 0.3)

	wrote := s.WriteFloat32("FF", 0.31) // |Δ|/|new| ≈ 3.2% > 0.1%
	assert.True(t, wrote, "a change above the 0.1% threshold should write")
	assert.Equal(t, float32(0.31), s.ReadFloat32("FF"))
}

func TestWriteFloat32AlwaysWritesNonPositive(t *testing.T) {
	s := paramstore.NewMemoryStore()
	s.WriteFloat32("FF", 0.3)

	wrote := s.WriteFloat32("FF", 0.3) // unchanged, but new <= 0 forces a write... except 0.3>0
	assert.False(t, wrote)

	wrote = s.WriteFloat32("FF", 0)
	assert.True(t, wrote, "new value <= 0 must always write regardless of delta")
}

func TestWriteInt16ElidesUnchangedValue(t *testing.T) {
	s := paramstore.NewMemoryStore()
	require.True(t, s.WriteInt16("RMAX_POS", 100))

	wrote := s.WriteInt16("RMAX_POS", 100)
	assert.False(t, wrote, "an unchanged integer must not be rewritten")

	wrote = s.WriteInt16("RMAX_POS", 101)
	assert.True(t, wrote, "any change, however small, must write for integers")
}
