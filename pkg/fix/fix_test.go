package fix

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotLayout(t *testing.T) {
	// The record is bulk-copied through shared memory; its size and the
	// satellite table must stay 8-aligned.
	assert.Equal(t, uintptr(0), unsafe.Sizeof(Snapshot{})%8)
	assert.Equal(t, uintptr(32), unsafe.Sizeof(Satellite{}))
	assert.Equal(t, uintptr(0), unsafe.Offsetof(Snapshot{}.Satellites)%8)
}

func TestSnapshotValid(t *testing.T) {
	var s Snapshot
	assert.False(t, s.Valid())

	s.Mode = Mode2D
	s.Latitude = 37.371
	s.Longitude = -122.016
	assert.True(t, s.Valid())

	s.Mode = ModeNoFix
	assert.False(t, s.Valid())
}

func TestSnapshotString(t *testing.T) {
	s := Snapshot{
		Mode:              Mode3D,
		Latitude:          37.371,
		Longitude:         -122.016,
		AltMSL:            8.2,
		SatellitesUsed:    8,
		SatellitesVisible: 11,
	}
	s.Dop.HDOP = 0.9

	out := s.String()
	assert.Contains(t, out, "mode=3d")
	assert.Contains(t, out, "lat=37.371")
	assert.Contains(t, out, "lon=-122.016")
	assert.Contains(t, out, "sats=8/11")
	assert.NotContains(t, out, "(shm)")

	s.Origin = OriginSharedMemory
	assert.Contains(t, s.String(), "(shm)")
}

func TestOriginMarkers(t *testing.T) {
	assert.NotEqual(t, OriginLive, OriginSharedMemory)
}
