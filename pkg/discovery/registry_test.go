package discovery

import (
	"testing"

	"gotest.tools/assert"
)

func intPtr(v int) *int { return &v }

func TestUpsertCoalescesByIdentifier(t *testing.T) {
	r := NewRegistry()
	r.Begin()
	r.Upsert("aa", "Garage", intPtr(-70))
	r.Upsert("aa", "Garage Door", intPtr(-55))
	snap := r.Snapshot()
	assert.Equal(t, len(snap), 1)
	assert.Equal(t, snap[0].Name, "Garage Door")
	assert.Equal(t, *snap[0].RSSI, -55)
}

func TestUpsertIgnoredWhileNotScanning(t *testing.T) {
	r := NewRegistry()
	r.Upsert("aa", "Garage", nil)
	assert.Equal(t, len(r.Snapshot()), 0)
	r.Begin()
	r.Stop()
	r.Upsert("aa", "Garage", nil)
	assert.Equal(t, len(r.Snapshot()), 0)
}

func TestStopKeepsEntriesUntilClear(t *testing.T) {
	r := NewRegistry()
	r.Begin()
	r.Upsert("aa", "Garage", nil)
	r.Stop()
	assert.Equal(t, len(r.Snapshot()), 1)
	r.Clear()
	assert.Equal(t, len(r.Snapshot()), 0)
}

func TestSnapshotOrderedByUpdate(t *testing.T) {
	r := NewRegistry()
	r.Begin()
	r.Upsert("aa", "A", nil)
	r.Upsert("bb", "B", nil)
	r.Upsert("aa", "A", intPtr(-40))
	snap := r.Snapshot()
	assert.Equal(t, len(snap), 2)
	assert.Equal(t, snap[0].ID, "bb")
	assert.Equal(t, snap[1].ID, "aa")
}

func TestName(t *testing.T) {
	r := NewRegistry()
	r.Begin()
	r.Upsert("aa", "Garage", nil)
	assert.Equal(t, r.Name("aa"), "Garage")
	assert.Equal(t, r.Name("bb"), "")
}

func TestRSSI(t *testing.T) {
	r := NewRegistry()
	r.Begin()
	r.Upsert("aa", "Garage", intPtr(-62))
	r.Upsert("bb", "Shed", nil)
	assert.Equal(t, *r.RSSI("aa"), -62)
	assert.Check(t, r.RSSI("bb") == nil)
	assert.Check(t, r.RSSI("cc") == nil)
}
