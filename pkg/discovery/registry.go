package discovery

import (
	"sync"

	"github.com/actuatorctl/actuator-sdk/pkg/models"
	"github.com/bradfitz/slice"
)

type entry struct {
	peripheral models.DiscoveredPeripheral
	seq        uint64
}

// Registry is the deduplicated set of advertised peripherals, keyed by the
// stack-assigned identifier. Repeated advertisements of the same peripheral
// coalesce into one latest-state entry. Entries are never expired on a timer;
// they persist until Clear.
type Registry struct {
	mutex    sync.RWMutex
	scanning bool
	entries  map[string]*entry
	seq      uint64
}

// NewRegistry will return newly init struct
func NewRegistry() *Registry {
	return &Registry{entries: map[string]*entry{}}
}

// Begin marks scanning active so advertisements are accepted.
func (r *Registry) Begin() {
	r.mutex.Lock()
	r.scanning = true
	r.mutex.Unlock()
}

// Stop halts further updates. Existing entries remain visible until Clear.
func (r *Registry) Stop() {
	r.mutex.Lock()
	r.scanning = false
	r.mutex.Unlock()
}

// Scanning reports whether advertisements are currently accepted.
func (r *Registry) Scanning() bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.scanning
}

// Clear drops all entries. Called on starting a new scan and on radio reset.
func (r *Registry) Clear() {
	r.mutex.Lock()
	r.entries = map[string]*entry{}
	r.mutex.Unlock()
}

// Upsert records one advertisement. Latest seen wins: an existing entry has
// its name and signal overwritten in place. Ignored while not scanning.
func (r *Registry) Upsert(id string, name string, rssi *int) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if !r.scanning {
		return
	}
	r.seq++
	r.entries[id] = &entry{models.DiscoveredPeripheral{ID: id, Name: name, RSSI: rssi}, r.seq}
}

// Name will get the last advertised name for an identifier
func (r *Registry) Name(id string) string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	if e, ok := r.entries[id]; ok {
		return e.peripheral.Name
	}
	return ""
}

// RSSI will get the last advertised signal strength for an identifier, nil
// when unknown
func (r *Registry) RSSI(id string) *int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	if e, ok := r.entries[id]; ok {
		return e.peripheral.RSSI
	}
	return nil
}

// Snapshot returns a copy of all entries ordered by most recent update last.
func (r *Registry) Snapshot() []models.DiscoveredPeripheral {
	r.mutex.RLock()
	tmp := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		tmp = append(tmp, e)
	}
	r.mutex.RUnlock()
	slice.Sort(tmp, func(i, j int) bool { return tmp[i].seq < tmp[j].seq })
	ret := make([]models.DiscoveredPeripheral, len(tmp))
	for i, e := range tmp {
		ret[i] = e.peripheral
	}
	return ret
}
