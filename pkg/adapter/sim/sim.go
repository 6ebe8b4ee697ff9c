// Package sim provides a drop-in Adapter that fabricates radio events for
// environments without radio hardware. It honors the same single-channel
// event-ordering contract as the real adapter, which is what lets the session
// state machine be exercised without a peripheral in range.
package sim

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/actuatorctl/actuator-sdk/pkg/adapter"
	"github.com/actuatorctl/actuator-sdk/pkg/models"
)

const eventBacklog = 64

var errUnavailable = errors.New("radio not available")

// Peripheral describes one fabricated device. Characteristics are keyed by
// service UUID. The Fail flags script the corresponding pipeline step to
// report failure.
type Peripheral struct {
	ID                  string
	Name                string
	RSSI                int
	Services            []models.Service
	Characteristics     map[string][]models.Characteristic
	FailConnect         bool
	FailServices        bool
	FailCharacteristics bool
	HoldConnect         bool
}

// Write records one dispatched characteristic write.
type Write struct {
	Peripheral     string
	Characteristic string
	Payload        []byte
	WithResponse   bool
}

// Adapter fabricates discovery and connection events. All events are emitted
// synchronously from the method that causes them, so delivery order always
// matches call order.
type Adapter struct {
	mutex       sync.Mutex
	events      chan adapter.Event
	available   bool
	scanning    bool
	connected   string
	pending     map[string]bool
	peripherals map[string]*Peripheral
	order       []string
	calls       []string
	writes      []Write
}

// NewAdapter will return newly init struct, powered on and empty.
func NewAdapter() *Adapter {
	return &Adapter{
		events:      make(chan adapter.Event, eventBacklog),
		available:   true,
		pending:     map[string]bool{},
		peripherals: map[string]*Peripheral{},
	}
}

// AddPeripheral registers a fabricated device and returns its identifier,
// generating one when the script left it empty.
func (a *Adapter) AddPeripheral(p Peripheral) string {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Name == "" {
		p.Name = adapter.UnknownName
	}
	if _, ok := a.peripherals[p.ID]; !ok {
		a.order = append(a.order, p.ID)
	}
	a.peripherals[p.ID] = &p
	return p.ID
}

// SetAvailable flips radio power. Powering off drops the scan and any
// connection, exactly like a stack reset invalidating every handle.
func (a *Adapter) SetAvailable(available bool) {
	a.mutex.Lock()
	a.available = available
	if !available {
		a.scanning = false
		a.connected = ""
		a.pending = map[string]bool{}
	}
	a.mutex.Unlock()
	a.emit(adapter.PowerChanged{Available: available})
}

// Advertise re-announces a known peripheral with updated name and signal.
// No-op unless scanning, matching a real stack's callback gating.
func (a *Adapter) Advertise(id string, name string, rssi int) {
	a.mutex.Lock()
	p, ok := a.peripherals[id]
	if ok {
		p.Name = name
		p.RSSI = rssi
	}
	scanning := a.scanning
	a.mutex.Unlock()
	if ok && scanning {
		a.emit(adapter.Advertised{ID: id, Name: name, RSSI: &rssi})
	}
}

// CompleteConnect releases a connect held by HoldConnect. The event is
// emitted even if the attempt was cancelled in the meantime; late callbacks
// are the caller's problem, as with real hardware.
func (a *Adapter) CompleteConnect(id string, success bool) {
	a.mutex.Lock()
	if success {
		a.connected = id
	}
	delete(a.pending, id)
	a.mutex.Unlock()
	if success {
		a.emit(adapter.ConnectSucceeded{ID: id})
	} else {
		a.emit(adapter.ConnectFailed{ID: id})
	}
}

// DropConnection simulates the link going away out from under the caller.
func (a *Adapter) DropConnection(id string) {
	a.mutex.Lock()
	dropped := a.connected == id
	if dropped {
		a.connected = ""
	}
	a.mutex.Unlock()
	if dropped {
		a.emit(adapter.PeripheralDisconnected{ID: id})
	}
}

// Writes returns a copy of all recorded characteristic writes.
func (a *Adapter) Writes() []Write {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	ret := make([]Write, len(a.writes))
	copy(ret, a.writes)
	return ret
}

// Calls returns the recorded adapter operations in invocation order.
func (a *Adapter) Calls() []string {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	ret := make([]string, len(a.calls))
	copy(ret, a.calls)
	return ret
}

func (a *Adapter) Events() <-chan adapter.Event { return a.events }

func (a *Adapter) Available() bool {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return a.available
}

func (a *Adapter) StartScan() error {
	a.mutex.Lock()
	a.record("StartScan")
	if !a.available {
		a.mutex.Unlock()
		return errUnavailable
	}
	a.scanning = true
	order := make([]string, len(a.order))
	copy(order, a.order)
	a.mutex.Unlock()
	for _, id := range order {
		a.mutex.Lock()
		p := a.peripherals[id]
		name, rssi := p.Name, p.RSSI
		a.mutex.Unlock()
		a.emit(adapter.Advertised{ID: id, Name: name, RSSI: &rssi})
	}
	return nil
}

func (a *Adapter) StopScan() {
	a.mutex.Lock()
	a.record("StopScan")
	a.scanning = false
	a.mutex.Unlock()
}

func (a *Adapter) Connect(id string) {
	a.mutex.Lock()
	a.record("Connect:" + id)
	p, ok := a.peripherals[id]
	if !ok || !a.available || p.FailConnect {
		a.mutex.Unlock()
		a.emit(adapter.ConnectFailed{ID: id})
		return
	}
	if p.HoldConnect {
		a.pending[id] = true
		a.mutex.Unlock()
		return
	}
	a.connected = id
	a.mutex.Unlock()
	a.emit(adapter.ConnectSucceeded{ID: id})
}

func (a *Adapter) CancelConnect(id string) {
	a.mutex.Lock()
	a.record("CancelConnect:" + id)
	delete(a.pending, id)
	if a.connected == id {
		a.connected = ""
	}
	a.mutex.Unlock()
}

func (a *Adapter) Disconnect(id string) {
	a.mutex.Lock()
	a.record("Disconnect:" + id)
	disconnected := a.connected == id
	if disconnected {
		a.connected = ""
	}
	a.mutex.Unlock()
	if disconnected {
		a.emit(adapter.PeripheralDisconnected{ID: id})
	}
}

func (a *Adapter) DiscoverServices(id string) {
	a.mutex.Lock()
	a.record("DiscoverServices:" + id)
	p, ok := a.peripherals[id]
	if !ok || a.connected != id || p.FailServices {
		a.mutex.Unlock()
		a.emit(adapter.ServiceDiscoveryFailed{ID: id})
		return
	}
	services := make([]models.Service, len(p.Services))
	copy(services, p.Services)
	a.mutex.Unlock()
	a.emit(adapter.ServicesDiscovered{ID: id, Services: services})
}

func (a *Adapter) DiscoverCharacteristics(id string, service models.Service) {
	a.mutex.Lock()
	a.record("DiscoverCharacteristics:" + id + ":" + service.UUID)
	p, ok := a.peripherals[id]
	if !ok || a.connected != id || p.FailCharacteristics {
		a.mutex.Unlock()
		a.emit(adapter.CharacteristicDiscoveryFailed{ID: id, Service: service})
		return
	}
	chars := make([]models.Characteristic, len(p.Characteristics[service.UUID]))
	copy(chars, p.Characteristics[service.UUID])
	a.mutex.Unlock()
	a.emit(adapter.CharacteristicsDiscovered{ID: id, Service: service, Characteristics: chars})
}

func (a *Adapter) Write(id string, char models.Characteristic, payload []byte, withResponse bool) {
	a.mutex.Lock()
	a.record("Write:" + id)
	if a.connected != id {
		a.mutex.Unlock()
		a.emit(adapter.WriteFailed{ID: id})
		return
	}
	data := make([]byte, len(payload))
	copy(data, payload)
	a.writes = append(a.writes, Write{Peripheral: id, Characteristic: char.UUID, Payload: data, WithResponse: withResponse})
	a.mutex.Unlock()
}

func (a *Adapter) record(call string) {
	a.calls = append(a.calls, call)
}

func (a *Adapter) emit(e adapter.Event) {
	a.events <- e
}
