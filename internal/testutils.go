package internal

import (
	"sync"
	"testing"
	"time"

	"github.com/go-ble/ble"
	"gotest.tools/assert"

	"github.com/actuatorctl/actuator-sdk/pkg/models"
	"github.com/actuatorctl/actuator-sdk/pkg/util"
)

// TestListener records session callbacks for assertions.
type TestListener struct {
	mutex    sync.Mutex
	states   []models.ConnectionState
	failures []models.FailureReason
}

func (l *TestListener) OnStateChanged(s models.ConnectionState) {
	l.mutex.Lock()
	l.states = append(l.states, s)
	l.mutex.Unlock()
}

func (l *TestListener) OnFailure(r models.FailureReason) {
	l.mutex.Lock()
	l.failures = append(l.failures, r)
	l.mutex.Unlock()
}

func (l *TestListener) States() []models.ConnectionState {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	ret := make([]models.ConnectionState, len(l.states))
	copy(ret, l.states)
	return ret
}

func (l *TestListener) Failures() []models.FailureReason {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	ret := make([]models.FailureReason, len(l.failures))
	copy(ret, l.failures)
	return ret
}

func (l *TestListener) HasFailure(r models.FailureReason) bool {
	for _, f := range l.Failures() {
		if f == r {
			return true
		}
	}
	return false
}

// WaitFor polls until cond holds or the deadline passes. For asserting on
// state published by another goroutine.
func WaitFor(t *testing.T, cond func() bool) {
	t.Helper()
	err := util.Timeout(func() error {
		for !cond() {
			time.Sleep(time.Millisecond * 10)
		}
		return nil
	}, time.Second*3)
	assert.NilError(t, err)
}

type DummyAddr struct {
	Address string
}

func (addr DummyAddr) String() string { return addr.Address }

// DummyAdv is a scripted ble.Advertisement.
type DummyAdv struct {
	Address DummyAddr
	Name    string
	Rssi    int
}

func (a DummyAdv) LocalName() string              { return a.Name }
func (a DummyAdv) ManufacturerData() []byte       { return nil }
func (a DummyAdv) ServiceData() []ble.ServiceData { return nil }
func (a DummyAdv) Services() []ble.UUID           { return nil }
func (a DummyAdv) OverflowService() []ble.UUID    { return nil }
func (a DummyAdv) TxPowerLevel() int              { return 0 }
func (a DummyAdv) Connectable() bool              { return true }
func (a DummyAdv) SolicitedService() []ble.UUID   { return nil }
func (a DummyAdv) RSSI() int                      { return a.Rssi }
func (a DummyAdv) Addr() ble.Addr                 { return a.Address }

// GetTestServices builds one ble service with write-capable characteristics
// for the given UUIDs.
func GetTestServices(serviceUUID string, charUUIDs []string) []*ble.Service {
	u := ble.MustParse(serviceUUID)
	chars := []*ble.Characteristic{}
	for _, uuid := range charUUIDs {
		c := ble.NewCharacteristic(ble.MustParse(uuid))
		c.Property = ble.CharWrite | ble.CharWriteNR
		chars = append(chars, c)
	}
	return []*ble.Service{&ble.Service{UUID: u, Characteristics: chars}}
}
