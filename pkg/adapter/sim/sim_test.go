package sim

import (
	"testing"

	"gotest.tools/assert"

	"github.com/actuatorctl/actuator-sdk/pkg/adapter"
	"github.com/actuatorctl/actuator-sdk/pkg/models"
)

const (
	testServiceUUID = "000A0000-0001-1000-8000-00805F9B34FB"
	testCharUUID    = "000A0000-0002-1000-8000-00805F9B34FB"
)

func testPeripheral() Peripheral {
	return Peripheral{
		Name:     "Garage Door",
		RSSI:     -55,
		Services: []models.Service{{UUID: testServiceUUID}},
		Characteristics: map[string][]models.Characteristic{
			testServiceUUID: {
				{UUID: testCharUUID, Service: testServiceUUID, Properties: models.Properties{WriteWithoutResponse: true}},
			},
		},
	}
}

func next(t *testing.T, a *Adapter) adapter.Event {
	select {
	case e := <-a.Events():
		return e
	default:
		t.Fatal("no event queued")
		return nil
	}
}

func TestAddPeripheralGeneratesID(t *testing.T) {
	a := NewAdapter()
	id := a.AddPeripheral(Peripheral{})
	assert.Check(t, id != "")
	other := a.AddPeripheral(Peripheral{})
	assert.Check(t, id != other)
}

func TestAddPeripheralDefaultsName(t *testing.T) {
	a := NewAdapter()
	id := a.AddPeripheral(Peripheral{})
	assert.NilError(t, a.StartScan())
	adv := next(t, a).(adapter.Advertised)
	assert.Equal(t, adv.ID, id)
	assert.Equal(t, adv.Name, adapter.UnknownName)
}

func TestScanEmitsInRegistrationOrder(t *testing.T) {
	a := NewAdapter()
	first := a.AddPeripheral(testPeripheral())
	second := a.AddPeripheral(testPeripheral())
	assert.NilError(t, a.StartScan())
	assert.Equal(t, next(t, a).(adapter.Advertised).ID, first)
	assert.Equal(t, next(t, a).(adapter.Advertised).ID, second)
}

func TestScanFailsWhileUnavailable(t *testing.T) {
	a := NewAdapter()
	a.SetAvailable(false)
	next(t, a) // PowerChanged
	assert.Check(t, a.StartScan() != nil)
}

func TestAdvertiseGatedByScanning(t *testing.T) {
	a := NewAdapter()
	id := a.AddPeripheral(testPeripheral())
	a.Advertise(id, "Garage Door", -40)
	select {
	case e := <-a.Events():
		t.Fatalf("unexpected event %T", e)
	default:
	}
	assert.NilError(t, a.StartScan())
	next(t, a)
	a.Advertise(id, "Garage Door", -40)
	adv := next(t, a).(adapter.Advertised)
	assert.Equal(t, *adv.RSSI, -40)
}

func TestConnectAndDiscoverPipeline(t *testing.T) {
	a := NewAdapter()
	id := a.AddPeripheral(testPeripheral())
	a.Connect(id)
	assert.Equal(t, next(t, a).(adapter.ConnectSucceeded).ID, id)
	a.DiscoverServices(id)
	svcs := next(t, a).(adapter.ServicesDiscovered)
	assert.Equal(t, len(svcs.Services), 1)
	a.DiscoverCharacteristics(id, svcs.Services[0])
	chars := next(t, a).(adapter.CharacteristicsDiscovered)
	assert.Equal(t, len(chars.Characteristics), 1)
	assert.Equal(t, chars.Characteristics[0].UUID, testCharUUID)
}

func TestHoldConnectDefersOutcome(t *testing.T) {
	a := NewAdapter()
	p := testPeripheral()
	p.HoldConnect = true
	id := a.AddPeripheral(p)
	a.Connect(id)
	select {
	case e := <-a.Events():
		t.Fatalf("unexpected event %T", e)
	default:
	}
	a.CompleteConnect(id, true)
	assert.Equal(t, next(t, a).(adapter.ConnectSucceeded).ID, id)
}

func TestCompleteConnectAfterCancelStillEmits(t *testing.T) {
	a := NewAdapter()
	p := testPeripheral()
	p.HoldConnect = true
	id := a.AddPeripheral(p)
	a.Connect(id)
	a.CancelConnect(id)
	a.CompleteConnect(id, false)
	_, ok := next(t, a).(adapter.ConnectFailed)
	assert.Check(t, ok)
}

func TestWriteRecordedWhileConnected(t *testing.T) {
	a := NewAdapter()
	id := a.AddPeripheral(testPeripheral())
	a.Connect(id)
	next(t, a)
	char := models.Characteristic{UUID: testCharUUID, Service: testServiceUUID}
	a.Write(id, char, []byte("P050"), false)
	writes := a.Writes()
	assert.Equal(t, len(writes), 1)
	assert.Equal(t, writes[0].Peripheral, id)
	assert.Equal(t, string(writes[0].Payload), "P050")
	assert.Check(t, !writes[0].WithResponse)
}

func TestWriteFailsWhileDisconnected(t *testing.T) {
	a := NewAdapter()
	id := a.AddPeripheral(testPeripheral())
	a.Write(id, models.Characteristic{UUID: testCharUUID}, []byte{'E'}, true)
	_, ok := next(t, a).(adapter.WriteFailed)
	assert.Check(t, ok)
	assert.Equal(t, len(a.Writes()), 0)
}

func TestPowerLossDropsScanAndConnection(t *testing.T) {
	a := NewAdapter()
	id := a.AddPeripheral(testPeripheral())
	assert.NilError(t, a.StartScan())
	next(t, a)
	a.Connect(id)
	next(t, a)
	a.SetAvailable(false)
	power := next(t, a).(adapter.PowerChanged)
	assert.Check(t, !power.Available)
	assert.Check(t, !a.Available())
	a.Write(id, models.Characteristic{UUID: testCharUUID}, []byte{'S'}, false)
	_, ok := next(t, a).(adapter.WriteFailed)
	assert.Check(t, ok)
}

func TestCallsRecordOperationOrder(t *testing.T) {
	a := NewAdapter()
	id := a.AddPeripheral(testPeripheral())
	assert.NilError(t, a.StartScan())
	a.StopScan()
	a.Connect(id)
	calls := a.Calls()
	assert.DeepEqual(t, calls, []string{"StartScan", "StopScan", "Connect:" + id})
}
