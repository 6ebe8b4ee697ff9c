package adapter

import (
	"context"
	"testing"
	"time"

	"github.com/go-ble/ble"
	"gotest.tools/assert"

	"github.com/actuatorctl/actuator-sdk/internal"
	"github.com/actuatorctl/actuator-sdk/pkg/util"
)

const (
	testAddr = "11:22:33:44:55:66"
	testRSSI = -60
)

type testCoreMethods struct {
	client  ble.Client
	advs    []ble.Advertisement
	dialErr error
}

func (m *testCoreMethods) SetDefaultDevice(time.Duration) error { return nil }

func (m *testCoreMethods) Dial(_ context.Context, _ ble.Addr) (ble.Client, error) {
	return m.client, m.dialErr
}

func (m *testCoreMethods) Scan(ctx context.Context, _ bool, h ble.AdvHandler, _ ble.AdvFilter) error {
	for _, a := range m.advs {
		h(a)
	}
	<-ctx.Done()
	return ctx.Err()
}

func next(t *testing.T, a *RealAdapter) Event {
	t.Helper()
	select {
	case e := <-a.Events():
		return e
	case <-time.After(time.Second * 3):
		t.Fatal("no event delivered")
		return nil
	}
}

func newTestAdapter(t *testing.T, methods *testCoreMethods) *RealAdapter {
	a, err := newRealAdapter(time.Second, methods)
	assert.NilError(t, err)
	e, ok := next(t, a).(PowerChanged)
	assert.Check(t, ok)
	assert.Check(t, e.Available)
	return a
}

func TestScanReportsAdvertisements(t *testing.T) {
	methods := &testCoreMethods{advs: []ble.Advertisement{
		internal.DummyAdv{Address: internal.DummyAddr{Address: testAddr}, Name: "Garage Door", Rssi: testRSSI},
		internal.DummyAdv{Address: internal.DummyAddr{Address: "AA"}, Rssi: -80},
	}}
	a := newTestAdapter(t, methods)
	assert.NilError(t, a.StartScan())
	defer a.StopScan()
	first, ok := next(t, a).(Advertised)
	assert.Check(t, ok)
	assert.Equal(t, first.Name, "Garage Door")
	assert.Equal(t, *first.RSSI, testRSSI)
	second, ok := next(t, a).(Advertised)
	assert.Check(t, ok)
	// nameless advertisements fall back to the placeholder
	assert.Equal(t, second.Name, UnknownName)
}

func TestConnectAndDiscover(t *testing.T) {
	services := internal.GetTestServices(util.ActuatorServiceUUID, []string{util.ActuatorControlUUID})
	client := internal.NewDummyCoreClient(testAddr, services)
	a := newTestAdapter(t, &testCoreMethods{client: client})
	a.Connect(testAddr)
	_, ok := next(t, a).(ConnectSucceeded)
	assert.Check(t, ok)

	a.DiscoverServices(testAddr)
	svcs, ok := next(t, a).(ServicesDiscovered)
	assert.Check(t, ok)
	assert.Equal(t, len(svcs.Services), 1)
	assert.Check(t, util.UuidEqualStr(svcs.Services[0].UUID, util.ActuatorServiceUUID))

	a.DiscoverCharacteristics(testAddr, svcs.Services[0])
	chars, ok := next(t, a).(CharacteristicsDiscovered)
	assert.Check(t, ok)
	assert.Equal(t, len(chars.Characteristics), 1)
	char := chars.Characteristics[0]
	assert.Check(t, char.Properties.Write)
	assert.Check(t, char.Properties.WriteWithoutResponse)

	a.Write(testAddr, char, []byte{'E'}, false)
	internal.WaitFor(t, func() bool {
		client.Mutex.Lock()
		defer client.Mutex.Unlock()
		return len(client.Writes) == 1
	})
	assert.DeepEqual(t, client.Writes[0], []byte{'E'})
	assert.Equal(t, client.NoResponseWrites, 1)
}

func TestDialFailure(t *testing.T) {
	a := newTestAdapter(t, &testCoreMethods{dialErr: context.DeadlineExceeded})
	a.Connect(testAddr)
	_, ok := next(t, a).(ConnectFailed)
	assert.Check(t, ok)
}

func TestDisconnectEmitsEvent(t *testing.T) {
	services := internal.GetTestServices(util.ActuatorServiceUUID, []string{util.ActuatorControlUUID})
	client := internal.NewDummyCoreClient(testAddr, services)
	a := newTestAdapter(t, &testCoreMethods{client: client})
	a.Connect(testAddr)
	_, ok := next(t, a).(ConnectSucceeded)
	assert.Check(t, ok)
	a.Disconnect(testAddr)
	_, ok = next(t, a).(PeripheralDisconnected)
	assert.Check(t, ok)
}

func TestServiceDiscoveryFailureWithoutClient(t *testing.T) {
	a := newTestAdapter(t, &testCoreMethods{})
	a.DiscoverServices(testAddr)
	_, ok := next(t, a).(ServiceDiscoveryFailed)
	assert.Check(t, ok)
}
