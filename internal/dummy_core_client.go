package internal

import (
	"sync"

	"github.com/go-ble/ble"
	"github.com/pkg/errors"
)

// DummyCoreClient is a scripted ble.Client used to exercise the real adapter
// without an HCI device. Services and characteristics are provided up front;
// writes are recorded for assertions.
type DummyCoreClient struct {
	Mutex             sync.Mutex
	TestAddr          string
	Services          []*ble.Service
	ServiceErr        error
	CharacteristicErr error
	WriteErr          error
	Writes            [][]byte
	NoResponseWrites  int
	disconnected      chan struct{}
	once              sync.Once
}

func NewDummyCoreClient(addr string, services []*ble.Service) *DummyCoreClient {
	return &DummyCoreClient{TestAddr: addr, Services: services, disconnected: make(chan struct{})}
}

func (c *DummyCoreClient) DiscoverServices(filter []ble.UUID) ([]*ble.Service, error) {
	if c.ServiceErr != nil {
		return nil, c.ServiceErr
	}
	return c.Services, nil
}

func (c *DummyCoreClient) DiscoverCharacteristics(filter []ble.UUID, s *ble.Service) ([]*ble.Characteristic, error) {
	if c.CharacteristicErr != nil {
		return nil, c.CharacteristicErr
	}
	for _, svc := range c.Services {
		if svc.UUID.Equal(s.UUID) {
			return svc.Characteristics, nil
		}
	}
	return nil, errors.New("no such service")
}

func (c *DummyCoreClient) WriteCharacteristic(char *ble.Characteristic, value []byte, noRsp bool) error {
	if c.WriteErr != nil {
		return c.WriteErr
	}
	c.Mutex.Lock()
	defer c.Mutex.Unlock()
	data := make([]byte, len(value))
	copy(data, value)
	c.Writes = append(c.Writes, data)
	if noRsp {
		c.NoResponseWrites++
	}
	return nil
}

func (c *DummyCoreClient) CancelConnection() error {
	c.once.Do(func() { close(c.disconnected) })
	return nil
}

func (c *DummyCoreClient) Disconnected() <-chan struct{} { return c.disconnected }

func (c *DummyCoreClient) Addr() ble.Addr        { return ble.NewAddr(c.TestAddr) }
func (c *DummyCoreClient) Name() string          { return "dummy" }
func (c *DummyCoreClient) Profile() *ble.Profile { return &ble.Profile{Services: c.Services} }
func (c *DummyCoreClient) DiscoverProfile(force bool) (*ble.Profile, error) {
	return c.Profile(), nil
}
func (c *DummyCoreClient) DiscoverIncludedServices(filter []ble.UUID, s *ble.Service) ([]*ble.Service, error) {
	return nil, nil
}
func (c *DummyCoreClient) DiscoverDescriptors(filter []ble.UUID, char *ble.Characteristic) ([]*ble.Descriptor, error) {
	return nil, nil
}
func (c *DummyCoreClient) ReadCharacteristic(char *ble.Characteristic) ([]byte, error) {
	return nil, nil
}
func (c *DummyCoreClient) ReadLongCharacteristic(char *ble.Characteristic) ([]byte, error) {
	return nil, nil
}
func (c *DummyCoreClient) ReadDescriptor(d *ble.Descriptor) ([]byte, error)  { return nil, nil }
func (c *DummyCoreClient) WriteDescriptor(d *ble.Descriptor, v []byte) error { return nil }
func (c *DummyCoreClient) ReadRSSI() int                                     { return 0 }
func (c *DummyCoreClient) ExchangeMTU(rxMTU int) (txMTU int, err error)      { return 23, nil }
func (c *DummyCoreClient) Subscribe(char *ble.Characteristic, ind bool, h ble.NotificationHandler) error {
	return nil
}
func (c *DummyCoreClient) Unsubscribe(char *ble.Characteristic, ind bool) error { return nil }
func (c *DummyCoreClient) ClearSubscriptions() error                            { return nil }
func (c *DummyCoreClient) Conn() ble.Conn                                       { return nil }
