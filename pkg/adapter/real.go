package adapter

import (
	"context"
	"sync"
	"time"

	"github.com/go-ble/ble"
	"github.com/go-ble/ble/linux"
	"github.com/pkg/errors"

	"github.com/actuatorctl/actuator-sdk/pkg/models"
	"github.com/actuatorctl/actuator-sdk/pkg/util"
)

const eventBacklog = 64

type coreMethods interface {
	SetDefaultDevice(time.Duration) error
	Dial(context.Context, ble.Addr) (ble.Client, error)
	Scan(context.Context, bool, ble.AdvHandler, ble.AdvFilter) error
}

type realCoreMethods struct{}

func (bc *realCoreMethods) SetDefaultDevice(timeout time.Duration) error {
	device, err := linux.NewDevice(ble.OptDialerTimeout(timeout))
	if err != nil {
		return errors.Wrap(err, "NewDevice issue")
	}
	ble.SetDefaultDevice(device)
	return nil
}

func (bc *realCoreMethods) Dial(ctx context.Context, addr ble.Addr) (ble.Client, error) {
	return ble.Dial(ctx, addr)
}

func (bc *realCoreMethods) Scan(ctx context.Context, allowDup bool, h ble.AdvHandler, f ble.AdvFilter) error {
	return ble.Scan(ctx, allowDup, h, f)
}

// RealAdapter backs the Adapter contract with the host's HCI radio through
// go-ble. Each asynchronous operation runs in its own goroutine and reports
// through the single event channel; callers never block on the radio.
type RealAdapter struct {
	methods   coreMethods
	timeout   time.Duration
	events    chan Event
	mutex     sync.Mutex
	available bool
	client    ble.Client
	services  map[string]*ble.Service
	chars     map[string]*ble.Characteristic
	stopScan  context.CancelFunc
	stopDial  context.CancelFunc
}

// NewRealAdapter initializes the default HCI device. The timeout bounds both
// device dialing and individual connect attempts.
func NewRealAdapter(timeout time.Duration) (*RealAdapter, error) {
	return newRealAdapter(timeout, &realCoreMethods{})
}

func newRealAdapter(timeout time.Duration, methods coreMethods) (*RealAdapter, error) {
	a := &RealAdapter{
		methods:  methods,
		timeout:  timeout,
		events:   make(chan Event, eventBacklog),
		services: map[string]*ble.Service{},
		chars:    map[string]*ble.Characteristic{},
	}
	if err := methods.SetDefaultDevice(timeout); err != nil {
		return nil, errors.Wrap(err, "SetDefaultDevice issue")
	}
	a.available = true
	a.emit(PowerChanged{Available: true})
	return a, nil
}

func (a *RealAdapter) Events() <-chan Event { return a.events }

func (a *RealAdapter) Available() bool {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return a.available
}

func (a *RealAdapter) StartScan() error {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	if !a.available {
		return errors.New("radio not available")
	}
	if a.stopScan != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.stopScan = cancel
	go func() {
		// blocks until the scan context is cancelled
		a.methods.Scan(ctx, true, a.onAdvertisement, nil)
	}()
	return nil
}

func (a *RealAdapter) StopScan() {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	if a.stopScan != nil {
		a.stopScan()
		a.stopScan = nil
	}
}

func (a *RealAdapter) onAdvertisement(adv ble.Advertisement) {
	name := adv.LocalName()
	if name == "" {
		name = UnknownName
	}
	rssi := adv.RSSI()
	a.emit(Advertised{ID: adv.Addr().String(), Name: name, RSSI: &rssi})
}

func (a *RealAdapter) Connect(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	a.mutex.Lock()
	a.stopDial = cancel
	a.mutex.Unlock()
	go func() {
		defer cancel()
		cln, err := a.methods.Dial(ctx, ble.NewAddr(id))
		if err != nil {
			a.emit(ConnectFailed{ID: id})
			return
		}
		a.mutex.Lock()
		a.client = cln
		a.mutex.Unlock()
		go func() {
			<-cln.Disconnected()
			a.emit(PeripheralDisconnected{ID: id})
		}()
		a.emit(ConnectSucceeded{ID: id})
	}()
}

func (a *RealAdapter) CancelConnect(id string) {
	a.mutex.Lock()
	cln := a.client
	cancel := a.stopDial
	a.stopDial = nil
	a.mutex.Unlock()
	if cancel != nil {
		cancel()
	}
	if cln != nil {
		cln.CancelConnection()
	}
}

func (a *RealAdapter) Disconnect(id string) {
	a.mutex.Lock()
	cln := a.client
	a.client = nil
	a.services = map[string]*ble.Service{}
	a.chars = map[string]*ble.Characteristic{}
	a.mutex.Unlock()
	if cln != nil {
		cln.CancelConnection()
	}
}

func (a *RealAdapter) DiscoverServices(id string) {
	a.mutex.Lock()
	cln := a.client
	a.mutex.Unlock()
	if cln == nil {
		a.emit(ServiceDiscoveryFailed{ID: id})
		return
	}
	go func() {
		svcs, err := cln.DiscoverServices(nil)
		if err != nil {
			a.emit(ServiceDiscoveryFailed{ID: id})
			return
		}
		ret := make([]models.Service, 0, len(svcs))
		a.mutex.Lock()
		for _, s := range svcs {
			uuid := util.NormalizeUUID(s.UUID.String())
			a.services[uuid] = s
			ret = append(ret, models.Service{UUID: uuid})
		}
		a.mutex.Unlock()
		a.emit(ServicesDiscovered{ID: id, Services: ret})
	}()
}

func (a *RealAdapter) DiscoverCharacteristics(id string, service models.Service) {
	a.mutex.Lock()
	cln := a.client
	svc := a.services[service.UUID]
	a.mutex.Unlock()
	if cln == nil || svc == nil {
		a.emit(CharacteristicDiscoveryFailed{ID: id, Service: service})
		return
	}
	go func() {
		chars, err := cln.DiscoverCharacteristics(nil, svc)
		if err != nil {
			a.emit(CharacteristicDiscoveryFailed{ID: id, Service: service})
			return
		}
		ret := make([]models.Characteristic, 0, len(chars))
		a.mutex.Lock()
		for _, c := range chars {
			uuid := util.NormalizeUUID(c.UUID.String())
			a.chars[uuid] = c
			ret = append(ret, models.Characteristic{
				UUID:    uuid,
				Service: service.UUID,
				Properties: models.Properties{
					Write:                c.Property&ble.CharWrite != 0,
					WriteWithoutResponse: c.Property&ble.CharWriteNR != 0,
				},
			})
		}
		a.mutex.Unlock()
		a.emit(CharacteristicsDiscovered{ID: id, Service: service, Characteristics: ret})
	}()
}

func (a *RealAdapter) Write(id string, char models.Characteristic, payload []byte, withResponse bool) {
	a.mutex.Lock()
	cln := a.client
	handle := a.chars[char.UUID]
	a.mutex.Unlock()
	if cln == nil || handle == nil {
		a.emit(WriteFailed{ID: id})
		return
	}
	go func() {
		if err := cln.WriteCharacteristic(handle, payload, !withResponse); err != nil {
			a.emit(WriteFailed{ID: id})
		}
	}()
}

func (a *RealAdapter) emit(e Event) {
	a.events <- e
}
