package adapter

import "github.com/actuatorctl/actuator-sdk/pkg/models"

// Event is the sum type for everything the radio stack reports back. One
// variant per callback; all variants for a given adapter are delivered on a
// single channel in the order the stack produced them.
type Event interface {
	isEvent()
}

// PowerChanged reports the radio becoming available or unavailable.
type PowerChanged struct {
	Available bool
}

// Advertised reports one advertisement from a discoverable peripheral.
// RSSI is nil when the stack did not report signal strength.
type Advertised struct {
	ID   string
	Name string
	RSSI *int
}

// ConnectSucceeded reports a pending connect completing.
type ConnectSucceeded struct {
	ID string
}

// ConnectFailed reports a pending connect failing. No further detail is
// carried; the stack gives none worth acting on.
type ConnectFailed struct {
	ID string
}

// PeripheralDisconnected reports an established connection dropping.
type PeripheralDisconnected struct {
	ID string
}

// ServicesDiscovered reports service discovery completing for a peripheral.
type ServicesDiscovered struct {
	ID       string
	Services []models.Service
}

// ServiceDiscoveryFailed reports service discovery failing.
type ServiceDiscoveryFailed struct {
	ID string
}

// CharacteristicsDiscovered reports characteristic discovery completing for
// one service.
type CharacteristicsDiscovered struct {
	ID              string
	Service         models.Service
	Characteristics []models.Characteristic
}

// CharacteristicDiscoveryFailed reports characteristic discovery failing for
// one service.
type CharacteristicDiscoveryFailed struct {
	ID      string
	Service models.Service
}

// WriteFailed reports a characteristic write failing after dispatch.
type WriteFailed struct {
	ID string
}

func (PowerChanged) isEvent()                  {}
func (Advertised) isEvent()                    {}
func (ConnectSucceeded) isEvent()              {}
func (ConnectFailed) isEvent()                 {}
func (PeripheralDisconnected) isEvent()        {}
func (ServicesDiscovered) isEvent()            {}
func (ServiceDiscoveryFailed) isEvent()        {}
func (CharacteristicsDiscovered) isEvent()     {}
func (CharacteristicDiscoveryFailed) isEvent() {}
func (WriteFailed) isEvent()                   {}
