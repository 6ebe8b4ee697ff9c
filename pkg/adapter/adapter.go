package adapter

import "github.com/actuatorctl/actuator-sdk/pkg/models"

// UnknownName is the advertised name used when a peripheral broadcasts no name.
const UnknownName = "Unknown"

// Adapter is the capability contract for the radio central role. Every
// operation is asynchronous: completion or failure arrives as an Event on the
// Events channel, never as a blocking return. Retry policy belongs to the
// caller.
type Adapter interface {
	Events() <-chan Event
	Available() bool
	StartScan() error
	StopScan()
	Connect(id string)
	CancelConnect(id string)
	Disconnect(id string)
	DiscoverServices(id string)
	DiscoverCharacteristics(id string, service models.Service)
	Write(id string, char models.Characteristic, payload []byte, withResponse bool)
}
