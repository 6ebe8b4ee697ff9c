package models

// DiscoveredPeripheral is one advertised peripheral as last seen. The
// identifier is whatever stable handle the radio stack assigns; RSSI is nil
// when the stack reported no signal strength.
type DiscoveredPeripheral struct {
	ID   string
	Name string
	RSSI *int
}

// Service is a service discovered on a connected peripheral.
type Service struct {
	UUID string
}

// Properties holds the declared write capabilities of a characteristic.
type Properties struct {
	Write                bool
	WriteWithoutResponse bool
}

// Characteristic is a writable endpoint discovered under a service.
type Characteristic struct {
	UUID       string
	Service    string
	Properties Properties
}

// NegotiatedEndpoint is the selected write point on a connected peripheral.
// It exists only while the session is Connected and is destroyed on
// disconnect; no other component may hold the underlying handle.
type NegotiatedEndpoint struct {
	Peripheral     string
	Name           string
	Characteristic Characteristic
}

// Snapshot is the observable state exposed to the presentation layer.
// ConnectedName is empty and ConnectedRSSI nil unless State is Connected;
// ConnectedRSSI is the target's last advertised signal strength, nil when the
// stack never reported one.
type Snapshot struct {
	RadioAvailable bool
	Scanning       bool
	Peripherals    []DiscoveredPeripheral
	State          ConnectionState
	ConnectedName  string
	ConnectedRSSI  *int
}
