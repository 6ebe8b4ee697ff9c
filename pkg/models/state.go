package models

// ConnectionState is an enum for the public lifecycle of the single control
// session. The connect pipeline's internal phases all surface as Connecting.
type ConnectionState int

const (
	// Disconnected indicates no connection exists or is pending
	Disconnected ConnectionState = iota
	// Connecting indicates a connect or discovery step is in flight
	Connecting
	// Connected indicates a writable endpoint has been negotiated
	Connected
)

func (s ConnectionState) String() string {
	switch s {
	case Connecting:
		return "Connecting"
	case Connected:
		return "Connected"
	default:
		return "Disconnected"
	}
}

// FailureReason is an enum for every way the control pipeline can fail.
// Failures collapse state rather than carry detail; no reason is retried
// internally at any layer.
type FailureReason int

const (
	// RadioUnavailable indicates the radio stack reset or powered off
	RadioUnavailable FailureReason = iota
	// ScanIgnored indicates a scan request arrived while the radio was unavailable
	ScanIgnored
	// ConnectFailed indicates the connect attempt did not complete
	ConnectFailed
	// ServiceDiscoveryFailed indicates service discovery failed after connecting
	ServiceDiscoveryFailed
	// CharacteristicDiscoveryFailed indicates characteristic discovery failed
	CharacteristicDiscoveryFailed
	// NoWritableCharacteristic indicates no discovered service exposed a usable write point
	NoWritableCharacteristic
	// WriteDropped indicates a command was issued while not Connected
	WriteDropped
)

func (r FailureReason) String() string {
	switch r {
	case RadioUnavailable:
		return "RadioUnavailable"
	case ScanIgnored:
		return "ScanIgnored"
	case ConnectFailed:
		return "ConnectFailed"
	case ServiceDiscoveryFailed:
		return "ServiceDiscoveryFailed"
	case CharacteristicDiscoveryFailed:
		return "CharacteristicDiscoveryFailed"
	case NoWritableCharacteristic:
		return "NoWritableCharacteristic"
	case WriteDropped:
		return "WriteDropped"
	}
	return "Unknown"
}
