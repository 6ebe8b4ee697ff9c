package util

const (
	// ActuatorServiceUUID represents the UUID of the control service the actuator firmware advertises
	ActuatorServiceUUID = "000A0000-0001-1000-8000-00805F9B34FB"
	// ActuatorControlUUID represents the UUID of the write characteristic that accepts command frames
	ActuatorControlUUID = "000A0000-0002-1000-8000-00805F9B34FB"
)

// DefaultPreferredCharacteristics is the preferred write-point set for the
// stock actuator firmware. Sessions built without an explicit preference fall
// back to first-writable-wins instead.
var DefaultPreferredCharacteristics = []string{ActuatorControlUUID}
