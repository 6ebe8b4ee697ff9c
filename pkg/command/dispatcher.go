package command

import (
	"github.com/actuatorctl/actuator-sdk/pkg/adapter"
	"github.com/actuatorctl/actuator-sdk/pkg/models"
	"github.com/actuatorctl/actuator-sdk/pkg/session"
)

// Dispatcher sends encoded payloads to the session's negotiated endpoint.
// Commands issued while not Connected are dropped, not queued; motion
// commands are latency sensitive and a held control re-issues naturally.
type Dispatcher struct {
	adapter adapter.Adapter
	session *session.Session
}

// NewDispatcher makes new struct for dispatching command payloads
func NewDispatcher(a adapter.Adapter, s *session.Session) *Dispatcher {
	return &Dispatcher{adapter: a, session: s}
}

// Dispatch writes one payload, preferring write-without-response when the
// endpoint supports it and falling back to acknowledged writes otherwise.
// Returns false when the command was dropped because no endpoint exists.
func (d *Dispatcher) Dispatch(payload []byte) bool {
	ep := d.session.Endpoint()
	if d.session.State() != models.Connected || ep == nil {
		return false
	}
	withResponse := !ep.Characteristic.Properties.WriteWithoutResponse
	d.adapter.Write(ep.Peripheral, ep.Characteristic, payload, withResponse)
	return true
}
