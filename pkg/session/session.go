package session

import (
	mapset "github.com/deckarep/golang-set"

	"github.com/actuatorctl/actuator-sdk/pkg/adapter"
	"github.com/actuatorctl/actuator-sdk/pkg/models"
	"github.com/actuatorctl/actuator-sdk/pkg/util"
)

type phase int

const (
	phaseIdle phase = iota
	phaseConnecting
	phaseServices
	phaseCharacteristics
	phaseReady
)

// Session is the state machine for one pending or active connection. It owns
// the full connect pipeline: connect, discover services, discover
// characteristics, select write point. Exactly one session drives the adapter
// at a time, and every failure along the pipeline collapses it back to
// Disconnected; no partial connected state is ever exposed.
//
// Session performs no locking: the owner must deliver events and intents from
// a single goroutine.
type Session struct {
	adapter   adapter.Adapter
	listener  models.SessionListener
	preferred mapset.Set
	phase     phase
	target    string
	name      string
	services  []models.Service
	next      int
	endpoint  *models.NegotiatedEndpoint
}

// New builds a session. preferred pins characteristic selection to the given
// UUIDs; pass nil to select the first characteristic declaring write or
// write-without-response capability instead.
func New(a adapter.Adapter, listener models.SessionListener, preferred []string) *Session {
	var set mapset.Set
	if len(preferred) > 0 {
		set = mapset.NewSet()
		for _, uuid := range preferred {
			set.Add(util.NormalizeUUID(uuid))
		}
	}
	return &Session{adapter: a, listener: listener, preferred: set}
}

// State collapses the internal phase to the public three-valued state.
func (s *Session) State() models.ConnectionState {
	switch s.phase {
	case phaseIdle:
		return models.Disconnected
	case phaseReady:
		return models.Connected
	default:
		return models.Connecting
	}
}

// Endpoint returns the negotiated write point, or nil unless Connected.
func (s *Session) Endpoint() *models.NegotiatedEndpoint {
	return s.endpoint
}

// Target returns the identifier of the peripheral being connected to.
func (s *Session) Target() string {
	return s.target
}

// Connect starts the pipeline toward the given peripheral. Ignored unless
// Disconnected: a session targets exactly one peripheral at a time.
func (s *Session) Connect(id string, name string) {
	if s.phase != phaseIdle {
		return
	}
	s.target = id
	s.name = name
	s.phase = phaseConnecting
	s.adapter.Connect(id)
	s.listener.OnStateChanged(models.Connecting)
}

// Disconnect cancels whatever is in flight and returns to Disconnected
// optimistically, without waiting for adapter confirmation.
func (s *Session) Disconnect() {
	if s.phase == phaseIdle {
		return
	}
	if s.phase == phaseConnecting {
		s.adapter.CancelConnect(s.target)
	} else {
		s.adapter.Disconnect(s.target)
	}
	s.reset()
	s.listener.OnStateChanged(models.Disconnected)
}

// HandleEvent advances the pipeline by one adapter event. Events for other
// peripherals, or arriving after the session has moved on, are ignored; a
// radio stack does not stop delivering late callbacks just because the
// attempt they belong to was abandoned.
func (s *Session) HandleEvent(e adapter.Event) {
	switch ev := e.(type) {
	case adapter.PowerChanged:
		if !ev.Available && s.phase != phaseIdle {
			// hard reset: every handle is invalid once the stack powers off
			s.fail(models.RadioUnavailable)
		}
	case adapter.ConnectSucceeded:
		if s.phase == phaseConnecting && ev.ID == s.target {
			s.phase = phaseServices
			s.adapter.DiscoverServices(s.target)
		}
	case adapter.ConnectFailed:
		if s.phase == phaseConnecting && ev.ID == s.target {
			s.fail(models.ConnectFailed)
		}
	case adapter.PeripheralDisconnected:
		if s.phase != phaseIdle && ev.ID == s.target {
			s.reset()
			s.listener.OnStateChanged(models.Disconnected)
		}
	case adapter.ServicesDiscovered:
		if s.phase == phaseServices && ev.ID == s.target {
			s.onServices(ev.Services)
		}
	case adapter.ServiceDiscoveryFailed:
		if s.phase == phaseServices && ev.ID == s.target {
			s.adapter.Disconnect(s.target)
			s.fail(models.ServiceDiscoveryFailed)
		}
	case adapter.CharacteristicsDiscovered:
		if s.phase == phaseCharacteristics && ev.ID == s.target {
			s.onCharacteristics(ev.Characteristics)
		}
	case adapter.CharacteristicDiscoveryFailed:
		if s.phase == phaseCharacteristics && ev.ID == s.target {
			s.adapter.Disconnect(s.target)
			s.fail(models.CharacteristicDiscoveryFailed)
		}
	}
}

func (s *Session) onServices(services []models.Service) {
	if len(services) == 0 {
		s.adapter.Disconnect(s.target)
		s.fail(models.NoWritableCharacteristic)
		return
	}
	s.services = services
	s.next = 0
	s.phase = phaseCharacteristics
	s.adapter.DiscoverCharacteristics(s.target, s.services[0])
}

func (s *Session) onCharacteristics(chars []models.Characteristic) {
	if char := s.pick(chars); char != nil {
		s.endpoint = &models.NegotiatedEndpoint{Peripheral: s.target, Name: s.name, Characteristic: *char}
		s.phase = phaseReady
		s.listener.OnStateChanged(models.Connected)
		return
	}
	s.next++
	if s.next < len(s.services) {
		s.adapter.DiscoverCharacteristics(s.target, s.services[s.next])
		return
	}
	s.adapter.Disconnect(s.target)
	s.fail(models.NoWritableCharacteristic)
}

// pick applies the selection policy: first match in the preferred set when
// one was provided, otherwise first characteristic declaring any write
// capability. First match wins; the firmware is assumed to expose exactly one
// relevant write point.
func (s *Session) pick(chars []models.Characteristic) *models.Characteristic {
	for i := range chars {
		if s.preferred != nil {
			if s.preferred.Contains(util.NormalizeUUID(chars[i].UUID)) {
				return &chars[i]
			}
		} else if chars[i].Properties.Write || chars[i].Properties.WriteWithoutResponse {
			return &chars[i]
		}
	}
	return nil
}

func (s *Session) fail(reason models.FailureReason) {
	wasIdle := s.phase == phaseIdle
	s.reset()
	s.listener.OnFailure(reason)
	if !wasIdle {
		s.listener.OnStateChanged(models.Disconnected)
	}
}

func (s *Session) reset() {
	s.phase = phaseIdle
	s.target = ""
	s.name = ""
	s.services = nil
	s.next = 0
	s.endpoint = nil
}
