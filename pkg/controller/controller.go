package controller

import (
	"sync"

	"github.com/actuatorctl/actuator-sdk/pkg/adapter"
	"github.com/actuatorctl/actuator-sdk/pkg/command"
	"github.com/actuatorctl/actuator-sdk/pkg/discovery"
	"github.com/actuatorctl/actuator-sdk/pkg/models"
	"github.com/actuatorctl/actuator-sdk/pkg/session"
)

// Controller is the facade the presentation layer talks to. It owns one
// adapter, one discovery registry, one session and one dispatcher, and runs
// the single pump goroutine through which every adapter event and every user
// intent is serialized. State is observed through Snapshot plus the coalesced
// Changes channel; no mutation happens outside the pump.
type Controller struct {
	adapter    adapter.Adapter
	registry   *discovery.Registry
	session    *session.Session
	dispatcher *command.Dispatcher
	listener   models.SessionListener

	intents chan func()
	done    chan struct{}
	changes chan struct{}

	mutex     sync.RWMutex
	snapshot  models.Snapshot
	available bool

	// last-seen signal of the connect target, pump goroutine only
	targetRSSI *int
}

type noopListener struct{}

func (noopListener) OnStateChanged(models.ConnectionState) {}
func (noopListener) OnFailure(models.FailureReason)        {}

// NewController wires the components around the given adapter. listener may
// be nil; preferred pins characteristic selection (util.
// DefaultPreferredCharacteristics fits the stock firmware) and may be nil for
// first-writable-wins.
func NewController(a adapter.Adapter, listener models.SessionListener, preferred []string) *Controller {
	if listener == nil {
		listener = noopListener{}
	}
	c := &Controller{
		adapter:  a,
		registry: discovery.NewRegistry(),
		listener: listener,
		intents:  make(chan func()),
		done:     make(chan struct{}),
		changes:  make(chan struct{}, 1),
	}
	c.session = session.New(a, c, preferred)
	c.dispatcher = command.NewDispatcher(a, c.session)
	c.available = a.Available()
	return c
}

// Run starts the pump. Halt it with Shutdown; the controller is single-use.
func (c *Controller) Run() {
	go c.loop()
}

// Shutdown halts the pump goroutine.
func (c *Controller) Shutdown() {
	close(c.done)
}

// Snapshot returns the last published observable state.
func (c *Controller) Snapshot() models.Snapshot {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.snapshot
}

// Changes signals after state updates. Notifications coalesce; read the
// snapshot rather than counting signals.
func (c *Controller) Changes() <-chan struct{} {
	return c.changes
}

// BeginScan clears previous results and starts scanning. Silently ignored
// while the radio is unavailable or a session is active; scanning is not
// queued for when the radio comes back.
func (c *Controller) BeginScan() {
	c.do(func() {
		if !c.available {
			c.listener.OnFailure(models.ScanIgnored)
			return
		}
		if c.session.State() != models.Disconnected {
			return
		}
		if err := c.adapter.StartScan(); err != nil {
			// the radio dropped between the availability check and the call
			c.listener.OnFailure(models.ScanIgnored)
			return
		}
		c.registry.Clear()
		c.registry.Begin()
	})
}

// StopScan halts scanning, keeping discovered entries visible.
func (c *Controller) StopScan() {
	c.do(func() {
		c.adapter.StopScan()
		c.registry.Stop()
	})
}

// Connect targets one discovered peripheral. Any in-progress scan is stopped
// first; scanning and connecting contend for the radio.
func (c *Controller) Connect(id string) {
	c.do(func() {
		if !c.available {
			return
		}
		if c.registry.Scanning() {
			c.adapter.StopScan()
			c.registry.Stop()
		}
		c.targetRSSI = c.registry.RSSI(id)
		c.session.Connect(id, c.registry.Name(id))
	})
}

// Disconnect tears down the pending or active session.
func (c *Controller) Disconnect() {
	c.do(func() { c.session.Disconnect() })
}

// Extend commands the actuator to extend.
func (c *Controller) Extend() { c.dispatch(command.Extend()) }

// Retract commands the actuator to retract.
func (c *Controller) Retract() { c.dispatch(command.Retract()) }

// Stop commands the actuator to stop moving.
func (c *Controller) Stop() { c.dispatch(command.Stop()) }

// SetPosition commands a normalized target position in [0, 1].
func (c *Controller) SetPosition(v float64) { c.dispatch(command.Position(v)) }

// SetSpeed commands a normalized speed in [0, 1].
func (c *Controller) SetSpeed(v float64) { c.dispatch(command.Speed(v)) }

func (c *Controller) dispatch(payload []byte) {
	c.do(func() {
		if !c.dispatcher.Dispatch(payload) {
			c.listener.OnFailure(models.WriteDropped)
		}
	})
}

// OnStateChanged implements models.SessionListener for the inner session.
// Runs on the pump goroutine.
func (c *Controller) OnStateChanged(state models.ConnectionState) {
	if state == models.Connected {
		// candidate set served its purpose once a target is ready
		c.registry.Clear()
	}
	c.listener.OnStateChanged(state)
}

// OnFailure implements models.SessionListener for the inner session.
func (c *Controller) OnFailure(reason models.FailureReason) {
	c.listener.OnFailure(reason)
}

func (c *Controller) do(fn func()) {
	select {
	case c.intents <- fn:
	case <-c.done:
	}
}

func (c *Controller) loop() {
	c.publish()
	for {
		select {
		case e := <-c.adapter.Events():
			c.handleEvent(e)
		case fn := <-c.intents:
			fn()
		case <-c.done:
			return
		}
		c.publish()
	}
}

func (c *Controller) handleEvent(e adapter.Event) {
	switch ev := e.(type) {
	case adapter.PowerChanged:
		c.available = ev.Available
		if !ev.Available {
			c.registry.Stop()
			c.registry.Clear()
		}
	case adapter.Advertised:
		c.registry.Upsert(ev.ID, ev.Name, ev.RSSI)
	}
	c.session.HandleEvent(e)
}

func (c *Controller) publish() {
	snap := models.Snapshot{
		RadioAvailable: c.available,
		Scanning:       c.registry.Scanning(),
		Peripherals:    c.registry.Snapshot(),
		State:          c.session.State(),
	}
	if ep := c.session.Endpoint(); ep != nil {
		snap.ConnectedName = ep.Name
		snap.ConnectedRSSI = c.targetRSSI
	}
	c.mutex.Lock()
	c.snapshot = snap
	c.mutex.Unlock()
	select {
	case c.changes <- struct{}{}:
	default:
	}
}
