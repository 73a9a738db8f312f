package core

// EventSource identifies a compare event of the tone timer (CC slot).
type EventSource uint8

func (e EventSource) String() string {
	return "timer0.compare[" + itoa(int(e)) + "]"
}

// TaskSink identifies the OUT task of a toggle channel.
type TaskSink uint8

func (s TaskSink) String() string {
	return "gpiote.out[" + itoa(int(s)) + "]"
}

// MaxRoutes is the number of routes the tone engine needs: each leg is
// toggled once at its duty edge and once at the period boundary.
const MaxRoutes = 4

// EventRoute is one event -> task binding on the route fabric.
type EventRoute struct {
	Event   EventSource
	Task    TaskSink
	Enabled bool

	channel int
}

// Channel returns the fabric channel the route occupies.
func (r *EventRoute) Channel() int {
	return r.channel
}

// timerState is what the route table needs to know about the timer.
type timerState interface {
	State() TimerRunState
}

// RouteTable owns the route fabric. Routes are created disabled.
type RouteTable struct {
	regs     RouteRegisters
	channels *ToggleChannels
	timer    timerState
	routes   []*EventRoute
}

// NewRouteTable wraps the route fabric. channels is consulted so that no
// route can target an unbound sink; timer (may be nil) is consulted so that
// no disabled route is switched on while the timer is counting.
func NewRouteTable(regs RouteRegisters, channels *ToggleChannels, timer timerState) *RouteTable {
	return &RouteTable{
		regs:     regs,
		channels: channels,
		timer:    timer,
		routes:   make([]*EventRoute, 0, MaxRoutes),
	}
}

// BindRoute connects event to task on the next free fabric channel.
// The route starts disabled.
func (t *RouteTable) BindRoute(event EventSource, task TaskSink) (*EventRoute, error) {
	if int(event) >= CompareSlots {
		return nil, ErrInvalidInput
	}
	if !t.channels.Bound(int(task)) {
		return nil, ErrRouteOrder
	}
	if len(t.routes) >= MaxRoutes || len(t.routes) >= t.regs.Channels() {
		return nil, ErrRouteTableFull
	}

	r := &EventRoute{Event: event, Task: task, channel: len(t.routes)}
	t.regs.DisableChannel(r.channel)
	t.regs.SetEndpoints(r.channel, event, task)
	t.routes = append(t.routes, r)
	return r, nil
}

// Enable switches a route on. It is idempotent.
func (t *RouteTable) Enable(r *EventRoute) error {
	if r.Enabled {
		return nil
	}
	if !t.channels.Bound(int(r.Task)) {
		return ErrRouteOrder
	}
	if t.timer != nil && t.timer.State() == Running {
		return ErrRouteOrder
	}
	t.regs.EnableChannel(r.channel)
	r.Enabled = true
	return nil
}

// Disable switches a route off. It is idempotent.
func (t *RouteTable) Disable(r *EventRoute) {
	if !r.Enabled {
		return
	}
	t.regs.DisableChannel(r.channel)
	r.Enabled = false
}

// EnableAll enables every bound route, stopping at the first refusal.
func (t *RouteTable) EnableAll() error {
	for _, r := range t.routes {
		if err := t.Enable(r); err != nil {
			return err
		}
	}
	return nil
}

// DisableAll disables every bound route.
func (t *RouteTable) DisableAll() {
	for _, r := range t.routes {
		t.Disable(r)
	}
}

// Routes returns the bound routes in fabric channel order.
func (t *RouteTable) Routes() []*EventRoute {
	return t.routes
}
