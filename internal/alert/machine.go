// Package alert holds the confirm-then-dispatch workflow for operator alerts.
//
// Idle -> ConfirmPending -> Sending -> Sent -> Idle. Cancel leaves
// ConfirmPending for Idle; a failed send also lands in Idle with the error kept
// on the session. The Sending state is the lock that keeps a second send from
// starting while one is in flight.
package alert

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/domain"
	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/notify"
)

type State int

const (
	Idle State = iota
	ConfirmPending
	Sending
	Sent
)

func (s State) String() string {
	switch s {
	case ConfirmPending:
		return "confirm_pending"
	case Sending:
		return "sending"
	case Sent:
		return "sent"
	default:
		return "idle"
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

var ErrNotPending = errors.New("no action awaiting confirmation")

type Dispatcher interface {
	Send(ctx context.Context, kind domain.AlertKind, area string) (notify.Ack, error)
}

// AreaSource supplies the area label of the current snapshot at confirm time.
type AreaSource interface {
	Area() string
}

// Session is a read-only copy of the machine's state.
type Session struct {
	State             State            `json:"state"`
	Pending           domain.AlertKind `json:"pending,omitempty"`
	LastError         string           `json:"lastError,omitempty"`
	LastSendSucceeded bool             `json:"lastSendSucceeded"`
}

// ConfirmationOpen reports whether the confirmation dialog is shown.
func (s Session) ConfirmationOpen() bool { return s.State == ConfirmPending || s.State == Sending }

type Machine struct {
	dispatcher Dispatcher
	area       AreaSource

	// OnAcknowledge runs after the success dialog is closed.
	OnAcknowledge func()

	mu        sync.Mutex
	state     State
	pending   domain.AlertKind
	lastErr   error
	succeeded bool
	subs      []func(Session)
}

func NewMachine(d Dispatcher, area AreaSource) *Machine {
	return &Machine{dispatcher: d, area: area}
}

// Subscribe registers fn to receive the session after every transition,
// including the entry into Sending before the dispatcher is called.
func (m *Machine) Subscribe(fn func(Session)) {
	m.mu.Lock()
	m.subs = append(m.subs, fn)
	m.mu.Unlock()
}

// changed snapshots the session and subscribers. Callers hold mu and run the
// returned func after unlocking.
func (m *Machine) changed() func() {
	s := m.sessionLocked()
	subs := slices.Clone(m.subs)
	return func() {
		for _, fn := range subs {
			fn(s)
		}
	}
}

// RequestAction opens the confirmation step. It is ignored unless the machine
// is Idle.
func (m *Machine) RequestAction(kind domain.AlertKind) bool {
	if !kind.Valid() {
		return false
	}
	m.mu.Lock()
	if m.state != Idle {
		m.mu.Unlock()
		return false
	}
	m.state = ConfirmPending
	m.pending = kind
	m.lastErr = nil
	publish := m.changed()
	m.mu.Unlock()

	publish()
	return true
}

func (m *Machine) Cancel() bool {
	m.mu.Lock()
	if m.state != ConfirmPending {
		m.mu.Unlock()
		return false
	}
	m.state = Idle
	m.pending = ""
	publish := m.changed()
	m.mu.Unlock()

	publish()
	return true
}

// Confirm dispatches the pending action. The dispatcher runs without the lock
// held; the Sending state keeps other callers out meanwhile.
func (m *Machine) Confirm(ctx context.Context) (notify.Ack, error) {
	m.mu.Lock()
	if m.state != ConfirmPending {
		m.mu.Unlock()
		return notify.Ack{}, ErrNotPending
	}
	m.state = Sending
	kind := m.pending
	publish := m.changed()
	m.mu.Unlock()
	publish()

	area := ""
	if m.area != nil {
		area = m.area.Area()
	}
	ack, err := m.dispatcher.Send(ctx, kind, area)

	m.mu.Lock()
	m.pending = ""
	m.succeeded = err == nil
	if err != nil {
		m.state = Idle
		m.lastErr = err
		ack = notify.Ack{}
	} else {
		m.state = Sent
		m.lastErr = nil
	}
	publish = m.changed()
	m.mu.Unlock()

	publish()
	return ack, err
}

func (m *Machine) Acknowledge() bool {
	m.mu.Lock()
	if m.state != Sent {
		m.mu.Unlock()
		return false
	}
	m.state = Idle
	hook := m.OnAcknowledge
	publish := m.changed()
	m.mu.Unlock()

	publish()
	if hook != nil {
		hook()
	}
	return true
}

func (m *Machine) Session() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionLocked()
}

func (m *Machine) sessionLocked() Session {
	s := Session{State: m.state, Pending: m.pending, LastSendSucceeded: m.succeeded}
	if m.lastErr != nil {
		s.LastError = m.lastErr.Error()
	}
	return s
}
