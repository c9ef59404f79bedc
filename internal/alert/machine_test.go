package alert

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/domain"
	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/notify"
)

const (
	timeout = time.Second
	tick    = 5 * time.Millisecond
)

type call struct {
	kind domain.AlertKind
	area string
}

type fakeDispatcher struct {
	mu    sync.Mutex
	calls []call
	err   error
	gate  chan struct{}
}

func (f *fakeDispatcher) Send(ctx context.Context, kind domain.AlertKind, area string) (notify.Ack, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	f.calls = append(f.calls, call{kind, area})
	f.mu.Unlock()
	if f.err != nil {
		return notify.Ack{}, f.err
	}
	return notify.Ack{Kind: kind, Area: area, Message: "ok"}, nil
}

type staticArea string

func (a staticArea) Area() string { return string(a) }

func TestHappyPath(t *testing.T) {
	d := &fakeDispatcher{}
	m := NewMachine(d, staticArea("Elm Street"))
	var acked atomic.Bool
	m.OnAcknowledge = func() { acked.Store(true) }

	require.True(t, m.RequestAction(domain.AlertInvestigate))
	s := m.Session()
	assert.Equal(t, ConfirmPending, s.State)
	assert.Equal(t, domain.AlertInvestigate, s.Pending)
	assert.True(t, s.ConfirmationOpen())

	ack, err := m.Confirm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Elm Street", ack.Area)
	assert.Equal(t, Sent, m.Session().State)
	assert.True(t, m.Session().LastSendSucceeded)
	assert.Equal(t, []call{{domain.AlertInvestigate, "Elm Street"}}, d.calls)

	require.True(t, m.Acknowledge())
	assert.Equal(t, Idle, m.Session().State)
	assert.True(t, acked.Load())
}

func TestSecondRequestIgnoredWhilePending(t *testing.T) {
	m := NewMachine(&fakeDispatcher{}, nil)
	require.True(t, m.RequestAction(domain.AlertInvestigate))
	assert.False(t, m.RequestAction(domain.AlertFault))
	assert.Equal(t, domain.AlertInvestigate, m.Session().Pending)
}

func TestInvalidKindRejected(t *testing.T) {
	m := NewMachine(&fakeDispatcher{}, nil)
	assert.False(t, m.RequestAction("escalate"))
	assert.Equal(t, Idle, m.Session().State)
}

func TestCancel(t *testing.T) {
	m := NewMachine(&fakeDispatcher{}, nil)
	assert.False(t, m.Cancel(), "cancel from idle")

	m.RequestAction(domain.AlertFault)
	require.True(t, m.Cancel())
	s := m.Session()
	assert.Equal(t, Idle, s.State)
	assert.Empty(t, s.Pending)
}

func TestConfirmWithoutPending(t *testing.T) {
	d := &fakeDispatcher{}
	m := NewMachine(d, nil)
	_, err := m.Confirm(context.Background())
	assert.ErrorIs(t, err, ErrNotPending)
	assert.Empty(t, d.calls)
}

func TestDispatchFailureReturnsToIdle(t *testing.T) {
	d := &fakeDispatcher{err: &notify.DispatchError{Kind: domain.AlertFault, Message: "Failed to send email."}}
	m := NewMachine(d, nil)
	m.RequestAction(domain.AlertFault)

	_, err := m.Confirm(context.Background())
	require.Error(t, err)
	s := m.Session()
	assert.Equal(t, Idle, s.State)
	assert.Equal(t, "Failed to send email.", s.LastError)
	assert.False(t, s.LastSendSucceeded)
	assert.False(t, m.Acknowledge(), "nothing to acknowledge after failure")

	// operator re-initiates
	require.True(t, m.RequestAction(domain.AlertFault))
	assert.Empty(t, m.Session().LastError)
}

func TestSendingIsExclusive(t *testing.T) {
	d := &fakeDispatcher{gate: make(chan struct{})}
	m := NewMachine(d, staticArea(""))
	m.RequestAction(domain.AlertInvestigate)

	done := make(chan error, 1)
	go func() {
		_, err := m.Confirm(context.Background())
		done <- err
	}()
	require.Eventually(t, func() bool { return m.Session().State == Sending }, timeout, tick)

	assert.False(t, m.RequestAction(domain.AlertFault), "request while sending")
	assert.False(t, m.Cancel(), "cancel while sending")
	_, err := m.Confirm(context.Background())
	assert.ErrorIs(t, err, ErrNotPending, "double confirm")
	s := m.Session()
	assert.Equal(t, Sending, s.State)
	assert.True(t, s.ConfirmationOpen())

	close(d.gate)
	require.NoError(t, <-done)
	assert.Len(t, d.calls, 1)
	assert.Equal(t, Sent, m.Session().State)
}

func TestDispatchErrorIsSurfaced(t *testing.T) {
	cause := errors.New("boom")
	m := NewMachine(&fakeDispatcher{err: cause}, nil)
	m.RequestAction(domain.AlertInvestigate)
	_, err := m.Confirm(context.Background())
	assert.ErrorIs(t, err, cause)
}

func TestSubscribersSeeEveryTransition(t *testing.T) {
	d := &fakeDispatcher{gate: make(chan struct{})}
	m := NewMachine(d, staticArea("Elm Street"))
	seen := make(chan Session, 8)
	m.Subscribe(func(s Session) { seen <- s })

	require.True(t, m.RequestAction(domain.AlertFault))
	assert.Equal(t, ConfirmPending, (<-seen).State)

	done := make(chan error, 1)
	go func() {
		_, err := m.Confirm(context.Background())
		done <- err
	}()

	// Sending is published before the dispatcher returns.
	s := <-seen
	assert.Equal(t, Sending, s.State)
	assert.Equal(t, domain.AlertFault, s.Pending)

	close(d.gate)
	require.NoError(t, <-done)
	s = <-seen
	assert.Equal(t, Sent, s.State)
	assert.True(t, s.LastSendSucceeded)

	require.True(t, m.Acknowledge())
	assert.Equal(t, Idle, (<-seen).State)

	m.RequestAction(domain.AlertInvestigate)
	<-seen
	require.True(t, m.Cancel())
	assert.Equal(t, Idle, (<-seen).State)
	assert.Empty(t, seen)
}

func TestSubscribersSeeFailedSend(t *testing.T) {
	m := NewMachine(&fakeDispatcher{err: errors.New("boom")}, nil)
	var states []State
	m.Subscribe(func(s Session) { states = append(states, s.State) })

	m.RequestAction(domain.AlertInvestigate)
	_, err := m.Confirm(context.Background())
	require.Error(t, err)
	assert.Equal(t, []State{ConfirmPending, Sending, Idle}, states)
	assert.Equal(t, "boom", m.Session().LastError)
}
