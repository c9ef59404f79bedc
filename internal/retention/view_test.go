package retention

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
)

// memStore behaves like the backend: deletes really remove rows.
type memStore struct {
	mu        sync.Mutex
	rows      []domain.LogEntry
	listErr   error
	deleteErr error
	lists     atomic.Int32
	deletes   []string
}

func (m *memStore) Logs(ctx context.Context, g domain.Granularity) ([]domain.LogEntry, error) {
	m.lists.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]domain.LogEntry(nil), m.rows...), nil
}

func (m *memStore) DeleteLog(ctx context.Context, g domain.Granularity, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, id)
	if m.deleteErr != nil {
		return m.deleteErr
	}
	for i, r := range m.rows {
		if r.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			break
		}
	}
	return nil
}

func (m *memStore) DeleteLogs(ctx context.Context, g domain.Granularity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, "*")
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.rows = nil
	return nil
}

// heldStore reads rows on the first Logs call, then holds the answer until
// release is closed.
type heldStore struct {
	*memStore
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (h *heldStore) Logs(ctx context.Context, g domain.Granularity) ([]domain.LogEntry, error) {
	rows, err := h.memStore.Logs(ctx, g)
	first := false
	h.once.Do(func() { first = true })
	if first {
		close(h.entered)
		<-h.release
	}
	return rows, err
}

func day(d int) time.Time { return time.Date(2025, 6, d, 12, 0, 0, 0, time.UTC) }

func seed() []domain.LogEntry {
	return []domain.LogEntry{
		{ID: "a", Date: day(1), PowerLoss: 1, TheftAlert: domain.AlertNoTheft},
		{ID: "c", Date: day(3), PowerLoss: 3, TheftAlert: domain.AlertTheftDetected},
		{ID: "b", Date: day(2), PowerLoss: 2, TheftAlert: "Meter Tampering"},
	}
}

func ids(entries []domain.LogEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestDailySortedNewestFirst(t *testing.T) {
	v := New(&memStore{rows: seed()}, domain.Daily, 0)
	require.NoError(t, v.Refresh(context.Background()))
	assert.Equal(t, []string{"c", "b", "a"}, ids(v.Entries()))
}

func TestMonthlyKeepsServerOrder(t *testing.T) {
	v := New(&memStore{rows: seed()}, domain.Monthly, 0)
	require.NoError(t, v.Refresh(context.Background()))
	assert.Equal(t, []string{"a", "c", "b"}, ids(v.Entries()))
}

func TestRefreshFailureKeepsList(t *testing.T) {
	s := &memStore{rows: seed()}
	v := New(s, domain.Daily, 0)
	require.NoError(t, v.Refresh(context.Background()))

	s.listErr = errors.New("503")
	require.Error(t, v.Refresh(context.Background()))
	assert.Len(t, v.Entries(), 3)
}

func TestDeleteOneRefreshes(t *testing.T) {
	s := &memStore{rows: seed()}
	v := New(s, domain.Daily, 0)
	require.NoError(t, v.Refresh(context.Background()))

	require.NoError(t, v.DeleteOne(context.Background(), "c"))
	assert.Equal(t, []string{"b", "a"}, ids(v.Entries()))
	assert.Equal(t, int32(2), s.lists.Load())
}

func TestStaleRefreshDoesNotRestoreDeletedRow(t *testing.T) {
	s := &heldStore{
		memStore: &memStore{rows: seed()},
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	v := New(s, domain.Daily, 0)

	stale := make(chan error, 1)
	go func() { stale <- v.Refresh(context.Background()) }()
	<-s.entered

	require.NoError(t, v.DeleteOne(context.Background(), "c"))
	assert.Equal(t, []string{"b", "a"}, ids(v.Entries()))

	close(s.release)
	require.NoError(t, <-stale)
	assert.Equal(t, []string{"b", "a"}, ids(v.Entries()), "stale fetch discarded")
}

func TestDeleteAllRefreshes(t *testing.T) {
	s := &memStore{rows: seed()}
	v := New(s, domain.Monthly, 0)
	require.NoError(t, v.Refresh(context.Background()))

	require.NoError(t, v.DeleteAll(context.Background()))
	assert.Empty(t, v.Entries())
}

func TestFailedDeleteStillRefreshes(t *testing.T) {
	s := &memStore{rows: seed(), deleteErr: errors.New("500")}
	v := New(s, domain.Daily, 0)

	err := v.DeleteOne(context.Background(), "a")
	assert.ErrorIs(t, err, s.deleteErr)
	assert.Equal(t, int32(1), s.lists.Load(), "refresh ran after failed delete")
	assert.Len(t, v.Entries(), 3)
}

func TestRowsNormalizeLabels(t *testing.T) {
	v := New(&memStore{rows: seed()}, domain.Monthly, 0)
	require.NoError(t, v.Refresh(context.Background()))

	rows := v.Rows()
	assert.Equal(t, domain.AlertNoTheft, rows[0].Label)
	assert.Equal(t, domain.AlertTheftDetected, rows[1].Label)
	assert.Equal(t, domain.AlertNoTheft, rows[2].Label)
	assert.Equal(t, domain.TheftAlert("Meter Tampering"), rows[2].TheftAlert)
}

func TestConfirmationGate(t *testing.T) {
	s := &memStore{rows: seed()}
	v := New(s, domain.Daily, 0)

	assert.ErrorIs(t, v.ConfirmDelete(context.Background()), ErrNothingPending)
	assert.ErrorIs(t, v.RequestDelete(Target{}), ErrInvalidTarget)

	require.NoError(t, v.RequestDelete(Target{ID: "b"}))
	require.True(t, v.CancelDelete())
	_, ok := v.Pending()
	assert.False(t, ok)
	assert.Empty(t, s.deletes)

	require.NoError(t, v.RequestDelete(Target{ID: "b"}))
	require.NoError(t, v.RequestDelete(Target{All: true}))
	p, ok := v.Pending()
	require.True(t, ok)
	assert.True(t, p.All)

	require.NoError(t, v.ConfirmDelete(context.Background()))
	assert.Equal(t, []string{"*"}, s.deletes)
	assert.Empty(t, v.Entries())
	_, ok = v.Pending()
	assert.False(t, ok)
}

func TestPollingAndStop(t *testing.T) {
	s := &memStore{rows: seed()}
	v := New(s, domain.Daily, 10*time.Millisecond)

	var updates atomic.Int32
	v.Subscribe(func([]domain.LogEntry) { updates.Add(1) })

	v.Start(context.Background())
	require.Eventually(t, func() bool { return updates.Load() >= 2 }, time.Second, 5*time.Millisecond)
	v.Stop()
	v.Stop()

	after := s.lists.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, s.lists.Load())
}
