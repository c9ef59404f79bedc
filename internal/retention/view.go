// Package retention keeps a read-through copy of the backend's daily and
// monthly loss logs. The local list is only ever replaced by a fetch; deletes
// are followed by a refresh instead of editing the list in place.
package retention

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/domain"
	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/metrics"
	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/poller"
)

var (
	ErrNothingPending = errors.New("no delete awaiting confirmation")
	ErrInvalidTarget  = errors.New("delete target needs an id or all")
)

type Store interface {
	Logs(ctx context.Context, g domain.Granularity) ([]domain.LogEntry, error)
	DeleteLog(ctx context.Context, g domain.Granularity, id string) error
	DeleteLogs(ctx context.Context, g domain.Granularity) error
}

// Target selects what a confirmed delete removes: one entry or all of them.
type Target struct {
	All bool   `json:"all,omitempty"`
	ID  string `json:"id,omitempty"`
}

func (t Target) valid() bool { return t.All || t.ID != "" }

func (t Target) scope() string {
	if t.All {
		return "all"
	}
	return "single"
}

type View struct {
	store    Store
	g        domain.Granularity
	interval time.Duration

	mu      sync.RWMutex
	entries []domain.LogEntry
	// fetched numbers each Refresh as it starts; applied is the newest one
	// whose result made it into entries.
	fetched uint64
	applied uint64
	pending *Target
	subs    []func([]domain.LogEntry)
	task    *poller.Task
}

// New builds a view for one granularity. A zero interval uses the
// granularity's default cadence.
func New(store Store, g domain.Granularity, interval time.Duration) *View {
	if interval <= 0 {
		interval = g.DefaultInterval()
	}
	return &View{store: store, g: g, interval: interval}
}

func (v *View) Granularity() domain.Granularity { return v.g }

func (v *View) Subscribe(fn func([]domain.LogEntry)) {
	v.mu.Lock()
	v.subs = append(v.subs, fn)
	v.mu.Unlock()
}

func (v *View) Start(ctx context.Context) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.task != nil {
		return
	}
	v.task = poller.Start(ctx, v.interval, func(ctx context.Context) {
		_ = v.Refresh(ctx)
	})
}

func (v *View) Stop() {
	v.mu.Lock()
	t := v.task
	v.task = nil
	v.mu.Unlock()
	t.Stop()
}

// Entries returns a copy of the last fetched list.
func (v *View) Entries() []domain.LogEntry {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]domain.LogEntry(nil), v.entries...)
}

// Row is an entry ready for display, with the historical label folded into
// one of the four known values.
type Row struct {
	domain.LogEntry
	Label domain.TheftAlert `json:"label"`
}

func (v *View) Rows() []Row { return Rows(v.Entries()) }

func Rows(entries []domain.LogEntry) []Row {
	rows := make([]Row, len(entries))
	for i, e := range entries {
		rows[i] = Row{LogEntry: e, Label: e.TheftAlert.Normalize()}
	}
	return rows
}

// Refresh replaces the list with the server's. On failure the previous list
// stays as it was. A fetch that finishes after a later-started one has been
// applied is discarded.
func (v *View) Refresh(ctx context.Context) error {
	v.mu.Lock()
	v.fetched++
	seq := v.fetched
	v.mu.Unlock()

	entries, err := v.store.Logs(ctx, v.g)
	metrics.PollTotal.WithLabelValues(string(v.g)+"_logs", metrics.Outcome(err)).Inc()
	if err != nil {
		log.Warn().Err(err).Str("granularity", string(v.g)).Msg("failed to fetch logs")
		return err
	}
	if entries == nil {
		entries = []domain.LogEntry{}
	}
	if v.g.SortsClientSide() {
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].Date.After(entries[j].Date) })
	}

	v.mu.Lock()
	if ctx.Err() != nil {
		v.mu.Unlock()
		return ctx.Err()
	}
	if seq < v.applied {
		v.mu.Unlock()
		log.Debug().Str("granularity", string(v.g)).Msg("discarding stale log fetch")
		return nil
	}
	v.applied = seq
	v.entries = entries
	subs := slices.Clone(v.subs)
	v.mu.Unlock()

	for _, fn := range subs {
		fn(append([]domain.LogEntry(nil), entries...))
	}
	return nil
}

// DeleteOne removes a single entry and then refreshes, whatever the delete
// returned.
func (v *View) DeleteOne(ctx context.Context, id string) error {
	err := v.store.DeleteLog(ctx, v.g, id)
	v.recordDelete(Target{ID: id}, err)
	return errors.Join(err, v.Refresh(ctx))
}

func (v *View) DeleteAll(ctx context.Context) error {
	err := v.store.DeleteLogs(ctx, v.g)
	v.recordDelete(Target{All: true}, err)
	return errors.Join(err, v.Refresh(ctx))
}

func (v *View) recordDelete(t Target, err error) {
	metrics.LogDeleteTotal.WithLabelValues(string(v.g), t.scope(), metrics.Outcome(err)).Inc()
	if err != nil {
		log.Error().Err(err).Str("granularity", string(v.g)).Str("scope", t.scope()).Str("id", t.ID).Msg("failed to delete logs")
	}
}

// RequestDelete opens the confirmation step. A new request replaces one that
// has not been confirmed yet.
func (v *View) RequestDelete(t Target) error {
	if !t.valid() {
		return ErrInvalidTarget
	}
	v.mu.Lock()
	v.pending = &t
	v.mu.Unlock()
	return nil
}

func (v *View) CancelDelete() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.pending == nil {
		return false
	}
	v.pending = nil
	return true
}

// Pending returns the target awaiting confirmation, if any.
func (v *View) Pending() (Target, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.pending == nil {
		return Target{}, false
	}
	return *v.pending, true
}

// ConfirmDelete runs the pending delete. The confirmation stays open until the
// delete and refresh finish; there is no lock against a second confirm.
func (v *View) ConfirmDelete(ctx context.Context) error {
	v.mu.RLock()
	p := v.pending
	v.mu.RUnlock()
	if p == nil {
		return ErrNothingPending
	}
	t := *p

	var err error
	if t.All {
		err = v.DeleteAll(ctx)
	} else {
		err = v.DeleteOne(ctx, t.ID)
	}

	v.mu.Lock()
	if v.pending == p {
		v.pending = nil
	}
	v.mu.Unlock()
	return err
}
