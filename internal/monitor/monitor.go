// Package monitor samples live power-flow data and keeps the classification of
// the most recently applied snapshot.
package monitor

import (
	"slices"
	"sync"
	"time"

	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/classifier"
	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/domain"
	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/metrics"
)

// View is what the operator sees. Loading means there is no snapshot, either
// because nothing has arrived yet or because the last poll failed.
type View struct {
	Loading        bool                   `json:"loading"`
	Snapshot       *domain.Snapshot       `json:"snapshot,omitempty"`
	Classification *domain.Classification `json:"classification,omitempty"`
	UpdatedAt      time.Time              `json:"updatedAt"`
}

type Monitor struct {
	mu   sync.RWMutex
	view View
	subs []func(View)
	now  func() time.Time
}

// NewMonitor classifies every snapshot the sampler applies.
func NewMonitor(s *Sampler) *Monitor {
	m := &Monitor{view: View{Loading: true}, now: time.Now}
	s.Subscribe(m.apply)
	return m
}

func (m *Monitor) Subscribe(fn func(View)) {
	m.mu.Lock()
	m.subs = append(m.subs, fn)
	m.mu.Unlock()
}

func (m *Monitor) View() View {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.view
}

// Area is the label of the current snapshot, empty when there is none.
func (m *Monitor) Area() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.view.Snapshot == nil {
		return ""
	}
	return m.view.Snapshot.Area
}

func (m *Monitor) apply(snap *domain.Snapshot) {
	v := View{Loading: true, UpdatedAt: m.now()}
	if snap != nil {
		c := classifier.Classify(*snap)
		v = View{Snapshot: snap, Classification: &c, UpdatedAt: v.UpdatedAt}
		metrics.ObserveClassification(c)
	}

	m.mu.Lock()
	m.view = v
	subs := slices.Clone(m.subs)
	m.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
}
