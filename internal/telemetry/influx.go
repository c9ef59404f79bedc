// Package telemetry keeps a time-series history of classified snapshots in
// InfluxDB.
package telemetry

import (
	"context"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/domain"
	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/monitor"
)

const measurement = "street_power"

// PointWriter is the subset of api.WriteAPIBlocking the recorder needs.
type PointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

// Recorder queues points and writes them from its own goroutine, so a slow or
// unreachable InfluxDB never holds up the sampler that feeds Observe.
type Recorder struct {
	writer  PointWriter
	timeout time.Duration
	client  func()

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.RWMutex
	points chan *write.Point
	closed bool
}

func NewRecorder(w PointWriter) *Recorder {
	return newRecorder(w, 5*time.Second, 64)
}

func newRecorder(w PointWriter, timeout time.Duration, queue int) *Recorder {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Recorder{
		writer:  w,
		timeout: timeout,
		client:  func() {},
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		points:  make(chan *write.Point, queue),
	}
	go r.run()
	return r
}

// Dial connects to InfluxDB v2 with a blocking writer.
func Dial(url, token, org, bucket string) *Recorder {
	client := influxdb2.NewClient(url, token)
	r := NewRecorder(client.WriteAPIBlocking(org, bucket))
	r.client = client.Close
	return r
}

// Close aborts the write in flight, drops whatever is still queued and waits
// for the writer goroutine before closing the client. Safe to call twice.
func (r *Recorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.points)
	r.mu.Unlock()

	r.cancel()
	<-r.done
	r.client()
}

// Observe queues one point per classified view. Loading views carry nothing to
// record and are skipped. A full queue drops the point.
func (r *Recorder) Observe(v monitor.View) {
	p := Point(v)
	if p == nil {
		return
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return
	}
	select {
	case r.points <- p:
	default:
		log.Warn().Msg("telemetry queue full, dropping point")
	}
}

func (r *Recorder) run() {
	defer close(r.done)
	for p := range r.points {
		if r.ctx.Err() != nil {
			continue
		}
		ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
		err := r.writer.WritePoint(ctx, p)
		cancel()
		if err != nil {
			log.Warn().Err(err).Msg("failed to write telemetry point")
		}
	}
}

func Point(v monitor.View) *write.Point {
	if v.Loading || v.Snapshot == nil || v.Classification == nil {
		return nil
	}
	s, c := v.Snapshot, v.Classification

	tags := map[string]string{
		"area":   s.Area,
		"health": c.Health.String(),
	}
	fields := map[string]interface{}{
		"power_loss_w": c.PowerLoss,
		"theft":        c.Theft == domain.TheftDetected,
		"meters":       len(s.MeterStatus),
	}
	addField(fields, "street_input_w", s.StreetInputPower)
	addField(fields, "to_next_w", s.ToNextPower)
	addField(fields, "house_total_w", s.HouseTotalPower)
	addField(fields, "street_input_day", s.StreetInputTotalDay)
	addField(fields, "to_next_day", s.ToNextTotalDay)
	addField(fields, "house_total_day", s.HouseTotalTotalDay)

	return influxdb2.NewPoint(measurement, tags, fields, v.UpdatedAt)
}

func addField(fields map[string]interface{}, key string, v *float64) {
	if v != nil {
		fields[key] = *v
	}
}
