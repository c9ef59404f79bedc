package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/domain"
)

var (
	PollTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gridmon",
		Name:      "poll_total",
		Help:      "Polls issued by each view, by outcome.",
	}, []string{"view", "outcome"})

	PowerLossWatts = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "gridmon",
		Name:      "power_loss_watts",
		Help:      "Power loss from the most recently applied snapshot.",
	})

	TheftDetected = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "gridmon",
		Name:      "theft_detected",
		Help:      "1 when the latest classification flagged theft.",
	})

	HealthVerdict = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "gridmon",
		Name:      "health_verdict",
		Help:      "1 for the current meter-fleet health verdict, 0 otherwise.",
	}, []string{"verdict"})

	DispatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gridmon",
		Name:      "dispatch_total",
		Help:      "Notification dispatches by kind and outcome.",
	}, []string{"kind", "outcome"})

	LogDeleteTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gridmon",
		Name:      "log_delete_total",
		Help:      "Log deletions by granularity, scope and outcome.",
	}, []string{"granularity", "scope", "outcome"})
)

var healthVerdicts = []domain.HealthVerdict{
	domain.NoMetersFound, domain.SystemNormal, domain.PowerOff, domain.SystemFault,
}

// ObserveClassification publishes the latest classification.
func ObserveClassification(c domain.Classification) {
	PowerLossWatts.Set(c.PowerLoss)
	if c.Theft == domain.TheftDetected {
		TheftDetected.Set(1)
	} else {
		TheftDetected.Set(0)
	}
	for _, v := range healthVerdicts {
		g := HealthVerdict.WithLabelValues(v.String())
		if v == c.Health {
			g.Set(1)
		} else {
			g.Set(0)
		}
	}
}

func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
