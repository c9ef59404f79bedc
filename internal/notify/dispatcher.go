// Package notify sends operator-confirmed alert emails through the backend.
package notify

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/api"
	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/domain"
	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/metrics"
)

// GenericFailure is shown when the request never produced a server verdict.
const GenericFailure = "Failed to send email."

type EmailSender interface {
	SendEmail(ctx context.Context, req domain.EmailRequest) (*domain.EmailResponse, error)
}

type Ack struct {
	Kind    domain.AlertKind `json:"type"`
	Area    string           `json:"area"`
	Message string           `json:"message"`
}

// DispatchError is what the operator sees when a send fails. Err keeps the
// underlying *api.TransportError or *api.RejectionError.
type DispatchError struct {
	Kind    domain.AlertKind
	Message string
	Err     error
}

func (e *DispatchError) Error() string { return e.Message }

func (e *DispatchError) Unwrap() error { return e.Err }

type Dispatcher struct {
	sender EmailSender
}

func NewDispatcher(sender EmailSender) *Dispatcher {
	return &Dispatcher{sender: sender}
}

// Send issues exactly one request. Failures are final for this attempt; the
// operator has to start over.
func (d *Dispatcher) Send(ctx context.Context, kind domain.AlertKind, area string) (Ack, error) {
	if area == "" {
		area = domain.UnknownArea
	}
	resp, err := d.sender.SendEmail(ctx, domain.EmailRequest{Type: kind, Area: area})
	metrics.DispatchTotal.WithLabelValues(string(kind), metrics.Outcome(err)).Inc()
	if err != nil {
		msg := GenericFailure
		var rej *api.RejectionError
		if errors.As(err, &rej) && rej.Message != "" {
			msg = "Failed to send email: " + rej.Message
		}
		log.Error().Err(err).Str("kind", string(kind)).Str("area", area).Msg("email dispatch failed")
		return Ack{}, &DispatchError{Kind: kind, Message: msg, Err: err}
	}

	log.Info().Str("kind", string(kind)).Str("area", area).Msg("email dispatched")
	return Ack{Kind: kind, Area: area, Message: resp.Message}, nil
}
