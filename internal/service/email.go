package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/domain"
)

var ErrInvalidAlertType = errors.New("invalid alert type")

// LogNotifier writes alerts to the log. It stands in for SNS when cloud
// services are off.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, subject, message string) error {
	log.Warn().Str("subject", subject).Msg(message)
	return nil
}

type EmailService struct {
	notifier Notifier
	auditor  AlertAuditor
	area     string
	now      func() time.Time
}

// Send validates and delivers an operator alert. The audit write is best
// effort and never fails the send.
func (s *EmailService) Send(ctx context.Context, req domain.EmailRequest) (domain.EmailResponse, error) {
	if !req.Type.Valid() {
		return domain.EmailResponse{Message: "Invalid alert type"}, ErrInvalidAlertType
	}
	area := req.Area
	if area == "" {
		area = s.area
	}
	if area == "" {
		area = domain.UnknownArea
	}

	subject, body := compose(req.Type, area, s.now())
	if err := s.notifier.Notify(ctx, subject, body); err != nil {
		log.Error().Err(err).Str("type", string(req.Type)).Str("area", area).Msg("alert delivery failed")
		return domain.EmailResponse{Message: err.Error()}, err
	}

	if s.auditor != nil {
		rec := domain.AlertRecord{ID: uuid.NewString(), Kind: req.Type, Area: area, SentAt: s.now()}
		if err := s.auditor.RecordAlert(ctx, rec); err != nil {
			log.Warn().Err(err).Str("alert_id", rec.ID).Msg("failed to record alert")
		}
	}
	return domain.EmailResponse{Success: true, Message: "Email sent successfully"}, nil
}

func compose(kind domain.AlertKind, area string, at time.Time) (subject, body string) {
	switch kind {
	case domain.AlertFault:
		subject = "Grid Fault Reported: " + area
		body = fmt.Sprintf("An operator reported a system fault.\n\nArea: %s\nTime: %s\n\nPlease dispatch maintenance.",
			area, at.Format(time.RFC3339))
	default:
		subject = "Theft Investigation Requested: " + area
		body = fmt.Sprintf("An operator requested a power theft investigation.\n\nArea: %s\nTime: %s\n\nPlease investigate immediately.",
			area, at.Format(time.RFC3339))
	}
	return subject, body
}
