package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sammy002621/parking-management-system-backend/pkg/jobs"
	"github.com/sammy002621/parking-management-system-backend/pkg/mailer"
)

const jobTypeRequestResolved = "slot_request.resolved"

// RequestResolvedNotification describes the email sent when a slot request
// reaches a terminal admin decision.
type RequestResolvedNotification struct {
	RecipientEmail string
	RecipientName  string
	RequestID      string
	SlotNumber     string
	Approved       bool
	Reason         string
}

// NotificationService dispatches resolution emails through a background queue.
// Delivery is at-most-once: a failed send is logged and dropped, never
// retried, and never affects the request lifecycle.
type NotificationService struct {
	queue   *jobs.Queue
	mailer  mailer.Mailer
	logger  *zap.Logger
	enabled bool
}

// NewNotificationService wires the mailer behind an in-memory queue.
func NewNotificationService(m mailer.Mailer, workers int, enabled bool, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = mailer.Noop{}
	}

	s := &NotificationService{mailer: m, logger: logger, enabled: enabled}
	s.queue = jobs.NewQueue("notifications", s.handle, jobs.QueueConfig{
		Workers:    workers,
		MaxRetries: 0,
		Logger:     logger,
	})
	return s
}

// Start launches the queue workers.
func (s *NotificationService) Start(ctx context.Context) {
	if s == nil || !s.enabled {
		return
	}
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *NotificationService) Stop() {
	if s == nil || !s.enabled {
		return
	}
	s.queue.Stop()
}

// NotifyRequestResolved enqueues a resolution email. Enqueue failures are
// absorbed; the caller's operation already succeeded.
func (s *NotificationService) NotifyRequestResolved(notification RequestResolvedNotification) {
	if s == nil || !s.enabled {
		return
	}
	if notification.RecipientEmail == "" {
		s.logger.Warn("skipping notification without recipient", zap.String("request_id", notification.RequestID))
		return
	}

	err := s.queue.Enqueue(jobs.Job{
		ID:      uuid.New().String(),
		Type:    jobTypeRequestResolved,
		Payload: notification,
	})
	if err != nil {
		s.logger.Warn("failed to enqueue resolution notification",
			zap.String("request_id", notification.RequestID), zap.Error(err))
	}
}

func (s *NotificationService) handle(ctx context.Context, job jobs.Job) error {
	notification, ok := job.Payload.(RequestResolvedNotification)
	if !ok {
		return fmt.Errorf("unexpected payload type for job %s", job.ID)
	}

	subject, body := composeResolutionEmail(notification)
	if err := s.mailer.Send(ctx, notification.RecipientEmail, subject, body); err != nil {
		return fmt.Errorf("send resolution email for request %s: %w", notification.RequestID, err)
	}

	s.logger.Info("resolution notification sent",
		zap.String("request_id", notification.RequestID),
		zap.Bool("approved", notification.Approved))
	return nil
}

func composeResolutionEmail(n RequestResolvedNotification) (string, string) {
	name := n.RecipientName
	if name == "" {
		name = "there"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Hi %s,\n\n", name)

	var subject string
	if n.Approved {
		subject = "Your parking slot request was approved"
		fmt.Fprintf(&sb, "Your parking slot request has been approved.\n")
		if n.SlotNumber != "" {
			fmt.Fprintf(&sb, "Assigned slot: %s\n", n.SlotNumber)
		}
	} else {
		subject = "Your parking slot request was rejected"
		fmt.Fprintf(&sb, "Your parking slot request has been rejected.\n")
		if n.Reason != "" {
			fmt.Fprintf(&sb, "Reason: %s\n", n.Reason)
		}
	}

	fmt.Fprintf(&sb, "\nRequest reference: %s\n", n.RequestID)
	return subject, sb.String()
}
