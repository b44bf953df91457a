// Package notifications delivers reservation events to CEDARS specialists.
package notifications

import (
	"context"

	"github.com/kaiyuenlam/UniHaven/internal/app/domain/notification"
	"github.com/kaiyuenlam/UniHaven/internal/app/storage"
	"github.com/kaiyuenlam/UniHaven/pkg/logger"
)

// Service creates and lists specialist notifications.
type Service struct {
	store       storage.NotificationStore
	specialists storage.SpecialistStore
	log         *logger.Logger
}

// New constructs a notification service.
func New(store storage.NotificationStore, specialists storage.SpecialistStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("notifications")
	}
	return &Service{store: store, specialists: specialists, log: log}
}

// NotifyAll fans a reservation event out to every specialist. Per-specialist
// failures are logged and skipped so one bad row cannot block the rest.
func (s *Service) NotifyAll(ctx context.Context, reservationID string, typ notification.Type) error {
	all, err := s.specialists.ListSpecialists(ctx)
	if err != nil {
		return err
	}
	for _, sp := range all {
		_, err := s.store.CreateNotification(ctx, notification.Notification{
			SpecialistID:  sp.ID,
			ReservationID: reservationID,
			Type:          typ,
		})
		if err != nil {
			s.log.WithError(err).
				WithField("specialist_id", sp.ID).
				WithField("reservation_id", reservationID).
				Warn("notification create failed")
		}
	}
	s.log.WithField("reservation_id", reservationID).
		WithField("type", string(typ)).
		WithField("specialists", len(all)).
		Info("notifications dispatched")
	return nil
}

// List returns notifications, optionally scoped to one specialist.
func (s *Service) List(ctx context.Context, specialistID string) ([]notification.Notification, error) {
	return s.store.ListNotifications(ctx, specialistID)
}

// MarkRead flags a notification as read.
func (s *Service) MarkRead(ctx context.Context, id string) (notification.Notification, error) {
	n, err := s.store.GetNotification(ctx, id)
	if err != nil {
		return notification.Notification{}, err
	}
	if n.Read {
		return n, nil
	}
	n.Read = true
	return s.store.UpdateNotification(ctx, n)
}
