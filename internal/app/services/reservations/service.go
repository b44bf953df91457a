// Package reservations manages the booking lifecycle: reserve, cancel,
// specialist status transitions, and automatic completion of expired stays.
package reservations

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kaiyuenlam/UniHaven/internal/app/domain/auditlog"
	"github.com/kaiyuenlam/UniHaven/internal/app/domain/notification"
	"github.com/kaiyuenlam/UniHaven/internal/app/domain/reservation"
	auditsvc "github.com/kaiyuenlam/UniHaven/internal/app/services/auditlog"
	"github.com/kaiyuenlam/UniHaven/internal/app/services/notifications"
	"github.com/kaiyuenlam/UniHaven/internal/app/storage"
	"github.com/kaiyuenlam/UniHaven/pkg/logger"
)

// Conflict errors surfaced as 400s at the HTTP layer.
var (
	ErrUnavailable     = fmt.Errorf("accommodation is not available")
	ErrCancelConfirmed = fmt.Errorf("confirmed reservations cannot be cancelled; contact a specialist")
)

// Service manages reservations.
type Service struct {
	store          storage.ReservationStore
	accommodations storage.AccommodationStore
	members        storage.MemberStore
	notifier       *notifications.Service
	audit          *auditsvc.Recorder
	log            *logger.Logger
}

// New constructs a reservation service. notifier and audit may be nil.
func New(store storage.ReservationStore, accommodations storage.AccommodationStore, members storage.MemberStore, notifier *notifications.Service, audit *auditsvc.Recorder, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("reservations")
	}
	return &Service{
		store:          store,
		accommodations: accommodations,
		members:        members,
		notifier:       notifier,
		audit:          audit,
		log:            log,
	}
}

// Reserve books an accommodation for a member. The accommodation is taken
// off the market, every specialist is notified, and the action is logged.
func (s *Service) Reserve(ctx context.Context, accommodationID, memberID string, from, to time.Time, contactName, contactPhone string) (reservation.Reservation, error) {
	contactName = strings.TrimSpace(contactName)
	contactPhone = strings.TrimSpace(contactPhone)
	if contactName == "" || contactPhone == "" {
		return reservation.Reservation{}, fmt.Errorf("contact_name and contact_phone are required")
	}
	if from.IsZero() || to.IsZero() || !to.After(from) {
		return reservation.Reservation{}, fmt.Errorf("reserved_from must precede reserved_to")
	}

	a, err := s.accommodations.GetAccommodation(ctx, accommodationID)
	if err != nil {
		return reservation.Reservation{}, err
	}
	if !a.IsAvailable {
		return reservation.Reservation{}, ErrUnavailable
	}
	if from.Before(a.AvailableFrom) || to.After(a.AvailableTo) {
		return reservation.Reservation{}, fmt.Errorf("reservation dates fall outside the availability window")
	}
	m, err := s.members.GetMember(ctx, memberID)
	if err != nil {
		return reservation.Reservation{}, err
	}

	r, err := s.store.CreateReservation(ctx, reservation.Reservation{
		AccommodationID: a.ID,
		MemberID:        m.ID,
		ReservedFrom:    from.UTC(),
		ReservedTo:      to.UTC(),
		ContactName:     contactName,
		ContactPhone:    contactPhone,
		Status:          reservation.StatusPending,
	})
	if err != nil {
		return reservation.Reservation{}, err
	}

	a.IsAvailable = false
	if _, err := s.accommodations.UpdateAccommodation(ctx, a); err != nil {
		return reservation.Reservation{}, fmt.Errorf("mark accommodation unavailable: %w", err)
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyAll(ctx, r.ID, notification.TypeReservation); err != nil {
			s.log.WithError(err).WithField("reservation_id", r.ID).Warn("reservation notification fan-out failed")
		}
	}
	s.audit.Record(ctx, "CREATE_RESERVATION", auditlog.ActorMember, m.ID, a.ID, r.ID)

	s.log.WithField("reservation_id", r.ID).
		WithField("accommodation_id", a.ID).
		WithField("member_id", m.ID).
		Info("reservation created")
	return r, nil
}

// Cancel cancels a reservation. Confirmed reservations must go through a
// specialist. The accommodation returns to the market and specialists are
// notified.
func (s *Service) Cancel(ctx context.Context, id string) (reservation.Reservation, error) {
	r, err := s.store.GetReservation(ctx, id)
	if err != nil {
		return reservation.Reservation{}, err
	}
	switch r.Status {
	case reservation.StatusConfirmed:
		return reservation.Reservation{}, ErrCancelConfirmed
	case reservation.StatusCancelled:
		return r, nil
	}

	r.Status = reservation.StatusCancelled
	r, err = s.store.UpdateReservation(ctx, r)
	if err != nil {
		return reservation.Reservation{}, err
	}

	if err := s.freeAccommodation(ctx, r.AccommodationID); err != nil {
		s.log.WithError(err).WithField("accommodation_id", r.AccommodationID).Warn("free accommodation failed")
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyAll(ctx, r.ID, notification.TypeCancellation); err != nil {
			s.log.WithError(err).WithField("reservation_id", r.ID).Warn("cancellation notification fan-out failed")
		}
	}
	s.audit.Record(ctx, "CANCEL_RESERVATION", auditlog.ActorMember, r.MemberID, r.AccommodationID, r.ID)

	s.log.WithField("reservation_id", r.ID).Info("reservation cancelled")
	return r, nil
}

// UpdateStatus is the specialist transition of the reservation lifecycle.
// Cancelling through here frees the accommodation just like Cancel does.
func (s *Service) UpdateStatus(ctx context.Context, id string, status reservation.Status, specialistID string) (reservation.Reservation, error) {
	if !status.Valid() {
		return reservation.Reservation{}, fmt.Errorf("invalid reservation status %q", status)
	}
	r, err := s.store.GetReservation(ctx, id)
	if err != nil {
		return reservation.Reservation{}, err
	}
	if r.Status == status {
		return r, nil
	}

	previous := r.Status
	r.Status = status
	r, err = s.store.UpdateReservation(ctx, r)
	if err != nil {
		return reservation.Reservation{}, err
	}

	if status == reservation.StatusCancelled || status == reservation.StatusCompleted {
		if err := s.freeAccommodation(ctx, r.AccommodationID); err != nil {
			s.log.WithError(err).WithField("accommodation_id", r.AccommodationID).Warn("free accommodation failed")
		}
	}
	s.audit.Record(ctx, "UPDATE_RESERVATION_STATUS", auditlog.ActorSpecialist, specialistID, r.AccommodationID,
		fmt.Sprintf("%s: %s -> %s", r.ID, previous, status))

	s.log.WithField("reservation_id", r.ID).
		WithField("from", string(previous)).
		WithField("to", string(status)).
		Info("reservation status updated")
	return r, nil
}

// Get retrieves one reservation.
func (s *Service) Get(ctx context.Context, id string) (reservation.Reservation, error) {
	return s.store.GetReservation(ctx, id)
}

// List returns all reservations.
func (s *Service) List(ctx context.Context) ([]reservation.Reservation, error) {
	return s.store.ListReservations(ctx)
}

// ListForMember returns one member's reservations.
func (s *Service) ListForMember(ctx context.Context, memberID string) ([]reservation.Reservation, error) {
	if _, err := s.members.GetMember(ctx, memberID); err != nil {
		return nil, err
	}
	return s.store.ListMemberReservations(ctx, memberID)
}

// CompleteExpired moves CONFIRMED reservations whose stay has ended to
// COMPLETED and frees their accommodations. It returns how many were
// completed.
func (s *Service) CompleteExpired(ctx context.Context, now time.Time) (int, error) {
	confirmed, err := s.store.ListReservationsByStatus(ctx, reservation.StatusConfirmed)
	if err != nil {
		return 0, err
	}

	completed := 0
	for _, r := range confirmed {
		if r.ReservedTo.After(now) {
			continue
		}
		r.Status = reservation.StatusCompleted
		if _, err := s.store.UpdateReservation(ctx, r); err != nil {
			s.log.WithError(err).WithField("reservation_id", r.ID).Warn("auto-complete failed")
			continue
		}
		if err := s.freeAccommodation(ctx, r.AccommodationID); err != nil {
			s.log.WithError(err).WithField("accommodation_id", r.AccommodationID).Warn("free accommodation failed")
		}
		s.audit.Record(ctx, "COMPLETE_RESERVATION", auditlog.ActorSystem, "", r.AccommodationID, r.ID)
		completed++
	}
	return completed, nil
}

func (s *Service) freeAccommodation(ctx context.Context, accommodationID string) error {
	a, err := s.accommodations.GetAccommodation(ctx, accommodationID)
	if err != nil {
		return err
	}
	if a.IsAvailable {
		return nil
	}
	a.IsAvailable = true
	_, err = s.accommodations.UpdateAccommodation(ctx, a)
	return err
}
