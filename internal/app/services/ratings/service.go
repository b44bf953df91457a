// Package ratings manages post-stay ratings and their specialist moderation.
package ratings

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/kaiyuenlam/UniHaven/internal/app/domain/auditlog"
	"github.com/kaiyuenlam/UniHaven/internal/app/domain/rating"
	"github.com/kaiyuenlam/UniHaven/internal/app/domain/reservation"
	auditsvc "github.com/kaiyuenlam/UniHaven/internal/app/services/auditlog"
	"github.com/kaiyuenlam/UniHaven/internal/app/storage"
	"github.com/kaiyuenlam/UniHaven/pkg/logger"
)

// Conflict errors surfaced as 400s at the HTTP layer.
var (
	ErrNotCompleted    = fmt.Errorf("only completed reservations can be rated")
	ErrAlreadyRated    = fmt.Errorf("reservation already has a rating")
	ErrScoreOutOfRange = fmt.Errorf("score must be between %d and %d", rating.MinScore, rating.MaxScore)
)

// Service manages ratings.
type Service struct {
	store        storage.RatingStore
	reservations storage.ReservationStore
	audit        *auditsvc.Recorder
	log          *logger.Logger
}

// New constructs a rating service. audit may be nil.
func New(store storage.RatingStore, reservations storage.ReservationStore, audit *auditsvc.Recorder, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("ratings")
	}
	return &Service{store: store, reservations: reservations, audit: audit, log: log}
}

// Rate records a member's rating for a completed reservation. Ratings start
// unmoderated and do not count toward averages until approved.
func (s *Service) Rate(ctx context.Context, reservationID string, score int, comment string) (rating.Rating, error) {
	if score < rating.MinScore || score > rating.MaxScore {
		return rating.Rating{}, ErrScoreOutOfRange
	}

	r, err := s.reservations.GetReservation(ctx, reservationID)
	if err != nil {
		return rating.Rating{}, err
	}
	if r.Status != reservation.StatusCompleted {
		return rating.Rating{}, ErrNotCompleted
	}
	if _, err := s.store.GetRatingByReservation(ctx, reservationID); err == nil {
		return rating.Rating{}, ErrAlreadyRated
	}

	rt, err := s.store.CreateRating(ctx, rating.Rating{
		AccommodationID: r.AccommodationID,
		MemberID:        r.MemberID,
		ReservationID:   r.ID,
		Score:           score,
		Comment:         strings.TrimSpace(comment),
	})
	if err != nil {
		return rating.Rating{}, err
	}

	s.audit.Record(ctx, "CREATE_RATING", auditlog.ActorMember, r.MemberID, r.AccommodationID, rt.ID)
	s.log.WithField("rating_id", rt.ID).
		WithField("reservation_id", r.ID).
		WithField("score", score).
		Info("rating created")
	return rt, nil
}

// Moderate approves or rejects a rating, stamping the moderating
// specialist and time.
func (s *Service) Moderate(ctx context.Context, id string, approve bool, specialistID, note string) (rating.Rating, error) {
	rt, err := s.store.GetRating(ctx, id)
	if err != nil {
		return rating.Rating{}, err
	}

	now := time.Now().UTC()
	rt.Moderated = true
	rt.Approved = approve
	rt.ModeratedBy = strings.TrimSpace(specialistID)
	rt.ModerationNote = strings.TrimSpace(note)
	rt.ModeratedAt = &now

	rt, err = s.store.UpdateRating(ctx, rt)
	if err != nil {
		return rating.Rating{}, err
	}

	s.audit.Record(ctx, "MODERATE_RATING", auditlog.ActorSpecialist, specialistID, rt.AccommodationID,
		fmt.Sprintf("%s approved=%t", rt.ID, approve))
	s.log.WithField("rating_id", rt.ID).
		WithField("approved", approve).
		Info("rating moderated")
	return rt, nil
}

// Get retrieves one rating.
func (s *Service) Get(ctx context.Context, id string) (rating.Rating, error) {
	return s.store.GetRating(ctx, id)
}

// List returns ratings, optionally scoped to an accommodation.
func (s *Service) List(ctx context.Context, accommodationID string) ([]rating.Rating, error) {
	return s.store.ListRatings(ctx, accommodationID)
}

// ListPending returns ratings awaiting moderation.
func (s *Service) ListPending(ctx context.Context) ([]rating.Rating, error) {
	return s.store.ListPendingRatings(ctx)
}

// AverageApproved returns the mean approved score for an accommodation,
// rounded to one decimal, or nil when no approved ratings exist.
func (s *Service) AverageApproved(ctx context.Context, accommodationID string) (*float64, error) {
	all, err := s.store.ListRatings(ctx, accommodationID)
	if err != nil {
		return nil, err
	}
	sum, count := 0, 0
	for _, rt := range all {
		if rt.Moderated && rt.Approved {
			sum += rt.Score
			count++
		}
	}
	if count == 0 {
		return nil, nil
	}
	avg := math.Round(float64(sum)/float64(count)*10) / 10
	return &avg, nil
}
