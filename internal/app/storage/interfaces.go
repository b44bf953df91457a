package storage

import (
	"context"

	"github.com/kaiyuenlam/UniHaven/internal/app/domain/accommodation"
	"github.com/kaiyuenlam/UniHaven/internal/app/domain/auditlog"
	"github.com/kaiyuenlam/UniHaven/internal/app/domain/campus"
	"github.com/kaiyuenlam/UniHaven/internal/app/domain/member"
	"github.com/kaiyuenlam/UniHaven/internal/app/domain/notification"
	"github.com/kaiyuenlam/UniHaven/internal/app/domain/owner"
	"github.com/kaiyuenlam/UniHaven/internal/app/domain/rating"
	"github.com/kaiyuenlam/UniHaven/internal/app/domain/reservation"
	"github.com/kaiyuenlam/UniHaven/internal/app/domain/specialist"
)

// CampusStore persists campus records.
type CampusStore interface {
	CreateCampus(ctx context.Context, c campus.Campus) (campus.Campus, error)
	UpdateCampus(ctx context.Context, c campus.Campus) (campus.Campus, error)
	GetCampus(ctx context.Context, id string) (campus.Campus, error)
	ListCampuses(ctx context.Context) ([]campus.Campus, error)
	DeleteCampus(ctx context.Context, id string) error
}

// OwnerStore persists property owners.
type OwnerStore interface {
	CreateOwner(ctx context.Context, o owner.Owner) (owner.Owner, error)
	UpdateOwner(ctx context.Context, o owner.Owner) (owner.Owner, error)
	GetOwner(ctx context.Context, id string) (owner.Owner, error)
	GetOwnerByEmail(ctx context.Context, email string) (owner.Owner, error)
	ListOwners(ctx context.Context) ([]owner.Owner, error)
}

// AccommodationStore persists accommodations and their photos.
type AccommodationStore interface {
	CreateAccommodation(ctx context.Context, a accommodation.Accommodation) (accommodation.Accommodation, error)
	UpdateAccommodation(ctx context.Context, a accommodation.Accommodation) (accommodation.Accommodation, error)
	GetAccommodation(ctx context.Context, id string) (accommodation.Accommodation, error)
	ListAccommodations(ctx context.Context) ([]accommodation.Accommodation, error)
	DeleteAccommodation(ctx context.Context, id string) error

	CreatePhoto(ctx context.Context, p accommodation.Photo) (accommodation.Photo, error)
	ListPhotos(ctx context.Context, accommodationID string) ([]accommodation.Photo, error)
}

// MemberStore persists HKU members.
type MemberStore interface {
	CreateMember(ctx context.Context, m member.Member) (member.Member, error)
	UpdateMember(ctx context.Context, m member.Member) (member.Member, error)
	GetMember(ctx context.Context, id string) (member.Member, error)
	ListMembers(ctx context.Context) ([]member.Member, error)
	DeleteMember(ctx context.Context, id string) error
}

// SpecialistStore persists CEDARS specialists.
type SpecialistStore interface {
	CreateSpecialist(ctx context.Context, s specialist.Specialist) (specialist.Specialist, error)
	UpdateSpecialist(ctx context.Context, s specialist.Specialist) (specialist.Specialist, error)
	GetSpecialist(ctx context.Context, id string) (specialist.Specialist, error)
	GetSpecialistByEmail(ctx context.Context, email string) (specialist.Specialist, error)
	ListSpecialists(ctx context.Context) ([]specialist.Specialist, error)
	DeleteSpecialist(ctx context.Context, id string) error
}

// ReservationStore persists reservations.
type ReservationStore interface {
	CreateReservation(ctx context.Context, r reservation.Reservation) (reservation.Reservation, error)
	UpdateReservation(ctx context.Context, r reservation.Reservation) (reservation.Reservation, error)
	GetReservation(ctx context.Context, id string) (reservation.Reservation, error)
	ListReservations(ctx context.Context) ([]reservation.Reservation, error)
	ListMemberReservations(ctx context.Context, memberID string) ([]reservation.Reservation, error)
	ListReservationsByStatus(ctx context.Context, status reservation.Status) ([]reservation.Reservation, error)
}

// RatingStore persists ratings.
type RatingStore interface {
	CreateRating(ctx context.Context, r rating.Rating) (rating.Rating, error)
	UpdateRating(ctx context.Context, r rating.Rating) (rating.Rating, error)
	GetRating(ctx context.Context, id string) (rating.Rating, error)
	GetRatingByReservation(ctx context.Context, reservationID string) (rating.Rating, error)
	ListRatings(ctx context.Context, accommodationID string) ([]rating.Rating, error)
	ListPendingRatings(ctx context.Context) ([]rating.Rating, error)
}

// NotificationStore persists specialist notifications.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error)
	UpdateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error)
	GetNotification(ctx context.Context, id string) (notification.Notification, error)
	ListNotifications(ctx context.Context, specialistID string) ([]notification.Notification, error)
}

// AuditLogStore persists action log entries.
type AuditLogStore interface {
	AppendAuditEntry(ctx context.Context, e auditlog.Entry) (auditlog.Entry, error)
	ListAuditEntries(ctx context.Context, limit int) ([]auditlog.Entry, error)
}
