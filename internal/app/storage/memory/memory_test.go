package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kaiyuenlam/UniHaven/internal/app/domain/accommodation"
	"github.com/kaiyuenlam/UniHaven/internal/app/domain/auditlog"
	"github.com/kaiyuenlam/UniHaven/internal/app/domain/owner"
	"github.com/kaiyuenlam/UniHaven/internal/app/domain/rating"
	"github.com/kaiyuenlam/UniHaven/internal/app/domain/reservation"
)

func TestAccommodationCRUD(t *testing.T) {
	store := New()
	ctx := context.Background()

	a, err := store.CreateAccommodation(ctx, accommodation.Accommodation{
		Name:        "Flat 5C",
		Type:        accommodation.TypeApartment,
		IsAvailable: true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, a.ID)
	require.False(t, a.CreatedAt.IsZero())

	a.Name = "Flat 5C renamed"
	updated, err := store.UpdateAccommodation(ctx, a)
	require.NoError(t, err)
	require.Equal(t, "Flat 5C renamed", updated.Name)
	require.Equal(t, a.CreatedAt, updated.CreatedAt)
	require.True(t, updated.UpdatedAt.After(updated.CreatedAt) || updated.UpdatedAt.Equal(updated.CreatedAt))

	got, err := store.GetAccommodation(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, updated.Name, got.Name)

	list, err := store.ListAccommodations(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, store.DeleteAccommodation(ctx, a.ID))
	_, err = store.GetAccommodation(ctx, a.ID)
	require.Error(t, err)
	require.Error(t, store.DeleteAccommodation(ctx, a.ID))
}

func TestOwnerEmailLookup(t *testing.T) {
	store := New()
	ctx := context.Background()

	o, err := store.CreateOwner(ctx, owner.Owner{Name: "Mr Chan", Email: "chan@example.com"})
	require.NoError(t, err)

	found, err := store.GetOwnerByEmail(ctx, "chan@example.com")
	require.NoError(t, err)
	require.Equal(t, o.ID, found.ID)

	_, err = store.GetOwnerByEmail(ctx, "ghost@example.com")
	require.Error(t, err)
}

func TestRatingByReservation(t *testing.T) {
	store := New()
	ctx := context.Background()

	r, err := store.CreateRating(ctx, rating.Rating{ReservationID: "res-1", Score: 4})
	require.NoError(t, err)

	found, err := store.GetRatingByReservation(ctx, "res-1")
	require.NoError(t, err)
	require.Equal(t, r.ID, found.ID)

	_, err = store.GetRatingByReservation(ctx, "res-2")
	require.Error(t, err)

	pending, err := store.ListPendingRatings(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	r.Moderated = true
	r.Approved = true
	_, err = store.UpdateRating(ctx, r)
	require.NoError(t, err)

	pending, err = store.ListPendingRatings(ctx)
	require.NoError(t, err)
	require.NotNil(t, pending)
	require.Empty(t, pending)
}

func TestReservationStatusFilter(t *testing.T) {
	store := New()
	ctx := context.Background()

	for _, status := range []reservation.Status{
		reservation.StatusPending,
		reservation.StatusConfirmed,
		reservation.StatusConfirmed,
	} {
		_, err := store.CreateReservation(ctx, reservation.Reservation{
			AccommodationID: "accom-1",
			MemberID:        "member-1",
			Status:          status,
		})
		require.NoError(t, err)
	}

	confirmed, err := store.ListReservationsByStatus(ctx, reservation.StatusConfirmed)
	require.NoError(t, err)
	require.Len(t, confirmed, 2)

	byMember, err := store.ListMemberReservations(ctx, "member-1")
	require.NoError(t, err)
	require.Len(t, byMember, 3)

	// Empty results are non-nil so API payloads render as [] rather than null.
	byMember, err = store.ListMemberReservations(ctx, "nobody")
	require.NoError(t, err)
	require.NotNil(t, byMember)
	require.Empty(t, byMember)

	none, err := store.ListReservationsByStatus(ctx, reservation.StatusCancelled)
	require.NoError(t, err)
	require.NotNil(t, none)
	require.Empty(t, none)
}

func TestAuditEntriesNewestFirst(t *testing.T) {
	store := New()
	ctx := context.Background()

	for _, action := range []string{"FIRST", "SECOND", "THIRD"} {
		_, err := store.AppendAuditEntry(ctx, auditlog.Entry{Action: action, ActorType: auditlog.ActorSystem})
		require.NoError(t, err)
	}

	entries, err := store.ListAuditEntries(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, "THIRD", entries[0].Action)
	require.Equal(t, "FIRST", entries[2].Action)

	limited, err := store.ListAuditEntries(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	require.Equal(t, "THIRD", limited[0].Action)
}
