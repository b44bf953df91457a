package reservations

import (
	"context"
	"testing"
	"time"

	"github.com/kaiyuenlam/UniHaven/internal/app/domain/accommodation"
	"github.com/kaiyuenlam/UniHaven/internal/app/domain/member"
	"github.com/kaiyuenlam/UniHaven/internal/app/domain/notification"
	"github.com/kaiyuenlam/UniHaven/internal/app/domain/owner"
	"github.com/kaiyuenlam/UniHaven/internal/app/domain/reservation"
	"github.com/kaiyuenlam/UniHaven/internal/app/domain/specialist"
	notificationsvc "github.com/kaiyuenlam/UniHaven/internal/app/services/notifications"
	"github.com/kaiyuenlam/UniHaven/internal/app/storage/memory"
)

type fixture struct {
	store *memory.Store
	svc   *Service
	accom accommodation.Accommodation
	memb  member.Member
	spec  specialist.Specialist
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	o, err := store.CreateOwner(ctx, owner.Owner{Name: "Mr Chan", Email: "chan@example.com"})
	if err != nil {
		t.Fatalf("create owner: %v", err)
	}
	a, err := store.CreateAccommodation(ctx, accommodation.Accommodation{
		Name:          "Flat 2B",
		Type:          accommodation.TypeApartment,
		NumBedrooms:   2,
		NumBeds:       2,
		AvailableFrom: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		AvailableTo:   time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		MonthlyRent:   8000,
		OwnerID:       o.ID,
		IsAvailable:   true,
	})
	if err != nil {
		t.Fatalf("create accommodation: %v", err)
	}
	m, err := store.CreateMember(ctx, member.Member{Name: "Alice", Email: "alice@hku.hk"})
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	sp, err := store.CreateSpecialist(ctx, specialist.Specialist{Name: "Sam", Email: "sam@cedars.hku.hk"})
	if err != nil {
		t.Fatalf("create specialist: %v", err)
	}

	notifier := notificationsvc.New(store, store, nil)
	svc := New(store, store, store, notifier, nil, nil)
	return &fixture{store: store, svc: svc, accom: a, memb: m, spec: sp}
}

func reserveWindow() (time.Time, time.Time) {
	return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
}

func TestService_Reserve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	from, to := reserveWindow()

	r, err := f.svc.Reserve(ctx, f.accom.ID, f.memb.ID, from, to, "Alice", "91234567")
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if r.Status != reservation.StatusPending {
		t.Fatalf("status = %s, want PENDING", r.Status)
	}

	a, err := f.store.GetAccommodation(ctx, f.accom.ID)
	if err != nil {
		t.Fatalf("get accommodation: %v", err)
	}
	if a.IsAvailable {
		t.Fatal("accommodation should be unavailable after reserve")
	}

	notifs, err := f.store.ListNotifications(ctx, f.spec.ID)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(notifs) != 1 || notifs[0].Type != notification.TypeReservation {
		t.Fatalf("expected one RESERVATION notification, got %#v", notifs)
	}

	if _, err := f.svc.Reserve(ctx, f.accom.ID, f.memb.ID, from, to, "Bob", "98765432"); err != ErrUnavailable {
		t.Fatalf("second reserve err = %v, want ErrUnavailable", err)
	}
}

func TestService_ReserveValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	from, to := reserveWindow()

	if _, err := f.svc.Reserve(ctx, f.accom.ID, f.memb.ID, from, to, "", ""); err == nil {
		t.Fatal("expected error for missing contact details")
	}
	if _, err := f.svc.Reserve(ctx, f.accom.ID, f.memb.ID, to, from, "Alice", "91234567"); err == nil {
		t.Fatal("expected error for inverted dates")
	}
	outside := time.Date(2027, 2, 1, 0, 0, 0, 0, time.UTC)
	if _, err := f.svc.Reserve(ctx, f.accom.ID, f.memb.ID, from, outside, "Alice", "91234567"); err == nil {
		t.Fatal("expected error for dates outside the availability window")
	}
	if _, err := f.svc.Reserve(ctx, f.accom.ID, "missing", from, to, "Alice", "91234567"); err == nil {
		t.Fatal("expected error for unknown member")
	}
}

func TestService_Cancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	from, to := reserveWindow()

	r, err := f.svc.Reserve(ctx, f.accom.ID, f.memb.ID, from, to, "Alice", "91234567")
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}

	cancelled, err := f.svc.Cancel(ctx, r.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != reservation.StatusCancelled {
		t.Fatalf("status = %s, want CANCELLED", cancelled.Status)
	}

	a, err := f.store.GetAccommodation(ctx, f.accom.ID)
	if err != nil {
		t.Fatalf("get accommodation: %v", err)
	}
	if !a.IsAvailable {
		t.Fatal("accommodation should return to the market after cancel")
	}

	notifs, err := f.store.ListNotifications(ctx, f.spec.ID)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(notifs) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(notifs))
	}
	found := false
	for _, n := range notifs {
		if n.Type == notification.TypeCancellation {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a CANCELLATION notification, got %#v", notifs)
	}
}

func TestService_CancelConfirmedBlocked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	from, to := reserveWindow()

	r, err := f.svc.Reserve(ctx, f.accom.ID, f.memb.ID, from, to, "Alice", "91234567")
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, r.ID, reservation.StatusConfirmed, f.spec.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	if _, err := f.svc.Cancel(ctx, r.ID); err != ErrCancelConfirmed {
		t.Fatalf("cancel confirmed err = %v, want ErrCancelConfirmed", err)
	}
}

func TestService_CancelCompleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	from, to := reserveWindow()

	r, err := f.svc.Reserve(ctx, f.accom.ID, f.memb.ID, from, to, "Alice", "91234567")
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, r.ID, reservation.StatusCompleted, f.spec.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	// Only the CONFIRMED state blocks member cancellation.
	cancelled, err := f.svc.Cancel(ctx, r.ID)
	if err != nil {
		t.Fatalf("cancel completed: %v", err)
	}
	if cancelled.Status != reservation.StatusCancelled {
		t.Fatalf("status = %s, want CANCELLED", cancelled.Status)
	}
	a, err := f.store.GetAccommodation(ctx, f.accom.ID)
	if err != nil {
		t.Fatalf("get accommodation: %v", err)
	}
	if !a.IsAvailable {
		t.Fatal("accommodation should stay on the market")
	}
}

func TestService_UpdateStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	from, to := reserveWindow()

	r, err := f.svc.Reserve(ctx, f.accom.ID, f.memb.ID, from, to, "Alice", "91234567")
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}

	if _, err := f.svc.UpdateStatus(ctx, r.ID, reservation.Status("BOGUS"), f.spec.ID); err == nil {
		t.Fatal("expected error for invalid status")
	}

	updated, err := f.svc.UpdateStatus(ctx, r.ID, reservation.StatusCompleted, f.spec.ID)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.Status != reservation.StatusCompleted {
		t.Fatalf("status = %s, want COMPLETED", updated.Status)
	}
	a, err := f.store.GetAccommodation(ctx, f.accom.ID)
	if err != nil {
		t.Fatalf("get accommodation: %v", err)
	}
	if !a.IsAvailable {
		t.Fatal("completion should free the accommodation")
	}
}

func TestService_CompleteExpired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	from, to := reserveWindow()

	r, err := f.svc.Reserve(ctx, f.accom.ID, f.memb.ID, from, to, "Alice", "91234567")
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, r.ID, reservation.StatusConfirmed, f.spec.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	// Before the stay ends nothing happens.
	n, err := f.svc.CompleteExpired(ctx, to.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 0 {
		t.Fatalf("completed %d reservations before expiry", n)
	}

	n, err = f.svc.CompleteExpired(ctx, to.Add(time.Hour))
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("completed = %d, want 1", n)
	}
	got, err := f.svc.Get(ctx, r.ID)
	if err != nil {
		t.Fatalf("get reservation: %v", err)
	}
	if got.Status != reservation.StatusCompleted {
		t.Fatalf("status = %s, want COMPLETED", got.Status)
	}
}

func TestService_ListForMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	from, to := reserveWindow()

	if _, err := f.svc.Reserve(ctx, f.accom.ID, f.memb.ID, from, to, "Alice", "91234567"); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	list, err := f.svc.ListForMember(ctx, f.memb.ID)
	if err != nil {
		t.Fatalf("list for member: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 reservation, got %d", len(list))
	}
	if _, err := f.svc.ListForMember(ctx, "missing"); err == nil {
		t.Fatal("expected error for unknown member")
	}
}
