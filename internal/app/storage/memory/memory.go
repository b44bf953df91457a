package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kaiyuenlam/UniHaven/internal/app/domain/accommodation"
	"github.com/kaiyuenlam/UniHaven/internal/app/domain/auditlog"
	"github.com/kaiyuenlam/UniHaven/internal/app/domain/campus"
	"github.com/kaiyuenlam/UniHaven/internal/app/domain/member"
	"github.com/kaiyuenlam/UniHaven/internal/app/domain/notification"
	"github.com/kaiyuenlam/UniHaven/internal/app/domain/owner"
	"github.com/kaiyuenlam/UniHaven/internal/app/domain/rating"
	"github.com/kaiyuenlam/UniHaven/internal/app/domain/reservation"
	"github.com/kaiyuenlam/UniHaven/internal/app/domain/specialist"
	"github.com/kaiyuenlam/UniHaven/internal/app/storage"
)

// Store is an in-memory implementation of the storage interfaces. It is safe
// for concurrent use and is primarily intended for tests and local development.
type Store struct {
	mu                   sync.RWMutex
	nextID               int64
	campuses             map[string]campus.Campus
	owners               map[string]owner.Owner
	ownersByEmail        map[string]string
	accommodations       map[string]accommodation.Accommodation
	photos               map[string][]accommodation.Photo
	members              map[string]member.Member
	specialists          map[string]specialist.Specialist
	specialistsByEmail   map[string]string
	reservations         map[string]reservation.Reservation
	ratings              map[string]rating.Rating
	ratingsByReservation map[string]string
	notifications        map[string]notification.Notification
	auditEntries         []auditlog.Entry
}

var _ storage.CampusStore = (*Store)(nil)
var _ storage.OwnerStore = (*Store)(nil)
var _ storage.AccommodationStore = (*Store)(nil)
var _ storage.MemberStore = (*Store)(nil)
var _ storage.SpecialistStore = (*Store)(nil)
var _ storage.ReservationStore = (*Store)(nil)
var _ storage.RatingStore = (*Store)(nil)
var _ storage.NotificationStore = (*Store)(nil)
var _ storage.AuditLogStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		nextID:               1,
		campuses:             make(map[string]campus.Campus),
		owners:               make(map[string]owner.Owner),
		ownersByEmail:        make(map[string]string),
		accommodations:       make(map[string]accommodation.Accommodation),
		photos:               make(map[string][]accommodation.Photo),
		members:              make(map[string]member.Member),
		specialists:          make(map[string]specialist.Specialist),
		specialistsByEmail:   make(map[string]string),
		reservations:         make(map[string]reservation.Reservation),
		ratings:              make(map[string]rating.Rating),
		ratingsByReservation: make(map[string]string),
		notifications:        make(map[string]notification.Notification),
	}
}

func (s *Store) nextIDLocked() string {
	id := s.nextID
	s.nextID++
	return fmt.Sprintf("%d", id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CampusStore implementation --------------------------------------------------

func (s *Store) CreateCampus(_ context.Context, c campus.Campus) (campus.Campus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = s.nextIDLocked()
	} else if _, exists := s.campuses[c.ID]; exists {
		return campus.Campus{}, fmt.Errorf("campus %s already exists", c.ID)
	}

	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	s.campuses[c.ID] = c
	return c, nil
}

func (s *Store) UpdateCampus(_ context.Context, c campus.Campus) (campus.Campus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.campuses[c.ID]
	if !ok {
		return campus.Campus{}, fmt.Errorf("campus %s not found", c.ID)
	}
	c.CreatedAt = original.CreatedAt
	c.UpdatedAt = time.Now().UTC()
	s.campuses[c.ID] = c
	return c, nil
}

func (s *Store) GetCampus(_ context.Context, id string) (campus.Campus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.campuses[id]
	if !ok {
		return campus.Campus{}, fmt.Errorf("campus %s not found", id)
	}
	return c, nil
}

func (s *Store) ListCampuses(_ context.Context) ([]campus.Campus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]campus.Campus, 0, len(s.campuses))
	for _, c := range s.campuses {
		result = append(result, c)
	}
	sortByCreated(result, func(c campus.Campus) time.Time { return c.CreatedAt })
	return result, nil
}

func (s *Store) DeleteCampus(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.campuses[id]; !ok {
		return fmt.Errorf("campus %s not found", id)
	}
	delete(s.campuses, id)
	return nil
}

// OwnerStore implementation ---------------------------------------------------

func (s *Store) CreateOwner(_ context.Context, o owner.Owner) (owner.Owner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := normalizeEmail(o.Email)
	if _, exists := s.ownersByEmail[email]; exists {
		return owner.Owner{}, fmt.Errorf("owner with email %s already exists", o.Email)
	}
	if o.ID == "" {
		o.ID = s.nextIDLocked()
	}

	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now
	s.owners[o.ID] = o
	s.ownersByEmail[email] = o.ID
	return o, nil
}

func (s *Store) UpdateOwner(_ context.Context, o owner.Owner) (owner.Owner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.owners[o.ID]
	if !ok {
		return owner.Owner{}, fmt.Errorf("owner %s not found", o.ID)
	}
	o.CreatedAt = original.CreatedAt
	o.UpdatedAt = time.Now().UTC()

	delete(s.ownersByEmail, normalizeEmail(original.Email))
	s.ownersByEmail[normalizeEmail(o.Email)] = o.ID
	s.owners[o.ID] = o
	return o, nil
}

func (s *Store) GetOwner(_ context.Context, id string) (owner.Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.owners[id]
	if !ok {
		return owner.Owner{}, fmt.Errorf("owner %s not found", id)
	}
	return o, nil
}

func (s *Store) GetOwnerByEmail(_ context.Context, email string) (owner.Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.ownersByEmail[normalizeEmail(email)]
	if !ok {
		return owner.Owner{}, fmt.Errorf("owner with email %s not found", email)
	}
	return s.owners[id], nil
}

func (s *Store) ListOwners(_ context.Context) ([]owner.Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]owner.Owner, 0, len(s.owners))
	for _, o := range s.owners {
		result = append(result, o)
	}
	sortByCreated(result, func(o owner.Owner) time.Time { return o.CreatedAt })
	return result, nil
}

// AccommodationStore implementation -------------------------------------------

func (s *Store) CreateAccommodation(_ context.Context, a accommodation.Accommodation) (accommodation.Accommodation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		a.ID = s.nextIDLocked()
	} else if _, exists := s.accommodations[a.ID]; exists {
		return accommodation.Accommodation{}, fmt.Errorf("accommodation %s already exists", a.ID)
	}

	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	s.accommodations[a.ID] = a
	return a, nil
}

func (s *Store) UpdateAccommodation(_ context.Context, a accommodation.Accommodation) (accommodation.Accommodation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.accommodations[a.ID]
	if !ok {
		return accommodation.Accommodation{}, fmt.Errorf("accommodation %s not found", a.ID)
	}
	a.CreatedAt = original.CreatedAt
	a.UpdatedAt = time.Now().UTC()
	s.accommodations[a.ID] = a
	return a, nil
}

func (s *Store) GetAccommodation(_ context.Context, id string) (accommodation.Accommodation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accommodations[id]
	if !ok {
		return accommodation.Accommodation{}, fmt.Errorf("accommodation %s not found", id)
	}
	return a, nil
}

func (s *Store) ListAccommodations(_ context.Context) ([]accommodation.Accommodation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]accommodation.Accommodation, 0, len(s.accommodations))
	for _, a := range s.accommodations {
		result = append(result, a)
	}
	sortByCreated(result, func(a accommodation.Accommodation) time.Time { return a.CreatedAt })
	return result, nil
}

func (s *Store) DeleteAccommodation(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accommodations[id]; !ok {
		return fmt.Errorf("accommodation %s not found", id)
	}
	delete(s.accommodations, id)
	delete(s.photos, id)
	return nil
}

func (s *Store) CreatePhoto(_ context.Context, p accommodation.Photo) (accommodation.Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accommodations[p.AccommodationID]; !ok {
		return accommodation.Photo{}, fmt.Errorf("accommodation %s not found", p.AccommodationID)
	}
	if p.ID == "" {
		p.ID = s.nextIDLocked()
	}
	p.CreatedAt = time.Now().UTC()
	s.photos[p.AccommodationID] = append(s.photos[p.AccommodationID], p)
	return p, nil
}

func (s *Store) ListPhotos(_ context.Context, accommodationID string) ([]accommodation.Photo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	photos := s.photos[accommodationID]
	result := make([]accommodation.Photo, len(photos))
	copy(result, photos)
	return result, nil
}

// MemberStore implementation --------------------------------------------------

func (s *Store) CreateMember(_ context.Context, m member.Member) (member.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.members {
		if normalizeEmail(existing.Email) == normalizeEmail(m.Email) {
			return member.Member{}, fmt.Errorf("member with email %s already exists", m.Email)
		}
	}
	if m.ID == "" {
		m.ID = s.nextIDLocked()
	}

	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	s.members[m.ID] = m
	return m, nil
}

func (s *Store) UpdateMember(_ context.Context, m member.Member) (member.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.members[m.ID]
	if !ok {
		return member.Member{}, fmt.Errorf("member %s not found", m.ID)
	}
	m.CreatedAt = original.CreatedAt
	m.UpdatedAt = time.Now().UTC()
	s.members[m.ID] = m
	return m, nil
}

func (s *Store) GetMember(_ context.Context, id string) (member.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.members[id]
	if !ok {
		return member.Member{}, fmt.Errorf("member %s not found", id)
	}
	return m, nil
}

func (s *Store) ListMembers(_ context.Context) ([]member.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]member.Member, 0, len(s.members))
	for _, m := range s.members {
		result = append(result, m)
	}
	sortByCreated(result, func(m member.Member) time.Time { return m.CreatedAt })
	return result, nil
}

func (s *Store) DeleteMember(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.members[id]; !ok {
		return fmt.Errorf("member %s not found", id)
	}
	delete(s.members, id)
	return nil
}

// SpecialistStore implementation ----------------------------------------------

func (s *Store) CreateSpecialist(_ context.Context, sp specialist.Specialist) (specialist.Specialist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := normalizeEmail(sp.Email)
	if _, exists := s.specialistsByEmail[email]; exists {
		return specialist.Specialist{}, fmt.Errorf("specialist with email %s already exists", sp.Email)
	}
	if sp.ID == "" {
		sp.ID = s.nextIDLocked()
	}

	now := time.Now().UTC()
	sp.CreatedAt = now
	sp.UpdatedAt = now
	s.specialists[sp.ID] = sp
	s.specialistsByEmail[email] = sp.ID
	return sp, nil
}

func (s *Store) UpdateSpecialist(_ context.Context, sp specialist.Specialist) (specialist.Specialist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.specialists[sp.ID]
	if !ok {
		return specialist.Specialist{}, fmt.Errorf("specialist %s not found", sp.ID)
	}
	sp.CreatedAt = original.CreatedAt
	sp.UpdatedAt = time.Now().UTC()

	delete(s.specialistsByEmail, normalizeEmail(original.Email))
	s.specialistsByEmail[normalizeEmail(sp.Email)] = sp.ID
	s.specialists[sp.ID] = sp
	return sp, nil
}

func (s *Store) GetSpecialist(_ context.Context, id string) (specialist.Specialist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sp, ok := s.specialists[id]
	if !ok {
		return specialist.Specialist{}, fmt.Errorf("specialist %s not found", id)
	}
	return sp, nil
}

func (s *Store) GetSpecialistByEmail(_ context.Context, email string) (specialist.Specialist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.specialistsByEmail[normalizeEmail(email)]
	if !ok {
		return specialist.Specialist{}, fmt.Errorf("specialist with email %s not found", email)
	}
	return s.specialists[id], nil
}

func (s *Store) ListSpecialists(_ context.Context) ([]specialist.Specialist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]specialist.Specialist, 0, len(s.specialists))
	for _, sp := range s.specialists {
		result = append(result, sp)
	}
	sortByCreated(result, func(sp specialist.Specialist) time.Time { return sp.CreatedAt })
	return result, nil
}

func (s *Store) DeleteSpecialist(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sp, ok := s.specialists[id]
	if !ok {
		return fmt.Errorf("specialist %s not found", id)
	}
	delete(s.specialistsByEmail, normalizeEmail(sp.Email))
	delete(s.specialists, id)
	return nil
}

// ReservationStore implementation ---------------------------------------------

func (s *Store) CreateReservation(_ context.Context, r reservation.Reservation) (reservation.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = s.nextIDLocked()
	} else if _, exists := s.reservations[r.ID]; exists {
		return reservation.Reservation{}, fmt.Errorf("reservation %s already exists", r.ID)
	}

	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now
	s.reservations[r.ID] = r
	return r, nil
}

func (s *Store) UpdateReservation(_ context.Context, r reservation.Reservation) (reservation.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.reservations[r.ID]
	if !ok {
		return reservation.Reservation{}, fmt.Errorf("reservation %s not found", r.ID)
	}
	r.CreatedAt = original.CreatedAt
	r.UpdatedAt = time.Now().UTC()
	s.reservations[r.ID] = r
	return r, nil
}

func (s *Store) GetReservation(_ context.Context, id string) (reservation.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reservations[id]
	if !ok {
		return reservation.Reservation{}, fmt.Errorf("reservation %s not found", id)
	}
	return r, nil
}

func (s *Store) ListReservations(_ context.Context) ([]reservation.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]reservation.Reservation, 0, len(s.reservations))
	for _, r := range s.reservations {
		result = append(result, r)
	}
	sortByCreated(result, func(r reservation.Reservation) time.Time { return r.CreatedAt })
	return result, nil
}

func (s *Store) ListMemberReservations(_ context.Context, memberID string) ([]reservation.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]reservation.Reservation, 0)
	for _, r := range s.reservations {
		if r.MemberID == memberID {
			result = append(result, r)
		}
	}
	sortByCreated(result, func(r reservation.Reservation) time.Time { return r.CreatedAt })
	return result, nil
}

func (s *Store) ListReservationsByStatus(_ context.Context, status reservation.Status) ([]reservation.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]reservation.Reservation, 0)
	for _, r := range s.reservations {
		if r.Status == status {
			result = append(result, r)
		}
	}
	sortByCreated(result, func(r reservation.Reservation) time.Time { return r.CreatedAt })
	return result, nil
}

// RatingStore implementation --------------------------------------------------

func (s *Store) CreateRating(_ context.Context, r rating.Rating) (rating.Rating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ratingsByReservation[r.ReservationID]; exists {
		return rating.Rating{}, fmt.Errorf("reservation %s already rated", r.ReservationID)
	}
	if r.ID == "" {
		r.ID = s.nextIDLocked()
	}
	r.CreatedAt = time.Now().UTC()
	s.ratings[r.ID] = cloneRating(r)
	s.ratingsByReservation[r.ReservationID] = r.ID
	return r, nil
}

func (s *Store) UpdateRating(_ context.Context, r rating.Rating) (rating.Rating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.ratings[r.ID]
	if !ok {
		return rating.Rating{}, fmt.Errorf("rating %s not found", r.ID)
	}
	r.CreatedAt = original.CreatedAt
	s.ratings[r.ID] = cloneRating(r)
	return r, nil
}

func (s *Store) GetRating(_ context.Context, id string) (rating.Rating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.ratings[id]
	if !ok {
		return rating.Rating{}, fmt.Errorf("rating %s not found", id)
	}
	return cloneRating(r), nil
}

func (s *Store) GetRatingByReservation(_ context.Context, reservationID string) (rating.Rating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.ratingsByReservation[reservationID]
	if !ok {
		return rating.Rating{}, fmt.Errorf("no rating for reservation %s", reservationID)
	}
	return cloneRating(s.ratings[id]), nil
}

func (s *Store) ListRatings(_ context.Context, accommodationID string) ([]rating.Rating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]rating.Rating, 0)
	for _, r := range s.ratings {
		if accommodationID == "" || r.AccommodationID == accommodationID {
			result = append(result, cloneRating(r))
		}
	}
	sortByCreated(result, func(r rating.Rating) time.Time { return r.CreatedAt })
	return result, nil
}

func (s *Store) ListPendingRatings(_ context.Context) ([]rating.Rating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]rating.Rating, 0)
	for _, r := range s.ratings {
		if !r.Moderated {
			result = append(result, cloneRating(r))
		}
	}
	sortByCreated(result, func(r rating.Rating) time.Time { return r.CreatedAt })
	return result, nil
}

// NotificationStore implementation --------------------------------------------

func (s *Store) CreateNotification(_ context.Context, n notification.Notification) (notification.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n.ID == "" {
		n.ID = s.nextIDLocked()
	}
	n.CreatedAt = time.Now().UTC()
	s.notifications[n.ID] = n
	return n, nil
}

func (s *Store) UpdateNotification(_ context.Context, n notification.Notification) (notification.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.notifications[n.ID]
	if !ok {
		return notification.Notification{}, fmt.Errorf("notification %s not found", n.ID)
	}
	n.CreatedAt = original.CreatedAt
	s.notifications[n.ID] = n
	return n, nil
}

func (s *Store) GetNotification(_ context.Context, id string) (notification.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.notifications[id]
	if !ok {
		return notification.Notification{}, fmt.Errorf("notification %s not found", id)
	}
	return n, nil
}

func (s *Store) ListNotifications(_ context.Context, specialistID string) ([]notification.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]notification.Notification, 0)
	for _, n := range s.notifications {
		if specialistID == "" || n.SpecialistID == specialistID {
			result = append(result, n)
		}
	}
	sortByCreated(result, func(n notification.Notification) time.Time { return n.CreatedAt })
	return result, nil
}

// AuditLogStore implementation ------------------------------------------------

func (s *Store) AppendAuditEntry(_ context.Context, e auditlog.Entry) (auditlog.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = s.nextIDLocked()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	s.auditEntries = append(s.auditEntries, e)
	return e, nil
}

func (s *Store) ListAuditEntries(_ context.Context, limit int) ([]auditlog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.auditEntries
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	// Newest first, matching the SQL store.
	result := make([]auditlog.Entry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		result = append(result, entries[i])
	}
	return result, nil
}

// helpers ----------------------------------------------------------------------

func cloneRating(r rating.Rating) rating.Rating {
	if r.ModeratedAt != nil {
		t := *r.ModeratedAt
		r.ModeratedAt = &t
	}
	return r
}

func sortByCreated[T any](items []T, createdAt func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return createdAt(items[i]).Before(createdAt(items[j]))
	})
}
