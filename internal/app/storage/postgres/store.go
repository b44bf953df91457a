package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

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

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sqlx.DB
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

// New creates a Store using the provided database handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// --- CampusStore ------------------------------------------------------------

type campusRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Latitude  float64   `db:"latitude"`
	Longitude float64   `db:"longitude"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r campusRow) domain() campus.Campus {
	return campus.Campus{
		ID: r.ID, Name: r.Name,
		Latitude: r.Latitude, Longitude: r.Longitude,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

func (s *Store) CreateCampus(ctx context.Context, c campus.Campus) (campus.Campus, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO campuses (id, name, latitude, longitude, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, c.ID, c.Name, c.Latitude, c.Longitude, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return campus.Campus{}, err
	}
	return c, nil
}

func (s *Store) UpdateCampus(ctx context.Context, c campus.Campus) (campus.Campus, error) {
	existing, err := s.GetCampus(ctx, c.ID)
	if err != nil {
		return campus.Campus{}, err
	}
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE campuses SET name = $2, latitude = $3, longitude = $4, updated_at = $5
		WHERE id = $1
	`, c.ID, c.Name, c.Latitude, c.Longitude, c.UpdatedAt)
	if err != nil {
		return campus.Campus{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return campus.Campus{}, sql.ErrNoRows
	}
	return c, nil
}

func (s *Store) GetCampus(ctx context.Context, id string) (campus.Campus, error) {
	var row campusRow
	err := s.db.GetContext(ctx, &row, `
		SELECT id, name, latitude, longitude, created_at, updated_at
		FROM campuses WHERE id = $1
	`, id)
	if err != nil {
		return campus.Campus{}, err
	}
	return row.domain(), nil
}

func (s *Store) ListCampuses(ctx context.Context) ([]campus.Campus, error) {
	var rows []campusRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, name, latitude, longitude, created_at, updated_at
		FROM campuses ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	result := make([]campus.Campus, 0, len(rows))
	for _, r := range rows {
		result = append(result, r.domain())
	}
	return result, nil
}

func (s *Store) DeleteCampus(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM campuses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// --- OwnerStore -------------------------------------------------------------

type ownerRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Phone     string    `db:"phone"`
	Address   string    `db:"address"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r ownerRow) domain() owner.Owner {
	return owner.Owner{
		ID: r.ID, Name: r.Name, Email: r.Email, Phone: r.Phone, Address: r.Address,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

func (s *Store) CreateOwner(ctx context.Context, o owner.Owner) (owner.Owner, error) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO owners (id, name, email, phone, address, created_at, updated_at)
		VALUES ($1, $2, lower($3), $4, $5, $6, $7)
	`, o.ID, o.Name, o.Email, o.Phone, o.Address, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return owner.Owner{}, err
	}
	return o, nil
}

func (s *Store) UpdateOwner(ctx context.Context, o owner.Owner) (owner.Owner, error) {
	existing, err := s.GetOwner(ctx, o.ID)
	if err != nil {
		return owner.Owner{}, err
	}
	o.CreatedAt = existing.CreatedAt
	o.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE owners SET name = $2, email = lower($3), phone = $4, address = $5, updated_at = $6
		WHERE id = $1
	`, o.ID, o.Name, o.Email, o.Phone, o.Address, o.UpdatedAt)
	if err != nil {
		return owner.Owner{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return owner.Owner{}, sql.ErrNoRows
	}
	return o, nil
}

func (s *Store) GetOwner(ctx context.Context, id string) (owner.Owner, error) {
	var row ownerRow
	err := s.db.GetContext(ctx, &row, `
		SELECT id, name, email, phone, address, created_at, updated_at
		FROM owners WHERE id = $1
	`, id)
	if err != nil {
		return owner.Owner{}, err
	}
	return row.domain(), nil
}

func (s *Store) GetOwnerByEmail(ctx context.Context, email string) (owner.Owner, error) {
	var row ownerRow
	err := s.db.GetContext(ctx, &row, `
		SELECT id, name, email, phone, address, created_at, updated_at
		FROM owners WHERE email = lower($1)
	`, email)
	if err != nil {
		return owner.Owner{}, err
	}
	return row.domain(), nil
}

func (s *Store) ListOwners(ctx context.Context) ([]owner.Owner, error) {
	var rows []ownerRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, name, email, phone, address, created_at, updated_at
		FROM owners ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	result := make([]owner.Owner, 0, len(rows))
	for _, r := range rows {
		result = append(result, r.domain())
	}
	return result, nil
}

// --- AccommodationStore -----------------------------------------------------

type accommodationRow struct {
	ID            string    `db:"id"`
	Name          string    `db:"name"`
	BuildingName  string    `db:"building_name"`
	Description   string    `db:"description"`
	Type          string    `db:"type"`
	NumBedrooms   int       `db:"num_bedrooms"`
	NumBeds       int       `db:"num_beds"`
	Address       string    `db:"address"`
	GeoAddress    string    `db:"geo_address"`
	Latitude      float64   `db:"latitude"`
	Longitude     float64   `db:"longitude"`
	AvailableFrom time.Time `db:"available_from"`
	AvailableTo   time.Time `db:"available_to"`
	MonthlyRent   float64   `db:"monthly_rent"`
	OwnerID       string    `db:"owner_id"`
	IsAvailable   bool      `db:"is_available"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (r accommodationRow) domain() accommodation.Accommodation {
	return accommodation.Accommodation{
		ID: r.ID, Name: r.Name, BuildingName: r.BuildingName, Description: r.Description,
		Type: accommodation.Type(r.Type), NumBedrooms: r.NumBedrooms, NumBeds: r.NumBeds,
		Address: r.Address, GeoAddress: r.GeoAddress,
		Latitude: r.Latitude, Longitude: r.Longitude,
		AvailableFrom: r.AvailableFrom, AvailableTo: r.AvailableTo,
		MonthlyRent: r.MonthlyRent, OwnerID: r.OwnerID, IsAvailable: r.IsAvailable,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

const accommodationColumns = `id, name, building_name, description, type, num_bedrooms, num_beds,
	address, geo_address, latitude, longitude, available_from, available_to,
	monthly_rent, owner_id, is_available, created_at, updated_at`

func (s *Store) CreateAccommodation(ctx context.Context, a accommodation.Accommodation) (accommodation.Accommodation, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accommodations (`+accommodationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`, a.ID, a.Name, a.BuildingName, a.Description, string(a.Type), a.NumBedrooms, a.NumBeds,
		a.Address, a.GeoAddress, a.Latitude, a.Longitude, a.AvailableFrom, a.AvailableTo,
		a.MonthlyRent, a.OwnerID, a.IsAvailable, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return accommodation.Accommodation{}, err
	}
	return a, nil
}

func (s *Store) UpdateAccommodation(ctx context.Context, a accommodation.Accommodation) (accommodation.Accommodation, error) {
	existing, err := s.GetAccommodation(ctx, a.ID)
	if err != nil {
		return accommodation.Accommodation{}, err
	}
	a.CreatedAt = existing.CreatedAt
	a.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE accommodations SET
			name = $2, building_name = $3, description = $4, type = $5,
			num_bedrooms = $6, num_beds = $7, address = $8, geo_address = $9,
			latitude = $10, longitude = $11, available_from = $12, available_to = $13,
			monthly_rent = $14, owner_id = $15, is_available = $16, updated_at = $17
		WHERE id = $1
	`, a.ID, a.Name, a.BuildingName, a.Description, string(a.Type),
		a.NumBedrooms, a.NumBeds, a.Address, a.GeoAddress,
		a.Latitude, a.Longitude, a.AvailableFrom, a.AvailableTo,
		a.MonthlyRent, a.OwnerID, a.IsAvailable, a.UpdatedAt)
	if err != nil {
		return accommodation.Accommodation{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return accommodation.Accommodation{}, sql.ErrNoRows
	}
	return a, nil
}

func (s *Store) GetAccommodation(ctx context.Context, id string) (accommodation.Accommodation, error) {
	var row accommodationRow
	err := s.db.GetContext(ctx, &row, `
		SELECT `+accommodationColumns+` FROM accommodations WHERE id = $1
	`, id)
	if err != nil {
		return accommodation.Accommodation{}, err
	}
	return row.domain(), nil
}

func (s *Store) ListAccommodations(ctx context.Context) ([]accommodation.Accommodation, error) {
	var rows []accommodationRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+accommodationColumns+` FROM accommodations ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	result := make([]accommodation.Accommodation, 0, len(rows))
	for _, r := range rows {
		result = append(result, r.domain())
	}
	return result, nil
}

func (s *Store) DeleteAccommodation(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM accommodations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

type photoRow struct {
	ID              string    `db:"id"`
	AccommodationID string    `db:"accommodation_id"`
	URL             string    `db:"url"`
	Caption         string    `db:"caption"`
	CreatedAt       time.Time `db:"created_at"`
}

func (s *Store) CreatePhoto(ctx context.Context, p accommodation.Photo) (accommodation.Photo, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accommodation_photos (id, accommodation_id, url, caption, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, p.ID, p.AccommodationID, p.URL, p.Caption, p.CreatedAt)
	if err != nil {
		return accommodation.Photo{}, err
	}
	return p, nil
}

func (s *Store) ListPhotos(ctx context.Context, accommodationID string) ([]accommodation.Photo, error) {
	var rows []photoRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, accommodation_id, url, caption, created_at
		FROM accommodation_photos WHERE accommodation_id = $1 ORDER BY created_at
	`, accommodationID)
	if err != nil {
		return nil, err
	}
	result := make([]accommodation.Photo, 0, len(rows))
	for _, r := range rows {
		result = append(result, accommodation.Photo{
			ID: r.ID, AccommodationID: r.AccommodationID,
			URL: r.URL, Caption: r.Caption, CreatedAt: r.CreatedAt,
		})
	}
	return result, nil
}

// --- MemberStore ------------------------------------------------------------

type memberRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Phone     string    `db:"phone"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (s *Store) CreateMember(ctx context.Context, m member.Member) (member.Member, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO members (id, name, email, phone, created_at, updated_at)
		VALUES ($1, $2, lower($3), $4, $5, $6)
	`, m.ID, m.Name, m.Email, m.Phone, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return member.Member{}, err
	}
	return m, nil
}

func (s *Store) UpdateMember(ctx context.Context, m member.Member) (member.Member, error) {
	existing, err := s.GetMember(ctx, m.ID)
	if err != nil {
		return member.Member{}, err
	}
	m.CreatedAt = existing.CreatedAt
	m.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE members SET name = $2, email = lower($3), phone = $4, updated_at = $5
		WHERE id = $1
	`, m.ID, m.Name, m.Email, m.Phone, m.UpdatedAt)
	if err != nil {
		return member.Member{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return member.Member{}, sql.ErrNoRows
	}
	return m, nil
}

func (s *Store) GetMember(ctx context.Context, id string) (member.Member, error) {
	var row memberRow
	err := s.db.GetContext(ctx, &row, `
		SELECT id, name, email, phone, created_at, updated_at
		FROM members WHERE id = $1
	`, id)
	if err != nil {
		return member.Member{}, err
	}
	return member.Member{
		ID: row.ID, Name: row.Name, Email: row.Email, Phone: row.Phone,
		CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt,
	}, nil
}

func (s *Store) ListMembers(ctx context.Context) ([]member.Member, error) {
	var rows []memberRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, name, email, phone, created_at, updated_at
		FROM members ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	result := make([]member.Member, 0, len(rows))
	for _, r := range rows {
		result = append(result, member.Member{
			ID: r.ID, Name: r.Name, Email: r.Email, Phone: r.Phone,
			CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
		})
	}
	return result, nil
}

func (s *Store) DeleteMember(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM members WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// --- SpecialistStore --------------------------------------------------------

type specialistRow struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	Phone        string    `db:"phone"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r specialistRow) domain() specialist.Specialist {
	return specialist.Specialist{
		ID: r.ID, Name: r.Name, Email: r.Email, Phone: r.Phone,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

func (s *Store) CreateSpecialist(ctx context.Context, sp specialist.Specialist) (specialist.Specialist, error) {
	if sp.ID == "" {
		sp.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	sp.CreatedAt = now
	sp.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO specialists (id, name, email, phone, password_hash, created_at, updated_at)
		VALUES ($1, $2, lower($3), $4, $5, $6, $7)
	`, sp.ID, sp.Name, sp.Email, sp.Phone, sp.PasswordHash, sp.CreatedAt, sp.UpdatedAt)
	if err != nil {
		return specialist.Specialist{}, err
	}
	return sp, nil
}

func (s *Store) UpdateSpecialist(ctx context.Context, sp specialist.Specialist) (specialist.Specialist, error) {
	existing, err := s.GetSpecialist(ctx, sp.ID)
	if err != nil {
		return specialist.Specialist{}, err
	}
	sp.CreatedAt = existing.CreatedAt
	sp.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE specialists SET name = $2, email = lower($3), phone = $4, password_hash = $5, updated_at = $6
		WHERE id = $1
	`, sp.ID, sp.Name, sp.Email, sp.Phone, sp.PasswordHash, sp.UpdatedAt)
	if err != nil {
		return specialist.Specialist{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return specialist.Specialist{}, sql.ErrNoRows
	}
	return sp, nil
}

func (s *Store) GetSpecialist(ctx context.Context, id string) (specialist.Specialist, error) {
	var row specialistRow
	err := s.db.GetContext(ctx, &row, `
		SELECT id, name, email, phone, password_hash, created_at, updated_at
		FROM specialists WHERE id = $1
	`, id)
	if err != nil {
		return specialist.Specialist{}, err
	}
	return row.domain(), nil
}

func (s *Store) GetSpecialistByEmail(ctx context.Context, email string) (specialist.Specialist, error) {
	var row specialistRow
	err := s.db.GetContext(ctx, &row, `
		SELECT id, name, email, phone, password_hash, created_at, updated_at
		FROM specialists WHERE email = lower($1)
	`, email)
	if err != nil {
		return specialist.Specialist{}, err
	}
	return row.domain(), nil
}

func (s *Store) ListSpecialists(ctx context.Context) ([]specialist.Specialist, error) {
	var rows []specialistRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, name, email, phone, password_hash, created_at, updated_at
		FROM specialists ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	result := make([]specialist.Specialist, 0, len(rows))
	for _, r := range rows {
		result = append(result, r.domain())
	}
	return result, nil
}

func (s *Store) DeleteSpecialist(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM specialists WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// --- ReservationStore -------------------------------------------------------

type reservationRow struct {
	ID              string    `db:"id"`
	AccommodationID string    `db:"accommodation_id"`
	MemberID        string    `db:"member_id"`
	ReservedFrom    time.Time `db:"reserved_from"`
	ReservedTo      time.Time `db:"reserved_to"`
	ContactName     string    `db:"contact_name"`
	ContactPhone    string    `db:"contact_phone"`
	Status          string    `db:"status"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

func (r reservationRow) domain() reservation.Reservation {
	return reservation.Reservation{
		ID: r.ID, AccommodationID: r.AccommodationID, MemberID: r.MemberID,
		ReservedFrom: r.ReservedFrom, ReservedTo: r.ReservedTo,
		ContactName: r.ContactName, ContactPhone: r.ContactPhone,
		Status:    reservation.Status(r.Status),
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

const reservationColumns = `id, accommodation_id, member_id, reserved_from, reserved_to,
	contact_name, contact_phone, status, created_at, updated_at`

func (s *Store) CreateReservation(ctx context.Context, r reservation.Reservation) (reservation.Reservation, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reservations (`+reservationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, r.ID, r.AccommodationID, r.MemberID, r.ReservedFrom, r.ReservedTo,
		r.ContactName, r.ContactPhone, string(r.Status), r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return reservation.Reservation{}, err
	}
	return r, nil
}

func (s *Store) UpdateReservation(ctx context.Context, r reservation.Reservation) (reservation.Reservation, error) {
	existing, err := s.GetReservation(ctx, r.ID)
	if err != nil {
		return reservation.Reservation{}, err
	}
	r.CreatedAt = existing.CreatedAt
	r.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE reservations SET
			reserved_from = $2, reserved_to = $3, contact_name = $4,
			contact_phone = $5, status = $6, updated_at = $7
		WHERE id = $1
	`, r.ID, r.ReservedFrom, r.ReservedTo, r.ContactName,
		r.ContactPhone, string(r.Status), r.UpdatedAt)
	if err != nil {
		return reservation.Reservation{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return reservation.Reservation{}, sql.ErrNoRows
	}
	return r, nil
}

func (s *Store) GetReservation(ctx context.Context, id string) (reservation.Reservation, error) {
	var row reservationRow
	err := s.db.GetContext(ctx, &row, `
		SELECT `+reservationColumns+` FROM reservations WHERE id = $1
	`, id)
	if err != nil {
		return reservation.Reservation{}, err
	}
	return row.domain(), nil
}

func (s *Store) ListReservations(ctx context.Context) ([]reservation.Reservation, error) {
	return s.selectReservations(ctx, `
		SELECT `+reservationColumns+` FROM reservations ORDER BY created_at
	`)
}

func (s *Store) ListMemberReservations(ctx context.Context, memberID string) ([]reservation.Reservation, error) {
	return s.selectReservations(ctx, `
		SELECT `+reservationColumns+` FROM reservations
		WHERE member_id = $1 ORDER BY created_at
	`, memberID)
}

func (s *Store) ListReservationsByStatus(ctx context.Context, status reservation.Status) ([]reservation.Reservation, error) {
	return s.selectReservations(ctx, `
		SELECT `+reservationColumns+` FROM reservations
		WHERE status = $1 ORDER BY created_at
	`, string(status))
}

func (s *Store) selectReservations(ctx context.Context, query string, args ...interface{}) ([]reservation.Reservation, error) {
	var rows []reservationRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	result := make([]reservation.Reservation, 0, len(rows))
	for _, r := range rows {
		result = append(result, r.domain())
	}
	return result, nil
}

// --- RatingStore ------------------------------------------------------------

type ratingRow struct {
	ID              string         `db:"id"`
	AccommodationID string         `db:"accommodation_id"`
	MemberID        string         `db:"member_id"`
	ReservationID   string         `db:"reservation_id"`
	Score           int            `db:"score"`
	Comment         string         `db:"comment"`
	Moderated       bool           `db:"moderated"`
	Approved        bool           `db:"approved"`
	ModeratedBy     sql.NullString `db:"moderated_by"`
	ModerationNote  string         `db:"moderation_note"`
	ModeratedAt     sql.NullTime   `db:"moderated_at"`
	CreatedAt       time.Time      `db:"created_at"`
}

func (r ratingRow) domain() rating.Rating {
	out := rating.Rating{
		ID: r.ID, AccommodationID: r.AccommodationID, MemberID: r.MemberID,
		ReservationID: r.ReservationID, Score: r.Score, Comment: r.Comment,
		Moderated: r.Moderated, Approved: r.Approved,
		ModerationNote: r.ModerationNote, CreatedAt: r.CreatedAt,
	}
	if r.ModeratedBy.Valid {
		out.ModeratedBy = r.ModeratedBy.String
	}
	if r.ModeratedAt.Valid {
		t := r.ModeratedAt.Time
		out.ModeratedAt = &t
	}
	return out
}

const ratingColumns = `id, accommodation_id, member_id, reservation_id, score, comment,
	moderated, approved, moderated_by, moderation_note, moderated_at, created_at`

func (s *Store) CreateRating(ctx context.Context, r rating.Rating) (rating.Rating, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ratings (`+ratingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, r.ID, r.AccommodationID, r.MemberID, r.ReservationID, r.Score, r.Comment,
		r.Moderated, r.Approved, nullString(r.ModeratedBy), r.ModerationNote,
		nullTime(r.ModeratedAt), r.CreatedAt)
	if err != nil {
		return rating.Rating{}, err
	}
	return r, nil
}

func (s *Store) UpdateRating(ctx context.Context, r rating.Rating) (rating.Rating, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE ratings SET
			score = $2, comment = $3, moderated = $4, approved = $5,
			moderated_by = $6, moderation_note = $7, moderated_at = $8
		WHERE id = $1
	`, r.ID, r.Score, r.Comment, r.Moderated, r.Approved,
		nullString(r.ModeratedBy), r.ModerationNote, nullTime(r.ModeratedAt))
	if err != nil {
		return rating.Rating{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return rating.Rating{}, sql.ErrNoRows
	}
	return r, nil
}

func (s *Store) GetRating(ctx context.Context, id string) (rating.Rating, error) {
	var row ratingRow
	err := s.db.GetContext(ctx, &row, `
		SELECT `+ratingColumns+` FROM ratings WHERE id = $1
	`, id)
	if err != nil {
		return rating.Rating{}, err
	}
	return row.domain(), nil
}

func (s *Store) GetRatingByReservation(ctx context.Context, reservationID string) (rating.Rating, error) {
	var row ratingRow
	err := s.db.GetContext(ctx, &row, `
		SELECT `+ratingColumns+` FROM ratings WHERE reservation_id = $1
	`, reservationID)
	if err != nil {
		return rating.Rating{}, err
	}
	return row.domain(), nil
}

func (s *Store) ListRatings(ctx context.Context, accommodationID string) ([]rating.Rating, error) {
	if accommodationID == "" {
		return s.selectRatings(ctx, `
			SELECT `+ratingColumns+` FROM ratings ORDER BY created_at
		`)
	}
	return s.selectRatings(ctx, `
		SELECT `+ratingColumns+` FROM ratings
		WHERE accommodation_id = $1 ORDER BY created_at
	`, accommodationID)
}

func (s *Store) ListPendingRatings(ctx context.Context) ([]rating.Rating, error) {
	return s.selectRatings(ctx, `
		SELECT `+ratingColumns+` FROM ratings
		WHERE moderated = FALSE ORDER BY created_at
	`)
}

func (s *Store) selectRatings(ctx context.Context, query string, args ...interface{}) ([]rating.Rating, error) {
	var rows []ratingRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	result := make([]rating.Rating, 0, len(rows))
	for _, r := range rows {
		result = append(result, r.domain())
	}
	return result, nil
}

// --- NotificationStore ------------------------------------------------------

type notificationRow struct {
	ID            string    `db:"id"`
	SpecialistID  string    `db:"specialist_id"`
	ReservationID string    `db:"reservation_id"`
	Type          string    `db:"type"`
	Read          bool      `db:"read"`
	CreatedAt     time.Time `db:"created_at"`
}

func (s *Store) CreateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, specialist_id, reservation_id, type, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, n.ID, n.SpecialistID, n.ReservationID, string(n.Type), n.Read, n.CreatedAt)
	if err != nil {
		return notification.Notification{}, err
	}
	return n, nil
}

func (s *Store) UpdateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE notifications SET read = $2 WHERE id = $1
	`, n.ID, n.Read)
	if err != nil {
		return notification.Notification{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return notification.Notification{}, sql.ErrNoRows
	}
	return n, nil
}

func (s *Store) GetNotification(ctx context.Context, id string) (notification.Notification, error) {
	var row notificationRow
	err := s.db.GetContext(ctx, &row, `
		SELECT id, specialist_id, reservation_id, type, read, created_at
		FROM notifications WHERE id = $1
	`, id)
	if err != nil {
		return notification.Notification{}, err
	}
	return notification.Notification{
		ID: row.ID, SpecialistID: row.SpecialistID, ReservationID: row.ReservationID,
		Type: notification.Type(row.Type), Read: row.Read, CreatedAt: row.CreatedAt,
	}, nil
}

func (s *Store) ListNotifications(ctx context.Context, specialistID string) ([]notification.Notification, error) {
	var rows []notificationRow
	var err error
	if specialistID == "" {
		err = s.db.SelectContext(ctx, &rows, `
			SELECT id, specialist_id, reservation_id, type, read, created_at
			FROM notifications ORDER BY created_at
		`)
	} else {
		err = s.db.SelectContext(ctx, &rows, `
			SELECT id, specialist_id, reservation_id, type, read, created_at
			FROM notifications WHERE specialist_id = $1 ORDER BY created_at
		`, specialistID)
	}
	if err != nil {
		return nil, err
	}
	result := make([]notification.Notification, 0, len(rows))
	for _, r := range rows {
		result = append(result, notification.Notification{
			ID: r.ID, SpecialistID: r.SpecialistID, ReservationID: r.ReservationID,
			Type: notification.Type(r.Type), Read: r.Read, CreatedAt: r.CreatedAt,
		})
	}
	return result, nil
}

// --- AuditLogStore ----------------------------------------------------------

type auditRow struct {
	ID              string    `db:"id"`
	Action          string    `db:"action"`
	ActorType       string    `db:"actor_type"`
	ActorID         string    `db:"actor_id"`
	AccommodationID string    `db:"accommodation_id"`
	Details         string    `db:"details"`
	CreatedAt       time.Time `db:"created_at"`
}

func (s *Store) AppendAuditEntry(ctx context.Context, e auditlog.Entry) (auditlog.Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO action_logs (id, action, actor_type, actor_id, accommodation_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, e.ID, e.Action, string(e.ActorType), e.ActorID, e.AccommodationID, e.Details, e.CreatedAt)
	if err != nil {
		return auditlog.Entry{}, err
	}
	return e, nil
}

func (s *Store) ListAuditEntries(ctx context.Context, limit int) ([]auditlog.Entry, error) {
	if limit <= 0 {
		limit = 200
	}
	var rows []auditRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, action, actor_type, actor_id, accommodation_id, details, created_at
		FROM action_logs ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	result := make([]auditlog.Entry, 0, len(rows))
	for _, r := range rows {
		result = append(result, auditlog.Entry{
			ID: r.ID, Action: r.Action, ActorType: auditlog.ActorType(r.ActorType),
			ActorID: r.ActorID, AccommodationID: r.AccommodationID,
			Details: r.Details, CreatedAt: r.CreatedAt,
		})
	}
	return result, nil
}

// helpers ----------------------------------------------------------------------

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
