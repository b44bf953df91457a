package app

import (
	"context"
	"fmt"

	accommodationsvc "github.com/kaiyuenlam/UniHaven/internal/app/services/accommodations"
	auditsvc "github.com/kaiyuenlam/UniHaven/internal/app/services/auditlog"
	campussvc "github.com/kaiyuenlam/UniHaven/internal/app/services/campuses"
	"github.com/kaiyuenlam/UniHaven/internal/app/services/geocode"
	membersvc "github.com/kaiyuenlam/UniHaven/internal/app/services/members"
	notificationsvc "github.com/kaiyuenlam/UniHaven/internal/app/services/notifications"
	ratingsvc "github.com/kaiyuenlam/UniHaven/internal/app/services/ratings"
	reservationsvc "github.com/kaiyuenlam/UniHaven/internal/app/services/reservations"
	specialistsvc "github.com/kaiyuenlam/UniHaven/internal/app/services/specialists"
	"github.com/kaiyuenlam/UniHaven/internal/app/storage"
	"github.com/kaiyuenlam/UniHaven/internal/app/storage/memory"
	"github.com/kaiyuenlam/UniHaven/internal/app/system"
	"github.com/kaiyuenlam/UniHaven/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Campuses       storage.CampusStore
	Owners         storage.OwnerStore
	Accommodations storage.AccommodationStore
	Members        storage.MemberStore
	Specialists    storage.SpecialistStore
	Reservations   storage.ReservationStore
	Ratings        storage.RatingStore
	Notifications  storage.NotificationStore
	AuditLog       storage.AuditLogStore
}

// Options carries optional application dependencies.
type Options struct {
	// Geocoder resolves building names to coordinates. Nil disables
	// automatic location resolution.
	Geocoder geocode.Lookup
	// SweepSchedule is the cron spec for the reservation completion
	// sweeper. Empty uses the default hourly schedule.
	SweepSchedule string
}

// Application ties domain services together and manages their lifecycle.
type Application struct {
	manager *system.Manager
	log     *logger.Logger

	Campuses       *campussvc.Service
	Members        *membersvc.Service
	Specialists    *specialistsvc.Service
	Accommodations *accommodationsvc.Service
	Reservations   *reservationsvc.Service
	Ratings        *ratingsvc.Service
	Notifications  *notificationsvc.Service
	AuditLog       *auditsvc.Recorder
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, opts Options, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}

	mem := memory.New()
	if stores.Campuses == nil {
		stores.Campuses = mem
	}
	if stores.Owners == nil {
		stores.Owners = mem
	}
	if stores.Accommodations == nil {
		stores.Accommodations = mem
	}
	if stores.Members == nil {
		stores.Members = mem
	}
	if stores.Specialists == nil {
		stores.Specialists = mem
	}
	if stores.Reservations == nil {
		stores.Reservations = mem
	}
	if stores.Ratings == nil {
		stores.Ratings = mem
	}
	if stores.Notifications == nil {
		stores.Notifications = mem
	}
	if stores.AuditLog == nil {
		stores.AuditLog = mem
	}

	manager := system.NewManager()

	audit := auditsvc.NewRecorder(stores.AuditLog, log)
	campusService := campussvc.New(stores.Campuses, log)
	memberService := membersvc.New(stores.Members, log)
	specialistService := specialistsvc.New(stores.Specialists, log)
	notificationService := notificationsvc.New(stores.Notifications, stores.Specialists, log)
	accommodationService := accommodationsvc.New(stores.Accommodations, stores.Owners, stores.Campuses, opts.Geocoder, audit, log)
	reservationService := reservationsvc.New(stores.Reservations, stores.Accommodations, stores.Members, notificationService, audit, log)
	ratingService := ratingsvc.New(stores.Ratings, stores.Reservations, audit, log)

	for _, name := range []string{"campuses", "members", "specialists", "accommodations"} {
		if err := manager.Register(system.NoopService{ServiceName: name}); err != nil {
			return nil, fmt.Errorf("register %s service: %w", name, err)
		}
	}

	sweeper := reservationsvc.NewSweeper(reservationService, opts.SweepSchedule, log)
	if err := manager.Register(sweeper); err != nil {
		return nil, fmt.Errorf("register %s: %w", sweeper.Name(), err)
	}

	return &Application{
		manager:        manager,
		log:            log,
		Campuses:       campusService,
		Members:        memberService,
		Specialists:    specialistService,
		Accommodations: accommodationService,
		Reservations:   reservationService,
		Ratings:        ratingService,
		Notifications:  notificationService,
		AuditLog:       audit,
	}, nil
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
