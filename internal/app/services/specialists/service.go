// Package specialists manages CEDARS accommodation specialist accounts and
// their login credentials.
package specialists

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/kaiyuenlam/UniHaven/internal/app/domain/specialist"
	"github.com/kaiyuenlam/UniHaven/internal/app/storage"
	"github.com/kaiyuenlam/UniHaven/pkg/logger"
)

// ErrInvalidCredentials is returned when login email or password do not
// match a specialist account.
var ErrInvalidCredentials = fmt.Errorf("invalid credentials")

// Service manages specialist accounts.
type Service struct {
	store storage.SpecialistStore
	log   *logger.Logger
}

// New constructs a specialist service.
func New(store storage.SpecialistStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("specialists")
	}
	return &Service{store: store, log: log}
}

// Create registers a specialist. An empty password leaves the account
// without login access until one is set.
func (s *Service) Create(ctx context.Context, name, email, phone, password string) (specialist.Specialist, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	phone = strings.TrimSpace(phone)

	if name == "" {
		return specialist.Specialist{}, fmt.Errorf("name is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return specialist.Specialist{}, fmt.Errorf("a valid email is required")
	}

	sp := specialist.Specialist{Name: name, Email: email, Phone: phone}
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return specialist.Specialist{}, fmt.Errorf("hash password: %w", err)
		}
		sp.PasswordHash = string(hash)
	}

	sp, err := s.store.CreateSpecialist(ctx, sp)
	if err != nil {
		return specialist.Specialist{}, err
	}
	s.log.WithField("specialist_id", sp.ID).WithField("email", sp.Email).Info("specialist created")
	return sp, nil
}

// Update changes mutable specialist fields. A non-nil password rotates the
// stored hash.
func (s *Service) Update(ctx context.Context, id string, name, email, phone, password *string) (specialist.Specialist, error) {
	sp, err := s.store.GetSpecialist(ctx, id)
	if err != nil {
		return specialist.Specialist{}, err
	}

	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return specialist.Specialist{}, fmt.Errorf("name cannot be empty")
		}
		sp.Name = trimmed
	}
	if email != nil {
		trimmed := strings.ToLower(strings.TrimSpace(*email))
		if trimmed == "" || !strings.Contains(trimmed, "@") {
			return specialist.Specialist{}, fmt.Errorf("a valid email is required")
		}
		sp.Email = trimmed
	}
	if phone != nil {
		sp.Phone = strings.TrimSpace(*phone)
	}
	if password != nil {
		if *password == "" {
			return specialist.Specialist{}, fmt.Errorf("password cannot be empty")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
		if err != nil {
			return specialist.Specialist{}, fmt.Errorf("hash password: %w", err)
		}
		sp.PasswordHash = string(hash)
	}

	sp, err = s.store.UpdateSpecialist(ctx, sp)
	if err != nil {
		return specialist.Specialist{}, err
	}
	s.log.WithField("specialist_id", sp.ID).Info("specialist updated")
	return sp, nil
}

// Authenticate verifies email/password and returns the matching specialist.
func (s *Service) Authenticate(ctx context.Context, email, password string) (specialist.Specialist, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return specialist.Specialist{}, ErrInvalidCredentials
	}

	sp, err := s.store.GetSpecialistByEmail(ctx, email)
	if err != nil {
		return specialist.Specialist{}, ErrInvalidCredentials
	}
	if sp.PasswordHash == "" {
		return specialist.Specialist{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(sp.PasswordHash), []byte(password)); err != nil {
		return specialist.Specialist{}, ErrInvalidCredentials
	}
	return sp, nil
}

// Get retrieves one specialist.
func (s *Service) Get(ctx context.Context, id string) (specialist.Specialist, error) {
	return s.store.GetSpecialist(ctx, id)
}

// List returns all specialists.
func (s *Service) List(ctx context.Context) ([]specialist.Specialist, error) {
	return s.store.ListSpecialists(ctx)
}

// Delete removes a specialist.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteSpecialist(ctx, id); err != nil {
		return err
	}
	s.log.WithField("specialist_id", id).Info("specialist deleted")
	return nil
}
