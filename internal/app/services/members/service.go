// Package members manages HKU member records.
package members

import (
	"context"
	"fmt"
	"strings"

	"github.com/kaiyuenlam/UniHaven/internal/app/domain/member"
	"github.com/kaiyuenlam/UniHaven/internal/app/storage"
	"github.com/kaiyuenlam/UniHaven/pkg/logger"
)

// Service manages member records.
type Service struct {
	store storage.MemberStore
	log   *logger.Logger
}

// New constructs a member service.
func New(store storage.MemberStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("members")
	}
	return &Service{store: store, log: log}
}

// Create registers a member.
func (s *Service) Create(ctx context.Context, name, email, phone string) (member.Member, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	phone = strings.TrimSpace(phone)

	if name == "" {
		return member.Member{}, fmt.Errorf("name is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return member.Member{}, fmt.Errorf("a valid email is required")
	}

	m, err := s.store.CreateMember(ctx, member.Member{Name: name, Email: email, Phone: phone})
	if err != nil {
		return member.Member{}, err
	}
	s.log.WithField("member_id", m.ID).WithField("email", m.Email).Info("member created")
	return m, nil
}

// Update changes mutable member fields.
func (s *Service) Update(ctx context.Context, id string, name, email, phone *string) (member.Member, error) {
	m, err := s.store.GetMember(ctx, id)
	if err != nil {
		return member.Member{}, err
	}

	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return member.Member{}, fmt.Errorf("name cannot be empty")
		}
		m.Name = trimmed
	}
	if email != nil {
		trimmed := strings.ToLower(strings.TrimSpace(*email))
		if trimmed == "" || !strings.Contains(trimmed, "@") {
			return member.Member{}, fmt.Errorf("a valid email is required")
		}
		m.Email = trimmed
	}
	if phone != nil {
		m.Phone = strings.TrimSpace(*phone)
	}

	m, err = s.store.UpdateMember(ctx, m)
	if err != nil {
		return member.Member{}, err
	}
	s.log.WithField("member_id", m.ID).Info("member updated")
	return m, nil
}

// Get retrieves one member.
func (s *Service) Get(ctx context.Context, id string) (member.Member, error) {
	return s.store.GetMember(ctx, id)
}

// List returns all members.
func (s *Service) List(ctx context.Context) ([]member.Member, error) {
	return s.store.ListMembers(ctx)
}

// Delete removes a member.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteMember(ctx, id); err != nil {
		return err
	}
	s.log.WithField("member_id", id).Info("member deleted")
	return nil
}
