package store

import (
	"context"
	"slices"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"

	"placement/internal/profile/models"
	posting "placement/internal/posting/models"
	"placement/pkg/platform/sentinel"
	"placement/pkg/platform/tx"
)

// InMemory keeps profiles keyed by college email.
type InMemory struct {
	mu       sync.RWMutex
	profiles map[string]*models.Profile
}

func NewInMemory() *InMemory {
	return &InMemory{profiles: make(map[string]*models.Profile)}
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[email]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return p.Clone(), nil
}

// FindByEmails matches either the college or the personal email.
func (s *InMemory) FindByEmails(_ context.Context, emails []string) ([]*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Profile
	for _, p := range s.profiles {
		if slices.Contains(emails, p.CollegeEmail) || (p.PersonalEmail != "" && slices.Contains(emails, p.PersonalEmail)) {
			out = append(out, p.Clone())
		}
	}
	slices.SortFunc(out, func(a, b *models.Profile) int { return strings.Compare(a.CollegeEmail, b.CollegeEmail) })
	return out, nil
}

// Save inserts or updates the profile's editable fields. Membership lists and
// CreatedAt of an existing profile are preserved.
func (s *InMemory) Save(_ context.Context, p *models.Profile) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := p.Clone()
	if existing, ok := s.profiles[p.CollegeEmail]; ok {
		next.ID = existing.ID
		next.Jobs = existing.Jobs
		next.Tests = existing.Tests
		next.Webinars = existing.Webinars
		next.CreatedAt = existing.CreatedAt
	} else {
		next.ID = bson.NewObjectID()
		next.Jobs = []models.Membership{}
		next.Tests = []models.Membership{}
		next.Webinars = []models.Membership{}
	}
	s.profiles[p.CollegeEmail] = next
	return next.Clone(), nil
}

// AddMembership appends the entry unless the posting is already listed.
func (s *InMemory) AddMembership(ctx context.Context, email string, kind posting.Kind, m models.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[email]
	if !ok {
		return sentinel.ErrNotFound
	}
	if !p.AddMembership(kind, m) {
		return sentinel.ErrConflict
	}
	tx.RecordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if p, ok := s.profiles[email]; ok {
			p.RemoveMembership(kind, m.PostingID())
		}
	})
	return nil
}

// RemoveMembership drops the posting from the kind's list.
func (s *InMemory) RemoveMembership(ctx context.Context, email string, kind posting.Kind, id bson.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[email]
	if !ok {
		return sentinel.ErrNotFound
	}
	removed, i, ok := p.RemoveMembership(kind, id)
	if !ok {
		return sentinel.ErrNotFound
	}
	tx.RecordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if p, ok := s.profiles[email]; ok && !p.HasMembership(kind, id) {
			p.InsertMembership(kind, i, removed)
		}
	})
	return nil
}
