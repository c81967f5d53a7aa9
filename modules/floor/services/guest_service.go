package services

import (
	"context"
	"strings"

	"github.com/tablemaster/tablemaster/modules/floor/domain/guest"
	"github.com/tablemaster/tablemaster/modules/floor/domain/table"
)

type GuestFields struct {
	GuestNumber *int
	Name        *string
	Notes       *string
	Allergies   []string
}

type GuestService struct {
	repo   guest.Repository
	tables table.Repository
}

func NewGuestService(repo guest.Repository, tables table.Repository) *GuestService {
	return &GuestService{repo: repo, tables: tables}
}

// ListByTable returns the guests seated at a table by guest number.
func (s *GuestService) ListByTable(ctx context.Context, tableID string) ([]guest.Guest, error) {
	if _, err := s.tables.GetByID(ctx, tableID); err != nil {
		return nil, err
	}
	return s.repo.ListByTable(ctx, tableID)
}

// Seat adds a guest to a table. Without an explicit number the guest takes
// the next free one.
func (s *GuestService) Seat(ctx context.Context, tableID string, fields GuestFields) (*guest.Guest, error) {
	if _, err := signedIn(ctx); err != nil {
		return nil, err
	}
	seated, err := s.ListByTable(ctx, tableID)
	if err != nil {
		return nil, err
	}
	g := &guest.Guest{TableID: tableID}
	apply(g, fields)
	if fields.GuestNumber == nil || g.GuestNumber < 1 {
		g.GuestNumber = 1
		for _, other := range seated {
			if other.GuestNumber >= g.GuestNumber {
				g.GuestNumber = other.GuestNumber + 1
			}
		}
	}
	if err := s.repo.Create(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *GuestService) Update(ctx context.Context, id string, fields GuestFields) (*guest.Guest, error) {
	if _, err := signedIn(ctx); err != nil {
		return nil, err
	}
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(g, fields)
	if err := s.repo.Update(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *GuestService) Remove(ctx context.Context, id string) error {
	if _, err := signedIn(ctx); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func apply(g *guest.Guest, fields GuestFields) {
	if fields.GuestNumber != nil && *fields.GuestNumber > 0 {
		g.GuestNumber = *fields.GuestNumber
	}
	if fields.Name != nil {
		g.Name = strings.TrimSpace(*fields.Name)
	}
	if fields.Notes != nil {
		g.Notes = *fields.Notes
	}
	if fields.Allergies != nil {
		g.Allergies = trimAll(fields.Allergies)
	}
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
