package pet

import (
	"context"
	"errors"
	"fmt"

	"github.com/cory-johannsen/petengine/internal/game/gameerr"
)

// Load fetches a pet and converts a missing row into a KindNotFound error.
func Load(ctx context.Context, repo Repository, id int64) (*Pet, error) {
	p, err := repo.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, gameerr.NotFound(fmt.Sprintf("pet %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("loading pet %d: %w", id, err)
	}
	return p, nil
}

// RequireOwner returns a KindUnauthorized error unless userID owns p.
func RequireOwner(p *Pet, userID int64) error {
	if p.OwnerID != userID {
		return gameerr.Unauthorized(fmt.Sprintf("you do not own %s", p.DisplayName()))
	}
	return nil
}

// LoadOwned fetches a pet and verifies that userID owns it.
func LoadOwned(ctx context.Context, repo Repository, id, userID int64) (*Pet, error) {
	p, err := Load(ctx, repo, id)
	if err != nil {
		return nil, err
	}
	if err := RequireOwner(p, userID); err != nil {
		return nil, err
	}
	return p, nil
}

// DisplayName returns the pet's name, or a placeholder built from its id.
func (p *Pet) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("pet #%d", p.ID)
}
