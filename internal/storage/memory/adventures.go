package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/petengine/internal/game/adventure"
	"github.com/cory-johannsen/petengine/internal/game/breeding"
)

// AdventureRepo implements adventure.Repository.
type AdventureRepo struct{ s *Store }

func (r *AdventureRepo) Create(ctx context.Context, a *adventure.Active) error {
	defer r.s.guard(ctx)()
	for _, cur := range r.s.state.adventures {
		if cur.PetID == a.PetID {
			return adventure.ErrAlreadyActive
		}
	}
	r.s.state.adventures[a.ID] = *a
	return nil
}

func (r *AdventureRepo) ForPet(ctx context.Context, petID int64) (*adventure.Active, error) {
	defer r.s.guard(ctx)()
	for _, a := range r.s.state.adventures {
		if a.PetID == petID {
			return &a, nil
		}
	}
	return nil, fmt.Errorf("adventure for pet %d: %w", petID, adventure.ErrNotFound)
}

func (r *AdventureRepo) ListByOwner(ctx context.Context, ownerID int64) ([]*adventure.Active, error) {
	return r.filter(ctx, 0, func(a *adventure.Active) bool { return a.OwnerID == ownerID })
}

func (r *AdventureRepo) DueByOwner(ctx context.Context, ownerID int64, now time.Time) ([]*adventure.Active, error) {
	return r.filter(ctx, 0, func(a *adventure.Active) bool { return a.OwnerID == ownerID && a.Due(now) })
}

func (r *AdventureRepo) Due(ctx context.Context, now time.Time, limit int, exclude []uuid.UUID) ([]*adventure.Active, error) {
	return r.filter(ctx, limit, func(a *adventure.Active) bool {
		return a.Due(now) && !slices.Contains(exclude, a.ID)
	})
}

func (r *AdventureRepo) Claim(ctx context.Context, id uuid.UUID) (*adventure.Active, error) {
	defer r.s.guard(ctx)()
	a, ok := r.s.state.adventures[id]
	if !ok {
		return nil, fmt.Errorf("adventure %s: %w", id, adventure.ErrNotFound)
	}
	delete(r.s.state.adventures, id)
	return &a, nil
}

func (r *AdventureRepo) filter(ctx context.Context, limit int, keep func(*adventure.Active) bool) ([]*adventure.Active, error) {
	defer r.s.guard(ctx)()
	var out []*adventure.Active
	for _, a := range r.s.state.adventures {
		if keep(&a) {
			out = append(out, &a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EndsAt.Equal(out[j].EndsAt) {
			return out[i].EndsAt.Before(out[j].EndsAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// RequestRepo implements breeding.RequestRepository.
type RequestRepo struct{ s *Store }

func (r *RequestRepo) Create(ctx context.Context, req *breeding.MatingRequest) error {
	defer r.s.guard(ctx)()
	r.s.state.requests[req.ID] = *req
	return nil
}

func (r *RequestRepo) Get(ctx context.Context, id uuid.UUID) (*breeding.MatingRequest, error) {
	defer r.s.guard(ctx)()
	req, ok := r.s.state.requests[id]
	if !ok {
		return nil, fmt.Errorf("mating request %s: %w", id, breeding.ErrRequestNotFound)
	}
	return &req, nil
}

func (r *RequestRepo) PendingBetween(ctx context.Context, petA, petB int64) (bool, error) {
	defer r.s.guard(ctx)()
	for _, req := range r.s.state.requests {
		if req.Status != breeding.RequestPending {
			continue
		}
		if (req.RequesterPetID == petA && req.TargetPetID == petB) ||
			(req.RequesterPetID == petB && req.TargetPetID == petA) {
			return true, nil
		}
	}
	return false, nil
}

func (r *RequestRepo) ListPendingForRecipient(ctx context.Context, userID int64) ([]*breeding.MatingRequest, error) {
	defer r.s.guard(ctx)()
	var out []*breeding.MatingRequest
	for _, req := range r.s.state.requests {
		if req.RecipientID == userID && req.Status == breeding.RequestPending {
			out = append(out, &req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *RequestRepo) Resolve(ctx context.Context, req *breeding.MatingRequest) error {
	defer r.s.guard(ctx)()
	cur, ok := r.s.state.requests[req.ID]
	if !ok {
		return fmt.Errorf("mating request %s: %w", req.ID, breeding.ErrRequestNotFound)
	}
	if cur.Status != breeding.RequestPending {
		return fmt.Errorf("mating request %s: %w", req.ID, breeding.ErrRequestResolved)
	}
	r.s.state.requests[req.ID] = *req
	return nil
}
