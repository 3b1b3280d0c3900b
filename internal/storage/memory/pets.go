package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/cory-johannsen/petengine/internal/game/pet"
)

// PetRepo implements pet.Repository.
type PetRepo struct{ s *Store }

func clonePet(p *pet.Pet) *pet.Pet {
	c := *p
	if p.BirthDate != nil {
		t := *p.BirthDate
		c.BirthDate = &t
	}
	if p.MotherID != nil {
		id := *p.MotherID
		c.MotherID = &id
	}
	if p.FatherID != nil {
		id := *p.FatherID
		c.FatherID = &id
	}
	return &c
}

func (r *PetRepo) Get(ctx context.Context, id int64) (*pet.Pet, error) {
	defer r.s.guard(ctx)()
	p, ok := r.s.state.pets[id]
	if !ok {
		return nil, fmt.Errorf("pet %d: %w", id, pet.ErrNotFound)
	}
	return clonePet(p), nil
}

func (r *PetRepo) ListByOwner(ctx context.Context, ownerID int64) ([]*pet.Pet, error) {
	defer r.s.guard(ctx)()
	var out []*pet.Pet
	for _, p := range r.s.state.pets {
		if p.OwnerID == ownerID {
			out = append(out, clonePet(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *PetRepo) Create(ctx context.Context, p *pet.Pet) (*pet.Pet, error) {
	defer r.s.guard(ctx)()
	st := r.s.state
	st.nextPetID++
	c := clonePet(p)
	c.ID = st.nextPetID
	if c.Level < 1 {
		c.Level = 1
	}
	if c.LifeStatus == "" {
		c.LifeStatus = pet.StatusAlive
	}
	now := r.s.now()
	c.CreatedAt, c.UpdatedAt = now, now
	st.pets[c.ID] = c
	return clonePet(c), nil
}

func (r *PetRepo) Update(ctx context.Context, p *pet.Pet) error {
	defer r.s.guard(ctx)()
	cur, ok := r.s.state.pets[p.ID]
	if !ok {
		return fmt.Errorf("pet %d: %w", p.ID, pet.ErrNotFound)
	}
	c := clonePet(cur)
	c.Name, c.ImageURL, c.Description = p.Name, p.ImageURL, p.Description
	c.DNA, c.LifeStatus = p.DNA, p.LifeStatus
	c.Level, c.Experience = p.Level, p.Experience
	c.UpdatedAt = r.s.now()
	r.s.state.pets[p.ID] = c
	return nil
}

func (r *PetRepo) Delete(ctx context.Context, id int64) error {
	defer r.s.guard(ctx)()
	st := r.s.state
	if _, ok := st.pets[id]; !ok {
		return fmt.Errorf("pet %d: %w", id, pet.ErrNotFound)
	}
	delete(st.pets, id)
	delete(st.stats, id)
	delete(st.health, id)
	delete(st.personality, id)
	delete(st.cooldowns, id)
	return nil
}

func (r *PetRepo) Transfer(ctx context.Context, id, newOwnerID int64) error {
	defer r.s.guard(ctx)()
	p, ok := r.s.state.pets[id]
	if !ok {
		return fmt.Errorf("pet %d: %w", id, pet.ErrNotFound)
	}
	c := clonePet(p)
	c.OwnerID = newOwnerID
	c.UpdatedAt = r.s.now()
	r.s.state.pets[id] = c
	return nil
}

// Lock returns the requested pets. Inside WithinTx the whole store is
// already exclusively held.
func (r *PetRepo) Lock(ctx context.Context, ids ...int64) (map[int64]*pet.Pet, error) {
	defer r.s.guard(ctx)()
	out := make(map[int64]*pet.Pet, len(ids))
	for _, id := range ids {
		if p, ok := r.s.state.pets[id]; ok {
			out[id] = clonePet(p)
		}
	}
	return out, nil
}
