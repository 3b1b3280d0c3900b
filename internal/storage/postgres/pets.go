package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/petengine/internal/game/pet"
)

const petColumns = `id, owner_id, name, image_url, description, dna, birth_date, gender,
	life_status, level, experience, mother_id, father_id, created_at, updated_at`

// PetRepository implements pet.Repository.
type PetRepository struct {
	db *pgxpool.Pool
}

// NewPetRepository creates a PetRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewPetRepository(db *pgxpool.Pool) *PetRepository {
	return &PetRepository{db: db}
}

func scanPet(row pgx.Row) (*pet.Pet, error) {
	var (
		p      pet.Pet
		gender string
		status string
	)
	err := row.Scan(
		&p.ID, &p.OwnerID, &p.Name, &p.ImageURL, &p.Description, &p.DNA, &p.BirthDate, &gender,
		&status, &p.Level, &p.Experience, &p.MotherID, &p.FatherID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Gender = pet.Gender(gender)
	p.LifeStatus = pet.LifeStatus(status)
	return &p, nil
}

// Get returns the pet with the given id.
//
// Postcondition: Returns an error wrapping pet.ErrNotFound if no row exists.
func (r *PetRepository) Get(ctx context.Context, id int64) (*pet.Pet, error) {
	p, err := scanPet(conn(ctx, r.db).QueryRow(ctx,
		`SELECT `+petColumns+` FROM pets WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("pet %d: %w", id, pet.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying pet %d: %w", id, err)
	}
	return p, nil
}

// ListByOwner returns every pet owned by ownerID ordered by id.
func (r *PetRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*pet.Pet, error) {
	rows, err := conn(ctx, r.db).Query(ctx,
		`SELECT `+petColumns+` FROM pets WHERE owner_id = $1 ORDER BY id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing pets: %w", err)
	}
	defer rows.Close()
	return collectPets(rows)
}

func collectPets(rows pgx.Rows) ([]*pet.Pet, error) {
	var out []*pet.Pet
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning pet: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pets: %w", err)
	}
	return out, nil
}

// Create inserts p.
//
// Postcondition: Returns the stored pet with ID, CreatedAt and UpdatedAt set.
// A zero Level is stored as 1 and an empty LifeStatus as alive.
func (r *PetRepository) Create(ctx context.Context, p *pet.Pet) (*pet.Pet, error) {
	level := p.Level
	if level < 1 {
		level = 1
	}
	status := p.LifeStatus
	if status == "" {
		status = pet.StatusAlive
	}
	created, err := scanPet(conn(ctx, r.db).QueryRow(ctx,
		`INSERT INTO pets (owner_id, name, image_url, description, dna, birth_date, gender,
		                   life_status, level, experience, mother_id, father_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING `+petColumns,
		p.OwnerID, p.Name, p.ImageURL, p.Description, p.DNA, p.BirthDate, string(p.Gender),
		string(status), level, p.Experience, p.MotherID, p.FatherID,
	))
	if err != nil {
		return nil, fmt.Errorf("inserting pet: %w", err)
	}
	return created, nil
}

// Update persists the mutable columns of p. Owner, gender, birth date and
// parentage are immutable here.
func (r *PetRepository) Update(ctx context.Context, p *pet.Pet) error {
	tag, err := conn(ctx, r.db).Exec(ctx,
		`UPDATE pets
		 SET name = $2, image_url = $3, description = $4, dna = $5,
		     life_status = $6, level = $7, experience = $8, updated_at = NOW()
		 WHERE id = $1`,
		p.ID, p.Name, p.ImageURL, p.Description, p.DNA, string(p.LifeStatus), p.Level, p.Experience,
	)
	if err != nil {
		return fmt.Errorf("updating pet %d: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("pet %d: %w", p.ID, pet.ErrNotFound)
	}
	return nil
}

// Delete removes the pet; its state rows cascade.
func (r *PetRepository) Delete(ctx context.Context, id int64) error {
	tag, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM pets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting pet %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("pet %d: %w", id, pet.ErrNotFound)
	}
	return nil
}

// Transfer changes the owner of the pet.
func (r *PetRepository) Transfer(ctx context.Context, id, newOwnerID int64) error {
	tag, err := conn(ctx, r.db).Exec(ctx,
		`UPDATE pets SET owner_id = $2, updated_at = NOW() WHERE id = $1`, id, newOwnerID)
	if err != nil {
		return fmt.Errorf("transferring pet %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("pet %d: %w", id, pet.ErrNotFound)
	}
	return nil
}

// Lock takes row locks on the given pets in id order and returns them.
//
// Precondition: ctx should carry a transaction; without one the locks are
// released as soon as the statement ends.
func (r *PetRepository) Lock(ctx context.Context, ids ...int64) (map[int64]*pet.Pet, error) {
	rows, err := conn(ctx, r.db).Query(ctx,
		`SELECT `+petColumns+` FROM pets WHERE id = ANY($1) ORDER BY id FOR UPDATE`, ids)
	if err != nil {
		return nil, fmt.Errorf("locking pets: %w", err)
	}
	defer rows.Close()
	pets, err := collectPets(rows)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]*pet.Pet, len(pets))
	for _, p := range pets {
		out[p.ID] = p
	}
	return out, nil
}
