package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/petengine/internal/game/adventure"
	"github.com/cory-johannsen/petengine/internal/game/breeding"
)

const adventureColumns = `id, pet_id, owner_id, quest_id, started_at, ends_at`

// AdventureRepository implements adventure.Repository on active_adventures.
type AdventureRepository struct {
	db *pgxpool.Pool
}

// NewAdventureRepository creates an AdventureRepository backed by the given pool.
func NewAdventureRepository(db *pgxpool.Pool) *AdventureRepository {
	return &AdventureRepository{db: db}
}

func scanAdventure(row pgx.Row) (*adventure.Active, error) {
	var a adventure.Active
	if err := row.Scan(&a.ID, &a.PetID, &a.OwnerID, &a.QuestID, &a.StartedAt, &a.EndsAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a. The pet_id unique constraint enforces one adventure per pet.
//
// Postcondition: Returns adventure.ErrAlreadyActive on a duplicate pet.
func (r *AdventureRepository) Create(ctx context.Context, a *adventure.Active) error {
	_, err := conn(ctx, r.db).Exec(ctx,
		`INSERT INTO active_adventures (`+adventureColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.PetID, a.OwnerID, a.QuestID, a.StartedAt, a.EndsAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return adventure.ErrAlreadyActive
		}
		return fmt.Errorf("inserting adventure: %w", err)
	}
	return nil
}

func (r *AdventureRepository) ForPet(ctx context.Context, petID int64) (*adventure.Active, error) {
	a, err := scanAdventure(conn(ctx, r.db).QueryRow(ctx,
		`SELECT `+adventureColumns+` FROM active_adventures WHERE pet_id = $1`, petID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("adventure for pet %d: %w", petID, adventure.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying adventure for pet %d: %w", petID, err)
	}
	return a, nil
}

func (r *AdventureRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*adventure.Active, error) {
	return r.list(ctx,
		`SELECT `+adventureColumns+` FROM active_adventures
		 WHERE owner_id = $1 ORDER BY ends_at, id`, ownerID)
}

func (r *AdventureRepository) DueByOwner(ctx context.Context, ownerID int64, now time.Time) ([]*adventure.Active, error) {
	return r.list(ctx,
		`SELECT `+adventureColumns+` FROM active_adventures
		 WHERE owner_id = $1 AND ends_at <= $2 ORDER BY ends_at, id`, ownerID, now)
}

// Due returns up to limit due adventures not listed in exclude; a
// non-positive limit means no limit.
func (r *AdventureRepository) Due(ctx context.Context, now time.Time, limit int, exclude []uuid.UUID) ([]*adventure.Active, error) {
	if exclude == nil {
		// ANY over a NULL array would filter out every row.
		exclude = []uuid.UUID{}
	}
	if limit <= 0 {
		return r.list(ctx,
			`SELECT `+adventureColumns+` FROM active_adventures
			 WHERE ends_at <= $1 AND NOT (id = ANY($2::uuid[])) ORDER BY ends_at, id`, now, exclude)
	}
	return r.list(ctx,
		`SELECT `+adventureColumns+` FROM active_adventures
		 WHERE ends_at <= $1 AND NOT (id = ANY($2::uuid[])) ORDER BY ends_at, id LIMIT $3`, now, exclude, limit)
}

// Claim deletes the adventure and returns it. A concurrent claimer blocks on
// the row lock and then sees no row.
func (r *AdventureRepository) Claim(ctx context.Context, id uuid.UUID) (*adventure.Active, error) {
	a, err := scanAdventure(conn(ctx, r.db).QueryRow(ctx,
		`DELETE FROM active_adventures WHERE id = $1 RETURNING `+adventureColumns, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("adventure %s: %w", id, adventure.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("claiming adventure %s: %w", id, err)
	}
	return a, nil
}

func (r *AdventureRepository) list(ctx context.Context, sql string, args ...any) ([]*adventure.Active, error) {
	rows, err := conn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("listing adventures: %w", err)
	}
	defer rows.Close()
	var out []*adventure.Active
	for rows.Next() {
		a, err := scanAdventure(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning adventure: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating adventures: %w", err)
	}
	return out, nil
}

const requestColumns = `id, requester_id, recipient_id, requester_pet_id, target_pet_id,
	status, offspring_id, created_at, responded_at`

// RequestRepository implements breeding.RequestRepository on mating_requests.
type RequestRepository struct {
	db *pgxpool.Pool
}

// NewRequestRepository creates a RequestRepository backed by the given pool.
func NewRequestRepository(db *pgxpool.Pool) *RequestRepository {
	return &RequestRepository{db: db}
}

func scanRequest(row pgx.Row) (*breeding.MatingRequest, error) {
	var (
		req    breeding.MatingRequest
		status string
	)
	err := row.Scan(&req.ID, &req.RequesterID, &req.RecipientID, &req.RequesterPetID, &req.TargetPetID,
		&status, &req.OffspringID, &req.CreatedAt, &req.RespondedAt)
	if err != nil {
		return nil, err
	}
	req.Status = breeding.RequestStatus(status)
	return &req, nil
}

func (r *RequestRepository) Create(ctx context.Context, req *breeding.MatingRequest) error {
	_, err := conn(ctx, r.db).Exec(ctx,
		`INSERT INTO mating_requests (`+requestColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		req.ID, req.RequesterID, req.RecipientID, req.RequesterPetID, req.TargetPetID,
		string(req.Status), req.OffspringID, req.CreatedAt, req.RespondedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting mating request: %w", err)
	}
	return nil
}

func (r *RequestRepository) Get(ctx context.Context, id uuid.UUID) (*breeding.MatingRequest, error) {
	req, err := scanRequest(conn(ctx, r.db).QueryRow(ctx,
		`SELECT `+requestColumns+` FROM mating_requests WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("mating request %s: %w", id, breeding.ErrRequestNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying mating request %s: %w", id, err)
	}
	return req, nil
}

func (r *RequestRepository) PendingBetween(ctx context.Context, petA, petB int64) (bool, error) {
	var exists bool
	err := conn(ctx, r.db).QueryRow(ctx,
		`SELECT EXISTS (
		     SELECT 1 FROM mating_requests
		     WHERE status = 'pending'
		       AND ((requester_pet_id = $1 AND target_pet_id = $2)
		         OR (requester_pet_id = $2 AND target_pet_id = $1)))`,
		petA, petB,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking pending requests: %w", err)
	}
	return exists, nil
}

func (r *RequestRepository) ListPendingForRecipient(ctx context.Context, userID int64) ([]*breeding.MatingRequest, error) {
	rows, err := conn(ctx, r.db).Query(ctx,
		`SELECT `+requestColumns+` FROM mating_requests
		 WHERE recipient_id = $1 AND status = 'pending'
		 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing mating requests: %w", err)
	}
	defer rows.Close()
	var out []*breeding.MatingRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning mating request: %w", err)
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating mating requests: %w", err)
	}
	return out, nil
}

// Resolve only updates a pending row. A concurrent resolver blocks on the row
// lock, then re-checks the status and matches nothing.
func (r *RequestRepository) Resolve(ctx context.Context, req *breeding.MatingRequest) error {
	q := conn(ctx, r.db)
	tag, err := q.Exec(ctx,
		`UPDATE mating_requests SET status = $2, offspring_id = $3, responded_at = $4
		 WHERE id = $1 AND status = 'pending'`,
		req.ID, string(req.Status), req.OffspringID, req.RespondedAt,
	)
	if err != nil {
		return fmt.Errorf("resolving mating request %s: %w", req.ID, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM mating_requests WHERE id = $1)`, req.ID).Scan(&exists); err != nil {
		return fmt.Errorf("checking mating request %s: %w", req.ID, err)
	}
	if !exists {
		return fmt.Errorf("mating request %s: %w", req.ID, breeding.ErrRequestNotFound)
	}
	return fmt.Errorf("mating request %s: %w", req.ID, breeding.ErrRequestResolved)
}
