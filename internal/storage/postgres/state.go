package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/petengine/internal/game/health"
	"github.com/cory-johannsen/petengine/internal/game/personality"
	"github.com/cory-johannsen/petengine/internal/game/vitals"
)

// StatsRepository implements vitals.Repository.
type StatsRepository struct {
	db *pgxpool.Pool
}

// NewStatsRepository creates a StatsRepository backed by the given pool.
func NewStatsRepository(db *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) Get(ctx context.Context, petID int64) (*vitals.Stats, error) {
	st := vitals.Stats{PetID: petID}
	err := conn(ctx, r.db).QueryRow(ctx,
		`SELECT hunger, happiness, updated_at FROM pet_stats WHERE pet_id = $1`, petID,
	).Scan(&st.Hunger, &st.Happiness, &st.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("stats for pet %d: %w", petID, vitals.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying stats for pet %d: %w", petID, err)
	}
	return &st, nil
}

func (r *StatsRepository) Save(ctx context.Context, st *vitals.Stats) error {
	_, err := conn(ctx, r.db).Exec(ctx,
		`INSERT INTO pet_stats (pet_id, hunger, happiness, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (pet_id) DO UPDATE
		 SET hunger = EXCLUDED.hunger, happiness = EXCLUDED.happiness, updated_at = EXCLUDED.updated_at`,
		st.PetID, st.Hunger, st.Happiness, st.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving stats for pet %d: %w", st.PetID, err)
	}
	return nil
}

// HealthRepository implements health.Repository over pet_health and pet_illnesses.
type HealthRepository struct {
	db *pgxpool.Pool
}

// NewHealthRepository creates a HealthRepository backed by the given pool.
func NewHealthRepository(db *pgxpool.Pool) *HealthRepository {
	return &HealthRepository{db: db}
}

func (r *HealthRepository) Get(ctx context.Context, petID int64) (*health.Record, error) {
	q := conn(ctx, r.db)
	rec := health.Record{PetID: petID}
	var status string
	err := q.QueryRow(ctx,
		`SELECT hp, status FROM pet_health WHERE pet_id = $1`, petID,
	).Scan(&rec.HP, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("health for pet %d: %w", petID, health.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying health for pet %d: %w", petID, err)
	}
	rec.Status = health.Status(status)

	rows, err := q.Query(ctx,
		`SELECT illness_id FROM pet_illnesses WHERE pet_id = $1 ORDER BY illness_id`, petID)
	if err != nil {
		return nil, fmt.Errorf("querying illnesses for pet %d: %w", petID, err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning illnesses for pet %d: %w", petID, err)
	}
	rec.Illnesses = ids
	return &rec, nil
}

// Save upserts the health row and replaces the illness set.
//
// Precondition: ctx should carry a transaction so both tables change together.
func (r *HealthRepository) Save(ctx context.Context, rec *health.Record) error {
	q := conn(ctx, r.db)
	_, err := q.Exec(ctx,
		`INSERT INTO pet_health (pet_id, hp, status) VALUES ($1, $2, $3)
		 ON CONFLICT (pet_id) DO UPDATE SET hp = EXCLUDED.hp, status = EXCLUDED.status`,
		rec.PetID, rec.HP, string(rec.Status),
	)
	if err != nil {
		return fmt.Errorf("saving health for pet %d: %w", rec.PetID, err)
	}
	if _, err := q.Exec(ctx, `DELETE FROM pet_illnesses WHERE pet_id = $1`, rec.PetID); err != nil {
		return fmt.Errorf("clearing illnesses for pet %d: %w", rec.PetID, err)
	}
	if len(rec.Illnesses) == 0 {
		return nil
	}
	_, err = q.Exec(ctx,
		`INSERT INTO pet_illnesses (pet_id, illness_id) SELECT $1, unnest($2::text[])`,
		rec.PetID, rec.Illnesses,
	)
	if err != nil {
		return fmt.Errorf("saving illnesses for pet %d: %w", rec.PetID, err)
	}
	return nil
}

// PersonalityRepository implements personality.Repository.
type PersonalityRepository struct {
	db *pgxpool.Pool
}

// NewPersonalityRepository creates a PersonalityRepository backed by the given pool.
func NewPersonalityRepository(db *pgxpool.Pool) *PersonalityRepository {
	return &PersonalityRepository{db: db}
}

func (r *PersonalityRepository) Get(ctx context.Context, petID int64) (*personality.Profile, error) {
	var bravery, curiosity, friendliness, greed, laziness int
	err := conn(ctx, r.db).QueryRow(ctx,
		`SELECT bravery, curiosity, friendliness, greed, laziness
		 FROM pet_personality WHERE pet_id = $1`, petID,
	).Scan(&bravery, &curiosity, &friendliness, &greed, &laziness)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("personality for pet %d: %w", petID, personality.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying personality for pet %d: %w", petID, err)
	}
	return &personality.Profile{PetID: petID, Values: map[personality.Trait]int{
		personality.Bravery:      bravery,
		personality.Curiosity:    curiosity,
		personality.Friendliness: friendliness,
		personality.Greed:        greed,
		personality.Laziness:     laziness,
	}}, nil
}

func (r *PersonalityRepository) Save(ctx context.Context, p *personality.Profile) error {
	_, err := conn(ctx, r.db).Exec(ctx,
		`INSERT INTO pet_personality (pet_id, bravery, curiosity, friendliness, greed, laziness)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (pet_id) DO UPDATE
		 SET bravery = EXCLUDED.bravery, curiosity = EXCLUDED.curiosity,
		     friendliness = EXCLUDED.friendliness, greed = EXCLUDED.greed, laziness = EXCLUDED.laziness`,
		p.PetID,
		p.Value(personality.Bravery), p.Value(personality.Curiosity), p.Value(personality.Friendliness),
		p.Value(personality.Greed), p.Value(personality.Laziness),
	)
	if err != nil {
		return fmt.Errorf("saving personality for pet %d: %w", p.PetID, err)
	}
	return nil
}

// CooldownRepository implements breeding.CooldownRepository.
type CooldownRepository struct {
	db *pgxpool.Pool
}

// NewCooldownRepository creates a CooldownRepository backed by the given pool.
func NewCooldownRepository(db *pgxpool.Pool) *CooldownRepository {
	return &CooldownRepository{db: db}
}

// Expiry returns the cooldown expiry, or nil when the pet never bred.
func (r *CooldownRepository) Expiry(ctx context.Context, petID int64) (*time.Time, error) {
	var until time.Time
	err := conn(ctx, r.db).QueryRow(ctx,
		`SELECT expires_at FROM breeding_cooldowns WHERE pet_id = $1`, petID,
	).Scan(&until)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying cooldown for pet %d: %w", petID, err)
	}
	return &until, nil
}

func (r *CooldownRepository) Set(ctx context.Context, petID int64, until time.Time) error {
	_, err := conn(ctx, r.db).Exec(ctx,
		`INSERT INTO breeding_cooldowns (pet_id, expires_at) VALUES ($1, $2)
		 ON CONFLICT (pet_id) DO UPDATE SET expires_at = EXCLUDED.expires_at`,
		petID, until,
	)
	if err != nil {
		return fmt.Errorf("setting cooldown for pet %d: %w", petID, err)
	}
	return nil
}
