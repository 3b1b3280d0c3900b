package adventure

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/petengine/internal/game/gameerr"
	"github.com/cory-johannsen/petengine/internal/game/pet"
	"github.com/cory-johannsen/petengine/internal/game/ports"
)

// Manager starts and reconciles adventures.
//
// Reconciliation is pull based: CheckUser completes a user's due adventures on
// demand. The Reconciler is an optional background optimisation that calls
// the same Complete path.
type Manager struct {
	repo      Repository
	pets      pet.Repository
	catalog   Catalog
	inventory ports.Inventory
	notifier  ports.Notifier
	tx        ports.Transactor
	roller    PercentRoller
	logger    *zap.Logger
	now       func() time.Time
}

// NewManager creates a Manager.
//
// Precondition: all arguments must be non-nil.
func NewManager(repo Repository, pets pet.Repository, catalog Catalog, inventory ports.Inventory,
	notifier ports.Notifier, tx ports.Transactor, roller PercentRoller, logger *zap.Logger) *Manager {
	return &Manager{
		repo:      repo,
		pets:      pets,
		catalog:   catalog,
		inventory: inventory,
		notifier:  notifier,
		tx:        tx,
		roller:    roller,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock replaces the time source. Intended for tests.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Start sends a pet owned by userID on questID.
//
// Postcondition: on success exactly one active adventure exists for the pet,
// ending at now + quest duration.
func (m *Manager) Start(ctx context.Context, userID, petID int64, questID string) (*Active, error) {
	var out *Active
	err := m.tx.WithinTx(ctx, func(ctx context.Context) error {
		locked, err := m.pets.Lock(ctx, petID)
		if err != nil {
			return err
		}
		p, ok := locked[petID]
		if !ok {
			return gameerr.NotFound(fmt.Sprintf("pet %d not found", petID))
		}
		q, ok := m.catalog.Get(questID)
		if !ok {
			return gameerr.NotFound(fmt.Sprintf("quest %q not found", questID))
		}
		if err := pet.RequireOwner(p, userID); err != nil {
			return err
		}
		if !p.IsAlive() {
			return gameerr.InvalidState(fmt.Sprintf("%s cannot go on adventures", p.DisplayName()))
		}
		if p.Level < q.MinLevel {
			return gameerr.InvalidState(fmt.Sprintf("%s must be level %d for %s (currently level %d)",
				p.DisplayName(), q.MinLevel, q.Name, p.Level))
		}
		if _, err := m.repo.ForPet(ctx, petID); err == nil {
			return gameerr.InvalidState(fmt.Sprintf("%s is already on an adventure", p.DisplayName()))
		} else if !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("checking active adventure for pet %d: %w", petID, err)
		}

		now := m.now()
		a := &Active{
			ID:        uuid.New(),
			PetID:     petID,
			OwnerID:   userID,
			QuestID:   q.ID,
			StartedAt: now,
			EndsAt:    now.Add(q.Duration()),
		}
		if err := m.repo.Create(ctx, a); err != nil {
			if errors.Is(err, ErrAlreadyActive) {
				return gameerr.InvalidState(fmt.Sprintf("%s is already on an adventure", p.DisplayName()))
			}
			return fmt.Errorf("creating adventure: %w", err)
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, m.fail("start", err)
	}
	m.logger.Info("adventure started",
		zap.String("adventure_id", out.ID.String()),
		zap.Int64("pet_id", petID),
		zap.String("quest", questID),
		zap.Time("ends_at", out.EndsAt),
	)
	return out, nil
}

// Complete finalises one due adventure: experience, leveling, drops and
// deletion, all in one transaction. Completing an adventure that no longer
// exists is a benign no-op reported as Skipped.
//
// An adventure whose pet or quest no longer exists can never be completed. Its
// row is discarded so the pet is free again, and a DataIntegrity error is
// returned.
func (m *Manager) Complete(ctx context.Context, id uuid.UUID) (Completion, error) {
	var (
		out    Completion
		owner  int64
		quest  *Quest
		broken error
	)
	err := m.tx.WithinTx(ctx, func(ctx context.Context) error {
		a, err := m.repo.Claim(ctx, id)
		if errors.Is(err, ErrNotFound) {
			out = Completion{AdventureID: id, Skipped: true}
			return nil
		}
		if err != nil {
			return fmt.Errorf("claiming adventure %s: %w", id, err)
		}
		if !a.Due(m.now()) {
			return gameerr.InvalidState(fmt.Sprintf("adventure is not finished yet (%s remaining)",
				a.Remaining(m.now()).Round(time.Second)))
		}

		locked, err := m.pets.Lock(ctx, a.PetID)
		if err != nil {
			return err
		}
		p, ok := locked[a.PetID]
		if !ok {
			broken = gameerr.DataIntegrity(fmt.Sprintf("adventure %s references missing pet %d", id, a.PetID))
			return nil
		}
		q, ok := m.catalog.Get(a.QuestID)
		if !ok {
			broken = gameerr.DataIntegrity(fmt.Sprintf("adventure %s references missing quest %q", id, a.QuestID))
			return nil
		}

		level, exp, gained := ApplyExperience(p.Level, p.Experience, q.ExperienceReward)
		p.Level, p.Experience = level, exp
		if err := m.pets.Update(ctx, p); err != nil {
			return fmt.Errorf("updating pet %d: %w", p.ID, err)
		}

		table, _ := m.catalog.RewardTable(q.ID)
		items := RollRewards(table, m.roller)
		for _, item := range items {
			if err := m.inventory.AddItem(ctx, p.OwnerID, item, 1); err != nil {
				return fmt.Errorf("adding %q to user %d: %w", item, p.OwnerID, err)
			}
		}

		out = Completion{
			AdventureID:      id,
			PetID:            p.ID,
			QuestID:          q.ID,
			ExperienceGained: q.ExperienceReward,
			LeveledUp:        gained > 0,
			LevelsGained:     gained,
			NewLevel:         level,
			NewExperience:    exp,
			Items:            items,
		}
		owner, quest = p.OwnerID, q
		return nil
	})
	if err != nil {
		return Completion{}, m.fail("complete", err)
	}
	if broken != nil {
		m.logger.Error("discarded adventure that cannot be completed",
			zap.String("adventure_id", id.String()), zap.Error(broken))
		return Completion{}, broken
	}
	if out.Skipped {
		m.logger.Debug("adventure already completed", zap.String("adventure_id", id.String()))
		return out, nil
	}

	m.logger.Info("adventure completed",
		zap.String("adventure_id", id.String()),
		zap.Int64("pet_id", out.PetID),
		zap.String("quest", out.QuestID),
		zap.Int("experience", out.ExperienceGained),
		zap.Int("level", out.NewLevel),
		zap.Strings("items", out.Items),
	)
	ports.NotifyQuietly(ctx, m.notifier, m.logger, owner, ports.NotifyAdventureDone, map[string]any{
		"pet_id":     out.PetID,
		"quest":      quest.Name,
		"experience": out.ExperienceGained,
		"leveled_up": out.LeveledUp,
		"level":      out.NewLevel,
		"items":      out.Items,
	})
	return out, nil
}

// CheckUser completes every due adventure started by userID. One adventure
// failing does not stop the others; failures are listed in the report.
func (m *Manager) CheckUser(ctx context.Context, userID int64) (Report, error) {
	due, err := m.repo.DueByOwner(ctx, userID, m.now())
	if err != nil {
		return Report{}, m.fail("check", fmt.Errorf("listing due adventures for user %d: %w", userID, err))
	}
	return m.completeAll(ctx, due), nil
}

// ReconcileDue completes up to limit due adventures of any user, passing over
// the ids in skip.
func (m *Manager) ReconcileDue(ctx context.Context, limit int, skip ...uuid.UUID) (Report, error) {
	due, err := m.repo.Due(ctx, m.now(), limit, skip)
	if err != nil {
		return Report{}, m.fail("reconcile", fmt.Errorf("listing due adventures: %w", err))
	}
	return m.completeAll(ctx, due), nil
}

func (m *Manager) completeAll(ctx context.Context, due []*Active) Report {
	var rep Report
	for _, a := range due {
		c, err := m.Complete(ctx, a.ID)
		if err != nil {
			_, reason := gameerr.Describe(err)
			rep.Failed++
			rep.Failures = append(rep.Failures, Failure{AdventureID: a.ID, Reason: reason, Err: err})
			continue
		}
		rep.add(c)
	}
	return rep
}

// ListActive returns userID's adventures with their quests and remaining time.
// Adventures whose quest vanished from the catalog are returned with a nil Quest.
func (m *Manager) ListActive(ctx context.Context, userID int64) ([]Status, error) {
	list, err := m.repo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, m.fail("list", fmt.Errorf("listing adventures for user %d: %w", userID, err))
	}
	now := m.now()
	out := make([]Status, 0, len(list))
	for _, a := range list {
		q, _ := m.catalog.Get(a.QuestID)
		out = append(out, Status{Adventure: a, Quest: q, Remaining: a.Remaining(now), Due: a.Due(now)})
	}
	return out, nil
}

// ListQuests returns the quests available at level.
func (m *Manager) ListQuests(level int) []*Quest {
	return m.catalog.ListForLevel(level)
}

// QuestsForPet returns the quests available to a pet owned by userID.
func (m *Manager) QuestsForPet(ctx context.Context, userID, petID int64) ([]*Quest, error) {
	p, err := pet.LoadOwned(ctx, m.pets, petID, userID)
	if err != nil {
		return nil, m.fail("quests", err)
	}
	return m.catalog.ListForLevel(p.Level), nil
}

func (m *Manager) fail(op string, err error) error {
	err = gameerr.Storage(err)
	if gameerr.KindOf(err) == gameerr.KindStorage {
		m.logger.Error("adventure operation failed", zap.String("op", op), zap.Error(err))
	}
	return err
}
