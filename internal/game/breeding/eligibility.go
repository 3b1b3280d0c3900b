package breeding

import (
	"context"
	"fmt"
	"time"

	"github.com/cory-johannsen/petengine/internal/game/gameerr"
	"github.com/cory-johannsen/petengine/internal/game/pet"
)

// checkDistinct is rule 1.
func checkDistinct(a, b int64) error {
	if a <= 0 || b <= 0 {
		return gameerr.InvalidState("two pets are required to breed")
	}
	if a == b {
		return gameerr.InvalidState("a pet cannot breed with itself")
	}
	return nil
}

// checkPair applies rules 3 and 4 to two loaded pets.
func checkPair(a, b *pet.Pet, minAge int, now time.Time) error {
	if !a.IsAlive() || !b.IsAlive() {
		return gameerr.InvalidState("both pets must be alive to breed")
	}
	if !a.Gender.Valid() || !b.Gender.Valid() || a.Gender == b.Gender {
		return gameerr.InvalidState("pets must be of opposite genders")
	}
	for _, p := range []*pet.Pet{a, b} {
		if age := p.Age(now); age < minAge {
			return gameerr.InvalidState(fmt.Sprintf("%s is too young to breed (%d of %d pet-days)",
				p.DisplayName(), age, minAge))
		}
	}
	return nil
}

// checkCooldowns is rule 5. Absent or past expiries are eligible.
func checkCooldowns(ctx context.Context, repo CooldownRepository, now time.Time, pets ...*pet.Pet) error {
	for _, p := range pets {
		until, err := repo.Expiry(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("loading cooldown for pet %d: %w", p.ID, err)
		}
		if until != nil && now.Before(*until) {
			return gameerr.InvalidState(fmt.Sprintf("%s is on breeding cooldown for another %s",
				p.DisplayName(), until.Sub(now).Round(time.Minute)))
		}
	}
	return nil
}

// parents orders a validated pair as (mother, father).
func parents(a, b *pet.Pet) (*pet.Pet, *pet.Pet) {
	if a.Gender == pet.GenderFemale {
		return a, b
	}
	return b, a
}
