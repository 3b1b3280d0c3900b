// Package personality tracks the five bounded traits of each pet and the
// flavor message associated with its dominant trait.
package personality

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/cory-johannsen/petengine/internal/game/dice"
	"github.com/cory-johannsen/petengine/internal/game/vitals"
)

// Trait names one personality axis.
type Trait string

const (
	Bravery      Trait = "bravery"
	Friendliness Trait = "friendliness"
	Curiosity    Trait = "curiosity"
	Laziness     Trait = "laziness"
	Greed        Trait = "greed"
)

// Traits lists every trait in alphabetical order, which is also the
// dominant-trait tie-break order.
var Traits = func() []Trait {
	ts := []Trait{Bravery, Friendliness, Curiosity, Laziness, Greed}
	sort.Slice(ts, func(i, j int) bool { return ts[i] < ts[j] })
	return ts
}()

// ParseTrait converts a trait name into a Trait.
func ParseTrait(s string) (Trait, error) {
	for _, t := range Traits {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown trait %q", s)
}

// Trait value bounds and starting ranges.
const (
	// Baseline is the implicit value of a trait with no persisted row.
	Baseline = 50
	StartMin = 30
	StartMax = 70
)

// ErrNotFound is returned by repositories when no personality row exists.
var ErrNotFound = errors.New("personality not found")

// Profile holds the current trait values of one pet.
type Profile struct {
	PetID  int64
	Values map[Trait]int
}

// Value returns the value of t, or Baseline if unset.
func (p *Profile) Value(t Trait) int {
	if v, ok := p.Values[t]; ok {
		return v
	}
	return Baseline
}

// Dominant returns the trait with the highest value; ties go to the trait that
// sorts first alphabetically.
func (p *Profile) Dominant() Trait {
	best := Traits[0]
	for _, t := range Traits[1:] {
		if p.Value(t) > p.Value(best) {
			best = t
		}
	}
	return best
}

// NewBaseline returns a profile with every trait at Baseline.
func NewBaseline(petID int64) *Profile {
	p := &Profile{PetID: petID, Values: make(map[Trait]int, len(Traits))}
	for _, t := range Traits {
		p.Values[t] = Baseline
	}
	return p
}

// Roll returns a profile with each trait drawn uniformly from [StartMin, StartMax].
func Roll(petID int64, src dice.Source) *Profile {
	p := &Profile{PetID: petID, Values: make(map[Trait]int, len(Traits))}
	for _, t := range Traits {
		p.Values[t] = dice.IntRange(src, StartMin, StartMax)
	}
	return p
}

// Apply adds delta to trait t and clamps the result to [0, 100].
func (p *Profile) Apply(t Trait, delta int) int {
	v := vitals.Clamp(p.Value(t) + delta)
	p.Values[t] = v
	return v
}

var messages = map[Trait]string{
	Bravery:      "%s puffs up proudly and stares down every shadow in the room.",
	Friendliness: "%s nuzzles up to you, happy just to be near.",
	Curiosity:    "%s is sniffing around, eager to explore something new.",
	Laziness:     "%s yawns and curls up for yet another nap.",
	Greed:        "%s eyes your pockets, hoping for a treat.",
}

// Message returns the fixed flavor message for trait t, personalised with name.
func Message(t Trait, name string) string {
	return fmt.Sprintf(messages[t], name)
}

// Repository persists personality profiles.
type Repository interface {
	// Get returns the profile or an error wrapping ErrNotFound.
	Get(ctx context.Context, petID int64) (*Profile, error)
	// Save upserts every trait of the profile.
	Save(ctx context.Context, p *Profile) error
}
