package pet

import "time"

// HoursPerPetDay is the number of real hours in one pet-day.
const HoursPerPetDay = 12

// AgeInPetDays converts a birth timestamp into whole pet-days at now.
//
// Postcondition: returns 0 for a nil, zero or future birth timestamp.
func AgeInPetDays(birth *time.Time, now time.Time) int {
	if birth == nil || birth.IsZero() {
		return 0
	}
	elapsed := now.Sub(*birth)
	if elapsed <= 0 {
		return 0
	}
	return int(elapsed / (HoursPerPetDay * time.Hour))
}

// Age returns the pet's age in pet-days at now.
func (p *Pet) Age(now time.Time) int {
	return AgeInPetDays(p.BirthDate, now)
}
