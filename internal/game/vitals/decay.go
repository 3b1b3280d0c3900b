package vitals

import "time"

// Decay applies the time-based decay rules to s as of now and reports whether
// the result differs from s in a way that must be persisted.
//
// Only whole elapsed hours count. The anchor advances by exactly the hours
// consumed, so repeated evaluation within the same hour is a no-op and the
// fractional remainder carries over to the next evaluation.
//
// Precondition: s must be non-nil.
// Postcondition: the returned hunger and happiness are in [MinStat, MaxStat];
// dirty is false whenever hunger and happiness are unchanged.
func Decay(s *Stats, now time.Time) (out Stats, dirty bool) {
	out = *s
	if out.UpdatedAt.IsZero() {
		out.UpdatedAt = now
		return out, true
	}
	hours := int(now.Sub(out.UpdatedAt) / time.Hour)
	if hours <= 0 {
		return out, false
	}

	out.Hunger = Clamp(out.Hunger - hours*HungerPerHour)
	if out.Hunger < StarvingThreshold {
		out.Happiness = Clamp(out.Happiness - hours*StarvingHappinessPerHour)
	}
	out.UpdatedAt = out.UpdatedAt.Add(time.Duration(hours) * time.Hour)

	dirty = out.Hunger != s.Hunger || out.Happiness != s.Happiness
	return out, dirty
}
