package adventure

// ExperiencePerLevel scales the per-level threshold: leaving level L costs L*ExperiencePerLevel.
const ExperiencePerLevel = 100

// Threshold returns the experience needed to advance from level.
func Threshold(level int) int {
	return level * ExperiencePerLevel
}

// ApplyExperience adds gained to experience and applies repeated level-ups.
//
// Precondition: level >= 1; experience >= 0; gained >= 0.
// Postcondition: newExperience < Threshold(newLevel); levelsGained == newLevel - level.
func ApplyExperience(level, experience, gained int) (newLevel, newExperience, levelsGained int) {
	if level < 1 {
		level = 1
	}
	newLevel = level
	newExperience = experience + gained
	for newExperience >= Threshold(newLevel) {
		newExperience -= Threshold(newLevel)
		newLevel++
	}
	return newLevel, newExperience, newLevel - level
}
