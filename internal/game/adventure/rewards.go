package adventure

// PercentRoller rolls a labelled percentage chance. *dice.Roller satisfies it.
type PercentRoller interface {
	Percent(label string, percent float64) bool
}

// RollRewards rolls every drop of table independently and returns the item IDs
// that dropped, in table order.
func RollRewards(table []RewardDrop, roller PercentRoller) []string {
	var items []string
	for _, d := range table {
		if roller.Percent(d.ItemID, d.Chance) {
			items = append(items, d.ItemID)
		}
	}
	return items
}
