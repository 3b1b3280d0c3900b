package engine

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/petengine/internal/game/adventure"
	"github.com/cory-johannsen/petengine/internal/game/breeding"
	"github.com/cory-johannsen/petengine/internal/game/item"
)

// summarize renders a one-line human-readable description of a successful result.
func summarize(kind ActionKind, res any) string {
	switch r := res.(type) {
	case breeding.Result:
		return fmt.Sprintf("%s was born", r.Offspring.DisplayName())
	case *adventure.Active:
		return fmt.Sprintf("adventure started; it ends at %s", r.EndsAt.Format("2006-01-02 15:04 MST"))
	case adventure.Report:
		if r.Completed == 0 && r.Failed == 0 {
			return "no adventures are ready yet"
		}
		var b strings.Builder
		fmt.Fprintf(&b, "%d adventure(s) completed, %d experience gained", r.Completed, r.TotalExperience)
		if r.LevelUps > 0 {
			fmt.Fprintf(&b, ", %d level(s) gained", r.LevelUps)
		}
		if len(r.Items) > 0 {
			fmt.Fprintf(&b, ", found %s", strings.Join(r.Items, ", "))
		}
		if r.Failed > 0 {
			fmt.Fprintf(&b, "; %d could not be completed", r.Failed)
		}
		return b.String()
	case item.UseResult:
		return fmt.Sprintf("used %s", r.Item.Name)
	case *View:
		return fmt.Sprintf("%s: hunger %d, happiness %d, hp %d", r.Pet.DisplayName(),
			r.Stats.Hunger, r.Stats.Happiness, r.Health.HP)
	}
	return fmt.Sprintf("%s ok", kind)
}
