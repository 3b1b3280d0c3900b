package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/petengine/internal/game/gameerr"
)

// ActionKind names a caller-facing action.
type ActionKind string

const (
	ActionBreed           ActionKind = "breed"
	ActionStartAdventure  ActionKind = "start_adventure"
	ActionCheckAdventures ActionKind = "check_adventures"
	ActionUseItem         ActionKind = "use_item"
	ActionReadStats       ActionKind = "read_stats"
)

// Action is one request from an authenticated user.
type Action struct {
	Kind   ActionKind
	UserID int64
	PetID  int64
	// OtherPetID is the second parent for ActionBreed.
	OtherPetID int64
	QuestID    string
	ItemID     string
}

// Outcome is the caller-facing result of an Action.
//
// Result holds the typed result of the underlying operation on success:
// breeding.Result, *adventure.Active, adventure.Report, item.UseResult or *View.
type Outcome struct {
	OK      bool
	Message string
	Kind    gameerr.Kind
	Result  any
}

// Dispatch runs a single action and renders its outcome. It never returns a
// raw error; validation failures carry their reason and storage failures the
// generic message.
func (e *Engine) Dispatch(ctx context.Context, a Action) Outcome {
	res, err := e.run(ctx, a)
	ok, msg := gameerr.Describe(err)
	if ok {
		msg = summarize(a.Kind, res)
	}
	out := Outcome{OK: ok, Message: msg, Result: res}
	if !ok {
		out.Kind = gameerr.KindOf(err)
		out.Result = nil
		e.logger.Debug("action rejected",
			zap.String("action", string(a.Kind)),
			zap.Int64("user_id", a.UserID),
			zap.Stringer("kind", out.Kind),
			zap.String("reason", msg),
		)
	}
	return out
}

func (e *Engine) run(ctx context.Context, a Action) (any, error) {
	switch a.Kind {
	case ActionBreed:
		return e.breeding.Breed(ctx, a.UserID, a.PetID, a.OtherPetID)
	case ActionStartAdventure:
		return e.adventures.Start(ctx, a.UserID, a.PetID, a.QuestID)
	case ActionCheckAdventures:
		return e.adventures.CheckUser(ctx, a.UserID)
	case ActionUseItem:
		return e.UseItem(ctx, a.UserID, a.PetID, a.ItemID)
	case ActionReadStats:
		return e.ReadStats(ctx, a.PetID)
	default:
		return nil, gameerr.InvalidState(fmt.Sprintf("unknown action %q", a.Kind))
	}
}
