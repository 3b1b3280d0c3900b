// Package ports declares the collaborator contracts the engine consumes but
// does not own: transactions, inventory, balances and notifications.
package ports

import (
	"context"

	"go.uber.org/zap"
)

// Transactor runs fn inside one storage transaction. The transaction travels
// in the context handed to fn; repositories called with that context join it.
// If fn returns an error, every write made through the context is rolled back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Inventory is the per-user item store.
type Inventory interface {
	// AddItem increments (or inserts) the quantity of itemID owned by userID.
	AddItem(ctx context.Context, userID int64, itemID string, qty int) error
	Quantity(ctx context.Context, userID int64, itemID string) (int, error)
	// Consume removes qty of itemID if at least qty is held. It reports false,
	// without changing anything, when the holding is insufficient.
	Consume(ctx context.Context, userID int64, itemID string, qty int) (bool, error)
}

// Ledger is the balance collaborator used by the healing flow.
type Ledger interface {
	// Debit subtracts amount when the balance covers it and reports success.
	Debit(ctx context.Context, userID, amount int64) (bool, error)
	Credit(ctx context.Context, userID, amount int64) error
}

// NotificationKind names a notification delivered to a user.
type NotificationKind string

const (
	NotifyMatingRequest     NotificationKind = "mating_request"
	NotifyMatingAccepted    NotificationKind = "mating_accepted"
	NotifyMatingDeclined    NotificationKind = "mating_declined"
	NotifyPetBorn           NotificationKind = "pet_born"
	NotifyAdventureDone     NotificationKind = "adventure_complete"
	NotifyPetMessage        NotificationKind = "pet_message"
	NotifyIllnessContracted NotificationKind = "illness_contracted"
)

// Notifier is the notification sink. Delivery is fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, recipientID int64, kind NotificationKind, payload map[string]any) error
}

// NotifyQuietly delivers a notification and logs, rather than returns, any
// failure so the calling operation is never aborted by the sink.
func NotifyQuietly(ctx context.Context, n Notifier, logger *zap.Logger, recipientID int64, kind NotificationKind, payload map[string]any) {
	if n == nil {
		return
	}
	if err := n.Notify(ctx, recipientID, kind, payload); err != nil {
		logger.Warn("notification failed",
			zap.Int64("recipient_id", recipientID),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
}

// LogNotifier is a Notifier that only writes notifications to the log.
type LogNotifier struct {
	Logger *zap.Logger
}

// Notify logs the notification at info level.
func (l LogNotifier) Notify(_ context.Context, recipientID int64, kind NotificationKind, payload map[string]any) error {
	l.Logger.Info("notification",
		zap.Int64("recipient_id", recipientID),
		zap.String("kind", string(kind)),
		zap.Any("payload", payload),
	)
	return nil
}

// MultiNotifier fans a notification out to every sink and returns the first error.
type MultiNotifier []Notifier

// Notify delivers to each sink in order.
func (m MultiNotifier) Notify(ctx context.Context, recipientID int64, kind NotificationKind, payload map[string]any) error {
	var first error
	for _, n := range m {
		if err := n.Notify(ctx, recipientID, kind, payload); err != nil && first == nil {
			first = err
		}
	}
	return first
}
