package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/cory-johannsen/petengine/internal/game/ports"
)

// Inventory implements ports.Inventory.
type Inventory struct{ s *Store }

func (i *Inventory) AddItem(ctx context.Context, userID int64, itemID string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("adding %q: quantity must be positive, got %d", itemID, qty)
	}
	defer i.s.guard(ctx)()
	items, ok := i.s.state.inventory[userID]
	if !ok {
		items = make(map[string]int)
		i.s.state.inventory[userID] = items
	}
	items[itemID] += qty
	return nil
}

func (i *Inventory) Quantity(ctx context.Context, userID int64, itemID string) (int, error) {
	defer i.s.guard(ctx)()
	return i.s.state.inventory[userID][itemID], nil
}

func (i *Inventory) Consume(ctx context.Context, userID int64, itemID string, qty int) (bool, error) {
	defer i.s.guard(ctx)()
	items := i.s.state.inventory[userID]
	if items[itemID] < qty {
		return false, nil
	}
	items[itemID] -= qty
	if items[itemID] == 0 {
		delete(items, itemID)
	}
	return true, nil
}

// Ledger implements ports.Ledger.
type Ledger struct{ s *Store }

func (l *Ledger) Debit(ctx context.Context, userID, amount int64) (bool, error) {
	defer l.s.guard(ctx)()
	if l.s.state.balances[userID] < amount {
		return false, nil
	}
	l.s.state.balances[userID] -= amount
	return true, nil
}

func (l *Ledger) Credit(ctx context.Context, userID, amount int64) error {
	defer l.s.guard(ctx)()
	l.s.state.balances[userID] += amount
	return nil
}

// Balance returns userID's balance.
func (l *Ledger) Balance(ctx context.Context, userID int64) int64 {
	defer l.s.guard(ctx)()
	return l.s.state.balances[userID]
}

// Notification is one delivered notification.
type Notification struct {
	RecipientID int64
	Kind        ports.NotificationKind
	Payload     map[string]any
}

// Outbox is a ports.Notifier that records every notification.
type Outbox struct {
	mu   sync.Mutex
	sent []Notification
}

// NewOutbox returns an empty Outbox.
func NewOutbox() *Outbox { return &Outbox{} }

func (o *Outbox) Notify(_ context.Context, recipientID int64, kind ports.NotificationKind, payload map[string]any) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, Notification{RecipientID: recipientID, Kind: kind, Payload: payload})
	return nil
}

// Sent returns the notifications of kind delivered to recipientID.
func (o *Outbox) Sent(recipientID int64, kind ports.NotificationKind) []Notification {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []Notification
	for _, n := range o.sent {
		if n.RecipientID == recipientID && n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}
