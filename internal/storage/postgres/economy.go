package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/petengine/internal/game/ports"
)

// InventoryRepository implements ports.Inventory on user_items.
type InventoryRepository struct {
	db *pgxpool.Pool
}

// NewInventoryRepository creates an InventoryRepository backed by the given pool.
func NewInventoryRepository(db *pgxpool.Pool) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// AddItem upserts the holding.
//
// Precondition: qty > 0.
func (r *InventoryRepository) AddItem(ctx context.Context, userID int64, itemID string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("adding %q: quantity must be positive, got %d", itemID, qty)
	}
	_, err := conn(ctx, r.db).Exec(ctx,
		`INSERT INTO user_items (user_id, item_id, quantity) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, item_id) DO UPDATE SET quantity = user_items.quantity + EXCLUDED.quantity`,
		userID, itemID, qty,
	)
	if err != nil {
		return fmt.Errorf("adding %q for user %d: %w", itemID, userID, err)
	}
	return nil
}

func (r *InventoryRepository) Quantity(ctx context.Context, userID int64, itemID string) (int, error) {
	var qty int
	err := conn(ctx, r.db).QueryRow(ctx,
		`SELECT quantity FROM user_items WHERE user_id = $1 AND item_id = $2`, userID, itemID,
	).Scan(&qty)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("querying %q for user %d: %w", itemID, userID, err)
	}
	return qty, nil
}

// Consume decrements the holding only when it covers qty; an emptied holding is deleted.
func (r *InventoryRepository) Consume(ctx context.Context, userID int64, itemID string, qty int) (bool, error) {
	q := conn(ctx, r.db)
	var left int
	err := q.QueryRow(ctx,
		`UPDATE user_items SET quantity = quantity - $3
		 WHERE user_id = $1 AND item_id = $2 AND quantity >= $3
		 RETURNING quantity`,
		userID, itemID, qty,
	).Scan(&left)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("consuming %q for user %d: %w", itemID, userID, err)
	}
	if left == 0 {
		if _, err := q.Exec(ctx,
			`DELETE FROM user_items WHERE user_id = $1 AND item_id = $2 AND quantity = 0`,
			userID, itemID); err != nil {
			return false, fmt.Errorf("clearing %q for user %d: %w", itemID, userID, err)
		}
	}
	return true, nil
}

// LedgerRepository implements ports.Ledger on user_balances.
type LedgerRepository struct {
	db *pgxpool.Pool
}

// NewLedgerRepository creates a LedgerRepository backed by the given pool.
func NewLedgerRepository(db *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Debit subtracts amount when the balance covers it.
func (r *LedgerRepository) Debit(ctx context.Context, userID, amount int64) (bool, error) {
	tag, err := conn(ctx, r.db).Exec(ctx,
		`UPDATE user_balances SET balance = balance - $2 WHERE user_id = $1 AND balance >= $2`,
		userID, amount,
	)
	if err != nil {
		return false, fmt.Errorf("debiting user %d: %w", userID, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *LedgerRepository) Credit(ctx context.Context, userID, amount int64) error {
	_, err := conn(ctx, r.db).Exec(ctx,
		`INSERT INTO user_balances (user_id, balance) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET balance = user_balances.balance + EXCLUDED.balance`,
		userID, amount,
	)
	if err != nil {
		return fmt.Errorf("crediting user %d: %w", userID, err)
	}
	return nil
}

// Balance returns the user's balance; a user without a row has zero.
func (r *LedgerRepository) Balance(ctx context.Context, userID int64) (int64, error) {
	var balance int64
	err := conn(ctx, r.db).QueryRow(ctx,
		`SELECT balance FROM user_balances WHERE user_id = $1`, userID,
	).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("querying balance for user %d: %w", userID, err)
	}
	return balance, nil
}

// NotificationStore is a ports.Notifier that appends to the notifications table.
type NotificationStore struct {
	db *pgxpool.Pool
}

// NewNotificationStore creates a NotificationStore backed by the given pool.
func NewNotificationStore(db *pgxpool.Pool) *NotificationStore {
	return &NotificationStore{db: db}
}

// Notify stores the notification. It always uses the pool so a notification
// outlives the transaction that triggered it.
func (n *NotificationStore) Notify(ctx context.Context, recipientID int64, kind ports.NotificationKind, payload map[string]any) error {
	if payload == nil {
		payload = map[string]any{}
	}
	_, err := n.db.Exec(ctx,
		`INSERT INTO notifications (recipient_id, kind, payload) VALUES ($1, $2, $3)`,
		recipientID, string(kind), payload,
	)
	if err != nil {
		return fmt.Errorf("storing %s notification for user %d: %w", kind, recipientID, err)
	}
	return nil
}

// Count returns the number of notifications of kind stored for recipientID.
func (n *NotificationStore) Count(ctx context.Context, recipientID int64, kind ports.NotificationKind) (int, error) {
	var count int
	err := n.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND kind = $2`,
		recipientID, string(kind),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting notifications: %w", err)
	}
	return count, nil
}
