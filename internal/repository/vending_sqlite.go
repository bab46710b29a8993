package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"vendmatic-rest-api/internal/model"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// SQLiteVendingRepository implements VendingRepository using SQLite.
// Thread-safe with WAL mode for high-concurrency reads.
type SQLiteVendingRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteVendingRepository creates a new SQLite vending repository.
// dbPath is the path to the SQLite database file (e.g., "./data/vending.db")
func NewSQLiteVendingRepository(dbPath string) (*SQLiteVendingRepository, error) {
	// Open with WAL mode and other optimizations
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite connection pool settings
	db.SetMaxOpenConns(1) // SQLite only supports 1 writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0) // Keep connection alive

	if err := createSQLiteTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[SQLiteVendingRepository] Initialized with database: %s", dbPath)
	return &SQLiteVendingRepository{db: db}, nil
}

// createSQLiteTables creates the vending tables.
func createSQLiteTables(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS slots (
		id TEXT PRIMARY KEY,
		capacity INTEGER NOT NULL CHECK(capacity > 0),
		current_item_count INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS items (
		id TEXT PRIMARY KEY,
		slot_id TEXT NOT NULL REFERENCES slots(id),
		name TEXT NOT NULL,
		price INTEGER NOT NULL CHECK(price > 0),
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_items_slot ON items(slot_id, created_at);
	CREATE TABLE IF NOT EXISTS purchases (
		id TEXT PRIMARY KEY,
		slot_id TEXT NOT NULL,
		item_id TEXT NOT NULL,
		item_name TEXT NOT NULL,
		price INTEGER NOT NULL,
		cash_inserted INTEGER NOT NULL,
		change_returned INTEGER NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_purchases_created ON purchases(created_at);
	`
	_, err := db.Exec(query)
	return err
}

// CreateSlot inserts a new empty slot.
func (r *SQLiteVendingRepository) CreateSlot(ctx context.Context, slot *model.Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `INSERT INTO slots (id, capacity, current_item_count, created_at) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, slot.ID, slot.Capacity, slot.CurrentItemCount, slot.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert slot: %w", err)
	}
	return nil
}

// GetSlot retrieves a slot by id.
func (r *SQLiteVendingRepository) GetSlot(ctx context.Context, id string) (*model.Slot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `SELECT id, capacity, current_item_count, created_at FROM slots WHERE id = ?`

	var slot model.Slot
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&slot.ID, &slot.Capacity, &slot.CurrentItemCount, &slot.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get slot: %w", err)
	}
	return &slot, nil
}

// ListSlots returns all slots ordered by creation time.
func (r *SQLiteVendingRepository) ListSlots(ctx context.Context) ([]model.Slot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `SELECT id, capacity, current_item_count, created_at FROM slots ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	defer rows.Close()

	var slots []model.Slot
	for rows.Next() {
		var slot model.Slot
		if err := rows.Scan(&slot.ID, &slot.Capacity, &slot.CurrentItemCount, &slot.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

// DeleteSlot removes a slot by id.
func (r *SQLiteVendingRepository) DeleteSlot(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	result, err := r.db.ExecContext(ctx, `DELETE FROM slots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete slot: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return model.ErrSlotNotFound
	}
	return nil
}

// NextItem returns the oldest item stocked in the slot.
func (r *SQLiteVendingRepository) NextItem(ctx context.Context, slotID string) (*model.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `
		SELECT id, slot_id, name, price, created_at, updated_at
		FROM items WHERE slot_id = ?
		ORDER BY created_at, id LIMIT 1`

	var item model.Item
	err := r.db.QueryRowContext(ctx, query, slotID).Scan(
		&item.ID, &item.SlotID, &item.Name, &item.Price, &item.CreatedAt, &item.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get next item: %w", err)
	}
	return &item, nil
}

// StockItems inserts items and updates the slot count in one transaction.
func (r *SQLiteVendingRepository) StockItems(ctx context.Context, slotID string, items []model.Item, newCount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO items (id, slot_id, name, price, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, item := range items {
		_, err := stmt.ExecContext(ctx, item.ID, slotID, item.Name, item.Price, now, now)
		if err != nil {
			return fmt.Errorf("failed to insert item %s: %w", item.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE slots SET current_item_count = ? WHERE id = ?`, newCount, slotID); err != nil {
		return fmt.Errorf("failed to update slot count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpdateItemPrices sets the price of every item in the slot.
func (r *SQLiteVendingRepository) UpdateItemPrices(ctx context.Context, slotID string, price int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `UPDATE items SET price = ?, updated_at = ? WHERE slot_id = ?`
	_, err := r.db.ExecContext(ctx, query, price, time.Now().UTC(), slotID)
	if err != nil {
		return fmt.Errorf("failed to update item prices: %w", err)
	}
	return nil
}

// CommitPurchase removes the dispensed item, writes the new count and logs
// the purchase in one transaction.
func (r *SQLiteVendingRepository) CommitPurchase(ctx context.Context, p model.Purchase, newCount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, p.ItemID); err != nil {
		return fmt.Errorf("failed to remove dispensed item: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE slots SET current_item_count = ? WHERE id = ?`, newCount, p.SlotID); err != nil {
		return fmt.Errorf("failed to update slot count: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO purchases (id, slot_id, item_id, item_name, price, cash_inserted, change_returned, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.SlotID, p.ItemID, p.ItemName, p.Price, p.CashInserted, p.ChangeReturned, p.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert purchase record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// RecentPurchases returns the newest purchase records, newest first.
func (r *SQLiteVendingRepository) RecentPurchases(ctx context.Context, limit int) ([]model.Purchase, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `
		SELECT id, slot_id, item_id, item_name, price, cash_inserted, change_returned, created_at
		FROM purchases ORDER BY created_at DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	defer rows.Close()

	var purchases []model.Purchase
	for rows.Next() {
		var p model.Purchase
		if err := rows.Scan(&p.ID, &p.SlotID, &p.ItemID, &p.ItemName, &p.Price,
			&p.CashInserted, &p.ChangeReturned, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}

// DeletePurchasesBefore purges purchase records older than cutoff.
func (r *SQLiteVendingRepository) DeletePurchasesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result, err := r.db.ExecContext(ctx, `DELETE FROM purchases WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete purchases: %w", err)
	}
	return result.RowsAffected()
}

// Stats returns statistics about the vending database.
func (r *SQLiteVendingRepository) Stats(ctx context.Context) (map[string]interface{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := map[string]interface{}{"backend": "sqlite"}

	var slots, items, purchases int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM slots`).Scan(&slots); err != nil {
		return nil, fmt.Errorf("failed to count slots: %w", err)
	}
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&items); err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM purchases`).Scan(&purchases); err != nil {
		return nil, fmt.Errorf("failed to count purchases: %w", err)
	}

	stats["total_slots"] = slots
	stats["total_items"] = items
	stats["total_purchases"] = purchases
	return stats, nil
}

// Close closes the database connection.
func (r *SQLiteVendingRepository) Close() error {
	return r.db.Close()
}
