package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"vendmatic-rest-api/internal/model"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

// MySQLVendingRepository implements VendingRepository using MySQL.
type MySQLVendingRepository struct {
	db *sql.DB
}

// NewMySQLVendingRepository creates a new MySQL vending repository.
// dsn format: "user:password@tcp(host:port)/dbname?parseTime=true"
func NewMySQLVendingRepository(dsn string) (*MySQLVendingRepository, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	if err := createMySQLTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[MySQLVendingRepository] Initialized")
	return &MySQLVendingRepository{db: db}, nil
}

func createMySQLTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS slots (
			id VARCHAR(36) PRIMARY KEY,
			capacity INT NOT NULL,
			current_item_count INT NOT NULL DEFAULT 0,
			created_at DATETIME(6) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS items (
			id VARCHAR(36) PRIMARY KEY,
			slot_id VARCHAR(36) NOT NULL,
			name VARCHAR(255) NOT NULL,
			price INT NOT NULL,
			created_at DATETIME(6) NOT NULL,
			updated_at DATETIME(6) NOT NULL,
			INDEX idx_items_slot (slot_id, created_at)
		)`,
		`CREATE TABLE IF NOT EXISTS purchases (
			id VARCHAR(36) PRIMARY KEY,
			slot_id VARCHAR(36) NOT NULL,
			item_id VARCHAR(36) NOT NULL,
			item_name VARCHAR(255) NOT NULL,
			price INT NOT NULL,
			cash_inserted INT NOT NULL,
			change_returned INT NOT NULL,
			created_at DATETIME(6) NOT NULL,
			INDEX idx_purchases_created (created_at)
		)`,
	}
	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// CreateSlot inserts a new empty slot.
func (r *MySQLVendingRepository) CreateSlot(ctx context.Context, slot *model.Slot) error {
	query := `INSERT INTO slots (id, capacity, current_item_count, created_at) VALUES (?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, slot.ID, slot.Capacity, slot.CurrentItemCount, slot.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert slot: %w", err)
	}
	return nil
}

// GetSlot retrieves a slot by id.
func (r *MySQLVendingRepository) GetSlot(ctx context.Context, id string) (*model.Slot, error) {
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
func (r *MySQLVendingRepository) ListSlots(ctx context.Context) ([]model.Slot, error) {
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
func (r *MySQLVendingRepository) DeleteSlot(ctx context.Context, id string) error {
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
func (r *MySQLVendingRepository) NextItem(ctx context.Context, slotID string) (*model.Item, error) {
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
func (r *MySQLVendingRepository) StockItems(ctx context.Context, slotID string, items []model.Item, newCount int) error {
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
		if _, err := stmt.ExecContext(ctx, item.ID, slotID, item.Name, item.Price, now, now); err != nil {
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
func (r *MySQLVendingRepository) UpdateItemPrices(ctx context.Context, slotID string, price int) error {
	query := `UPDATE items SET price = ?, updated_at = ? WHERE slot_id = ?`
	if _, err := r.db.ExecContext(ctx, query, price, time.Now().UTC(), slotID); err != nil {
		return fmt.Errorf("failed to update item prices: %w", err)
	}
	return nil
}

// CommitPurchase removes the dispensed item, writes the new count and logs
// the purchase in one transaction.
func (r *MySQLVendingRepository) CommitPurchase(ctx context.Context, p model.Purchase, newCount int) error {
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
func (r *MySQLVendingRepository) RecentPurchases(ctx context.Context, limit int) ([]model.Purchase, error) {
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
func (r *MySQLVendingRepository) DeletePurchasesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM purchases WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete purchases: %w", err)
	}
	return result.RowsAffected()
}

// Stats returns statistics about the vending database.
func (r *MySQLVendingRepository) Stats(ctx context.Context) (map[string]interface{}, error) {
	stats := map[string]interface{}{"backend": "mysql"}

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
func (r *MySQLVendingRepository) Close() error {
	return r.db.Close()
}
