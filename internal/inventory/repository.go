package inventory

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListExpiryTracked returns registered pharmaceutical items that have both an
// expiry date and a reminder period set.
func (r *Repository) ListExpiryTracked(ctx context.Context) ([]Item, error) {
	rows, err := r.pool.Query(ctx, `SELECT code, item_name, pharmaceutical_item, registered, expiry_date, reminder
FROM items
WHERE pharmaceutical_item AND registered AND expiry_date IS NOT NULL AND COALESCE(reminder, '') <> ''
ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Item
	for rows.Next() {
		var item Item
		var reminder string
		if err := rows.Scan(&item.Code, &item.ItemName, &item.Pharmaceutical, &item.Registered, &item.ExpiryDate, &reminder); err != nil {
			return nil, err
		}
		item.Reminder = ReminderPeriod(reminder)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
