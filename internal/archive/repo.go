// Package archive keeps a reporting record of finished orders. The commerce
// backend stays the source of truth for carts and payments; this table only
// answers "what was sold, where to, and how far".
package archive

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pizzadrive/orderbot/internal/flow"
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Record(ctx context.Context, rec flow.OrderRecord) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO finished_orders(id, session_id, total_minor, tier, distance_km, courier)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.NewString(), rec.SessionID, rec.TotalMinor, rec.Tier, rec.DistanceKm, rec.Courier)
	if err != nil {
		return fmt.Errorf("record order: %w", err)
	}
	return nil
}

// RecentTotals sums finished-order totals per tier over the last n orders,
// for the ops endpoint and ad-hoc reporting.
func (r *Repo) RecentTotals(ctx context.Context, n int) (map[string]int, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT tier, total_minor FROM finished_orders
		ORDER BY created_at DESC LIMIT $1
	`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var tier string
		var total int
		if err := rows.Scan(&tier, &total); err != nil {
			return nil, err
		}
		out[tier] += total
	}
	return out, rows.Err()
}
