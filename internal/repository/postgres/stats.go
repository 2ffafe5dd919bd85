package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/nkiryanov/crownplay/internal/models"
)

type StatsRepo struct {
	DB DBTX
}

const dashboardKPIs = `-- name: DashboardKPIs
SELECT
	(SELECT count(*) FROM users),
	(SELECT count(DISTINCT user_id) FROM transactions WHERE created_at >= $1),
	(SELECT coalesce(sum(gold_coins), 0) FROM wallets),
	(SELECT coalesce(sum(sweep_coins), 0) FROM wallets),
	(SELECT count(*) FROM redemption_requests WHERE status = 'PENDING')
`

func (r *StatsRepo) KPIs(ctx context.Context, activeSince time.Time) (models.KPIs, error) {
	var k models.KPIs

	err := r.DB.QueryRow(ctx, dashboardKPIs, activeSince).Scan(
		&k.TotalUsers, &k.ActiveUsers, &k.TotalGoldCoins, &k.TotalSweepCoins, &k.PendingRedemptions,
	)
	if err != nil {
		return k, fmt.Errorf("db error: %w", err)
	}

	return k, nil
}
