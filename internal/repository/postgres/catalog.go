package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/crownplay/internal/apperrors"
	"github.com/nkiryanov/crownplay/internal/models"
)

type CatalogRepo struct {
	DB DBTX
}

const packageColumns = `id, created_at, name, description, price_cents, gold_amount, sweep_amount, bonus_percentage, is_active`

const getPackage = `-- name: GetPackage
SELECT ` + packageColumns + ` FROM packages
WHERE id = $1
`

func (r *CatalogRepo) GetPackage(ctx context.Context, id uuid.UUID) (models.Package, error) {
	rows, _ := r.DB.Query(ctx, getPackage, id)
	pkg, err := pgx.CollectOneRow(rows, rowToPackage)

	switch {
	case err == nil:
		return pkg, nil
	case errors.Is(err, pgx.ErrNoRows):
		return pkg, apperrors.ErrPackageNotFound
	default:
		return pkg, fmt.Errorf("db error: %w", err)
	}
}

const listActivePackages = `-- name: ListActivePackages
SELECT ` + packageColumns + ` FROM packages
WHERE is_active
ORDER BY price_cents, name
`

func (r *CatalogRepo) ListActivePackages(ctx context.Context) ([]models.Package, error) {
	rows, _ := r.DB.Query(ctx, listActivePackages)
	packages, err := pgx.CollectRows(rows, rowToPackage)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return packages, nil
}

const listActiveGames = `-- name: ListActiveGames
SELECT id, name, description, thumbnail, min_wager, max_wager, rtp, is_active FROM games
WHERE is_active
ORDER BY name
`

func (r *CatalogRepo) ListActiveGames(ctx context.Context) ([]models.Game, error) {
	rows, _ := r.DB.Query(ctx, listActiveGames)
	games, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Game, error) {
		var g models.Game
		err := row.Scan(&g.ID, &g.Name, &g.Description, &g.Thumbnail, &g.MinWager, &g.MaxWager, &g.RTP, &g.IsActive)
		return g, err
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return games, nil
}

const listActivePromotions = `-- name: ListActivePromotions
SELECT id, created_at, name, code, description, bonus_type, bonus_value, start_at, end_at, max_uses, is_active
FROM promotions
WHERE is_active AND start_at <= $1 AND end_at >= $1
ORDER BY created_at DESC, id DESC
`

func (r *CatalogRepo) ListActivePromotions(ctx context.Context, at time.Time) ([]models.Promotion, error) {
	rows, _ := r.DB.Query(ctx, listActivePromotions, at)
	promotions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Promotion, error) {
		var p models.Promotion
		err := row.Scan(&p.ID, &p.CreatedAt, &p.Name, &p.Code, &p.Description, &p.BonusType, &p.BonusValue, &p.StartAt, &p.EndAt, &p.MaxUses, &p.IsActive)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return promotions, nil
}

func rowToPackage(row pgx.CollectableRow) (models.Package, error) {
	var p models.Package
	err := row.Scan(&p.ID, &p.CreatedAt, &p.Name, &p.Description, &p.PriceCents, &p.GoldAmount, &p.SweepAmount, &p.BonusPercentage, &p.IsActive)
	return p, err
}
