package repositories

import (
	"context"

	"freightdesk/internal/models"

	"github.com/google/uuid"
)

type ChargeRepository interface {
	Insert(ctx context.Context, item *models.ChargeLineItem) error
	ListActiveByHouse(ctx context.Context, houseID uuid.UUID) ([]*models.ChargeLineItem, error)
	SoftDeleteActiveByHouses(ctx context.Context, houseIDs []uuid.UUID) (int64, error)
}

type chargeRepo struct {
	db DBTX
}

func NewChargeRepo(db DBTX) ChargeRepository {
	return &chargeRepo{db: db}
}

func (r *chargeRepo) Insert(ctx context.Context, c *models.ChargeLineItem) error {
	query := `
		INSERT INTO house_charges (id, house_id, charge_code, description, currency, prepaid_amount, collect_amount, deleted, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, false, NOW())
	`
	_, err := r.db.Exec(ctx, query, c.ID, c.HouseID, c.ChargeCode, c.Description, c.Currency, c.PrepaidAmount, c.CollectAmount)
	return err
}

func (r *chargeRepo) ListActiveByHouse(ctx context.Context, houseID uuid.UUID) ([]*models.ChargeLineItem, error) {
	query := `
		SELECT id, house_id, charge_code, description, currency, prepaid_amount, collect_amount, deleted, created_at
		FROM house_charges
		WHERE house_id = $1 AND deleted = false
		ORDER BY created_at, charge_code
	`
	rows, err := r.db.Query(ctx, query, houseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.ChargeLineItem
	for rows.Next() {
		c := &models.ChargeLineItem{}
		if err := rows.Scan(&c.ID, &c.HouseID, &c.ChargeCode, &c.Description, &c.Currency, &c.PrepaidAmount, &c.CollectAmount, &c.Deleted, &c.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func (r *chargeRepo) SoftDeleteActiveByHouses(ctx context.Context, houseIDs []uuid.UUID) (int64, error) {
	query := `
		UPDATE house_charges
		SET deleted = true
		WHERE house_id = ANY($1) AND deleted = false
	`
	return execAffected(ctx, r.db, query, houseIDs)
}
