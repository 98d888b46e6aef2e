package repositories

import (
	"context"

	"freightdesk/internal/models"

	"github.com/google/uuid"
)

type ContainerRepository interface {
	Insert(ctx context.Context, item *models.ContainerLineItem) error
	ListActiveByHouse(ctx context.Context, houseID uuid.UUID) ([]*models.ContainerLineItem, error)
	SoftDeleteActiveByHouses(ctx context.Context, houseIDs []uuid.UUID) (int64, error)
	RestampMaster(ctx context.Context, houseID, masterID uuid.UUID) (int64, error)
}

type containerRepo struct {
	db DBTX
}

func NewContainerRepo(db DBTX) ContainerRepository {
	return &containerRepo{db: db}
}

func (r *containerRepo) Insert(ctx context.Context, c *models.ContainerLineItem) error {
	query := `
		INSERT INTO house_containers (id, house_id, master_id, container_number, seal_number, type_size, packages, gross_weight, measurement, deleted, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, false, NOW())
	`
	_, err := r.db.Exec(ctx, query, c.ID, c.HouseID, c.MasterID, c.ContainerNumber, c.SealNumber, c.TypeSize, c.Packages, c.GrossWeight, c.Measurement)
	return err
}

func (r *containerRepo) ListActiveByHouse(ctx context.Context, houseID uuid.UUID) ([]*models.ContainerLineItem, error) {
	query := `
		SELECT id, house_id, master_id, container_number, seal_number, type_size, packages, gross_weight, measurement, deleted, created_at
		FROM house_containers
		WHERE house_id = $1 AND deleted = false
		ORDER BY created_at, container_number
	`
	rows, err := r.db.Query(ctx, query, houseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.ContainerLineItem
	for rows.Next() {
		c := &models.ContainerLineItem{}
		if err := rows.Scan(&c.ID, &c.HouseID, &c.MasterID, &c.ContainerNumber, &c.SealNumber, &c.TypeSize, &c.Packages, &c.GrossWeight, &c.Measurement, &c.Deleted, &c.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func (r *containerRepo) SoftDeleteActiveByHouses(ctx context.Context, houseIDs []uuid.UUID) (int64, error) {
	query := `
		UPDATE house_containers
		SET deleted = true
		WHERE house_id = ANY($1) AND deleted = false
	`
	return execAffected(ctx, r.db, query, houseIDs)
}

// RestampMaster keeps the denormalized master reference of a house's active
// containers in line with the house after it moved to another master.
func (r *containerRepo) RestampMaster(ctx context.Context, houseID, masterID uuid.UUID) (int64, error) {
	query := `
		UPDATE house_containers
		SET master_id = $2
		WHERE house_id = $1 AND deleted = false AND master_id <> $2
	`
	return execAffected(ctx, r.db, query, houseID, masterID)
}
