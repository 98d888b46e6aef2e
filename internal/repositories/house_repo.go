package repositories

import (
	"context"
	"fmt"
	"strings"

	"freightdesk/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type HouseRepository interface {
	ExistsActiveByNumber(ctx context.Context, houseNumber string, excludeID *uuid.UUID) (bool, error)
	Create(ctx context.Context, house *models.HouseDocument) error
	GetActiveByID(ctx context.Context, id uuid.UUID) (*models.HouseDocument, error)
	LockActiveByID(ctx context.Context, id uuid.UUID) (*models.HouseDocument, error)
	Update(ctx context.Context, house *models.HouseDocument) error
	SoftDelete(ctx context.Context, ids []uuid.UUID, deletedBy *uuid.UUID) ([]models.DeletedHouse, error)
	List(ctx context.Context, filter *models.HouseListFilter) ([]*models.HouseListRow, error)
}

type houseRepo struct {
	db DBTX
}

func NewHouseRepo(db DBTX) HouseRepository {
	return &houseRepo{db: db}
}

const houseColumns = `id, house_number, master_id, shipment_reference, customer_id, carrier_id, vessel_name, voyage_number, place_of_receipt, port_of_loading, port_of_discharge, place_of_delivery, final_destination, etd, eta, on_board_date, shipper_name, consignee_name, notify_party_name, packages, package_unit, gross_weight, measurement, commodity_description, status, deleted, created_by, updated_by, created_at, updated_at`

func scanHouse(row pgx.Row) (*models.HouseDocument, error) {
	h := &models.HouseDocument{}
	err := row.Scan(&h.ID, &h.HouseNumber, &h.MasterID, &h.ShipmentReference, &h.CustomerID, &h.CarrierID, &h.VesselName, &h.VoyageNumber, &h.PlaceOfReceipt, &h.PortOfLoading, &h.PortOfDischarge, &h.PlaceOfDelivery, &h.FinalDestination, &h.ETD, &h.ETA, &h.OnBoardDate, &h.ShipperName, &h.ConsigneeName, &h.NotifyPartyName, &h.Packages, &h.PackageUnit, &h.GrossWeight, &h.Measurement, &h.CommodityDescription, &h.Status, &h.Deleted, &h.CreatedBy, &h.UpdatedBy, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return h, nil
}

// ExistsActiveByNumber checks business-number uniqueness among non-deleted
// houses, ignoring excludeID when set.
func (r *houseRepo) ExistsActiveByNumber(ctx context.Context, houseNumber string, excludeID *uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM house_documents
			WHERE house_number = $1 AND deleted = false AND ($2::uuid IS NULL OR id <> $2)
		)
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, houseNumber, excludeID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *houseRepo) Create(ctx context.Context, h *models.HouseDocument) error {
	query := `
		INSERT INTO house_documents (id, house_number, master_id, shipment_reference, customer_id, carrier_id, vessel_name, voyage_number, place_of_receipt, port_of_loading, port_of_discharge, place_of_delivery, final_destination, etd, eta, on_board_date, shipper_name, consignee_name, notify_party_name, packages, package_unit, gross_weight, measurement, commodity_description, status, deleted, created_by, updated_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, false, $26, $26, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	return r.db.QueryRow(ctx, query, h.ID, h.HouseNumber, h.MasterID, h.ShipmentReference, h.CustomerID, h.CarrierID, h.VesselName, h.VoyageNumber, h.PlaceOfReceipt, h.PortOfLoading, h.PortOfDischarge, h.PlaceOfDelivery, h.FinalDestination, h.ETD, h.ETA, h.OnBoardDate, h.ShipperName, h.ConsigneeName, h.NotifyPartyName, h.Packages, h.PackageUnit, h.GrossWeight, h.Measurement, h.CommodityDescription, h.Status, h.CreatedBy).
		Scan(&h.CreatedAt, &h.UpdatedAt)
}

func (r *houseRepo) GetActiveByID(ctx context.Context, id uuid.UUID) (*models.HouseDocument, error) {
	query := `
		SELECT ` + houseColumns + `
		FROM house_documents
		WHERE id = $1 AND deleted = false
	`
	return scanHouse(r.db.QueryRow(ctx, query, id))
}

// LockActiveByID reads an active house and holds a row lock on it until the
// enclosing transaction ends.
func (r *houseRepo) LockActiveByID(ctx context.Context, id uuid.UUID) (*models.HouseDocument, error) {
	query := `
		SELECT ` + houseColumns + `
		FROM house_documents
		WHERE id = $1 AND deleted = false
		FOR UPDATE
	`
	return scanHouse(r.db.QueryRow(ctx, query, id))
}

// Update writes the full (already merged) house row.
func (r *houseRepo) Update(ctx context.Context, h *models.HouseDocument) error {
	query := `
		UPDATE house_documents
		SET house_number = $1, master_id = $2, shipment_reference = $3, customer_id = $4, carrier_id = $5, vessel_name = $6, voyage_number = $7, place_of_receipt = $8, port_of_loading = $9, port_of_discharge = $10, place_of_delivery = $11, final_destination = $12, etd = $13, eta = $14, on_board_date = $15, shipper_name = $16, consignee_name = $17, notify_party_name = $18, packages = $19, package_unit = $20, gross_weight = $21, measurement = $22, commodity_description = $23, updated_by = $24, updated_at = NOW()
		WHERE id = $25 AND deleted = false
	`
	affected, err := execAffected(ctx, r.db, query, h.HouseNumber, h.MasterID, h.ShipmentReference, h.CustomerID, h.CarrierID, h.VesselName, h.VoyageNumber, h.PlaceOfReceipt, h.PortOfLoading, h.PortOfDischarge, h.PlaceOfDelivery, h.FinalDestination, h.ETD, h.ETA, h.OnBoardDate, h.ShipperName, h.ConsigneeName, h.NotifyPartyName, h.Packages, h.PackageUnit, h.GrossWeight, h.Measurement, h.CommodityDescription, h.UpdatedBy, h.ID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDelete flags the active houses among ids and returns exactly those it
// flagged. Unknown or already deleted ids are skipped.
func (r *houseRepo) SoftDelete(ctx context.Context, ids []uuid.UUID, deletedBy *uuid.UUID) ([]models.DeletedHouse, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		UPDATE house_documents
		SET deleted = true, updated_by = $2, updated_at = NOW()
		WHERE id = ANY($1) AND deleted = false
		RETURNING id, house_number
	`
	rows, err := r.db.Query(ctx, query, ids, deletedBy)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deleted []models.DeletedHouse
	for rows.Next() {
		var d models.DeletedHouse
		if err := rows.Scan(&d.ID, &d.HouseNumber); err != nil {
			return nil, err
		}
		deleted = append(deleted, d)
	}
	return deleted, rows.Err()
}

// List returns active houses matching every supplied filter, newest first,
// enriched with directory display names.
func (r *houseRepo) List(ctx context.Context, filter *models.HouseListFilter) ([]*models.HouseListRow, error) {
	if filter == nil {
		filter = &models.HouseListFilter{}
	}

	query := `
		SELECT h.id, h.house_number, h.master_id, m.master_number, h.status,
			c.name, cu.name, h.port_of_loading, pl.name, h.port_of_discharge, pd.name,
			h.etd, h.eta, h.created_at
		FROM house_documents h
		JOIN master_documents m ON m.id = h.master_id
		LEFT JOIN carriers c ON c.id = h.carrier_id
		LEFT JOIN customers cu ON cu.id = h.customer_id
		LEFT JOIN ports pl ON pl.code = h.port_of_loading
		LEFT JOIN ports pd ON pd.code = h.port_of_discharge
		WHERE h.deleted = false
	`
	args := []interface{}{}
	argIdx := 0

	if filter.HouseID != nil {
		argIdx++
		query += fmt.Sprintf(" AND h.id = $%d", argIdx)
		args = append(args, *filter.HouseID)
	}
	if filter.Status != nil {
		argIdx++
		query += fmt.Sprintf(" AND h.status = $%d", argIdx)
		args = append(args, *filter.Status)
	}
	if filter.MasterNumber != "" {
		argIdx++
		query += fmt.Sprintf(" AND m.master_number ILIKE $%d", argIdx)
		args = append(args, containsPattern(filter.MasterNumber))
	}
	if filter.HouseNumber != "" {
		argIdx++
		query += fmt.Sprintf(" AND h.house_number ILIKE $%d", argIdx)
		args = append(args, containsPattern(filter.HouseNumber))
	}

	query += " ORDER BY h.created_at DESC"

	if filter.Limit > 0 {
		argIdx++
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		argIdx++
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*models.HouseListRow
	for rows.Next() {
		row := &models.HouseListRow{}
		if err := rows.Scan(&row.ID, &row.HouseNumber, &row.MasterID, &row.MasterNumber, &row.Status,
			&row.CarrierName, &row.CustomerName, &row.PortOfLoading, &row.PortOfLoadingName, &row.PortOfDischarge, &row.PortOfDischargeName,
			&row.ETD, &row.ETA, &row.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE substring pattern with wildcards in the
// input matched literally.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
