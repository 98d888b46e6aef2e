package repositories

import (
	"context"

	"freightdesk/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type MasterRepository interface {
	GetActiveByNumber(ctx context.Context, masterNumber string) (*models.MasterDocument, error)
	GetActiveByID(ctx context.Context, id uuid.UUID) (*models.MasterDocument, error)
	Create(ctx context.Context, master *models.MasterDocument) error
	UpdateSchedule(ctx context.Context, id uuid.UUID, schedule models.MasterSchedule) error
}

type masterRepo struct {
	db DBTX
}

func NewMasterRepo(db DBTX) MasterRepository {
	return &masterRepo{db: db}
}

const masterColumns = `id, master_number, carrier_id, vessel_name, voyage_number, place_of_receipt, port_of_loading, port_of_discharge, place_of_delivery, final_destination, etd, eta, on_board_date, shipper_name, consignee_name, notify_party_name, total_packages, total_gross_weight, total_measurement, status, deleted, created_by, created_at, updated_at`

func scanMaster(row pgx.Row) (*models.MasterDocument, error) {
	m := &models.MasterDocument{}
	err := row.Scan(&m.ID, &m.MasterNumber, &m.CarrierID, &m.VesselName, &m.VoyageNumber, &m.PlaceOfReceipt, &m.PortOfLoading, &m.PortOfDischarge, &m.PlaceOfDelivery, &m.FinalDestination, &m.ETD, &m.ETA, &m.OnBoardDate, &m.ShipperName, &m.ConsigneeName, &m.NotifyPartyName, &m.TotalPackages, &m.TotalGrossWeight, &m.TotalMeasurement, &m.Status, &m.Deleted, &m.CreatedBy, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return m, nil
}

func (r *masterRepo) GetActiveByNumber(ctx context.Context, masterNumber string) (*models.MasterDocument, error) {
	query := `
		SELECT ` + masterColumns + `
		FROM master_documents
		WHERE master_number = $1 AND deleted = false
	`
	return scanMaster(r.db.QueryRow(ctx, query, masterNumber))
}

func (r *masterRepo) GetActiveByID(ctx context.Context, id uuid.UUID) (*models.MasterDocument, error) {
	query := `
		SELECT ` + masterColumns + `
		FROM master_documents
		WHERE id = $1 AND deleted = false
	`
	return scanMaster(r.db.QueryRow(ctx, query, id))
}

func (r *masterRepo) Create(ctx context.Context, m *models.MasterDocument) error {
	query := `
		INSERT INTO master_documents (id, master_number, carrier_id, vessel_name, voyage_number, place_of_receipt, port_of_loading, port_of_discharge, place_of_delivery, final_destination, etd, eta, on_board_date, shipper_name, consignee_name, notify_party_name, total_packages, total_gross_weight, total_measurement, status, deleted, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, false, $21, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	return r.db.QueryRow(ctx, query, m.ID, m.MasterNumber, m.CarrierID, m.VesselName, m.VoyageNumber, m.PlaceOfReceipt, m.PortOfLoading, m.PortOfDischarge, m.PlaceOfDelivery, m.FinalDestination, m.ETD, m.ETA, m.OnBoardDate, m.ShipperName, m.ConsigneeName, m.NotifyPartyName, m.TotalPackages, m.TotalGrossWeight, m.TotalMeasurement, m.Status, m.CreatedBy).
		Scan(&m.CreatedAt, &m.UpdatedAt)
}

// UpdateSchedule overwrites the route, schedule, party and cargo fields that
// were supplied; nil fields keep their stored value.
func (r *masterRepo) UpdateSchedule(ctx context.Context, id uuid.UUID, s models.MasterSchedule) error {
	query := `
		UPDATE master_documents
		SET vessel_name = COALESCE($1, vessel_name),
			voyage_number = COALESCE($2, voyage_number),
			place_of_receipt = COALESCE($3, place_of_receipt),
			port_of_loading = $4,
			port_of_discharge = $5,
			place_of_delivery = COALESCE($6, place_of_delivery),
			final_destination = COALESCE($7, final_destination),
			etd = COALESCE($8, etd),
			eta = COALESCE($9, eta),
			on_board_date = COALESCE($10, on_board_date),
			shipper_name = COALESCE($11, shipper_name),
			consignee_name = COALESCE($12, consignee_name),
			notify_party_name = COALESCE($13, notify_party_name),
			total_packages = COALESCE($14, total_packages),
			total_gross_weight = COALESCE($15, total_gross_weight),
			total_measurement = COALESCE($16, total_measurement),
			updated_at = NOW()
		WHERE id = $17 AND deleted = false
	`
	affected, err := execAffected(ctx, r.db, query, s.VesselName, s.VoyageNumber, s.PlaceOfReceipt, s.PortOfLoading, s.PortOfDischarge, s.PlaceOfDelivery, s.FinalDestination, s.ETD, s.ETA, s.OnBoardDate, s.ShipperName, s.ConsigneeName, s.NotifyPartyName, s.TotalPackages, s.TotalGrossWeight, s.TotalMeasurement, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
