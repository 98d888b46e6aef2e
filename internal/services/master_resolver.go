package services

import (
	"context"
	"errors"
	"fmt"

	"freightdesk/internal/models"
	"freightdesk/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MasterResolver finds the active master for a number or creates it.
type MasterResolver struct {
	directory *DirectoryLookup
	logger    *zap.Logger
}

func NewMasterResolver(directory *DirectoryLookup, logger *zap.Logger) *MasterResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MasterResolver{directory: directory, logger: logger}
}

// ResolveOrCreate returns the active master numbered masterNumber. An existing
// master is returned untouched. Otherwise a draft master is inserted from the
// supplied schedule and created reports true.
//
// The insert runs in a savepoint: when a concurrent request commits the same
// number first, the unique violation is rolled back to the savepoint and the
// winner's row is returned instead.
func (r *MasterResolver) ResolveOrCreate(ctx context.Context, store *repositories.Store, in *models.HouseDocumentInput, actor *uuid.UUID) (master *models.MasterDocument, created bool, err error) {
	existing, err := store.Masters.GetActiveByNumber(ctx, in.MasterNumber)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, false, fmt.Errorf("look up master %s: %w", in.MasterNumber, err)
	}

	carrierID, err := r.directory.ResolveForCreate(ctx, store.Directory, models.DirectoryCarrier, FieldCarrierCode, in.CarrierCode)
	if err != nil {
		return nil, false, err
	}

	schedule := in.Schedule()
	master = &models.MasterDocument{
		ID:               uuid.New(),
		MasterNumber:     in.MasterNumber,
		CarrierID:        carrierID,
		VesselName:       schedule.VesselName,
		VoyageNumber:     schedule.VoyageNumber,
		PlaceOfReceipt:   schedule.PlaceOfReceipt,
		PortOfLoading:    schedule.PortOfLoading,
		PortOfDischarge:  schedule.PortOfDischarge,
		PlaceOfDelivery:  schedule.PlaceOfDelivery,
		FinalDestination: schedule.FinalDestination,
		ETD:              schedule.ETD,
		ETA:              schedule.ETA,
		OnBoardDate:      schedule.OnBoardDate,
		ShipperName:      schedule.ShipperName,
		ConsigneeName:    schedule.ConsigneeName,
		NotifyPartyName:  schedule.NotifyPartyName,
		TotalPackages:    schedule.TotalPackages,
		TotalGrossWeight: schedule.TotalGrossWeight,
		TotalMeasurement: schedule.TotalMeasurement,
		Status:           models.DocumentStatusDraft,
		CreatedBy:        actor,
	}

	err = store.Savepoint(ctx, func(sp *repositories.Store) error {
		return sp.Masters.Create(ctx, master)
	})
	if err == nil {
		return master, true, nil
	}
	if !repositories.IsUniqueViolation(err, repositories.ConstraintMasterNumberActive) {
		return nil, false, fmt.Errorf("create master %s: %w", in.MasterNumber, err)
	}

	r.logger.Info("master created concurrently, reusing committed row", zap.String("master_number", in.MasterNumber))
	existing, err = store.Masters.GetActiveByNumber(ctx, in.MasterNumber)
	if err != nil {
		return nil, false, fmt.Errorf("re-read master %s: %w", in.MasterNumber, err)
	}
	return existing, false, nil
}
