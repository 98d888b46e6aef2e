package services

import (
	"context"
	"fmt"
	"strings"

	"freightdesk/internal/models"
	"freightdesk/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LineItemSync applies replace-all semantics to a house's containers and
// charges.
type LineItemSync struct {
	logger *zap.Logger
}

func NewLineItemSync(logger *zap.Logger) *LineItemSync {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LineItemSync{logger: logger}
}

// ReplaceContainers makes items the active container set of the house. An
// empty items leaves the current set untouched and returns 0.
func (s *LineItemSync) ReplaceContainers(ctx context.Context, store *repositories.Store, houseID, masterID uuid.UUID, items []models.ContainerInput) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	if _, err := store.Containers.SoftDeleteActiveByHouses(ctx, []uuid.UUID{houseID}); err != nil {
		return 0, fmt.Errorf("retire containers: %w", err)
	}

	for i := range items {
		in := items[i]
		item := &models.ContainerLineItem{
			ID:              uuid.New(),
			HouseID:         houseID,
			MasterID:        masterID,
			ContainerNumber: strings.TrimSpace(in.ContainerNumber),
			SealNumber:      in.SealNumber,
			TypeSize:        in.TypeSize,
			Packages:        in.Packages,
			GrossWeight:     in.GrossWeight,
			Measurement:     in.Measurement,
		}
		if err := store.Containers.Insert(ctx, item); err != nil {
			return 0, fmt.Errorf("insert container %s: %w", item.ContainerNumber, err)
		}
	}
	return len(items), nil
}

// ReplaceCharges is ReplaceContainers for charge lines.
func (s *LineItemSync) ReplaceCharges(ctx context.Context, store *repositories.Store, houseID uuid.UUID, items []models.ChargeInput) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	if _, err := store.Charges.SoftDeleteActiveByHouses(ctx, []uuid.UUID{houseID}); err != nil {
		return 0, fmt.Errorf("retire charges: %w", err)
	}

	for i := range items {
		in := items[i]
		item := &models.ChargeLineItem{
			ID:            uuid.New(),
			HouseID:       houseID,
			ChargeCode:    strings.TrimSpace(in.ChargeCode),
			Description:   in.Description,
			Currency:      strings.ToUpper(strings.TrimSpace(in.Currency)),
			PrepaidAmount: in.PrepaidAmount,
			CollectAmount: in.CollectAmount,
		}
		if err := store.Charges.Insert(ctx, item); err != nil {
			return 0, fmt.Errorf("insert charge %s: %w", item.ChargeCode, err)
		}
	}
	return len(items), nil
}

// RestampContainers points the house's active containers at masterID after
// the house moved to another master.
func (s *LineItemSync) RestampContainers(ctx context.Context, store *repositories.Store, houseID, masterID uuid.UUID) error {
	n, err := store.Containers.RestampMaster(ctx, houseID, masterID)
	if err != nil {
		return fmt.Errorf("restamp containers: %w", err)
	}
	s.logger.Debug("containers restamped",
		zap.String("house_id", houseID.String()),
		zap.String("master_id", masterID.String()),
		zap.Int64("rows", n))
	return nil
}

// CascadeDelete soft-deletes the active containers and charges of the given
// houses. Each line item type runs in its own savepoint, so a table that is
// missing from the schema is skipped without aborting the transaction.
func (s *LineItemSync) CascadeDelete(ctx context.Context, store *repositories.Store, houseIDs []uuid.UUID) error {
	if len(houseIDs) == 0 {
		return nil
	}

	steps := []struct {
		name string
		run  func(*repositories.Store) (int64, error)
	}{
		{"containers", func(sp *repositories.Store) (int64, error) {
			return sp.Containers.SoftDeleteActiveByHouses(ctx, houseIDs)
		}},
		{"charges", func(sp *repositories.Store) (int64, error) {
			return sp.Charges.SoftDeleteActiveByHouses(ctx, houseIDs)
		}},
	}

	for _, step := range steps {
		var affected int64
		err := store.Savepoint(ctx, func(sp *repositories.Store) error {
			var runErr error
			affected, runErr = step.run(sp)
			return runErr
		})
		if err != nil {
			if repositories.IsMissingRelation(err) {
				s.logger.Warn("line item storage unavailable, cascade skipped",
					zap.String("line_items", step.name),
					zap.Error(err))
				continue
			}
			return fmt.Errorf("cascade %s: %w", step.name, err)
		}
		s.logger.Debug("line items cascaded",
			zap.String("line_items", step.name),
			zap.Int64("rows", affected))
	}
	return nil
}
