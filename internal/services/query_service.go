package services

import (
	"context"
	"errors"

	"freightdesk/internal/models"
	"freightdesk/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultListLimit    = 50
	maxListLimit        = 500
	defaultHistoryLimit = 50
)

// QueryService is the read side: listing, detail and change history.
type QueryService interface {
	ListHouses(ctx context.Context, filter *models.HouseListFilter) ([]*models.HouseListRow, error)
	GetHouse(ctx context.Context, id uuid.UUID) (*models.HouseDetail, error)
	History(ctx context.Context, id uuid.UUID, limit int) ([]*models.AuditLog, error)
}

type queryService struct {
	tx     repositories.TxManager
	store  *repositories.Store
	logger *zap.Logger
}

// NewQueryService serves single-statement reads from store. Reads spanning
// several tables go through tx so they share one snapshot.
func NewQueryService(tx repositories.TxManager, store *repositories.Store, logger *zap.Logger) QueryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &queryService{tx: tx, store: store, logger: logger}
}

func (s *queryService) ListHouses(ctx context.Context, filter *models.HouseListFilter) ([]*models.HouseListRow, error) {
	if filter == nil {
		filter = &models.HouseListFilter{}
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	rows, err := s.store.Houses.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list house documents", zap.Error(err))
		return nil, internal("list house documents", err)
	}
	if rows == nil {
		rows = []*models.HouseListRow{}
	}
	return rows, nil
}

func (s *queryService) GetHouse(ctx context.Context, id uuid.UUID) (*models.HouseDetail, error) {
	detail := &models.HouseDetail{}
	err := s.tx.WithinReadTx(ctx, func(ctx context.Context, store *repositories.Store) error {
		house, err := store.Houses.GetActiveByID(ctx, id)
		if errors.Is(err, repositories.ErrNotFound) {
			return &NotFoundError{Entity: "house document", ID: id.String()}
		}
		if err != nil {
			s.logger.Error("failed to load house document", zap.String("house_id", id.String()), zap.Error(err))
			return internal("load house document", err)
		}
		detail.House = house

		if detail.Containers, err = store.Containers.ListActiveByHouse(ctx, id); err != nil {
			return internal("load containers", err)
		}
		if detail.Charges, err = store.Charges.ListActiveByHouse(ctx, id); err != nil {
			return internal("load charges", err)
		}
		return nil
	})
	if err != nil {
		return nil, internal("read house document", err)
	}

	if detail.Containers == nil {
		detail.Containers = []*models.ContainerLineItem{}
	}
	if detail.Charges == nil {
		detail.Charges = []*models.ChargeLineItem{}
	}
	return detail, nil
}

// History returns the audit trail of a house, newest first. Deleted houses
// keep their history.
func (s *queryService) History(ctx context.Context, id uuid.UUID, limit int) ([]*models.AuditLog, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = defaultHistoryLimit
	}
	logs, err := s.store.AuditLogs.ListByRecord(ctx, models.TableHouseDocuments, id.String(), limit)
	if err != nil {
		return nil, internal("load house history", err)
	}
	if logs == nil {
		logs = []*models.AuditLog{}
	}
	return logs, nil
}
