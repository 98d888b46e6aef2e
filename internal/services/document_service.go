package services

import (
	"context"
	"errors"
	"time"

	"freightdesk/internal/common"
	"freightdesk/internal/models"
	"freightdesk/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DocumentService is the write side of the document engine. Every operation
// runs as a single transaction.
type DocumentService interface {
	RegisterHouse(ctx context.Context, in *models.HouseDocumentInput) (*models.HouseWriteResult, error)
	UpdateHouse(ctx context.Context, in *models.HouseDocumentInput) (*models.HouseWriteResult, error)
	DeleteHouses(ctx context.Context, ids []uuid.UUID) (*models.HouseDeleteResult, error)
}

type documentService struct {
	tx        repositories.TxManager
	directory *DirectoryLookup
	masters   *MasterResolver
	lines     *LineItemSync
	archiver  DocumentArchiver
	txTimeout time.Duration
	logger    *zap.Logger
}

// NewDocumentService wires the coordinator. archiver may be nil, in which
// case deletions are not archived. A zero txTimeout leaves the caller's
// deadline as the only limit.
func NewDocumentService(tx repositories.TxManager, directory *DirectoryLookup, archiver DocumentArchiver, txTimeout time.Duration, logger *zap.Logger) DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &documentService{
		tx:        tx,
		directory: directory,
		masters:   NewMasterResolver(directory, logger),
		lines:     NewLineItemSync(logger),
		archiver:  archiver,
		txTimeout: txTimeout,
		logger:    logger,
	}
}

func (s *documentService) RegisterHouse(ctx context.Context, in *models.HouseDocumentInput) (*models.HouseWriteResult, error) {
	if err := ValidateCreate(in); err != nil {
		return nil, err
	}
	normalizeInput(in)
	actor := actorFromContext(ctx)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var result *models.HouseWriteResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context, store *repositories.Store) error {
		master, created, err := s.masters.ResolveOrCreate(ctx, store, in, actor)
		if err != nil {
			return err
		}
		if created {
			if err := writeAudit(ctx, store, models.TableMasterDocuments, master.ID, models.ActionInsert, models.JSONB{
				"master_number": master.MasterNumber,
				"status":        master.Status,
			}, actor); err != nil {
				return err
			}
		}

		exists, err := store.Houses.ExistsActiveByNumber(ctx, in.HouseNumber, nil)
		if err != nil {
			return err
		}
		if exists {
			return &DuplicateDocumentError{HouseNumber: in.HouseNumber}
		}

		customerID, err := s.directory.ResolveForCreate(ctx, store.Directory, models.DirectoryCustomer, FieldCustomerCode, in.CustomerCode)
		if err != nil {
			return err
		}
		carrierID, err := s.directory.ResolveForCreate(ctx, store.Directory, models.DirectoryCarrier, FieldCarrierCode, in.CarrierCode)
		if err != nil {
			return err
		}

		house := newHouseDocument(in, master.ID, customerID, carrierID, actor)
		if err := store.Houses.Create(ctx, house); err != nil {
			return err
		}

		containers, err := s.lines.ReplaceContainers(ctx, store, house.ID, master.ID, in.Containers)
		if err != nil {
			return err
		}
		charges, err := s.lines.ReplaceCharges(ctx, store, house.ID, in.Charges)
		if err != nil {
			return err
		}

		if err := writeAudit(ctx, store, models.TableHouseDocuments, house.ID, models.ActionInsert, models.JSONB{
			"house_number": house.HouseNumber,
			"master_id":    master.ID.String(),
			"containers":   containers,
			"charges":      charges,
		}, actor); err != nil {
			return err
		}

		result = &models.HouseWriteResult{
			HouseID:       house.ID,
			HouseNumber:   house.HouseNumber,
			MasterID:      master.ID,
			MasterNumber:  master.MasterNumber,
			MasterCreated: created,
		}
		return nil
	})
	if err != nil {
		return nil, s.translate("register house document", in.HouseNumber, err)
	}

	s.logger.Info("house document registered",
		zap.String("house_number", result.HouseNumber),
		zap.String("master_number", result.MasterNumber),
		zap.Bool("master_created", result.MasterCreated))
	return result, nil
}

func (s *documentService) UpdateHouse(ctx context.Context, in *models.HouseDocumentInput) (*models.HouseWriteResult, error) {
	if err := ValidateUpdate(in); err != nil {
		return nil, err
	}
	normalizeInput(in)
	actor := actorFromContext(ctx)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var result *models.HouseWriteResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context, store *repositories.Store) error {
		current, err := store.Houses.LockActiveByID(ctx, *in.HouseID)
		if errors.Is(err, repositories.ErrNotFound) {
			return &NotFoundError{Entity: "house document", ID: in.HouseID.String()}
		}
		if err != nil {
			return err
		}

		master, created, err := s.masters.ResolveOrCreate(ctx, store, in, actor)
		if err != nil {
			return err
		}
		if created {
			if err := writeAudit(ctx, store, models.TableMasterDocuments, master.ID, models.ActionInsert, models.JSONB{
				"master_number": master.MasterNumber,
				"status":        master.Status,
			}, actor); err != nil {
				return err
			}
		}

		if in.MasterID != nil {
			if *in.MasterID != master.ID {
				return &ValidationError{Field: FieldMasterID, Message: "does not match master_number"}
			}
			err := store.Masters.UpdateSchedule(ctx, master.ID, in.Schedule())
			if errors.Is(err, repositories.ErrNotFound) {
				return &NotFoundError{Entity: "master document", ID: master.ID.String()}
			}
			if err != nil {
				return err
			}
			if err := writeAudit(ctx, store, models.TableMasterDocuments, master.ID, models.ActionUpdate, models.JSONB{
				"master_number": master.MasterNumber,
				"schedule":      true,
			}, actor); err != nil {
				return err
			}
		}

		if in.HouseNumber != current.HouseNumber {
			exists, err := store.Houses.ExistsActiveByNumber(ctx, in.HouseNumber, &current.ID)
			if err != nil {
				return err
			}
			if exists {
				return &DuplicateDocumentError{HouseNumber: in.HouseNumber}
			}
		}

		customerID, err := s.directory.ResolveForUpdate(ctx, store.Directory, models.DirectoryCustomer, in.CustomerCode, current.CustomerID)
		if err != nil {
			return err
		}
		carrierID, err := s.directory.ResolveForUpdate(ctx, store.Directory, models.DirectoryCarrier, in.CarrierCode, current.CarrierID)
		if err != nil {
			return err
		}

		previousMaster := current.MasterID
		house := mergeHouseDocument(current, in, master.ID, customerID, carrierID, actor)
		err = store.Houses.Update(ctx, house)
		if errors.Is(err, repositories.ErrNotFound) {
			return &NotFoundError{Entity: "house document", ID: house.ID.String()}
		}
		if err != nil {
			return err
		}

		if previousMaster != master.ID && len(in.Containers) == 0 {
			if err := s.lines.RestampContainers(ctx, store, house.ID, master.ID); err != nil {
				return err
			}
		}

		containers, err := s.lines.ReplaceContainers(ctx, store, house.ID, master.ID, in.Containers)
		if err != nil {
			return err
		}
		charges, err := s.lines.ReplaceCharges(ctx, store, house.ID, in.Charges)
		if err != nil {
			return err
		}

		values := models.JSONB{
			"house_number": house.HouseNumber,
			"master_id":    master.ID.String(),
		}
		if len(in.Containers) > 0 {
			values["containers"] = containers
		}
		if len(in.Charges) > 0 {
			values["charges"] = charges
		}
		if err := writeAudit(ctx, store, models.TableHouseDocuments, house.ID, models.ActionUpdate, values, actor); err != nil {
			return err
		}

		result = &models.HouseWriteResult{
			HouseID:       house.ID,
			HouseNumber:   house.HouseNumber,
			MasterID:      master.ID,
			MasterNumber:  master.MasterNumber,
			MasterCreated: created,
		}
		return nil
	})
	if err != nil {
		return nil, s.translate("update house document", in.HouseNumber, err)
	}

	s.logger.Info("house document updated",
		zap.String("house_id", result.HouseID.String()),
		zap.String("house_number", result.HouseNumber))
	return result, nil
}

func (s *documentService) DeleteHouses(ctx context.Context, ids []uuid.UUID) (*models.HouseDeleteResult, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, &ValidationError{Field: FieldIDs, Message: "at least one id is required"}
	}
	actor := actorFromContext(ctx)

	txCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	var deleted []models.DeletedHouse
	err := s.tx.WithinTx(txCtx, func(ctx context.Context, store *repositories.Store) error {
		var err error
		deleted, err = store.Houses.SoftDelete(ctx, ids, actor)
		if err != nil {
			return err
		}
		if len(deleted) == 0 {
			return nil
		}

		affected := make([]uuid.UUID, 0, len(deleted))
		for _, d := range deleted {
			affected = append(affected, d.ID)
		}
		if err := s.lines.CascadeDelete(ctx, store, affected); err != nil {
			return err
		}

		for _, d := range deleted {
			if err := writeAudit(ctx, store, models.TableHouseDocuments, d.ID, models.ActionSoftDelete, models.JSONB{
				"house_number": d.HouseNumber,
			}, actor); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, s.translate("delete house documents", "", err)
	}

	if deleted == nil {
		deleted = []models.DeletedHouse{}
	}
	s.logger.Info("house documents deleted",
		zap.Int("requested", len(ids)),
		zap.Int("deleted", len(deleted)))

	if len(deleted) > 0 {
		s.archive(ctx, deleted, actor)
	}
	return &models.HouseDeleteResult{Count: len(deleted), Deleted: deleted}, nil
}

// archive stores the deletion manifest. The delete has already committed, so
// failures are only logged.
func (s *documentService) archive(ctx context.Context, deleted []models.DeletedHouse, actor *uuid.UUID) {
	if s.archiver == nil {
		return
	}
	manifest := &DeletionManifest{
		DeletedAt: time.Now(),
		DeletedBy: actor,
		Houses:    deleted,
	}
	objectName, err := s.archiver.ArchiveDeletion(context.WithoutCancel(ctx), manifest)
	if err != nil {
		s.logger.Error("failed to archive deletion manifest", zap.Int("houses", len(deleted)), zap.Error(err))
		return
	}
	s.logger.Debug("deletion manifest archived", zap.String("object", objectName))
}

func (s *documentService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.txTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.txTimeout)
}

// translate maps a failed transaction onto the error taxonomy. A unique
// violation on the house number index becomes DuplicateDocumentError no
// matter whether it surfaced on insert, update or commit.
func (s *documentService) translate(op, houseNumber string, err error) error {
	if repositories.IsUniqueViolation(err, repositories.ConstraintHouseNumberActive) {
		return &DuplicateDocumentError{HouseNumber: houseNumber}
	}
	if isDomainError(err) {
		return err
	}
	s.logger.Error("document transaction failed",
		zap.String("op", op),
		zap.String("house_number", houseNumber),
		zap.Error(err))
	return internal(op, err)
}

func actorFromContext(ctx context.Context) *uuid.UUID {
	if id, ok := common.GetUserIDFromContext(ctx); ok && id != uuid.Nil {
		return &id
	}
	return nil
}

func writeAudit(ctx context.Context, store *repositories.Store, table string, recordID uuid.UUID, action string, values models.JSONB, actor *uuid.UUID) error {
	return store.AuditLogs.Create(ctx, &models.AuditLog{
		TableName: table,
		RecordID:  recordID.String(),
		Action:    action,
		NewValues: values,
		ChangedBy: actor,
	})
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func newHouseDocument(in *models.HouseDocumentInput, masterID uuid.UUID, customerID, carrierID, actor *uuid.UUID) *models.HouseDocument {
	return &models.HouseDocument{
		ID:                   uuid.New(),
		HouseNumber:          in.HouseNumber,
		MasterID:             masterID,
		ShipmentReference:    in.ShipmentReference,
		CustomerID:           customerID,
		CarrierID:            carrierID,
		VesselName:           in.VesselName,
		VoyageNumber:         in.VoyageNumber,
		PlaceOfReceipt:       in.PlaceOfReceipt,
		PortOfLoading:        in.PortOfLoading,
		PortOfDischarge:      in.PortOfDischarge,
		PlaceOfDelivery:      in.PlaceOfDelivery,
		FinalDestination:     in.FinalDestination,
		ETD:                  in.ETD,
		ETA:                  in.ETA,
		OnBoardDate:          in.OnBoardDate,
		ShipperName:          in.ShipperName,
		ConsigneeName:        in.ConsigneeName,
		NotifyPartyName:      in.NotifyPartyName,
		Packages:             in.Packages,
		PackageUnit:          in.PackageUnit,
		GrossWeight:          in.GrossWeight,
		Measurement:          in.Measurement,
		CommodityDescription: in.CommodityDescription,
		Status:               models.DocumentStatusDraft,
		CreatedBy:            actor,
		UpdatedBy:            actor,
	}
}

// mergeHouseDocument overlays the supplied fields of in onto current.
func mergeHouseDocument(current *models.HouseDocument, in *models.HouseDocumentInput, masterID uuid.UUID, customerID, carrierID, actor *uuid.UUID) *models.HouseDocument {
	h := *current
	h.HouseNumber = in.HouseNumber
	h.MasterID = masterID
	h.PortOfLoading = in.PortOfLoading
	h.PortOfDischarge = in.PortOfDischarge
	h.CustomerID = customerID
	h.CarrierID = carrierID
	h.ShipmentReference = pick(in.ShipmentReference, h.ShipmentReference)
	h.VesselName = pick(in.VesselName, h.VesselName)
	h.VoyageNumber = pick(in.VoyageNumber, h.VoyageNumber)
	h.PlaceOfReceipt = pick(in.PlaceOfReceipt, h.PlaceOfReceipt)
	h.PlaceOfDelivery = pick(in.PlaceOfDelivery, h.PlaceOfDelivery)
	h.FinalDestination = pick(in.FinalDestination, h.FinalDestination)
	h.ETD = pick(in.ETD, h.ETD)
	h.ETA = pick(in.ETA, h.ETA)
	h.OnBoardDate = pick(in.OnBoardDate, h.OnBoardDate)
	h.ShipperName = pick(in.ShipperName, h.ShipperName)
	h.ConsigneeName = pick(in.ConsigneeName, h.ConsigneeName)
	h.NotifyPartyName = pick(in.NotifyPartyName, h.NotifyPartyName)
	h.Packages = pick(in.Packages, h.Packages)
	h.PackageUnit = pick(in.PackageUnit, h.PackageUnit)
	h.GrossWeight = pick(in.GrossWeight, h.GrossWeight)
	h.Measurement = pick(in.Measurement, h.Measurement)
	h.CommodityDescription = pick(in.CommodityDescription, h.CommodityDescription)
	h.UpdatedBy = actor
	return &h
}

func pick[T any](supplied, current *T) *T {
	if supplied != nil {
		return supplied
	}
	return current
}
