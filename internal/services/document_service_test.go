package services

import (
	"context"
	"errors"
	"testing"

	"freightdesk/internal/common"
	"freightdesk/internal/models"
	"freightdesk/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type DocumentServiceTestSuite struct {
	suite.Suite
	ms       *mockStore
	tx       *fakeTxManager
	archiver *MockDocumentArchiver
	service  DocumentService
	userID   uuid.UUID
	ctx      context.Context
}

func (suite *DocumentServiceTestSuite) SetupTest() {
	suite.ms = newMockStore()
	suite.tx = &fakeTxManager{store: suite.ms.store}
	suite.archiver = &MockDocumentArchiver{}
	suite.service = NewDocumentService(suite.tx, NewDirectoryLookup(nil, 0, ReferencePolicyStrict, nil), suite.archiver, 0, nil)
	suite.userID = uuid.New()
	suite.ctx = common.WithUserID(context.Background(), suite.userID)
}

func auditFor(table, action string) interface{} {
	return mock.MatchedBy(func(l *models.AuditLog) bool {
		return l.TableName == table && l.Action == action
	})
}

func (suite *DocumentServiceTestSuite) expectNewMaster(number string) {
	suite.ms.masters.On("GetActiveByNumber", mock.Anything, number).Return(nil, repositories.ErrNotFound).Once()
	suite.ms.masters.On("Create", mock.Anything, mock.MatchedBy(func(m *models.MasterDocument) bool {
		return m.MasterNumber == number
	})).Return(nil).Once()
	suite.ms.auditLogs.On("Create", mock.Anything, auditFor(models.TableMasterDocuments, models.ActionInsert)).Return(nil).Once()
}

func (suite *DocumentServiceTestSuite) expectHouseInsert(number string) {
	suite.ms.houses.On("ExistsActiveByNumber", mock.Anything, number, (*uuid.UUID)(nil)).Return(false, nil).Once()
	suite.ms.houses.On("Create", mock.Anything, mock.MatchedBy(func(h *models.HouseDocument) bool {
		return h.HouseNumber == number
	})).Return(nil).Once()
	suite.ms.auditLogs.On("Create", mock.Anything, auditFor(models.TableHouseDocuments, models.ActionInsert)).Return(nil).Once()
}

func (suite *DocumentServiceTestSuite) TestRegisterHouse_CreatesMasterOnFirstUse() {
	suite.expectNewMaster("MAEU0001")
	suite.expectHouseInsert("HBLX001")

	in := validInput()
	in.HouseNumber = " HBLX001 "
	result, err := suite.service.RegisterHouse(suite.ctx, in)

	suite.Require().NoError(err)
	suite.True(result.MasterCreated)
	suite.Equal("HBLX001", result.HouseNumber)
	suite.Equal("MAEU0001", result.MasterNumber)
	suite.Equal(1, suite.tx.commits)
	suite.ms.assertExpectations(suite.T())
}

func (suite *DocumentServiceTestSuite) TestRegisterHouse_SecondHouseReusesMaster() {
	master := &models.MasterDocument{ID: uuid.New(), MasterNumber: "MAEU0001", Status: models.DocumentStatusDraft}
	suite.expectNewMaster("MAEU0001")
	suite.expectHouseInsert("HBLX001")
	suite.ms.masters.On("GetActiveByNumber", mock.Anything, "MAEU0001").Return(master, nil).Once()
	suite.expectHouseInsert("HBLX002")

	first, err := suite.service.RegisterHouse(suite.ctx, validInput())
	suite.Require().NoError(err)

	in := validInput()
	in.HouseNumber = "HBLX002"
	second, err := suite.service.RegisterHouse(suite.ctx, in)
	suite.Require().NoError(err)

	suite.True(first.MasterCreated)
	suite.False(second.MasterCreated)
	suite.Equal(master.ID, second.MasterID)
	suite.ms.masters.AssertNumberOfCalls(suite.T(), "Create", 1)
}

func (suite *DocumentServiceTestSuite) TestRegisterHouse_StampsActorAndDraftStatus() {
	suite.expectNewMaster("MAEU0001")
	suite.ms.houses.On("ExistsActiveByNumber", mock.Anything, "HBLX001", (*uuid.UUID)(nil)).Return(false, nil)
	suite.ms.houses.On("Create", mock.Anything, mock.MatchedBy(func(h *models.HouseDocument) bool {
		return h.Status == models.DocumentStatusDraft &&
			h.CreatedBy != nil && *h.CreatedBy == suite.userID &&
			h.CustomerID == nil && h.CarrierID == nil
	})).Return(nil)
	suite.ms.auditLogs.On("Create", mock.Anything, mock.MatchedBy(func(l *models.AuditLog) bool {
		return l.TableName == models.TableHouseDocuments && l.ChangedBy != nil && *l.ChangedBy == suite.userID
	})).Return(nil)

	_, err := suite.service.RegisterHouse(suite.ctx, validInput())

	suite.Require().NoError(err)
	suite.ms.assertExpectations(suite.T())
}

func (suite *DocumentServiceTestSuite) TestRegisterHouse_DuplicateNumber() {
	master := &models.MasterDocument{ID: uuid.New(), MasterNumber: "MAEU0001"}
	suite.ms.masters.On("GetActiveByNumber", mock.Anything, "MAEU0001").Return(master, nil)
	suite.ms.houses.On("ExistsActiveByNumber", mock.Anything, "HBLX001", (*uuid.UUID)(nil)).Return(true, nil)

	result, err := suite.service.RegisterHouse(suite.ctx, validInput())

	suite.Nil(result)
	var dup *DuplicateDocumentError
	suite.Require().ErrorAs(err, &dup)
	suite.Equal("HBLX001", dup.HouseNumber)
	suite.Equal(1, suite.tx.rollbacks)
	suite.ms.houses.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *DocumentServiceTestSuite) TestRegisterHouse_UniqueViolationOnInsertIsDuplicate() {
	master := &models.MasterDocument{ID: uuid.New(), MasterNumber: "MAEU0001"}
	suite.ms.masters.On("GetActiveByNumber", mock.Anything, "MAEU0001").Return(master, nil)
	suite.ms.houses.On("ExistsActiveByNumber", mock.Anything, "HBLX001", (*uuid.UUID)(nil)).Return(false, nil)
	suite.ms.houses.On("Create", mock.Anything, mock.Anything).Return(&pgconn.PgError{
		Code:           repositories.PgErrUniqueViolation,
		ConstraintName: repositories.ConstraintHouseNumberActive,
	})

	_, err := suite.service.RegisterHouse(suite.ctx, validInput())

	var dup *DuplicateDocumentError
	suite.ErrorAs(err, &dup)
}

func (suite *DocumentServiceTestSuite) TestRegisterHouse_ValidationWritesNothing() {
	in := validInput()
	in.PortOfLoading = ""

	_, err := suite.service.RegisterHouse(suite.ctx, in)

	var verr *ValidationError
	suite.Require().ErrorAs(err, &verr)
	suite.Equal(FieldPortOfLoading, verr.Field)
	suite.Zero(suite.tx.commits + suite.tx.rollbacks)
	suite.ms.masters.AssertNotCalled(suite.T(), "GetActiveByNumber", mock.Anything, mock.Anything)
}

func (suite *DocumentServiceTestSuite) TestRegisterHouse_OverlongCurrencyIsValidationError() {
	in := validInput()
	in.Charges = []models.ChargeInput{{ChargeCode: "OFR", Currency: "USDX"}}

	_, err := suite.service.RegisterHouse(suite.ctx, in)

	var verr *ValidationError
	suite.Require().ErrorAs(err, &verr)
	suite.Equal(FieldChargeCurrency, verr.Field)
	suite.Zero(suite.tx.commits + suite.tx.rollbacks)
}

func (suite *DocumentServiceTestSuite) TestRegisterHouse_UnresolvedCustomerRollsBack() {
	master := &models.MasterDocument{ID: uuid.New(), MasterNumber: "MAEU0001"}
	suite.ms.masters.On("GetActiveByNumber", mock.Anything, "MAEU0001").Return(master, nil)
	suite.ms.houses.On("ExistsActiveByNumber", mock.Anything, "HBLX001", (*uuid.UUID)(nil)).Return(false, nil)
	suite.ms.directory.On("FindIDByCode", mock.Anything, models.DirectoryCustomer, "UNKNOWN").Return(uuid.Nil, repositories.ErrNotFound)

	in := validInput()
	in.CustomerCode = strPtr("UNKNOWN")
	_, err := suite.service.RegisterHouse(suite.ctx, in)

	var unresolved *UnresolvedReferenceError
	suite.Require().ErrorAs(err, &unresolved)
	suite.Equal(FieldCustomerCode, unresolved.Field)
	suite.Equal(1, suite.tx.rollbacks)
}

func (suite *DocumentServiceTestSuite) TestRegisterHouse_WritesLineItems() {
	master := &models.MasterDocument{ID: uuid.New(), MasterNumber: "MAEU0001"}
	suite.ms.masters.On("GetActiveByNumber", mock.Anything, "MAEU0001").Return(master, nil)
	suite.expectHouseInsert("HBLX001")
	suite.ms.containers.On("SoftDeleteActiveByHouses", mock.Anything, mock.Anything).Return(int64(0), nil)
	suite.ms.containers.On("Insert", mock.Anything, mock.MatchedBy(func(c *models.ContainerLineItem) bool {
		return c.MasterID == master.ID
	})).Return(nil).Twice()
	suite.ms.charges.On("SoftDeleteActiveByHouses", mock.Anything, mock.Anything).Return(int64(0), nil)
	suite.ms.charges.On("Insert", mock.Anything, mock.Anything).Return(nil).Once()

	in := validInput()
	in.Containers = []models.ContainerInput{{ContainerNumber: "MSKU1234567"}, {ContainerNumber: "MSKU7654321"}}
	in.Charges = []models.ChargeInput{{ChargeCode: "OFR", Currency: "USD"}}
	_, err := suite.service.RegisterHouse(suite.ctx, in)

	suite.Require().NoError(err)
	suite.ms.assertExpectations(suite.T())
}

func (suite *DocumentServiceTestSuite) TestRegisterHouse_StorageErrorIsInternal() {
	suite.ms.masters.On("GetActiveByNumber", mock.Anything, "MAEU0001").Return(nil, errors.New("connection refused"))

	_, err := suite.service.RegisterHouse(suite.ctx, validInput())

	var ie *InternalError
	suite.Require().ErrorAs(err, &ie)
	suite.Equal("failed to register house document", ie.Error())
}

func (suite *DocumentServiceTestSuite) TestRegisterHouse_CommitFailure() {
	suite.expectNewMaster("MAEU0001")
	suite.expectHouseInsert("HBLX001")
	suite.tx.commitErr = errors.New("commit transaction: connection lost")

	result, err := suite.service.RegisterHouse(suite.ctx, validInput())

	suite.Nil(result)
	var ie *InternalError
	suite.ErrorAs(err, &ie)
}

func (suite *DocumentServiceTestSuite) currentHouse(masterID uuid.UUID) *models.HouseDocument {
	customer := uuid.New()
	return &models.HouseDocument{
		ID:              uuid.New(),
		HouseNumber:     "HBLX001",
		MasterID:        masterID,
		CustomerID:      &customer,
		PortOfLoading:   "CNSHA",
		PortOfDischarge: "USLAX",
		VesselName:      strPtr("MAERSK KENDAL"),
		Status:          models.DocumentStatusDraft,
	}
}

func (suite *DocumentServiceTestSuite) updateInput(house *models.HouseDocument) *models.HouseDocumentInput {
	in := validInput()
	in.HouseID = &house.ID
	return in
}

func (suite *DocumentServiceTestSuite) TestUpdateHouse_KeepsUnsuppliedFields() {
	master := &models.MasterDocument{ID: uuid.New(), MasterNumber: "MAEU0001"}
	current := suite.currentHouse(master.ID)

	suite.ms.houses.On("LockActiveByID", mock.Anything, current.ID).Return(current, nil)
	suite.ms.masters.On("GetActiveByNumber", mock.Anything, "MAEU0001").Return(master, nil)
	suite.ms.houses.On("Update", mock.Anything, mock.MatchedBy(func(h *models.HouseDocument) bool {
		return h.ID == current.ID &&
			h.VesselName != nil && *h.VesselName == "MAERSK KENDAL" &&
			h.VoyageNumber != nil && *h.VoyageNumber == "123W" &&
			h.CustomerID == current.CustomerID &&
			h.UpdatedBy != nil && *h.UpdatedBy == suite.userID
	})).Return(nil)
	suite.ms.auditLogs.On("Create", mock.Anything, auditFor(models.TableHouseDocuments, models.ActionUpdate)).Return(nil)

	in := suite.updateInput(current)
	in.VoyageNumber = strPtr("123W")
	result, err := suite.service.UpdateHouse(suite.ctx, in)

	suite.Require().NoError(err)
	suite.False(result.MasterCreated)
	suite.ms.assertExpectations(suite.T())
	suite.ms.houses.AssertNotCalled(suite.T(), "ExistsActiveByNumber", mock.Anything, mock.Anything, mock.Anything)
	suite.ms.containers.AssertNotCalled(suite.T(), "SoftDeleteActiveByHouses", mock.Anything, mock.Anything)
	suite.ms.charges.AssertNotCalled(suite.T(), "SoftDeleteActiveByHouses", mock.Anything, mock.Anything)
}

func (suite *DocumentServiceTestSuite) TestUpdateHouse_NotFound() {
	id := uuid.New()
	suite.ms.houses.On("LockActiveByID", mock.Anything, id).Return(nil, repositories.ErrNotFound)

	in := validInput()
	in.HouseID = &id
	_, err := suite.service.UpdateHouse(suite.ctx, in)

	var nf *NotFoundError
	suite.Require().ErrorAs(err, &nf)
	suite.Equal("house document", nf.Entity)
}

func (suite *DocumentServiceTestSuite) TestUpdateHouse_RenumberChecksDuplicatesExcludingSelf() {
	master := &models.MasterDocument{ID: uuid.New(), MasterNumber: "MAEU0001"}
	current := suite.currentHouse(master.ID)

	suite.ms.houses.On("LockActiveByID", mock.Anything, current.ID).Return(current, nil)
	suite.ms.masters.On("GetActiveByNumber", mock.Anything, "MAEU0001").Return(master, nil)
	suite.ms.houses.On("ExistsActiveByNumber", mock.Anything, "HBLX009", &current.ID).Return(true, nil)

	in := suite.updateInput(current)
	in.HouseNumber = "HBLX009"
	_, err := suite.service.UpdateHouse(suite.ctx, in)

	var dup *DuplicateDocumentError
	suite.Require().ErrorAs(err, &dup)
	suite.Equal("HBLX009", dup.HouseNumber)
	suite.ms.houses.AssertNotCalled(suite.T(), "Update", mock.Anything, mock.Anything)
}

func (suite *DocumentServiceTestSuite) TestUpdateHouse_MovesToNewMasterAndRestamps() {
	oldMaster := uuid.New()
	current := suite.currentHouse(oldMaster)

	suite.ms.houses.On("LockActiveByID", mock.Anything, current.ID).Return(current, nil)
	suite.expectNewMaster("MAEU0002")
	suite.ms.houses.On("Update", mock.Anything, mock.MatchedBy(func(h *models.HouseDocument) bool {
		return h.MasterID != oldMaster
	})).Return(nil)
	suite.ms.containers.On("RestampMaster", mock.Anything, current.ID, mock.MatchedBy(func(id uuid.UUID) bool {
		return id != oldMaster
	})).Return(int64(2), nil)
	suite.ms.auditLogs.On("Create", mock.Anything, auditFor(models.TableHouseDocuments, models.ActionUpdate)).Return(nil)

	in := suite.updateInput(current)
	in.MasterNumber = "MAEU0002"
	result, err := suite.service.UpdateHouse(suite.ctx, in)

	suite.Require().NoError(err)
	suite.True(result.MasterCreated)
	suite.NotEqual(oldMaster, result.MasterID)
	suite.ms.assertExpectations(suite.T())
}

func (suite *DocumentServiceTestSuite) TestUpdateHouse_MasterIDMismatch() {
	master := &models.MasterDocument{ID: uuid.New(), MasterNumber: "MAEU0001"}
	current := suite.currentHouse(master.ID)
	other := uuid.New()

	suite.ms.houses.On("LockActiveByID", mock.Anything, current.ID).Return(current, nil)
	suite.ms.masters.On("GetActiveByNumber", mock.Anything, "MAEU0001").Return(master, nil)

	in := suite.updateInput(current)
	in.MasterID = &other
	_, err := suite.service.UpdateHouse(suite.ctx, in)

	var verr *ValidationError
	suite.Require().ErrorAs(err, &verr)
	suite.Equal(FieldMasterID, verr.Field)
	suite.ms.masters.AssertNotCalled(suite.T(), "UpdateSchedule", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *DocumentServiceTestSuite) TestUpdateHouse_MasterIDRefreshesSchedule() {
	master := &models.MasterDocument{ID: uuid.New(), MasterNumber: "MAEU0001"}
	current := suite.currentHouse(master.ID)

	suite.ms.houses.On("LockActiveByID", mock.Anything, current.ID).Return(current, nil)
	suite.ms.masters.On("GetActiveByNumber", mock.Anything, "MAEU0001").Return(master, nil)
	suite.ms.masters.On("UpdateSchedule", mock.Anything, master.ID, mock.MatchedBy(func(s models.MasterSchedule) bool {
		return s.VesselName != nil && *s.VesselName == "CMA CGM MARCO POLO"
	})).Return(nil)
	suite.ms.auditLogs.On("Create", mock.Anything, auditFor(models.TableMasterDocuments, models.ActionUpdate)).Return(nil)
	suite.ms.houses.On("Update", mock.Anything, mock.Anything).Return(nil)
	suite.ms.auditLogs.On("Create", mock.Anything, auditFor(models.TableHouseDocuments, models.ActionUpdate)).Return(nil)

	in := suite.updateInput(current)
	in.MasterID = &master.ID
	in.VesselName = strPtr("CMA CGM MARCO POLO")
	_, err := suite.service.UpdateHouse(suite.ctx, in)

	suite.Require().NoError(err)
	suite.ms.assertExpectations(suite.T())
}

func (suite *DocumentServiceTestSuite) TestUpdateHouse_ReplacesLineItems() {
	master := &models.MasterDocument{ID: uuid.New(), MasterNumber: "MAEU0001"}
	current := suite.currentHouse(master.ID)

	suite.ms.houses.On("LockActiveByID", mock.Anything, current.ID).Return(current, nil)
	suite.ms.masters.On("GetActiveByNumber", mock.Anything, "MAEU0001").Return(master, nil)
	suite.ms.houses.On("Update", mock.Anything, mock.Anything).Return(nil)
	suite.ms.containers.On("SoftDeleteActiveByHouses", mock.Anything, []uuid.UUID{current.ID}).Return(int64(3), nil)
	suite.ms.containers.On("Insert", mock.Anything, mock.Anything).Return(nil).Once()
	suite.ms.auditLogs.On("Create", mock.Anything, mock.MatchedBy(func(l *models.AuditLog) bool {
		_, hasContainers := l.NewValues["containers"]
		_, hasCharges := l.NewValues["charges"]
		return l.Action == models.ActionUpdate && hasContainers && !hasCharges
	})).Return(nil)

	in := suite.updateInput(current)
	in.Containers = []models.ContainerInput{{ContainerNumber: "MSKU1234567"}}
	_, err := suite.service.UpdateHouse(suite.ctx, in)

	suite.Require().NoError(err)
	suite.ms.assertExpectations(suite.T())
	suite.ms.charges.AssertNotCalled(suite.T(), "SoftDeleteActiveByHouses", mock.Anything, mock.Anything)
}

func (suite *DocumentServiceTestSuite) TestDeleteHouses_SkipsUnknownIDs() {
	a, b, unknown := uuid.New(), uuid.New(), uuid.New()
	ids := []uuid.UUID{a, unknown, b, a}
	deleted := []models.DeletedHouse{{ID: a, HouseNumber: "HBLX001"}, {ID: b, HouseNumber: "HBLX002"}}
	affected := []uuid.UUID{a, b}

	suite.ms.houses.On("SoftDelete", mock.Anything, []uuid.UUID{a, unknown, b}, &suite.userID).Return(deleted, nil)
	suite.ms.containers.On("SoftDeleteActiveByHouses", mock.Anything, affected).Return(int64(3), nil)
	suite.ms.charges.On("SoftDeleteActiveByHouses", mock.Anything, affected).Return(int64(1), nil)
	suite.ms.auditLogs.On("Create", mock.Anything, auditFor(models.TableHouseDocuments, models.ActionSoftDelete)).Return(nil).Twice()
	suite.archiver.On("ArchiveDeletion", mock.Anything, mock.MatchedBy(func(m *DeletionManifest) bool {
		return len(m.Houses) == 2 && m.DeletedBy != nil && *m.DeletedBy == suite.userID
	})).Return("deletions/2026/01/01/x.json", nil)

	result, err := suite.service.DeleteHouses(suite.ctx, ids)

	suite.Require().NoError(err)
	suite.Equal(2, result.Count)
	suite.Equal(deleted, result.Deleted)
	suite.ms.assertExpectations(suite.T())
	suite.archiver.AssertExpectations(suite.T())
}

func (suite *DocumentServiceTestSuite) TestDeleteHouses_NothingMatched() {
	id := uuid.New()
	suite.ms.houses.On("SoftDelete", mock.Anything, []uuid.UUID{id}, &suite.userID).Return([]models.DeletedHouse{}, nil)

	result, err := suite.service.DeleteHouses(suite.ctx, []uuid.UUID{id})

	suite.Require().NoError(err)
	suite.Zero(result.Count)
	suite.NotNil(result.Deleted)
	suite.ms.containers.AssertNotCalled(suite.T(), "SoftDeleteActiveByHouses", mock.Anything, mock.Anything)
	suite.archiver.AssertNotCalled(suite.T(), "ArchiveDeletion", mock.Anything, mock.Anything)
}

func (suite *DocumentServiceTestSuite) TestDeleteHouses_RequiresIDs() {
	_, err := suite.service.DeleteHouses(suite.ctx, []uuid.UUID{uuid.Nil})

	var verr *ValidationError
	suite.Require().ErrorAs(err, &verr)
	suite.Equal(FieldIDs, verr.Field)
	suite.Zero(suite.tx.commits + suite.tx.rollbacks)
}

func (suite *DocumentServiceTestSuite) TestDeleteHouses_ArchiveFailureIsNotFatal() {
	id := uuid.New()
	deleted := []models.DeletedHouse{{ID: id, HouseNumber: "HBLX001"}}
	suite.ms.houses.On("SoftDelete", mock.Anything, []uuid.UUID{id}, &suite.userID).Return(deleted, nil)
	suite.ms.containers.On("SoftDeleteActiveByHouses", mock.Anything, []uuid.UUID{id}).Return(int64(0), nil)
	suite.ms.charges.On("SoftDeleteActiveByHouses", mock.Anything, []uuid.UUID{id}).Return(int64(0), nil)
	suite.ms.auditLogs.On("Create", mock.Anything, mock.Anything).Return(nil)
	suite.archiver.On("ArchiveDeletion", mock.Anything, mock.Anything).Return("", errors.New("bucket missing"))

	result, err := suite.service.DeleteHouses(suite.ctx, []uuid.UUID{id})

	suite.Require().NoError(err)
	suite.Equal(1, result.Count)
	suite.Equal(1, suite.tx.commits)
}

func (suite *DocumentServiceTestSuite) TestDeleteHouses_CascadeFailureRollsBack() {
	id := uuid.New()
	suite.ms.houses.On("SoftDelete", mock.Anything, []uuid.UUID{id}, &suite.userID).Return([]models.DeletedHouse{{ID: id}}, nil)
	suite.ms.containers.On("SoftDeleteActiveByHouses", mock.Anything, []uuid.UUID{id}).Return(int64(0), errors.New("lock timeout"))

	_, err := suite.service.DeleteHouses(suite.ctx, []uuid.UUID{id})

	var ie *InternalError
	suite.Require().ErrorAs(err, &ie)
	suite.Equal(1, suite.tx.rollbacks)
	suite.archiver.AssertNotCalled(suite.T(), "ArchiveDeletion", mock.Anything, mock.Anything)
}

func TestDocumentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(DocumentServiceTestSuite))
}
