package services

import (
	"context"
	"time"

	"freightdesk/internal/models"
	"freightdesk/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockMasterRepository is a mock implementation of MasterRepository
type MockMasterRepository struct {
	mock.Mock
}

func (m *MockMasterRepository) GetActiveByNumber(ctx context.Context, masterNumber string) (*models.MasterDocument, error) {
	args := m.Called(ctx, masterNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MasterDocument), args.Error(1)
}

func (m *MockMasterRepository) GetActiveByID(ctx context.Context, id uuid.UUID) (*models.MasterDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MasterDocument), args.Error(1)
}

func (m *MockMasterRepository) Create(ctx context.Context, master *models.MasterDocument) error {
	args := m.Called(ctx, master)
	return args.Error(0)
}

func (m *MockMasterRepository) UpdateSchedule(ctx context.Context, id uuid.UUID, schedule models.MasterSchedule) error {
	args := m.Called(ctx, id, schedule)
	return args.Error(0)
}

// MockHouseRepository is a mock implementation of HouseRepository
type MockHouseRepository struct {
	mock.Mock
}

func (m *MockHouseRepository) ExistsActiveByNumber(ctx context.Context, houseNumber string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, houseNumber, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockHouseRepository) Create(ctx context.Context, house *models.HouseDocument) error {
	args := m.Called(ctx, house)
	return args.Error(0)
}

func (m *MockHouseRepository) GetActiveByID(ctx context.Context, id uuid.UUID) (*models.HouseDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.HouseDocument), args.Error(1)
}

func (m *MockHouseRepository) LockActiveByID(ctx context.Context, id uuid.UUID) (*models.HouseDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.HouseDocument), args.Error(1)
}

func (m *MockHouseRepository) Update(ctx context.Context, house *models.HouseDocument) error {
	args := m.Called(ctx, house)
	return args.Error(0)
}

func (m *MockHouseRepository) SoftDelete(ctx context.Context, ids []uuid.UUID, deletedBy *uuid.UUID) ([]models.DeletedHouse, error) {
	args := m.Called(ctx, ids, deletedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DeletedHouse), args.Error(1)
}

func (m *MockHouseRepository) List(ctx context.Context, filter *models.HouseListFilter) ([]*models.HouseListRow, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.HouseListRow), args.Error(1)
}

// MockContainerRepository is a mock implementation of ContainerRepository
type MockContainerRepository struct {
	mock.Mock
}

func (m *MockContainerRepository) Insert(ctx context.Context, item *models.ContainerLineItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockContainerRepository) ListActiveByHouse(ctx context.Context, houseID uuid.UUID) ([]*models.ContainerLineItem, error) {
	args := m.Called(ctx, houseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ContainerLineItem), args.Error(1)
}

func (m *MockContainerRepository) SoftDeleteActiveByHouses(ctx context.Context, houseIDs []uuid.UUID) (int64, error) {
	args := m.Called(ctx, houseIDs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockContainerRepository) RestampMaster(ctx context.Context, houseID, masterID uuid.UUID) (int64, error) {
	args := m.Called(ctx, houseID, masterID)
	return args.Get(0).(int64), args.Error(1)
}

// MockChargeRepository is a mock implementation of ChargeRepository
type MockChargeRepository struct {
	mock.Mock
}

func (m *MockChargeRepository) Insert(ctx context.Context, item *models.ChargeLineItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockChargeRepository) ListActiveByHouse(ctx context.Context, houseID uuid.UUID) ([]*models.ChargeLineItem, error) {
	args := m.Called(ctx, houseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ChargeLineItem), args.Error(1)
}

func (m *MockChargeRepository) SoftDeleteActiveByHouses(ctx context.Context, houseIDs []uuid.UUID) (int64, error) {
	args := m.Called(ctx, houseIDs)
	return args.Get(0).(int64), args.Error(1)
}

// MockDirectoryRepository is a mock implementation of DirectoryRepository
type MockDirectoryRepository struct {
	mock.Mock
}

func (m *MockDirectoryRepository) FindIDByCode(ctx context.Context, kind, code string) (uuid.UUID, error) {
	args := m.Called(ctx, kind, code)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockDirectoryRepository) IsActive(ctx context.Context, kind, code string, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, kind, code, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockDirectoryRepository) FirstActiveID(ctx context.Context, kind string) (uuid.UUID, error) {
	args := m.Called(ctx, kind)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockDirectoryRepository) ListEntries(ctx context.Context, kind string) ([]models.DirectoryEntry, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DirectoryEntry), args.Error(1)
}

// MockAuditLogsRepository is a mock implementation of AuditLogsRepository
type MockAuditLogsRepository struct {
	mock.Mock
}

func (m *MockAuditLogsRepository) Create(ctx context.Context, auditLog *models.AuditLog) error {
	args := m.Called(ctx, auditLog)
	return args.Error(0)
}

func (m *MockAuditLogsRepository) ListByRecord(ctx context.Context, tableName, recordID string, limit int) ([]*models.AuditLog, error) {
	args := m.Called(ctx, tableName, recordID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}

// MockDirectoryCache is a mock implementation of caching.DirectoryCache
type MockDirectoryCache struct {
	mock.Mock
}

func (m *MockDirectoryCache) GetDirectoryID(ctx context.Context, kind, code string) (uuid.UUID, bool, error) {
	args := m.Called(ctx, kind, code)
	return args.Get(0).(uuid.UUID), args.Bool(1), args.Error(2)
}

func (m *MockDirectoryCache) SetDirectoryID(ctx context.Context, kind, code string, id uuid.UUID, ttl time.Duration) error {
	args := m.Called(ctx, kind, code, id, ttl)
	return args.Error(0)
}

func (m *MockDirectoryCache) ForgetDirectoryID(ctx context.Context, kind, code string) error {
	args := m.Called(ctx, kind, code)
	return args.Error(0)
}

func (m *MockDirectoryCache) InvalidateDirectory(ctx context.Context, kind string) error {
	args := m.Called(ctx, kind)
	return args.Error(0)
}

func (m *MockDirectoryCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockDocumentArchiver is a mock implementation of DocumentArchiver
type MockDocumentArchiver struct {
	mock.Mock
}

func (m *MockDocumentArchiver) ArchiveDeletion(ctx context.Context, manifest *DeletionManifest) (string, error) {
	args := m.Called(ctx, manifest)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentArchiver) EnsureBucketExists(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// mockStore bundles one mock per repository behind a Store that has no
// database handle, so savepoints run inline.
type mockStore struct {
	masters    *MockMasterRepository
	houses     *MockHouseRepository
	containers *MockContainerRepository
	charges    *MockChargeRepository
	directory  *MockDirectoryRepository
	auditLogs  *MockAuditLogsRepository
	store      *repositories.Store
}

func newMockStore() *mockStore {
	ms := &mockStore{
		masters:    &MockMasterRepository{},
		houses:     &MockHouseRepository{},
		containers: &MockContainerRepository{},
		charges:    &MockChargeRepository{},
		directory:  &MockDirectoryRepository{},
		auditLogs:  &MockAuditLogsRepository{},
	}
	ms.store = &repositories.Store{
		Masters:    ms.masters,
		Houses:     ms.houses,
		Containers: ms.containers,
		Charges:    ms.charges,
		Directory:  ms.directory,
		AuditLogs:  ms.auditLogs,
	}
	return ms
}

func (ms *mockStore) assertExpectations(t mock.TestingT) {
	ms.masters.AssertExpectations(t)
	ms.houses.AssertExpectations(t)
	ms.containers.AssertExpectations(t)
	ms.charges.AssertExpectations(t)
	ms.directory.AssertExpectations(t)
	ms.auditLogs.AssertExpectations(t)
}

// fakeTxManager hands the mock store to fn and records the outcome the way a
// real transaction would: commit on success, rollback otherwise.
type fakeTxManager struct {
	store     *repositories.Store
	commitErr error
	commits   int
	rollbacks int
	reads     int
}

func (f *fakeTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, store *repositories.Store) error) error {
	if err := fn(ctx, f.store); err != nil {
		f.rollbacks++
		return err
	}
	if f.commitErr != nil {
		f.rollbacks++
		return f.commitErr
	}
	f.commits++
	return nil
}

func (f *fakeTxManager) WithinReadTx(ctx context.Context, fn func(ctx context.Context, store *repositories.Store) error) error {
	f.reads++
	return fn(ctx, f.store)
}

func strPtr(s string) *string { return &s }
