// Package mocks provides testify mocks for the service-layer interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"hotelmenu/catalog-svc/internal/domain"
)

type testingT interface {
	Cleanup(func())
	FailNow()
	Errorf(format string, args ...interface{})
	Logf(format string, args ...interface{})
}

type CatalogBackend struct {
	mock.Mock
}

func NewCatalogBackend(t testingT) *CatalogBackend {
	m := &CatalogBackend{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *CatalogBackend) ListHotels(ctx context.Context) ([]domain.Hotel, error) {
	args := m.Called(ctx)
	hotels, _ := args.Get(0).([]domain.Hotel)
	return hotels, args.Error(1)
}

func (m *CatalogBackend) ListBranches(ctx context.Context, hotelID string) ([]domain.Branch, error) {
	args := m.Called(ctx, hotelID)
	branches, _ := args.Get(0).([]domain.Branch)
	return branches, args.Error(1)
}

func (m *CatalogBackend) ListAllBranches(ctx context.Context) ([]domain.Branch, error) {
	args := m.Called(ctx)
	branches, _ := args.Get(0).([]domain.Branch)
	return branches, args.Error(1)
}

func (m *CatalogBackend) GetBranch(ctx context.Context, hotelID, branchID string) (*domain.Branch, error) {
	args := m.Called(ctx, hotelID, branchID)
	branch, _ := args.Get(0).(*domain.Branch)
	return branch, args.Error(1)
}

func (m *CatalogBackend) GetBranchQRCode(ctx context.Context, hotelID, branchID string) ([]byte, error) {
	args := m.Called(ctx, hotelID, branchID)
	qr, _ := args.Get(0).([]byte)
	return qr, args.Error(1)
}

func (m *CatalogBackend) SaveBranchQRCode(ctx context.Context, hotelID, branchID string, qr []byte) error {
	return m.Called(ctx, hotelID, branchID, qr).Error(0)
}

func (m *CatalogBackend) ListMenuItems(ctx context.Context, hotelID, branchID string) ([]domain.MenuItem, error) {
	args := m.Called(ctx, hotelID, branchID)
	items, _ := args.Get(0).([]domain.MenuItem)
	return items, args.Error(1)
}

func (m *CatalogBackend) GetMenuItem(ctx context.Context, hotelID, branchID, itemID string) (*domain.MenuItem, error) {
	args := m.Called(ctx, hotelID, branchID, itemID)
	item, _ := args.Get(0).(*domain.MenuItem)
	return item, args.Error(1)
}

func (m *CatalogBackend) CreateMenuItem(ctx context.Context, item *domain.MenuItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *CatalogBackend) UpdateMenuItem(ctx context.Context, item *domain.MenuItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *CatalogBackend) DeleteMenuItem(ctx context.Context, hotelID, branchID, itemID string) (int64, error) {
	args := m.Called(ctx, hotelID, branchID, itemID)
	return int64(args.Int(0)), args.Error(1)
}

func (m *CatalogBackend) CreateTransaction(ctx context.Context, txn *domain.Transaction) error {
	return m.Called(ctx, txn).Error(0)
}

func (m *CatalogBackend) ListTransactions(ctx context.Context, hotelID, branchID, date string) ([]domain.Transaction, error) {
	args := m.Called(ctx, hotelID, branchID, date)
	txns, _ := args.Get(0).([]domain.Transaction)
	return txns, args.Error(1)
}

func (m *CatalogBackend) GetGstConfig(ctx context.Context) (domain.GstConfig, error) {
	args := m.Called(ctx)
	cfg, _ := args.Get(0).(domain.GstConfig)
	return cfg, args.Error(1)
}

type TenantCache struct {
	mock.Mock
}

func NewTenantCache(t testingT) *TenantCache {
	m := &TenantCache{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *TenantCache) Key(kind, hotelID, branchID string) string {
	return "catalog:" + kind + ":" + hotelID + ":" + branchID
}

func (m *TenantCache) Get(ctx context.Context, key string, out interface{}) (bool, error) {
	args := m.Called(ctx, key, out)
	return args.Bool(0), args.Error(1)
}

func (m *TenantCache) GetStale(ctx context.Context, key string, out interface{}) (bool, error) {
	args := m.Called(ctx, key, out)
	return args.Bool(0), args.Error(1)
}

func (m *TenantCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *TenantCache) Invalidate(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *TenantCache) SaveSnapshot(ctx context.Context, key string, value interface{}) error {
	return m.Called(ctx, key, value).Error(0)
}

func (m *TenantCache) Snapshot(ctx context.Context, key string, out interface{}) (bool, error) {
	args := m.Called(ctx, key, out)
	return args.Bool(0), args.Error(1)
}

type WriteQueue struct {
	mock.Mock
}

func NewWriteQueue(t testingT) *WriteQueue {
	m := &WriteQueue{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *WriteQueue) Enqueue(ctx context.Context, write domain.QueuedWrite) error {
	return m.Called(ctx, write).Error(0)
}

func (m *WriteQueue) Entries(ctx context.Context) ([]domain.QueueEntry, error) {
	args := m.Called(ctx)
	entries, _ := args.Get(0).([]domain.QueueEntry)
	return entries, args.Error(1)
}

func (m *WriteQueue) Remove(ctx context.Context, raw string) error {
	return m.Called(ctx, raw).Error(0)
}

type EventPublisher struct {
	mock.Mock
}

func NewEventPublisher(t testingT) *EventPublisher {
	m := &EventPublisher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *EventPublisher) PublishEvent(ctx context.Context, event domain.CatalogEvent) error {
	return m.Called(ctx, event).Error(0)
}

type QRGenerator struct {
	mock.Mock
}

func NewQRGenerator(t testingT) *QRGenerator {
	m := &QRGenerator{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *QRGenerator) Generate(target string) ([]byte, error) {
	args := m.Called(target)
	qr, _ := args.Get(0).([]byte)
	return qr, args.Error(1)
}
