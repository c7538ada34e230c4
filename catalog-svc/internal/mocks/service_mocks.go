package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"hotelmenu/catalog-svc/internal/domain"
	"hotelmenu/catalog-svc/internal/service"
)

type CatalogService struct {
	mock.Mock
}

func NewCatalogService(t testingT) *CatalogService {
	m := &CatalogService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *CatalogService) Hotels(ctx context.Context) ([]domain.Hotel, error) {
	args := m.Called(ctx)
	hotels, _ := args.Get(0).([]domain.Hotel)
	return hotels, args.Error(1)
}

func (m *CatalogService) Branches(ctx context.Context, hotelID string) ([]domain.Branch, error) {
	args := m.Called(ctx, hotelID)
	branches, _ := args.Get(0).([]domain.Branch)
	return branches, args.Error(1)
}

func (m *CatalogService) Menu(ctx context.Context, tc domain.TenantContext) ([]domain.MenuItem, error) {
	args := m.Called(ctx, tc)
	items, _ := args.Get(0).([]domain.MenuItem)
	return items, args.Error(1)
}

func (m *CatalogService) Sales(ctx context.Context, tc domain.TenantContext, date string) ([]domain.Transaction, error) {
	args := m.Called(ctx, tc, date)
	txns, _ := args.Get(0).([]domain.Transaction)
	return txns, args.Error(1)
}

func (m *CatalogService) GstConfig(ctx context.Context) (domain.GstConfig, error) {
	args := m.Called(ctx)
	cfg, _ := args.Get(0).(domain.GstConfig)
	return cfg, args.Error(1)
}

func (m *CatalogService) Resolve(ctx context.Context, path, rawQuery, fragment, fallbackHotelID, fallbackBranchID string) (service.ResolveResult, error) {
	args := m.Called(ctx, path, rawQuery, fragment, fallbackHotelID, fallbackBranchID)
	result, _ := args.Get(0).(service.ResolveResult)
	return result, args.Error(1)
}

func (m *CatalogService) ItemBreakdown(ctx context.Context, tc domain.TenantContext, itemID string, orderType domain.OrderType, sizeKey string) (domain.PriceBreakdown, error) {
	args := m.Called(ctx, tc, itemID, orderType, sizeKey)
	breakdown, _ := args.Get(0).(domain.PriceBreakdown)
	return breakdown, args.Error(1)
}

func (m *CatalogService) BranchQR(ctx context.Context, tc domain.TenantContext) ([]byte, error) {
	args := m.Called(ctx, tc)
	qr, _ := args.Get(0).([]byte)
	return qr, args.Error(1)
}

type MenuService struct {
	mock.Mock
}

func NewMenuService(t testingT) *MenuService {
	m := &MenuService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MenuService) SaveItem(ctx context.Context, item *domain.MenuItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MenuService) DeleteItem(ctx context.Context, tc domain.TenantContext, itemID string) error {
	return m.Called(ctx, tc, itemID).Error(0)
}

type OrderService struct {
	mock.Mock
}

func NewOrderService(t testingT) *OrderService {
	m := &OrderService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *OrderService) PlaceOrder(ctx context.Context, req *service.OrderRequest) (*domain.Transaction, error) {
	args := m.Called(ctx, req)
	txn, _ := args.Get(0).(*domain.Transaction)
	return txn, args.Error(1)
}

type Replayer struct {
	mock.Mock
}

func NewReplayer(t testingT) *Replayer {
	m := &Replayer{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *Replayer) ReplayAll(ctx context.Context) (int, int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Int(1), args.Error(2)
}
