package service

import (
	"context"
	"time"

	"hotelmenu/catalog-svc/internal/domain"
	"hotelmenu/catalog-svc/internal/location"
	"hotelmenu/catalog-svc/internal/tenant"
)

// CatalogBackend is the single capability interface every backing store
// implements. It is injected once at startup; call sites never probe for
// alternative backends.
type CatalogBackend interface {
	ListHotels(ctx context.Context) ([]domain.Hotel, error)
	ListBranches(ctx context.Context, hotelID string) ([]domain.Branch, error)
	ListAllBranches(ctx context.Context) ([]domain.Branch, error)
	GetBranch(ctx context.Context, hotelID, branchID string) (*domain.Branch, error)
	GetBranchQRCode(ctx context.Context, hotelID, branchID string) ([]byte, error)
	SaveBranchQRCode(ctx context.Context, hotelID, branchID string, qr []byte) error
	ListMenuItems(ctx context.Context, hotelID, branchID string) ([]domain.MenuItem, error)
	GetMenuItem(ctx context.Context, hotelID, branchID, itemID string) (*domain.MenuItem, error)
	CreateMenuItem(ctx context.Context, item *domain.MenuItem) error
	UpdateMenuItem(ctx context.Context, item *domain.MenuItem) error
	DeleteMenuItem(ctx context.Context, hotelID, branchID, itemID string) (int64, error)
	CreateTransaction(ctx context.Context, txn *domain.Transaction) error
	ListTransactions(ctx context.Context, hotelID, branchID, date string) ([]domain.Transaction, error)
	GetGstConfig(ctx context.Context) (domain.GstConfig, error)
}

// TenantCache is the tenant-scoped TTL cache plus its snapshot tier.
type TenantCache interface {
	Key(kind, hotelID, branchID string) string
	Get(ctx context.Context, key string, out interface{}) (bool, error)
	GetStale(ctx context.Context, key string, out interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
	SaveSnapshot(ctx context.Context, key string, value interface{}) error
	Snapshot(ctx context.Context, key string, out interface{}) (bool, error)
}

// WriteQueue holds failed remote writes for at-least-once replay.
type WriteQueue interface {
	Enqueue(ctx context.Context, write domain.QueuedWrite) error
	Entries(ctx context.Context) ([]domain.QueueEntry, error)
	Remove(ctx context.Context, raw string) error
}

// EventPublisher emits catalog events; implementations may be nil at wiring
// time and every call site must tolerate that.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event domain.CatalogEvent) error
}

// QRGenerator renders a target URL as a QR image.
type QRGenerator interface {
	Generate(target string) ([]byte, error)
}

type CatalogServiceInterface interface {
	Hotels(ctx context.Context) ([]domain.Hotel, error)
	Branches(ctx context.Context, hotelID string) ([]domain.Branch, error)
	Menu(ctx context.Context, tc domain.TenantContext) ([]domain.MenuItem, error)
	Sales(ctx context.Context, tc domain.TenantContext, date string) ([]domain.Transaction, error)
	GstConfig(ctx context.Context) (domain.GstConfig, error)
	Resolve(ctx context.Context, path, rawQuery, fragment, fallbackHotelID, fallbackBranchID string) (ResolveResult, error)
	ItemBreakdown(ctx context.Context, tc domain.TenantContext, itemID string, orderType domain.OrderType, sizeKey string) (domain.PriceBreakdown, error)
	BranchQR(ctx context.Context, tc domain.TenantContext) ([]byte, error)
}

type MenuServiceInterface interface {
	SaveItem(ctx context.Context, item *domain.MenuItem) error
	DeleteItem(ctx context.Context, tc domain.TenantContext, itemID string) error
}

type OrderServiceInterface interface {
	PlaceOrder(ctx context.Context, req *OrderRequest) (*domain.Transaction, error)
}

type ReplayerInterface interface {
	ReplayAll(ctx context.Context) (replayed, remaining int, err error)
}

// ResolveResult is what a navigation location resolves to: the parsed keys,
// the selection verdict, and the hotel-scoped selectable branch list.
type ResolveResult struct {
	Location  location.Info    `json:"location"`
	Selection tenant.Selection `json:"selection"`
	Branches  []domain.Branch  `json:"branches"`
}
