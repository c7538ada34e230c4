package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"hotelmenu/catalog-svc/internal/domain"
)

// OrderRequest is a cart submitted for a tenant: line items by id, the sales
// channel, and the payment mode. Prices are never taken from the client;
// they are resolved server-side from the authored menu.
type OrderRequest struct {
	HotelID     string           `json:"hotel_id"`
	BranchID    string           `json:"branch_id"`
	OrderType   domain.OrderType `json:"order_type"`
	PaymentMode string           `json:"payment_mode"`
	Lines       []OrderLine      `json:"lines"`
}

type OrderLine struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
	Size     string `json:"size,omitempty"`
}

// OrderService records transactions with immutable per-line breakdown
// snapshots, invalidates the sales cache and publishes an event. A
// connectivity failure enqueues the fully-priced transaction for replay.
type OrderService struct {
	backend   CatalogBackend
	catalog   CatalogServiceInterface
	cache     TenantCache
	queue     WriteQueue
	publisher EventPublisher

	WriteTimeout time.Duration
}

func NewOrderService(backend CatalogBackend, catalog CatalogServiceInterface, cache TenantCache, queue WriteQueue, publisher EventPublisher) *OrderService {
	return &OrderService{
		backend:      backend,
		catalog:      catalog,
		cache:        cache,
		queue:        queue,
		publisher:    publisher,
		WriteTimeout: 30 * time.Second,
	}
}

func (s *OrderService) PlaceOrder(ctx context.Context, req *OrderRequest) (*domain.Transaction, error) {
	if err := validateOrder(req); err != nil {
		return nil, err
	}

	tc := domain.TenantContext{HotelID: req.HotelID, BranchID: req.BranchID}

	// The menu read rides the cache and its fallback chain, so a flaky
	// backend does not stop pricing an order from known items.
	items, err := s.catalog.Menu(ctx, tc)
	if err != nil {
		return nil, err
	}
	// An empty menu means the fallback chain bottomed out (or the tenant has
	// nothing to sell); either way no line can be priced, and blaming the
	// client with a validation error would be wrong.
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no menu available to price order", ErrRemoteUnavailable)
	}
	byID := make(map[string]domain.MenuItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	cfg, err := s.catalog.GstConfig(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	txn := &domain.Transaction{
		HotelID:     req.HotelID,
		BranchID:    req.BranchID,
		Date:        now.Format("2006-01-02"),
		DateTime:    now,
		OrderType:   req.OrderType,
		PaymentMode: req.PaymentMode,
	}

	for _, line := range req.Lines {
		item, ok := byID[line.ItemID]
		if !ok {
			return nil, fmt.Errorf("%w: unknown item %s", ErrValidation, line.ItemID)
		}
		if item.HotelID != req.HotelID || item.BranchID != req.BranchID {
			logrus.WithFields(logrus.Fields{"item_id": item.ID, "hotel_id": req.HotelID}).
				Warn("order line references another tenant's item")
			return nil, ErrTenantMismatch
		}
		if item.HasSizes && line.Size == "" {
			return nil, fmt.Errorf("%w: item %s requires a size", ErrValidation, item.ID)
		}

		breakdown, err := BreakdownFor(item, req.OrderType, line.Size, cfg)
		if err != nil {
			return nil, err
		}

		qty := float64(line.Quantity)
		txn.Items = append(txn.Items, domain.TransactionItem{
			ItemID:     item.ID,
			ItemName:   item.Name,
			Price:      breakdown.FinalPrice,
			BasePrice:  breakdown.BasePrice,
			FinalPrice: breakdown.FinalPrice,
			CgstAmount: breakdown.CgstAmount,
			SgstAmount: breakdown.SgstAmount,
			Quantity:   line.Quantity,
			Size:       line.Size,
			Subtotal:   round2(breakdown.FinalPrice * qty),
		})
		txn.TotalBaseAmount += breakdown.BasePrice * qty
		txn.TotalCgstAmount += breakdown.CgstAmount * qty
		txn.TotalSgstAmount += breakdown.SgstAmount * qty
		txn.Total += breakdown.FinalPrice * qty
	}

	txn.TotalBaseAmount = round2(txn.TotalBaseAmount)
	txn.TotalCgstAmount = round2(txn.TotalCgstAmount)
	txn.TotalSgstAmount = round2(txn.TotalSgstAmount)
	txn.Total = round2(txn.Total)

	writeCtx, cancel := context.WithTimeout(ctx, s.WriteTimeout)
	defer cancel()

	if err := s.backend.CreateTransaction(writeCtx, txn); err != nil {
		if isConnectivity(err) {
			s.enqueueOrder(ctx, txn)
			return txn, fmt.Errorf("%w: order queued for replay: %v", ErrRemoteUnavailable, err)
		}
		return nil, err
	}

	_ = s.cache.Invalidate(ctx, salesKey(s.cache, txn.HotelID, txn.BranchID, txn.Date))

	if s.publisher != nil {
		_ = s.publisher.PublishEvent(ctx, domain.CatalogEvent{
			Type:          domain.EventOrderRecorded,
			HotelID:       txn.HotelID,
			BranchID:      txn.BranchID,
			TransactionID: txn.ID,
			OrderType:     txn.OrderType,
			Total:         txn.Total,
			Timestamp:     now,
		})
	}

	return txn, nil
}

func (s *OrderService) enqueueOrder(ctx context.Context, txn *domain.Transaction) {
	encoded, err := json.Marshal(txn)
	if err != nil {
		logrus.WithError(err).Error("cannot encode order for offline queue")
		return
	}
	write := domain.QueuedWrite{Kind: domain.WriteKindOrder, Payload: encoded, EnqueuedAt: time.Now()}
	if err := s.queue.Enqueue(ctx, write); err != nil {
		logrus.WithError(err).Error("failed to enqueue order for replay")
		return
	}
	logrus.WithFields(logrus.Fields{"hotel_id": txn.HotelID, "branch_id": txn.BranchID}).
		Info("order queued for offline replay")
}

func validateOrder(req *OrderRequest) error {
	switch {
	case req == nil:
		return fmt.Errorf("%w: order is required", ErrValidation)
	case req.HotelID == "" || req.BranchID == "":
		return fmt.Errorf("%w: hotel and branch are required", ErrValidation)
	case len(req.Lines) == 0:
		return fmt.Errorf("%w: order needs at least one line", ErrValidation)
	}

	if !validOrderType(req.OrderType) {
		return fmt.Errorf("%w: unknown order type %q", ErrValidation, req.OrderType)
	}
	for _, line := range req.Lines {
		if line.ItemID == "" || line.Quantity <= 0 {
			return fmt.Errorf("%w: each line needs an item and a positive quantity", ErrValidation)
		}
	}
	return nil
}

func validOrderType(orderType domain.OrderType) bool {
	for _, known := range domain.OrderTypes {
		if known == orderType {
			return true
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

var _ OrderServiceInterface = (*OrderService)(nil)
