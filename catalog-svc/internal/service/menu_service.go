package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"hotelmenu/catalog-svc/internal/domain"
	"hotelmenu/catalog-svc/internal/pricing"
)

// MenuService owns the admin write path for menu items: validate, recompute
// the pricing matrix, persist, invalidate the tenant's cache. Connectivity
// failures land in the offline write queue.
type MenuService struct {
	backend CatalogBackend
	cache   TenantCache
	queue   WriteQueue

	WriteTimeout  time.Duration
	ConfigTimeout time.Duration
}

func NewMenuService(backend CatalogBackend, cache TenantCache, queue WriteQueue) *MenuService {
	return &MenuService{
		backend:       backend,
		cache:         cache,
		queue:         queue,
		WriteTimeout:  30 * time.Second,
		ConfigTimeout: 5 * time.Second,
	}
}

func (s *MenuService) SaveItem(ctx context.Context, item *domain.MenuItem) error {
	if err := validateItem(item); err != nil {
		return err
	}
	if item.PricingMode == "" {
		item.PricingMode = domain.PricingModeExclusive
	}

	// The matrix is derived state; it is rebuilt on every save so stored
	// metadata can never disagree with the authored price.
	rates := s.ratesFor(ctx, item)
	metadata := pricing.BuildMatrix(item.SourcePrice(), rates, item.IncludesTax())
	item.Metadata = &metadata

	writeCtx, cancel := context.WithTimeout(ctx, s.WriteTimeout)
	defer cancel()

	var err error
	if item.ID == "" {
		err = s.backend.CreateMenuItem(writeCtx, item)
	} else {
		err = s.backend.UpdateMenuItem(writeCtx, item)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: item %s", ErrNotFound, item.ID)
		}
		if isConnectivity(err) {
			s.enqueue(ctx, domain.WriteKindMenuSave, item)
			return fmt.Errorf("%w: menu save queued for replay: %v", ErrRemoteUnavailable, err)
		}
		return err
	}

	_ = s.cache.Invalidate(ctx, s.cache.Key(domain.CacheKindMenu, item.HotelID, item.BranchID))
	return nil
}

func (s *MenuService) DeleteItem(ctx context.Context, tc domain.TenantContext, itemID string) error {
	if !tc.Valid() || itemID == "" {
		return fmt.Errorf("%w: tenant and item are required", ErrValidation)
	}

	writeCtx, cancel := context.WithTimeout(ctx, s.WriteTimeout)
	defer cancel()

	rows, err := s.backend.DeleteMenuItem(writeCtx, tc.HotelID, tc.BranchID, itemID)
	if err != nil {
		if isConnectivity(err) {
			s.enqueue(ctx, domain.WriteKindMenuDelete, domain.MenuDelete{
				HotelID: tc.HotelID, BranchID: tc.BranchID, ItemID: itemID,
			})
			return fmt.Errorf("%w: menu delete queued for replay: %v", ErrRemoteUnavailable, err)
		}
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: item %s", ErrNotFound, itemID)
	}

	_ = s.cache.Invalidate(ctx, s.cache.Key(domain.CacheKindMenu, tc.HotelID, tc.BranchID))
	return nil
}

// ratesFor merges item overrides with branch defaults. A config fetch
// failure degrades to item-level rates only; the save itself still proceeds.
func (s *MenuService) ratesFor(ctx context.Context, item *domain.MenuItem) map[domain.OrderType]domain.GstRate {
	cfgCtx, cancel := context.WithTimeout(ctx, s.ConfigTimeout)
	defer cancel()

	cfg, err := s.backend.GetGstConfig(cfgCtx)
	if err != nil {
		logrus.WithError(err).Warn("gst config unavailable, using item rates only")
		cfg = domain.GstConfig{Enabled: true, Rates: map[domain.OrderType]domain.GstRate{}}
	}
	return EffectiveRates(*item, cfg)
}

func (s *MenuService) enqueue(ctx context.Context, kind string, payload interface{}) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		logrus.WithError(err).Error("cannot encode write for offline queue")
		return
	}
	write := domain.QueuedWrite{Kind: kind, Payload: encoded, EnqueuedAt: time.Now()}
	if err := s.queue.Enqueue(ctx, write); err != nil {
		logrus.WithError(err).WithField("kind", kind).Error("failed to enqueue offline write")
		return
	}
	logrus.WithField("kind", kind).Info("write queued for offline replay")
}

func validateItem(item *domain.MenuItem) error {
	switch {
	case item == nil:
		return fmt.Errorf("%w: item is required", ErrValidation)
	case item.HotelID == "" || item.BranchID == "":
		return fmt.Errorf("%w: hotel and branch are required", ErrValidation)
	case item.Name == "":
		return fmt.Errorf("%w: item name is required", ErrValidation)
	}

	if item.PricingMode != "" && item.PricingMode != domain.PricingModeInclusive && item.PricingMode != domain.PricingModeExclusive {
		return fmt.Errorf("%w: unknown pricing mode %q", ErrValidation, item.PricingMode)
	}

	if item.HasSizes {
		if len(item.Sizes) == 0 {
			return fmt.Errorf("%w: sized item needs at least one size price", ErrValidation)
		}
		for size, amount := range item.Sizes {
			if amount <= 0 {
				return fmt.Errorf("%w: size %q needs a positive price", ErrValidation, size)
			}
		}
		return nil
	}

	if item.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrValidation)
	}
	return nil
}

var _ MenuServiceInterface = (*MenuService)(nil)
