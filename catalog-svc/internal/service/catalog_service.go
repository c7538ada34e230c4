package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"hotelmenu/catalog-svc/internal/domain"
	"hotelmenu/catalog-svc/internal/location"
	"hotelmenu/catalog-svc/internal/pricing"
	"hotelmenu/catalog-svc/internal/tenant"
)

// CatalogService serves all tenant-scoped reads. Every fetch goes cache
// first, then the backend under an explicit timeout; a connectivity failure
// takes the fixed fallback chain stale cache -> snapshot -> empty.
type CatalogService struct {
	backend CatalogBackend
	cache   TenantCache
	qr      QRGenerator

	BranchTTL time.Duration
	MenuTTL   time.Duration
	SalesTTL  time.Duration
	ConfigTTL time.Duration

	FetchTimeout  time.Duration
	ConfigTimeout time.Duration
}

func NewCatalogService(backend CatalogBackend, cache TenantCache, qr QRGenerator) *CatalogService {
	return &CatalogService{
		backend:       backend,
		cache:         cache,
		qr:            qr,
		BranchTTL:     5 * time.Minute,
		MenuTTL:       3 * time.Minute,
		SalesTTL:      time.Minute,
		ConfigTTL:     time.Minute,
		FetchTimeout:  30 * time.Second,
		ConfigTimeout: 5 * time.Second,
	}
}

func (s *CatalogService) Hotels(ctx context.Context) ([]domain.Hotel, error) {
	key := s.cache.Key(domain.CacheKindHotels, "all", "")

	var hotels []domain.Hotel
	if ok, _ := s.cache.Get(ctx, key, &hotels); ok {
		return hotels, nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.FetchTimeout)
	defer cancel()

	hotels, err := s.backend.ListHotels(fetchCtx)
	if err != nil {
		return fallbackHotels(ctx, s.cache, key, err)
	}

	_ = s.cache.Set(ctx, key, hotels, s.BranchTTL)
	_ = s.cache.SaveSnapshot(ctx, key, hotels)
	return hotels, nil
}

func (s *CatalogService) Branches(ctx context.Context, hotelID string) ([]domain.Branch, error) {
	if hotelID == "" {
		return nil, fmt.Errorf("%w: hotel id is required", ErrValidation)
	}
	key := s.cache.Key(domain.CacheKindBranches, hotelID, "")

	var branches []domain.Branch
	if ok, _ := s.cache.Get(ctx, key, &branches); ok {
		return branches, nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.FetchTimeout)
	defer cancel()

	branches, err := s.backend.ListBranches(fetchCtx, hotelID)
	if err != nil {
		return fallbackBranches(ctx, s.cache, key, err)
	}

	// Defense in depth: the query is already scoped, but a foreign branch in
	// the result is dropped rather than displayed or cached.
	scoped := branches[:0]
	for _, b := range branches {
		if b.HotelID != hotelID {
			logrus.WithFields(logrus.Fields{"hotel_id": hotelID, "branch_id": b.ID}).
				Warn("dropping branch from another hotel")
			continue
		}
		scoped = append(scoped, b)
	}

	_ = s.cache.Set(ctx, key, scoped, s.BranchTTL)
	_ = s.cache.SaveSnapshot(ctx, key, scoped)
	return scoped, nil
}

// allBranches spans every hotel and exists only to feed the resolver; it is
// never handed to display paths unfiltered.
func (s *CatalogService) allBranches(ctx context.Context) ([]domain.Branch, error) {
	key := s.cache.Key(domain.CacheKindBranches, "all", "")

	var branches []domain.Branch
	if ok, _ := s.cache.Get(ctx, key, &branches); ok {
		return branches, nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.FetchTimeout)
	defer cancel()

	branches, err := s.backend.ListAllBranches(fetchCtx)
	if err != nil {
		return fallbackBranches(ctx, s.cache, key, err)
	}

	_ = s.cache.Set(ctx, key, branches, s.BranchTTL)
	_ = s.cache.SaveSnapshot(ctx, key, branches)
	return branches, nil
}

func (s *CatalogService) Menu(ctx context.Context, tc domain.TenantContext) ([]domain.MenuItem, error) {
	if !tc.Valid() {
		return nil, fmt.Errorf("%w: hotel and branch are required", ErrValidation)
	}
	key := s.cache.Key(domain.CacheKindMenu, tc.HotelID, tc.BranchID)

	var items []domain.MenuItem
	if ok, _ := s.cache.Get(ctx, key, &items); ok {
		return items, nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.FetchTimeout)
	defer cancel()

	items, err := s.backend.ListMenuItems(fetchCtx, tc.HotelID, tc.BranchID)
	if err != nil {
		empty, fbErr := fallbackMenu(ctx, s.cache, key, err)
		return empty, fbErr
	}

	scoped := items[:0]
	for _, item := range items {
		if item.HotelID != tc.HotelID || item.BranchID != tc.BranchID {
			logrus.WithFields(logrus.Fields{
				"hotel_id": tc.HotelID, "branch_id": tc.BranchID, "item_id": item.ID,
			}).Warn("dropping menu item from another tenant")
			continue
		}
		scoped = append(scoped, item)
	}

	_ = s.cache.Set(ctx, key, scoped, s.MenuTTL)
	_ = s.cache.SaveSnapshot(ctx, key, scoped)
	return scoped, nil
}

func (s *CatalogService) Sales(ctx context.Context, tc domain.TenantContext, date string) ([]domain.Transaction, error) {
	if !tc.Valid() {
		return nil, fmt.Errorf("%w: hotel and branch are required", ErrValidation)
	}
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	key := salesKey(s.cache, tc.HotelID, tc.BranchID, date)

	var txns []domain.Transaction
	if ok, _ := s.cache.Get(ctx, key, &txns); ok {
		return txns, nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.FetchTimeout)
	defer cancel()

	txns, err := s.backend.ListTransactions(fetchCtx, tc.HotelID, tc.BranchID, date)
	if err != nil {
		empty, fbErr := fallbackSales(ctx, s.cache, key, err)
		return empty, fbErr
	}

	scoped := txns[:0]
	for _, txn := range txns {
		if txn.HotelID != tc.HotelID || txn.BranchID != tc.BranchID {
			logrus.WithFields(logrus.Fields{
				"hotel_id": tc.HotelID, "branch_id": tc.BranchID, "transaction_id": txn.ID,
			}).Warn("dropping transaction from another tenant")
			continue
		}
		scoped = append(scoped, txn)
	}

	_ = s.cache.Set(ctx, key, scoped, s.SalesTTL)
	_ = s.cache.SaveSnapshot(ctx, key, scoped)
	return scoped, nil
}

func (s *CatalogService) GstConfig(ctx context.Context) (domain.GstConfig, error) {
	key := s.cache.Key(domain.CacheKindConfig, "global", "")

	var cfg domain.GstConfig
	if ok, _ := s.cache.Get(ctx, key, &cfg); ok {
		return cfg, nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.ConfigTimeout)
	defer cancel()

	cfg, err := s.backend.GetGstConfig(fetchCtx)
	if err != nil {
		logrus.WithError(err).Warn("gst config fetch failed, falling back")
		if ok, _ := s.cache.GetStale(ctx, key, &cfg); ok {
			return cfg, nil
		}
		if ok, _ := s.cache.Snapshot(ctx, key, &cfg); ok {
			return cfg, nil
		}
		if isConnectivity(err) {
			// Zero rates with GST enabled: prices pass through untaxed
			// rather than blocking the menu.
			return domain.GstConfig{Enabled: true, Rates: map[domain.OrderType]domain.GstRate{}}, nil
		}
		return domain.GstConfig{}, err
	}

	_ = s.cache.Set(ctx, key, cfg, s.ConfigTTL)
	_ = s.cache.SaveSnapshot(ctx, key, cfg)
	return cfg, nil
}

// Resolve turns a raw navigation location into the active tenant selection
// plus the branches selectable under it.
func (s *CatalogService) Resolve(ctx context.Context, path, rawQuery, fragment, fallbackHotelID, fallbackBranchID string) (ResolveResult, error) {
	loc := location.Parse(path, rawQuery, fragment)

	branches, err := s.allBranches(ctx)
	if err != nil {
		return ResolveResult{Location: loc}, err
	}
	hotels, err := s.Hotels(ctx)
	if err != nil {
		return ResolveResult{Location: loc}, err
	}

	selection := tenant.ResolveSelection(branches, hotels, loc, fallbackHotelID, fallbackBranchID)
	return ResolveResult{
		Location:  loc,
		Selection: selection,
		Branches:  tenant.FilterByHotel(branches, selection.HotelID),
	}, nil
}

// ItemBreakdown returns the tax breakdown shown for one (item, order type,
// size) combination, honoring the GST-disabled override.
func (s *CatalogService) ItemBreakdown(ctx context.Context, tc domain.TenantContext, itemID string, orderType domain.OrderType, sizeKey string) (domain.PriceBreakdown, error) {
	if !tc.Valid() || itemID == "" {
		return domain.PriceBreakdown{}, fmt.Errorf("%w: tenant and item are required", ErrValidation)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.FetchTimeout)
	defer cancel()

	item, err := s.backend.GetMenuItem(fetchCtx, tc.HotelID, tc.BranchID, itemID)
	if err != nil {
		return domain.PriceBreakdown{}, fmt.Errorf("%w: item %s", ErrNotFound, itemID)
	}
	if item.HotelID != tc.HotelID || item.BranchID != tc.BranchID {
		return domain.PriceBreakdown{}, ErrTenantMismatch
	}

	cfg, err := s.GstConfig(ctx)
	if err != nil {
		return domain.PriceBreakdown{}, err
	}

	return BreakdownFor(*item, orderType, sizeKey, cfg)
}

// BranchQR returns the branch's QR image, generating and persisting it on
// first use.
func (s *CatalogService) BranchQR(ctx context.Context, tc domain.TenantContext) ([]byte, error) {
	if !tc.Valid() {
		return nil, fmt.Errorf("%w: hotel and branch are required", ErrValidation)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.FetchTimeout)
	defer cancel()

	if qr, err := s.backend.GetBranchQRCode(fetchCtx, tc.HotelID, tc.BranchID); err == nil && len(qr) > 0 {
		return qr, nil
	}

	branch, err := s.backend.GetBranch(fetchCtx, tc.HotelID, tc.BranchID)
	if err != nil {
		return nil, fmt.Errorf("%w: branch %s", ErrNotFound, tc.BranchID)
	}
	if s.qr == nil {
		return nil, fmt.Errorf("qr generation is not configured")
	}

	target := branch.UserURL
	if target == "" {
		target = "/" + branch.HotelID + "/" + branch.Slug
	}

	qr, err := s.qr.Generate(target)
	if err != nil {
		return nil, err
	}
	if saveErr := s.backend.SaveBranchQRCode(fetchCtx, tc.HotelID, tc.BranchID, qr); saveErr != nil {
		logrus.WithError(saveErr).Warn("failed to persist branch qr code")
	}
	return qr, nil
}

// BreakdownFor resolves the displayed breakdown for an item. Cached metadata
// is only trusted when its hash still matches the authored inputs; anything
// else recomputes from the source price.
func BreakdownFor(item domain.MenuItem, orderType domain.OrderType, sizeKey string, cfg domain.GstConfig) (domain.PriceBreakdown, error) {
	source := item.SourcePrice()
	amount, ok := pricing.SourceAmount(source, sizeKey)
	if !ok {
		return domain.PriceBreakdown{}, fmt.Errorf("%w: unknown size %q", ErrValidation, sizeKey)
	}

	if !cfg.Enabled {
		return pricing.TaxFree(amount, item.IncludesTax()), nil
	}

	rates := EffectiveRates(item, cfg)
	if item.Metadata != nil && item.Metadata.SourceHash == pricing.SourceHash(source, rates, item.IncludesTax()) {
		if breakdown := pricing.FromMetadata(item.Metadata, orderType, sizeKey); breakdown != nil {
			return *breakdown, nil
		}
	}

	rate := rates[orderType]
	return pricing.Calculate(pricing.CalcInput{
		Amount:         amount,
		CgstPercentage: rate.CgstPercent,
		SgstPercentage: rate.SgstPercent,
		IncludesTax:    item.IncludesTax(),
	}), nil
}

// EffectiveRates merges per-item overrides with the branch-level defaults. A
// fully zero item rate counts as unset.
func EffectiveRates(item domain.MenuItem, cfg domain.GstConfig) map[domain.OrderType]domain.GstRate {
	rates := make(map[domain.OrderType]domain.GstRate, len(domain.OrderTypes))
	for _, orderType := range domain.OrderTypes {
		rate := item.Gst[orderType]
		if rate.Total() == 0 {
			rate = cfg.Rates[orderType]
		}
		rates[orderType] = rate
	}
	return rates
}

// salesKey appends the date to the tenant-scoped sales key. Reads and the
// invalidation on order placement must build the key the same way or the
// invalidation deletes nothing.
func salesKey(cache TenantCache, hotelID, branchID, date string) string {
	return cache.Key(domain.CacheKindSales, hotelID, branchID) + ":" + date
}

func fallbackHotels(ctx context.Context, cache TenantCache, key string, cause error) ([]domain.Hotel, error) {
	logrus.WithError(cause).Warn("hotel list fetch failed, falling back")
	var stale []domain.Hotel
	if ok, _ := cache.GetStale(ctx, key, &stale); ok {
		return stale, nil
	}
	if ok, _ := cache.Snapshot(ctx, key, &stale); ok {
		return stale, nil
	}
	if isConnectivity(cause) {
		return []domain.Hotel{}, nil
	}
	return nil, cause
}

func fallbackBranches(ctx context.Context, cache TenantCache, key string, cause error) ([]domain.Branch, error) {
	logrus.WithError(cause).Warn("branch list fetch failed, falling back")
	var stale []domain.Branch
	if ok, _ := cache.GetStale(ctx, key, &stale); ok {
		return stale, nil
	}
	if ok, _ := cache.Snapshot(ctx, key, &stale); ok {
		return stale, nil
	}
	if isConnectivity(cause) {
		return []domain.Branch{}, nil
	}
	return nil, cause
}

func fallbackMenu(ctx context.Context, cache TenantCache, key string, cause error) ([]domain.MenuItem, error) {
	logrus.WithError(cause).Warn("menu fetch failed, falling back")
	var stale []domain.MenuItem
	if ok, _ := cache.GetStale(ctx, key, &stale); ok {
		return stale, nil
	}
	if ok, _ := cache.Snapshot(ctx, key, &stale); ok {
		return stale, nil
	}
	if isConnectivity(cause) {
		return []domain.MenuItem{}, nil
	}
	return nil, cause
}

func fallbackSales(ctx context.Context, cache TenantCache, key string, cause error) ([]domain.Transaction, error) {
	logrus.WithError(cause).Warn("sales fetch failed, falling back")
	var stale []domain.Transaction
	if ok, _ := cache.GetStale(ctx, key, &stale); ok {
		return stale, nil
	}
	if ok, _ := cache.Snapshot(ctx, key, &stale); ok {
		return stale, nil
	}
	if isConnectivity(cause) {
		return []domain.Transaction{}, nil
	}
	return nil, cause
}

var _ CatalogServiceInterface = (*CatalogService)(nil)
