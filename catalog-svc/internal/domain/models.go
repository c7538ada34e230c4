package domain

import (
	"encoding/json"
	"time"
)

// OrderType is the sales channel a price applies to. GST rates differ per channel.
type OrderType string

const (
	OrderTypeDining      OrderType = "dining"
	OrderTypeTakeaway    OrderType = "takeaway"
	OrderTypeOnlineOrder OrderType = "online_order"
)

// OrderTypes lists every channel in matrix-build order.
var OrderTypes = []OrderType{OrderTypeDining, OrderTypeTakeaway, OrderTypeOnlineOrder}

// DefaultSizeKey is the matrix slot used for items without sizes.
const DefaultSizeKey = "default"

// Cache resource kinds. The kind is part of the composite cache key, so one
// tenant's invalidation can never touch another tenant's entries.
const (
	CacheKindHotels   = "hotels"
	CacheKindBranches = "branches"
	CacheKindMenu     = "menu"
	CacheKindSales    = "sales"
	CacheKindConfig   = "config"
)

type Hotel struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Branch belongs to exactly one hotel. Slug and the URL fields are routing
// aliases for ID; ID stays authoritative for every isolation check.
type Branch struct {
	ID        string    `json:"id"`
	HotelID   string    `json:"hotel_id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	QRCodeURL string    `json:"qr_code_url"`
	AdminURL  string    `json:"admin_url"`
	UserURL   string    `json:"user_url"`
	CreatedAt time.Time `json:"created_at"`
}

// GstRate is one channel's CGST/SGST percentage pair.
type GstRate struct {
	CgstPercent float64 `json:"cgst_percent"`
	SgstPercent float64 `json:"sgst_percent"`
}

func (r GstRate) Total() float64 {
	return r.CgstPercent + r.SgstPercent
}

// GstConfig is the branch-level tax configuration read from the config table.
type GstConfig struct {
	Enabled       bool                  `json:"gst_enabled"`
	ShowTaxOnBill bool                  `json:"gst_show_tax_on_bill"`
	Rates         map[OrderType]GstRate `json:"rates"`
}

// PricingMode records whether the authored price contains tax.
const (
	PricingModeInclusive = "inclusive"
	PricingModeExclusive = "exclusive"
)

// SourcePrice is the authored price of an item: a single default amount or a
// per-size map, never both.
type SourcePrice struct {
	Default float64            `json:"default,omitempty"`
	Sizes   map[string]float64 `json:"sizes,omitempty"`
}

// PriceBreakdown is a derived value, never a source of truth. It is persisted
// only as an immutable snapshot on recorded transaction lines.
type PriceBreakdown struct {
	BasePrice        float64 `json:"base_price"`
	CgstAmount       float64 `json:"cgst_amount"`
	SgstAmount       float64 `json:"sgst_amount"`
	GstValue         float64 `json:"gst_value"`
	FinalPrice       float64 `json:"final_price"`
	CgstPercentage   float64 `json:"cgst_percentage"`
	SgstPercentage   float64 `json:"sgst_percentage"`
	PriceIncludesTax bool    `json:"price_includes_tax"`
}

// PricingMetadata caches the breakdown matrix for an item. SourceHash ties the
// matrix to the authored inputs that produced it; a mismatch means the matrix
// is stale and must be recomputed, never trusted.
type PricingMetadata struct {
	SourcePrice SourcePrice                           `json:"source_price"`
	Matrix      map[OrderType]map[string]PriceBreakdown `json:"matrix"`
	SourceHash  string                                `json:"source_hash"`
}

type MenuItem struct {
	ID           string                `json:"id"`
	HotelID      string                `json:"hotel_id"`
	BranchID     string                `json:"branch_id"`
	Name         string                `json:"name"`
	Category     string                `json:"category"`
	Price        float64               `json:"price"`
	HasSizes     bool                  `json:"has_sizes"`
	Sizes        map[string]float64    `json:"sizes,omitempty"`
	Availability bool                  `json:"availability"`
	PricingMode  string                `json:"pricing_mode"`
	Metadata     *PricingMetadata      `json:"pricing_metadata,omitempty"`
	Gst          map[OrderType]GstRate `json:"gst,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
}

// SourcePrice returns the authored price definition for the item.
func (m MenuItem) SourcePrice() SourcePrice {
	if m.HasSizes {
		return SourcePrice{Sizes: m.Sizes}
	}
	return SourcePrice{Default: m.Price}
}

func (m MenuItem) IncludesTax() bool {
	return m.PricingMode == PricingModeInclusive
}

// TenantContext is the resolved (hotel, branch) selection every catalog call
// is scoped by. An empty BranchID with a set HotelID means "hotel only": show
// all of that hotel's branches, none pre-selected.
type TenantContext struct {
	HotelID  string `json:"hotel_id"`
	BranchID string `json:"branch_id"`
}

func (t TenantContext) Valid() bool {
	return t.HotelID != "" && t.BranchID != ""
}

type Transaction struct {
	ID              string            `json:"id"`
	HotelID         string            `json:"hotel_id"`
	BranchID        string            `json:"branch_id"`
	Date            string            `json:"date"`
	DateTime        time.Time         `json:"date_time"`
	OrderType       OrderType         `json:"order_type"`
	TotalBaseAmount float64           `json:"total_base_amount"`
	TotalCgstAmount float64           `json:"total_cgst_amount"`
	TotalSgstAmount float64           `json:"total_sgst_amount"`
	Total           float64           `json:"total"`
	PaymentMode     string            `json:"payment_mode"`
	Items           []TransactionItem `json:"items"`
}

// TransactionItem freezes the line's breakdown at the moment of sale.
type TransactionItem struct {
	TransactionID string  `json:"transaction_id"`
	ItemID        string  `json:"item_id"`
	ItemName      string  `json:"item_name"`
	Price         float64 `json:"price"`
	BasePrice     float64 `json:"base_price"`
	FinalPrice    float64 `json:"final_price"`
	CgstAmount    float64 `json:"cgst_amount"`
	SgstAmount    float64 `json:"sgst_amount"`
	Quantity      int     `json:"quantity"`
	Size          string  `json:"size"`
	Subtotal      float64 `json:"subtotal"`
}

// QueuedWrite is a failed remote write held for replay.
type QueuedWrite struct {
	Kind       string          `json:"kind"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// Queue entry kinds.
const (
	WriteKindMenuSave   = "menu_save"
	WriteKindMenuDelete = "menu_delete"
	WriteKindOrder      = "order"
)

// QueueEntry pairs a queued write with the raw list value it was stored as,
// so replay can remove exactly that element.
type QueueEntry struct {
	Raw   string      `json:"-"`
	Write QueuedWrite `json:"write"`
}

// MenuDelete is the payload of a queued menu_delete write.
type MenuDelete struct {
	HotelID  string `json:"hotel_id"`
	BranchID string `json:"branch_id"`
	ItemID   string `json:"item_id"`
}

// CatalogEvent is published to Kafka when a transaction is recorded.
type CatalogEvent struct {
	Type          string    `json:"type"`
	HotelID       string    `json:"hotel_id"`
	BranchID      string    `json:"branch_id"`
	TransactionID string    `json:"transaction_id"`
	OrderType     OrderType `json:"order_type"`
	Total         float64   `json:"total"`
	Timestamp     time.Time `json:"timestamp"`
}

const EventOrderRecorded = "order_recorded"
