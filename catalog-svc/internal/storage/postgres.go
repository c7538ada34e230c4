package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	"hotelmenu/catalog-svc/internal/domain"
)

type PostgresBackend struct {
	DB *sql.DB
}

func NewPostgresBackend(db *sql.DB) *PostgresBackend {
	return &PostgresBackend{DB: db}
}

// EnsureSchema adds the columns this service owns on top of the shared
// catalog schema.
func (r *PostgresBackend) EnsureSchema() error {
	statements := []string{
		"ALTER TABLE IF EXISTS branches ADD COLUMN IF NOT EXISTS qr_code BYTEA",
		"ALTER TABLE IF EXISTS menu_items ADD COLUMN IF NOT EXISTS pricing_metadata JSONB",
	}

	for _, stmt := range statements {
		if _, err := r.DB.Exec(stmt); err != nil {
			return fmt.Errorf("ensure schema `%s`: %w", stmt, err)
		}
	}

	return nil
}

func (r *PostgresBackend) ListHotels(ctx context.Context) ([]domain.Hotel, error) {
	rows, err := r.DB.QueryContext(ctx, `
        SELECT id, name, created_at
        FROM hotels
        ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hotels []domain.Hotel
	for rows.Next() {
		var h domain.Hotel
		if err := rows.Scan(&h.ID, &h.Name, &h.CreatedAt); err != nil {
			continue
		}
		hotels = append(hotels, h)
	}

	return hotels, rows.Err()
}

func (r *PostgresBackend) ListBranches(ctx context.Context, hotelID string) ([]domain.Branch, error) {
	return r.queryBranches(ctx, `
        SELECT id, hotel_id, name, COALESCE(slug, ''), COALESCE(qr_code_url, ''),
               COALESCE(admin_url, ''), COALESCE(user_url, ''), created_at
        FROM branches
        WHERE hotel_id = $1
        ORDER BY created_at`, hotelID)
}

func (r *PostgresBackend) ListAllBranches(ctx context.Context) ([]domain.Branch, error) {
	return r.queryBranches(ctx, `
        SELECT id, hotel_id, name, COALESCE(slug, ''), COALESCE(qr_code_url, ''),
               COALESCE(admin_url, ''), COALESCE(user_url, ''), created_at
        FROM branches
        ORDER BY created_at`)
}

func (r *PostgresBackend) queryBranches(ctx context.Context, query string, args ...interface{}) ([]domain.Branch, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var branches []domain.Branch
	for rows.Next() {
		var b domain.Branch
		if err := rows.Scan(&b.ID, &b.HotelID, &b.Name, &b.Slug, &b.QRCodeURL, &b.AdminURL, &b.UserURL, &b.CreatedAt); err != nil {
			continue
		}
		branches = append(branches, b)
	}

	return branches, rows.Err()
}

func (r *PostgresBackend) GetBranch(ctx context.Context, hotelID, branchID string) (*domain.Branch, error) {
	var b domain.Branch
	err := r.DB.QueryRowContext(ctx, `
        SELECT id, hotel_id, name, COALESCE(slug, ''), COALESCE(qr_code_url, ''),
               COALESCE(admin_url, ''), COALESCE(user_url, ''), created_at
        FROM branches
        WHERE id = $1 AND hotel_id = $2`, branchID, hotelID).
		Scan(&b.ID, &b.HotelID, &b.Name, &b.Slug, &b.QRCodeURL, &b.AdminURL, &b.UserURL, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PostgresBackend) GetBranchQRCode(ctx context.Context, hotelID, branchID string) ([]byte, error) {
	var qr []byte
	err := r.DB.QueryRowContext(ctx,
		"SELECT qr_code FROM branches WHERE id = $1 AND hotel_id = $2",
		branchID, hotelID).Scan(&qr)
	if err != nil {
		return nil, err
	}
	return qr, nil
}

func (r *PostgresBackend) SaveBranchQRCode(ctx context.Context, hotelID, branchID string, qr []byte) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE branches SET qr_code = $1 WHERE id = $2 AND hotel_id = $3",
		qr, branchID, hotelID)
	return err
}

const menuItemColumns = `
        id, hotel_id, branch_id, name, COALESCE(category, ''), COALESCE(price, 0),
        has_sizes, sizes, availability, COALESCE(pricing_mode, 'exclusive'), pricing_metadata,
        COALESCE(dining_cgst_percentage, 0), COALESCE(dining_sgst_percentage, 0),
        COALESCE(takeaway_cgst_percentage, 0), COALESCE(takeaway_sgst_percentage, 0),
        COALESCE(online_order_cgst_percentage, 0), COALESCE(online_order_sgst_percentage, 0),
        created_at`

func (r *PostgresBackend) ListMenuItems(ctx context.Context, hotelID, branchID string) ([]domain.MenuItem, error) {
	rows, err := r.DB.QueryContext(ctx, `
        SELECT `+menuItemColumns+`
        FROM menu_items
        WHERE hotel_id = $1 AND branch_id = $2
        ORDER BY category, name`, hotelID, branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.MenuItem
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			continue
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (r *PostgresBackend) GetMenuItem(ctx context.Context, hotelID, branchID, itemID string) (*domain.MenuItem, error) {
	row := r.DB.QueryRowContext(ctx, `
        SELECT `+menuItemColumns+`
        FROM menu_items
        WHERE id = $1 AND hotel_id = $2 AND branch_id = $3`, itemID, hotelID, branchID)

	item, err := scanMenuItem(row)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMenuItem(row rowScanner) (domain.MenuItem, error) {
	var item domain.MenuItem
	var sizesJSON, metadataJSON sql.NullString
	var dining, takeaway, online domain.GstRate

	err := row.Scan(&item.ID, &item.HotelID, &item.BranchID, &item.Name, &item.Category,
		&item.Price, &item.HasSizes, &sizesJSON, &item.Availability, &item.PricingMode, &metadataJSON,
		&dining.CgstPercent, &dining.SgstPercent,
		&takeaway.CgstPercent, &takeaway.SgstPercent,
		&online.CgstPercent, &online.SgstPercent,
		&item.CreatedAt)
	if err != nil {
		return domain.MenuItem{}, err
	}

	if sizesJSON.Valid && sizesJSON.String != "" {
		_ = json.Unmarshal([]byte(sizesJSON.String), &item.Sizes)
	}
	if metadataJSON.Valid && metadataJSON.String != "" {
		var meta domain.PricingMetadata
		if json.Unmarshal([]byte(metadataJSON.String), &meta) == nil {
			item.Metadata = &meta
		}
	}

	item.Gst = map[domain.OrderType]domain.GstRate{
		domain.OrderTypeDining:      dining,
		domain.OrderTypeTakeaway:    takeaway,
		domain.OrderTypeOnlineOrder: online,
	}

	return item, nil
}

func (r *PostgresBackend) CreateMenuItem(ctx context.Context, item *domain.MenuItem) error {
	sizesJSON, metadataJSON, err := encodeMenuItem(item)
	if err != nil {
		return err
	}

	return r.DB.QueryRowContext(ctx, `
        INSERT INTO menu_items (hotel_id, branch_id, name, category, price, has_sizes, sizes,
            availability, pricing_mode, pricing_metadata,
            dining_cgst_percentage, dining_sgst_percentage,
            takeaway_cgst_percentage, takeaway_sgst_percentage,
            online_order_cgst_percentage, online_order_sgst_percentage)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
        RETURNING id, created_at`,
		item.HotelID, item.BranchID, item.Name, item.Category, item.Price, item.HasSizes, sizesJSON,
		item.Availability, item.PricingMode, metadataJSON,
		item.Gst[domain.OrderTypeDining].CgstPercent, item.Gst[domain.OrderTypeDining].SgstPercent,
		item.Gst[domain.OrderTypeTakeaway].CgstPercent, item.Gst[domain.OrderTypeTakeaway].SgstPercent,
		item.Gst[domain.OrderTypeOnlineOrder].CgstPercent, item.Gst[domain.OrderTypeOnlineOrder].SgstPercent,
	).Scan(&item.ID, &item.CreatedAt)
}

func (r *PostgresBackend) UpdateMenuItem(ctx context.Context, item *domain.MenuItem) error {
	sizesJSON, metadataJSON, err := encodeMenuItem(item)
	if err != nil {
		return err
	}

	result, err := r.DB.ExecContext(ctx, `
        UPDATE menu_items
        SET name = $1, category = $2, price = $3, has_sizes = $4, sizes = $5,
            availability = $6, pricing_mode = $7, pricing_metadata = $8,
            dining_cgst_percentage = $9, dining_sgst_percentage = $10,
            takeaway_cgst_percentage = $11, takeaway_sgst_percentage = $12,
            online_order_cgst_percentage = $13, online_order_sgst_percentage = $14
        WHERE id = $15 AND hotel_id = $16 AND branch_id = $17`,
		item.Name, item.Category, item.Price, item.HasSizes, sizesJSON,
		item.Availability, item.PricingMode, metadataJSON,
		item.Gst[domain.OrderTypeDining].CgstPercent, item.Gst[domain.OrderTypeDining].SgstPercent,
		item.Gst[domain.OrderTypeTakeaway].CgstPercent, item.Gst[domain.OrderTypeTakeaway].SgstPercent,
		item.Gst[domain.OrderTypeOnlineOrder].CgstPercent, item.Gst[domain.OrderTypeOnlineOrder].SgstPercent,
		item.ID, item.HotelID, item.BranchID)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func encodeMenuItem(item *domain.MenuItem) (sizesJSON, metadataJSON interface{}, err error) {
	if len(item.Sizes) > 0 {
		encoded, err := json.Marshal(item.Sizes)
		if err != nil {
			return nil, nil, err
		}
		sizesJSON = string(encoded)
	}
	if item.Metadata != nil {
		encoded, err := json.Marshal(item.Metadata)
		if err != nil {
			return nil, nil, err
		}
		metadataJSON = string(encoded)
	}
	return sizesJSON, metadataJSON, nil
}

func (r *PostgresBackend) DeleteMenuItem(ctx context.Context, hotelID, branchID, itemID string) (int64, error) {
	result, err := r.DB.ExecContext(ctx,
		"DELETE FROM menu_items WHERE id = $1 AND hotel_id = $2 AND branch_id = $3",
		itemID, hotelID, branchID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *PostgresBackend) CreateTransaction(ctx context.Context, txn *domain.Transaction) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
        INSERT INTO transactions (hotel_id, branch_id, date, date_time, order_type,
            total_base_amount, total_cgst_amount, total_sgst_amount, total, payment_mode)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id`,
		txn.HotelID, txn.BranchID, txn.Date, txn.DateTime, string(txn.OrderType),
		txn.TotalBaseAmount, txn.TotalCgstAmount, txn.TotalSgstAmount, txn.Total, txn.PaymentMode,
	).Scan(&txn.ID)
	if err != nil {
		return err
	}

	for i := range txn.Items {
		item := &txn.Items[i]
		item.TransactionID = txn.ID
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO transaction_items (transaction_id, item_id, price, base_price, final_price,
                cgst_amount, sgst_amount, quantity, size, subtotal)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			item.TransactionID, item.ItemID, item.Price, item.BasePrice, item.FinalPrice,
			item.CgstAmount, item.SgstAmount, item.Quantity, item.Size, item.Subtotal); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *PostgresBackend) ListTransactions(ctx context.Context, hotelID, branchID, date string) ([]domain.Transaction, error) {
	rows, err := r.DB.QueryContext(ctx, `
        SELECT id, hotel_id, branch_id, date, date_time, order_type,
            total_base_amount, total_cgst_amount, total_sgst_amount, total, COALESCE(payment_mode, '')
        FROM transactions
        WHERE hotel_id = $1 AND branch_id = $2 AND date = $3
        ORDER BY date_time DESC`, hotelID, branchID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		var txn domain.Transaction
		var orderType string
		if err := rows.Scan(&txn.ID, &txn.HotelID, &txn.BranchID, &txn.Date, &txn.DateTime, &orderType,
			&txn.TotalBaseAmount, &txn.TotalCgstAmount, &txn.TotalSgstAmount, &txn.Total, &txn.PaymentMode); err != nil {
			continue
		}
		txn.OrderType = domain.OrderType(orderType)
		txns = append(txns, txn)
	}

	return txns, rows.Err()
}

// GetGstConfig loads tax settings from the shared config key/value table.
// Missing keys fall back to zero rates with GST enabled.
func (r *PostgresBackend) GetGstConfig(ctx context.Context) (domain.GstConfig, error) {
	cfg := domain.GstConfig{
		Enabled: true,
		Rates:   make(map[domain.OrderType]domain.GstRate, len(domain.OrderTypes)),
	}

	rows, err := r.DB.QueryContext(ctx, "SELECT key, value FROM config")
	if err != nil {
		return cfg, err
	}
	defer rows.Close()

	values := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			continue
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return cfg, err
	}

	if v, ok := values["gst_enabled"]; ok {
		cfg.Enabled = parseBool(v)
	}
	if v, ok := values["gst_show_tax_on_bill"]; ok {
		cfg.ShowTaxOnBill = parseBool(v)
	}
	for _, orderType := range domain.OrderTypes {
		cfg.Rates[orderType] = domain.GstRate{
			CgstPercent: parseFloat(values[string(orderType)+"_cgst_percentage"]),
			SgstPercent: parseFloat(values[string(orderType)+"_sgst_percentage"]),
		}
	}

	return cfg, nil
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

func parseFloat(v string) float64 {
	f, _ := strconv.ParseFloat(v, 64)
	return f
}
