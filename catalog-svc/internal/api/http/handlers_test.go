package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hotelmenu/catalog-svc/internal/domain"
	"hotelmenu/catalog-svc/internal/mocks"
	"hotelmenu/catalog-svc/internal/service"
	"hotelmenu/catalog-svc/internal/tenant"
)

func testRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func TestHealthCheck(t *testing.T) {
	h := NewHandler(nil, nil, nil, nil)

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	testRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "catalog-svc", body["service"])
}

func TestResolve(t *testing.T) {
	catalog := mocks.NewCatalogService(t)
	h := NewHandler(catalog, nil, nil, nil)

	catalog.On("Resolve", mock.Anything, "/menu/user/annapurna/downtown", "", "", "", "").
		Return(service.ResolveResult{
			Selection: tenant.Selection{HotelID: "h1", BranchID: "b1"},
		}, nil).Once()

	req := httptest.NewRequest("GET", "/api/resolve?path=%2Fmenu%2Fuser%2Fannapurna%2Fdowntown", nil)
	rec := httptest.NewRecorder()
	testRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body service.ResolveResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "h1", body.Selection.HotelID)
	assert.Equal(t, "b1", body.Selection.BranchID)
}

func TestGetMenu(t *testing.T) {
	catalog := mocks.NewCatalogService(t)
	h := NewHandler(catalog, nil, nil, nil)

	items := []domain.MenuItem{{ID: "m1", HotelID: "h1", BranchID: "b1", Name: "Masala Dosa", Price: 120}}
	catalog.On("Menu", mock.Anything, domain.TenantContext{HotelID: "h1", BranchID: "b1"}).
		Return(items, nil).Once()

	req := httptest.NewRequest("GET", "/api/hotels/h1/branches/b1/menu", nil)
	rec := httptest.NewRecorder()
	testRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body []domain.MenuItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "m1", body[0].ID)
}

func TestSaveMenuItem_TenantComesFromPath(t *testing.T) {
	menus := mocks.NewMenuService(t)
	h := NewHandler(nil, menus, nil, nil)

	// Whatever tenant the body claims, the path wins.
	menus.On("SaveItem", mock.Anything, mock.MatchedBy(func(item *domain.MenuItem) bool {
		return item.ID == "" && item.HotelID == "h1" && item.BranchID == "b1"
	})).Return(nil).Once()

	payload := `{"name":"Masala Dosa","price":120,"hotel_id":"evil","branch_id":"evil"}`
	req := httptest.NewRequest("POST", "/api/hotels/h1/branches/b1/menu", bytes.NewBufferString(payload))
	rec := httptest.NewRecorder()
	testRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestSaveMenuItem_QueuedWriteReturnsAccepted(t *testing.T) {
	menus := mocks.NewMenuService(t)
	h := NewHandler(nil, menus, nil, nil)

	menus.On("SaveItem", mock.Anything, mock.Anything).
		Return(fmt.Errorf("%w: queued", service.ErrRemoteUnavailable)).Once()

	payload := `{"name":"Masala Dosa","price":120}`
	req := httptest.NewRequest("POST", "/api/hotels/h1/branches/b1/menu", bytes.NewBufferString(payload))
	rec := httptest.NewRecorder()
	testRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["queued"])
}

func TestUpdateMenuItem_UsesPathItemID(t *testing.T) {
	menus := mocks.NewMenuService(t)
	h := NewHandler(nil, menus, nil, nil)

	menus.On("SaveItem", mock.Anything, mock.MatchedBy(func(item *domain.MenuItem) bool {
		return item.ID == "m1" && item.HotelID == "h1" && item.BranchID == "b1"
	})).Return(nil).Once()

	payload := `{"name":"Masala Dosa","price":130}`
	req := httptest.NewRequest("PUT", "/api/hotels/h1/branches/b1/menu/m1", bytes.NewBufferString(payload))
	rec := httptest.NewRecorder()
	testRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDeleteMenuItem(t *testing.T) {
	menus := mocks.NewMenuService(t)
	h := NewHandler(nil, menus, nil, nil)

	menus.On("DeleteItem", mock.Anything,
		domain.TenantContext{HotelID: "h1", BranchID: "b1"}, "m1").Return(nil).Once()

	req := httptest.NewRequest("DELETE", "/api/hotels/h1/branches/b1/menu/m1", nil)
	rec := httptest.NewRecorder()
	testRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestGetBreakdown_DefaultsToDining(t *testing.T) {
	catalog := mocks.NewCatalogService(t)
	h := NewHandler(catalog, nil, nil, nil)

	breakdown := domain.PriceBreakdown{BasePrice: 100, FinalPrice: 105, GstValue: 5}
	catalog.On("ItemBreakdown", mock.Anything,
		domain.TenantContext{HotelID: "h1", BranchID: "b1"}, "m1", domain.OrderTypeDining, "").
		Return(breakdown, nil).Once()

	req := httptest.NewRequest("GET", "/api/hotels/h1/branches/b1/menu/m1/breakdown", nil)
	rec := httptest.NewRecorder()
	testRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body domain.PriceBreakdown
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 105.0, body.FinalPrice)
}

func TestPlaceOrder(t *testing.T) {
	orders := mocks.NewOrderService(t)
	h := NewHandler(nil, nil, orders, nil)

	txn := &domain.Transaction{ID: "t1", HotelID: "h1", BranchID: "b1", Total: 105}
	orders.On("PlaceOrder", mock.Anything, mock.MatchedBy(func(req *service.OrderRequest) bool {
		return req.HotelID == "h1" && req.BranchID == "b1" && len(req.Lines) == 1
	})).Return(txn, nil).Once()

	payload := `{"order_type":"dining","payment_mode":"cash","lines":[{"item_id":"m1","quantity":1}]}`
	req := httptest.NewRequest("POST", "/api/hotels/h1/branches/b1/orders", bytes.NewBufferString(payload))
	rec := httptest.NewRecorder()
	testRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var body domain.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "t1", body.ID)
}

func TestPlaceOrder_QueuedReturnsAcceptedWithTransaction(t *testing.T) {
	orders := mocks.NewOrderService(t)
	h := NewHandler(nil, nil, orders, nil)

	txn := &domain.Transaction{HotelID: "h1", BranchID: "b1", Total: 105}
	orders.On("PlaceOrder", mock.Anything, mock.Anything).
		Return(txn, fmt.Errorf("%w: queued", service.ErrRemoteUnavailable)).Once()

	payload := `{"order_type":"dining","lines":[{"item_id":"m1","quantity":1}]}`
	req := httptest.NewRequest("POST", "/api/hotels/h1/branches/b1/orders", bytes.NewBufferString(payload))
	rec := httptest.NewRecorder()
	testRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "queued")
	assert.Contains(t, body, "transaction")
}

func TestPlaceOrder_NothingQueuedReturnsServiceUnavailable(t *testing.T) {
	orders := mocks.NewOrderService(t)
	h := NewHandler(nil, nil, orders, nil)

	// No transaction back means nothing was priced or queued, so the
	// response must not claim the order was accepted.
	orders.On("PlaceOrder", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: no menu available to price order", service.ErrRemoteUnavailable)).Once()

	payload := `{"order_type":"dining","lines":[{"item_id":"m1","quantity":1}]}`
	req := httptest.NewRequest("POST", "/api/hotels/h1/branches/b1/orders", bytes.NewBufferString(payload))
	rec := httptest.NewRecorder()
	testRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "queued")
}

func TestGetSales(t *testing.T) {
	catalog := mocks.NewCatalogService(t)
	h := NewHandler(catalog, nil, nil, nil)

	txns := []domain.Transaction{{ID: "t1", HotelID: "h1", BranchID: "b1"}}
	catalog.On("Sales", mock.Anything,
		domain.TenantContext{HotelID: "h1", BranchID: "b1"}, "2026-08-28").Return(txns, nil).Once()

	req := httptest.NewRequest("GET", "/api/hotels/h1/branches/b1/sales?date=2026-08-28", nil)
	rec := httptest.NewRecorder()
	testRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReplayQueue(t *testing.T) {
	replay := mocks.NewReplayer(t)
	h := NewHandler(nil, nil, nil, replay)

	replay.On("ReplayAll", mock.Anything).Return(2, 1, nil).Once()

	req := httptest.NewRequest("POST", "/api/replay", nil)
	rec := httptest.NewRecorder()
	testRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body["replayed"])
	assert.Equal(t, 1, body["remaining"])
}

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", service.ErrValidation, http.StatusBadRequest},
		{"not found", service.ErrNotFound, http.StatusNotFound},
		{"tenant mismatch", service.ErrTenantMismatch, http.StatusForbidden},
		{"backend unavailable", service.ErrRemoteUnavailable, http.StatusServiceUnavailable},
		{"other", context.DeadlineExceeded, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			catalog := mocks.NewCatalogService(t)
			h := NewHandler(catalog, nil, nil, nil)

			catalog.On("Menu", mock.Anything, mock.Anything).Return(nil, tc.err).Once()

			req := httptest.NewRequest("GET", "/api/hotels/h1/branches/b1/menu", nil)
			rec := httptest.NewRecorder()
			testRouter(h).ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestBranchQRCode_ContentType(t *testing.T) {
	catalog := mocks.NewCatalogService(t)
	h := NewHandler(catalog, nil, nil, nil)

	image := []byte{0x89, 'P', 'N', 'G'}
	catalog.On("BranchQR", mock.Anything,
		domain.TenantContext{HotelID: "h1", BranchID: "b1"}).Return(image, nil).Once()

	req := httptest.NewRequest("GET", "/api/hotels/h1/branches/b1/qrcode", nil)
	rec := httptest.NewRecorder()
	testRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, image, rec.Body.Bytes())
}
