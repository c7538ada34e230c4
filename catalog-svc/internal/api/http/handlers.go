package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"hotelmenu/catalog-svc/internal/domain"
	"hotelmenu/catalog-svc/internal/service"
)

type Handler struct {
	Catalog service.CatalogServiceInterface
	Menus   service.MenuServiceInterface
	Orders  service.OrderServiceInterface
	Replay  service.ReplayerInterface
}

func NewHandler(catalog service.CatalogServiceInterface, menus service.MenuServiceInterface, orders service.OrderServiceInterface, replay service.ReplayerInterface) *Handler {
	return &Handler{
		Catalog: catalog,
		Menus:   menus,
		Orders:  orders,
		Replay:  replay,
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")

	r.HandleFunc("/api/resolve", h.resolve).Methods("GET")
	r.HandleFunc("/api/config", h.gstConfig).Methods("GET")
	r.HandleFunc("/api/hotels", h.getHotels).Methods("GET")
	r.HandleFunc("/api/hotels/{hotelId}/branches", h.getBranches).Methods("GET")
	r.HandleFunc("/api/hotels/{hotelId}/branches/{branchId}/qrcode", h.getBranchQRCode).Methods("GET")

	r.HandleFunc("/api/hotels/{hotelId}/branches/{branchId}/menu", h.getMenu).Methods("GET")
	r.HandleFunc("/api/hotels/{hotelId}/branches/{branchId}/menu", h.saveMenuItem).Methods("POST")
	r.HandleFunc("/api/hotels/{hotelId}/branches/{branchId}/menu/{itemId}", h.updateMenuItem).Methods("PUT")
	r.HandleFunc("/api/hotels/{hotelId}/branches/{branchId}/menu/{itemId}", h.deleteMenuItem).Methods("DELETE")
	r.HandleFunc("/api/hotels/{hotelId}/branches/{branchId}/menu/{itemId}/breakdown", h.getBreakdown).Methods("GET")

	r.HandleFunc("/api/hotels/{hotelId}/branches/{branchId}/orders", h.placeOrder).Methods("POST")
	r.HandleFunc("/api/hotels/{hotelId}/branches/{branchId}/sales", h.getSales).Methods("GET")

	r.HandleFunc("/api/replay", h.replayQueue).Methods("POST")
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"service":   "catalog-svc",
		"timestamp": time.Now().Format(time.RFC3339),
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.Catalog.Resolve(r.Context(),
		q.Get("path"), q.Get("query"), q.Get("hash"),
		q.Get("fallback_hotel"), q.Get("fallback_branch"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) gstConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Catalog.GstConfig(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *Handler) getHotels(w http.ResponseWriter, r *http.Request) {
	hotels, err := h.Catalog.Hotels(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hotels)
}

func (h *Handler) getBranches(w http.ResponseWriter, r *http.Request) {
	branches, err := h.Catalog.Branches(r.Context(), mux.Vars(r)["hotelId"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, branches)
}

func (h *Handler) getBranchQRCode(w http.ResponseWriter, r *http.Request) {
	qr, err := h.Catalog.BranchQR(r.Context(), tenantFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(qr)
}

func (h *Handler) getMenu(w http.ResponseWriter, r *http.Request) {
	items, err := h.Catalog.Menu(r.Context(), tenantFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) saveMenuItem(w http.ResponseWriter, r *http.Request) {
	tc := tenantFrom(r)

	var item domain.MenuItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	item.ID = ""
	item.HotelID = tc.HotelID
	item.BranchID = tc.BranchID

	if err := h.Menus.SaveItem(r.Context(), &item); err != nil {
		if errors.Is(err, service.ErrRemoteUnavailable) {
			writeJSON(w, http.StatusAccepted, map[string]interface{}{"queued": true, "item": item})
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) updateMenuItem(w http.ResponseWriter, r *http.Request) {
	tc := tenantFrom(r)

	var item domain.MenuItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	item.ID = mux.Vars(r)["itemId"]
	item.HotelID = tc.HotelID
	item.BranchID = tc.BranchID

	if err := h.Menus.SaveItem(r.Context(), &item); err != nil {
		if errors.Is(err, service.ErrRemoteUnavailable) {
			writeJSON(w, http.StatusAccepted, map[string]interface{}{"queued": true, "item": item})
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) deleteMenuItem(w http.ResponseWriter, r *http.Request) {
	err := h.Menus.DeleteItem(r.Context(), tenantFrom(r), mux.Vars(r)["itemId"])
	if err != nil {
		if errors.Is(err, service.ErrRemoteUnavailable) {
			writeJSON(w, http.StatusAccepted, map[string]interface{}{"queued": true})
			return
		}
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getBreakdown(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	orderType := domain.OrderType(q.Get("order_type"))
	if orderType == "" {
		orderType = domain.OrderTypeDining
	}

	breakdown, err := h.Catalog.ItemBreakdown(r.Context(), tenantFrom(r),
		mux.Vars(r)["itemId"], orderType, q.Get("size"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, breakdown)
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	tc := tenantFrom(r)

	var req service.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req.HotelID = tc.HotelID
	req.BranchID = tc.BranchID

	txn, err := h.Orders.PlaceOrder(r.Context(), &req)
	if err != nil {
		// A nil transaction means the order could not be priced at all, so
		// nothing was queued.
		if errors.Is(err, service.ErrRemoteUnavailable) && txn != nil {
			writeJSON(w, http.StatusAccepted, map[string]interface{}{"queued": true, "transaction": txn})
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, txn)
}

func (h *Handler) getSales(w http.ResponseWriter, r *http.Request) {
	txns, err := h.Catalog.Sales(r.Context(), tenantFrom(r), r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txns)
}

func (h *Handler) replayQueue(w http.ResponseWriter, r *http.Request) {
	replayed, remaining, err := h.Replay.ReplayAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"replayed": replayed, "remaining": remaining})
}

func tenantFrom(r *http.Request) domain.TenantContext {
	vars := mux.Vars(r)
	return domain.TenantContext{HotelID: vars["hotelId"], BranchID: vars["branchId"]}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrTenantMismatch):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, service.ErrRemoteUnavailable):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
