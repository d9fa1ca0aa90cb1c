package products

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/NexaCommerce/commerce_layer/internal/auth"
	"github.com/NexaCommerce/commerce_layer/internal/domain/product"
	"github.com/NexaCommerce/commerce_layer/internal/errors"
	"github.com/NexaCommerce/commerce_layer/internal/httputil"
	"github.com/NexaCommerce/commerce_layer/internal/logging"
	"github.com/NexaCommerce/commerce_layer/internal/middleware"
)

// Handler exposes the catalog operations over HTTP.
type Handler struct {
	svc    *Service
	logger *logging.Logger
}

// NewHandler creates the HTTP handler for the product service.
func NewHandler(svc *Service, logger *logging.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the catalog routes. Reads are open to clients and admins;
// writes are admin only.
func (h *Handler) Register(r *mux.Router) {
	read := middleware.RequireAnyRole(auth.RoleClient, auth.RoleAdmin)
	admin := middleware.RequireAnyRole(auth.RoleAdmin)

	r.Handle("/api/products", admin(http.HandlerFunc(h.create))).Methods(http.MethodPost)
	r.Handle("/api/products/search", read(http.HandlerFunc(h.search))).Methods(http.MethodGet)
	r.Handle("/api/products/{id}", read(http.HandlerFunc(h.get))).Methods(http.MethodGet)
	r.Handle("/api/products/{id}", admin(http.HandlerFunc(h.update))).Methods(http.MethodPut)
	r.Handle("/api/products/{id}", admin(http.HandlerFunc(h.delete))).Methods(http.MethodDelete)
	r.Handle("/api/products", read(http.HandlerFunc(h.list))).Methods(http.MethodGet)
}

type productResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func toProductResponse(p product.Product) productResponse {
	return productResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func toProductResponses(list []product.Product) []productResponse {
	out := make([]productResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toProductResponse(p))
	}
	return out
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := httputil.DecodeJSON(r.Body, &in); err != nil {
		httputil.WriteError(w, r, errors.InvalidInput("Malformed request body"))
		return
	}

	created, err := h.svc.Create(r.Context(), in)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toProductResponse(created))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := httputil.DecodeJSON(r.Body, &in); err != nil {
		httputil.WriteError(w, r, errors.InvalidInput("Malformed request body"))
		return
	}

	updated, err := h.svc.Update(r.Context(), mux.Vars(r)["id"], in)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toProductResponse(updated))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	found, err := h.svc.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toProductResponse(found))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toProductResponses(list))
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Search(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toProductResponses(list))
}
