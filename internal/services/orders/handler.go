package orders

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/NexaCommerce/commerce_layer/internal/auth"
	"github.com/NexaCommerce/commerce_layer/internal/domain/order"
	"github.com/NexaCommerce/commerce_layer/internal/errors"
	"github.com/NexaCommerce/commerce_layer/internal/httputil"
	"github.com/NexaCommerce/commerce_layer/internal/logging"
	"github.com/NexaCommerce/commerce_layer/internal/middleware"
)

// Handler exposes the order operations over HTTP.
type Handler struct {
	svc    *Service
	logger *logging.Logger
}

// NewHandler creates the HTTP handler for the order service.
func NewHandler(svc *Service, logger *logging.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the order routes. The literal my-orders path is mounted
// before the {id} capture so it is never treated as an order id.
func (h *Handler) Register(r *mux.Router) {
	client := middleware.RequireAnyRole(auth.RoleClient)
	clientOrAdmin := middleware.RequireAnyRole(auth.RoleClient, auth.RoleAdmin)
	admin := middleware.RequireAnyRole(auth.RoleAdmin)

	r.Handle("/api/orders", client(http.HandlerFunc(h.create))).Methods(http.MethodPost)
	r.Handle("/api/orders/my-orders", client(http.HandlerFunc(h.listMine))).Methods(http.MethodGet)
	r.Handle("/api/orders/{id}", clientOrAdmin(http.HandlerFunc(h.get))).Methods(http.MethodGet)
	r.Handle("/api/orders", admin(http.HandlerFunc(h.listAll))).Methods(http.MethodGet)
}

type createOrderRequest struct {
	Items []order.Line `json:"items"`
}

type orderItemResponse struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type orderResponse struct {
	ID          string              `json:"id"`
	OrderDate   time.Time           `json:"orderDate"`
	Status      order.Status        `json:"status"`
	TotalAmount decimal.Decimal     `json:"totalAmount"`
	UserID      string              `json:"userId"`
	Username    string              `json:"username"`
	Items       []orderItemResponse `json:"items"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

func toOrderResponse(o order.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal(),
		})
	}
	return orderResponse{
		ID:          o.ID,
		OrderDate:   o.OrderDate,
		Status:      o.Status,
		TotalAmount: o.TotalAmount,
		UserID:      o.OwnerID,
		Username:    o.OwnerDisplayName,
		Items:       items,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func toOrderResponses(list []order.Order) []orderResponse {
	out := make([]orderResponse, 0, len(list))
	for _, o := range list {
		out = append(out, toOrderResponse(o))
	}
	return out
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, errors.Unauthorized(""))
		return
	}

	var req createOrderRequest
	if err := httputil.DecodeJSON(r.Body, &req); err != nil {
		httputil.WriteError(w, r, errors.InvalidInput("Malformed request body"))
		return
	}

	created, err := h.svc.CreateOrder(r.Context(), principal, req.Items)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toOrderResponse(created))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, errors.Unauthorized(""))
		return
	}

	id := mux.Vars(r)["id"]
	found, err := h.svc.GetOrder(r.Context(), id, principal.Subject, principal.HasRole(auth.RoleAdmin))
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toOrderResponse(found))
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, errors.Unauthorized(""))
		return
	}

	list, err := h.svc.ListUserOrders(r.Context(), principal.Subject)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toOrderResponses(list))
}

func (h *Handler) listAll(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListAllOrders(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toOrderResponses(list))
}
