// Package orders implements order creation and retrieval. Order creation is
// the one cross-service write in the system: it validates stock against the
// product service under the caller's identity before committing anything.
package orders

import (
	"context"
	stderrors "errors"

	"github.com/NexaCommerce/commerce_layer/internal/auth"
	"github.com/NexaCommerce/commerce_layer/internal/domain/order"
	"github.com/NexaCommerce/commerce_layer/internal/errors"
	"github.com/NexaCommerce/commerce_layer/internal/logging"
	"github.com/NexaCommerce/commerce_layer/internal/metrics"
	"github.com/NexaCommerce/commerce_layer/internal/storage"
)

// Service orchestrates order creation and serves order reads.
type Service struct {
	store    storage.OrderStore
	products ProductClient
	logger   *logging.Logger
}

// New creates the order service.
func New(store storage.OrderStore, products ProductClient, logger *logging.Logger) *Service {
	return &Service{store: store, products: products, logger: logger}
}

// CreateOrder validates every line against the product service and persists
// the aggregate as one atomic write. Lines are processed in request order;
// the first failing line aborts the whole operation with nothing committed.
func (s *Service) CreateOrder(ctx context.Context, principal auth.Principal, lines []order.Line) (order.Order, error) {
	created, err := s.createOrder(ctx, principal, lines)
	metrics.RecordOrderCreation(creationOutcome(err))
	return created, err
}

func creationOutcome(err error) string {
	switch {
	case err == nil:
		return "created"
	case errors.Is(err, errors.CodeInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, errors.CodeEmptyOrder), errors.Is(err, errors.CodeValidationFailed):
		return "invalid"
	default:
		return "failed"
	}
}

func (s *Service) createOrder(ctx context.Context, principal auth.Principal, lines []order.Line) (order.Order, error) {
	if len(lines) == 0 {
		return order.Order{}, errors.EmptyOrder()
	}
	for _, line := range lines {
		if line.ProductID == "" {
			return order.Order{}, errors.InvalidInput("Order line is missing a product id")
		}
		if line.Quantity <= 0 {
			return order.Order{}, errors.InvalidInput("Order line quantity must be positive")
		}
	}

	items := make([]order.Item, 0, len(lines))
	for _, line := range lines {
		// Lookup runs under the caller's own token, not a service
		// credential.
		snap, err := s.products.GetProduct(ctx, line.ProductID, principal.RawToken)
		if err != nil {
			return order.Order{}, err
		}

		if snap.StockQuantity < line.Quantity {
			return order.Order{}, errors.InsufficientStock(snap.Name, snap.StockQuantity, line.Quantity).
				WithDetails("productId", snap.ID)
		}

		items = append(items, order.Item{
			ProductID:   snap.ID,
			ProductName: snap.Name,
			Quantity:    line.Quantity,
			UnitPrice:   snap.Price,
		})
	}

	o := order.Order{
		OwnerID:          principal.Subject,
		OwnerDisplayName: principal.DisplayName,
		Status:           order.StatusPending,
		Items:            items,
	}
	o.TotalAmount = o.ComputeTotal()

	created, err := s.store.CreateOrder(ctx, o)
	if err != nil {
		return order.Order{}, errors.PersistenceFailed(err)
	}

	if s.logger != nil {
		s.logger.WithContext(ctx).WithFields(map[string]interface{}{
			"order_id": created.ID,
			"owner":    created.OwnerID,
			"items":    len(created.Items),
			"total":    created.TotalAmount.String(),
		}).Info("order created")
	}
	return created, nil
}

// GetOrder returns the order only to its owner or an admin. A caller who does
// not own the order gets the same not-found outcome as for an absent order,
// so existence cannot be probed.
func (s *Service) GetOrder(ctx context.Context, id, callerID string, isAdmin bool) (order.Order, error) {
	o, err := s.store.GetOrder(ctx, id)
	if stderrors.Is(err, storage.ErrNotFound) {
		return order.Order{}, errors.NotFound("Order not found with id: " + id)
	}
	if err != nil {
		return order.Order{}, errors.Internal("", err)
	}

	if !isAdmin && o.OwnerID != callerID {
		return order.Order{}, errors.NotFound("Order not found with id: " + id)
	}
	return o, nil
}

// ListUserOrders returns the caller's orders, most recent first.
func (s *Service) ListUserOrders(ctx context.Context, callerID string) ([]order.Order, error) {
	out, err := s.store.ListOrdersByOwner(ctx, callerID)
	if err != nil {
		return nil, errors.Internal("", err)
	}
	return out, nil
}

// ListAllOrders returns every order. Administrative.
func (s *Service) ListAllOrders(ctx context.Context) ([]order.Order, error) {
	out, err := s.store.ListOrders(ctx)
	if err != nil {
		return nil, errors.Internal("", err)
	}
	return out, nil
}
