// Package products implements the catalog service.
package products

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/NexaCommerce/commerce_layer/internal/domain/product"
	"github.com/NexaCommerce/commerce_layer/internal/errors"
	"github.com/NexaCommerce/commerce_layer/internal/logging"
	"github.com/NexaCommerce/commerce_layer/internal/storage"
)

// Input carries the caller-supplied product fields.
type Input struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity"`
}

// Service manages catalog entries.
type Service struct {
	store  storage.ProductStore
	logger *logging.Logger
}

// New creates the catalog service.
func New(store storage.ProductStore, logger *logging.Logger) *Service {
	return &Service{store: store, logger: logger}
}

func (s *Service) validate(in Input) error {
	if strings.TrimSpace(in.Name) == "" {
		return errors.InvalidInput("Product name is required")
	}
	if in.Price.IsNegative() {
		return errors.InvalidInput("Product price must not be negative")
	}
	if in.StockQuantity < 0 {
		return errors.InvalidInput("Product stock must not be negative")
	}
	return nil
}

// Create adds a catalog entry.
func (s *Service) Create(ctx context.Context, in Input) (product.Product, error) {
	if err := s.validate(in); err != nil {
		return product.Product{}, err
	}

	created, err := s.store.CreateProduct(ctx, product.Product{
		Name:          strings.TrimSpace(in.Name),
		Description:   in.Description,
		Price:         in.Price,
		StockQuantity: in.StockQuantity,
	})
	if err != nil {
		return product.Product{}, errors.PersistenceFailed(err)
	}

	if s.logger != nil {
		s.logger.WithContext(ctx).WithFields(map[string]interface{}{
			"product_id": created.ID,
			"name":       created.Name,
		}).Info("product created")
	}
	return created, nil
}

// Update replaces the mutable fields of an existing product.
func (s *Service) Update(ctx context.Context, id string, in Input) (product.Product, error) {
	if err := s.validate(in); err != nil {
		return product.Product{}, err
	}

	updated, err := s.store.UpdateProduct(ctx, product.Product{
		ID:            id,
		Name:          strings.TrimSpace(in.Name),
		Description:   in.Description,
		Price:         in.Price,
		StockQuantity: in.StockQuantity,
	})
	if stderrors.Is(err, storage.ErrNotFound) {
		return product.Product{}, errors.NotFound("Product not found with id: " + id)
	}
	if err != nil {
		return product.Product{}, errors.PersistenceFailed(err)
	}
	return updated, nil
}

// Delete removes a product.
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.store.DeleteProduct(ctx, id)
	if stderrors.Is(err, storage.ErrNotFound) {
		return errors.NotFound("Product not found with id: " + id)
	}
	if err != nil {
		return errors.PersistenceFailed(err)
	}
	return nil
}

// Get returns one product by id.
func (s *Service) Get(ctx context.Context, id string) (product.Product, error) {
	p, err := s.store.GetProduct(ctx, id)
	if stderrors.Is(err, storage.ErrNotFound) {
		return product.Product{}, errors.NotFound("Product not found with id: " + id)
	}
	if err != nil {
		return product.Product{}, errors.Internal("", err)
	}
	return p, nil
}

// List returns all products.
func (s *Service) List(ctx context.Context) ([]product.Product, error) {
	out, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, errors.Internal("", err)
	}
	return out, nil
}

// Search returns products whose name contains the given substring,
// case-insensitively.
func (s *Service) Search(ctx context.Context, name string) ([]product.Product, error) {
	out, err := s.store.SearchProducts(ctx, name)
	if err != nil {
		return nil, errors.Internal("", err)
	}
	return out, nil
}
