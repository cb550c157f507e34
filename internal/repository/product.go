package repository

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/talkincode/productapi/internal/domain"
)

// ErrProductNotFound is returned when no product matches the identifier
var ErrProductNotFound = errors.New("product not found")

// ProductRepository handles storage operations for products
type ProductRepository interface {
	// List returns every product in storage order
	List(ctx context.Context) ([]domain.Product, error)

	// Create validates and inserts p, assigning its ID and timestamps
	Create(ctx context.Context, p *domain.Product) error

	// Update applies the present fields to the product and returns the result
	Update(ctx context.Context, id primitive.ObjectID, fields domain.ProductFields) (*domain.Product, error)

	// Delete removes the product and returns the deleted document
	Delete(ctx context.Context, id primitive.ObjectID) (*domain.Product, error)

	// Count returns the number of stored products
	Count(ctx context.Context) (int64, error)
}
