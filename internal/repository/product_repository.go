package repository

import (
	"context"

	"bhokexpress/internal/domain/model"
)

type ProductRepository interface {
	FindByID(ctx context.Context, productID int64) (model.Product, error)
	ListByRestaurantID(ctx context.Context, restaurantID int64) ([]model.Product, error)
}
