package repository

import (
	"context"

	"bhokexpress/internal/domain/model"
)

type RestaurantRepository interface {
	List(ctx context.Context) ([]model.Restaurant, error)
	FindByID(ctx context.Context, restaurantID int64) (model.Restaurant, error)
}
