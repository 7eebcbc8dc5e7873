package repository

import (
	"context"
	"errors"

	"bhokexpress/internal/domain/model"
	repo "bhokexpress/internal/repository"

	"gorm.io/gorm"
)

type RestaurantGormRepository struct {
	db *gorm.DB
}

// DI
func NewRestaurantGormRepository(db *gorm.DB) *RestaurantGormRepository {
	return &RestaurantGormRepository{db: db}
}

func (r *RestaurantGormRepository) List(ctx context.Context) ([]model.Restaurant, error) {
	var restaurants []model.Restaurant

	if err := r.db.WithContext(ctx).
		Order("id asc").
		Find(&restaurants).Error; err != nil {
		return []model.Restaurant{}, err
	}
	return restaurants, nil
}

func (r *RestaurantGormRepository) FindByID(ctx context.Context, restaurantID int64) (model.Restaurant, error) {
	var restaurant model.Restaurant

	err := r.db.WithContext(ctx).Where("id = ?", restaurantID).First(&restaurant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Restaurant{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Restaurant{}, err
	}
	return restaurant, nil
}
