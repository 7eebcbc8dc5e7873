package usecase

import (
	"context"
	"net/http"

	"bhokexpress/internal/domain/geo"
	"bhokexpress/internal/domain/model"
	repo "bhokexpress/internal/repository"
)

type RestaurantUsecase struct {
	restaurantRepo repo.RestaurantRepository
	productRepo    repo.ProductRepository
}

func NewRestaurantUsecase(
	restaurantRepo repo.RestaurantRepository,
	productRepo repo.ProductRepository,
) *RestaurantUsecase {
	return &RestaurantUsecase{
		restaurantRepo: restaurantRepo,
		productRepo:    productRepo,
	}
}

type RestaurantOutput struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Address  string  `json:"address"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	IsOpen   bool    `json:"is_open"`
	ImageURL string  `json:"image_url"`

	//呼び出し側が座標を渡したときだけ入る
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

// List は店舗一覧。座標が来ていれば距離バッジ用の距離も付ける
func (u *RestaurantUsecase) List(ctx context.Context, userLat, userLng *float64) ([]RestaurantOutput, error) {
	restaurants, err := u.restaurantRepo.List(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	outs := make([]RestaurantOutput, 0, len(restaurants))
	for _, r := range restaurants {
		outs = append(outs, toRestaurantOutput(r, userLat, userLng))
	}
	return outs, nil
}

func (u *RestaurantUsecase) Get(ctx context.Context, restaurantID int64, userLat, userLng *float64) (RestaurantOutput, error) {
	if restaurantID <= 0 {
		return RestaurantOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	r, err := u.restaurantRepo.FindByID(ctx, restaurantID)
	if err == repo.ErrNotFound {
		return RestaurantOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return RestaurantOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return toRestaurantOutput(r, userLat, userLng), nil
}

type MenuItemOutput struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	ImageURL    string `json:"image_url"`
}

// Menu は店舗の公開中メニュー
func (u *RestaurantUsecase) Menu(ctx context.Context, restaurantID int64) ([]MenuItemOutput, error) {
	if restaurantID <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if _, err := u.restaurantRepo.FindByID(ctx, restaurantID); err == repo.ErrNotFound {
		return nil, NewHTTPError(http.StatusNotFound, "not found")
	} else if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	products, err := u.productRepo.ListByRestaurantID(ctx, restaurantID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	outs := make([]MenuItemOutput, 0, len(products))
	for _, p := range products {
		outs = append(outs, MenuItemOutput{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price.StringFixed(2),
			ImageURL:    p.ImageURL,
		})
	}
	return outs, nil
}

func toRestaurantOutput(r model.Restaurant, userLat, userLng *float64) RestaurantOutput {
	out := RestaurantOutput{
		ID:       r.ID,
		Name:     r.Name,
		Address:  r.Address,
		Lat:      r.Lat,
		Lng:      r.Lng,
		IsOpen:   r.IsOpen,
		ImageURL: r.ImageURL,
	}

	if userLat != nil && userLng != nil {
		d := geo.DistanceKm(*userLat, *userLng, r.Lat, r.Lng)
		out.DistanceKm = &d
	}
	return out
}
