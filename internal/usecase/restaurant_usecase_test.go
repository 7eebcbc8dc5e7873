package usecase

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"bhokexpress/internal/domain/model"
	repo "bhokexpress/internal/repository"
)

func TestRestaurantUsecase_List_DistanceBadge(t *testing.T) {
	restaurants := new(RestaurantRepoMock)
	restaurants.On("List", mock.Anything).Return([]model.Restaurant{
		{ID: 10, Name: "Momo House", Lat: 27.7172, Lng: 85.3240, IsOpen: true},
	}, nil)

	u := NewRestaurantUsecase(restaurants, new(ProductRepoMock))
	ctx := context.Background()

	//座標なしなら距離は付かない
	outs, err := u.List(ctx, nil, nil)
	assert.NoError(t, err)
	assert.Len(t, outs, 1)
	assert.Nil(t, outs[0].DistanceKm)

	//店舗と同じ座標なら距離0
	lat, lng := 27.7172, 85.3240
	outs, err = u.List(ctx, &lat, &lng)
	assert.NoError(t, err)
	assert.NotNil(t, outs[0].DistanceKm)
	assert.InDelta(t, 0, *outs[0].DistanceKm, 1e-9)
}

func TestRestaurantUsecase_Menu(t *testing.T) {
	restaurants := new(RestaurantRepoMock)
	products := new(ProductRepoMock)

	restaurants.On("FindByID", mock.Anything, int64(10)).Return(model.Restaurant{ID: 10}, nil)
	restaurants.On("FindByID", mock.Anything, int64(404)).Return(model.Restaurant{}, repo.ErrNotFound)
	products.On("ListByRestaurantID", mock.Anything, int64(10)).Return([]model.Product{
		{ID: 1, Name: "Chicken Momo", Price: decimal.NewFromInt(250), IsActive: true},
	}, nil)

	u := NewRestaurantUsecase(restaurants, products)
	ctx := context.Background()

	items, err := u.Menu(ctx, 10)
	assert.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, "250.00", items[0].Price)

	_, err = u.Menu(ctx, 404)
	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 404, he.Status)
}
