package usecase

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"bhokexpress/internal/domain/cart"
	"bhokexpress/internal/domain/geo"
	"bhokexpress/internal/domain/pricing"
	repo "bhokexpress/internal/repository"
)

// カート本体の規則は domain/cart が持つ。
// ここでは商品・店舗の確認と保存だけを足す
type CartUsecase struct {
	store          repo.CartStore
	productRepo    repo.ProductRepository
	restaurantRepo repo.RestaurantRepository
	userRepo       repo.UserRepository
	calc           *pricing.Calculator
}

func NewCartUsecase(
	store repo.CartStore,
	productRepo repo.ProductRepository,
	restaurantRepo repo.RestaurantRepository,
	userRepo repo.UserRepository,
	calc *pricing.Calculator,
) *CartUsecase {
	return &CartUsecase{
		store:          store,
		productRepo:    productRepo,
		restaurantRepo: restaurantRepo,
		userRepo:       userRepo,
		calc:           calc,
	}
}

type CartLineResponse struct {
	ProductID    int64  `json:"product_id"`
	RestaurantID int64  `json:"restaurant_id"`
	Name         string `json:"name"`
	UnitPrice    string `json:"unit_price"`
	Quantity     int64  `json:"quantity"`
	LineTotal    string `json:"line_total"`
}

// 金額は表示用に2桁へ丸めた文字列。計算は丸めずに行う
type CartResponse struct {
	Items          []CartLineResponse `json:"items"`
	RestaurantID   *int64             `json:"restaurant_id,omitempty"`
	Subtotal       string             `json:"subtotal"`
	DiscountRate   string             `json:"discount_rate"`
	DiscountAmount string             `json:"discount_amount"`
	DeliveryCharge string             `json:"delivery_charge"`
	FeePending     bool               `json:"fee_pending"`
	FreeDeliveries int                `json:"free_deliveries_left"`
	GrandTotal     string             `json:"grand_total"`
}

// GetCart はカートと現時点の見積もりを返す。
// 配達先座標が来ていなければ配達料は保留のまま
func (u *CartUsecase) GetCart(ctx context.Context, userID int64, userLat, userLng *float64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	c, err := u.store.Get(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "cart store error")
	}

	return u.buildResponse(ctx, userID, c, userLat, userLng), nil
}

// AddItem は商品をカートに1つ追加する
func (u *CartUsecase) AddItem(ctx context.Context, userID int64, productID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product")
	}

	//閉店中の店舗は受け付けない
	r, err := u.restaurantRepo.FindByID(ctx, p.RestaurantID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !r.IsOpen {
		return CartResponse{}, NewHTTPError(http.StatusConflict, "Restaurant is closed")
	}

	c, err := u.store.Get(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "cart store error")
	}

	ok := c.AddItem(cart.Line{
		ProductID:    p.ID,
		RestaurantID: p.RestaurantID,
		Name:         p.Name,
		UnitPrice:    p.Price,
	})
	if !ok {
		//別店舗の商品。カートは変更されていない
		return CartResponse{}, NewHTTPError(http.StatusConflict, "You can only order from one restaurant at a time")
	}

	if err := u.store.Save(ctx, userID, c); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "cart store error")
	}

	return u.buildResponse(ctx, userID, c, nil, nil), nil
}

// DecreaseItem は数量を1減らす。1だった行は消える
func (u *CartUsecase) DecreaseItem(ctx context.Context, userID int64, productID int64) (CartResponse, error) {
	return u.mutate(ctx, userID, productID, func(c *cart.Cart, id int64) { c.DecreaseItem(id) })
}

// RemoveItem は行ごと消す
func (u *CartUsecase) RemoveItem(ctx context.Context, userID int64, productID int64) (CartResponse, error) {
	return u.mutate(ctx, userID, productID, func(c *cart.Cart, id int64) { c.RemoveItem(id) })
}

func (u *CartUsecase) mutate(ctx context.Context, userID int64, productID int64, op func(*cart.Cart, int64)) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	c, err := u.store.Get(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "cart store error")
	}

	op(c, productID)

	if err := u.store.Save(ctx, userID, c); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "cart store error")
	}

	return u.buildResponse(ctx, userID, c, nil, nil), nil
}

// ClearCart はカートを空にする。何度呼んでも結果は同じ
func (u *CartUsecase) ClearCart(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	if err := u.store.Clear(ctx, userID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "cart store error")
	}
	return nil
}

func (u *CartUsecase) buildResponse(ctx context.Context, userID int64, c *cart.Cart, userLat, userLng *float64) CartResponse {
	//クレジット取得に失敗しても0扱いで先に進む（fail-closed）
	credits, err := u.userRepo.FreeDeliveryRemaining(ctx, userID)
	if err != nil {
		credits = 0
	}

	distance := u.distanceTo(ctx, c, userLat, userLng)
	q := u.calc.Price(c, distance, credits)

	items := make([]CartLineResponse, 0, len(c.Lines))
	for _, l := range c.Lines {
		items = append(items, CartLineResponse{
			ProductID:    l.ProductID,
			RestaurantID: l.RestaurantID,
			Name:         l.Name,
			UnitPrice:    l.UnitPrice.StringFixed(2),
			Quantity:     l.Quantity,
			LineTotal:    l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity)).StringFixed(2),
		})
	}

	resp := CartResponse{
		Items:          items,
		Subtotal:       q.Subtotal.StringFixed(2),
		DiscountRate:   q.DiscountRate.String(),
		DiscountAmount: q.DiscountAmount.StringFixed(2),
		DeliveryCharge: q.DeliveryFee.StringFixed(2),
		FeePending:     q.FeePending,
		FreeDeliveries: credits,
		GrandTotal:     q.GrandTotal.StringFixed(2),
	}
	if rid, ok := c.RestaurantID(); ok {
		resp.RestaurantID = &rid
	}
	return resp
}

// 配達先の座標が両方来ていれば店舗までの距離を出す。nil=未確定
func (u *CartUsecase) distanceTo(ctx context.Context, c *cart.Cart, userLat, userLng *float64) *float64 {
	if userLat == nil || userLng == nil {
		return nil
	}

	rid, ok := c.RestaurantID()
	if !ok {
		return nil
	}

	r, err := u.restaurantRepo.FindByID(ctx, rid)
	if err != nil {
		return nil
	}

	d := geo.DistanceKm(*userLat, *userLng, r.Lat, r.Lng)
	return &d
}
