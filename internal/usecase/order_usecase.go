package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"bhokexpress/internal/domain/checkout"
	"bhokexpress/internal/domain/geo"
	"bhokexpress/internal/domain/model"
	"bhokexpress/internal/domain/pricing"
	repo "bhokexpress/internal/repository"
)

type OrderUsecase struct {
	tx        repo.TransactionManager
	cartStore repo.CartStore
	calc      *pricing.Calculator
	validator *checkout.Validator
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	cartStore repo.CartStore,
	calc *pricing.Calculator,
	validator *checkout.Validator,
) *OrderUsecase {
	return &OrderUsecase{
		tx:        tx,
		cartStore: cartStore,
		calc:      calc,
		validator: validator,
	}
}

type LocationInput struct {
	Name string
	Lat  float64
	Lng  float64
}

type PlaceOrderInput struct {
	Location       *LocationInput
	DeliveryPhone  string
	PayMethod      string
	TransactionID  string
	Note           string
	IdempotencyKey string
}

type OrderItemOutput struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int64  `json:"quantity"`
}

type OrderOutput struct {
	ID             int64             `json:"id"`
	UserID         int64             `json:"user_id"`
	RestaurantID   int64             `json:"restaurant_id"`
	Status         string            `json:"status"`
	PaymentStatus  string            `json:"payment_status"`
	PaymentMethod  string            `json:"payment_method"`
	LocationName   string            `json:"location_name"`
	DeliveryPhone  string            `json:"delivery_phone"`
	DistanceKm     float64           `json:"distance_km"`
	Subtotal       string            `json:"subtotal"`
	DiscountAmount string            `json:"discount_amount"`
	DeliveryCharge string            `json:"delivery_charge"`
	TotalPayment   string            `json:"total_payment"`
	FreeDelivery   bool              `json:"free_delivery_used"`
	CreatedAt      time.Time         `json:"created_at"`
	Items          []OrderItemOutput `json:"items"`
}

// PlaceOrder は注文確定。
// 価格・配達料・検証はすべてサーバー側で計算し直す
func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if key == "" || len(key) > 255 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid idempotency_key")
	}

	method := model.PaymentMethod(in.PayMethod)
	if method != model.PaymentMethodCash && method != model.PaymentMethodQRPay {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid payment_method")
	}

	c, err := u.cartStore.Get(ctx, userID)
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "cart store error")
	}

	var out OrderOutput

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同じキーなら同じ結果を返す
		existing, found, err := r.Orders().FindByIdempotencyKey(ctx, userID, key)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if found {
			items, err := r.OrderItems().ListByOrderID(ctx, existing.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			out = toOrderOutput(existing, items)
			return nil
		}

		//距離とクレジットを確定してからドラフトを組む
		var distance *float64
		var restaurant model.Restaurant

		rid, hasRestaurant := c.RestaurantID()
		if hasRestaurant && in.Location != nil {
			restaurant, err = r.Restaurants().FindByID(ctx, rid)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusBadRequest, "restaurant no longer available")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			d := geo.DistanceKm(in.Location.Lat, in.Location.Lng, restaurant.Lat, restaurant.Lng)
			distance = &d
		}

		//取得に失敗しても0扱い。サーバー確認なしの無料配達はしない
		credits, err := r.Users().FreeDeliveryRemaining(ctx, userID)
		if err != nil {
			credits = 0
		}

		quote := u.calc.Price(c, distance, credits)

		draft := checkout.Draft{
			Cart:          c,
			Quote:         quote,
			PayMethod:     method,
			DeliveryPhone: in.DeliveryPhone,
			TransactionID: in.TransactionID,
			Note:          in.Note,
		}
		if in.Location != nil {
			draft.Location = &checkout.Location{
				Name: in.Location.Name,
				Lat:  in.Location.Lat,
				Lng:  in.Location.Lng,
			}
		}

		if err := u.validator.Validate(draft); err != nil {
			var ve *checkout.ValidationError
			if errors.As(err, &ve) {
				return NewHTTPError(http.StatusBadRequest, ve.Reason)
			}
			return NewHTTPError(http.StatusBadRequest, err.Error())
		}

		//確定時に商品をもう一度確認してスナップショットを作る
		orderItems := make([]model.OrderItem, 0, len(c.Lines))
		now := time.Now()

		for _, line := range c.Lines {
			p, err := r.Products().FindByID(ctx, line.ProductID)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusBadRequest, "Some items are no longer available.")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !p.IsActive {
				return NewHTTPError(http.StatusBadRequest, "Some items are no longer available.")
			}

			orderItems = append(orderItems, model.OrderItem{
				ProductID:           line.ProductID,
				ProductNameSnapshot: p.Name,
				UnitPriceSnapshot:   line.UnitPrice,
				Quantity:            line.Quantity,
				CreatedAt:           now,
			})
		}

		//無料配達はここで初めて消費する。
		//取り合いに負けていたら通常料金で計算し直す
		if quote.FreeDeliveryUsed {
			consumed, err := r.Users().ConsumeFreeDelivery(ctx, userID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !consumed {
				quote = u.calc.Price(c, distance, 0)
			}
		}

		payStatus := model.PaymentStatusUnpaid
		if method == model.PaymentMethodQRPay {
			payStatus = model.PaymentStatusPaid
		}

		order := model.Order{
			UserID:           userID,
			RestaurantID:     rid,
			Status:           model.OrderStatusPending,
			PayStatus:        payStatus,
			PayMethod:        method,
			LocationName:     in.Location.Name,
			LocationLat:      in.Location.Lat,
			LocationLng:      in.Location.Lng,
			DeliveryPhone:    in.DeliveryPhone,
			Subtotal:         quote.Subtotal,
			DiscountAmount:   quote.DiscountAmount,
			DeliveryCharge:   quote.DeliveryFee,
			TotalPayment:     quote.GrandTotal,
			FreeDeliveryUsed: quote.FreeDeliveryUsed,
			IdempotencyKey:   key,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if distance != nil {
			order.DistanceKm = *distance
		}
		if method == model.PaymentMethodQRPay {
			txnID := strings.TrimSpace(in.TransactionID)
			note := strings.TrimSpace(in.Note)
			order.TransactionID = &txnID
			order.Note = &note
		}

		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			//同じキーが同時に入った場合はもう一度探して同じ結果を返す
			ex2, found2, err2 := r.Orders().FindByIdempotencyKey(ctx, userID, key)
			if err2 == nil && found2 {
				items2, err3 := r.OrderItems().ListByOrderID(ctx, ex2.ID)
				if err3 != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
				out = toOrderOutput(ex2, items2)
				return nil
			}
			return NewHTTPError(http.StatusBadRequest, "idempotency conflict")
		}

		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		order.ID = orderID
		out = toOrderOutput(order, orderItems)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}

	//注文は成立しているのでカートの掃除失敗は握りつぶす
	_ = u.cartStore.Clear(ctx, userID)

	return out, nil
}

type OrdersPageOutput struct {
	Orders []OrderOutput `json:"orders"`
	Total  int64         `json:"total"`
	Page   int           `json:"page"`
	Limit  int           `json:"limit"`
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64, page int, limit int) (OrdersPageOutput, error) {
	if userID <= 0 {
		return OrdersPageOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if page < 1 {
		return OrdersPageOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return OrdersPageOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	out := OrdersPageOutput{Page: page, Limit: limit}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListByUserID(ctx, userID, page, limit)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out.Total = total
		out.Orders = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			out.Orders = append(out.Orders, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return OrdersPageOutput{}, err
	}
	return out, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.UserID != userID {
			//他人の注文は「存在しない扱い」にする
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// 配達の進行に沿った遷移だけを許す
var statusTransitions = map[model.OrderStatus][]model.OrderStatus{
	model.OrderStatusPending:   {model.OrderStatusConfirmed, model.OrderStatusCanceled},
	model.OrderStatusConfirmed: {model.OrderStatusOnTheWay, model.OrderStatusCanceled},
	model.OrderStatusOnTheWay:  {model.OrderStatusDelivered},
}

// UpdateStatus は管理側の配達進行の更新
func (u *OrderUsecase) UpdateStatus(ctx context.Context, orderID int64, status string) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	next := model.OrderStatus(status)

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		allowed := false
		for _, s := range statusTransitions[o.Status] {
			if s == next {
				allowed = true
				break
			}
		}
		if !allowed {
			return NewHTTPError(http.StatusBadRequest, "invalid status transition")
		}

		if err := r.Orders().UpdateStatus(ctx, orderID, next); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		o.Status = next
		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID: it.ProductID,
			Name:      it.ProductNameSnapshot,
			UnitPrice: it.UnitPriceSnapshot.StringFixed(2),
			Quantity:  it.Quantity,
		})
	}

	return OrderOutput{
		ID:             o.ID,
		UserID:         o.UserID,
		RestaurantID:   o.RestaurantID,
		Status:         string(o.Status),
		PaymentStatus:  string(o.PayStatus),
		PaymentMethod:  string(o.PayMethod),
		LocationName:   o.LocationName,
		DeliveryPhone:  o.DeliveryPhone,
		DistanceKm:     o.DistanceKm,
		Subtotal:       o.Subtotal.StringFixed(2),
		DiscountAmount: o.DiscountAmount.StringFixed(2),
		DeliveryCharge: o.DeliveryCharge.StringFixed(2),
		TotalPayment:   o.TotalPayment.StringFixed(2),
		FreeDelivery:   o.FreeDeliveryUsed,
		CreatedAt:      o.CreatedAt,
		Items:          outItems,
	}
}
