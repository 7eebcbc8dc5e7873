package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusOnTheWay  OrderStatus = "ON_THE_WAY"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCanceled  OrderStatus = "CANCELED"
)

type PaymentStatus string

const (
	// QRPAYは送金証跡つきで届くのでPAID扱い、現金は配達時精算
	PaymentStatusPaid   PaymentStatus = "PAID"
	PaymentStatusUnpaid PaymentStatus = "UNPAID"
)

type PaymentMethod string

const (
	PaymentMethodCash  PaymentMethod = "cash"
	PaymentMethodQRPay PaymentMethod = "QRPAY"
)

type Order struct {
	ID           int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       int64         `gorm:"not null;index;uniqueIndex:idx_orders_user_idem_key" json:"user_id"`
	RestaurantID int64         `gorm:"not null;index" json:"restaurant_id"`
	Status       OrderStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	PayStatus    PaymentStatus `gorm:"type:varchar(20);not null" json:"payment_status"`
	PayMethod    PaymentMethod `gorm:"type:varchar(20);not null" json:"payment_method"`

	//配達先。住所マスタは持たず注文に直接保存する
	LocationName  string  `gorm:"type:varchar(255);not null" json:"location_name"`
	LocationLat   float64 `gorm:"not null" json:"location_lat"`
	LocationLng   float64 `gorm:"not null" json:"location_lng"`
	DeliveryPhone string  `gorm:"type:varchar(30);not null" json:"delivery_phone"`

	//価格内訳。確定時点の計算結果を保存する
	Subtotal       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	DiscountAmount decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"discount_amount"`
	DeliveryCharge decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"delivery_charge"`
	TotalPayment   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_payment"`
	DistanceKm     float64         `gorm:"not null" json:"distance_km"`

	//無料配達クレジットを消費した注文か
	FreeDeliveryUsed bool `gorm:"not null;default:false" json:"free_delivery_used"`

	//QRPAYのみ
	TransactionID *string `gorm:"type:varchar(255)" json:"transaction_id,omitempty"`
	Note          *string `gorm:"type:varchar(255)" json:"note,omitempty"`

	//キーの一意性はユーザー単位。別ユーザーが同じキーを使っても衝突しない
	IdempotencyKey string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_orders_user_idem_key" json:"-"`
	CreatedAt      time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
