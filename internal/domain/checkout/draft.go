package checkout

import (
	"bhokexpress/internal/domain/cart"
	"bhokexpress/internal/domain/model"
	"bhokexpress/internal/domain/pricing"
)

// 配達先。逆ジオコーディング済みの表示名と座標
type Location struct {
	Name string
	Lat  float64
	Lng  float64
}

// Draft は送信前の注文。カートと価格から都度組み立て、保存しない
type Draft struct {
	Cart     *cart.Cart
	Quote    pricing.Quote
	Location *Location

	PayMethod     model.PaymentMethod
	DeliveryPhone string

	//QRPAYのみ: 取引IDと振込名義
	TransactionID string
	Note          string
}
