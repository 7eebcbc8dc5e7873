package pricing

import (
	"github.com/shopspring/decimal"

	"bhokexpress/internal/domain/cart"
)

// Calculator は価格計算機。割引率は設定値（既定2%）
type Calculator struct {
	discountRate decimal.Decimal
}

func NewCalculator(discountRate decimal.Decimal) *Calculator {
	return &Calculator{discountRate: discountRate}
}

// Quote は確定前の価格内訳。途中は丸めず、丸めはJSON境界でのみ行う
type Quote struct {
	Subtotal           decimal.Decimal
	DiscountRate       decimal.Decimal
	DiscountAmount     decimal.Decimal
	DiscountedSubtotal decimal.Decimal
	DeliveryFee        decimal.Decimal
	GrandTotal         decimal.Decimal

	//距離未確定で配達料を出せない（0kmとは別物）
	FeePending bool

	//このQuoteが無料配達クレジットで配達料0になったか
	FreeDeliveryUsed bool
}

// Price はカート・距離（nil=未確定）・残クレジットからQuoteを組む
func (c *Calculator) Price(ct *cart.Cart, distanceKm *float64, freeCredits int) Quote {
	sub := ct.Subtotal()
	disc := sub.Mul(c.discountRate)
	discounted := sub.Sub(disc)

	q := Quote{
		Subtotal:           sub,
		DiscountRate:       c.discountRate,
		DiscountAmount:     disc,
		DiscountedSubtotal: discounted,
	}

	if distanceKm == nil {
		//距離が届くまで配達料は保留
		q.FeePending = true
		q.DeliveryFee = decimal.Zero
		q.GrandTotal = discounted
		return q
	}

	q.DeliveryFee = DeliveryFee(*distanceKm, freeCredits)
	q.FreeDeliveryUsed = freeCredits > 0
	q.GrandTotal = discounted.Add(q.DeliveryFee)

	return q
}
