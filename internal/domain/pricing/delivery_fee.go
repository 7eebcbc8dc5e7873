package pricing

import "github.com/shopspring/decimal"

// 距離帯ごとの配達料（NPR）。上限は含む
//
//	≤1km 20 / ≤2km 30 / ≤3km 40 / ≤4km 50 / それ以上 60
//
// 無料配達クレジットが残っていれば0
func DeliveryFee(distanceKm float64, freeCredits int) decimal.Decimal {
	if freeCredits > 0 {
		return decimal.Zero
	}

	switch {
	case distanceKm <= 1:
		return decimal.NewFromInt(20)
	case distanceKm <= 2:
		return decimal.NewFromInt(30)
	case distanceKm <= 3:
		return decimal.NewFromInt(40)
	case distanceKm <= 4:
		return decimal.NewFromInt(50)
	default:
		return decimal.NewFromInt(60)
	}
}
