package cart

import "github.com/shopspring/decimal"

// 1行 = 1商品。単価は追加時点のスナップショット
type Line struct {
	ProductID    int64           `json:"product_id"`
	RestaurantID int64           `json:"restaurant_id"`
	Name         string          `json:"name"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Quantity     int64           `json:"quantity"`
}

// Cart はユーザー1人分のカート。
// 不変条件: 空でなければ全行が同じ店舗に属する。
// 行は表示用に追加順を保つ（意味は持たない）
type Cart struct {
	Lines []Line `json:"lines"`
}

func New() *Cart {
	return &Cart{Lines: []Line{}}
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// RestaurantID はロック中の店舗ID。空カートなら (0, false)
func (c *Cart) RestaurantID() (int64, bool) {
	if len(c.Lines) == 0 {
		return 0, false
	}
	return c.Lines[0].RestaurantID, true
}

// AddItem は商品を1つ追加する。同じ商品なら数量+1。
// 別店舗の商品は変更なしで false を返す（エラーではなく通常の結果）
func (c *Cart) AddItem(item Line) bool {
	if rid, ok := c.RestaurantID(); ok && rid != item.RestaurantID {
		return false
	}

	for i := range c.Lines {
		if c.Lines[i].ProductID == item.ProductID {
			c.Lines[i].Quantity++
			return true
		}
	}

	item.Quantity = 1
	c.Lines = append(c.Lines, item)
	return true
}

// DecreaseItem は数量を1減らす。1だった行は消える。該当なしは何もしない
func (c *Cart) DecreaseItem(productID int64) {
	for i := range c.Lines {
		if c.Lines[i].ProductID != productID {
			continue
		}
		if c.Lines[i].Quantity > 1 {
			c.Lines[i].Quantity--
		} else {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
		}
		return
	}
}

// RemoveItem は行を無条件で消す。該当なしは何もしない
func (c *Cart) RemoveItem(productID int64) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

func (c *Cart) Clear() {
	c.Lines = c.Lines[:0]
}

// Subtotal = Σ(単価 × 数量)。丸めない
func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.Lines {
		sum = sum.Add(l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity)))
	}
	return sum
}
