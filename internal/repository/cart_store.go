package repository

import (
	"context"

	"bhokexpress/internal/domain/cart"
)

// CartStore はユーザーごとのカート置き場（key-value）。
// カートはDBの射影ではなくセッションの持ち物なので、
// get/set/clearだけの素朴なKVとして扱う
type CartStore interface {
	// 無ければ空のカートを返す
	Get(ctx context.Context, userID int64) (*cart.Cart, error)
	Save(ctx context.Context, userID int64, c *cart.Cart) error
	Clear(ctx context.Context, userID int64) error
}
