package repository

import (
	"context"

	"bhokexpress/internal/domain/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID int64) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	Update(ctx context.Context, user *model.User) error
	IncrementTokenVersion(ctx context.Context, userID int64) error

	// 残りの無料配達回数。サーバーが唯一の正
	FreeDeliveryRemaining(ctx context.Context, userID int64) (int, error)

	// 残回数が1以上のときだけ1減らす。減らせたら true
	ConsumeFreeDelivery(ctx context.Context, userID int64) (bool, error)
}
