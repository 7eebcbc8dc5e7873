package usecase

import (
	"context"

	repo "bhokexpress/internal/repository"
)

// 無料配達クレジットの読み取り専用窓口。
// サーバーが唯一の正で、クライアントは注文成立後に取り直す
type FreeDeliveryUsecase struct {
	userRepo repo.UserRepository
}

func NewFreeDeliveryUsecase(userRepo repo.UserRepository) *FreeDeliveryUsecase {
	return &FreeDeliveryUsecase{userRepo: userRepo}
}

type FreeDeliveryOutput struct {
	FreeDelivery int `json:"freeDelivery"`
}

// Remaining は残回数を返す。未ログイン・取得失敗は0（fail-closed）。
// チェックアウトを止めないためエラーは返さない
func (u *FreeDeliveryUsecase) Remaining(ctx context.Context, userID int64) FreeDeliveryOutput {
	if userID <= 0 {
		return FreeDeliveryOutput{FreeDelivery: 0}
	}

	n, err := u.userRepo.FreeDeliveryRemaining(ctx, userID)
	if err != nil || n < 0 {
		return FreeDeliveryOutput{FreeDelivery: 0}
	}

	return FreeDeliveryOutput{FreeDelivery: n}
}
