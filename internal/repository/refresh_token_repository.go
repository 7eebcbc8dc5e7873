package repository

import (
	"context"

	"bhokexpress/internal/domain/model"
)

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	FindByHash(ctx context.Context, tokenHash string) (model.RefreshToken, error)
	MarkUsed(ctx context.Context, tokenID string) error
	RevokeAllByUserID(ctx context.Context, userID int64) error
}
