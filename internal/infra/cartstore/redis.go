package cartstore

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"

	"bhokexpress/internal/domain/cart"
)

// RedisCartStore はカートをユーザーごとのJSONとしてredisに置く。
// アプリ再起動をまたいで残すためTTLは付けない
type RedisCartStore struct {
	client *redis.Client
}

// DI
func NewRedisCartStore(client *redis.Client) *RedisCartStore {
	return &RedisCartStore{client: client}
}

func cartKey(userID int64) string {
	return "cart:" + strconv.FormatInt(userID, 10)
}

// Get はカートを読む。キーが無ければ空のカート
func (s *RedisCartStore) Get(ctx context.Context, userID int64) (*cart.Cart, error) {
	raw, err := s.client.Get(ctx, cartKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return cart.New(), nil
	}
	if err != nil {
		return nil, err
	}

	var c cart.Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		//壊れたカートは空扱いで作り直す
		return cart.New(), nil
	}
	return &c, nil
}

func (s *RedisCartStore) Save(ctx context.Context, userID int64, c *cart.Cart) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, cartKey(userID), raw, 0).Err()
}

func (s *RedisCartStore) Clear(ctx context.Context, userID int64) error {
	return s.client.Del(ctx, cartKey(userID)).Err()
}
