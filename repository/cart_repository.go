package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/yashrajoria/farm-marketplace/models"
)

// CartRepository stores carts as JSON documents in Redis. Carts are advisory
// intent with no cross-entity invariants, so they live outside the
// transactional store.
type CartRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

// RedisCartRepository implements CartRepository
type RedisCartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCartRepository(client *redis.Client, ttl time.Duration) *RedisCartRepository {
	return &RedisCartRepository{client: client, ttl: ttl}
}

func (r *RedisCartRepository) key(userID uuid.UUID) string {
	return fmt.Sprintf("cart:user:%s", userID)
}

// Get returns nil, nil when the user has no cart.
func (r *RedisCartRepository) Get(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	data, err := r.client.Get(ctx, r.key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cart models.Cart
	if err := json.Unmarshal([]byte(data), &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *RedisCartRepository) Save(ctx context.Context, cart *models.Cart) error {
	cart.UpdatedAt = time.Now()
	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(cart.UserID), data, r.ttl).Err()
}

func (r *RedisCartRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	return r.client.Del(ctx, r.key(userID)).Err()
}
