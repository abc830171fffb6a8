package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/anthony-1214/shop-service/internal/domain"
)

const cartField = "cart"

// RedisStore keeps one hash per session so carts survive process restarts.
// Lines are stored as a JSON-encoded product_id -> qty map under a single
// hash field. Sessions are single-caller, so read-modify-write per session
// is safe without a server-side lock.
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisStore(addr string, logger *zap.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(addr)
	if err != nil {
		opts = &redis.Options{
			Addr:         addr,
			MinIdleConns: 1,
			DialTimeout:  10 * time.Second,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
		}
	}

	return &RedisStore{
		client: redis.NewClient(opts),
		logger: logger,
	}, nil
}

// Ping reports whether the Redis backend is reachable.
func (s *RedisStore) Ping(ctx context.Context) bool {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.client.Ping(pingCtx).Err() == nil
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	cart := domain.NewCart(sessionID)

	val, err := s.client.HGet(ctx, cartKey(sessionID), cartField).Result()
	if err == redis.Nil {
		return cart, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis HGet: %w", err)
	}

	if err := json.Unmarshal([]byte(val), &cart.Lines); err != nil {
		return nil, fmt.Errorf("failed to parse cart data: %w", err)
	}
	return cart, nil
}

func (s *RedisStore) Add(ctx context.Context, sessionID, productID string) error {
	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	cart.Lines[productID]++
	return s.save(ctx, sessionID, cart.Lines)
}

func (s *RedisStore) Remove(ctx context.Context, sessionID, productID string) error {
	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	delete(cart.Lines, productID)
	return s.save(ctx, sessionID, cart.Lines)
}

func (s *RedisStore) SetQty(ctx context.Context, sessionID, productID string, qty int) error {
	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if qty <= 0 {
		delete(cart.Lines, productID)
	} else {
		cart.Lines[productID] = qty
	}
	return s.save(ctx, sessionID, cart.Lines)
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	return s.save(ctx, sessionID, map[string]int{})
}

func (s *RedisStore) save(ctx context.Context, sessionID string, lines map[string]int) error {
	bin, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	if err := s.client.HSet(ctx, cartKey(sessionID), cartField, bin).Err(); err != nil {
		s.logger.Error("Failed to save cart",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return fmt.Errorf("redis HSet: %w", err)
	}
	return nil
}

func cartKey(sessionID string) string {
	return "cart:" + sessionID
}
