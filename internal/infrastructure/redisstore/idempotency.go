package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/retailm/retailm-api/internal/application/sales"
	"github.com/retailm/retailm-api/pkg/config"
)

var _ sales.IdempotencyStore = (*IdempotencyStore)(nil)

// Valor centinela mientras la operación está en curso.
const pendingMarker = "__PENDING__"

// IdempotencyStore guarda claves de idempotencia en Redis. Reserve usa SET NX
// para que solo un proceso gane la clave; Complete reemplaza el marcador por
// el ID de la venta, conservando el TTL restante.
type IdempotencyStore struct {
	client *redis.Client
	prefix string
}

// NewClient crea el cliente Redis y verifica la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// NewIdempotencyStore construye el almacén sobre un cliente existente.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client, prefix: "idem:sale:"}
}

// Reserve marca la clave como en curso. Devuelve false si ya existía.
func (s *IdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.prefix+key, pendingMarker, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("reserve idempotency key: %w", err)
	}
	return ok, nil
}

// Lookup devuelve el saleID asociado a la clave, o pending=true si está
// reservada pero aún sin resultado. Clave inexistente: ("", false, nil).
func (s *IdempotencyStore) Lookup(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup idempotency key: %w", err)
	}
	if val == pendingMarker {
		return "", true, nil
	}
	return val, false, nil
}

// Complete asocia el resultado a la clave reservada sin renovar el TTL.
func (s *IdempotencyStore) Complete(ctx context.Context, key, saleID string) error {
	if err := s.client.Set(ctx, s.prefix+key, saleID, redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("complete idempotency key: %w", err)
	}
	return nil
}

// Release libera la clave tras un fallo, habilitando el reintento.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}
