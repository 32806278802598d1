package idempotency

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/matheusmosca/sales-orders/internal/platform/config"
)

const (
	// DefaultTTL é por quanto tempo uma resposta concluída é reaproveitada
	DefaultTTL = 24 * time.Hour
	// pendingTTL libera a chave se o processo morrer no meio da requisição
	pendingTTL = time.Minute
)

type State string

const (
	StatePending State = "pending"
	StateDone    State = "done"
)

// Record é o estado guardado para uma chave de idempotência
type Record struct {
	State       State  `json:"state"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// Store guarda as chaves de idempotência
type Store interface {
	// Begin reserva a chave. Se ela já existir, started é false e o registro atual é retornado.
	Begin(ctx context.Context, key string) (existing *Record, started bool, err error)
	Complete(ctx context.Context, key string, record Record) error
	Release(ctx context.Context, key string) error
}

// RedisStore implementa Store com SETNX + respostas serializadas em JSON
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient cria o cliente e valida a conexão
func NewRedisClient(ctx context.Context, cfg config.Redis) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "ping redis %s", cfg.Addr)
	}
	return client, nil
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Begin(ctx context.Context, key string) (*Record, bool, error) {
	pending, _ := json.Marshal(Record{State: StatePending})

	ok, err := s.client.SetNX(ctx, key, pending, pendingTTL).Result()
	if err != nil {
		return nil, false, errors.Wrap(err, "reserve idempotency key")
	}
	if ok {
		return nil, true, nil
	}

	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		// expirou entre o SETNX e o GET
		return s.Begin(ctx, key)
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "load idempotency key")
	}

	var record Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, false, errors.Wrap(err, "decode idempotency record")
	}
	return &record, false, nil
}

func (s *RedisStore) Complete(ctx context.Context, key string, record Record) error {
	record.State = StateDone
	raw, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "encode idempotency record")
	}
	return errors.Wrap(s.client.Set(ctx, key, raw, s.ttl).Err(), "store idempotent response")
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	return errors.Wrap(s.client.Del(ctx, key).Err(), "release idempotency key")
}
