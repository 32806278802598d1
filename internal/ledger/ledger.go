// Package ledger guarda no PostgreSQL o histórico append-only de movimentações de estoque.
package ledger

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/matheusmosca/sales-orders/internal/inventory"
	"github.com/matheusmosca/sales-orders/internal/platform/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS stock_movements (
	id              UUID PRIMARY KEY,
	product_id      BIGINT NOT NULL,
	reference       TEXT NOT NULL,
	change_quantity INTEGER NOT NULL,
	movement_type   TEXT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS stock_movements_product_idx ON stock_movements (product_id, created_at DESC);
CREATE INDEX IF NOT EXISTS stock_movements_reference_idx ON stock_movements (reference);
`

const insertMovement = `
	INSERT INTO stock_movements (id, product_id, reference, change_quantity, movement_type, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO NOTHING
`

const selectByProduct = `
	SELECT id::text, product_id, reference, change_quantity, movement_type, created_at
	FROM stock_movements
	WHERE product_id = $1
	ORDER BY created_at DESC
	LIMIT $2
`

// DB é a parte do pgxpool.Pool usada pelo ledger
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// PostgresLedger implementa inventory.MovementRecorder e a leitura do histórico
type PostgresLedger struct {
	db DB
}

func NewPostgresLedger(db DB) *PostgresLedger {
	return &PostgresLedger{db: db}
}

// Connect abre o pool e espera o banco ficar disponível
func Connect(ctx context.Context, cfg config.Postgres) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse database config")
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create connection pool")
	}

	log := zerolog.Ctx(ctx)
	for i := 0; i < 30; i++ {
		if err := pool.Ping(ctx); err == nil {
			log.Info().Str("host", cfg.Host).Msg("✅ Connected to ledger database")
			return pool, nil
		}
		log.Info().Int("attempt", i+1).Msg("⏳ Waiting for ledger database...")
		select {
		case <-ctx.Done():
			pool.Close()
			return nil, ctx.Err()
		case <-time.After(time.Second):
		}
	}

	pool.Close()
	return nil, errors.New("failed to connect to ledger database after 30 attempts")
}

// EnsureSchema cria a tabela de movimentações se ela não existir
func (l *PostgresLedger) EnsureSchema(ctx context.Context) error {
	_, err := l.db.Exec(ctx, schema)
	return errors.Wrap(err, "create ledger schema")
}

// Record grava as movimentações em um único round-trip
func (l *PostgresLedger) Record(ctx context.Context, movements []inventory.Movement) error {
	if len(movements) == 0 {
		return nil
	}

	batch := insertBatch(movements)
	results := l.db.SendBatch(ctx, batch)
	for range movements {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return errors.Wrap(err, "insert stock movement")
		}
	}
	return errors.Wrap(results.Close(), "close movement batch")
}

func insertBatch(movements []inventory.Movement) *pgx.Batch {
	batch := &pgx.Batch{}
	for _, m := range movements {
		batch.Queue(insertMovement, m.ID, m.ProductID, m.Reference, m.Change, string(m.Type), m.CreatedAt)
	}
	return batch
}

// ListByProduct retorna as movimentações mais recentes de um produto
func (l *PostgresLedger) ListByProduct(ctx context.Context, productID int64, limit int) ([]inventory.Movement, error) {
	rows, err := l.db.Query(ctx, selectByProduct, productID, limit)
	if err != nil {
		return nil, errors.Wrapf(err, "list movements of product %d", productID)
	}
	defer rows.Close()

	movements := []inventory.Movement{}
	for rows.Next() {
		var m inventory.Movement
		var kind string
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Reference, &m.Change, &kind, &m.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan stock movement")
		}
		m.Type = inventory.MovementType(kind)
		movements = append(movements, m)
	}
	return movements, errors.Wrap(rows.Err(), "iterate stock movements")
}
