package record

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// postgresSink 与 SQLite 使用相同的表结构与改名语义，连接由 pgxpool 管理。
type postgresSink struct {
	pool   *pgxpool.Pool
	keys   []string
	insert string
}

func openPostgres(ctx context.Context, dsn, name, old string, keys []string) (*postgresSink, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres: 缺少 DSN")
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse dsn: %w", err)
	}
	cfg.MaxConns = 1
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := migratePostgres(ctx, pool, name, old, keys); err != nil {
		pool.Close()
		return nil, err
	}
	return &postgresSink{pool: pool, keys: keys, insert: postgresDialect.insert(name, keys)}, nil
}

func migratePostgres(ctx context.Context, pool *pgxpool.Pool, name, old string, keys []string) error {
	if old != "" {
		var oldExists, newExists bool
		err := pool.QueryRow(ctx,
			`SELECT to_regclass($1) IS NOT NULL, to_regclass($2) IS NOT NULL`,
			quoteIdent(old), quoteIdent(name),
		).Scan(&oldExists, &newExists)
		if err != nil {
			return fmt.Errorf("postgres: lookup tables: %w", err)
		}
		if oldExists && !newExists {
			if _, err := pool.Exec(ctx, postgresDialect.renameTable(old, name)); err != nil {
				return fmt.Errorf("postgres: rename %s -> %s: %w", old, name, err)
			}
		}
	}
	if _, err := pool.Exec(ctx, postgresDialect.createTable(name, keys)); err != nil {
		return fmt.Errorf("postgres: init schema: %w", err)
	}
	return nil
}

func (s *postgresSink) FieldKeys() []string { return s.keys }

func (s *postgresSink) Save(ctx context.Context, row []any) error {
	if err := checkRow(s.keys, row); err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, s.insert, row...); err != nil {
		return fmt.Errorf("postgres: insert: %w", err)
	}
	return nil
}

func (s *postgresSink) Close() error {
	s.pool.Close()
	return nil
}
