package record

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// sqliteSink 把每个记录名映射为 <root>/svex.db 中的一张表。
type sqliteSink struct {
	db     *sql.DB
	keys   []string
	insert string
}

func openSQLite(ctx context.Context, root, name, old string, keys []string) (*sqliteSink, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("sqlite: mkdir %s: %w", root, err)
	}
	db, err := sql.Open("sqlite", filepath.Join(root, SQLiteFile))
	if err != nil {
		return nil, fmt.Errorf("sqlite: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // 单写者

	if err := migrateSQLite(ctx, db, name, old, keys); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &sqliteSink{db: db, keys: keys, insert: sqliteDialect.insert(name, keys)}, nil
}

func migrateSQLite(ctx context.Context, db *sql.DB, name, old string, keys []string) error {
	if old != "" {
		oldExists, err := sqliteTableExists(ctx, db, old)
		if err != nil {
			return err
		}
		newExists, err := sqliteTableExists(ctx, db, name)
		if err != nil {
			return err
		}
		if oldExists && !newExists {
			if _, err := db.ExecContext(ctx, sqliteDialect.renameTable(old, name)); err != nil {
				return fmt.Errorf("sqlite: rename %s -> %s: %w", old, name, err)
			}
		}
	}
	if _, err := db.ExecContext(ctx, sqliteDialect.createTable(name, keys)); err != nil {
		return fmt.Errorf("sqlite: init schema: %w", err)
	}
	return nil
}

func sqliteTableExists(ctx context.Context, db *sql.DB, table string) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("sqlite: lookup table %s: %w", table, err)
	}
	return n > 0, nil
}

func (s *sqliteSink) FieldKeys() []string { return s.keys }

func (s *sqliteSink) Save(ctx context.Context, row []any) error {
	if err := checkRow(s.keys, row); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, s.insert, row...); err != nil {
		return fmt.Errorf("sqlite: insert: %w", err)
	}
	return nil
}

func (s *sqliteSink) Close() error { return s.db.Close() }
