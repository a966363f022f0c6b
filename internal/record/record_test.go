package record

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/SVEX/internal/domain"
)

var testKeys = []string{"id", "desc", "digg_count"}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatNone, "none": FormatNone, "CSV": FormatCSV, " sqlite ": FormatSQLite, "postgres": FormatPostgres} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("xlsx")
	assert.Error(t, err)
}

func TestCleanName(t *testing.T) {
	assert.Equal(t, "UID1_ab_发布作品", CleanName(` UID1_a/b_发布作品 `))
	assert.Equal(t, "", CleanName(`<>|`))
}

func TestBlank(t *testing.T) {
	s, err := Open(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, domain.FieldKeys, s.FieldKeys())
	assert.Error(t, s.Save(context.Background(), []any{"x"}))
	require.NoError(t, s.Close())
}

func TestOpen_RequiresName(t *testing.T) {
	_, err := Open(context.Background(), Options{Format: FormatCSV, Root: t.TempDir(), Name: "  "})
	assert.Error(t, err)
}

func TestCSV_HeaderOnceAndAppend(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	opt := Options{Format: FormatCSV, Root: root, Name: "UID1_m_发布作品", Keys: testKeys}

	s, err := Open(ctx, opt)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, []any{"1", "a,b", int64(-1)}))
	require.NoError(t, s.Close())

	s, err = Open(ctx, opt)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, []any{"2", "第二行", int64(5)}))
	require.NoError(t, s.Close())

	b, err := os.ReadFile(filepath.Join(root, "UID1_m_发布作品.csv"))
	require.NoError(t, err)
	text := strings.TrimPrefix(string(b), "\ufeff")
	assert.Equal(t, "id,desc,digg_count\n1,\"a,b\",-1\n2,第二行,5\n", text)
	assert.Equal(t, 1, strings.Count(string(b), "\ufeff"))
}

func TestCSV_RenamesOldRecord(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	s, err := Open(ctx, Options{Format: FormatCSV, Root: root, Name: "UID1_旧_发布作品", Keys: testKeys})
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, []any{"1", "x", int64(0)}))
	require.NoError(t, s.Close())

	s, err = Open(ctx, Options{Format: FormatCSV, Root: root, Name: "UID1_新_发布作品", Old: "UID1_旧_发布作品", Keys: testKeys})
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, []any{"2", "y", int64(0)}))
	require.NoError(t, s.Close())

	_, err = os.Stat(filepath.Join(root, "UID1_旧_发布作品.csv"))
	assert.True(t, os.IsNotExist(err))
	b, err := os.ReadFile(filepath.Join(root, "UID1_新_发布作品.csv"))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(b), "id,desc,digg_count"))
	assert.Contains(t, string(b), "1,x,0\n2,y,0\n")
}

func TestCSV_SaveRejectsWrongWidth(t *testing.T) {
	s, err := Open(context.Background(), Options{Format: FormatCSV, Root: t.TempDir(), Name: "n", Keys: testKeys})
	require.NoError(t, err)
	defer s.Close()
	assert.Error(t, s.Save(context.Background(), []any{"only"}))
}

func TestSQLite_SaveAndRename(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	s, err := Open(ctx, Options{Format: FormatSQLite, Root: root, Name: "UID1_旧_发布作品", Keys: testKeys})
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, []any{"1", "x", int64(3)}))
	require.NoError(t, s.Close())

	s, err = Open(ctx, Options{Format: FormatSQLite, Root: root, Name: "UID1_新_发布作品", Old: "UID1_旧_发布作品", Keys: testKeys})
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, []any{"2", "y", int64(-1)}))
	require.NoError(t, s.Close())

	db, err := sql.Open("sqlite", filepath.Join(root, SQLiteFile))
	require.NoError(t, err)
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT "id", "digg_count" FROM "UID1_新_发布作品" ORDER BY rowid`)
	require.NoError(t, err)
	defer rows.Close()
	var got []string
	for rows.Next() {
		var id string
		var n int64
		require.NoError(t, rows.Scan(&id, &n))
		got = append(got, id+":"+cell(n))
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"1:3", "2:-1"}, got)

	var n int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE name = 'UID1_旧_发布作品'`).Scan(&n))
	assert.Zero(t, n)
}

func TestSQLBuilders(t *testing.T) {
	assert.Equal(t,
		`CREATE TABLE IF NOT EXISTS "t""x" ("id" TEXT, "desc" TEXT, "digg_count" BIGINT)`,
		postgresDialect.createTable(`t"x`, testKeys))
	assert.Equal(t,
		`CREATE TABLE IF NOT EXISTS "t" ("id" TEXT, "desc" TEXT, "digg_count" INTEGER)`,
		sqliteDialect.createTable("t", testKeys))
	assert.Equal(t,
		`INSERT INTO "t" ("id", "desc", "digg_count") VALUES ($1, $2, $3)`,
		postgresDialect.insert("t", testKeys))
	assert.Equal(t,
		`INSERT INTO "t" ("id", "desc", "digg_count") VALUES (?, ?, ?)`,
		sqliteDialect.insert("t", testKeys))
	assert.Equal(t, `ALTER TABLE "a" RENAME TO "b"`, postgresDialect.renameTable("a", "b"))
}

func TestPostgres_RequiresDSN(t *testing.T) {
	_, err := Open(context.Background(), Options{Format: FormatPostgres, Name: "t"})
	assert.ErrorContains(t, err, "DSN")

	_, err = Open(context.Background(), Options{Format: FormatPostgres, Name: "t", DSN: "::not a dsn::"})
	assert.Error(t, err)
}

func TestFieldKeysCopied(t *testing.T) {
	keys := []string{"id"}
	s, err := Open(context.Background(), Options{Keys: keys})
	require.NoError(t, err)
	keys[0] = "changed"
	assert.Equal(t, []string{"id"}, s.FieldKeys())
}
