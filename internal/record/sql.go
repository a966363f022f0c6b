package record

import (
	"strconv"
	"strings"
)

// dialect 只覆盖两种后端在语句上的差异：占位符与整数列类型。
type dialect struct {
	placeholder func(i int) string
	integer     string
}

var (
	sqliteDialect   = dialect{placeholder: func(int) string { return "?" }, integer: "INTEGER"}
	postgresDialect = dialect{placeholder: func(i int) string { return "$" + strconv.Itoa(i) }, integer: "BIGINT"}
)

// quoteIdent 用双引号包裹标识符，内部双引号加倍。两种后端语义一致。
func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func (d dialect) createTable(table string, keys []string) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(quoteIdent(table))
	b.WriteString(" (")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quoteIdent(k))
		b.WriteByte(' ')
		b.WriteString(d.columnType(k))
	}
	b.WriteString(")")
	return b.String()
}

func (d dialect) insert(table string, keys []string) string {
	var cols, vals strings.Builder
	for i, k := range keys {
		if i > 0 {
			cols.WriteString(", ")
			vals.WriteString(", ")
		}
		cols.WriteString(quoteIdent(k))
		vals.WriteString(d.placeholder(i + 1))
	}
	return "INSERT INTO " + quoteIdent(table) + " (" + cols.String() + ") VALUES (" + vals.String() + ")"
}

func (d dialect) renameTable(from, to string) string {
	return "ALTER TABLE " + quoteIdent(from) + " RENAME TO " + quoteIdent(to)
}

func (d dialect) columnType(key string) string {
	if integerKeys[key] {
		return d.integer
	}
	return "TEXT"
}
