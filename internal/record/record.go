// Package record 把规范化作品逐行写入持久化存储。
//
// 每个 Sink 对应一个记录名（账号/合集维度，如 UID100_标记_发布作品），
// 持有期间只追加；调用方负责 Close。
package record

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/John-Robertt/SVEX/internal/domain"
)

// Format 是存储格式。空串表示不落盘。
type Format string

const (
	FormatNone     Format = ""
	FormatCSV      Format = "csv"
	FormatSQLite   Format = "sqlite"
	FormatPostgres Format = "postgres"
)

// ParseFormat 接受 csv/sqlite/postgres，以及 ""/none 表示不落盘。
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatNone, "none":
		return FormatNone, nil
	case FormatCSV, FormatSQLite, FormatPostgres:
		return f, nil
	}
	return "", fmt.Errorf("不支持的存储格式：%q", s)
}

// Sink 是流水线使用的记录器。
type Sink interface {
	FieldKeys() []string
	Save(ctx context.Context, row []any) error
	Close() error
}

// Options 描述一次 Open。
//
// - Root：CSV/SQLite 文件所在目录
// - Name：记录名（文件名或表名）
// - Old：上一次使用的记录名；非空且与 Name 不同时，先把旧记录改名为 Name 再写入
// - DSN：postgres 连接串
// - Keys：列顺序，默认 domain.FieldKeys
type Options struct {
	Format Format
	Root   string
	Name   string
	Old    string
	DSN    string
	Keys   []string
}

// SQLiteFile 是 SQLite 数据库在 Root 下的文件名。
const SQLiteFile = "svex.db"

// Open 按 Format 打开记录器。
func Open(ctx context.Context, opt Options) (Sink, error) {
	keys := opt.Keys
	if len(keys) == 0 {
		keys = domain.FieldKeys
	}
	keys = append([]string(nil), keys...)

	if opt.Format == FormatNone {
		return Blank(keys), nil
	}
	name := CleanName(opt.Name)
	if name == "" {
		return nil, fmt.Errorf("记录名不能为空")
	}
	old := CleanName(opt.Old)
	if old == name {
		old = ""
	}

	switch opt.Format {
	case FormatCSV:
		return openCSV(opt.Root, name, old, keys)
	case FormatSQLite:
		return openSQLite(ctx, opt.Root, name, old, keys)
	case FormatPostgres:
		return openPostgres(ctx, opt.DSN, name, old, keys)
	}
	return nil, fmt.Errorf("不支持的存储格式：%q", opt.Format)
}

var unsafeName = regexp.MustCompile(`[\\/:*?"<>|\x00-\x1f]+`)

// CleanName 去掉文件名与标识符中不安全的字符。
func CleanName(s string) string {
	return strings.TrimSpace(unsafeName.ReplaceAllString(s, ""))
}

// integerKeys 是以整数落库的列。
var integerKeys = map[string]bool{
	"create_timestamp": true,
	"width":            true,
	"height":           true,
	"user_age":         true,
	"digg_count":       true,
	"comment_count":    true,
	"collect_count":    true,
	"share_count":      true,
	"play_count":       true,
}

func checkRow(keys []string, row []any) error {
	if len(row) != len(keys) {
		return fmt.Errorf("行列数不一致：期望 %d，实际 %d", len(keys), len(row))
	}
	return nil
}

type blank struct{ keys []string }

// Blank 返回只校验列数、不落盘的记录器。
func Blank(keys []string) Sink { return blank{keys: keys} }

func (b blank) FieldKeys() []string { return b.keys }

func (b blank) Save(_ context.Context, row []any) error { return checkRow(b.keys, row) }

func (b blank) Close() error { return nil }
