// Package payload 把保存下来的平台响应（JSON 或详情页 HTML）解码为原始作品列表。
package payload

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/John-Robertt/SVEX/internal/domain"
	"github.com/John-Robertt/SVEX/internal/value"
)

// Error 是解码阶段的失败，Code 为 read_failed 或 decode_failed。
type Error struct {
	Path string
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("payload %s: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("payload %s %s: %v", e.Code, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Code 返回 err 链上的 payload 错误码；不是 payload 错误时返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

var (
	ErrNoItems    = errors.New("未找到作品数据")
	ErrStatusCode = errors.New("响应状态码非 0")
)

// ReadFile 读取并解码一个文件。.html/.htm 走 FromHTML，其余按 JSON 处理。
func ReadFile(path string) ([]value.Value, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Path: path, Code: domain.ErrCodeReadFailed, Err: err}
	}
	var items []value.Value
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		items, err = FromHTML(b)
	default:
		items, err = Decode(b)
	}
	if err != nil {
		var pe *Error
		if errors.As(err, &pe) {
			pe.Path = path
			return nil, pe
		}
		return nil, &Error{Path: path, Code: domain.ErrCodeDecodeFailed, Err: err}
	}
	return items, nil
}

// Decode 解析 JSON 并拆出作品列表。
func Decode(b []byte) ([]value.Value, error) {
	v, err := value.Parse(b)
	if err != nil {
		return nil, &Error{Code: domain.ErrCodeDecodeFailed, Err: err}
	}
	items, err := Unwrap(v)
	if err != nil {
		return nil, &Error{Code: domain.ErrCodeDecodeFailed, Err: err}
	}
	return items, nil
}

// Unwrap 从已解析的响应中拆出作品列表。支持的外层结构：
//
//   - 顶层数组：每个元素是一个作品
//   - aweme_list / itemList / items：作品数组（允许为空）
//   - aweme_detail / itemStruct / itemInfo.itemStruct：单个作品
//   - 以上结构嵌套在更深层（例如 HTML 注水数据），按键名深度优先查找
//
// status_code 存在且非 0 时返回 ErrStatusCode。
func Unwrap(v value.Value) ([]value.Value, error) {
	switch v.Kind() {
	case value.KindSequence:
		return v.Items(), nil
	case value.KindMapping:
	default:
		return nil, fmt.Errorf("%w：顶层为 %s", ErrNoItems, v.Kind())
	}
	if code := v.Int("status_code", 0); code != 0 {
		return nil, fmt.Errorf("%w：%d（%s）", ErrStatusCode, code, v.String("status_msg", ""))
	}
	if items, ok := find(v, 0); ok {
		return items, nil
	}
	return nil, ErrNoItems
}

var (
	listKeys   = []string{"aweme_list", "itemList", "items"}
	detailKeys = []string{"aweme_detail", "itemStruct"}
)

const maxDepth = 8

func find(v value.Value, depth int) ([]value.Value, bool) {
	if depth > maxDepth || v.Kind() != value.KindMapping {
		return nil, false
	}
	for _, k := range listKeys {
		if n, ok := v.Field(k); ok && n.Kind() == value.KindSequence {
			return n.Items(), true
		}
	}
	for _, k := range detailKeys {
		if n, ok := v.Field(k); ok && n.Kind() == value.KindMapping && n.Len() > 0 {
			return []value.Value{n}, true
		}
	}
	for _, k := range v.Keys() {
		n, _ := v.Field(k)
		if items, ok := find(n, depth+1); ok {
			return items, true
		}
	}
	return nil, false
}

// Profile 返回账号主页数据中交给 Preprocess 的节点。
//
// 抖音接口把账号信息放在 user 下；TikTok 的 UserInfo 自己读取 user.*，
// 只在注水数据里需要先剥掉 userInfo 外层。
func Profile(v value.Value, douyin bool) value.Value {
	if douyin {
		if u, ok := v.Node("user"); ok && u.Kind() == value.KindMapping {
			return u
		}
		return v
	}
	if u, ok := v.Node("userInfo"); ok && u.Kind() == value.KindMapping {
		return u
	}
	return v
}
