// Package clean 提供平台无关的文本清洗（作品描述与账号昵称）。
package clean

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// 文件名中不允许出现的字符（同时覆盖 Windows 与类 Unix）。
const illegal = `\/:*?"<>|`

// Cleaner 是文本清洗器。零值可用，MaxName 为 0 表示不截断。
type Cleaner struct {
	// MaxName 限制 FilterName 结果的最大字符数（按 rune 计）。
	MaxName int
}

// Default 是全局默认清洗器。
var Default = Cleaner{MaxName: 64}

func isDropped(r rune) bool {
	if r == '\n' || r == '\t' || r == '\r' {
		return false
	}
	return unicode.Is(unicode.Cc, r) || unicode.Is(unicode.Cf, r) || strings.ContainsRune(illegal, r)
}

// Filter 做 NFC 规范化，删除控制字符/格式字符与文件名非法字符。换行与制表保留给 ClearSpaces 处理。
func (c Cleaner) Filter(text string) string {
	if text == "" {
		return ""
	}
	t := transform.Chain(norm.NFC, runes.Remove(runes.Predicate(isDropped)))
	out, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return out
}

// ClearSpaces 把连续空白折叠为单个空格并去掉首尾空白。
func (c Cleaner) ClearSpaces(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// FilterName 清洗账号/合集名称；结果为空时返回 fallback。
// 名称会用于目录名，因此额外去掉首尾的点号。
func (c Cleaner) FilterName(raw, fallback string) string {
	name := c.ClearSpaces(c.Filter(raw))
	name = strings.Trim(name, ". ")
	if c.MaxName > 0 {
		if r := []rune(name); len(r) > c.MaxName {
			name = strings.TrimRight(string(r[:c.MaxName]), ". ")
		}
	}
	if name == "" {
		return fallback
	}
	return name
}
