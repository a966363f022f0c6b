// Package quality 从同一媒体的多个编码变体中确定性地选出最佳一个。
package quality

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/John-Robertt/SVEX/internal/value"
)

// Variant 是一个编码变体（分辨率/帧率/码率/大小 + 候选地址）。
type Variant struct {
	FrameRate int64
	BitRate   int64
	ByteSize  int64
	Height    int64
	Width     int64
	URLs      []string
}

func (v Variant) resolution() int64 {
	if v.Height > v.Width {
		return v.Height
	}
	return v.Width
}

// Outcome 表示选择结局。
type Outcome uint8

const (
	Empty Outcome = iota
	Selected
	Degraded
)

func (o Outcome) String() string {
	switch o {
	case Selected:
		return "selected"
	case Degraded:
		return "degraded"
	default:
		return "empty"
	}
}

// Result 是一次选择的结果。
//
// 约束：
// - Empty：Height/Width 为 -1，URL 为空
// - Selected：三元组来自同一个完整变体
// - Degraded：取第一个原始变体的宽高（各自缺省 -1）与地址，Err 说明结构问题
type Result struct {
	Outcome Outcome
	Height  int64
	Width   int64
	URL     string
	Err     error
}

func emptyResult() Result {
	return Result{Outcome: Empty, Height: -1, Width: -1}
}

// StructureError 表示变体列表结构不完整（缺少必需子字段）。
type StructureError struct {
	Index int
	Field string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("quality: 第 %d 个变体缺少字段 %s", e.Index, e.Field)
}

// Schema 描述某平台变体节点内各字段的相对路径。
// FrameRate 为空表示平台不提供帧率（按 0 参与排序）。
// URLIndex 为候选地址的取用下标，负数从末尾计数。
type Schema struct {
	FrameRate string
	BitRate   string
	ByteSize  string
	Height    string
	Width     string
	URLs      string
	URLIndex  int
}

// Best 对完整变体排序并取最大者。
// 排序键：(max(height,width), frame_rate, bit_rate, byte_size) 升序，稳定排序，取最后一个。
func Best(variants []Variant, urlIndex int) Result {
	if len(variants) == 0 {
		return emptyResult()
	}
	sorted := append([]Variant(nil), variants...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if ra, rb := a.resolution(), b.resolution(); ra != rb {
			return ra < rb
		}
		if a.FrameRate != b.FrameRate {
			return a.FrameRate < b.FrameRate
		}
		if a.BitRate != b.BitRate {
			return a.BitRate < b.BitRate
		}
		return a.ByteSize < b.ByteSize
	})
	top := sorted[len(sorted)-1]
	url, ok := pick(top.URLs, urlIndex)
	if !ok {
		return Result{
			Outcome: Degraded,
			Height:  -1,
			Width:   -1,
			Err:     &StructureError{Index: len(sorted) - 1, Field: "url_list[" + strconv.Itoa(urlIndex) + "]"},
		}
	}
	return Result{Outcome: Selected, Height: top.Height, Width: top.Width, URL: url}
}

// Select 把原始变体节点解析为 Variant 后调用 Best。
// 任一变体结构不完整时走降级路径，从不返回错误中断调用方。
func Select(raw []value.Value, s Schema) Result {
	if len(raw) == 0 {
		return emptyResult()
	}
	variants := make([]Variant, 0, len(raw))
	for i, node := range raw {
		v, err := s.parse(i, node)
		if err != nil {
			return s.degrade(raw[0], err)
		}
		variants = append(variants, v)
	}
	res := Best(variants, s.URLIndex)
	if res.Outcome == Degraded {
		return s.degrade(raw[0], res.Err)
	}
	return res
}

func (s Schema) parse(i int, node value.Value) (Variant, error) {
	v := Variant{}
	fields := []struct {
		path string
		dst  *int64
	}{
		{s.FrameRate, &v.FrameRate},
		{s.BitRate, &v.BitRate},
		{s.ByteSize, &v.ByteSize},
		{s.Height, &v.Height},
		{s.Width, &v.Width},
	}
	for _, f := range fields {
		if f.path == "" {
			continue
		}
		l := node.Lookup(f.path)
		if l.State == value.Missing {
			return Variant{}, &StructureError{Index: i, Field: f.path}
		}
		// 存在但非数字（如 null）按 0 参与排序
		n, _ := l.Value.Int64()
		*f.dst = n
	}
	l := node.Lookup(s.URLs)
	if l.State == value.Missing || l.Value.Kind() != value.KindSequence {
		return Variant{}, &StructureError{Index: i, Field: s.URLs}
	}
	for _, u := range l.Value.Items() {
		str, _ := u.Str()
		v.URLs = append(v.URLs, str)
	}
	return v, nil
}

func (s Schema) degrade(first value.Value, cause error) Result {
	return Result{
		Outcome: Degraded,
		Height:  first.Int(s.Height, -1),
		Width:   first.Int(s.Width, -1),
		URL:     first.String(s.URLs+"["+strconv.Itoa(s.URLIndex)+"]", ""),
		Err:     cause,
	}
}

func pick(urls []string, i int) (string, bool) {
	if i < 0 {
		i += len(urls)
	}
	if i < 0 || i >= len(urls) {
		return "", false
	}
	return urls[i], true
}
