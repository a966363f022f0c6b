package value

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind 是 Value 的类型标签。
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value 是任意 JSON 形态 payload 的只读树。
//
// 约束：
// - 零值即 Null
// - 数字保存原始字面量（平台 ID 常为 19 位整数，float64 会丢精度）
// - Mapping 保留源数据的键顺序（extra 序列化需要与源一致）
type Value struct {
	kind Kind
	b    bool
	num  string
	str  string
	seq  []Value
	keys []string
	m    map[string]Value
}

// FromAny 把 encoding/json 风格的 Go 值（map[string]any / []any / 标量）转换为 Value。
// map 的键按字典序排列（Go map 本身无序）。
func FromAny(v any) Value {
	switch x := v.(type) {
	case nil:
		return Value{}
	case Value:
		return x
	case bool:
		return Value{kind: KindBool, b: x}
	case string:
		return Value{kind: KindString, str: x}
	case json.Number:
		return Value{kind: KindNumber, num: x.String()}
	case int:
		return Value{kind: KindNumber, num: strconv.FormatInt(int64(x), 10)}
	case int32:
		return Value{kind: KindNumber, num: strconv.FormatInt(int64(x), 10)}
	case int64:
		return Value{kind: KindNumber, num: strconv.FormatInt(x, 10)}
	case uint64:
		return Value{kind: KindNumber, num: strconv.FormatUint(x, 10)}
	case float32:
		return Value{kind: KindNumber, num: strconv.FormatFloat(float64(x), 'f', -1, 32)}
	case float64:
		return Value{kind: KindNumber, num: strconv.FormatFloat(x, 'f', -1, 64)}
	case []any:
		seq := make([]Value, 0, len(x))
		for _, e := range x {
			seq = append(seq, FromAny(e))
		}
		return Value{kind: KindSequence, seq: seq}
	case []Value:
		return Value{kind: KindSequence, seq: append([]Value(nil), x...)}
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := make(map[string]Value, len(x))
		for _, k := range keys {
			m[k] = FromAny(x[k])
		}
		return Value{kind: KindMapping, keys: keys, m: m}
	default:
		return Value{}
	}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

// Truthy 定义“领域意义上的非空”：Null、false、0、""、空序列均为假。
// 空 Mapping 视为存在（与源数据中“空对象也是对象”的语义一致）。
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		f, err := strconv.ParseFloat(v.num, 64)
		return err != nil || f != 0
	case KindString:
		return v.str != ""
	case KindSequence:
		return len(v.seq) > 0
	case KindMapping:
		return true
	default:
		return false
	}
}

// Str 返回字符串值；数字按原始字面量返回，布尔返回 "true"/"false"。
func (v Value) Str() (string, bool) {
	switch v.kind {
	case KindString:
		return v.str, true
	case KindNumber:
		return v.num, true
	case KindBool:
		return strconv.FormatBool(v.b), true
	default:
		return "", false
	}
}

// Int64 返回整数值；接受数字与纯数字字符串（TikTok 的部分时间戳/大小字段是字符串）。
// 小数按截断处理。
func (v Value) Int64() (int64, bool) {
	var raw string
	switch v.kind {
	case KindNumber:
		raw = v.num
	case KindString:
		raw = strings.TrimSpace(v.str)
	default:
		return 0, false
	}
	if raw == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	// 超出 int64 范围的值（包括 NaN/Inf）视为无效，而不是回绕成任意整数
	if err != nil || math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func (v Value) Bool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// Len 返回序列长度或映射键数量；标量返回 0。
func (v Value) Len() int {
	switch v.kind {
	case KindSequence:
		return len(v.seq)
	case KindMapping:
		return len(v.keys)
	default:
		return 0
	}
}

// Index 按序号取序列元素；i 为负数时从末尾计数。
func (v Value) Index(i int) (Value, bool) {
	if v.kind != KindSequence {
		return Value{}, false
	}
	if i < 0 {
		i += len(v.seq)
	}
	if i < 0 || i >= len(v.seq) {
		return Value{}, false
	}
	return v.seq[i], true
}

// Field 按名称取映射子节点。
func (v Value) Field(name string) (Value, bool) {
	if v.kind != KindMapping {
		return Value{}, false
	}
	c, ok := v.m[name]
	return c, ok
}

// Items 返回序列元素（非序列返回 nil）。返回的切片不可修改。
func (v Value) Items() []Value {
	if v.kind != KindSequence {
		return nil
	}
	return v.seq
}

// Keys 按源顺序返回映射键。
func (v Value) Keys() []string {
	if v.kind != KindMapping {
		return nil
	}
	return append([]string(nil), v.keys...)
}

// Any 转换回 encoding/json 风格的 Go 值（数字为 json.Number）。
func (v Value) Any() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return json.Number(v.num)
	case KindString:
		return v.str
	case KindSequence:
		out := make([]any, 0, len(v.seq))
		for _, e := range v.seq {
			out = append(out, e.Any())
		}
		return out
	case KindMapping:
		out := make(map[string]any, len(v.keys))
		for _, k := range v.keys {
			out[k] = v.m[k].Any()
		}
		return out
	default:
		return nil
	}
}
