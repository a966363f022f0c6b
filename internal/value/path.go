package value

import (
	"strconv"
	"strings"
)

// State 区分路径解析的三种结局。
//
// 只有末段才区分 FoundEmpty：中间段缺失是结构性 miss（Missing），
// 末段“存在但为空”在领域上等价于缺失，但调用方可以分辨两者。
type State uint8

const (
	Missing State = iota
	FoundEmpty
	Found
)

func (s State) String() string {
	switch s {
	case Found:
		return "found"
	case FoundEmpty:
		return "found_empty"
	default:
		return "missing"
	}
}

// Lookup 是一次路径解析的结果。Value 仅在 State != Missing 时有意义。
type Lookup struct {
	State State
	Value Value
}

func (l Lookup) OK() bool { return l.State == Found }

type segment struct {
	name    string
	indexes []int
	bad     bool
}

// parsePath 把 "a.b[0].c[-1]" 拆成段。每段可带若干 [i]，名称可为空（直接索引当前节点）。
func parsePath(path string) []segment {
	parts := strings.Split(path, ".")
	segs := make([]segment, 0, len(parts))
	for _, p := range parts {
		seg := segment{}
		open := strings.IndexByte(p, '[')
		if open < 0 {
			seg.name = p
			seg.bad = p == ""
			segs = append(segs, seg)
			continue
		}
		seg.name = p[:open]
		rest := p[open:]
		for rest != "" {
			if rest[0] != '[' {
				seg.bad = true
				break
			}
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				seg.bad = true
				break
			}
			i, err := strconv.Atoi(strings.TrimSpace(rest[1:end]))
			if err != nil {
				seg.bad = true
				break
			}
			seg.indexes = append(seg.indexes, i)
			rest = rest[end+1:]
		}
		segs = append(segs, seg)
	}
	return segs
}

// Lookup 在树上解析点分路径。任何失败（缺键、越界、类型不符、路径非法）都得到 Missing，从不 panic。
// 空路径返回根节点自身。
func (v Value) Lookup(path string) Lookup {
	cur := v
	if path != "" {
		for _, seg := range parsePath(path) {
			if seg.bad {
				return Lookup{}
			}
			if seg.name != "" {
				next, ok := cur.Field(seg.name)
				if !ok {
					return Lookup{}
				}
				cur = next
			}
			for _, i := range seg.indexes {
				next, ok := cur.Index(i)
				if !ok {
					return Lookup{}
				}
				cur = next
			}
		}
	}
	if !cur.Truthy() {
		return Lookup{State: FoundEmpty, Value: cur}
	}
	return Lookup{State: Found, Value: cur}
}

// Has 报告路径是否结构上存在（Found 或 FoundEmpty）。
func (v Value) Has(path string) bool {
	return v.Lookup(path).State != Missing
}

// Get 解析路径，非 Found 时返回 def。
func (v Value) Get(path string, def Value) Value {
	if l := v.Lookup(path); l.OK() {
		return l.Value
	}
	return def
}

// Node 解析路径并返回非空节点。
func (v Value) Node(path string) (Value, bool) {
	l := v.Lookup(path)
	return l.Value, l.OK()
}

// String 解析路径为字符串，非 Found 或无法表示为字符串时返回 def。
func (v Value) String(path, def string) string {
	l := v.Lookup(path)
	if !l.OK() {
		return def
	}
	if s, ok := l.Value.Str(); ok {
		return s
	}
	return def
}

// Int 解析路径为整数，非 Found 或无法表示为整数时返回 def。
// 注意：值为 0 属于 FoundEmpty，同样返回 def。
func (v Value) Int(path string, def int64) int64 {
	l := v.Lookup(path)
	if !l.OK() {
		return def
	}
	if n, ok := l.Value.Int64(); ok {
		return n
	}
	return def
}

// List 解析路径为非空序列，否则返回 nil。
func (v Value) List(path string) []Value {
	l := v.Lookup(path)
	if !l.OK() {
		return nil
	}
	return l.Value.Items()
}
