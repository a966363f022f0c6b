package platform

import (
	"fmt"
	"sort"
	"strings"
)

// Registry 是适配器的只读注册表（按平台名索引）。
// 调用方每次运行只选择一次适配器，而不是逐字段分支。
type Registry struct {
	byName map[Kind]Adapter
}

func NewRegistry(adapters ...Adapter) (Registry, error) {
	byName := make(map[Kind]Adapter, len(adapters))
	for _, a := range adapters {
		if a == nil {
			return Registry{}, fmt.Errorf("adapter 不能为空")
		}
		name := Kind(strings.ToLower(strings.TrimSpace(string(a.Platform()))))
		if name == "" {
			return Registry{}, fmt.Errorf("adapter.Platform 不能为空")
		}
		if _, ok := byName[name]; ok {
			return Registry{}, fmt.Errorf("重复的 adapter：%q", name)
		}
		byName[name] = a
	}
	return Registry{byName: byName}, nil
}

func (r Registry) Get(name string) (Adapter, bool) {
	if r.byName == nil {
		return nil, false
	}
	a, ok := r.byName[Kind(strings.ToLower(strings.TrimSpace(name)))]
	return a, ok
}

// Names 返回已注册平台名（字典序）。
func (r Registry) Names() []string {
	out := make([]string, 0, len(r.byName))
	for k := range r.byName {
		out = append(out, string(k))
	}
	sort.Strings(out)
	return out
}
