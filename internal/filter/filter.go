// Package filter 是作品的自定义筛选钩子与观测计数。
package filter

import (
	"sync/atomic"

	"github.com/John-Robertt/SVEX/internal/domain"
)

// Stats 记录筛选观测计数（原子操作，可被并发流水线共享）。
// 计数只在显式 Reset 时清零。nil *Stats 合法，所有操作均为空操作。
type Stats struct {
	total    atomic.Int64
	filtered atomic.Int64
	image    atomic.Int64
	live     atomic.Int64
}

// Seen 记录一次筛选调用。
func (s *Stats) Seen() {
	if s == nil {
		return
	}
	s.total.Add(1)
}

// Excluded 记录一次排除，并按类型细分。
func (s *Stats) Excluded(t domain.WorkType) {
	if s == nil {
		return
	}
	s.filtered.Add(1)
	switch t {
	case domain.TypeImage:
		s.image.Add(1)
	case domain.TypeLive:
		s.live.Add(1)
	}
}

func (s *Stats) Reset() {
	if s == nil {
		return
	}
	s.total.Store(0)
	s.filtered.Store(0)
	s.image.Store(0)
	s.live.Store(0)
}

func (s *Stats) Snapshot() domain.FilterCounters {
	if s == nil {
		return domain.FilterCounters{}
	}
	return domain.FilterCounters{
		Total:    s.total.Load(),
		Filtered: s.filtered.Load(),
		Image:    s.image.Load(),
		Live:     s.live.Load(),
	}
}

// Filter 判断作品是否保留；需要排除的作品返回 false。
// 实现不应有计数以外的副作用。
type Filter interface {
	Keep(item domain.WorkItem, s *Stats) bool
}

// Func 把普通函数适配为 Filter（自动计入 total 与 filtered）。
type Func func(domain.WorkItem) bool

func (f Func) Keep(item domain.WorkItem, s *Stats) bool {
	s.Seen()
	if f(item) {
		return true
	}
	s.Excluded(item.Type)
	return false
}

// KeepAll 保留所有作品，只计数。
var KeepAll Filter = Func(func(domain.WorkItem) bool { return true })

// TypeFilter 排除指定类型的作品。
type TypeFilter struct {
	exclude map[domain.WorkType]struct{}
}

func NewTypeFilter(exclude ...domain.WorkType) TypeFilter {
	m := make(map[domain.WorkType]struct{}, len(exclude))
	for _, t := range exclude {
		m[t] = struct{}{}
	}
	return TypeFilter{exclude: m}
}

func (f TypeFilter) Keep(item domain.WorkItem, s *Stats) bool {
	s.Seen()
	if _, ok := f.exclude[item.Type]; ok {
		s.Excluded(item.Type)
		return false
	}
	return true
}

// All 组合多个 Filter：全部保留才保留。total 只计一次，排除也只计一次。
func All(filters ...Filter) Filter {
	return Func(func(item domain.WorkItem) bool {
		for _, f := range filters {
			if !f.Keep(item, nil) {
				return false
			}
		}
		return true
	})
}
