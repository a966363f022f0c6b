package extract

import (
	"github.com/John-Robertt/SVEX/internal/domain"
	"github.com/John-Robertt/SVEX/internal/platform"
	"github.com/John-Robertt/SVEX/internal/value"
)

// SourceDateFilter 直接在原始数据上按平台时间戳键做闭区间日期筛选，不做提取与持久化。
//
// 与批量模式的筛选不同：缺失或为 0 的时间戳视为总在范围内，作品一律保留。
func (e *Extractor) SourceDateFilter(items []value.Value, earliest, latest domain.Date, a platform.Adapter) []value.Value {
	key := a.Fields().CreateTime
	out := make([]value.Value, 0, len(items))
	for _, item := range items {
		l := item.Lookup(key)
		if !l.OK() {
			out = append(out, item)
			continue
		}
		ts, ok := l.Value.Int64()
		if !ok || ts == 0 {
			out = append(out, item)
			continue
		}
		if inRange(domain.DateOf(ts, e.loc), earliest, latest) {
			out = append(out, item)
		}
	}
	e.summary(len(out))
	return out
}
