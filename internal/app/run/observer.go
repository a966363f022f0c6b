package run

import (
	"time"

	"github.com/John-Robertt/SVEX/internal/config"
	"github.com/John-Robertt/SVEX/internal/domain"
)

// Observer 把运行进度从执行流程中解耦。
//
// 约束：
// - run 包只发事件，不做任何输出（不污染 stdout 的 JSON 契约）
// - 事件按输入顺序在调用 Execute* 的 goroutine 上发出
type Observer interface {
	// OnStart 在执行开始时调用。
	OnStart(eff config.EffectiveConfig, mode string, runID string)
	// OnPhaseDone 在阶段结束时调用（scan/load/identity/extract）。
	OnPhaseDone(name string, fields map[string]any, dur time.Duration)
	// OnItemDone 在某个输入处理完成时调用。
	OnItemDone(idx, total int, res domain.ItemResult, dur time.Duration)
}

type nopObserver struct{}

func (nopObserver) OnStart(config.EffectiveConfig, string, string)        {}
func (nopObserver) OnPhaseDone(string, map[string]any, time.Duration)     {}
func (nopObserver) OnItemDone(int, int, domain.ItemResult, time.Duration) {}
