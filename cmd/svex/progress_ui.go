package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/John-Robertt/SVEX/internal/app/run"
	"github.com/John-Robertt/SVEX/internal/config"
	"github.com/John-Robertt/SVEX/internal/domain"
	"github.com/John-Robertt/SVEX/internal/record"
)

var _ run.Observer = (*progressUI)(nil)

// progressUI 是交互终端下的简洁进度输出。
//
// - 所有过程信息写到 stderr（或 fallback 到 stdout），不污染 stdout 的 JSON 输出契约
// - 事件驱动：run 层只发事件，CLI 决定如何展示
// - keepalive：长时间无条目完成时定期输出一行
type progressUI struct {
	w io.Writer

	mu          sync.Mutex
	startedAt   time.Time
	lastPrinted time.Time

	total int
	done  int
	ok    int
	empty int
	fail  int

	keepaliveThreshold time.Duration
	tickerInterval     time.Duration

	stopCh        chan struct{}
	tickerStarted bool
}

func newProgressUI(w io.Writer) *progressUI {
	return &progressUI{
		w:                  w,
		keepaliveThreshold: 6 * time.Second,
		tickerInterval:     2 * time.Second,
	}
}

func (p *progressUI) OnStart(eff config.EffectiveConfig, mode, runID string) {
	now := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.startedAt.IsZero() {
		p.startedAt = now
	}

	fmt.Fprintf(p.w, "[%s] svex %s (%s)\n", now.Format("15:04:05"), mode, runID)
	fmt.Fprintln(p.w, "配置（生效）:")
	fmt.Fprintf(p.w, "  path: %s\n", eff.Path)
	fmt.Fprintf(p.w, "  platform: %s\n", eff.Platform)
	fmt.Fprintf(p.w, "  storage: %s\n", storageName(eff.Storage))
	fmt.Fprintf(p.w, "  date_format: %s (%s)\n", eff.DateFormat, locationName(eff.Location))
	fmt.Fprintf(p.w, "  workers: %d\n", eff.Workers)
	fmt.Fprintf(p.w, "  folder_mode: %s\n", onOff(eff.FolderMode))
	if len(eff.ExcludedTypes) > 0 {
		fmt.Fprintf(p.w, "  excluded_types: %s\n", formatTypes(eff.ExcludedTypes))
	}
	if mode == run.ModeDetail {
		fmt.Fprintf(p.w, "  exclude_dirs: %s + 固定排除 %s/, cache/\n", formatStringListJSON(eff.ExcludeDirs), run.DataDir)
	}

	fmt.Fprintln(p.w, "输出:")
	if eff.Storage != record.FormatNone {
		fmt.Fprintf(p.w, "  records: %s\n", recordLocation(eff))
		fmt.Fprintf(p.w, "  report: %s\n", filepath.Join(eff.Path, "cache", "report.json"))
	}
	if eff.LogFile != "" {
		fmt.Fprintf(p.w, "  log: %s\n", eff.LogFile)
	}
	fmt.Fprintln(p.w)

	p.lastPrinted = time.Now()
}

func (p *progressUI) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch name {
	case "scan":
		fmt.Fprintf(p.w, "扫描: files=%d (%s)\n", intField(fields, "files"), formatShortDuration(dur))
	case "load":
		p.total = intField(fields, "files")
		if w, ok := fields["works"]; ok {
			fmt.Fprintf(p.w, "解码: files=%d works=%v (%s)\n", p.total, w, formatShortDuration(dur))
		} else {
			fmt.Fprintf(p.w, "解码: files=%d workers=%d (%s)\n\n", p.total, intField(fields, "workers"), formatShortDuration(dur))
			if p.total > 0 && !p.tickerStarted {
				p.startTickerLocked()
			}
		}
	case "identity":
		fmt.Fprintf(p.w, "身份: id=%v mark=%v (%s)\n\n", fields["id"], fields["mark"], formatShortDuration(dur))
	default:
		fmt.Fprintf(p.w, "%s (%s)\n", name, formatShortDuration(dur))
	}

	p.lastPrinted = time.Now()
}

func (p *progressUI) OnItemDone(idx, total int, res domain.ItemResult, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done = idx
	p.total = total

	switch res.Status {
	case domain.StatusProcessed:
		p.ok++
	case domain.StatusEmpty:
		p.empty++
	case domain.StatusFailed:
		p.fail++
	}

	switch res.Status {
	case domain.StatusFailed:
		fmt.Fprintf(p.w, "[%d/%d] %s FAIL %s: %s (%s)\n",
			idx, total, res.Source, res.ErrorCode, truncate(res.ErrorMsg, 160), formatShortDuration(dur),
		)
	case domain.StatusEmpty:
		fmt.Fprintf(p.w, "[%d/%d] %s EMPTY extracted=%d dropped=%d recorded=%d (%s)\n",
			idx, total, res.Source, res.Extracted, res.Dropped, res.Recorded, formatShortDuration(dur),
		)
	default:
		fmt.Fprintf(p.w, "[%d/%d] %s OK works=%d recorded=%d%s (%s)\n",
			idx, total, res.Source, len(res.IDs), res.Recorded, formatNote(res), formatShortDuration(dur),
		)
	}

	p.lastPrinted = time.Now()

	// 最后一条完成：停止 ticker，避免在结束打印后又冒出 keepalive。
	if p.done >= p.total {
		p.stopTickerLocked()
	}
}

// Close 停止 keepalive（运行中途失败时不会有最后一条 OnItemDone）。
func (p *progressUI) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopTickerLocked()
}

func (p *progressUI) stopTickerLocked() {
	if p.tickerStarted {
		close(p.stopCh)
		p.tickerStarted = false
	}
}

func (p *progressUI) startTickerLocked() {
	p.stopCh = make(chan struct{})
	p.tickerStarted = true
	stop := p.stopCh

	interval := p.tickerInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	threshold := p.keepaliveThreshold
	if threshold <= 0 {
		threshold = 6 * time.Second
	}

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-t.C:
				p.mu.Lock()
				if p.total > 0 && p.done >= p.total {
					p.mu.Unlock()
					return
				}
				if p.total > 0 && time.Since(p.lastPrinted) > threshold {
					fmt.Fprintf(p.w, "进度: done=%d/%d ok=%d empty=%d fail=%d elapsed=%s\n",
						p.done, p.total, p.ok, p.empty, p.fail, formatElapsed(time.Since(p.startedAt)),
					)
					p.lastPrinted = time.Now()
				}
				p.mu.Unlock()
			case <-stop:
				return
			}
		}
	}()
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func storageName(f record.Format) string {
	if f == record.FormatNone {
		return "none (不落盘)"
	}
	return string(f)
}

func locationName(loc *time.Location) string {
	if loc == nil {
		return time.Local.String()
	}
	return loc.String()
}

func formatTypes(ts []domain.WorkType) string {
	parts := make([]string, 0, len(ts))
	for _, t := range ts {
		parts = append(parts, string(t))
	}
	return strings.Join(parts, ",")
}

// formatNote 只在有丢弃或降级时附加说明。
func formatNote(res domain.ItemResult) string {
	var parts []string
	if res.Dropped > 0 {
		parts = append(parts, fmt.Sprintf("dropped=%d", res.Dropped))
	}
	if res.Degraded > 0 {
		parts = append(parts, fmt.Sprintf("degraded=%d", res.Degraded))
	}
	if filtered := res.Extracted - res.Dropped - len(res.IDs); filtered > 0 {
		parts = append(parts, fmt.Sprintf("filtered=%d", filtered))
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " ")
}

func formatStringListJSON(xs []string) string {
	// json.Marshal(nil slice) => "null"；对用户更友好的是 "[]"
	if xs == nil {
		xs = []string{}
	}
	b, err := json.Marshal(xs)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func truncate(s string, max int) string {
	r := []rune(strings.TrimSpace(s))
	if max <= 0 || len(r) <= max {
		return string(r)
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	sec := int(d.Seconds())
	h := sec / 3600
	m := (sec % 3600) / 60
	s := sec % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func intField(fields map[string]any, key string) int {
	if fields == nil {
		return 0
	}
	switch x := fields[key].(type) {
	case int:
		return x
	case int64:
		return int(x)
	default:
		return 0
	}
}
