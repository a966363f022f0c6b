// Package run 编排一次运行：发现并解码输入、选择平台适配器、执行规范化流水线，
// 并把每个输入的结果汇总为 RunReport。单个输入失败只降级为条目失败。
package run

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/John-Robertt/SVEX/internal/config"
	"github.com/John-Robertt/SVEX/internal/domain"
	"github.com/John-Robertt/SVEX/internal/extract"
	"github.com/John-Robertt/SVEX/internal/failed"
	"github.com/John-Robertt/SVEX/internal/filter"
	"github.com/John-Robertt/SVEX/internal/infra/cache"
	"github.com/John-Robertt/SVEX/internal/logx"
	"github.com/John-Robertt/SVEX/internal/payload"
	"github.com/John-Robertt/SVEX/internal/platform"
	"github.com/John-Robertt/SVEX/internal/platform/douyin"
	"github.com/John-Robertt/SVEX/internal/platform/tiktok"
	"github.com/John-Robertt/SVEX/internal/record"
)

const (
	ModeDetail = "detail"
	ModeBatch  = "batch"
)

// DataDir 是记录文件在 path 下的目录名。
const DataDir = "Data"

// DetailRecordName 是详情运行使用的记录名。
const DetailRecordName = "作品详情"

// OpenFunc 与 record.Open 同签名，测试可替换。
type OpenFunc func(ctx context.Context, opt record.Options) (record.Sink, error)

// Deps 是一次运行的协作者。零值字段使用默认实现。
type Deps struct {
	Registry platform.Registry
	Logger   *logx.Logger
	Failed   *failed.Log
	Cache    *cache.Store
	Stats    *filter.Stats
	Observer Observer
	Open     OpenFunc
	Now      func() time.Time
	RunID    func() string
}

// NewRegistry 返回两个平台的适配器注册表。
func NewRegistry(opt tiktok.Options) (platform.Registry, error) {
	return platform.NewRegistry(douyin.New(), tiktok.New(opt))
}

type runner struct {
	eff   config.EffectiveConfig
	deps  Deps
	runID string
	log   *logx.Logger
	ext   *extract.Extractor
	rr    domain.RunReport
}

func newRunner(eff config.EffectiveConfig, deps Deps, mode string) *runner {
	if deps.Observer == nil {
		deps.Observer = nopObserver{}
	}
	if deps.Open == nil {
		deps.Open = func(ctx context.Context, opt record.Options) (record.Sink, error) { return record.Open(ctx, opt) }
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.RunID == nil {
		deps.RunID = func() string { return uuid.NewString() }
	}
	if deps.Stats == nil {
		deps.Stats = &filter.Stats{}
	}
	if deps.Cache == nil {
		deps.Cache = cache.New(eff.Path, false)
	}
	if eff.Location == nil {
		eff.Location = time.Local
	}

	r := &runner{eff: eff, deps: deps, runID: deps.RunID()}
	r.log = deps.Logger.With("run_id", r.runID)
	if r.log == nil {
		r.log = logx.Discard()
	}

	var f filter.Filter = filter.KeepAll
	if len(eff.ExcludedTypes) > 0 {
		f = filter.NewTypeFilter(eff.ExcludedTypes...)
	}
	opt := extract.Options{
		Logger:   r.log,
		Location: eff.Location,
		Filter:   f,
		Stats:    deps.Stats,
		Now:      deps.Now,
	}
	if eff.DateFormat != "" {
		opt.TimeFormat = eff.FormatTime
	}
	r.ext = extract.New(opt)
	// 计数器以一次运行为界
	deps.Stats.Reset()

	r.rr = domain.RunReport{
		RunID:     r.runID,
		Mode:      mode,
		Platform:  string(eff.Platform),
		Path:      eff.Path,
		StartedAt: deps.Now(),
		Items:     make([]domain.ItemResult, 0, 16),
	}
	deps.Observer.OnStart(eff, mode, r.runID)
	return r
}

func (r *runner) adapter() (platform.Adapter, error) {
	reg := r.deps.Registry
	if len(reg.Names()) == 0 {
		var err error
		if reg, err = NewRegistry(r.eff.TikTok); err != nil {
			return nil, err
		}
	}
	a, ok := reg.Get(string(r.eff.Platform))
	if !ok {
		return nil, fmt.Errorf("未注册的平台：%q", r.eff.Platform)
	}
	return a, nil
}

func (r *runner) openSink(ctx context.Context, name, old string) (record.Sink, error) {
	return r.deps.Open(ctx, record.Options{
		Format: r.eff.Storage,
		Root:   filepath.Join(r.eff.Path, DataDir),
		Name:   name,
		Old:    old,
		DSN:    r.eff.PostgresDSN,
	})
}

// fail 追加一条失败条目，并写入失败链接记录。
func (r *runner) fail(source, category, code, msg string) domain.ItemResult {
	it := r.failedItem(source, category, code, msg)
	it.Source = source
	r.rr.Items = append(r.rr.Items, it)
	return it
}

// failedItem 记录失败但不追加到报告，Source 由调用方填写。
func (r *runner) failedItem(link, category, code, msg string) domain.ItemResult {
	r.deps.Failed.LogFailedLink(link, code+": "+msg, category)
	r.log.Error(fmt.Sprintf("%s 处理失败：%s", link, msg), true, "error_code", code)
	return domain.ItemResult{Status: domain.StatusFailed, ErrorCode: code, ErrorMsg: msg}
}

func (r *runner) finish() domain.RunReport {
	r.rr.Counters = r.deps.Stats.Snapshot()
	if r.eff.MetricsFile != "" {
		if err := filter.WriteTextfile(r.eff.MetricsFile, r.deps.Stats); err != nil {
			r.log.Warning(fmt.Sprintf("写入指标文件失败：%v", err), true)
		}
	}
	r.rr.FinishedAt = r.deps.Now()
	r.rr.Finalize()
	return r.rr
}

// resultItem 把一次流水线结果转换为条目。
func resultItem(source string, res extract.Result) domain.ItemResult {
	status := domain.StatusProcessed
	if len(res.Items) == 0 {
		status = domain.StatusEmpty
	}
	return domain.ItemResult{
		Source:    source,
		Status:    status,
		Extracted: res.Extracted,
		Dropped:   res.Dropped,
		Degraded:  res.Degraded,
		Recorded:  res.Recorded,
		IDs:       res.IDs(),
	}
}

// errorCode 依次尝试各包的错误码，都不是时使用 fallback。
func errorCode(err error, fallback string) string {
	if c := extract.Code(err); c != "" {
		return c
	}
	if c := payload.Code(err); c != "" {
		return c
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrCodePersistFailed
	}
	return fallback
}

// relSource 返回相对 path 的路径；不在 path 之下（或就是 path 本身）时原样返回。
func (r *runner) relSource(path string) string {
	rel, err := filepath.Rel(r.eff.Path, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}
