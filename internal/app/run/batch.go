package run

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/John-Robertt/SVEX/internal/config"
	"github.com/John-Robertt/SVEX/internal/domain"
	"github.com/John-Robertt/SVEX/internal/extract"
	"github.com/John-Robertt/SVEX/internal/infra/cache"
	"github.com/John-Robertt/SVEX/internal/payload"
	"github.com/John-Robertt/SVEX/internal/platform"
	"github.com/John-Robertt/SVEX/internal/value"
)

// AccountJob 描述一次账号（或合集）批量处理。
//
// - Payloads：该账号作品列表的响应文件，按给定顺序拼接
// - Profile：账号主页响应文件；为空时从作品列表中按 Mode 匹配身份
// - Mode：post（账号作品）或 mix（合集作品）
// - Earliest/Latest：零值分别回落到 domain.DefaultEarliest 与今天
// - SourceFilter：在提取之前先对原始数据做一次日期筛选
type AccountJob struct {
	Payloads     []string
	Profile      string
	Mode         string
	Mark         string
	UserID       string
	Earliest     domain.Date
	Latest       domain.Date
	SourceFilter bool
}

// 记录名的前后缀：<prefix><id>_<mark>_<suffix>。
var affixes = map[string][2]string{
	extract.PreprocessPost: {"UID", "发布作品"},
	extract.PreprocessMix:  {"MIX", "合集作品"},
}

func jobCategory(mode string) string {
	if mode == extract.PreprocessMix {
		return "合集"
	}
	return "账号"
}

// ExecuteBatch 处理一个账号：身份预处理 -> 读取旧标识 -> 打开记录器（必要时改名）
// -> 批量流水线 -> 写回标识缓存。报告中该账号只有一个条目（Source=UserID），
// 解码失败的文件另外各占一个条目。
func ExecuteBatch(ctx context.Context, eff config.EffectiveConfig, deps Deps, job AccountJob) domain.RunReport {
	r := newRunner(eff, deps, ModeBatch)
	obs := r.deps.Observer
	category := jobCategory(job.Mode)
	source := strings.TrimSpace(job.UserID)
	if source == "" {
		source = "<unknown>"
	}

	a, err := r.adapter()
	if err != nil {
		r.fail(string(eff.Platform), "平台", domain.ErrCodeConfigInvalid, err.Error())
		return r.finish()
	}
	if _, ok := affixes[job.Mode]; !ok {
		r.fail(source, category, domain.ErrCodeUnsupportedMode, fmt.Sprintf("预处理模式 %q", job.Mode))
		obs.OnItemDone(1, 1, r.rr.Items[len(r.rr.Items)-1], 0)
		return r.finish()
	}

	started := time.Now()
	loaded := payload.LoadAll(ctx, job.Payloads, eff.Workers)
	items := make([]value.Value, 0, 64)
	for _, l := range loaded {
		if l.Err != nil {
			r.fail(r.relSource(l.Path), "文件", errorCode(l.Err, domain.ErrCodeDecodeFailed), l.Err.Error())
			continue
		}
		items = append(items, l.Items...)
	}
	obs.OnPhaseDone("load", map[string]any{"files": len(loaded), "works": len(items)}, time.Since(started))

	started = time.Now()
	id, err := r.identity(a, job, items)
	if err != nil {
		it := r.fail(source, category, errorCode(err, domain.ErrCodeInvalidInput), err.Error())
		obs.OnItemDone(1, 1, it, time.Since(started))
		return r.finish()
	}
	r.log.Info(fmt.Sprintf("昵称/标题：%s；标识：%s；ID：%s", id.Name, id.Mark, id.ID), true)
	obs.OnPhaseDone("identity", map[string]any{"id": id.ID, "mark": id.Mark}, time.Since(started))

	started = time.Now()
	it := r.batch(ctx, a, job, id, items)
	it.Source = source
	r.rr.Items = append(r.rr.Items, it)
	obs.OnItemDone(1, 1, it, time.Since(started))
	return r.finish()
}

func (r *runner) identity(a platform.Adapter, job AccountJob, items []value.Value) (domain.Identity, error) {
	data := value.FromAny(items)
	if strings.TrimSpace(job.Profile) != "" {
		b, err := os.ReadFile(job.Profile)
		if err != nil {
			return domain.Identity{}, &payload.Error{Path: job.Profile, Code: domain.ErrCodeReadFailed, Err: err}
		}
		v, err := value.Parse(b)
		if err != nil {
			return domain.Identity{}, &payload.Error{Path: job.Profile, Code: domain.ErrCodeDecodeFailed, Err: err}
		}
		data = payload.Profile(v, a.Platform() == platform.Douyin)
	}
	return r.ext.Preprocess(data, a, job.Mode, job.Mark, job.UserID)
}

func (r *runner) batch(ctx context.Context, a platform.Adapter, job AccountJob, id domain.Identity, items []value.Value) domain.ItemResult {
	affix := affixes[job.Mode]
	prefix, suffix := affix[0], affix[1]
	category := jobCategory(job.Mode)

	old := ""
	if e, ok, err := r.deps.Cache.HasCache(id.ID); err != nil {
		r.log.Warning(fmt.Sprintf("读取标识缓存失败：%v", err), true)
	} else if ok && e.Mark != "" {
		old = cache.FolderName(prefix, id.ID, e.Mark, suffix)
	}

	earliest, latest := job.Earliest, job.Latest
	if earliest.IsZero() {
		earliest = domain.DefaultEarliest
	}
	if latest.IsZero() {
		latest = domain.Today(r.eff.Location)
	}
	if job.SourceFilter {
		items = r.ext.SourceDateFilter(items, earliest, latest, a)
	}

	name := cache.FolderName(prefix, id.ID, id.Mark, suffix)
	sink, err := r.openSink(ctx, name, old)
	if err != nil {
		return r.failedItem(name, category, domain.ErrCodeStorageFailed, err.Error())
	}
	res, err := r.ext.Batch(ctx, items, sink, a, extract.BatchOptions{
		Name:     id.Name,
		Mark:     id.Mark,
		Earliest: earliest,
		Latest:   latest,
	})
	if cerr := sink.Close(); cerr != nil {
		r.log.Warning(fmt.Sprintf("关闭记录器失败：%v", cerr), true)
	}
	if err != nil {
		it := r.failedItem(job.UserID, category, errorCode(err, domain.ErrCodePersistFailed), err.Error())
		fill(&it, res)
		return it
	}

	if err := r.deps.Cache.UpdateCache(r.eff.FolderMode, prefix, suffix, id.ID, id.Name, id.Mark); err != nil {
		r.log.Warning(fmt.Sprintf("写入标识缓存失败：%v", err), true)
	}
	return resultItem("", res)
}

func fill(it *domain.ItemResult, res extract.Result) {
	it.Extracted, it.Dropped, it.Degraded, it.Recorded = res.Extracted, res.Dropped, res.Degraded, res.Recorded
}
