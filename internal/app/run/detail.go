package run

import (
	"context"
	"fmt"
	"time"

	"github.com/John-Robertt/SVEX/internal/config"
	"github.com/John-Robertt/SVEX/internal/domain"
	"github.com/John-Robertt/SVEX/internal/payload"
	"github.com/John-Robertt/SVEX/internal/scan"
)

// ExecuteDetail 扫描 eff.Path 下的响应文件，逐个按详情模式处理。
//
// 约束：
// - 解码并发（eff.Workers），提取与持久化按 RelPath 顺序串行
// - 所有文件共用一个记录器（DetailRecordName）
// - 解码失败的文件记为 failed，其余文件照常处理
func ExecuteDetail(ctx context.Context, eff config.EffectiveConfig, deps Deps) domain.RunReport {
	r := newRunner(eff, deps, ModeDetail)
	obs := r.deps.Observer

	a, err := r.adapter()
	if err != nil {
		r.fail(string(eff.Platform), "平台", domain.ErrCodeConfigInvalid, err.Error())
		return r.finish()
	}

	started := time.Now()
	files, err := scan.ScanPayloads(eff.Path, eff.ExcludeDirs)
	if err != nil {
		r.fail(eff.Path, "目录", domain.ErrCodeReadFailed, fmt.Sprintf("扫描失败：%v", err))
		return r.finish()
	}
	obs.OnPhaseDone("scan", map[string]any{"files": len(files)}, time.Since(started))

	started = time.Now()
	loaded := payload.LoadAll(ctx, scan.Paths(files), eff.Workers)
	obs.OnPhaseDone("load", map[string]any{"files": len(loaded), "workers": eff.Workers}, time.Since(started))
	if len(loaded) == 0 {
		return r.finish()
	}

	sink, err := r.openSink(ctx, DetailRecordName, "")
	if err != nil {
		r.fail(DetailRecordName, "存储", domain.ErrCodeStorageFailed, err.Error())
		return r.finish()
	}
	defer func() {
		if err := sink.Close(); err != nil {
			r.log.Warning(fmt.Sprintf("关闭记录器失败：%v", err), true)
		}
	}()

	for i, l := range loaded {
		oneStarted := time.Now()
		source := files[i].RelPath
		var it domain.ItemResult
		if l.Err != nil {
			it = r.fail(source, "文件", errorCode(l.Err, domain.ErrCodeDecodeFailed), l.Err.Error())
		} else {
			res, err := r.ext.Detail(ctx, l.Items, sink, a)
			it = resultItem(source, res)
			if err != nil {
				f := r.failedItem(source, "文件", errorCode(err, domain.ErrCodePersistFailed), err.Error())
				it.Status, it.ErrorCode, it.ErrorMsg = f.Status, f.ErrorCode, f.ErrorMsg
				it.IDs = nil
			}
			r.rr.Items = append(r.rr.Items, it)
		}
		obs.OnItemDone(i+1, len(loaded), it, time.Since(oneStarted))
	}
	return r.finish()
}
