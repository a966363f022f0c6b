// Package extract 把平台原始作品数据规范化为 domain.WorkItem，并按模式执行筛选与持久化。
package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/davecgh/go-spew/spew"

	"github.com/John-Robertt/SVEX/internal/clean"
	"github.com/John-Robertt/SVEX/internal/domain"
	"github.com/John-Robertt/SVEX/internal/filter"
	"github.com/John-Robertt/SVEX/internal/logx"
	"github.com/John-Robertt/SVEX/internal/platform"
	"github.com/John-Robertt/SVEX/internal/value"
)

// Mode 是流水线入口模式。
type Mode string

const (
	ModeBatch  Mode = "batch"
	ModeDetail Mode = "detail"
)

const (
	deletedNickname = "已注销账号"
	invalidNickname = "无效账号昵称"
)

// DefaultDateLayout 对应 %Y-%m-%d %H:%M:%S。
const DefaultDateLayout = "2006-01-02 15:04:05"

// Recorder 是持久化协作者：按 FieldKeys 顺序逐行追加。
// 由调用方持有并负责关闭；一个 Recorder 只服务一次流水线调用。
type Recorder interface {
	FieldKeys() []string
	Save(ctx context.Context, row []any) error
}

// Cleaner 是文本清洗协作者（纯函数）。
type Cleaner interface {
	Filter(text string) string
	ClearSpaces(text string) string
	FilterName(raw, fallback string) string
}

type Options struct {
	Logger  *logx.Logger
	Cleaner Cleaner
	// DateLayout 是 Go 时间格式，用于 create_time 与 collection_time。
	DateLayout string
	// TimeFormat 非 nil 时优先于 DateLayout（例如按 strftime 模式格式化）。
	TimeFormat func(time.Time) string
	// Location 决定时间戳到日历日期的换算时区，默认本地时区。
	Location *time.Location
	Filter   filter.Filter
	Stats    *filter.Stats
	Now      func() time.Time
}

// Extractor 是规范化流水线。除 Stats 外无共享可变状态，可被多个 goroutine 同时使用。
type Extractor struct {
	log     *logx.Logger
	cleaner Cleaner
	format  func(time.Time) string
	loc     *time.Location
	filter  filter.Filter
	stats   *filter.Stats
	now     func() time.Time
}

func New(opt Options) *Extractor {
	e := &Extractor{
		log:     opt.Logger,
		cleaner: opt.Cleaner,
		format:  opt.TimeFormat,
		loc:     opt.Location,
		filter:  opt.Filter,
		stats:   opt.Stats,
		now:     opt.Now,
	}
	if e.cleaner == nil {
		e.cleaner = clean.Default
	}
	if e.format == nil {
		layout := opt.DateLayout
		if layout == "" {
			layout = DefaultDateLayout
		}
		e.format = func(t time.Time) string { return t.Format(layout) }
	}
	if e.loc == nil {
		e.loc = time.Local
	}
	if e.filter == nil {
		e.filter = filter.KeepAll
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// Stats 返回本 Extractor 使用的计数器（可能为 nil）。
func (e *Extractor) Stats() *filter.Stats { return e.stats }

// BatchOptions 是批量模式的上下文（账号/合集级别的 name/mark 与日期范围）。
//
// Earliest/Latest 为零值表示该端不设限。
// Mixed 为 true 表示作品来自不同作者（逐条取作者昵称），否则统一使用 Name/Mark。
type BatchOptions struct {
	Name     string
	Mark     string
	Earliest domain.Date
	Latest   domain.Date
	Mixed    bool
}

// Result 是一次流水线调用的结果。
//
// Items 是最终返回的作品；Recorded 是已持久化的行数。
// 批量模式 Recorded == len(Items)，详情模式 Recorded >= len(Items)。
type Result struct {
	Items     []domain.WorkItem
	Extracted int
	Dropped   int
	Degraded  int
	Recorded  int
}

// IDs 按顺序返回结果中的作品 ID。
func (r Result) IDs() []string {
	out := make([]string, 0, len(r.Items))
	for _, it := range r.Items {
		out = append(out, it.ID)
	}
	return out
}

// Run 按 mode 分派。未知 mode 在接触 Recorder 之前直接失败。
func (e *Extractor) Run(ctx context.Context, mode Mode, items []value.Value, rec Recorder, a platform.Adapter, opt BatchOptions) (Result, error) {
	switch mode {
	case ModeBatch:
		return e.Batch(ctx, items, rec, a, opt)
	case ModeDetail:
		return e.Detail(ctx, items, rec, a)
	default:
		return Result{}, &Error{Code: CodeUnsupportedMode, Msg: fmt.Sprintf("%q", mode)}
	}
}

// Batch：提取 -> 丢弃无 id -> 记日志 -> 日期筛选 -> 自定义筛选 -> 逐条持久化。
func (e *Extractor) Batch(ctx context.Context, items []value.Value, rec Recorder, a platform.Adapter, opt BatchOptions) (Result, error) {
	if a == nil {
		return Result{}, &Error{Code: CodeInvalidInput, Msg: "adapter 不能为空"}
	}
	res := e.extractAll(items, a, author{same: !opt.Mixed, name: opt.Name, mark: opt.Mark})
	works := e.dateFilter(res.Items, opt.Earliest, opt.Latest)
	works = e.customFilter(works)
	res.Items = works
	n, err := e.record(ctx, rec, works)
	res.Recorded = n
	if err != nil {
		return res, err
	}
	e.summary(len(works))
	return res, nil
}

// Detail：提取 -> 丢弃无 id -> 记日志 -> 逐条持久化 -> 自定义筛选。
// 被筛掉的作品仍然会被记录，只是不出现在返回结果中。
func (e *Extractor) Detail(ctx context.Context, items []value.Value, rec Recorder, a platform.Adapter) (Result, error) {
	if a == nil {
		return Result{}, &Error{Code: CodeInvalidInput, Msg: "adapter 不能为空"}
	}
	res := e.extractAll(items, a, author{})
	n, err := e.record(ctx, rec, res.Items)
	res.Recorded = n
	if err != nil {
		return res, err
	}
	res.Items = e.customFilter(res.Items)
	return res, nil
}

type author struct {
	same bool
	name string
	mark string
}

// extractAll 完成提取、丢弃与逐条日志三个阶段。
func (e *Extractor) extractAll(items []value.Value, a platform.Adapter, au author) Result {
	collected := e.format(e.now().In(e.loc))
	res := Result{Items: make([]domain.WorkItem, 0, len(items))}
	for _, item := range items {
		w, degraded := e.extractOne(item, a, au, collected)
		res.Extracted++
		res.Degraded += degraded
		if w.ID == "" {
			res.Dropped++
			continue
		}
		res.Items = append(res.Items, w)
	}
	for _, w := range res.Items {
		e.log.Info(fmt.Sprintf("%s %s 数据提取成功", w.Type, w.ID), false)
	}
	return res
}

func (e *Extractor) extractOne(item value.Value, a platform.Adapter, au author, collected string) (domain.WorkItem, int) {
	f := a.Fields()
	w := domain.WorkItem{CollectionTime: collected}

	w.ID = item.String(f.ID, "")
	w.Desc = e.cleaner.ClearSpaces(e.cleaner.Filter(item.String(f.Desc, "")))
	if w.Desc == "" {
		w.Desc = w.ID
	}
	w.CreateTimestamp = item.Int(f.CreateTime, 0)
	w.CreateTime = e.formatTime(w.CreateTimestamp)
	w.TextExtra = a.TextExtra(item)

	m := a.Media(item)
	w.Type = m.Type
	w.Height, w.Width = m.Height, m.Width
	w.Downloads = m.Downloads
	w.Duration = m.Duration
	w.URI = m.URI
	w.DynamicCover, w.StaticCover = m.DynamicCover, m.StaticCover
	for _, d := range m.Degrades {
		e.log.Error("视频下载地址解析失败", false,
			"platform", string(a.Platform()),
			"id", w.ID,
			"err", d.Result.Err,
			"variants", variantDump(d.Variants),
		)
	}

	info := a.Author(item)
	w.UID, w.SecUID, w.UniqueID = info.UID, info.SecUID, info.UniqueID
	w.Signature, w.UserAge = info.Signature, info.UserAge
	if au.same {
		w.Nickname = au.name
		w.Mark = au.mark
		if w.Mark == "" {
			w.Mark = au.name
		}
	} else {
		raw := info.Nickname
		if raw == "" {
			raw = deletedNickname
		}
		name := e.cleaner.FilterName(raw, invalidNickname)
		w.Nickname, w.Mark = name, name
	}

	mu := a.Music(item)
	w.MusicAuthor, w.MusicTitle, w.MusicURL = mu.Author, mu.Title, mu.URL
	w.Statistics = a.Statistics(item)
	w.Tag = a.Tags(item)
	w.Extra = a.Extra(item)
	w.Ratio = a.Ratio(item)
	w.ShareURL = a.ShareURL(w.Type, w.ID, info.UniqueID)
	return w, len(m.Degrades)
}

func (e *Extractor) formatTime(ts int64) string {
	return e.format(time.Unix(ts, 0).In(e.loc))
}

// dateFilter 按作品日历日期做闭区间筛选；缺失时间戳视为 1970-01-01。
func (e *Extractor) dateFilter(works []domain.WorkItem, earliest, latest domain.Date) []domain.WorkItem {
	out := works[:0:0]
	for _, w := range works {
		if inRange(domain.DateOf(w.CreateTimestamp, e.loc), earliest, latest) {
			out = append(out, w)
		}
	}
	return out
}

func (e *Extractor) customFilter(works []domain.WorkItem) []domain.WorkItem {
	out := works[:0:0]
	for _, w := range works {
		if e.filter.Keep(w, e.stats) {
			out = append(out, w)
		}
	}
	return out
}

// record 严格按顺序逐条保存；每条等待完成后才处理下一条。取消只发生在条目之间。
func (e *Extractor) record(ctx context.Context, rec Recorder, works []domain.WorkItem) (int, error) {
	if rec == nil {
		return 0, nil
	}
	keys := rec.FieldKeys()
	for i, w := range works {
		if err := ctx.Err(); err != nil {
			return i, &Error{Code: CodePersistFailed, Msg: "已取消", Err: err}
		}
		row, err := w.Row(keys)
		if err != nil {
			return i, &Error{Code: CodePersistFailed, Msg: w.ID, Err: err}
		}
		if err := rec.Save(ctx, row); err != nil {
			return i, &Error{Code: CodePersistFailed, Msg: w.ID, Err: err}
		}
	}
	return len(works), nil
}

func (e *Extractor) summary(n int) {
	e.log.Info(fmt.Sprintf("筛选处理后作品数量: %d", n), true)
}

func inRange(d, earliest, latest domain.Date) bool {
	if !earliest.IsZero() && d.Compare(earliest) < 0 {
		return false
	}
	if !latest.IsZero() && d.Compare(latest) > 0 {
		return false
	}
	return true
}

var dumper = spew.ConfigState{Indent: " ", DisablePointerAddresses: true, SortKeys: true, MaxDepth: 6}

func variantDump(vs []value.Value) string {
	raw := make([]any, 0, len(vs))
	for _, v := range vs {
		raw = append(raw, v.Any())
	}
	return dumper.Sdump(raw)
}
