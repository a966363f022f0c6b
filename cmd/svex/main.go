package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/John-Robertt/SVEX/internal/app/run"
	"github.com/John-Robertt/SVEX/internal/config"
	"github.com/John-Robertt/SVEX/internal/domain"
	"github.com/John-Robertt/SVEX/internal/extract"
	"github.com/John-Robertt/SVEX/internal/failed"
	"github.com/John-Robertt/SVEX/internal/infra/fsx"
	"github.com/John-Robertt/SVEX/internal/logx"
	"github.com/John-Robertt/SVEX/internal/record"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 || isHelp(args[0]) {
		printUsage()
		return
	}

	var code int
	switch args[0] {
	case run.ModeDetail:
		code = detailCmd(args[1:])
	case run.ModeBatch:
		code = batchCmd(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "未知命令：%q\n\n", args[0])
		printUsage()
		code = 2
	}
	if code != 0 {
		os.Exit(code)
	}
}

func detailCmd(args []string) int {
	if wantsHelp(args) {
		printDetailUsage()
		return 0
	}
	da, err := parseDetailArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "参数错误：%v\n\n", err)
		printDetailUsage()
		return 2
	}
	return execute(run.ModeDetail, da, func(ctx context.Context, eff config.EffectiveConfig, deps run.Deps) domain.RunReport {
		return run.ExecuteDetail(ctx, eff, deps)
	})
}

func batchCmd(args []string) int {
	if wantsHelp(args) {
		printBatchUsage()
		return 0
	}
	ba, err := parseBatchArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "参数错误：%v\n\n", err)
		printBatchUsage()
		return 2
	}
	return execute(run.ModeBatch, ba.common, func(ctx context.Context, eff config.EffectiveConfig, deps run.Deps) domain.RunReport {
		return run.ExecuteBatch(ctx, eff, deps, ba.job)
	})
}

type executeFunc func(ctx context.Context, eff config.EffectiveConfig, deps run.Deps) domain.RunReport

// execute 完成两个子命令共用的装配：配置 -> 日志 -> 失败记录 -> 运行 -> 输出报告。
func execute(mode string, ca commonArgs, fn executeFunc) int {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取当前目录失败：%v\n", err)
		return 1
	}
	cwdAbs, _ := filepath.Abs(cwd)

	eff, err := config.LoadEffective(cwd, ca.cli())
	if err != nil {
		emitReport(reportForConfigError(cwdAbs, mode, ca, err))
		return 1
	}

	logger, closeLog, err := openLogger(eff.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "打开日志文件失败：%v\n", err)
		return 1
	}
	defer closeLog()

	fl, err := failed.Open(eff.Path, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "打开失败链接记录失败：%v\n", err)
		return 1
	}
	defer func() { _ = fl.Close() }()

	reg, err := run.NewRegistry(eff.TikTok)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化平台注册表失败：%v\n", err)
		return 1
	}

	progressW, interactive := pickProgressWriter()
	deps := run.Deps{Registry: reg, Logger: logger, Failed: fl}
	var ui *progressUI
	if interactive {
		ui = newProgressUI(progressW)
		deps.Observer = ui
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	rr := fn(ctx, eff, deps)
	if ui != nil {
		ui.Close()
	}

	// storage 为 none 时不在 path 下落任何文件（report.json 同理）。
	if eff.Storage != record.FormatNone {
		if err := writeReportFile(eff.Path, rr); err != nil {
			fmt.Fprintf(os.Stderr, "写入 report.json 失败：%v\n", err)
			emitReport(rr)
			return 1
		}
	}

	emitReport(rr)
	if interactive {
		emitLocations(progressW, eff)
	}
	if rr.HasFailure() {
		return 1
	}
	return 0
}

func openLogger(path string) (*logx.Logger, func(), error) {
	if strings.TrimSpace(path) == "" {
		return logx.Stderr(), func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return logx.New(f, os.Stderr), func() { _ = f.Close() }, nil
}

// commonArgs 是两个子命令共有的参数。
type commonArgs struct {
	Path        string
	Platform    string
	PlatformSet bool
	Storage     string
	StorageSet  bool
}

func (c commonArgs) cli() config.CLIArgs {
	return config.CLIArgs{
		Path:        c.Path,
		Platform:    c.Platform,
		PlatformSet: c.PlatformSet,
		Storage:     c.Storage,
		StorageSet:  c.StorageSet,
	}
}

// flagValue 解析 "--name v" 与 "--name=v" 两种写法。
// 返回值 ok=false 表示 a 不是该参数。
func flagValue(args []string, i *int, name string) (string, bool, error) {
	a := args[*i]
	if a == name {
		if *i+1 >= len(args) {
			return "", true, fmt.Errorf("%s 需要一个值", name)
		}
		*i++
		return args[*i], true, nil
	}
	if strings.HasPrefix(a, name+"=") {
		return strings.TrimPrefix(a, name+"="), true, nil
	}
	return "", false, nil
}

// parseCommon 尝试消费一个公共参数。
func (c *commonArgs) parseCommon(args []string, i *int) (bool, error) {
	if v, ok, err := flagValue(args, i, "--platform"); ok {
		if err != nil {
			return true, err
		}
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "douyin", "tiktok":
		case "":
			return true, fmt.Errorf("--platform 不能为空")
		default:
			return true, fmt.Errorf("--platform 只能是 douyin 或 tiktok，实际是 %q", v)
		}
		c.Platform, c.PlatformSet = v, true
		return true, nil
	}
	if v, ok, err := flagValue(args, i, "--storage"); ok {
		if err != nil {
			return true, err
		}
		if _, err := record.ParseFormat(v); err != nil {
			return true, fmt.Errorf("--storage：%v", err)
		}
		c.Storage, c.StorageSet = v, true
		return true, nil
	}
	return false, nil
}

func parseDetailArgs(args []string) (commonArgs, error) {
	ca := commonArgs{}
	for i := 0; i < len(args); i++ {
		a := args[i]
		ok, err := ca.parseCommon(args, &i)
		if err != nil {
			return commonArgs{}, err
		}
		if ok {
			continue
		}
		switch {
		case strings.HasPrefix(a, "-"):
			return commonArgs{}, fmt.Errorf("未知参数 %q", a)
		default:
			if ca.Path != "" {
				return commonArgs{}, fmt.Errorf("重复的 path：%q 与 %q", ca.Path, a)
			}
			ca.Path = a
		}
	}
	return ca, nil
}

type batchArgs struct {
	common commonArgs
	job    run.AccountJob
}

func parseBatchArgs(args []string) (batchArgs, error) {
	ba := batchArgs{job: run.AccountJob{Mode: extract.PreprocessPost}}
	for i := 0; i < len(args); i++ {
		a := args[i]
		ok, err := ba.common.parseCommon(args, &i)
		if err != nil {
			return batchArgs{}, err
		}
		if ok {
			continue
		}
		if a == "--source" {
			ba.job.SourceFilter = true
			continue
		}

		var name, v string
		for _, n := range []string{"--path", "--sec-user-id", "--profile", "--mark", "--mode", "--earliest", "--latest"} {
			if v, ok, err = flagValue(args, &i, n); ok {
				name = n
				break
			}
		}
		if err != nil {
			return batchArgs{}, err
		}
		switch name {
		case "--path":
			ba.common.Path = v
		case "--sec-user-id":
			ba.job.UserID = strings.TrimSpace(v)
		case "--profile":
			ba.job.Profile = v
		case "--mark":
			ba.job.Mark = v
		case "--mode":
			ba.job.Mode = v
		case "--earliest", "--latest":
			d, err := domain.ParseDate(v)
			if err != nil {
				return batchArgs{}, fmt.Errorf("%s：%v", name, err)
			}
			if name == "--earliest" {
				ba.job.Earliest = d
			} else {
				ba.job.Latest = d
			}
		default:
			if strings.HasPrefix(a, "-") {
				return batchArgs{}, fmt.Errorf("未知参数 %q", a)
			}
			ba.job.Payloads = append(ba.job.Payloads, a)
		}
	}

	if ba.job.UserID == "" {
		return batchArgs{}, fmt.Errorf("缺少 --sec-user-id")
	}
	if len(ba.job.Payloads) == 0 {
		return batchArgs{}, fmt.Errorf("至少需要一个作品列表文件")
	}
	switch ba.job.Mode {
	case extract.PreprocessPost, extract.PreprocessMix:
	default:
		return batchArgs{}, fmt.Errorf("--mode 只能是 post 或 mix，实际是 %q", ba.job.Mode)
	}
	if !ba.job.Earliest.IsZero() && !ba.job.Latest.IsZero() && ba.job.Earliest.Compare(ba.job.Latest) > 0 {
		return batchArgs{}, fmt.Errorf("--earliest %s 晚于 --latest %s", ba.job.Earliest, ba.job.Latest)
	}
	return ba, nil
}

func isHelp(s string) bool {
	return s == "-h" || s == "--help" || s == "help"
}

func wantsHelp(args []string) bool {
	for _, a := range args {
		if isHelp(a) {
			return true
		}
	}
	return false
}

func printUsage() {
	fmt.Fprint(os.Stdout, `用法：
  svex detail [path] [--platform douyin|tiktok] [--storage csv|sqlite|postgres|none]
  svex batch <payload...> --sec-user-id ID [--mode post|mix] [...]

命令：
  detail  扫描 path 下的作品详情响应文件并逐个规范化
  batch   规范化一个账号（或合集）的作品列表响应文件

使用 "svex <命令> --help" 查看详细说明。
`)
}

func printDetailUsage() {
	fmt.Fprint(os.Stdout, `用法：
  svex detail [path] [--platform douyin|tiktok] [--storage csv|sqlite|postgres|none]

参数：
  --platform  数据来源平台（未指定则读配置文件；最终默认 douyin）
  --storage   记录格式；none 表示不落盘（覆盖配置与 SVEX_STORAGE_FORMAT）
  -h, --help  显示帮助
`)
}

func printBatchUsage() {
	fmt.Fprint(os.Stdout, `用法：
  svex batch <payload...> --sec-user-id ID [--profile file] [--mark M] [--mode post|mix]
             [--earliest D] [--latest D] [--source] [--path dir] [--platform ...] [--storage ...]

参数：
  --sec-user-id  账号 sec_uid（post）或合集 id（mix），必填
  --profile      账号主页响应文件；未指定时从作品列表中匹配身份
  --mark         账号标识；默认使用昵称
  --mode         post（默认）或 mix
  --earliest     最早发布日期（含），默认 2016-09-20
  --latest       最晚发布日期（含），默认今天
  --source       提取之前先在原始数据上按日期筛选
  --path         输出根目录；未指定则读 ./svex.json
  -h, --help     显示帮助
`)
}

func emitReport(rr domain.RunReport) {
	if isTTY(os.Stdout) {
		fmt.Fprintln(os.Stdout, summaryLine(rr))
		if rr.Summary.Failed > 0 {
			for _, it := range rr.Items {
				if it.Status != domain.StatusFailed {
					continue
				}
				key := it.Source
				if key == "" {
					key = "<unknown>"
				}
				fmt.Fprintf(os.Stderr, "%s %s: %s\n", key, it.ErrorCode, it.ErrorMsg)
			}
		}
		return
	}

	// stdout 非 TTY：stdout 必须且仅输出一个 RunReport JSON（日志/摘要走 stderr）。
	enc := json.NewEncoder(os.Stdout)
	_ = enc.Encode(rr)
	fmt.Fprintln(os.Stderr, summaryLine(rr))
}

func summaryLine(rr domain.RunReport) string {
	s := rr.Summary
	return fmt.Sprintf("完成：processed=%d empty=%d failed=%d works=%d recorded=%d",
		s.Processed, s.Empty, s.Failed, s.Works, s.Recorded,
	)
}

func reportForConfigError(cwdAbs, mode string, ca commonArgs, err error) domain.RunReport {
	now := time.Now().UTC()
	rr := domain.RunReport{
		Mode:       mode,
		Platform:   strings.ToLower(strings.TrimSpace(ca.Platform)),
		Path:       cwdAbs,
		StartedAt:  now,
		FinishedAt: now,
		Items: []domain.ItemResult{{
			Status:    domain.StatusFailed,
			ErrorCode: config.Code(err),
			ErrorMsg:  err.Error(),
			IDs:       []string{},
		}},
	}
	rr.Finalize()
	return rr
}

func writeReportFile(root string, rr domain.RunReport) error {
	b, err := json.MarshalIndent(rr, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return fsx.WriteFileAtomic(filepath.Join(root, "cache"), "report.json", b)
}

func isTTY(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func pickProgressWriter() (io.Writer, bool) {
	// 进度输出只在交互终端启用；默认走 stderr（不污染 stdout JSON）。
	if isTTY(os.Stderr) {
		return os.Stderr, true
	}
	if isTTY(os.Stdout) {
		return os.Stdout, true
	}
	return nil, false
}

func emitLocations(w io.Writer, eff config.EffectiveConfig) {
	if w == nil {
		return
	}
	if eff.Storage != record.FormatNone {
		fmt.Fprintf(w, "report: %s\n", filepath.Join(eff.Path, "cache", "report.json"))
		fmt.Fprintf(w, "records: %s\n", recordLocation(eff))
	}
	fmt.Fprintf(w, "failed: %s\n", filepath.Join(eff.Path, failed.FileName))
}

func recordLocation(eff config.EffectiveConfig) string {
	switch eff.Storage {
	case record.FormatSQLite:
		return filepath.Join(eff.Path, run.DataDir, record.SQLiteFile)
	case record.FormatPostgres:
		return "postgres"
	default:
		return filepath.Join(eff.Path, run.DataDir)
	}
}
