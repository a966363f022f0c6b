package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/John-Robertt/SVEX/internal/config"
	"github.com/John-Robertt/SVEX/internal/domain"
	"github.com/John-Robertt/SVEX/internal/record"
)

func TestParseDetailArgs(t *testing.T) {
	ca, err := parseDetailArgs([]string{"/data", "--platform", "tiktok", "--storage=sqlite"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	want := commonArgs{Path: "/data", Platform: "tiktok", PlatformSet: true, Storage: "sqlite", StorageSet: true}
	if ca != want {
		t.Fatalf("期望 %+v，实际 %+v", want, ca)
	}

	// --storage none 显式覆盖配置
	ca, err = parseDetailArgs([]string{"--storage", "none"})
	if err != nil || !ca.StorageSet || ca.Storage != "none" {
		t.Fatalf("期望 storage=none，实际 %+v err=%v", ca, err)
	}
}

func TestParseDetailArgs_Errors(t *testing.T) {
	cases := [][]string{
		{"a", "b"},
		{"--platform"},
		{"--platform="},
		{"--platform", "weibo"},
		{"--storage", "xlsx"},
		{"--apply"},
	}
	for _, args := range cases {
		if _, err := parseDetailArgs(args); err == nil {
			t.Fatalf("期望 %v 返回错误", args)
		}
	}
}

func TestParseBatchArgs(t *testing.T) {
	ba, err := parseBatchArgs([]string{
		"p1.json", "--sec-user-id", "SEC", "p2.json",
		"--profile=me.json", "--mark", "标记", "--mode", "mix",
		"--earliest", "2024-01-01", "--latest=2024/06/30", "--source",
		"--path", "/out", "--platform", "douyin",
	})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	job := ba.job
	if strings.Join(job.Payloads, ",") != "p1.json,p2.json" {
		t.Fatalf("payloads 不符：%v", job.Payloads)
	}
	if job.UserID != "SEC" || job.Profile != "me.json" || job.Mark != "标记" || job.Mode != "mix" || !job.SourceFilter {
		t.Fatalf("job 不符：%+v", job)
	}
	if job.Earliest != domain.NewDate(2024, 1, 1) || job.Latest != domain.NewDate(2024, 6, 30) {
		t.Fatalf("日期不符：%s %s", job.Earliest, job.Latest)
	}
	if ba.common.Path != "/out" || !ba.common.PlatformSet {
		t.Fatalf("公共参数不符：%+v", ba.common)
	}
}

func TestParseBatchArgs_DefaultsToPost(t *testing.T) {
	ba, err := parseBatchArgs([]string{"p.json", "--sec-user-id=SEC"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if ba.job.Mode != "post" || !ba.job.Earliest.IsZero() || !ba.job.Latest.IsZero() {
		t.Fatalf("默认值不符：%+v", ba.job)
	}
}

func TestParseBatchArgs_Errors(t *testing.T) {
	cases := map[string][]string{
		"缺少 sec-user-id": {"p.json"},
		"缺少 payload":     {"--sec-user-id", "SEC"},
		"未知 mode":        {"p.json", "--sec-user-id", "SEC", "--mode", "like"},
		"非法日期":           {"p.json", "--sec-user-id", "SEC", "--earliest", "昨天"},
		"日期倒置":           {"p.json", "--sec-user-id", "SEC", "--earliest", "2024-02-01", "--latest", "2024-01-01"},
		"未知参数":           {"p.json", "--sec-user-id", "SEC", "--cookie", "x"},
		"缺少值":            {"p.json", "--sec-user-id"},
	}
	for name, args := range cases {
		if _, err := parseBatchArgs(args); err == nil {
			t.Fatalf("%s：期望返回错误", name)
		}
	}
}

func TestReportForConfigError(t *testing.T) {
	err := &config.Error{Code: config.ErrCodeNotFound, Path: "/x/svex.json"}
	rr := reportForConfigError("/x", "detail", commonArgs{Platform: " TikTok "}, err)
	if len(rr.Items) != 1 || rr.Items[0].ErrorCode != domain.ErrCodeConfigNotFound {
		t.Fatalf("报告不符：%+v", rr)
	}
	if rr.Platform != "tiktok" || rr.Summary.Failed != 1 || !rr.HasFailure() {
		t.Fatalf("报告不符：%+v", rr)
	}
}

func TestProgressUI_Events(t *testing.T) {
	var buf bytes.Buffer
	p := newProgressUI(&buf)
	defer p.Close()

	eff := config.EffectiveConfig{Path: "/data", Platform: "douyin", Storage: record.FormatCSV, Workers: 2, Location: time.UTC, DateFormat: "%Y"}
	p.OnStart(eff, "detail", "run-1")
	p.OnPhaseDone("scan", map[string]any{"files": 2}, time.Second)
	p.OnPhaseDone("load", map[string]any{"files": 2, "workers": 2}, time.Second)
	p.OnItemDone(1, 2, domain.ItemResult{Source: "a.json", Status: domain.StatusProcessed, Extracted: 3, Dropped: 1, IDs: []string{"1"}, Recorded: 2}, 0)
	p.OnItemDone(2, 2, domain.ItemResult{Source: "b.json", Status: domain.StatusFailed, ErrorCode: "decode_failed", ErrorMsg: "bad"}, 0)

	out := buf.String()
	for _, want := range []string{
		"svex detail (run-1)",
		"storage: csv",
		"扫描: files=2",
		"[1/2] a.json OK works=1 recorded=2 dropped=1 filtered=1",
		"[2/2] b.json FAIL decode_failed: bad",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("输出缺少 %q：\n%s", want, out)
		}
	}
	if p.tickerStarted {
		t.Fatalf("最后一条完成后 ticker 应已停止")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("一二三四五六", 5); got != "一二..." {
		t.Fatalf("期望按 rune 截断，实际 %q", got)
	}
	if got := truncate(" ab ", 10); got != "ab" {
		t.Fatalf("期望 %q，实际 %q", "ab", got)
	}
}

func TestFormatElapsed(t *testing.T) {
	if got := formatElapsed(3723 * time.Second); got != "01:02:03" {
		t.Fatalf("期望 01:02:03，实际 %q", got)
	}
}
