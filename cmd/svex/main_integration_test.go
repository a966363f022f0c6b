package main

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/John-Robertt/SVEX/internal/domain"
)

func TestCLI_NoTTY_StdoutOnlyRunReportJSON(t *testing.T) {
	if testing.Short() {
		t.Skip("需要 go run")
	}
	// stdout 非 TTY 时只能输出一个 RunReport JSON（进度/配置必须走 stderr 或直接禁用）。
	root := t.TempDir()
	in := filepath.Join(root, "in", "detail.json")
	if err := os.MkdirAll(filepath.Dir(in), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	body := `{"status_code":0,"aweme_detail":{"aweme_id":"7300000000000000001","desc":"d","create_time":1718409600}}`
	if err := os.WriteFile(in, []byte(body), 0o644); err != nil {
		t.Fatalf("写入响应文件失败：%v", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("读取 cwd 失败：%v", err)
	}
	repoRoot := filepath.Clean(filepath.Join(wd, "..", ".."))

	cmd := exec.Command("go", "run", "./cmd/svex", "detail", root, "--storage", "csv")
	cmd.Dir = repoRoot

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		t.Fatalf("命令执行失败：%v\nstderr=%s\nstdout=%s", err, stderr.String(), stdout.String())
	}

	var rr domain.RunReport
	if err := json.Unmarshal(stdout.Bytes(), &rr); err != nil {
		t.Fatalf("stdout 不是合法的 RunReport JSON：%v\nstdout=%q", err, stdout.String())
	}
	if len(rr.Items) != 1 || rr.Items[0].Status != domain.StatusProcessed {
		t.Fatalf("报告条目不符：%+v", rr.Items)
	}
	if strings.Contains(stdout.String(), "配置（生效）") || strings.Contains(stdout.String(), "进度:") {
		t.Fatalf("stdout 不应包含进度/配置输出：%q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "完成：processed=") {
		t.Fatalf("stderr 缺少完成摘要：%q", stderr.String())
	}
	for _, p := range []string{
		filepath.Join(root, "Data", "作品详情.csv"),
		filepath.Join(root, "cache", "report.json"),
	} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("期望产物 %s 存在：%v", p, err)
		}
	}
}
