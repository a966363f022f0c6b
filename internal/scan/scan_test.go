package scan

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScanPayloads_ExcludeDataAndCache(t *testing.T) {
	root := t.TempDir()

	touch(t, filepath.Join(root, "Data", "UID1_m_发布作品.json"))
	touch(t, filepath.Join(root, "cache", "marks.json"))
	touch(t, filepath.Join(root, "cache", "report.json"))

	touch(t, filepath.Join(root, "in", "post_1.json"))
	touch(t, filepath.Join(root, "in", "ignore.txt"))

	got, err := ScanPayloads(root, nil)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(got) != 1 {
		t.Fatalf("期望 1 个文件，实际 %d", len(got))
	}
	wantRel := filepath.Join("in", "post_1.json")
	if got[0].RelPath != wantRel {
		t.Fatalf("期望 rel=%q，实际=%q", wantRel, got[0].RelPath)
	}
}

func TestScanPayloads_ExcludeDirsFromConfig(t *testing.T) {
	root := t.TempDir()

	touch(t, filepath.Join(root, "temp", "a.json"))
	touch(t, filepath.Join(root, "ok", "detail.html"))

	got, err := ScanPayloads(root, []string{"temp"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(got) != 1 {
		t.Fatalf("期望 1 个文件，实际 %d", len(got))
	}
	wantRel := filepath.Join("ok", "detail.html")
	if got[0].RelPath != wantRel {
		t.Fatalf("期望 rel=%q，实际=%q", wantRel, got[0].RelPath)
	}
}

func TestScanPayloads_HiddenAndCase(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "X.JSON"))
	touch(t, filepath.Join(root, ".a.json.tmp-1.json"))
	touch(t, filepath.Join(root, ".git", "b.json"))
	touch(t, filepath.Join(root, "b.htm"))

	got, err := ScanPayloads(root, nil)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(got) != 2 {
		t.Fatalf("期望 2 个文件，实际 %d", len(got))
	}
	// 大写字母排在小写之前
	if got[0].Ext != ".json" || got[1].Ext != ".htm" {
		t.Fatalf("扩展名或顺序不符：%q %q", got[0].RelPath, got[1].RelPath)
	}
	if p := Paths(got); p[0] != filepath.Join(root, "X.JSON") {
		t.Fatalf("Paths 不符：%v", p)
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("写入文件失败：%v", err)
	}
}
