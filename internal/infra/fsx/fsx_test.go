package fsx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFileAtomic_ReplaceAndNoTempLeft(t *testing.T) {
	dir := t.TempDir()

	if err := WriteFileAtomic(dir, "marks.json", []byte("{}")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if err := WriteFileAtomic(dir, "marks.json", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("覆盖写入不期望错误：%v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "marks.json"))
	if err != nil {
		t.Fatalf("读取文件失败：%v", err)
	}
	if string(b) != `{"a":1}` {
		t.Fatalf("内容不一致：%q", string(b))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir 失败：%v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".marks.json.tmp-") {
			t.Fatalf("临时文件未清理：%q", e.Name())
		}
	}
}

func TestWriteFileAtomic_RenameFail_CleanupTemp(t *testing.T) {
	dir := t.TempDir()

	old := renameFunc
	renameFunc = func(oldpath, newpath string) error {
		return os.ErrPermission
	}
	defer func() { renameFunc = old }()

	if err := WriteFileAtomic(dir, "report.json", []byte("{}")); err == nil {
		t.Fatalf("期望失败，但得到 nil")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir 失败：%v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("期望目录为空，实际：%d 个条目（%q）", len(entries), entries[0].Name())
	}
}

func TestWriteFileAtomic_TargetIsDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "report.json"), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}

	err := WriteFileAtomic(dir, "report.json", []byte("{}"))
	if !IsPathTypeConflict(err) {
		t.Fatalf("期望 PathTypeConflictError，实际：%T %v", err, err)
	}
}

func TestRenameIfExists(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "UID1_旧_发布作品.csv")
	dst := filepath.Join(dir, "UID1_新_发布作品.csv")

	moved, err := RenameIfExists(src, dst)
	if err != nil || moved {
		t.Fatalf("src 不存在：期望 (false, nil)，实际 (%v, %v)", moved, err)
	}

	if err := os.WriteFile(src, []byte("old"), 0o644); err != nil {
		t.Fatalf("写入失败：%v", err)
	}
	moved, err = RenameIfExists(src, dst)
	if err != nil || !moved {
		t.Fatalf("期望改名成功，实际 (%v, %v)", moved, err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("期望旧文件不存在，Stat err=%v", err)
	}

	// dst 已存在时不覆盖
	if err := os.WriteFile(src, []byte("again"), 0o644); err != nil {
		t.Fatalf("写入失败：%v", err)
	}
	moved, err = RenameIfExists(src, dst)
	if err != nil || moved {
		t.Fatalf("dst 已存在：期望 (false, nil)，实际 (%v, %v)", moved, err)
	}
	b, _ := os.ReadFile(dst)
	if string(b) != "old" {
		t.Fatalf("dst 不应被覆盖，实际：%q", string(b))
	}
}

func TestEnsureFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.csv")

	nonEmpty, err := EnsureFile(p)
	if err != nil || nonEmpty {
		t.Fatalf("不存在：期望 (false, nil)，实际 (%v, %v)", nonEmpty, err)
	}
	if err := os.WriteFile(p, nil, 0o644); err != nil {
		t.Fatalf("写入失败：%v", err)
	}
	if nonEmpty, _ := EnsureFile(p); nonEmpty {
		t.Fatalf("空文件应返回 false")
	}
	if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
		t.Fatalf("写入失败：%v", err)
	}
	if nonEmpty, _ := EnsureFile(p); !nonEmpty {
		t.Fatalf("非空文件应返回 true")
	}
	if _, err := EnsureFile(dir); !IsPathTypeConflict(err) {
		t.Fatalf("目录应返回 PathTypeConflictError，实际：%v", err)
	}
}
