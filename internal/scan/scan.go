// Package scan 发现 root 下保存的平台响应文件。
package scan

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/John-Robertt/SVEX/internal/domain"
)

// 永久排除的输出目录：记录文件与缓存。
var reservedDirs = []string{"Data", "cache"}

// ScanPayloads 扫描 root 下的 .json/.html/.htm 文件，并应用目录排除规则。
//
// 规则：
// - 永久排除：<root>/Data/ 与 <root>/cache/
// - 以 '.' 开头的文件与目录跳过（包含原子写入的临时文件）
// - excludeDirs 视为相对 root 的路径（绝对路径按绝对路径处理）
//
// 只做 stat（DirEntry.Info），不读文件内容。结果按 RelPath 排序。
func ScanPayloads(root string, excludeDirs []string) ([]domain.PayloadFile, error) {
	root = filepath.Clean(root)
	excluded := buildExcluded(root, excludeDirs)

	files := make([]domain.PayloadFile, 0, 32)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		hidden := path != root && strings.HasPrefix(d.Name(), ".")
		if hidden || isExcluded(path, excluded) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(d.Name()))
		if !isPayloadExt(ext) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, domain.PayloadFile{
			AbsPath: path,
			RelPath: rel,
			Ext:     ext,
			Size:    info.Size(),
			ModUnix: info.ModTime().Unix(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

// Paths 返回 AbsPath 列表，顺序不变。
func Paths(files []domain.PayloadFile) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.AbsPath)
	}
	return out
}

func isPayloadExt(ext string) bool {
	switch ext {
	case ".json", ".html", ".htm":
		return true
	default:
		return false
	}
}

func buildExcluded(root string, excludeDirs []string) []string {
	excluded := make([]string, 0, len(reservedDirs)+len(excludeDirs))
	for _, d := range reservedDirs {
		excluded = append(excluded, filepath.Join(root, d))
	}
	for _, x := range excludeDirs {
		x = strings.TrimSpace(x)
		if x == "" {
			continue
		}
		if filepath.IsAbs(x) {
			excluded = append(excluded, filepath.Clean(x))
			continue
		}
		excluded = append(excluded, filepath.Clean(filepath.Join(root, x)))
	}
	sort.Strings(excluded)
	return excluded
}

func isExcluded(path string, excluded []string) bool {
	path = filepath.Clean(path)
	for _, base := range excluded {
		if path == base || strings.HasPrefix(path, base+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
