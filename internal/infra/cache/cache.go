// Package cache 维护 <root>/cache/marks.json：账号/合集 id 到上次使用的 name 与 mark。
//
// 批量处理前用 HasCache 取得旧 mark（用于记录文件改名），处理完成后用 UpdateCache 写回。
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/John-Robertt/SVEX/internal/infra/fsx"
)

const fileName = "marks.json"

// Entry 是一条账号缓存。JSON 键沿用大写 ID/NAME/MARK。
type Entry struct {
	ID   string `json:"ID"`
	Name string `json:"NAME"`
	Mark string `json:"MARK"`
}

// Store 提供 <root>/cache/ 下的标识缓存读写。
//
// 约束：
// - ReadOnly=true 时只允许读
// - 同一进程内并发调用安全；多进程同时写同一 root 不受保护
type Store struct {
	Root     string
	ReadOnly bool

	mu      sync.Mutex
	loaded  bool
	entries map[string]Entry
}

var ErrReadOnly = errors.New("cache: read-only")

func New(root string, readOnly bool) *Store {
	return &Store{
		Root:     filepath.Clean(strings.TrimSpace(root)),
		ReadOnly: readOnly,
	}
}

// Path 返回缓存文件的绝对路径。
func (s *Store) Path() string {
	return filepath.Join(s.Root, "cache", fileName)
}

// HasCache 返回 id 的缓存条目；不存在时 ok=false。
func (s *Store) HasCache(id string) (Entry, bool, error) {
	if strings.TrimSpace(id) == "" {
		return Entry{}, false, fmt.Errorf("id 不能为空")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return Entry{}, false, err
	}
	e, ok := s.entries[id]
	return e, ok, nil
}

// UpdateCache 写入 id 的最新 name/mark。
//
// folderMode=true 且旧 mark 与新 mark 不同时，把 <root>/<prefix><id>_<旧mark>_<suffix>
// 目录改名为新 mark 对应的目录（目标已存在则保留两者）。
func (s *Store) UpdateCache(folderMode bool, prefix, suffix, id, name, mark string) error {
	if s.ReadOnly {
		return ErrReadOnly
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("id 不能为空")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}

	if old, ok := s.entries[id]; ok && folderMode && old.Mark != "" && old.Mark != mark {
		src := filepath.Join(s.Root, FolderName(prefix, id, old.Mark, suffix))
		dst := filepath.Join(s.Root, FolderName(prefix, id, mark, suffix))
		if fi, err := os.Stat(src); err == nil && fi.IsDir() {
			if _, err := fsx.RenameIfExists(src, dst); err != nil {
				return err
			}
		}
	}

	s.entries[id] = Entry{ID: id, Name: name, Mark: mark}
	b, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return err
	}
	return fsx.WriteFileAtomic(filepath.Join(s.Root, "cache"), fileName, append(b, '\n'))
}

// FolderName 返回 <prefix><id>_<mark>_<suffix>，也是记录文件的基础名。
func FolderName(prefix, id, mark, suffix string) string {
	return prefix + id + "_" + mark + "_" + suffix
}

func (s *Store) load() error {
	if s.loaded {
		return nil
	}
	s.entries = map[string]Entry{}
	b, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			s.loaded = true
			return nil
		}
		return err
	}
	if len(strings.TrimSpace(string(b))) > 0 {
		if err := json.Unmarshal(b, &s.entries); err != nil {
			return fmt.Errorf("解析缓存 %s 失败：%w", s.Path(), err)
		}
	}
	s.loaded = true
	return nil
}
