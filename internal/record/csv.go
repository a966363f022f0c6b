package record

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/John-Robertt/SVEX/internal/infra/fsx"
)

// csvSink 追加写 <root>/<name>.csv；文件为空时先写表头。
type csvSink struct {
	mu   sync.Mutex
	keys []string
	f    *os.File
	buf  *bufio.Writer
	w    *csv.Writer
}

func openCSV(root, name, old string, keys []string) (*csvSink, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(root, name+".csv")
	if old != "" {
		if _, err := fsx.RenameIfExists(filepath.Join(root, old+".csv"), path); err != nil {
			return nil, fmt.Errorf("重命名旧记录失败：%w", err)
		}
	}
	nonEmpty, err := fsx.EnsureFile(path)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	buf := bufio.NewWriter(f)
	s := &csvSink{keys: keys, f: f, buf: buf, w: csv.NewWriter(buf)}
	if !nonEmpty {
		// UTF-8 BOM，表格软件据此识别编码
		_, _ = buf.WriteString("\ufeff")
		if err := s.write(keys); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *csvSink) FieldKeys() []string { return s.keys }

func (s *csvSink) Save(ctx context.Context, row []any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkRow(s.keys, row); err != nil {
		return err
	}
	cells := make([]string, len(row))
	for i, v := range row {
		cells[i] = cell(v)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(cells)
}

func (s *csvSink) write(cells []string) error {
	if err := s.w.Write(cells); err != nil {
		return err
	}
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return err
	}
	return s.buf.Flush()
}

func (s *csvSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w.Flush()
	err := s.buf.Flush()
	if cerr := s.f.Close(); err == nil {
		err = cerr
	}
	return err
}

func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
