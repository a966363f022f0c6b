// Package failed 记录处理失败的链接或输入到 <root>/failed_links.xlsx。
package failed

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/John-Robertt/SVEX/internal/infra/fsx"
	"github.com/John-Robertt/SVEX/internal/logx"
)

const FileName = "failed_links.xlsx"

// Header 只在 A1 为空时写入一次。
var Header = []string{"时间", "链接", "失败原因", "类型"}

// DefaultCategory 是未指定类型时使用的分类。
const DefaultCategory = "账号"

// Log 是失败链接记录。行写入活动工作表，Close 时保存。并发调用安全。
type Log struct {
	mu    sync.Mutex
	path  string
	book  *excelize.File
	sheet string
	next  int
	log   *logx.Logger
	now   func() time.Time
}

// Open 打开（或创建）<root>/failed_links.xlsx。logger 可为 nil。
func Open(root string, logger *logx.Logger) (*Log, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(root, FileName)
	exists, err := fsx.EnsureFile(path)
	if err != nil {
		return nil, err
	}

	var book *excelize.File
	if exists {
		if book, err = excelize.OpenFile(path); err != nil {
			return nil, fmt.Errorf("打开 %s 失败：%w", path, err)
		}
	} else {
		book = excelize.NewFile()
	}
	l := &Log{path: path, book: book, sheet: book.GetSheetName(book.GetActiveSheetIndex()), log: logger, now: time.Now}

	rows, err := book.GetRows(l.sheet)
	if err != nil {
		_ = book.Close()
		return nil, err
	}
	l.next = len(rows) + 1
	a1, err := book.GetCellValue(l.sheet, "A1")
	if err != nil {
		_ = book.Close()
		return nil, err
	}
	if a1 == "" {
		if err := l.setRow(1, Header); err != nil {
			_ = book.Close()
			return nil, err
		}
		l.next = max(l.next, 2)
	}
	return l, nil
}

// LogFailedLink 追加一行。写入失败只记 warning，不向调用方传播。
func (l *Log) LogFailedLink(url, reason, category string) {
	if l == nil {
		return
	}
	if category == "" {
		category = DefaultCategory
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.book == nil {
		return
	}
	row := []string{l.now().Format("2006-01-02 15:04:05"), url, reason, category}
	if err := l.setRow(l.next, row); err != nil {
		l.log.Warning(fmt.Sprintf("记录失败链接时出错: %v", err), true)
		return
	}
	l.next++
}

func (l *Log) setRow(n int, cells []string) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	vals := make([]any, len(cells))
	for i, c := range cells {
		vals[i] = c
	}
	return l.book.SetSheetRow(l.sheet, cell, &vals)
}

// Close 保存工作簿。重复调用无副作用。
func (l *Log) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.book == nil {
		return nil
	}
	err := l.book.SaveAs(l.path)
	if cerr := l.book.Close(); err == nil {
		err = cerr
	}
	l.book = nil
	return err
}
