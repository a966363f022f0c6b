package payload

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/John-Robertt/SVEX/internal/value"
)

// Loaded 是一个文件的解码结果；Err 非 nil 时 Items 为空。
type Loaded struct {
	Path  string
	Items []value.Value
	Err   error
}

// LoadAll 以最多 workers 个并发解码 paths，结果与输入同序。
//
// 单个文件失败只记录在对应的 Loaded.Err 中；ctx 取消后未开始的文件记为 ctx.Err()。
func LoadAll(ctx context.Context, paths []string, workers int) []Loaded {
	if workers <= 0 {
		workers = 1
	}
	out := make([]Loaded, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range paths {
		out[i].Path = p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				out[i].Err = err
				return nil
			}
			out[i].Items, out[i].Err = ReadFile(p)
			return nil
		})
	}
	_ = g.Wait()
	return out
}
