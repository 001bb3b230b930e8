package filter

import (
	"context"

	"github.com/cinekit/cinekit/core"
)

// Seen 过滤用户已看过的电影。
//
// 召回阶段已经从未看集合出发，但内容相似扩展可能把已看电影重新带回来
// （相似检索不知道用户历史），所以这里防御性地再减一次已看集合。
type Seen struct{}

func (f *Seen) Name() string { return "filter.seen" }

func (f *Seen) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (string, error) {
	if item == nil {
		return core.SkipSeen, nil
	}
	if rctx.HasSeen(item.ID) {
		return core.SkipSeen, nil
	}
	return "", nil
}
