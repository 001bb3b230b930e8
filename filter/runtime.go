package filter

import (
	"context"

	"github.com/cinekit/cinekit/core"
)

// Runtime 是时间预算硬过滤器：片长超出可用时长的候选直接丢弃。
//
// 规则：
//   - 片长缺失/非正 → 丢弃，计 missing_duration（与时间过滤分开统计）
//   - 片长 > 可用分钟数 → 丢弃，计 over_budget（严格大于：恰好相等的放行）
//   - 候选不在目录中 → 丢弃，计 unknown_movie
//
// 顺带把标题与片长写入 item.Meta，供 Rank 之后的结果组装使用
// （feature.Enrich 先行填过的 Meta 优先，目录只做兜底）。
type Runtime struct {
	Catalog core.Catalog
}

func (f *Runtime) Name() string { return "filter.runtime" }

func (f *Runtime) ShouldFilter(
	ctx context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (string, error) {
	if item == nil {
		return core.SkipUnknownMovie, nil
	}

	duration, ok := item.Duration()
	if !ok {
		if f.Catalog == nil {
			return core.SkipMissingDuration, nil
		}
		movie, err := f.Catalog.GetMovie(ctx, item.ID)
		if err != nil {
			if core.IsUnknownEntity(err) {
				return core.SkipUnknownMovie, nil
			}
			return "", err
		}
		if movie.Duration <= 0 {
			return core.SkipMissingDuration, nil
		}
		duration = movie.Duration
		item.Meta[core.MetaDuration] = duration
		if _, has := item.Meta[core.MetaTitle]; !has {
			item.Meta[core.MetaTitle] = movie.Title
		}
	}

	if float64(duration) > rctx.AvailableMinutes {
		return core.SkipOverBudget, nil
	}
	return "", nil
}
