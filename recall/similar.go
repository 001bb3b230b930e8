package recall

import (
	"context"

	"github.com/cinekit/cinekit/core"
	"github.com/cinekit/cinekit/pkg/utils"
)

// SimilarFavorites 是内容相似召回源（"Lista B"）。
//
// 核心思想："用户给出 4.5 分以上的电影，说明其内容口味"——
// 以每部高分电影为种子，从潜在矩阵索引取 TopK 相似电影，取并集。
//
// 约定：
//   - 收藏集为空不是错误：直接返回空列表，链路仅依赖协同过滤候选
//   - 种子不在索引中由索引侧静默处理（返回空），这里逐个种子容错
//   - 去重保留首个出现，favorites 顺序由上游固定，结果可复现
type SimilarFavorites struct {
	Index core.SimilarityIndex

	// PerSeed 是每个种子电影扩展的相似电影数，默认 25。
	PerSeed int
}

func (r *SimilarFavorites) Name() string {
	return "recall.similar"
}

func (r *SimilarFavorites) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Index == nil || rctx == nil || len(rctx.Favorites) == 0 {
		return nil, nil
	}

	perSeed := r.PerSeed
	if perSeed <= 0 {
		perSeed = 25
	}

	seen := make(map[int64]struct{})
	out := make([]*core.Item, 0, perSeed*len(rctx.Favorites))

	for _, seedID := range rctx.Favorites {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		similar, err := r.Index.SimilarItems(ctx, seedID, perSeed)
		if err != nil {
			// 单个种子的相似度计算失败不影响其余种子
			rctx.Diag.Skip(core.SkipPredictionFailed)
			continue
		}

		for _, id := range similar {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}

			it := core.NewItem(id)
			it.PutLabel("recall_source", utils.Label{Value: "similar", Source: "recall"})
			out = append(out, it)
		}
	}

	return out, nil
}
