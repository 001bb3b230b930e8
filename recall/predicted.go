package recall

import (
	"context"
	"sort"

	"github.com/cinekit/cinekit/core"
	"github.com/cinekit/cinekit/pkg/utils"
)

// PredictedRating 是协同过滤预测召回源（"Lista A"）。
//
// 核心思想：对用户未看过的每一部目录电影请求一次评分预测，
// 预测值写入 Features["predicted_rating"]，供 Rank 阶段的模糊推理使用。
//
// 约定：
//   - 只预测未看集合（目录全集 − 已看）
//   - 单条预测失败逐项捕获：跳过该电影、记一次 prediction_failed，绝不中断批次
//   - 未看集合按 id 升序遍历，保证同一快照下结果可复现
type PredictedRating struct {
	Catalog   core.Catalog
	Predictor core.RatingPredictor
}

func (r *PredictedRating) Name() string {
	return "recall.cf"
}

func (r *PredictedRating) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	// id 的合法性归存储层管：0 也是合法的用户 id，这里只守卫依赖缺失
	if r.Catalog == nil || r.Predictor == nil || rctx == nil {
		return nil, nil
	}

	allIDs, err := r.Catalog.AllIDs(ctx)
	if err != nil {
		return nil, err
	}

	unseen := make([]int64, 0, len(allIDs))
	for _, id := range allIDs {
		if rctx.HasSeen(id) {
			continue
		}
		unseen = append(unseen, id)
	}
	sort.Slice(unseen, func(i, j int) bool { return unseen[i] < unseen[j] })

	out := make([]*core.Item, 0, len(unseen))
	for _, id := range unseen {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		est, err := r.Predictor.Predict(ctx, rctx.UserID, id)
		if err != nil {
			rctx.Diag.Skip(core.SkipPredictionFailed)
			continue
		}

		it := core.NewItem(id)
		it.Features[core.FeaturePredictedRating] = est
		it.PutLabel("recall_source", utils.Label{Value: "cf", Source: "recall"})
		out = append(out, it)
	}

	return out, nil
}
