// Package rank 实现排序阶段：模糊推理打分 + 稳定降序排序。
package rank

import (
	"context"
	"sort"

	"github.com/cinekit/cinekit/core"
	"github.com/cinekit/cinekit/pipeline"
	"github.com/cinekit/cinekit/pkg/utils"
)

// FuzzyNode 用模糊优先级引擎为候选打分，并按优先级稳定降序排序。
//
// 打分前置校验（引擎的定义域守卫由调用方负责）：
//   - 候选必须带有预测评分：仅内容召回、Lista A 未覆盖的候选被丢弃（no_prediction）
//   - 预测评分必须落在引擎评分定义域内，否则静默跳过（out_of_range）
//   - 可用时长必须落在守卫区间 [TimeGuardLo, TimeGuardHi] 内，否则静默跳过
//
// 打分失败（无规则激活）按优先级 0 保留候选，而不是丢弃。
// 排序稳定：优先级并列时保持先见顺序。
type FuzzyNode struct {
	Scorer core.PriorityScorer

	// TimeGuardLo / TimeGuardHi 是可用时长的请求级有效区间，默认 [0, 200]。
	TimeGuardLo float64
	TimeGuardHi float64
}

func (n *FuzzyNode) Name() string        { return "rank.fuzzy" }
func (n *FuzzyNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *FuzzyNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.Scorer == nil || len(items) == 0 {
		return items, nil
	}

	guardLo, guardHi := n.TimeGuardLo, n.TimeGuardHi
	if guardHi <= guardLo {
		guardLo, guardHi = 0, 200
	}
	ratingLo, ratingHi := n.Scorer.RatingDomain()

	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}

		pred, ok := it.PredictedRating()
		if !ok {
			rctx.Diag.Skip(core.SkipNoPrediction)
			continue
		}
		if pred < ratingLo || pred > ratingHi {
			rctx.Diag.Skip(core.SkipOutOfRange)
			continue
		}
		if rctx.AvailableMinutes < guardLo || rctx.AvailableMinutes > guardHi {
			rctx.Diag.Skip(core.SkipOutOfRange)
			continue
		}

		priority, err := n.Scorer.Score(pred, rctx.AvailableMinutes)
		if err != nil {
			// 无规则激活不是致命错误：计 0 分保留候选
			rctx.Diag.Skip(core.SkipScoringFailed)
			priority = 0
		}
		it.Score = priority
		it.PutLabel("rank_model", utils.Label{Value: "fuzzy", Source: "rank"})
		rctx.Diag.Pass()
		out = append(out, it)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out, nil
}
