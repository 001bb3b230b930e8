// Package engine 实现混合推荐的编排层：协同过滤候选 + 内容相似扩展 →
// 已看剔除 → 时间预算硬过滤 → 模糊优先级排序 → Top-N 截断。
package engine

import (
	"context"
	"sort"
	"time"

	"github.com/cinekit/cinekit/core"
	"github.com/cinekit/cinekit/feature"
	"github.com/cinekit/cinekit/filter"
	"github.com/cinekit/cinekit/pipeline"
	"github.com/cinekit/cinekit/pkg/conv"
	"github.com/cinekit/cinekit/rank"
	"github.com/cinekit/cinekit/recall"
	"github.com/cinekit/cinekit/rerank"
)

// 编排层默认参数。
const (
	// DefaultFavoriteThreshold 是"喜爱"判定阈值：评分 ≥ 4.5 的电影作为相似召回种子。
	DefaultFavoriteThreshold = 4.5

	// DefaultSimilarPerSeed 是每个种子扩展的相似电影数。
	DefaultSimilarPerSeed = 25

	// 可用时长的请求级有效区间。
	DefaultTimeGuardLo = 0
	DefaultTimeGuardHi = 200
)

// Options 是 Recommender 的可选配置。
type Options struct {
	// FavoriteThreshold 喜爱判定阈值，0 使用默认 4.5。
	FavoriteThreshold float64

	// SimilarPerSeed 每个种子扩展的相似电影数，0 使用默认 25。
	SimilarPerSeed int

	// TimeGuardLo / TimeGuardHi 可用时长守卫区间，均为 0 使用默认 [0, 200]。
	TimeGuardLo float64
	TimeGuardHi float64

	// RecallTimeout 单个召回源的超时，0 表示不限。
	RecallTimeout time.Duration

	// FeatureService 可选的特征服务：目录数据不全时在过滤前补齐片长/标题。
	FeatureService core.FeatureService

	// ExtraFilters 追加在内置过滤器之后的业务过滤器（如 CEL 表达式排除）。
	ExtraFilters []filter.Filter

	// Params 请求级上下文参数（场景、实验桶等），透传给 Expr 过滤器。
	Params map[string]any
}

// Recommender 是混合推荐器：持有目录、评分存储、预测模型、相似索引与
// 模糊打分引擎，把它们装配成一条固定的 Pipeline。
//
// 并发安全：目录/模型/索引只读，评分快照归请求独占，Recommender 自身
// 无可变状态，可跨并发请求共享单例。
type Recommender struct {
	catalog   core.Catalog
	ratings   core.RatingStore
	predictor core.RatingPredictor
	index     core.SimilarityIndex
	scorer    core.PriorityScorer

	opts Options
	pipe *pipeline.Pipeline
}

// New 创建混合推荐器并装配 Pipeline。任何依赖缺失不报错：
// 对应请求会以空结果 + 诊断原因的形式降级（服务降级优先于崩溃）。
func New(
	catalog core.Catalog,
	ratings core.RatingStore,
	predictor core.RatingPredictor,
	index core.SimilarityIndex,
	scorer core.PriorityScorer,
	opts Options,
) *Recommender {
	if opts.FavoriteThreshold <= 0 {
		opts.FavoriteThreshold = DefaultFavoriteThreshold
	}
	if opts.SimilarPerSeed <= 0 {
		opts.SimilarPerSeed = DefaultSimilarPerSeed
	}
	if opts.TimeGuardHi <= opts.TimeGuardLo {
		opts.TimeGuardLo = DefaultTimeGuardLo
		opts.TimeGuardHi = DefaultTimeGuardHi
	}

	r := &Recommender{
		catalog:   catalog,
		ratings:   ratings,
		predictor: predictor,
		index:     index,
		scorer:    scorer,
		opts:      opts,
	}
	r.pipe = r.buildPipeline()
	return r
}

func (r *Recommender) buildPipeline() *pipeline.Pipeline {
	nodes := []pipeline.Node{
		&recall.Fanout{
			Sources: []recall.Source{
				&recall.PredictedRating{Catalog: r.catalog, Predictor: r.predictor},
				&recall.SimilarFavorites{Index: r.index, PerSeed: r.opts.SimilarPerSeed},
			},
			Timeout: r.opts.RecallTimeout,
		},
	}

	if r.opts.FeatureService != nil {
		nodes = append(nodes, &feature.Enrich{Service: r.opts.FeatureService})
	}

	filters := []filter.Filter{
		&filter.Seen{},
		&filter.Runtime{Catalog: r.catalog},
	}
	filters = append(filters, r.opts.ExtraFilters...)
	nodes = append(nodes,
		&filter.Node{Filters: filters},
		&rank.FuzzyNode{
			Scorer:      r.scorer,
			TimeGuardLo: r.opts.TimeGuardLo,
			TimeGuardHi: r.opts.TimeGuardHi,
		},
		&rerank.TopNNode{},
	)
	return &pipeline.Pipeline{Nodes: nodes}
}

// Recommend 为用户生成按优先级降序的 Top-N 推荐。
//
// 降级语义：依赖缺失（目录/模型/引擎未加载）或用户无评分时返回空结果
// 且 error 为 nil，失败原因写入 Diagnostics.Reason；error 只用于
// 存储 I/O 故障与 ctx 取消。
//
// 幂等性：同一评分快照下重复调用返回相同序列（召回顺序与排序均为确定性）。
func (r *Recommender) Recommend(
	ctx context.Context,
	userID int64,
	availableMinutes float64,
	topN int,
) ([]core.Recommendation, *core.Diagnostics, error) {
	diag := core.NewDiagnostics()

	switch {
	case r.catalog == nil:
		diag.SetReason(core.ReasonMissingCatalog)
		return []core.Recommendation{}, diag, nil
	case r.ratings == nil:
		diag.SetReason(core.ReasonMissingRatings)
		return []core.Recommendation{}, diag, nil
	case r.predictor == nil:
		diag.SetReason(core.ReasonMissingModel)
		return []core.Recommendation{}, diag, nil
	case r.scorer == nil:
		diag.SetReason(core.ReasonMissingScorer)
		return []core.Recommendation{}, diag, nil
	}
	// index 缺失不整体降级：Lista B 为空，仅依赖协同过滤候选

	snapshot, err := r.ratings.RatingsForUser(ctx, userID)
	if err != nil {
		return nil, diag, err
	}
	if len(snapshot) == 0 {
		// 冷启动用户：无评分 → 无画像，空结果是正确答案而不是错误
		diag.SetReason(core.ReasonUserNotFound)
		return []core.Recommendation{}, diag, nil
	}

	seen, favorites := deriveProfile(snapshot, r.opts.FavoriteThreshold)

	rctx := &core.RecommendContext{
		UserID:           userID,
		AvailableMinutes: availableMinutes,
		TopN:             topN,
		Seen:             seen,
		Favorites:        favorites,
		Params:           r.opts.Params,
		Diag:             diag,
	}

	items, err := r.pipe.Run(ctx, rctx, nil)
	if err != nil {
		return nil, diag, err
	}

	out := make([]core.Recommendation, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		rec := core.Recommendation{
			MovieID:  it.ID,
			Priority: it.Score,
		}
		rec.PredictedRating, _ = it.PredictedRating()
		rec.Duration, _ = it.Duration()
		rec.Title, _ = conv.ToString(it.Meta[core.MetaTitle])
		out = append(out, rec)
	}
	return out, diag, nil
}

// deriveProfile 从评分快照派生已看集合与喜爱种子。
//
// 同一 (userId, movieId) 的多条 append-only 记录按 last-write-wins 归并：
// 快照按写入顺序排列，后写覆盖先写。种子升序排序保证召回顺序确定。
func deriveProfile(snapshot []core.Rating, favoriteThreshold float64) (map[int64]struct{}, []int64) {
	effective := make(map[int64]float64, len(snapshot))
	seen := make(map[int64]struct{}, len(snapshot))
	for _, rec := range snapshot {
		effective[rec.MovieID] = rec.Value
		seen[rec.MovieID] = struct{}{}
	}

	favorites := make([]int64, 0)
	for movieID, value := range effective {
		if value >= favoriteThreshold {
			favorites = append(favorites, movieID)
		}
	}
	sort.Slice(favorites, func(i, j int) bool { return favorites[i] < favorites[j] })
	return seen, favorites
}
