package core

import "github.com/cinekit/cinekit/pkg/utils"

// RecommendContext 承载单次推荐请求的全部上下文，贯穿整个 Pipeline 透传。
//
// Seen / Favorites 是请求开始时从评分快照派生的集合，Pipeline 运行期间只读；
// 并发评估共享的目录与模型同样只读，因此链路上不需要任何锁。
type RecommendContext struct {
	UserID int64

	// AvailableMinutes 是用户的可用观影时长（分钟），时间预算硬过滤的上界。
	AvailableMinutes float64

	// TopN 是最终返回的结果数量上限。
	TopN int

	// Seen 是用户已评分过的电影集合（任意分值都算已看）。
	Seen map[int64]struct{}

	// Favorites 是评分 ≥ 4.5 的电影列表，作为内容相似召回的种子。
	// 为空不是错误：Lista B 为空，仅依赖协同过滤候选。
	Favorites []int64

	// Labels 是请求级标签，可驱动整个 Pipeline 行为。
	Labels map[string]utils.Label

	// Params 请求级上下文参数（场景、实验桶等），供 Expr 过滤器引用。
	Params map[string]any

	// Diag 汇总本次请求的逐项跳过原因，所有 Node 共用（见 Diagnostics）。
	Diag *Diagnostics
}

// HasSeen 判断电影是否在已看集合内。
func (rctx *RecommendContext) HasSeen(movieID int64) bool {
	if rctx.Seen == nil {
		return false
	}
	_, ok := rctx.Seen[movieID]
	return ok
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
