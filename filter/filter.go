// Package filter 实现候选过滤阶段：已看再减、时间预算硬过滤、表达式排除。
//
// 传播策略（与错误分级对应）：单个候选的任何失败都只影响它自己 ——
// 丢弃并计入诊断计数，绝不中断整个批次。
package filter

import (
	"context"

	"github.com/cinekit/cinekit/core"
	"github.com/cinekit/cinekit/pipeline"
)

// Filter 是单项过滤器：返回非空 reason 表示丢弃该候选（reason 计入诊断），
// 返回空串表示放行。err 仅用于基础设施故障（目录/存储不可达等），调用方
// 丢弃该候选并计 filter_error —— 时间预算是硬约束，未经校验的候选宁可
// 漏掉也不能放行。纯咨询性的过滤器（如 Expr）应自行吞掉求值错误以保持放行。
type Filter interface {
	Name() string
	ShouldFilter(ctx context.Context, rctx *core.RecommendContext, item *core.Item) (reason string, err error)
}

// Node 是过滤链 Node：按顺序应用各过滤器，逐项统计丢弃原因。
// 时间过滤、片长缺失、未知电影分开计数，见 core.Diagnostics。
type Node struct {
	Filters []Filter
}

func (n *Node) Name() string        { return "filter.chain" }
func (n *Node) Kind() pipeline.Kind { return pipeline.KindFilter }

func (n *Node) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(n.Filters) == 0 || len(items) == 0 {
		return items, nil
	}

	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}

		dropped := false
		for _, f := range n.Filters {
			reason, err := f.ShouldFilter(ctx, rctx, it)
			if err != nil {
				// 基础设施故障时无法校验硬约束（片长/时间预算），丢弃该候选
				rctx.Diag.Skip(core.SkipFilterError)
				dropped = true
				break
			}
			if reason != "" {
				rctx.Diag.Skip(reason)
				dropped = true
				break
			}
		}
		if !dropped {
			out = append(out, it)
		}
	}
	return out, nil
}
