// Package rerank 实现重排阶段的结果修饰节点。
package rerank

import (
	"context"

	"github.com/cinekit/cinekit/core"
	"github.com/cinekit/cinekit/pipeline"
)

// TopNNode 是一个 Top-N 截断节点，用于在排序后截取前 N 个候选。
//
// N <= 0 时回落到 rctx.TopN（请求级结果数量）；仍然非正则不截断。
type TopNNode struct {
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	limit := n.N
	if limit <= 0 && rctx != nil {
		limit = rctx.TopN
	}
	if limit <= 0 {
		return items, nil
	}

	if len(items) <= limit {
		return items, nil
	}
	return items[:limit], nil
}
