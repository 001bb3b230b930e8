package pipeline

import (
	"context"

	"github.com/cinekit/cinekit/core"
)

// Pipeline 是 cinekit 的核心抽象：把推荐逻辑拆成可组合的 Node 链。
//
// 链路上不会修改任何共享状态（目录/模型只读、上下文归请求独占），
// 因此调用方可以在任意 Node 边界通过 ctx 放弃本次计算而不留脏数据。
type Pipeline struct {
	Nodes []Node
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}
