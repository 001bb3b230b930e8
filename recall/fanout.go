package recall

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cinekit/cinekit/core"
	"github.com/cinekit/cinekit/pipeline"
)

// Fanout 是一个 Recall Node：并发执行多个召回源，并按源顺序合并结果。
//
// 合并语义（并集去重）：
//   - 相同 id 保留首个来源的 Item
//   - 后续来源的 labels 按标准 merge 规则累积、缺失的 features 补齐 ——
//     这样"既在 Lista A 又在 Lista B"的候选一定带着预测评分进入 Rank
//
// 确定性：各源结果先按源下标落位、Wait 之后再顺序合并，
// 并发调度不影响输出顺序（同一快照下两次调用结果一致）。
type Fanout struct {
	Sources []Source

	// Timeout 是单个召回源的超时时间；超时的源按空结果处理，不中断其余源。
	Timeout time.Duration

	// MaxConcurrent 是最大并发数（0 表示无限制）。
	MaxConcurrent int
}

func (n *Fanout) Name() string        { return "recall.fanout" }
func (n *Fanout) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *Fanout) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	if len(n.Sources) == 0 {
		return nil, nil
	}

	results := make([][]*core.Item, len(n.Sources))
	eg, egCtx := errgroup.WithContext(ctx)
	if n.MaxConcurrent > 0 {
		eg.SetLimit(n.MaxConcurrent)
	}

	for i, src := range n.Sources {
		slot, s := i, src
		eg.Go(func() error {
			recallCtx := egCtx
			if n.Timeout > 0 {
				var cancel context.CancelFunc
				recallCtx, cancel = context.WithTimeout(egCtx, n.Timeout)
				defer cancel()
			}

			items, err := s.Recall(recallCtx, rctx)
			if err != nil {
				// 单个召回源失败/超时按空结果处理，不中断其余召回源
				return nil
			}
			results[slot] = items
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return mergeUnion(results), nil
}

// mergeUnion 按源顺序做并集去重，重复 id 合并 labels 并补齐缺失 features。
func mergeUnion(results [][]*core.Item) []*core.Item {
	seen := make(map[int64]*core.Item)
	out := make([]*core.Item, 0)

	for _, items := range results {
		for _, it := range items {
			if it == nil {
				continue
			}
			old, dup := seen[it.ID]
			if !dup {
				seen[it.ID] = it
				out = append(out, it)
				continue
			}
			for k, v := range it.Labels {
				old.PutLabel(k, v)
			}
			for k, v := range it.Features {
				if _, exists := old.Features[k]; !exists {
					old.Features[k] = v
				}
			}
		}
	}
	return out
}
