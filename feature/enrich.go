// Package feature 实现候选的元数据补齐节点。
package feature

import (
	"context"

	"github.com/cinekit/cinekit/core"
	"github.com/cinekit/cinekit/pipeline"
	"github.com/cinekit/cinekit/pkg/conv"
)

// 特征存储中约定的特征名。
const (
	FeatureDuration = "movie:duration"
	FeatureTitle    = "movie:title"
	FeatureGenres   = "movie:genres"
)

// Enrich 在时间过滤之前，从特征服务批量补齐候选缺失的元数据（片长/标题）。
//
// 使用场景：目录数据不全（采集任务落后于上新），片长等元数据在
// Feature Store 中更新更快；补齐失败不是错误，候选交给目录兜底。
type Enrich struct {
	Service core.FeatureService
}

func (n *Enrich) Name() string        { return "feature.enrich" }
func (n *Enrich) Kind() pipeline.Kind { return pipeline.KindPostProcess }

func (n *Enrich) Process(
	ctx context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.Service == nil || len(items) == 0 {
		return items, nil
	}

	missing := make([]int64, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		if _, ok := it.Duration(); !ok {
			missing = append(missing, it.ID)
		}
	}
	if len(missing) == 0 {
		return items, nil
	}

	features, err := n.Service.BatchGetMovieFeatures(ctx, missing)
	if err != nil {
		// 特征服务不可用不阻塞链路：候选交给目录兜底
		return items, nil
	}

	for _, it := range items {
		if it == nil {
			continue
		}
		fv, ok := features[it.ID]
		if !ok {
			continue
		}
		if d, ok := conv.ToInt(fv[FeatureDuration]); ok && d > 0 {
			it.Meta[core.MetaDuration] = d
		}
		if title, ok := conv.ToString(fv[FeatureTitle]); ok && title != "" {
			if _, has := it.Meta[core.MetaTitle]; !has {
				it.Meta[core.MetaTitle] = title
			}
		}
	}
	return items, nil
}
