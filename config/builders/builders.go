// Package builders 提供内置 Node 的配置构建器。
//
// 目录、预测模型、相似索引等运行期资源无法从配置文件构建，
// 宿主进程把它们装进 Dependencies，调用 Factory 拿到绑定后的 NodeFactory。
// init 中注册的零依赖构建器只服务于类型校验（SupportedTypes / ValidatePipelineConfig）。
package builders

import (
	"fmt"
	"time"

	"github.com/cinekit/cinekit/config"
	"github.com/cinekit/cinekit/core"
	"github.com/cinekit/cinekit/feature"
	"github.com/cinekit/cinekit/filter"
	"github.com/cinekit/cinekit/fuzzy"
	"github.com/cinekit/cinekit/pipeline"
	"github.com/cinekit/cinekit/pkg/conv"
	"github.com/cinekit/cinekit/rank"
	"github.com/cinekit/cinekit/recall"
	"github.com/cinekit/cinekit/rerank"
)

func init() {
	var zero Dependencies
	config.Register("recall.fanout", zero.buildFanoutNode)
	config.Register("filter.chain", zero.buildFilterNode)
	config.Register("rank.fuzzy", zero.buildFuzzyRankNode)
	config.Register("rerank.topn", BuildTopNNode)
	config.Register("feature.enrich", zero.buildFeatureEnrichNode)
}

// Dependencies 是配置无法表达的运行期资源。
type Dependencies struct {
	Catalog        core.Catalog
	Predictor      core.RatingPredictor
	Index          core.SimilarityIndex
	Scorer         core.PriorityScorer
	FeatureService core.FeatureService
}

// Factory 返回绑定了运行期资源的 NodeFactory。
// 不写包级状态，同一进程内可以用不同的 Dependencies 组装多条 Pipeline。
func Factory(d Dependencies) *pipeline.NodeFactory {
	f := pipeline.NewNodeFactory()
	f.Register("recall.fanout", d.buildFanoutNode)
	f.Register("filter.chain", d.buildFilterNode)
	f.Register("rank.fuzzy", d.buildFuzzyRankNode)
	f.Register("rerank.topn", BuildTopNNode)
	f.Register("feature.enrich", d.buildFeatureEnrichNode)
	return f
}

// buildFanoutNode 构建并发召回 Node。
//
// 配置示例：
//
//	type: recall.fanout
//	config:
//	  timeout: 2            # 单源超时（秒）
//	  max_concurrent: 4
//	  sources:
//	    - type: cf
//	    - type: similar
//	      per_seed: 25
func (d Dependencies) buildFanoutNode(cfg map[string]any) (pipeline.Node, error) {
	sourcesConfig, ok := cfg["sources"].([]any)
	if !ok {
		return nil, fmt.Errorf("sources not found or invalid")
	}

	sources := make([]recall.Source, 0, len(sourcesConfig))
	for _, sc := range sourcesConfig {
		sourceMap, ok := sc.(map[string]any)
		if !ok {
			continue
		}
		switch sourceType := conv.ConfigGet(sourceMap, "type", ""); sourceType {
		case "cf":
			sources = append(sources, &recall.PredictedRating{
				Catalog:   d.Catalog,
				Predictor: d.Predictor,
			})
		case "similar":
			sources = append(sources, &recall.SimilarFavorites{
				Index:   d.Index,
				PerSeed: conv.ConfigGetInt(sourceMap, "per_seed", 0),
			})
		default:
			return nil, fmt.Errorf("unknown source type: %s", sourceType)
		}
	}

	fanout := &recall.Fanout{Sources: sources}
	if sec := conv.ConfigGetInt(cfg, "timeout", 0); sec > 0 {
		fanout.Timeout = time.Duration(sec) * time.Second
	}
	if n := conv.ConfigGetInt(cfg, "max_concurrent", 0); n > 0 {
		fanout.MaxConcurrent = n
	}
	return fanout, nil
}

// buildFilterNode 构建过滤链 Node。
//
// 配置示例：
//
//	type: filter.chain
//	config:
//	  filters:
//	    - type: seen
//	    - type: runtime
//	    - type: expr
//	      expression: 'item.meta.duration < 40.0'
func (d Dependencies) buildFilterNode(cfg map[string]any) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]any)
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}

	filters := make([]filter.Filter, 0, len(filtersConfig))
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]any)
		if !ok {
			continue
		}
		switch filterType := conv.ConfigGet(filterMap, "type", ""); filterType {
		case "seen":
			filters = append(filters, &filter.Seen{})
		case "runtime":
			filters = append(filters, &filter.Runtime{Catalog: d.Catalog})
		case "expr":
			expression := conv.ConfigGet(filterMap, "expression", "")
			if expression == "" {
				return nil, fmt.Errorf("expr filter: expression is required")
			}
			f, err := filter.NewExpr(expression)
			if err != nil {
				return nil, fmt.Errorf("expr filter: %w", err)
			}
			filters = append(filters, f)
		default:
			return nil, fmt.Errorf("unknown filter type: %s", filterType)
		}
	}
	return &filter.Node{Filters: filters}, nil
}

// buildFuzzyRankNode 构建模糊优先级排序 Node。
// 未注入 Scorer 时使用内置的电影优先级引擎。
func (d Dependencies) buildFuzzyRankNode(cfg map[string]any) (pipeline.Node, error) {
	scorer := d.Scorer
	if scorer == nil {
		scorer = fuzzy.NewEngine()
	}
	return &rank.FuzzyNode{
		Scorer:      scorer,
		TimeGuardLo: conv.ConfigGetFloat(cfg, "time_guard_lo", 0),
		TimeGuardHi: conv.ConfigGetFloat(cfg, "time_guard_hi", 0),
	}, nil
}

// BuildTopNNode 构建 Top-N 截断 Node。n 缺省时回落到请求级 TopN。
func BuildTopNNode(cfg map[string]any) (pipeline.Node, error) {
	return &rerank.TopNNode{N: conv.ConfigGetInt(cfg, "n", 0)}, nil
}

// buildFeatureEnrichNode 构建元数据补齐 Node。未注入特征服务时节点直接透传。
func (d Dependencies) buildFeatureEnrichNode(_ map[string]any) (pipeline.Node, error) {
	return &feature.Enrich{Service: d.FeatureService}, nil
}
