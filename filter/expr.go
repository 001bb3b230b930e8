package filter

import (
	"context"

	"github.com/cinekit/cinekit/core"
	"github.com/cinekit/cinekit/pkg/dsl"
)

// Expr 是基于 CEL 表达式的过滤器：表达式求值为 true 的候选被排除。
// 用于运营可配置的排除规则，例如：
//
//	label.recall_source == "similar" && item.features.predicted_rating < 2.0
//	item.meta.duration < 40.0
type Expr struct {
	prg *dsl.Program
}

// NewExpr 编译表达式并构建过滤器；编译错误在构建期暴露。
func NewExpr(expression string) (*Expr, error) {
	prg, err := dsl.Compile(expression)
	if err != nil {
		return nil, err
	}
	return &Expr{prg: prg}, nil
}

func (f *Expr) Name() string { return "filter.expr" }

func (f *Expr) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (string, error) {
	if item == nil {
		return core.SkipExpr, nil
	}
	match, err := f.prg.Match(item, rctx)
	if err != nil {
		// 排除规则是咨询性的：求值失败按未命中处理，候选放行
		return "", nil
	}
	if match {
		return core.SkipExpr, nil
	}
	return "", nil
}
