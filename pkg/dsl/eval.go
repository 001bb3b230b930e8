// Package dsl 是基于 CEL (Common Expression Language) 的过滤表达式解释器。
//
// CEL 是 Google 开发的表达式语言，类型安全、高性能、线程安全，
// 用于把"运营可配置的候选排除规则"从代码中拆出去。
//
// 表达式语法（CEL 标准语法）：
//   - 基础：label.recall_source == "similar" / item.score > 60.0
//   - 特征：item.features.predicted_rating >= 3.5
//   - 元信息：item.meta.duration <= rctx.available_minutes
//   - 逻辑：label.recall_source == "cf" && item.score > 50.0
//
// 表达式在构建时编译一次（Compile），之后的 Match 可并发调用。
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/cinekit/cinekit/core"
)

var (
	celEnv     *cel.Env
	celEnvOnce sync.Once
	celEnvErr  error
)

// getCELEnv 获取或创建全局 CEL 环境（线程安全，可复用）。
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("item", cel.DynType),
			cel.Variable("label", cel.DynType),
			cel.Variable("rctx", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Program 是一条编译好的过滤表达式，可跨请求复用。
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译表达式；编译失败在构建期暴露，而不是在逐项过滤时。
func Compile(expr string) (*Program, error) {
	if expr == "" {
		return nil, fmt.Errorf("dsl: empty expression")
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("dsl: init env: %w", err)
	}
	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("dsl: compile %q: %w", expr, iss.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("dsl: program %q: %w", expr, err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

// Expr 返回原始表达式文本。
func (p *Program) Expr() string { return p.expr }

// Match 在 (item, rctx) 上求值，返回布尔结果。
// 非布尔结果视为求值错误。
func (p *Program) Match(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	labels := make(map[string]string, len(item.Labels))
	for k, lbl := range item.Labels {
		labels[k] = lbl.Value
	}

	itemVars := map[string]any{
		"id":       item.ID,
		"score":    item.Score,
		"features": item.Features,
		"meta":     item.Meta,
	}

	rctxVars := map[string]any{}
	if rctx != nil {
		rctxVars["user_id"] = rctx.UserID
		rctxVars["available_minutes"] = rctx.AvailableMinutes
		rctxVars["top_n"] = rctx.TopN
		rctxVars["params"] = rctx.Params
	}

	out, _, err := p.prg.Eval(map[string]any{
		"item":  itemVars,
		"label": labels,
		"rctx":  rctxVars,
	})
	if err != nil {
		return false, fmt.Errorf("dsl: eval %q: %w", p.expr, err)
	}

	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("dsl: expression %q returned non-bool %T", p.expr, out.Value())
	}
	return b, nil
}
