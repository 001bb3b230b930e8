package fuzzy

import "github.com/cinekit/cinekit/core"

// 电影优先级系统的定义域常量。
const (
	RatingMin = 1.0
	RatingMax = 5.0

	TimeMin = 15.0
	TimeMax = 240.0

	PriorityMin = 0.0
	PriorityMax = 100.0
)

// 输入/输出变量名。
const (
	VarPredictedRating = "predicted_rating"
	VarAvailableTime   = "available_time"
	VarPriority        = "priority"
)

// Engine 是电影推荐的模糊优先级引擎：(预测评分, 可用时长) → 优先级 [0,100]。
//
// 规则集（固定，离线定义产物，无训练）：
//  1. 评分高 且 时间短 → 优先级高（时间紧就看最稳的片）
//  2. 评分中 → 优先级中
//  3. 评分低 → 优先级低
//  4. 评分高 且 时间长 → 优先级中（时间充裕，不急着消耗好片）
//  5. 评分中 且 时间短 → 优先级高
type Engine struct {
	sys *System
}

// NewEngine 构建电影优先级引擎。定义是固定的，构建不会失败；
// 返回的引擎不可变，可跨并发请求共享。
func NewEngine() *Engine {
	rating := NewVariable(VarPredictedRating, RatingMin, RatingMax).
		AddTerm("low", 1, 1, 3).
		AddTerm("medium", 2.5, 3.5, 4.5).
		AddTerm("high", 4, 5, 5)

	availableTime := NewVariable(VarAvailableTime, TimeMin, TimeMax).
		AddTerm("short", 15, 15, 90).
		AddTerm("medium", 70, 100, 130).
		AddTerm("long", 110, 240, 240)

	priority := NewVariable(VarPriority, PriorityMin, PriorityMax).
		AddTerm("low", 0, 0, 40).
		AddTerm("medium", 30, 50, 70).
		AddTerm("high", 60, 100, 100)

	sys := NewSystem(priority, rating, availableTime)

	mustRule(sys, "high",
		Condition{VarPredictedRating, "high"}, Condition{VarAvailableTime, "short"})
	mustRule(sys, "medium",
		Condition{VarPredictedRating, "medium"})
	mustRule(sys, "low",
		Condition{VarPredictedRating, "low"})
	mustRule(sys, "medium",
		Condition{VarPredictedRating, "high"}, Condition{VarAvailableTime, "long"})
	mustRule(sys, "high",
		Condition{VarPredictedRating, "medium"}, Condition{VarAvailableTime, "short"})

	return &Engine{sys: sys}
}

func mustRule(sys *System, then string, when ...Condition) {
	if err := sys.AddRule(then, when...); err != nil {
		panic(err) // 固定定义，出错即代码 bug
	}
}

// Score 计算优先级。无规则激活时返回 ErrNoRuleActivation，
// 调用方应视为优先级 0 而不是致命错误。
func (e *Engine) Score(predictedRating, availableMinutes float64) (float64, error) {
	return e.sys.Evaluate(map[string]float64{
		VarPredictedRating: predictedRating,
		VarAvailableTime:   availableMinutes,
	})
}

// RatingDomain 返回评分输入的定义域，Rank 阶段用于前置校验。
func (e *Engine) RatingDomain() (lo, hi float64) {
	return RatingMin, RatingMax
}

var _ core.PriorityScorer = (*Engine)(nil)
