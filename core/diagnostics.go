package core

import "sync"

// 请求级失败原因（Diagnostics.Reason）。
// 调用方据此区分"资源缺失导致的空结果"与"过滤后无候选"，返回类型不变。
const (
	ReasonOK             = ""
	ReasonUserNotFound   = "user_not_found"   // 用户无任何评分记录
	ReasonMissingCatalog = "missing_catalog"  // 目录未加载
	ReasonMissingRatings = "missing_ratings"  // 评分存储未加载
	ReasonMissingModel   = "missing_model"    // 协同过滤模型未加载
	ReasonMissingIndex   = "missing_index"    // 内容相似索引未加载
	ReasonMissingScorer  = "missing_scorer"   // 模糊引擎未加载
)

// 逐项跳过原因（Diagnostics.Skips 的 key）。
// 数据缺失、类型异常、时间过滤分开统计，排查"为什么结果变少了"时各查各的。
const (
	SkipSeen             = "seen"              // 已看，防御性再减
	SkipUnknownMovie     = "unknown_movie"     // 候选不在目录中
	SkipMissingDuration  = "missing_duration"  // 片长缺失或非法
	SkipOverBudget       = "over_budget"       // 片长超出可用时长
	SkipNoPrediction     = "no_prediction"     // 仅内容召回、无预测评分
	SkipOutOfRange       = "out_of_range"      // 预测评分/时长在模糊定义域外
	SkipPredictionFailed = "prediction_failed" // 单项预测抛错
	SkipScoringFailed    = "scoring_failed"    // 模糊推理无规则激活（计 0 分保留）
	SkipExpr             = "expr"              // CEL 表达式过滤
	SkipFilterError      = "filter_error"      // 过滤器基础设施故障，候选无法校验
)

// Diagnostics 汇总一次推荐请求的诊断信息：请求级失败原因 + 逐项跳过计数。
// Recall 阶段并发写入，需要加锁；Pipeline 之后的阶段单线程读写。
type Diagnostics struct {
	mu sync.Mutex

	// Reason 是请求级失败原因；空串表示请求正常完成。
	Reason string

	// Passed 是通过全部过滤、进入最终排序的候选数。
	Passed int

	// Skips 是逐项跳过原因 → 次数。
	Skips map[string]int
}

func NewDiagnostics() *Diagnostics {
	return &Diagnostics{Skips: make(map[string]int)}
}

// Skip 记录一次逐项跳过。
func (d *Diagnostics) Skip(reason string) {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Skips == nil {
		d.Skips = make(map[string]int)
	}
	d.Skips[reason]++
}

// Pass 记录一个通过全部过滤的候选。
func (d *Diagnostics) Pass() {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Passed++
}

// SetReason 设置请求级失败原因（只保留第一个）。
func (d *Diagnostics) SetReason(reason string) {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Reason == "" {
		d.Reason = reason
	}
}

// Skipped 返回某原因的跳过次数。
func (d *Diagnostics) Skipped(reason string) int {
	if d == nil {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Skips[reason]
}
