package core

import "github.com/cinekit/cinekit/pkg/utils"

// Item 是推荐链路中的统一候选承载结构：特征、分数、元信息、标签。
// Labels 用于解释与诊断；Score 在 Rank 阶段写入最终优先级（0-100）。
type Item struct {
	ID       int64
	Score    float64
	Features map[string]float64
	Meta     map[string]any
	Labels   map[string]utils.Label
}

func NewItem(id int64) *Item {
	return &Item{
		ID:       id,
		Score:    0,
		Features: make(map[string]float64),
		Meta:     make(map[string]any),
		Labels:   make(map[string]utils.Label),
	}
}

// 约定的 Feature / Meta key，贯穿 Recall → Filter → Rank。
const (
	// FeaturePredictedRating 是协同过滤预测评分（Lista A 写入，Rank 阶段必读）。
	FeaturePredictedRating = "predicted_rating"

	// FeatureSimilarity 是内容相似度分数（Lista B 写入，仅用于解释）。
	FeatureSimilarity = "similarity"

	// MetaDuration 是片长（分钟），Filter 阶段用于时间预算硬过滤。
	MetaDuration = "duration"

	// MetaTitle 是标题，用于最终结果展示。
	MetaTitle = "title"
)

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// PredictedRating 返回协同过滤预测评分；第二个返回值表示该候选是否有预测。
// 仅经内容相似召回、未被 Lista A 覆盖的候选没有预测，Rank 阶段会将其丢弃。
func (it *Item) PredictedRating() (float64, bool) {
	if it.Features == nil {
		return 0, false
	}
	v, ok := it.Features[FeaturePredictedRating]
	return v, ok
}

// Duration 返回片长（分钟）；缺失或非正值时返回 (0, false)。
func (it *Item) Duration() (int, bool) {
	if it.Meta == nil {
		return 0, false
	}
	switch v := it.Meta[MetaDuration].(type) {
	case int:
		if v > 0 {
			return v, true
		}
	case int64:
		if v > 0 {
			return int(v), true
		}
	case float64:
		if v > 0 {
			return int(v), true
		}
	}
	return 0, false
}
