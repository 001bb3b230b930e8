// Package cinekit 是一个混合电影推荐工具包（Cinema Recommender Kit）。
//
// 设计要点：
// - Pipeline-first: 推荐逻辑通过 Node 串联（Recall → Filter → Rank → ReRank）
// - Labels-first: labels 全链路透传与标准化 merge，每一次丢弃/跳过都有可追踪的原因
// - 双路召回: 协同过滤预测（Lista A）+ 内容相似扩展（Lista B），并集去重后统一打分
// - 模糊排序: 预测评分 × 可用时长 → Mamdani 模糊推理得到最终优先级
package cinekit

import "github.com/cinekit/cinekit/pipeline"

// 轻量 facade：便于用户直接 import "cinekit" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindRank        = pipeline.KindRank
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
