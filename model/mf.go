// Package model 提供评分预测模型的具体实现。
// 领域接口是 core.RatingPredictor：模型对链路是不透明黑盒，只需满足预测契约。
package model

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/cinekit/cinekit/core"
)

// MFModel 是基于矩阵分解（Matrix Factorization）的本地评分预测模型。
//
// 核心思想：预测评分 = 全局均值 + 用户偏置 + 物品偏置 + 用户隐向量 · 物品隐向量
//
// 模型由离线任务训练（网格搜索调参的 SVD 类算法），在线侧只做查表 + 点积。
// 用户或物品不在表中时退化为偏置项/全局均值（冷启动的常规处理）。
//
// 注意：预测值不做截断，可能落在 [1,5] 之外 —— 由下游（Rank 阶段）校验定义域。
type MFModel struct {
	GlobalMean  float64
	UserBiases  map[int64]float64
	ItemBiases  map[int64]float64
	UserFactors map[int64][]float64
	ItemFactors map[int64][]float64
}

func (m *MFModel) Name() string { return "model.mf" }

// Predict 预测 (userID, movieID) 的评分。
// 模型未加载任何因子时返回 MISSING_RESOURCE 级错误；
// 用户/物品缺席不是错误，按已知的偏置部分降级预测。
func (m *MFModel) Predict(_ context.Context, userID, movieID int64) (float64, error) {
	if m == nil || (len(m.UserFactors) == 0 && len(m.ItemFactors) == 0 && m.GlobalMean == 0) {
		return 0, core.NewDomainError(core.ModuleModel, core.ErrorCodeMissingResource,
			"model: mf model not loaded")
	}

	est := m.GlobalMean
	if b, ok := m.UserBiases[userID]; ok {
		est += b
	}
	if b, ok := m.ItemBiases[movieID]; ok {
		est += b
	}

	pu, uok := m.UserFactors[userID]
	qi, iok := m.ItemFactors[movieID]
	if uok && iok && len(pu) == len(qi) {
		for i := range pu {
			est += pu[i] * qi[i]
		}
	}
	return est, nil
}

// mfArtifact 是离线训练任务导出的模型工件格式（key 为十进制 id 字符串）。
type mfArtifact struct {
	GlobalMean  float64              `json:"global_mean"`
	UserBiases  map[string]float64   `json:"user_biases"`
	ItemBiases  map[string]float64   `json:"item_biases"`
	UserFactors map[string][]float64 `json:"user_factors"`
	ItemFactors map[string][]float64 `json:"item_factors"`
}

// LoadMFFromJSON 从 JSON 工件文件加载矩阵分解模型。
func LoadMFFromJSON(path string) (*MFModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("model: read artifact: %w", err)
	}

	var art mfArtifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("model: parse artifact: %w", err)
	}

	m := &MFModel{
		GlobalMean:  art.GlobalMean,
		UserBiases:  make(map[int64]float64, len(art.UserBiases)),
		ItemBiases:  make(map[int64]float64, len(art.ItemBiases)),
		UserFactors: make(map[int64][]float64, len(art.UserFactors)),
		ItemFactors: make(map[int64][]float64, len(art.ItemFactors)),
	}
	for k, v := range art.UserBiases {
		id, err := parseID(k)
		if err != nil {
			return nil, err
		}
		m.UserBiases[id] = v
	}
	for k, v := range art.ItemBiases {
		id, err := parseID(k)
		if err != nil {
			return nil, err
		}
		m.ItemBiases[id] = v
	}
	for k, v := range art.UserFactors {
		id, err := parseID(k)
		if err != nil {
			return nil, err
		}
		m.UserFactors[id] = v
	}
	for k, v := range art.ItemFactors {
		id, err := parseID(k)
		if err != nil {
			return nil, err
		}
		m.ItemFactors[id] = v
	}
	return m, nil
}

func parseID(s string) (int64, error) {
	var id int64
	if _, err := fmt.Sscanf(s, "%d", &id); err != nil {
		return 0, fmt.Errorf("model: invalid id %q in artifact: %w", s, err)
	}
	return id, nil
}

var _ core.RatingPredictor = (*MFModel)(nil)
