// Package similarity 实现基于潜在特征矩阵的内容相似检索。
//
// 矩阵由离线任务产出：对拼接加权后的文本字段（简介 3x、类型 2x、导演/演员 1x，
// 过滤停用词）做 TF-IDF 向量化，再经降维得到每部电影一行的稠密潜在向量。
// 在线侧只做一件事：种子向量 × 全量矩阵的余弦相似度。
package similarity

import (
	"context"
	"math"
	"sort"

	"github.com/cinekit/cinekit/core"
)

// Index 是内容相似索引（Content-Similarity Index）。
//
// 核心思想："文本/元数据相近的电影，内容相似"
//
// 不变量：
//   - 行号 ↔ 电影 id 双向一一映射；目录中出现重复 id 时只保留首个（有损，接受）
//   - 构建后完全不可变，跨并发请求共享只读，不需要锁
//
// 工程特征：
//   - 每次调用都对全量矩阵现算余弦（刻意无缓存：(种子, 矩阵) 的纯函数）
//   - 相似度相同的电影按矩阵行序稳定排序
type Index struct {
	rows    [][]float64 // L2 归一化后的潜在向量，一行一部电影
	idByRow []int64
	rowByID map[int64]int
}

// NewIndex 由 (id 列表, 潜在矩阵) 构建索引。
// ids 与 matrix 按下标一一对应；重复 id 只保留首个出现的行。
func NewIndex(ids []int64, matrix [][]float64) (*Index, error) {
	if len(ids) != len(matrix) {
		return nil, core.NewDomainError(core.ModuleSimilarity, core.ErrorCodeInvalidInput,
			"similarity: ids and matrix length mismatch")
	}

	idx := &Index{
		rows:    make([][]float64, 0, len(ids)),
		idByRow: make([]int64, 0, len(ids)),
		rowByID: make(map[int64]int, len(ids)),
	}

	for i, id := range ids {
		if _, dup := idx.rowByID[id]; dup {
			continue // 首个出现的映射胜出
		}
		idx.rowByID[id] = len(idx.rows)
		idx.idByRow = append(idx.idByRow, id)
		idx.rows = append(idx.rows, normalize(matrix[i]))
	}

	return idx, nil
}

func (idx *Index) Name() string { return "similarity.latent" }

// Len 返回索引中的电影数。
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.rows)
}

// SimilarItems 返回与 seedID 内容最相似的 topN 部电影 id，按相似度降序。
// 种子自身（恒为第一名）被剔除；种子不在索引中或索引为空时返回空列表，
// 绝不向调用方抛错。
func (idx *Index) SimilarItems(_ context.Context, seedID int64, topN int) ([]int64, error) {
	if idx == nil || len(idx.rows) == 0 || topN <= 0 {
		return nil, nil
	}

	seedRow, ok := idx.rowByID[seedID]
	if !ok {
		return nil, nil
	}
	seed := idx.rows[seedRow]

	type scoredRow struct {
		row   int
		score float64
	}
	scores := make([]scoredRow, 0, len(idx.rows))
	for row, vec := range idx.rows {
		scores = append(scores, scoredRow{row: row, score: dot(seed, vec)})
	}

	// 稳定排序：相似度并列时保持矩阵行序
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	out := make([]int64, 0, topN)
	for _, s := range scores {
		if s.row == seedRow {
			continue
		}
		out = append(out, idx.idByRow[s.row])
		if len(out) == topN {
			break
		}
	}
	return out, nil
}

// normalize 返回 v 的 L2 归一化副本；零向量原样返回（与任何向量相似度为 0）。
func normalize(v []float64) []float64 {
	var norm float64
	for _, x := range v {
		norm += x * x
	}
	out := make([]float64, len(v))
	if norm == 0 {
		return out
	}
	norm = math.Sqrt(norm)
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

// dot 计算两个向量的点积（两侧均已 L2 归一化，即余弦相似度）。
func dot(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

var _ core.SimilarityIndex = (*Index)(nil)
