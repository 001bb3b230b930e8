package similarity

import (
	"encoding/json"
	"fmt"
	"os"
)

// Artifact 是离线训练任务导出的模型工件格式。
// ids[i] 对应 matrix[i]，即第 i 行潜在向量所属的电影 id。
type Artifact struct {
	IDs    []int64     `json:"ids"`
	Matrix [][]float64 `json:"matrix"`
}

// LoadFromJSON 从 JSON 工件文件加载相似索引。
// 工件由离线任务（TF-IDF + 降维）产出，在线侧只读。
func LoadFromJSON(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("similarity: read artifact: %w", err)
	}

	var art Artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("similarity: parse artifact: %w", err)
	}

	return NewIndex(art.IDs, art.Matrix)
}
