package core

import "context"

// Catalog 是电影目录的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store）实现
//   - 目录在进程启动时加载一次，对推荐链路只读，读路径不需要锁
//   - 每个 id 至多映射一条记录，由实现方保证
//
// 实现：
//   - store.MemoryCatalog 实现此接口（内存 + CSV 加载）
//   - store.RedisCatalog 实现此接口（共享部署）
type Catalog interface {
	// Name 返回目录后端名称（用于诊断）
	Name() string

	// GetMovie 按 id 查找电影；不存在时返回 UNKNOWN_ENTITY 级错误
	GetMovie(ctx context.Context, movieID int64) (*Movie, error)

	// AllIDs 返回目录中全部电影 id（顺序不保证，调用方自行排序保证确定性）
	AllIDs(ctx context.Context) ([]int64, error)
}

// RatingStore 是用户评分的领域接口。
//
// 写路径 append-only：RecordRating 只追加、从不改写历史行；
// 读路径 RatingsForUser 返回请求时刻的快照，容忍极近期写入的最终可见。
// 同一 (userId, movieId) 可能出现多条记录，快照消费方按 last-write-wins 归并。
type RatingStore interface {
	// Name 返回存储后端名称（用于诊断）
	Name() string

	// RatingsForUser 返回某用户的全部评分，按写入顺序排列。
	// 用户不存在时返回空切片，而不是错误："还没有评分"是预期状态。
	RatingsForUser(ctx context.Context, userID int64) ([]Rating, error)

	// RecordRating 追加一条评分记录（append-only）。
	RecordRating(ctx context.Context, r Rating) error

	// DeleteUser 删除某用户的全部评分（账号删除路径，唯一的整段删除操作）。
	DeleteUser(ctx context.Context, userID int64) error
}

// RatingPredictor 是协同过滤评分预测的领域接口，包装离线训练好的不透明模型。
//
// 约定：
//   - 只对用户未看过的电影发起预测
//   - 预测值不保证落在 [1,5]，下游必须校验后再用
//   - 单条预测失败绝不应导致整个批次失败（调用方逐项捕获）
//
// 实现：
//   - model.MFModel（本地矩阵分解模型，离线网格搜索训练产物）
//   - model.RPCModel（远程打分服务）
type RatingPredictor interface {
	// Name 返回模型名称（用于诊断）
	Name() string

	// Predict 预测 (userID, movieID) 的评分
	Predict(ctx context.Context, userID, movieID int64) (float64, error)
}

// SimilarityIndex 是内容相似检索的领域接口，包装离线产出的潜在特征矩阵。
//
// 约定：
//   - 返回按相似度降序的电影 id，不含种子自身，长度 ≤ topN
//   - 种子不在索引中或索引未加载时返回空列表，绝不向上抛错
//
// 实现：
//   - similarity.Index（潜在矩阵 + 全量余弦计算）
type SimilarityIndex interface {
	// Name 返回索引名称（用于诊断）
	Name() string

	// SimilarItems 返回与 seedID 内容最相似的 topN 部电影
	SimilarItems(ctx context.Context, seedID int64, topN int) ([]int64, error)
}

// PriorityScorer 是模糊优先级打分的领域接口。
//
// 约定：
//   - Score 是纯函数，单次评估不共享可变状态，可安全并发调用
//   - 输入落在定义域未覆盖的子区间时可能无规则激活，返回错误；
//     调用方应将其视为优先级 0，而不是致命错误
//
// 实现：
//   - fuzzy.Engine
type PriorityScorer interface {
	// Score 计算 (预测评分, 可用分钟数) → 优先级 [0,100]
	Score(predictedRating, availableMinutes float64) (float64, error)

	// RatingDomain 返回评分输入的定义域 [lo, hi]，Rank 阶段用于前置校验
	RatingDomain() (lo, hi float64)
}
