package core

import "context"

// FeatureService 是电影特征服务的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（feast 等）实现
//   - 遵循依赖倒置原则：领域层定义接口，基础设施层实现接口
//
// 使用场景：
//   - 目录数据不全时，由特征存储补齐片长/标题/类型（feature.Enrich 节点）
//   - 共享部署下电影元数据放在 Feature Store 而非本地 CSV
//
// 实现：
//   - feast.GrpcClient 实现此接口
type FeatureService interface {
	// Name 返回特征服务名称（用于诊断）
	Name() string

	// GetMovieFeatures 获取单部电影的特征
	GetMovieFeatures(ctx context.Context, movieID int64) (map[string]any, error)

	// BatchGetMovieFeatures 批量获取电影特征（推荐使用，减少网络往返）
	BatchGetMovieFeatures(ctx context.Context, movieIDs []int64) (map[int64]map[string]any, error)

	// Close 关闭特征服务，释放资源
	Close() error
}
