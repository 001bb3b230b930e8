package core

// Movie 是电影目录的只读参考数据，进程启动时加载一次，会话期间不可变。
type Movie struct {
	ID       int64
	Title    string
	Synopsis string
	Genres   []string
	Director string
	Cast     []string

	// Duration 片长（分钟）。0 表示未知，时间过滤阶段会将其丢弃。
	Duration int

	// Year 上映年份。0 表示未知。
	Year int
}

// Rating 是一条用户评分记录。底层存储是 append-only 日志：
// 同一 (userId, movieId) 允许多条记录，快照构建时按 last-write-wins 归并。
type Rating struct {
	UserID    int64
	MovieID   int64
	Value     float64 // [0.5, 5.0]
	Timestamp int64   // Unix 秒
}

// Recommendation 是推荐结果的最终形态，按 Priority 降序排列。
type Recommendation struct {
	MovieID         int64
	Title           string
	Priority        float64 // 模糊推理优先级 [0,100]
	PredictedRating float64 // 协同过滤预测评分
	Duration        int     // 片长（分钟）
}
