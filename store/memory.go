// Package store 实现目录与评分的存储后端。
//
// 读写模型：目录加载后只读；评分是唯一的变更路径 —— 写入按底层存储串行化
// （append-only 追加），读取返回请求时刻的快照，不阻塞并发的推荐读。
package store

import (
	"context"
	"sync"

	"github.com/cinekit/cinekit/core"
)

// MemoryCatalog 是内存实现的电影目录，用于测试/开发/单机部署。
// 进程启动时加载一次（通常来自 CSV），之后只读，读路径无锁。
type MemoryCatalog struct {
	movies map[int64]*core.Movie
	ids    []int64
}

// NewMemoryCatalog 由电影列表构建目录。
// 重复 id 只保留首个出现的记录（每个 id 至多一条记录的约定）。
func NewMemoryCatalog(movies []core.Movie) *MemoryCatalog {
	c := &MemoryCatalog{
		movies: make(map[int64]*core.Movie, len(movies)),
		ids:    make([]int64, 0, len(movies)),
	}
	for i := range movies {
		m := movies[i]
		if _, dup := c.movies[m.ID]; dup {
			continue
		}
		c.movies[m.ID] = &m
		c.ids = append(c.ids, m.ID)
	}
	return c
}

func (c *MemoryCatalog) Name() string { return "catalog.memory" }

func (c *MemoryCatalog) GetMovie(_ context.Context, movieID int64) (*core.Movie, error) {
	m, ok := c.movies[movieID]
	if !ok {
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeUnknownEntity,
			"catalog: movie not found")
	}
	return m, nil
}

func (c *MemoryCatalog) AllIDs(_ context.Context) ([]int64, error) {
	out := make([]int64, len(c.ids))
	copy(out, c.ids)
	return out, nil
}

// MemoryRatingStore 是内存实现的评分存储。
//
// append-only：RecordRating 只追加，历史行从不改写；同一 (userId, movieId)
// 允许累积多条记录，快照消费方按 last-write-wins 归并。
// 写入由互斥锁串行化；读取复制出快照，不持锁消费。
type MemoryRatingStore struct {
	mu     sync.RWMutex
	byUser map[int64][]core.Rating
}

func NewMemoryRatingStore() *MemoryRatingStore {
	return &MemoryRatingStore{byUser: make(map[int64][]core.Rating)}
}

func (s *MemoryRatingStore) Name() string { return "ratings.memory" }

// RatingsForUser 返回某用户全部评分的快照，按写入顺序排列。
// 用户不存在时返回空切片："还没有评分"是预期状态，不是错误。
func (s *MemoryRatingStore) RatingsForUser(_ context.Context, userID int64) ([]core.Rating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.byUser[userID]
	out := make([]core.Rating, len(rows))
	copy(out, rows)
	return out, nil
}

// RecordRating 追加一条评分记录。分值必须落在 [0.5, 5.0]。
func (s *MemoryRatingStore) RecordRating(_ context.Context, r core.Rating) error {
	if r.Value < 0.5 || r.Value > 5.0 {
		return core.NewDomainError(core.ModuleRatings, core.ErrorCodeInvalidInput,
			"ratings: value out of [0.5, 5.0]")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byUser[r.UserID] = append(s.byUser[r.UserID], r)
	return nil
}

// DeleteUser 删除某用户的全部评分（账号删除路径）。
func (s *MemoryRatingStore) DeleteUser(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byUser, userID)
	return nil
}

var (
	_ core.Catalog     = (*MemoryCatalog)(nil)
	_ core.RatingStore = (*MemoryRatingStore)(nil)
)
