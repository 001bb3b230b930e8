package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/cinekit/cinekit/core"
)

// Redis 键布局：
//
//	{prefix}:movie:{id}   HASH   电影元数据
//	{prefix}:movies       SET    目录全部电影 id
//	{prefix}:ratings:{id} LIST   某用户评分（JSON 行，RPUSH 追加）
//
// 共享部署形态：多个推荐进程读同一份目录/评分；append-only 由
// RPUSH 的单 key 串行化保证，快照由 LRANGE 0 -1 的单命令原子性保证。

const defaultKeyPrefix = "cinekit"

// RedisCatalog 是 Redis 实现的电影目录。
type RedisCatalog struct {
	client *redis.Client
	prefix string
}

func NewRedisCatalog(client *redis.Client, prefix string) *RedisCatalog {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisCatalog{client: client, prefix: prefix}
}

func (c *RedisCatalog) Name() string { return "catalog.redis" }

func (c *RedisCatalog) movieKey(id int64) string {
	return fmt.Sprintf("%s:movie:%d", c.prefix, id)
}

func (c *RedisCatalog) idsKey() string {
	return c.prefix + ":movies"
}

func (c *RedisCatalog) GetMovie(ctx context.Context, movieID int64) (*core.Movie, error) {
	fields, err := c.client.HGetAll(ctx, c.movieKey(movieID)).Result()
	if err != nil {
		return nil, fmt.Errorf("catalog: redis hgetall: %w", err)
	}
	if len(fields) == 0 {
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeUnknownEntity,
			"catalog: movie not found")
	}

	m := &core.Movie{
		ID:       movieID,
		Title:    fields["title"],
		Synopsis: fields["synopsis"],
		Genres:   splitMulti(fields["genres"]),
		Director: fields["director"],
		Cast:     splitMulti(fields["cast"]),
	}
	m.Duration, _ = strconv.Atoi(fields["duration"])
	m.Year, _ = strconv.Atoi(fields["year"])
	return m, nil
}

func (c *RedisCatalog) AllIDs(ctx context.Context) ([]int64, error) {
	members, err := c.client.SMembers(ctx, c.idsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("catalog: redis smembers: %w", err)
	}
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// PutMovie 写入/覆盖一条电影记录（目录同步任务使用，不在推荐读路径上）。
func (c *RedisCatalog) PutMovie(ctx context.Context, m core.Movie) error {
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, c.movieKey(m.ID), map[string]any{
		"title":    m.Title,
		"synopsis": m.Synopsis,
		"genres":   strings.Join(m.Genres, "|"),
		"duration": strconv.Itoa(m.Duration),
		"director": m.Director,
		"cast":     strings.Join(m.Cast, "|"),
		"year":     strconv.Itoa(m.Year),
	})
	pipe.SAdd(ctx, c.idsKey(), strconv.FormatInt(m.ID, 10))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("catalog: redis put movie: %w", err)
	}
	return nil
}

// RedisRatingStore 是 Redis 实现的评分存储，每用户一个 LIST，RPUSH 追加。
type RedisRatingStore struct {
	client *redis.Client
	prefix string
}

func NewRedisRatingStore(client *redis.Client, prefix string) *RedisRatingStore {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisRatingStore{client: client, prefix: prefix}
}

func (s *RedisRatingStore) Name() string { return "ratings.redis" }

func (s *RedisRatingStore) userKey(userID int64) string {
	return fmt.Sprintf("%s:ratings:%d", s.prefix, userID)
}

type ratingRow struct {
	MovieID   int64   `json:"movie_id"`
	Value     float64 `json:"value"`
	Timestamp int64   `json:"ts"`
}

func (s *RedisRatingStore) RatingsForUser(ctx context.Context, userID int64) ([]core.Rating, error) {
	rows, err := s.client.LRange(ctx, s.userKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("ratings: redis lrange: %w", err)
	}

	out := make([]core.Rating, 0, len(rows))
	for _, raw := range rows {
		var row ratingRow
		if err := json.Unmarshal([]byte(raw), &row); err != nil {
			// 历史脏行不阻塞快照
			continue
		}
		out = append(out, core.Rating{
			UserID:    userID,
			MovieID:   row.MovieID,
			Value:     row.Value,
			Timestamp: row.Timestamp,
		})
	}
	return out, nil
}

func (s *RedisRatingStore) RecordRating(ctx context.Context, r core.Rating) error {
	if r.Value < 0.5 || r.Value > 5.0 {
		return core.NewDomainError(core.ModuleRatings, core.ErrorCodeInvalidInput,
			"ratings: value out of [0.5, 5.0]")
	}

	raw, err := json.Marshal(ratingRow{MovieID: r.MovieID, Value: r.Value, Timestamp: r.Timestamp})
	if err != nil {
		return fmt.Errorf("ratings: marshal row: %w", err)
	}
	if err := s.client.RPush(ctx, s.userKey(r.UserID), raw).Err(); err != nil {
		return fmt.Errorf("ratings: redis rpush: %w", err)
	}
	return nil
}

func (s *RedisRatingStore) DeleteUser(ctx context.Context, userID int64) error {
	if err := s.client.Del(ctx, s.userKey(userID)).Err(); err != nil {
		return fmt.Errorf("ratings: redis del: %w", err)
	}
	return nil
}

var (
	_ core.Catalog     = (*RedisCatalog)(nil)
	_ core.RatingStore = (*RedisRatingStore)(nil)
)
