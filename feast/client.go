// Package feast 基于官方 Feast Go SDK 实现电影元数据的特征服务。
//
// 目录数据不全时（采集任务落后于上新），片长/标题等元数据在 Feature Store
// 中更新更快，feature.Enrich 节点通过此客户端批量补齐候选。
package feast

import "time"

// 实体键与特征名约定（与 Feature Store 中注册的 movie_features 视图对应）。
const (
	EntityMovieID = "movie_id"

	defaultPort    = 6565
	defaultTimeout = 30 * time.Second
)

// Config 是 gRPC 客户端配置。
type Config struct {
	// Host Feast Feature Server 主机地址
	Host string

	// Port gRPC 端口，0 使用默认 6565
	Port int

	// Project 项目名称
	Project string

	// Features 拉取的特征名列表，空则使用 movie 视图默认特征
	Features []string

	// Timeout 单次请求超时
	Timeout time.Duration

	// StaticToken 静态 Token 认证，空则使用无认证连接
	StaticToken string
}

// Option 客户端配置选项
type Option func(*Config)

// WithFeatures 配置选项：指定拉取的特征名列表
func WithFeatures(features ...string) Option {
	return func(c *Config) {
		c.Features = features
	}
}

// WithTimeout 配置选项：设置单次请求超时
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithStaticToken 配置选项：设置静态 Token 认证
func WithStaticToken(token string) Option {
	return func(c *Config) {
		c.StaticToken = token
	}
}
