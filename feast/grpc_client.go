package feast

import (
	"context"
	"fmt"

	feastsdk "github.com/feast-dev/feast/sdk/go"
	feasttypes "github.com/feast-dev/feast/sdk/go/protos/feast/types"

	"github.com/cinekit/cinekit/core"
	"github.com/cinekit/cinekit/feature"
)

// GrpcClient 是基于官方 Feast Go SDK 的特征服务实现（实现 core.FeatureService）。
//
// 设计原则（DDD）：
//   - 领域层：core.FeatureService 接口保持不变
//   - 基础设施层：GrpcClient 实现该接口
//
// 工程特征：
//   - 实时性：优秀（gRPC 低延迟、连接复用）
//   - 批量：BatchGetMovieFeatures 单次 RPC 携带全部实体行
//
// 使用场景：
//   - feature.Enrich 节点在时间过滤前补齐候选片长/标题
type GrpcClient struct {
	client   *feastsdk.GrpcClient
	project  string
	features []string
}

// NewGrpcClient 创建一个 Feast gRPC 特征服务客户端。
func NewGrpcClient(host string, port int, project string, opts ...Option) (*GrpcClient, error) {
	if port == 0 {
		port = defaultPort
	}

	config := &Config{
		Host:    host,
		Port:    port,
		Project: project,
		Timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(config)
	}
	if len(config.Features) == 0 {
		config.Features = []string{
			feature.FeatureDuration,
			feature.FeatureTitle,
			feature.FeatureGenres,
		}
	}

	var client *feastsdk.GrpcClient
	var err error
	if config.StaticToken != "" {
		security := feastsdk.SecurityConfig{
			EnableTLS:  false,
			Credential: feastsdk.NewStaticCredential(config.StaticToken),
		}
		client, err = feastsdk.NewSecureGrpcClient(host, port, security)
	} else {
		client, err = feastsdk.NewGrpcClient(host, port)
	}
	if err != nil {
		return nil, fmt.Errorf("feast: create grpc client: %w", err)
	}

	return &GrpcClient{
		client:   client,
		project:  project,
		features: config.Features,
	}, nil
}

func (c *GrpcClient) Name() string { return "feature.feast-grpc" }

// GetMovieFeatures 获取单部电影的特征。
func (c *GrpcClient) GetMovieFeatures(ctx context.Context, movieID int64) (map[string]any, error) {
	batch, err := c.BatchGetMovieFeatures(ctx, []int64{movieID})
	if err != nil {
		return nil, err
	}
	if fv, ok := batch[movieID]; ok {
		return fv, nil
	}
	return map[string]any{}, nil
}

// BatchGetMovieFeatures 批量获取电影特征，单次 RPC 携带全部实体行。
// 返回 map 只包含有响应行的电影；未命中的电影缺席，调用方走目录兜底。
func (c *GrpcClient) BatchGetMovieFeatures(ctx context.Context, movieIDs []int64) (map[int64]map[string]any, error) {
	if len(movieIDs) == 0 {
		return map[int64]map[string]any{}, nil
	}

	entityRows := make([]feastsdk.Row, len(movieIDs))
	for i, id := range movieIDs {
		entityRows[i] = feastsdk.Row{EntityMovieID: feastsdk.Int64Val(id)}
	}

	resp, err := c.client.GetOnlineFeatures(ctx, &feastsdk.OnlineFeaturesRequest{
		Features: c.features,
		Entities: entityRows,
		Project:  c.project,
	})
	if err != nil {
		return nil, fmt.Errorf("feast: get online features: %w", err)
	}

	rows := resp.Rows()
	if len(rows) != len(movieIDs) {
		return nil, fmt.Errorf("feast: response row count mismatch: expected %d, got %d",
			len(movieIDs), len(rows))
	}

	out := make(map[int64]map[string]any, len(movieIDs))
	for i, row := range rows {
		values := make(map[string]any, len(c.features))
		for _, name := range c.features {
			if val, exists := row[name]; exists {
				if v := decodeValue(val); v != nil {
					values[name] = v
				}
			}
		}
		out[movieIDs[i]] = values
	}
	return out, nil
}

// Close 关闭客户端连接。
// SDK 的 gRPC 连接由 grpc 库托管，没有显式的关闭方法。
func (c *GrpcClient) Close() error {
	c.client = nil
	return nil
}

// decodeValue 将 Feast protobuf Value 解包为 Go 原生类型。
func decodeValue(val *feasttypes.Value) any {
	if val == nil {
		return nil
	}
	switch v := val.GetVal().(type) {
	case *feasttypes.Value_StringVal:
		return v.StringVal
	case *feasttypes.Value_Int32Val:
		return int64(v.Int32Val)
	case *feasttypes.Value_Int64Val:
		return v.Int64Val
	case *feasttypes.Value_FloatVal:
		return float64(v.FloatVal)
	case *feasttypes.Value_DoubleVal:
		return v.DoubleVal
	case *feasttypes.Value_BoolVal:
		return v.BoolVal
	case *feasttypes.Value_BytesVal:
		return string(v.BytesVal)
	default:
		return nil
	}
}

var _ core.FeatureService = (*GrpcClient)(nil)
