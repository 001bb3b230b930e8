package engine

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/cinekit/cinekit/core"
	"github.com/cinekit/cinekit/fuzzy"
	"github.com/cinekit/cinekit/similarity"
	"github.com/cinekit/cinekit/store"
)

// stubPredictor 按固定表返回预测评分，表外的电影返回错误。
type stubPredictor struct {
	estimates map[int64]float64
}

func (p *stubPredictor) Name() string { return "model.stub" }

func (p *stubPredictor) Predict(_ context.Context, _, movieID int64) (float64, error) {
	if est, ok := p.estimates[movieID]; ok {
		return est, nil
	}
	return 0, errors.New("no estimate")
}

// 测试场景：
//   - 用户 7 评过 1（5.0，收藏种子）和 2（3.0）
//   - 可用时长 85 分钟
//   - 3（80min，预测 4.5）：入选，评分高 + 时间紧 → 高优先级
//   - 4（150min，预测 4.8）：片长超预算，丢弃
//   - 5（60min，预测 2.0）：入选，低优先级
//   - 6（80min，预测失败）：仅相似召回覆盖，无预测评分，排序阶段丢弃
//   - 8（85min，预测 3.0）：片长恰好等于预算，放行，中优先级
func newTestRecommender(t *testing.T) (*Recommender, *store.MemoryRatingStore) {
	t.Helper()

	catalog := store.NewMemoryCatalog([]core.Movie{
		{ID: 1, Title: "Seed Movie", Duration: 100},
		{ID: 2, Title: "Watched Too", Duration: 100},
		{ID: 3, Title: "Pick", Duration: 80},
		{ID: 4, Title: "Epic", Duration: 150},
		{ID: 5, Title: "Filler", Duration: 60},
		{ID: 6, Title: "Lookalike", Duration: 80},
		{ID: 8, Title: "Exact Fit", Duration: 85},
	})

	ratings := store.NewMemoryRatingStore()
	mustRecord(t, ratings, core.Rating{UserID: 7, MovieID: 1, Value: 5.0, Timestamp: 100})
	mustRecord(t, ratings, core.Rating{UserID: 7, MovieID: 2, Value: 3.0, Timestamp: 200})

	predictor := &stubPredictor{estimates: map[int64]float64{
		3: 4.5,
		4: 4.8,
		5: 2.0,
		8: 3.0,
	}}

	// 6 与种子 1 内容几乎同向，3 正交：similar(1) 只会带回 6
	index, err := similarity.NewIndex(
		[]int64{1, 6, 3},
		[][]float64{{1, 0}, {0.9, 0.1}, {0, 1}},
	)
	if err != nil {
		t.Fatal(err)
	}

	r := New(catalog, ratings, predictor, index, fuzzy.NewEngine(), Options{})
	return r, ratings
}

func mustRecord(t *testing.T, s *store.MemoryRatingStore, rec core.Rating) {
	t.Helper()
	if err := s.RecordRating(context.Background(), rec); err != nil {
		t.Fatal(err)
	}
}

func TestRecommend(t *testing.T) {
	r, _ := newTestRecommender(t)

	recs, diag, err := r.Recommend(context.Background(), 7, 85, 10)
	if err != nil {
		t.Fatalf("Recommend error: %v", err)
	}
	if diag.Reason != core.ReasonOK {
		t.Fatalf("diag.Reason = %q, want empty", diag.Reason)
	}

	wantOrder := []int64{3, 8, 5}
	if len(recs) != len(wantOrder) {
		t.Fatalf("len(recs) = %d, want %d: %+v", len(recs), len(wantOrder), recs)
	}
	for i, wantID := range wantOrder {
		if recs[i].MovieID != wantID {
			t.Errorf("recs[%d].MovieID = %d, want %d", i, recs[i].MovieID, wantID)
		}
	}

	// 优先级严格降序，且各自落在预期档位
	if !(recs[0].Priority > recs[1].Priority && recs[1].Priority > recs[2].Priority) {
		t.Errorf("priorities not descending: %v / %v / %v",
			recs[0].Priority, recs[1].Priority, recs[2].Priority)
	}
	if recs[0].Priority < 70 || recs[0].Priority > 92 {
		t.Errorf("recs[0].Priority = %v, want high band", recs[0].Priority)
	}
	if recs[1].Priority < 45 || recs[1].Priority > 62 {
		t.Errorf("recs[1].Priority = %v, want medium band", recs[1].Priority)
	}
	if recs[2].Priority < 5 || recs[2].Priority > 28 {
		t.Errorf("recs[2].Priority = %v, want low band", recs[2].Priority)
	}

	// 结果组装：标题与片长来自目录，预测评分来自召回特征
	if recs[0].Title != "Pick" || recs[0].Duration != 80 || recs[0].PredictedRating != 4.5 {
		t.Errorf("recs[0] = %+v", recs[0])
	}

	// 诊断计数：4 超预算、6 预测失败且无预测评分
	if got := diag.Skipped(core.SkipOverBudget); got != 1 {
		t.Errorf("over_budget = %d, want 1", got)
	}
	if got := diag.Skipped(core.SkipPredictionFailed); got != 1 {
		t.Errorf("prediction_failed = %d, want 1", got)
	}
	if got := diag.Skipped(core.SkipNoPrediction); got != 1 {
		t.Errorf("no_prediction = %d, want 1", got)
	}
	if diag.Passed != 3 {
		t.Errorf("passed = %d, want 3", diag.Passed)
	}
}

func TestRecommendRespectsTopN(t *testing.T) {
	r, _ := newTestRecommender(t)

	recs, _, err := r.Recommend(context.Background(), 7, 85, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].MovieID != 3 {
		t.Errorf("recs = %+v, want exactly [movie 3]", recs)
	}
}

func TestRecommendColdStartUser(t *testing.T) {
	r, _ := newTestRecommender(t)

	recs, diag, err := r.Recommend(context.Background(), 99, 85, 10)
	if err != nil {
		t.Fatalf("cold start user must not error: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("recs = %+v, want empty", recs)
	}
	if diag.Reason != core.ReasonUserNotFound {
		t.Errorf("diag.Reason = %q, want %q", diag.Reason, core.ReasonUserNotFound)
	}
}

func TestRecommendIdempotent(t *testing.T) {
	r, _ := newTestRecommender(t)
	ctx := context.Background()

	first, _, err := r.Recommend(ctx, 7, 85, 10)
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := r.Recommend(ctx, 7, 85, 10)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("same snapshot, different results:\n%+v\n%+v", first, second)
	}
}

func TestRecommendLastWriteWins(t *testing.T) {
	r, ratings := newTestRecommender(t)

	// 重评种子电影到 3.0：收藏集变空，相似召回不再带回 6
	mustRecord(t, ratings, core.Rating{UserID: 7, MovieID: 1, Value: 3.0, Timestamp: 300})

	recs, diag, err := r.Recommend(context.Background(), 7, 85, 10)
	if err != nil {
		t.Fatal(err)
	}
	if got := diag.Skipped(core.SkipNoPrediction); got != 0 {
		t.Errorf("no_prediction = %d, want 0 (movie 6 never recalled)", got)
	}
	wantOrder := []int64{3, 8, 5}
	if len(recs) != len(wantOrder) {
		t.Fatalf("len(recs) = %d, want %d", len(recs), len(wantOrder))
	}
	for i, wantID := range wantOrder {
		if recs[i].MovieID != wantID {
			t.Errorf("recs[%d].MovieID = %d, want %d", i, recs[i].MovieID, wantID)
		}
	}
}

func TestRecommendMissingDependencies(t *testing.T) {
	catalog := store.NewMemoryCatalog(nil)
	ratings := store.NewMemoryRatingStore()
	predictor := &stubPredictor{}
	scorer := fuzzy.NewEngine()

	tests := []struct {
		name       string
		r          *Recommender
		wantReason string
	}{
		{"nil catalog", New(nil, ratings, predictor, nil, scorer, Options{}), core.ReasonMissingCatalog},
		{"nil ratings", New(catalog, nil, predictor, nil, scorer, Options{}), core.ReasonMissingRatings},
		{"nil predictor", New(catalog, ratings, nil, nil, scorer, Options{}), core.ReasonMissingModel},
		{"nil scorer", New(catalog, ratings, predictor, nil, nil, Options{}), core.ReasonMissingScorer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, diag, err := tt.r.Recommend(context.Background(), 7, 85, 10)
			if err != nil {
				t.Fatalf("degraded request must not error: %v", err)
			}
			if len(recs) != 0 {
				t.Errorf("recs = %+v, want empty", recs)
			}
			if diag.Reason != tt.wantReason {
				t.Errorf("diag.Reason = %q, want %q", diag.Reason, tt.wantReason)
			}
		})
	}
}

func TestRecommendWithoutSimilarityIndex(t *testing.T) {
	// 相似索引未加载不整体降级：仅依赖协同过滤候选
	catalog := store.NewMemoryCatalog([]core.Movie{
		{ID: 1, Title: "Seen", Duration: 100},
		{ID: 3, Title: "Pick", Duration: 80},
	})
	ratings := store.NewMemoryRatingStore()
	mustRecord(t, ratings, core.Rating{UserID: 7, MovieID: 1, Value: 5.0})
	predictor := &stubPredictor{estimates: map[int64]float64{3: 4.5}}

	r := New(catalog, ratings, predictor, nil, fuzzy.NewEngine(), Options{})
	recs, diag, err := r.Recommend(context.Background(), 7, 85, 10)
	if err != nil {
		t.Fatal(err)
	}
	if diag.Reason != core.ReasonOK {
		t.Errorf("diag.Reason = %q, want empty", diag.Reason)
	}
	if len(recs) != 1 || recs[0].MovieID != 3 {
		t.Errorf("recs = %+v, want [movie 3]", recs)
	}
}
