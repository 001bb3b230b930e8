package rank

import (
	"context"
	"errors"
	"testing"

	"github.com/cinekit/cinekit/core"
)

// stubScorer 返回 预测评分*10 作为优先级；评分为 2.0 时模拟无规则激活。
type stubScorer struct{}

func (s *stubScorer) Score(predictedRating, _ float64) (float64, error) {
	if predictedRating == 2.0 {
		return 0, errors.New("no rule activated")
	}
	return predictedRating * 10, nil
}

func (s *stubScorer) RatingDomain() (float64, float64) { return 1, 5 }

func itemWithPrediction(id int64, rating float64) *core.Item {
	it := core.NewItem(id)
	it.Features[core.FeaturePredictedRating] = rating
	return it
}

func TestFuzzyNodeProcess(t *testing.T) {
	node := &FuzzyNode{Scorer: &stubScorer{}}
	rctx := &core.RecommendContext{AvailableMinutes: 90, Diag: core.NewDiagnostics()}

	items := []*core.Item{
		itemWithPrediction(1, 3.0), // 30 分
		core.NewItem(2),            // 无预测评分 → 丢弃
		itemWithPrediction(3, 4.5), // 45 分
		itemWithPrediction(4, 6.0), // 定义域外 → 丢弃
		itemWithPrediction(5, 2.0), // 打分失败 → 0 分保留
	}

	out, err := node.Process(context.Background(), rctx, items)
	if err != nil {
		t.Fatal(err)
	}

	wantOrder := []int64{3, 1, 5}
	if len(out) != len(wantOrder) {
		t.Fatalf("len(out) = %d, want %d", len(out), len(wantOrder))
	}
	for i, wantID := range wantOrder {
		if out[i].ID != wantID {
			t.Errorf("out[%d].ID = %d, want %d", i, out[i].ID, wantID)
		}
	}
	if out[2].Score != 0 {
		t.Errorf("failed scoring kept with Score = %v, want 0", out[2].Score)
	}

	if got := rctx.Diag.Skipped(core.SkipNoPrediction); got != 1 {
		t.Errorf("no_prediction = %d, want 1", got)
	}
	if got := rctx.Diag.Skipped(core.SkipOutOfRange); got != 1 {
		t.Errorf("out_of_range = %d, want 1", got)
	}
	if got := rctx.Diag.Skipped(core.SkipScoringFailed); got != 1 {
		t.Errorf("scoring_failed = %d, want 1", got)
	}
	if rctx.Diag.Passed != 3 {
		t.Errorf("passed = %d, want 3", rctx.Diag.Passed)
	}
}

func TestFuzzyNodeTimeGuard(t *testing.T) {
	node := &FuzzyNode{Scorer: &stubScorer{}}
	// 可用时长超出守卫区间 [0, 200]：候选静默跳过
	rctx := &core.RecommendContext{AvailableMinutes: 500, Diag: core.NewDiagnostics()}

	out, err := node.Process(context.Background(), rctx, []*core.Item{itemWithPrediction(1, 3.0)})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Errorf("out = %+v, want empty", out)
	}
	if got := rctx.Diag.Skipped(core.SkipOutOfRange); got != 1 {
		t.Errorf("out_of_range = %d, want 1", got)
	}
}

func TestFuzzyNodeStableOnTies(t *testing.T) {
	node := &FuzzyNode{Scorer: &stubScorer{}}
	rctx := &core.RecommendContext{AvailableMinutes: 90, Diag: core.NewDiagnostics()}

	// 同分候选保持先见顺序
	items := []*core.Item{
		itemWithPrediction(10, 3.0),
		itemWithPrediction(20, 3.0),
		itemWithPrediction(30, 3.0),
	}
	out, err := node.Process(context.Background(), rctx, items)
	if err != nil {
		t.Fatal(err)
	}
	for i, wantID := range []int64{10, 20, 30} {
		if out[i].ID != wantID {
			t.Errorf("out[%d].ID = %d, want %d", i, out[i].ID, wantID)
		}
	}
}
