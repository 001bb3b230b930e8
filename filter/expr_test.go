package filter

import (
	"context"
	"testing"

	"github.com/cinekit/cinekit/core"
	"github.com/cinekit/cinekit/pkg/utils"
)

func TestExprShouldFilter(t *testing.T) {
	f, err := NewExpr(`label.recall_source == "similar" && item.features.predicted_rating < 2.0`)
	if err != nil {
		t.Fatal(err)
	}
	rctx := &core.RecommendContext{Diag: core.NewDiagnostics()}

	hit := core.NewItem(1)
	hit.Features[core.FeaturePredictedRating] = 1.5
	hit.PutLabel("recall_source", utils.Label{Value: "similar", Source: "recall"})

	reason, err := f.ShouldFilter(context.Background(), rctx, hit)
	if err != nil || reason != core.SkipExpr {
		t.Errorf("matching item: (%q, %v), want (%q, nil)", reason, err, core.SkipExpr)
	}

	miss := core.NewItem(2)
	miss.Features[core.FeaturePredictedRating] = 4.5
	miss.PutLabel("recall_source", utils.Label{Value: "similar", Source: "recall"})

	reason, err = f.ShouldFilter(context.Background(), rctx, miss)
	if err != nil || reason != "" {
		t.Errorf("non-matching item: (%q, %v), want pass", reason, err)
	}
}

func TestExprFailOpenOnEvalError(t *testing.T) {
	// 表达式引用不存在的特征键：求值失败，咨询性过滤器按未命中放行
	f, err := NewExpr("item.features.freshness > 0.5")
	if err != nil {
		t.Fatal(err)
	}
	rctx := &core.RecommendContext{Diag: core.NewDiagnostics()}

	reason, err := f.ShouldFilter(context.Background(), rctx, core.NewItem(1))
	if err != nil {
		t.Fatalf("eval failure must not surface as error: %v", err)
	}
	if reason != "" {
		t.Errorf("reason = %q, want pass (fail-open)", reason)
	}
}

func TestNewExprCompileError(t *testing.T) {
	if _, err := NewExpr("item.score >"); err == nil {
		t.Error("syntax error: want compile error")
	}
}
