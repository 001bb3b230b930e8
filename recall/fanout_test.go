package recall

import (
	"context"
	"errors"
	"testing"

	"github.com/cinekit/cinekit/core"
	"github.com/cinekit/cinekit/pkg/utils"
)

type stubSource struct {
	name  string
	items []*core.Item
	err   error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Recall(_ context.Context, _ *core.RecommendContext) ([]*core.Item, error) {
	return s.items, s.err
}

func itemWithFeature(id int64, key string, value float64, source string) *core.Item {
	it := core.NewItem(id)
	it.Features[key] = value
	it.PutLabel("recall_source", utils.Label{Value: source, Source: "recall"})
	return it
}

func TestFanoutMergesBySourceOrder(t *testing.T) {
	a := itemWithFeature(1, core.FeaturePredictedRating, 4.2, "cf")
	b := itemWithFeature(2, core.FeaturePredictedRating, 3.1, "cf")
	c := core.NewItem(3)
	c.PutLabel("recall_source", utils.Label{Value: "similar", Source: "recall"})

	fanout := &Fanout{Sources: []Source{
		&stubSource{name: "first", items: []*core.Item{a, b}},
		&stubSource{name: "second", items: []*core.Item{c}},
	}}
	rctx := &core.RecommendContext{Diag: core.NewDiagnostics()}

	out, err := fanout.Process(context.Background(), rctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 3 {
		t.Fatalf("len(out) = %d, want 3", len(out))
	}
	for i, wantID := range []int64{1, 2, 3} {
		if out[i].ID != wantID {
			t.Errorf("out[%d].ID = %d, want %d", i, out[i].ID, wantID)
		}
	}
}

func TestFanoutDuplicateKeepsFeaturesAndMergesLabels(t *testing.T) {
	// 同一部电影既在协同过滤召回又在相似召回：
	// 预测评分必须保留，召回来源标签累积
	cf := itemWithFeature(1, core.FeaturePredictedRating, 4.2, "cf")
	similar := core.NewItem(1)
	similar.PutLabel("recall_source", utils.Label{Value: "similar", Source: "recall"})

	fanout := &Fanout{Sources: []Source{
		&stubSource{name: "cf", items: []*core.Item{cf}},
		&stubSource{name: "similar", items: []*core.Item{similar}},
	}}
	rctx := &core.RecommendContext{Diag: core.NewDiagnostics()}

	out, err := fanout.Process(context.Background(), rctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}

	if pred, ok := out[0].PredictedRating(); !ok || pred != 4.2 {
		t.Errorf("predicted rating = (%v, %v), want (4.2, true)", pred, ok)
	}
	lbl := out[0].Labels["recall_source"]
	if lbl.Value != "cf|similar" {
		t.Errorf("recall_source label = %q, want %q", lbl.Value, "cf|similar")
	}
}

func TestFanoutToleratesFailingSource(t *testing.T) {
	ok := itemWithFeature(1, core.FeaturePredictedRating, 4.2, "cf")
	fanout := &Fanout{Sources: []Source{
		&stubSource{name: "broken", err: errors.New("backend down")},
		&stubSource{name: "cf", items: []*core.Item{ok}},
	}}
	rctx := &core.RecommendContext{Diag: core.NewDiagnostics()}

	out, err := fanout.Process(context.Background(), rctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].ID != 1 {
		t.Errorf("out = %+v, want only the healthy source's item", out)
	}
}

func TestFanoutNoSources(t *testing.T) {
	fanout := &Fanout{}
	out, err := fanout.Process(context.Background(), &core.RecommendContext{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Errorf("out = %+v, want empty", out)
	}
}
