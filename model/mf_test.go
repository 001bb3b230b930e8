package model

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/cinekit/cinekit/core"
)

func testModel() *MFModel {
	return &MFModel{
		GlobalMean: 3.5,
		UserBiases: map[int64]float64{7: 0.2},
		ItemBiases: map[int64]float64{1: 0.3},
		UserFactors: map[int64][]float64{
			7: {0.5, -0.5},
		},
		ItemFactors: map[int64][]float64{
			1: {1.0, 0.5},
		},
	}
}

func TestMFModelPredict(t *testing.T) {
	m := testModel()
	ctx := context.Background()

	tests := []struct {
		name    string
		userID  int64
		movieID int64
		want    float64
	}{
		// 全项：3.5 + 0.2 + 0.3 + (0.5*1.0 - 0.5*0.5)
		{"full terms", 7, 1, 4.25},
		// 物品缺席：退化为 均值 + 用户偏置
		{"unknown movie", 7, 99, 3.7},
		// 用户缺席：退化为 均值 + 物品偏置
		{"unknown user", 42, 1, 3.8},
		// 双方缺席：全局均值兜底
		{"both unknown", 42, 99, 3.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Predict(ctx, tt.userID, tt.movieID)
			if err != nil {
				t.Fatalf("Predict error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Predict(%d, %d) = %v, want %v", tt.userID, tt.movieID, got, tt.want)
			}
		})
	}
}

func TestMFModelPredictUnloaded(t *testing.T) {
	m := &MFModel{}
	_, err := m.Predict(context.Background(), 7, 1)
	if !core.IsMissingResource(err) {
		t.Errorf("unloaded model error = %v, want MISSING_RESOURCE", err)
	}
}

func TestLoadMFFromJSON(t *testing.T) {
	const artifact = `{
		"global_mean": 3.5,
		"user_biases": {"7": 0.2},
		"item_biases": {"1": 0.3},
		"user_factors": {"7": [0.5, -0.5]},
		"item_factors": {"1": [1.0, 0.5]}
	}`
	path := filepath.Join(t.TempDir(), "mf.json")
	if err := os.WriteFile(path, []byte(artifact), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadMFFromJSON(path)
	if err != nil {
		t.Fatal(err)
	}
	got, err := m.Predict(context.Background(), 7, 1)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-4.25) > 1e-9 {
		t.Errorf("Predict = %v, want 4.25", got)
	}
}

func TestLoadMFFromJSONBadID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mf.json")
	if err := os.WriteFile(path, []byte(`{"user_biases": {"abc": 0.2}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadMFFromJSON(path); err == nil {
		t.Error("artifact with non-numeric id: want error")
	}
}
