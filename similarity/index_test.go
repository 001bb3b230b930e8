package similarity

import (
	"context"
	"reflect"
	"testing"
)

func TestNewIndexLengthMismatch(t *testing.T) {
	if _, err := NewIndex([]int64{1, 2}, [][]float64{{1, 0}}); err == nil {
		t.Error("NewIndex with mismatched lengths: want error")
	}
}

func TestSimilarItems(t *testing.T) {
	// 1 与 2 几乎同向，3 呈 45 度，4 正交
	idx, err := NewIndex(
		[]int64{1, 2, 3, 4},
		[][]float64{
			{1, 0},
			{0.9, 0.1},
			{1, 1},
			{0, 1},
		},
	)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		seed int64
		topN int
		want []int64
	}{
		{"full ranking", 1, 3, []int64{2, 3, 4}},
		{"truncated to topN", 1, 2, []int64{2, 3}},
		{"seed not in index", 99, 5, nil},
		{"non-positive topN", 1, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := idx.SimilarItems(context.Background(), tt.seed, tt.topN)
			if err != nil {
				t.Fatalf("SimilarItems error: %v", err)
			}
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SimilarItems(%d, %d) = %v, want %v", tt.seed, tt.topN, got, tt.want)
			}
		})
	}
}

func TestSimilarItemsExcludesSeed(t *testing.T) {
	idx, err := NewIndex(
		[]int64{1, 2, 3},
		[][]float64{{1, 0}, {1, 0}, {0, 1}},
	)
	if err != nil {
		t.Fatal(err)
	}

	got, err := idx.SimilarItems(context.Background(), 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range got {
		if id == 1 {
			t.Errorf("SimilarItems contains seed: %v", got)
		}
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}

func TestSimilarItemsDuplicateIDKeepsFirstRow(t *testing.T) {
	// id 1 出现两行，首行 [1,0] 胜出；若重复行 [0,1] 胜出，3 会排在 2 前
	idx, err := NewIndex(
		[]int64{1, 1, 2, 3},
		[][]float64{{1, 0}, {0, 1}, {1, 0}, {0, 1}},
	)
	if err != nil {
		t.Fatal(err)
	}
	if idx.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", idx.Len())
	}

	got, err := idx.SimilarItems(context.Background(), 1, 5)
	if err != nil {
		t.Fatal(err)
	}
	want := []int64{2, 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SimilarItems = %v, want %v", got, want)
	}
}

func TestSimilarItemsStableOnTies(t *testing.T) {
	// 2 与 3 相似度并列（均为 0），按矩阵行序稳定排列
	idx, err := NewIndex(
		[]int64{1, 2, 3, 4},
		[][]float64{{1, 0}, {0, 1}, {0, 1}, {1, 0}},
	)
	if err != nil {
		t.Fatal(err)
	}

	got, err := idx.SimilarItems(context.Background(), 1, 5)
	if err != nil {
		t.Fatal(err)
	}
	want := []int64{4, 2, 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SimilarItems = %v, want %v", got, want)
	}
}

func TestSimilarItemsZeroVector(t *testing.T) {
	// 零向量与任何向量相似度为 0，不应该制造 NaN
	idx, err := NewIndex(
		[]int64{1, 2},
		[][]float64{{0, 0}, {1, 0}},
	)
	if err != nil {
		t.Fatal(err)
	}

	got, err := idx.SimilarItems(context.Background(), 1, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != 2 {
		t.Errorf("SimilarItems = %v, want [2]", got)
	}
}
