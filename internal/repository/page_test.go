package repository

import (
	"math"
	"testing"
)

func TestOffset(t *testing.T) {
	tests := []struct {
		name           string
		page, pageSize int
		want           int
	}{
		{"first page", 0, 20, 0},
		{"third page", 2, 20, 40},
		{"negative page", -3, 20, 0},
		{"zero size", 5, 0, 0},
		{"saturates", 1 << 59, 20, math.MaxInt},
		{"saturates at max", math.MaxInt, 2, math.MaxInt},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Offset(tc.page, tc.pageSize); got != tc.want {
				t.Fatalf("Offset(%d, %d) = %d, want %d", tc.page, tc.pageSize, got, tc.want)
			}
		})
	}
}

func TestNewPageLastFlag(t *testing.T) {
	if p := NewPage([]int{1}, 0, 20, 1); !p.Last || p.TotalPages != 1 {
		t.Errorf("single page should be last: %+v", p)
	}
	if p := NewPage([]int{1}, 0, 1, 2); p.Last {
		t.Errorf("first of two pages should not be last: %+v", p)
	}
	if p := NewPage[int](nil, math.MaxInt, 20, 1); !p.Last || len(p.Content) != 0 {
		t.Errorf("page past the end should be empty and last: %+v", p)
	}
	if p := NewPage[int](nil, 0, 20, 0); !p.Last || p.TotalPages != 0 {
		t.Errorf("empty result should be last: %+v", p)
	}
}
