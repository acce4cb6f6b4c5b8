package accumulator

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/dtnitsch/chapterclip/models"
)

func book(costs ...int) ([]models.Chapter, CostFunc) {
	chapters := make([]models.Chapter, len(costs))
	byID := make(map[string]int, len(costs))
	for i, c := range costs {
		id := string(rune('a' + i))
		chapters[i] = models.Chapter{Index: i + 1, ID: id}
		byID[id] = c
	}
	return chapters, func(ch models.Chapter) (int, error) { return byID[ch.ID], nil }
}

func TestSelect_Scenarios(t *testing.T) {
	chapters, cost := book(100, 100, 100, 5000, 100, 100, 100, 100, 100, 100)

	tests := []struct {
		name      string
		start     int
		budget    int
		wantStart int
		wantEnd   int
		wantTotal int
		oversized bool
	}{
		{"stops before the big chapter", 1, 350, 1, 3, 300, false},
		{"oversized singleton", 4, 100, 4, 4, 5000, true},
		{"exact fit continues", 5, 300, 5, 7, 300, false},
		{"runs to the end", 5, 10000, 5, 10, 600, false},
		{"budget below first chapter of the run", 3, 99, 3, 3, 100, true},
		{"big chapter stops the walk", 2, 5000, 2, 3, 200, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := Select(chapters, tt.start, tt.budget, cost)
			if err != nil {
				t.Fatalf("Select() error = %v", err)
			}
			if sel.Start != tt.wantStart || sel.End != tt.wantEnd {
				t.Errorf("Select() range = [%d,%d], want [%d,%d]", sel.Start, sel.End, tt.wantStart, tt.wantEnd)
			}
			if sel.Total != tt.wantTotal {
				t.Errorf("Select() total = %d, want %d", sel.Total, tt.wantTotal)
			}
			if sel.Oversized != tt.oversized {
				t.Errorf("Select() oversized = %v, want %v", sel.Oversized, tt.oversized)
			}
			if len(sel.Costs) != sel.End-sel.Start+1 {
				t.Errorf("len(Costs) = %d, want %d", len(sel.Costs), sel.End-sel.Start+1)
			}
		})
	}
}

func TestSelect_ChapterNotFound(t *testing.T) {
	chapters, cost := book(10, 20, 30)
	for _, start := range []int{0, -1, 4} {
		_, err := Select(chapters, start, 100, cost)
		var nf *ChapterNotFoundError
		if !errors.As(err, &nf) {
			t.Fatalf("Select(start=%d) error = %v, want ChapterNotFoundError", start, err)
		}
		if nf.Max != 3 || nf.Start != start {
			t.Errorf("ChapterNotFoundError = %+v, want {Start:%d Max:3}", nf, start)
		}
	}
}

func TestSelect_InvalidBudget(t *testing.T) {
	chapters, cost := book(10)
	if _, err := Select(chapters, 1, 0, cost); !errors.Is(err, ErrInvalidBudget) {
		t.Errorf("Select(budget=0) error = %v, want ErrInvalidBudget", err)
	}
}

func TestSelect_CostError(t *testing.T) {
	chapters, _ := book(10, 20)
	boom := errors.New("boom")
	_, err := Select(chapters, 1, 100, func(models.Chapter) (int, error) { return 0, boom })
	if !errors.Is(err, boom) {
		t.Errorf("Select() error = %v, want boom", err)
	}
}

// Properties: contiguous, starts at start, within budget unless a lone
// oversized chapter, and maximal.
func TestSelect_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for iter := 0; iter < 500; iter++ {
		n := 1 + rng.Intn(15)
		costs := make([]int, n)
		for i := range costs {
			costs[i] = rng.Intn(400)
		}
		chapters, cost := book(costs...)
		start := 1 + rng.Intn(n)
		budget := 1 + rng.Intn(1000)

		sel, err := Select(chapters, start, budget, cost)
		if err != nil {
			t.Fatalf("Select() error = %v", err)
		}
		if sel.Start != start || sel.End < sel.Start || sel.End > n {
			t.Fatalf("bad range [%d,%d] for start %d n %d", sel.Start, sel.End, start, n)
		}
		sum := 0
		for i := sel.Start; i <= sel.End; i++ {
			sum += costs[i-1]
		}
		if sum != sel.Total {
			t.Fatalf("Total = %d, want sum %d", sel.Total, sum)
		}
		if sel.Total > budget && !(sel.Oversized && sel.Start == sel.End) {
			t.Fatalf("Total %d over budget %d without singleton overflow", sel.Total, budget)
		}
		if sel.End < n && !sel.Oversized && sel.Total+costs[sel.End] <= budget {
			t.Fatalf("range [%d,%d] not maximal: next cost %d fits budget %d", sel.Start, sel.End, costs[sel.End], budget)
		}

		again, _ := Select(chapters, start, budget, cost)
		if again.End != sel.End || again.Total != sel.Total {
			t.Fatalf("Select() not reproducible")
		}
	}
}
