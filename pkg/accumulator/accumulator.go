// Package accumulator picks the run of whole chapters that fits a budget.
package accumulator

import (
	"errors"
	"fmt"

	"github.com/dtnitsch/chapterclip/models"
)

// ErrInvalidBudget is returned for a budget below 1.
var ErrInvalidBudget = errors.New("budget must be a positive integer")

// ChapterNotFoundError means the start index is outside [1, Max].
type ChapterNotFoundError struct {
	Start int
	Max   int
}

func (e *ChapterNotFoundError) Error() string {
	if e.Max == 0 {
		return fmt.Sprintf("chapter %d not found: book has no chapters", e.Start)
	}
	return fmt.Sprintf("chapter %d not found: choose a chapter between 1 and %d", e.Start, e.Max)
}

// CostFunc returns the cost of one chapter.
type CostFunc func(models.Chapter) (int, error)

// Selection is an inclusive 1-based chapter range and its cost.
type Selection struct {
	Start     int
	End       int
	Total     int
	Costs     []int
	Oversized bool // the start chapter alone exceeds the budget
}

// Chapters returns the selected chapters.
func (s Selection) Chapters(all []models.Chapter) []models.Chapter {
	return all[s.Start-1 : s.End]
}

// Select walks forward from start, adding whole chapters while the running
// total stays within budget. The first chapter that would push the total over
// budget ends the walk. A start chapter that is over budget on its own is
// returned alone.
func Select(chapters []models.Chapter, start, budget int, cost CostFunc) (Selection, error) {
	if budget <= 0 {
		return Selection{}, ErrInvalidBudget
	}
	if start < 1 || start > len(chapters) {
		return Selection{}, &ChapterNotFoundError{Start: start, Max: len(chapters)}
	}

	first, err := cost(chapters[start-1])
	if err != nil {
		return Selection{}, fmt.Errorf("failed to cost chapter %d: %w", start, err)
	}
	sel := Selection{Start: start, End: start, Total: first, Costs: []int{first}}
	if first > budget {
		sel.Oversized = true
		return sel, nil
	}

	for i := start; i < len(chapters); i++ {
		c, err := cost(chapters[i])
		if err != nil {
			return Selection{}, fmt.Errorf("failed to cost chapter %d: %w", i+1, err)
		}
		if sel.Total+c > budget {
			break
		}
		sel.Total += c
		sel.End = i + 1
		sel.Costs = append(sel.Costs, c)
	}
	return sel, nil
}
