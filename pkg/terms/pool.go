package terms

import (
	"log/slog"
	"sync"

	"github.com/dtnitsch/chapterclip/pkg/epub"
	"github.com/dtnitsch/chapterclip/pkg/mapreduce"
)

// DefaultWorkers is the pool size used when none is configured.
const DefaultWorkers = 12

// ItemResult is the outcome for one document. On error Payload holds the
// original bytes.
type ItemResult struct {
	ID           string
	Path         string
	Payload      []byte
	Counts       Counts
	Replacements int
	Err          error
}

// Changed reports whether the item's payload differs from the original.
func (r ItemResult) Changed() bool {
	return r.Err == nil && r.Replacements > 0
}

// Report aggregates a book-wide substitution.
type Report struct {
	Items    map[string]ItemResult
	Total    int
	PerRule  map[int]int
	Changed  int
	Failed   int
	Warnings int
	Workers  int
}

// Payloads returns the new bytes of every changed item, keyed by item id.
func (r *Report) Payloads() map[string][]byte {
	out := make(map[string][]byte, r.Changed)
	for id, res := range r.Items {
		if res.Changed() {
			out[id] = res.Payload
		}
	}
	return out
}

// Substitute applies the engine to every document of the book.
func Substitute(book *epub.Book, engine *Engine, workers int, logger *slog.Logger) *Report {
	return SubstituteItems(book.Items, engine, workers, logger)
}

// SubstituteItems fans items out to a bounded pool of workers. Each job owns
// one item and returns its own counts; counts are summed once every worker
// has finished. A failing item does not stop the others.
func SubstituteItems(items []epub.Item, engine *Engine, workers int, logger *slog.Logger) *Report {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if workers > len(items) {
		workers = len(items)
	}

	logger.Info("starting term substitution", "items", len(items), "workers", workers, "rules", engine.Active())
	var wg sync.WaitGroup
	jobs := make(chan epub.Item, len(items))
	results := make(chan ItemResult, len(items))

	for w := 1; w <= workers; w++ {
		wg.Add(1)
		go worker(w, logger, engine, &wg, jobs, results)
	}
	for _, item := range items {
		jobs <- item
	}
	close(jobs)

	wg.Wait()
	close(results)

	report := &Report{
		Items:    make(map[string]ItemResult, len(items)),
		Warnings: len(engine.Warnings()),
		Workers:  workers,
	}
	perItem := make([]map[int]int, 0, len(items))
	for res := range results {
		report.Items[res.ID] = res
		if res.Err != nil {
			report.Failed++
			continue
		}
		if res.Changed() {
			report.Changed++
		}
		perItem = append(perItem, res.Counts)
	}
	report.PerRule = mapreduce.Reduce(perItem)
	report.Total = mapreduce.Sum(report.PerRule)

	logger.Info("term substitution finished", "replacements", report.Total, "changed_items", report.Changed,
		"failed_items", report.Failed, "rule_warnings", report.Warnings)
	return report
}

func worker(id int, logger *slog.Logger, engine *Engine, wg *sync.WaitGroup, jobs <-chan epub.Item, results chan<- ItemResult) {
	defer wg.Done()
	for item := range jobs {
		result := ItemResult{ID: item.ID, Path: item.Path, Payload: item.Raw}

		payload, counts, err := engine.ApplyMarkup(item.Raw)
		if err != nil {
			logger.Error("term substitution failed for item", "worker_id", id, "id", item.ID, "path", item.Path, "error", err)
			result.Err = err
			results <- result
			continue
		}

		result.Counts = counts
		result.Replacements = counts.Total()
		if result.Replacements > 0 {
			result.Payload = payload
		}
		logger.Debug("item processed", "worker_id", id, "id", item.ID, "replacements", result.Replacements)
		results <- result
	}
}
