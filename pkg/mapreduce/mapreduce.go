package mapreduce

// Reduce sums a slice of count maps into a single map. Summation is
// commutative, so the order of the inputs does not matter.
func Reduce[K comparable](intermediate []map[K]int) map[K]int {
	finalResults := make(map[K]int)

	for _, counts := range intermediate {
		for key, count := range counts {
			finalResults[key] += count
		}
	}

	return finalResults
}

// Sum adds up every value of a count map.
func Sum[K comparable](counts map[K]int) int {
	total := 0
	for _, c := range counts {
		total += c
	}
	return total
}
