package mapreduce

import (
	"reflect"
	"testing"
)

func TestReduce(t *testing.T) {
	a := map[int]int{0: 2, 1: 1}
	b := map[int]int{0: 3, 2: 5}

	got := Reduce([]map[int]int{a, b})
	want := map[int]int{0: 5, 1: 1, 2: 5}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Reduce() = %v, want %v", got, want)
	}
	if rev := Reduce([]map[int]int{b, a}); !reflect.DeepEqual(rev, got) {
		t.Errorf("Reduce() depends on order: %v vs %v", rev, got)
	}
	if Sum(got) != 11 {
		t.Errorf("Sum() = %d, want 11", Sum(got))
	}
}

func TestTopN(t *testing.T) {
	counts := map[string]int{"foo": 3, "bar": 7, "baz": 3, "none": 0}
	got := TopN(counts, 2)
	want := []string{"bar:7", "baz:3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopN() = %v, want %v", got, want)
	}
	if all := TopN(counts, -1); len(all) != 3 {
		t.Errorf("TopN(-1) returned %d entries, want 3", len(all))
	}
}

func TestTopKeys(t *testing.T) {
	counts := map[string]int{"foo": 3, "bar": 7, "baz": 3}
	got := TopKeys(counts, 5)
	want := []string{"bar", "baz", "foo"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopKeys() = %v, want %v", got, want)
	}
	if got := TopKeys(nil, 3); len(got) != 0 {
		t.Errorf("TopKeys(nil) = %v, want empty", got)
	}
}
