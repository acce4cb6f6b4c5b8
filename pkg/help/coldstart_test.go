package help

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestColdstartIsValidYAML(t *testing.T) {
	got, err := Coldstart()
	if err != nil {
		t.Fatalf("Coldstart() error = %v", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal([]byte(got), &doc); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"count_modes", "commands", "terms_file", "selection_rules"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("Coldstart() missing key %q", key)
		}
	}
	if !strings.Contains(got, "chapterclip extract") {
		t.Error("Coldstart() has no extract example")
	}
}
