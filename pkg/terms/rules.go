package terms

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/dtnitsch/chapterclip/models"
)

// LoadRules reads a JSON terms file. The file is either an array of rules or
// an object with a "terms" array.
func LoadRules(path string) ([]models.TermRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read terms file: %w", err)
	}
	rules, err := ParseRules(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse terms file %s: %w", path, err)
	}
	return rules, nil
}

// ParseRules decodes rules in declaration order.
func ParseRules(data []byte) ([]models.TermRule, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty terms document")
	}

	var rules []models.TermRule
	if data[0] == '{' {
		var wrapped struct {
			Terms []models.TermRule `json:"terms"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, err
		}
		rules = wrapped.Terms
	} else if err := json.Unmarshal(data, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}
